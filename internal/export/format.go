package export

import (
	"strconv"

	"mdlog/internal/errors"
	"mdlog/internal/schema"
	"mdlog/pkg/exception"
)

// textPowerOf10 is the scale stamped on every exported line. Prices are
// written raw, so the consumer must apply it.
const textPowerOf10 = 4

// tickQueueLevels is how many levels of each queue a tick line carries.
const tickQueueLevels = 10

// line is a text line under construction at the tail of a shared buffer.
type line struct {
	b     []byte
	start int
}

func newLine(dst []byte) line { return line{b: dst, start: len(dst)} }

func (l line) key(k string) line {
	if len(l.b) > l.start {
		l.b = append(l.b, ' ')
	}
	l.b = append(l.b, k...)
	l.b = append(l.b, ':', ' ')
	return l
}

func (l line) int(k string, v int64) line {
	l = l.key(k)
	l.b = strconv.AppendInt(l.b, v, 10)
	return l
}

// positive writes the pair only when v is strictly positive; zero is the
// feed's "absent" value.
func (l line) positive(k string, v int64) line {
	if v <= 0 {
		return l
	}
	return l.int(k, v)
}

func (l line) word(k, v string) line {
	l = l.key(k)
	l.b = append(l.b, v...)
	return l
}

func (l line) quoted(k, v string) line {
	l = l.key(k)
	l.b = append(l.b, '"')
	l.b = append(l.b, v...)
	l.b = append(l.b, '"')
	return l
}

func (l line) identity(r schema.Record) line {
	l = l.quoted("HTSCSecurityID", schema.FullSymbol(r.Security()))
	l = l.int("MDDate", int64(r.Date()))
	return l.int("MDTime", int64(r.Time()))
}

func (l line) venue(r schema.Record) line {
	l = l.word("securityIDSource", schema.ExchangeOf(schema.BareCode(r.Security())).MIC())
	return l.word("securityType", "StockType")
}

// AppendLine appends the text form of r to dst, without the trailing newline.
// Snapshots have no text form and fail with exception.ErrKindUnsupported.
func AppendLine(dst []byte, r schema.Record) ([]byte, error) {
	switch v := r.(type) {
	case schema.Order:
		return AppendOrderLine(dst, v), nil
	case schema.Transaction:
		return AppendTransactionLine(dst, v), nil
	case schema.Tick:
		return AppendTickLine(dst, v), nil
	case nil:
		return dst, exception.ErrNilInstance
	default:
		return dst, errors.Wrapf(exception.ErrKindUnsupported, "text line for %s", r.Kind())
	}
}

// AppendOrderLine appends one order in the backtest text format.
func AppendOrderLine(dst []byte, o schema.Order) []byte {
	l := newLine(dst).identity(o).venue(o)
	l = l.int("OrderIndex", o.OrderIndex)
	l = l.positive("OrderNO", o.OrderNo)
	l = l.int("OrderType", int64(o.OrderType))
	l = l.int("OrderPrice", int64(o.OrderPrice))
	l = l.int("OrderQty", int64(o.OrderQty))
	l = l.int("OrderBSFlag", int64(o.OrderBSFlag))
	l = l.int("ChannelNo", int64(o.ChannelNo))
	l = l.int("ApplSeqNum", o.ApplSeqNum)
	return l.int("DataMultiplePowerOf10", textPowerOf10).b
}

// AppendTransactionLine appends one trade in the backtest text format.
func AppendTransactionLine(dst []byte, t schema.Transaction) []byte {
	l := newLine(dst).identity(t).venue(t)
	l = l.int("TradeIndex", t.TradeIndex)
	l = l.positive("TradeBuyNo", t.TradeBuyNo)
	l = l.positive("TradeSellNo", t.TradeSellNo)
	l = l.int("TradeType", int64(t.TradeType))
	l = l.int("TradeBSFlag", int64(t.TradeBSFlag))
	l = l.positive("TradePrice", int64(t.TradePrice))
	l = l.int("TradeQty", int64(t.TradeQty))
	l = l.positive("TradeMoney", int64(t.TradeMoney))
	l = l.int("ApplSeqNum", t.ApplSeqNum)
	l = l.int("ChannelNo", int64(t.ChannelNo))
	return l.int("DataMultiplePowerOf10", textPowerOf10).b
}

// AppendTickLine appends one level-2 tick in the backtest text format. Every
// queue contributes ten repeated keys, one per level.
func AppendTickLine(dst []byte, t schema.Tick) []byte {
	l := newLine(dst).identity(t)
	phase := "0"
	if t.TradingPhaseCode != 0 {
		phase = string(rune(t.TradingPhaseCode))
	}
	l = l.quoted("TradingPhaseCode", phase)
	l = l.venue(t)
	l = l.int("MaxPx", int64(t.MaxPx))
	l = l.int("MinPx", int64(t.MinPx))
	l = l.int("PreClosePx", int64(t.PreClosePx))
	l = l.positive("LastPx", int64(t.LastPx))
	l = l.positive("OpenPx", int64(t.OpenPx))
	l = l.positive("HighPx", int64(t.HighPx))
	l = l.positive("LowPx", int64(t.LowPx))
	l = l.int("ChannelNo", int64(t.ChannelNo))

	for i := range tickQueueLevels {
		l = l.int("BuyPriceQueue", int64(t.BuyPriceQueue[i]))
	}
	for i := range tickQueueLevels {
		l = l.int("BuyOrderQtyQueue", int64(t.BuyOrderQtyQueue[i]))
	}
	for i := range tickQueueLevels {
		l = l.int("SellPriceQueue", int64(t.SellPriceQueue[i]))
	}
	for i := range tickQueueLevels {
		l = l.int("SellOrderQtyQueue", int64(t.SellOrderQtyQueue[i]))
	}
	for i := range tickQueueLevels {
		l = l.int("BuyNumOrdersQueue", t.BuyNumOrdersQueue[i])
	}
	for i := range tickQueueLevels {
		l = l.int("SellNumOrdersQueue", t.SellNumOrdersQueue[i])
	}
	return l.int("DataMultiplePowerOf10", textPowerOf10).b
}
