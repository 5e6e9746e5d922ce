package export

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"

	"github.com/yanun0323/logs"
	"golang.org/x/sync/errgroup"

	"mdlog/internal/errors"
	"mdlog/internal/schema"
	"mdlog/pkg/exception"
)

const defaultDumpChunk = 64 << 10

// DumpConfig controls a tab separated dump of a whole file.
type DumpConfig struct {
	// Workers format chunks concurrently. Defaults to the CPU count.
	Workers int
	// ChunkRecords is the number of records per formatted chunk.
	ChunkRecords int
	// Limit dumps only the first Limit records. Zero dumps everything.
	Limit uint64
}

func (c DumpConfig) withDefaults() DumpConfig {
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ChunkRecords == 0 {
		c.ChunkRecords = defaultDumpChunk
	}
	return c
}

// Validate checks if the configuration is usable.
func (c DumpConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("invalid dump config: Workers must be > 0")
	}
	if c.ChunkRecords < 1 {
		return fmt.Errorf("invalid dump config: ChunkRecords must be > 0")
	}
	return nil
}

// Dump writes every record of src to w as one TabSeparated row, in index
// order. Rows are formatted by Workers goroutines, one contiguous chunk each,
// and written once the whole round is formatted.
func Dump(ctx context.Context, src Source, w io.Writer, cfg DumpConfig) (uint64, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	layout := src.Layout()
	if !Exportable(layout.Kind()) {
		return 0, errors.Wrapf(exception.ErrKindUnsupported, "dump %s", layout)
	}

	total := src.Len()
	if cfg.Limit > 0 {
		total = min(total, cfg.Limit)
	}
	chunk := uint64(cfg.ChunkRecords)
	bufs := make([][]byte, cfg.Workers)

	var written uint64
	for from := uint64(0); from < total; {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		g, gctx := errgroup.WithContext(ctx)
		round := 0
		for ; round < cfg.Workers && from < total; round++ {
			lo, hi, slot := from, min(from+chunk, total), round
			from = hi
			g.Go(func() error {
				buf := bufs[slot][:0]
				err := src.Visit(lo, hi, func(i uint64, rec []byte) error {
					if i%ctxCheckEvery == 0 {
						if err := gctx.Err(); err != nil {
							return err
						}
					}
					r, err := src.Decode(rec)
					if err != nil {
						return err
					}
					if buf, err = AppendRow(buf, r); err != nil {
						return err
					}
					return nil
				})
				bufs[slot] = buf
				return errors.Wrapf(err, "dump records [%d, %d)", lo, hi)
			})
		}
		if err := g.Wait(); err != nil {
			return written, err
		}
		for _, b := range bufs[:round] {
			if _, err := w.Write(b); err != nil {
				return written, errors.Wrap(err, "write dump")
			}
		}
		written = from
	}

	logs.Infof("dump %s done, records %d", layout, written)
	return written, nil
}

type row []byte

func (r row) int(v int64) row {
	return append(strconv.AppendInt(r, v, 10), '\t')
}

func (r row) ints(vs ...int64) row {
	for _, v := range vs {
		r = r.int(v)
	}
	return r
}

// array writes a ClickHouse array literal: [1,2,3].
func (r row) array(vs []int64) row {
	r = append(r, '[')
	for i, v := range vs {
		if i > 0 {
			r = append(r, ',')
		}
		r = strconv.AppendInt(r, v, 10)
	}
	return append(r, ']', '\t')
}

// text keeps printable ASCII only and escapes the TSV specials.
func (r row) text(s string) row {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			r = append(r, '\\', '\\')
		case c == '\t':
			r = append(r, '\\', 't')
		case c == '\n':
			r = append(r, '\\', 'n')
		case c >= 32 && c <= 126:
			r = append(r, c)
		}
	}
	return r
}

func (r row) end() []byte {
	return append(r, '\n')
}

// AppendRow appends r as one TabSeparated row including the newline. Receive
// timestamps of V1 records are written as 0.
func AppendRow(dst []byte, r schema.Record) ([]byte, error) {
	switch v := r.(type) {
	case schema.Order:
		return appendOrderRow(dst, v), nil
	case schema.Transaction:
		return appendTransactionRow(dst, v), nil
	case schema.Tick:
		return appendTickRow(dst, v), nil
	case nil:
		return dst, exception.ErrNilInstance
	default:
		return dst, errors.Wrapf(exception.ErrKindUnsupported, "tsv row for %s", r.Kind())
	}
}

func appendOrderRow(dst []byte, o schema.Order) []byte {
	r := row(dst).ints(
		o.LocalRecvTimestamp, o.OrderIndex, int64(o.OrderPrice), int64(o.OrderQty),
		o.OrderNo, int64(o.TradedQty), o.ApplSeqNum,
		int64(o.MDDate), int64(o.MDTime), int64(o.SecurityIDSource), int64(o.SecurityType),
		int64(o.OrderType), int64(o.OrderBSFlag), int64(o.ChannelNo), int64(o.DataMultiplePowerOf10),
	)
	r = append(r.text(o.SecurityID), '\t')
	return r.text(o.SecurityStatus).end()
}

func appendTransactionRow(dst []byte, t schema.Transaction) []byte {
	r := row(dst).ints(
		t.LocalRecvTimestamp, t.TradeIndex, t.TradeBuyNo, t.TradeSellNo,
		int64(t.TradePrice), int64(t.TradeQty), int64(t.TradeMoney), t.ApplSeqNum,
		int64(t.MDDate), int64(t.MDTime), int64(t.SecurityIDSource), int64(t.SecurityType),
		int64(t.TradeType), int64(t.TradeBSFlag), int64(t.ChannelNo), int64(t.DataMultiplePowerOf10),
	)
	return r.text(t.SecurityID).end()
}

func appendTickRow(dst []byte, t schema.Tick) []byte {
	r := row(dst).ints(
		t.LocalRecvTimestamp, t.DataTimestamp,
		int64(t.MaxPx), int64(t.MinPx), int64(t.PreClosePx),
		t.NumTrades, int64(t.TotalVolumeTrade), int64(t.TotalValueTrade),
		int64(t.LastPx), int64(t.OpenPx), int64(t.ClosePx), int64(t.HighPx), int64(t.LowPx),
		int64(t.TotalBuyQty), int64(t.TotalSellQty), int64(t.WeightedAvgBuyPx), int64(t.WeightedAvgSellPx),
		t.WithdrawBuyNumber, t.WithdrawBuyAmount, t.WithdrawBuyMoney,
		t.WithdrawSellNumber, t.WithdrawSellAmount, t.WithdrawSellMoney,
		t.TotalBuyNumber, t.TotalSellNumber,
	)
	r = r.array(widen(t.BuyPriceQueue[:]))
	r = r.array(widen(t.BuyOrderQtyQueue[:]))
	r = r.array(widen(t.SellPriceQueue[:]))
	r = r.array(widen(t.SellOrderQtyQueue[:]))
	r = r.array(t.BuyOrderQueue[:])
	r = r.array(t.SellOrderQueue[:])
	r = r.array(t.BuyNumOrdersQueue[:])
	r = r.array(t.SellNumOrdersQueue[:])
	r = r.ints(
		int64(t.MDDate), int64(t.MDTime), int64(t.SecurityIDSource), int64(t.SecurityType),
		int64(t.NumBuyOrders), int64(t.NumSellOrders), int64(t.ChannelNo), int64(t.DataMultiplePowerOf10),
		int64(t.BuyOrderQueueCount), int64(t.SellOrderQueueCount),
		int64(t.BuyNumOrdersQueueCount), int64(t.SellNumOrdersQueueCount),
	)
	r = append(r.text(t.SecurityID), '\t')
	if c := t.TradingPhaseCode; c >= 32 && c <= 126 {
		r = append(r, c)
	}
	return r.end()
}

func widen[T ~int64](vs []T) []int64 {
	out := make([]int64, len(vs))
	for i, v := range vs {
		out[i] = int64(v)
	}
	return out
}
