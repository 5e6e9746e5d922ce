package codec

import "mdlog/internal/schema"

const (
	snapshotScalarCount = 17
	entrySize           = 24
)

type entryLayout struct {
	level, price, qty, orders int
}

var (
	entryV1Fields = entryLayout{level: 0, price: 8, qty: 16, orders: 20}
	entryV2Fields = entryLayout{price: 0, level: 8, qty: 12, orders: 16}
)

type snapshotLayout struct {
	identity
	dataTS   int
	phase    int
	snapTime int
	scalars  int
	numBuy   int
	numSell  int
	buy      int
	sell     int
	buyN     int
	sellN    int
	entry    entryLayout
}

var snapshotV1Fields = snapshotLayout{
	identity: identity{
		recv: absent, symbol: 0, date: 40, time: 44, source: 60, secType: 64,
		channel: 68, seq: 72, pow10: 720,
	},
	dataTS: 48, phase: 56, snapTime: 80, scalars: 88, numBuy: 224, numSell: 228,
	buy: 232, sell: 472, buyN: 712, sellN: 716, entry: entryV1Fields,
}

var snapshotV2Fields = snapshotLayout{
	identity: identity{
		recv: 480, symbol: 648, date: 688, time: 692, source: 696, secType: 700,
		channel: 704, seq: 496, pow10: 724,
	},
	dataTS: 488, phase: 728, snapTime: 504, scalars: 512, numBuy: 708, numSell: 712,
	buy: 0, sell: 240, buyN: 716, sellN: 720, entry: entryV2Fields,
}

func snapshotScalars(s *schema.Snapshot) [snapshotScalarCount]*int64 {
	return [snapshotScalarCount]*int64{
		&s.NumTrades,
		(*int64)(&s.TotalVolumeTrade),
		(*int64)(&s.TotalValueTrade),
		(*int64)(&s.LastPx),
		(*int64)(&s.HighPx),
		(*int64)(&s.LowPx),
		(*int64)(&s.MaxPx),
		(*int64)(&s.MinPx),
		(*int64)(&s.PreClosePx),
		(*int64)(&s.OpenPx),
		(*int64)(&s.ClosePx),
		(*int64)(&s.TotalBuyQty),
		(*int64)(&s.TotalSellQty),
		(*int64)(&s.WeightedAvgBuyPx),
		(*int64)(&s.WeightedAvgSellPx),
		&s.TotalBuyNumber,
		&s.TotalSellNumber,
	}
}

func decodeEntries(dst []schema.Entry, src []byte, off int, f entryLayout) {
	for i := range dst {
		base := off + entrySize*i
		dst[i] = schema.Entry{
			Level:          getI32(src, base+f.level),
			Price:          schema.Price(getI64(src, base+f.price)),
			TotalQty:       getI32(src, base+f.qty),
			NumberOfOrders: getI32(src, base+f.orders),
		}
	}
}

func encodeEntries(dst []byte, off int, f entryLayout, src []schema.Entry) {
	for i, e := range src {
		base := off + entrySize*i
		clear(dst[base : base+entrySize])
		putI32(dst, base+f.level, e.Level)
		putI64(dst, base+f.price, int64(e.Price))
		putI32(dst, base+f.qty, e.TotalQty)
		putI32(dst, base+f.orders, e.NumberOfOrders)
	}
}

func decodeSnapshot(src []byte, f *snapshotLayout) schema.Snapshot {
	s := schema.Snapshot{
		LocalRecvTimestamp:    getI64(src, f.recv),
		SecurityID:            getString(src, f.symbol, schema.SecurityIDSize),
		MDDate:                getI32(src, f.date),
		MDTime:                getI32(src, f.time),
		DataTimestamp:         getI64(src, f.dataTS),
		TradingPhaseCode:      src[f.phase],
		SecurityIDSource:      getI32(src, f.source),
		SecurityType:          getI32(src, f.secType),
		ChannelNo:             getI32(src, f.channel),
		ApplSeqNum:            getI64(src, f.seq),
		SnapshotMDDateTime:    getI64(src, f.snapTime),
		NumBuyOrders:          getI32(src, f.numBuy),
		NumSellOrders:         getI32(src, f.numSell),
		BuyEntriesCount:       getI32(src, f.buyN),
		SellEntriesCount:      getI32(src, f.sellN),
		DataMultiplePowerOf10: getI32(src, f.pow10),
	}

	for i, p := range snapshotScalars(&s) {
		*p = getI64(src, f.scalars+8*i)
	}

	decodeEntries(s.BuyEntries[:], src, f.buy, f.entry)
	decodeEntries(s.SellEntries[:], src, f.sell, f.entry)

	return s
}

func encodeSnapshot(dst []byte, f *snapshotLayout, s schema.Snapshot) {
	putI64(dst, f.recv, s.LocalRecvTimestamp)
	putString(dst, f.symbol, schema.SecurityIDSize, s.SecurityID)
	putI32(dst, f.date, s.MDDate)
	putI32(dst, f.time, s.MDTime)
	putI64(dst, f.dataTS, s.DataTimestamp)
	dst[f.phase] = s.TradingPhaseCode
	putI32(dst, f.source, s.SecurityIDSource)
	putI32(dst, f.secType, s.SecurityType)
	putI32(dst, f.channel, s.ChannelNo)
	putI64(dst, f.seq, s.ApplSeqNum)
	putI64(dst, f.snapTime, s.SnapshotMDDateTime)
	putI32(dst, f.numBuy, s.NumBuyOrders)
	putI32(dst, f.numSell, s.NumSellOrders)
	putI32(dst, f.buyN, s.BuyEntriesCount)
	putI32(dst, f.sellN, s.SellEntriesCount)
	putI32(dst, f.pow10, s.DataMultiplePowerOf10)

	for i, p := range snapshotScalars(&s) {
		putI64(dst, f.scalars+8*i, *p)
	}

	encodeEntries(dst, f.buy, f.entry, s.BuyEntries[:])
	encodeEntries(dst, f.sell, f.entry, s.SellEntries[:])
}
