package codec

import "mdlog/internal/schema"

// tickScalarCount is the number of contiguous i64 statistics, MaxPx through
// TotalSellNumber, stored in the same order by both generations.
const tickScalarCount = 23

type tickLayout struct {
	identity
	dataTS  int
	phase   int
	scalars int
	numBuy  int
	numSell int

	buyPx   int
	buyQty  int
	sellPx  int
	sellQty int

	buyOrderQ   int
	sellOrderQ  int
	buyNumQ     int
	sellNumQ    int
	buyOrderQN  int
	sellOrderQN int
	buyNumQN    int
	sellNumQN   int
}

var tickV1Fields = tickLayout{
	identity: identity{
		recv: absent, symbol: 0, date: 40, time: 44, source: 60, secType: 64,
		channel: 264, seq: absent, pow10: 2208,
	},
	dataTS: 48, phase: 56, scalars: 72, numBuy: 256, numSell: 260,
	buyPx: 272, buyQty: 352, sellPx: 432, sellQty: 512,
	buyOrderQ: 592, sellOrderQ: 992, buyOrderQN: 1392, sellOrderQN: 1396,
	buyNumQ: 1400, sellNumQ: 1800, buyNumQN: 2200, sellNumQN: 2204,
}

var tickV2Fields = tickLayout{
	identity: identity{
		recv: 0, symbol: 2168, date: 2120, time: 2124, source: 2128, secType: 2132,
		channel: 2144, seq: absent, pow10: 2148,
	},
	dataTS: 8, phase: 2208, scalars: 16, numBuy: 2136, numSell: 2140,
	buyPx: 200, buyQty: 280, sellPx: 360, sellQty: 440,
	buyOrderQ: 520, sellOrderQ: 920, buyNumQ: 1320, sellNumQ: 1720,
	buyOrderQN: 2152, sellOrderQN: 2156, buyNumQN: 2160, sellNumQN: 2164,
}

func tickScalars(t *schema.Tick) [tickScalarCount]*int64 {
	return [tickScalarCount]*int64{
		(*int64)(&t.MaxPx),
		(*int64)(&t.MinPx),
		(*int64)(&t.PreClosePx),
		&t.NumTrades,
		(*int64)(&t.TotalVolumeTrade),
		(*int64)(&t.TotalValueTrade),
		(*int64)(&t.LastPx),
		(*int64)(&t.OpenPx),
		(*int64)(&t.ClosePx),
		(*int64)(&t.HighPx),
		(*int64)(&t.LowPx),
		(*int64)(&t.TotalBuyQty),
		(*int64)(&t.TotalSellQty),
		(*int64)(&t.WeightedAvgBuyPx),
		(*int64)(&t.WeightedAvgSellPx),
		&t.WithdrawBuyNumber,
		&t.WithdrawBuyAmount,
		&t.WithdrawBuyMoney,
		&t.WithdrawSellNumber,
		&t.WithdrawSellAmount,
		&t.WithdrawSellMoney,
		&t.TotalBuyNumber,
		&t.TotalSellNumber,
	}
}

func decodeTick(src []byte, f *tickLayout) schema.Tick {
	t := schema.Tick{
		LocalRecvTimestamp:      getI64(src, f.recv),
		SecurityID:              getString(src, f.symbol, schema.SecurityIDSize),
		MDDate:                  getI32(src, f.date),
		MDTime:                  getI32(src, f.time),
		DataTimestamp:           getI64(src, f.dataTS),
		TradingPhaseCode:        src[f.phase],
		SecurityIDSource:        getI32(src, f.source),
		SecurityType:            getI32(src, f.secType),
		NumBuyOrders:            getI32(src, f.numBuy),
		NumSellOrders:           getI32(src, f.numSell),
		ChannelNo:               getI32(src, f.channel),
		BuyOrderQueueCount:      getI32(src, f.buyOrderQN),
		SellOrderQueueCount:     getI32(src, f.sellOrderQN),
		BuyNumOrdersQueueCount:  getI32(src, f.buyNumQN),
		SellNumOrdersQueueCount: getI32(src, f.sellNumQN),
		DataMultiplePowerOf10:   getI32(src, f.pow10),
	}

	for i, p := range tickScalars(&t) {
		*p = getI64(src, f.scalars+8*i)
	}

	getInts(t.BuyPriceQueue[:], src, f.buyPx)
	getInts(t.BuyOrderQtyQueue[:], src, f.buyQty)
	getInts(t.SellPriceQueue[:], src, f.sellPx)
	getInts(t.SellOrderQtyQueue[:], src, f.sellQty)
	getInts(t.BuyOrderQueue[:], src, f.buyOrderQ)
	getInts(t.SellOrderQueue[:], src, f.sellOrderQ)
	getInts(t.BuyNumOrdersQueue[:], src, f.buyNumQ)
	getInts(t.SellNumOrdersQueue[:], src, f.sellNumQ)

	return t
}

func encodeTick(dst []byte, f *tickLayout, t schema.Tick) {
	putI64(dst, f.recv, t.LocalRecvTimestamp)
	putString(dst, f.symbol, schema.SecurityIDSize, t.SecurityID)
	putI32(dst, f.date, t.MDDate)
	putI32(dst, f.time, t.MDTime)
	putI64(dst, f.dataTS, t.DataTimestamp)
	dst[f.phase] = t.TradingPhaseCode
	putI32(dst, f.source, t.SecurityIDSource)
	putI32(dst, f.secType, t.SecurityType)
	putI32(dst, f.numBuy, t.NumBuyOrders)
	putI32(dst, f.numSell, t.NumSellOrders)
	putI32(dst, f.channel, t.ChannelNo)
	putI32(dst, f.buyOrderQN, t.BuyOrderQueueCount)
	putI32(dst, f.sellOrderQN, t.SellOrderQueueCount)
	putI32(dst, f.buyNumQN, t.BuyNumOrdersQueueCount)
	putI32(dst, f.sellNumQN, t.SellNumOrdersQueueCount)
	putI32(dst, f.pow10, t.DataMultiplePowerOf10)

	for i, p := range tickScalars(&t) {
		putI64(dst, f.scalars+8*i, *p)
	}

	putInts(dst, f.buyPx, t.BuyPriceQueue[:])
	putInts(dst, f.buyQty, t.BuyOrderQtyQueue[:])
	putInts(dst, f.sellPx, t.SellPriceQueue[:])
	putInts(dst, f.sellQty, t.SellOrderQtyQueue[:])
	putInts(dst, f.buyOrderQ, t.BuyOrderQueue[:])
	putInts(dst, f.sellOrderQ, t.SellOrderQueue[:])
	putInts(dst, f.buyNumQ, t.BuyNumOrdersQueue[:])
	putInts(dst, f.sellNumQ, t.SellNumOrdersQueue[:])
}
