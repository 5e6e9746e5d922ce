package codec

import "mdlog/internal/schema"

type transactionLayout struct {
	identity
	index     int
	buyNo     int
	sellNo    int
	tradeType int
	bsFlag    int
	price     int
	qty       int
	money     int
}

var transactionV1Fields = transactionLayout{
	identity: identity{
		recv: absent, symbol: 0, date: 40, time: 44, source: 48, secType: 52,
		channel: 120, seq: 112, pow10: 124,
	},
	index: 56, buyNo: 64, sellNo: 72, tradeType: 80, bsFlag: 84,
	price: 88, qty: 96, money: 104,
}

var transactionV2Fields = transactionLayout{
	identity: identity{
		recv: 0, symbol: 96, date: 64, time: 68, source: 72, secType: 76,
		channel: 88, seq: 56, pow10: 92,
	},
	index: 8, buyNo: 16, sellNo: 24, tradeType: 80, bsFlag: 84,
	price: 32, qty: 40, money: 48,
}

func decodeTransaction(src []byte, f *transactionLayout) schema.Transaction {
	return schema.Transaction{
		LocalRecvTimestamp:    getI64(src, f.recv),
		SecurityID:            getString(src, f.symbol, schema.SecurityIDSize),
		MDDate:                getI32(src, f.date),
		MDTime:                getI32(src, f.time),
		SecurityIDSource:      getI32(src, f.source),
		SecurityType:          getI32(src, f.secType),
		TradeIndex:            getI64(src, f.index),
		TradeBuyNo:            getI64(src, f.buyNo),
		TradeSellNo:           getI64(src, f.sellNo),
		TradeType:             getI32(src, f.tradeType),
		TradeBSFlag:           getI32(src, f.bsFlag),
		TradePrice:            schema.Price(getI64(src, f.price)),
		TradeQty:              schema.Quantity(getI64(src, f.qty)),
		TradeMoney:            schema.Notional(getI64(src, f.money)),
		ApplSeqNum:            getI64(src, f.seq),
		ChannelNo:             getI32(src, f.channel),
		DataMultiplePowerOf10: getI32(src, f.pow10),
	}
}

func encodeTransaction(dst []byte, f *transactionLayout, t schema.Transaction) {
	putI64(dst, f.recv, t.LocalRecvTimestamp)
	putString(dst, f.symbol, schema.SecurityIDSize, t.SecurityID)
	putI32(dst, f.date, t.MDDate)
	putI32(dst, f.time, t.MDTime)
	putI32(dst, f.source, t.SecurityIDSource)
	putI32(dst, f.secType, t.SecurityType)
	putI64(dst, f.index, t.TradeIndex)
	putI64(dst, f.buyNo, t.TradeBuyNo)
	putI64(dst, f.sellNo, t.TradeSellNo)
	putI32(dst, f.tradeType, t.TradeType)
	putI32(dst, f.bsFlag, t.TradeBSFlag)
	putI64(dst, f.price, int64(t.TradePrice))
	putI64(dst, f.qty, int64(t.TradeQty))
	putI64(dst, f.money, int64(t.TradeMoney))
	putI64(dst, f.seq, t.ApplSeqNum)
	putI32(dst, f.channel, t.ChannelNo)
	putI32(dst, f.pow10, t.DataMultiplePowerOf10)
}
