package codec

import "mdlog/internal/schema"

type orderLayout struct {
	identity
	index     int
	orderType int
	price     int
	qty       int
	bsFlag    int
	orderNo   int
	tradedQty int
	status    int
}

var orderV1Fields = orderLayout{
	identity: identity{
		recv: absent, symbol: 0, date: 40, time: 44, source: 48, secType: 52,
		channel: 92, seq: 112, pow10: 120,
	},
	index: 56, orderType: 64, price: 72, qty: 80, bsFlag: 88,
	orderNo: 96, tradedQty: 104, status: 124,
}

var orderV2Fields = orderLayout{
	identity: identity{
		recv: 0, symbol: 88, date: 56, time: 60, source: 64, secType: 68,
		channel: 80, seq: 48, pow10: 84,
	},
	index: 8, orderType: 72, price: 16, qty: 24, bsFlag: 76,
	orderNo: 32, tradedQty: 40, status: 128,
}

func decodeOrder(src []byte, f *orderLayout) schema.Order {
	return schema.Order{
		LocalRecvTimestamp:    getI64(src, f.recv),
		SecurityID:            getString(src, f.symbol, schema.SecurityIDSize),
		MDDate:                getI32(src, f.date),
		MDTime:                getI32(src, f.time),
		SecurityIDSource:      getI32(src, f.source),
		SecurityType:          getI32(src, f.secType),
		OrderIndex:            getI64(src, f.index),
		OrderType:             getI32(src, f.orderType),
		OrderPrice:            schema.Price(getI64(src, f.price)),
		OrderQty:              schema.Quantity(getI64(src, f.qty)),
		OrderBSFlag:           getI32(src, f.bsFlag),
		ChannelNo:             getI32(src, f.channel),
		OrderNo:               getI64(src, f.orderNo),
		TradedQty:             schema.Quantity(getI64(src, f.tradedQty)),
		ApplSeqNum:            getI64(src, f.seq),
		DataMultiplePowerOf10: getI32(src, f.pow10),
		SecurityStatus:        getString(src, f.status, schema.SecurityStatusSize),
	}
}

func encodeOrder(dst []byte, f *orderLayout, o schema.Order) {
	putI64(dst, f.recv, o.LocalRecvTimestamp)
	putString(dst, f.symbol, schema.SecurityIDSize, o.SecurityID)
	putI32(dst, f.date, o.MDDate)
	putI32(dst, f.time, o.MDTime)
	putI32(dst, f.source, o.SecurityIDSource)
	putI32(dst, f.secType, o.SecurityType)
	putI64(dst, f.index, o.OrderIndex)
	putI32(dst, f.orderType, o.OrderType)
	putI64(dst, f.price, int64(o.OrderPrice))
	putI64(dst, f.qty, int64(o.OrderQty))
	putI32(dst, f.bsFlag, o.OrderBSFlag)
	putI32(dst, f.channel, o.ChannelNo)
	putI64(dst, f.orderNo, o.OrderNo)
	putI64(dst, f.tradedQty, int64(o.TradedQty))
	putI64(dst, f.seq, o.ApplSeqNum)
	putI32(dst, f.pow10, o.DataMultiplePowerOf10)
	putString(dst, f.status, schema.SecurityStatusSize, o.SecurityStatus)
}
