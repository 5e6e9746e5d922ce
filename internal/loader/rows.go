package loader

import (
	"mdlog/internal/schema"
)

// OrderRow is one order in md_orders. Prices stay raw scaled integers.
type OrderRow struct {
	ID                    uint64 `gorm:"primaryKey;autoIncrement"`
	FileIndex             uint64 `gorm:"not null"`
	SecurityID            string `gorm:"size:40;not null;index:idx_md_orders_symbol_time,priority:1"`
	MDDate                int32  `gorm:"column:md_date;not null;index:idx_md_orders_symbol_time,priority:2"`
	MDTime                int32  `gorm:"column:md_time;not null;index:idx_md_orders_symbol_time,priority:3"`
	LocalRecvTimestamp    int64
	SecurityIDSource      int32
	SecurityType          int32
	OrderIndex            int64
	OrderType             int32
	OrderPrice            int64
	OrderQty              int64
	OrderBSFlag           int32 `gorm:"column:order_bs_flag"`
	ChannelNo             int32 `gorm:"index:idx_md_orders_channel_seq,priority:1"`
	OrderNo               int64
	TradedQty             int64
	ApplSeqNum            int64  `gorm:"index:idx_md_orders_channel_seq,priority:2"`
	DataMultiplePowerOf10 int32  `gorm:"column:data_multiple_power_of10"`
	SecurityStatus        string `gorm:"size:16"`
}

func (OrderRow) TableName() string { return "md_orders" }

// TransactionRow is one trade in md_transactions.
type TransactionRow struct {
	ID                    uint64 `gorm:"primaryKey;autoIncrement"`
	FileIndex             uint64 `gorm:"not null"`
	SecurityID            string `gorm:"size:40;not null;index:idx_md_transactions_symbol_time,priority:1"`
	MDDate                int32  `gorm:"column:md_date;not null;index:idx_md_transactions_symbol_time,priority:2"`
	MDTime                int32  `gorm:"column:md_time;not null;index:idx_md_transactions_symbol_time,priority:3"`
	LocalRecvTimestamp    int64
	SecurityIDSource      int32
	SecurityType          int32
	TradeIndex            int64
	TradeBuyNo            int64
	TradeSellNo           int64
	TradeType             int32
	TradeBSFlag           int32 `gorm:"column:trade_bs_flag"`
	TradePrice            int64
	TradeQty              int64
	TradeMoney            int64
	ApplSeqNum            int64 `gorm:"index:idx_md_transactions_channel_seq,priority:2"`
	ChannelNo             int32 `gorm:"index:idx_md_transactions_channel_seq,priority:1"`
	DataMultiplePowerOf10 int32 `gorm:"column:data_multiple_power_of10"`
}

func (TransactionRow) TableName() string { return "md_transactions" }

func orderRow(i uint64, o schema.Order) OrderRow {
	return OrderRow{
		FileIndex:             i,
		SecurityID:            o.SecurityID,
		MDDate:                o.MDDate,
		MDTime:                o.MDTime,
		LocalRecvTimestamp:    o.LocalRecvTimestamp,
		SecurityIDSource:      o.SecurityIDSource,
		SecurityType:          o.SecurityType,
		OrderIndex:            o.OrderIndex,
		OrderType:             o.OrderType,
		OrderPrice:            int64(o.OrderPrice),
		OrderQty:              int64(o.OrderQty),
		OrderBSFlag:           o.OrderBSFlag,
		ChannelNo:             o.ChannelNo,
		OrderNo:               o.OrderNo,
		TradedQty:             int64(o.TradedQty),
		ApplSeqNum:            o.ApplSeqNum,
		DataMultiplePowerOf10: o.DataMultiplePowerOf10,
		SecurityStatus:        o.SecurityStatus,
	}
}

func transactionRow(i uint64, t schema.Transaction) TransactionRow {
	return TransactionRow{
		FileIndex:             i,
		SecurityID:            t.SecurityID,
		MDDate:                t.MDDate,
		MDTime:                t.MDTime,
		LocalRecvTimestamp:    t.LocalRecvTimestamp,
		SecurityIDSource:      t.SecurityIDSource,
		SecurityType:          t.SecurityType,
		TradeIndex:            t.TradeIndex,
		TradeBuyNo:            t.TradeBuyNo,
		TradeSellNo:           t.TradeSellNo,
		TradeType:             t.TradeType,
		TradeBSFlag:           t.TradeBSFlag,
		TradePrice:            int64(t.TradePrice),
		TradeQty:              int64(t.TradeQty),
		TradeMoney:            int64(t.TradeMoney),
		ApplSeqNum:            t.ApplSeqNum,
		ChannelNo:             t.ChannelNo,
		DataMultiplePowerOf10: t.DataMultiplePowerOf10,
	}
}
