package schema

// Levels is the number of price levels carried by ticks and snapshots.
const Levels = 10

// QueueDepth is the length of the per-level order queues of a tick.
const QueueDepth = 50

// SecurityIDSize is the width of the NUL padded security id field.
const SecurityIDSize = 40

// SecurityStatusSize is the width of the order security status field.
const SecurityStatusSize = 16

// Record is one decoded entry of a log file. The concrete type is one of
// Order, Transaction, Tick or Snapshot.
type Record interface {
	Kind() Kind
	Security() string
	Date() int32
	Time() int32
	Channel() int32
}

// Sequenced is implemented by records carrying an exchange ApplSeqNum.
type Sequenced interface {
	Record
	Seq() int64
}

// Order is a single order-by-order message.
type Order struct {
	// LocalRecvTimestamp is nanoseconds since epoch. Always zero for V1 files.
	LocalRecvTimestamp    int64
	SecurityID            string
	MDDate                int32
	MDTime                int32
	SecurityIDSource      int32
	SecurityType          int32
	OrderIndex            int64
	OrderType             int32
	OrderPrice            Price
	OrderQty              Quantity
	OrderBSFlag           int32
	ChannelNo             int32
	OrderNo               int64
	TradedQty             Quantity
	ApplSeqNum            int64
	DataMultiplePowerOf10 int32
	SecurityStatus        string
}

func (o Order) Kind() Kind       { return KindOrder }
func (o Order) Security() string { return o.SecurityID }
func (o Order) Date() int32      { return o.MDDate }
func (o Order) Time() int32      { return o.MDTime }
func (o Order) Channel() int32   { return o.ChannelNo }
func (o Order) Seq() int64       { return o.ApplSeqNum }

// Transaction is a single trade-by-trade message.
type Transaction struct {
	LocalRecvTimestamp    int64
	SecurityID            string
	MDDate                int32
	MDTime                int32
	SecurityIDSource      int32
	SecurityType          int32
	TradeIndex            int64
	TradeBuyNo            int64
	TradeSellNo           int64
	TradeType             int32
	TradeBSFlag           int32
	TradePrice            Price
	TradeQty              Quantity
	TradeMoney            Notional
	ApplSeqNum            int64
	ChannelNo             int32
	DataMultiplePowerOf10 int32
}

func (t Transaction) Kind() Kind       { return KindTransaction }
func (t Transaction) Security() string { return t.SecurityID }
func (t Transaction) Date() int32      { return t.MDDate }
func (t Transaction) Time() int32      { return t.MDTime }
func (t Transaction) Channel() int32   { return t.ChannelNo }
func (t Transaction) Seq() int64       { return t.ApplSeqNum }

// Tick is a level-2 quote snapshot of one security.
type Tick struct {
	LocalRecvTimestamp int64
	SecurityID         string
	MDDate             int32
	MDTime             int32
	DataTimestamp      int64
	TradingPhaseCode   byte
	SecurityIDSource   int32
	SecurityType       int32

	MaxPx            Price
	MinPx            Price
	PreClosePx       Price
	NumTrades        int64
	TotalVolumeTrade Quantity
	TotalValueTrade  Notional
	LastPx           Price
	OpenPx           Price
	ClosePx          Price
	HighPx           Price
	LowPx            Price

	TotalBuyQty       Quantity
	TotalSellQty      Quantity
	WeightedAvgBuyPx  Price
	WeightedAvgSellPx Price

	// Withdraw and order-number statistics are only populated by Shanghai.
	WithdrawBuyNumber  int64
	WithdrawBuyAmount  int64
	WithdrawBuyMoney   int64
	WithdrawSellNumber int64
	WithdrawSellAmount int64
	WithdrawSellMoney  int64
	TotalBuyNumber     int64
	TotalSellNumber    int64
	NumBuyOrders       int32
	NumSellOrders      int32

	ChannelNo int32

	BuyPriceQueue     [Levels]Price
	BuyOrderQtyQueue  [Levels]Quantity
	SellPriceQueue    [Levels]Price
	SellOrderQtyQueue [Levels]Quantity

	BuyOrderQueue           [QueueDepth]int64
	SellOrderQueue          [QueueDepth]int64
	BuyOrderQueueCount      int32
	SellOrderQueueCount     int32
	BuyNumOrdersQueue       [QueueDepth]int64
	SellNumOrdersQueue      [QueueDepth]int64
	BuyNumOrdersQueueCount  int32
	SellNumOrdersQueueCount int32

	DataMultiplePowerOf10 int32
}

func (t Tick) Kind() Kind       { return KindTick }
func (t Tick) Security() string { return t.SecurityID }
func (t Tick) Date() int32      { return t.MDDate }
func (t Tick) Time() int32      { return t.MDTime }
func (t Tick) Channel() int32   { return t.ChannelNo }

// Entry is one price level of an order book snapshot.
type Entry struct {
	Level          int32
	Price          Price
	TotalQty       int32
	NumberOfOrders int32
}

// Snapshot is a rebuilt order book with ten levels per side.
type Snapshot struct {
	LocalRecvTimestamp int64
	SecurityID         string
	MDDate             int32
	MDTime             int32
	DataTimestamp      int64
	TradingPhaseCode   byte
	SecurityIDSource   int32
	SecurityType       int32
	ChannelNo          int32
	ApplSeqNum         int64
	SnapshotMDDateTime int64

	NumTrades         int64
	TotalVolumeTrade  Quantity
	TotalValueTrade   Notional
	LastPx            Price
	HighPx            Price
	LowPx             Price
	MaxPx             Price
	MinPx             Price
	PreClosePx        Price
	OpenPx            Price
	ClosePx           Price
	TotalBuyQty       Quantity
	TotalSellQty      Quantity
	WeightedAvgBuyPx  Price
	WeightedAvgSellPx Price
	TotalBuyNumber    int64
	TotalSellNumber   int64
	NumBuyOrders      int32
	NumSellOrders     int32

	BuyEntries       [Levels]Entry
	SellEntries      [Levels]Entry
	BuyEntriesCount  int32
	SellEntriesCount int32

	DataMultiplePowerOf10 int32
}

func (s Snapshot) Kind() Kind       { return KindSnapshot }
func (s Snapshot) Security() string { return s.SecurityID }
func (s Snapshot) Date() int32      { return s.MDDate }
func (s Snapshot) Time() int32      { return s.MDTime }
func (s Snapshot) Channel() int32   { return s.ChannelNo }
func (s Snapshot) Seq() int64       { return s.ApplSeqNum }

// RecvTimestamp returns the local receive timestamp of any record, zero when
// the record came from a V1 file.
func RecvTimestamp(r Record) int64 {
	switch v := r.(type) {
	case Order:
		return v.LocalRecvTimestamp
	case Transaction:
		return v.LocalRecvTimestamp
	case Tick:
		return v.LocalRecvTimestamp
	case Snapshot:
		return v.LocalRecvTimestamp
	}
	return 0
}
