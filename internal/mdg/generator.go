package mdg

import (
	"fmt"

	"mdlog/internal/schema"
)

const (
	defaultDate      = 20260122
	defaultStart     = 93000000
	defaultStepMs    = 10
	defaultBasePrice = 100000
	defaultTickSize  = 100
	defaultQty       = 100
)

var defaultSymbols = []string{"600000", "000001", "300750"}

// Config controls the synthetic record stream.
type Config struct {
	// Symbols are bare codes, visited round-robin.
	Symbols []string
	// Channels are assigned to symbols by position, wrapping around.
	Channels   []int32
	Date       int32
	Start      int32
	StepMillis int64
	// Generation V1 leaves receive timestamps at zero.
	Generation schema.Generation
	BasePrice  int64
	TickSize   int64
}

func (c Config) withDefaults() Config {
	if len(c.Symbols) == 0 {
		c.Symbols = defaultSymbols
	}
	if len(c.Channels) == 0 {
		c.Channels = []int32{1, 2}
	}
	if c.Date == 0 {
		c.Date = defaultDate
	}
	if c.Start == 0 {
		c.Start = defaultStart
	}
	if c.StepMillis == 0 {
		c.StepMillis = defaultStepMs
	}
	if c.Generation == schema.GenerationUnknown {
		c.Generation = schema.V2
	}
	if c.BasePrice == 0 {
		c.BasePrice = defaultBasePrice
	}
	if c.TickSize == 0 {
		c.TickSize = defaultTickSize
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.StepMillis < 0 {
		return fmt.Errorf("invalid generator config: StepMillis must be >= 0")
	}
	if c.BasePrice <= 0 {
		return fmt.Errorf("invalid generator config: BasePrice must be > 0")
	}
	if c.Date < 19000101 || c.Date > 99991231 {
		return fmt.Errorf("invalid generator config: Date %d is not YYYYMMDD", c.Date)
	}
	if _, err := clockMillis(c.Start); err != nil {
		return fmt.Errorf("invalid generator config: %w", err)
	}
	for _, s := range c.Symbols {
		if s == "" || len(s) >= schema.SecurityIDSize {
			return fmt.Errorf("invalid generator config: bad symbol %q", s)
		}
	}
	return nil
}

// Generator creates a deterministic stream of records. Within a channel
// ApplSeqNum and MDTime never decrease.
type Generator struct {
	cfg     Config
	index   int64
	startMs int64
	seq     map[int32]int64
}

// NewGenerator validates cfg and creates a generator.
func NewGenerator(cfg Config) (*Generator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	startMs, _ := clockMillis(cfg.Start)
	return &Generator{
		cfg:     cfg,
		startMs: startMs,
		seq:     make(map[int32]int64, len(cfg.Channels)),
	}, nil
}

type stamp struct {
	symbol  string
	channel int32
	seq     int64
	mdtime  int32
	recv    int64
	ms      int64
	step    int64
}

func (g *Generator) next() stamp {
	i := g.index
	g.index++

	slot := int(i % int64(len(g.cfg.Symbols)))
	channel := g.cfg.Channels[slot%len(g.cfg.Channels)]
	g.seq[channel]++

	ms := g.startMs + i*g.cfg.StepMillis
	st := stamp{
		symbol:  g.cfg.Symbols[slot],
		channel: channel,
		seq:     g.seq[channel],
		mdtime:  packClock(ms),
		ms:      ms,
		step:    i,
	}
	if g.cfg.Generation == schema.V2 {
		st.recv = recvNanos(g.cfg.Date, ms)
	}
	return st
}

func (g *Generator) price(step int64) schema.Price {
	return schema.Price(g.cfg.BasePrice + (step%20-10)*g.cfg.TickSize)
}

func source(symbol string) int32 {
	if schema.ExchangeOf(symbol) == schema.ExchangeShanghai {
		return 101
	}
	return 102
}

// Next returns the next record of the given kind.
func (g *Generator) Next(kind schema.Kind) (schema.Record, error) {
	switch kind {
	case schema.KindOrder:
		return g.Order(), nil
	case schema.KindTransaction:
		return g.Transaction(), nil
	case schema.KindTick:
		return g.Tick(), nil
	case schema.KindSnapshot:
		return g.Snapshot(), nil
	}
	return nil, fmt.Errorf("generate %s record: unsupported kind", kind)
}

// Fill returns n records of the given kind.
func (g *Generator) Fill(kind schema.Kind, n int) ([]schema.Record, error) {
	out := make([]schema.Record, 0, n)
	for range n {
		r, err := g.Next(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (g *Generator) Order() schema.Order {
	st := g.next()
	return schema.Order{
		LocalRecvTimestamp:    st.recv,
		SecurityID:            st.symbol,
		MDDate:                g.cfg.Date,
		MDTime:                st.mdtime,
		SecurityIDSource:      source(st.symbol),
		SecurityType:          1,
		OrderIndex:            st.seq,
		OrderType:             2,
		OrderPrice:            g.price(st.step),
		OrderQty:              schema.Quantity(defaultQty * (1 + st.step%5)),
		OrderBSFlag:           int32(1 + st.step%2),
		ChannelNo:             st.channel,
		OrderNo:               st.step + 1,
		ApplSeqNum:            st.seq,
		DataMultiplePowerOf10: schema.DefaultPowerOf10,
		SecurityStatus:        "TRADE",
	}
}

func (g *Generator) Transaction() schema.Transaction {
	st := g.next()
	px := g.price(st.step)
	qty := schema.Quantity(defaultQty * (1 + st.step%3))
	return schema.Transaction{
		LocalRecvTimestamp:    st.recv,
		SecurityID:            st.symbol,
		MDDate:                g.cfg.Date,
		MDTime:                st.mdtime,
		SecurityIDSource:      source(st.symbol),
		SecurityType:          1,
		TradeIndex:            st.seq,
		TradeBuyNo:            2*st.step + 1,
		TradeSellNo:           2*st.step + 2,
		TradeBSFlag:           int32(1 + st.step%2),
		TradePrice:            px,
		TradeQty:              qty,
		TradeMoney:            schema.Notional(int64(px) * int64(qty)),
		ApplSeqNum:            st.seq,
		ChannelNo:             st.channel,
		DataMultiplePowerOf10: schema.DefaultPowerOf10,
	}
}

func (g *Generator) Tick() schema.Tick {
	st := g.next()
	last := g.price(st.step)
	t := schema.Tick{
		LocalRecvTimestamp:    st.recv,
		SecurityID:            st.symbol,
		MDDate:                g.cfg.Date,
		MDTime:                st.mdtime,
		DataTimestamp:         recvNanos(g.cfg.Date, st.ms) / 1e6,
		TradingPhaseCode:      'T',
		SecurityIDSource:      source(st.symbol),
		SecurityType:          1,
		MaxPx:                 schema.Price(g.cfg.BasePrice * 11 / 10),
		MinPx:                 schema.Price(g.cfg.BasePrice * 9 / 10),
		PreClosePx:            schema.Price(g.cfg.BasePrice),
		NumTrades:             st.step,
		TotalVolumeTrade:      schema.Quantity(defaultQty * st.step),
		LastPx:                last,
		OpenPx:                schema.Price(g.cfg.BasePrice),
		HighPx:                schema.Price(g.cfg.BasePrice + 10*g.cfg.TickSize),
		LowPx:                 schema.Price(g.cfg.BasePrice - 10*g.cfg.TickSize),
		ChannelNo:             st.channel,
		NumBuyOrders:          schema.Levels,
		NumSellOrders:         schema.Levels,
		DataMultiplePowerOf10: schema.DefaultPowerOf10,
	}
	for i := 0; i < schema.Levels; i++ {
		t.BuyPriceQueue[i] = last - schema.Price(int64(i+1)*g.cfg.TickSize)
		t.SellPriceQueue[i] = last + schema.Price(int64(i+1)*g.cfg.TickSize)
		t.BuyOrderQtyQueue[i] = schema.Quantity(defaultQty * int64(i+1))
		t.SellOrderQtyQueue[i] = schema.Quantity(defaultQty * int64(i+2))
		t.BuyNumOrdersQueue[i] = int64(i + 1)
		t.SellNumOrdersQueue[i] = int64(i + 2)
	}
	t.BuyNumOrdersQueueCount = schema.Levels
	t.SellNumOrdersQueueCount = schema.Levels
	return t
}

func (g *Generator) Snapshot() schema.Snapshot {
	st := g.next()
	last := g.price(st.step)
	s := schema.Snapshot{
		LocalRecvTimestamp:    st.recv,
		SecurityID:            st.symbol,
		MDDate:                g.cfg.Date,
		MDTime:                st.mdtime,
		TradingPhaseCode:      'T',
		SecurityIDSource:      source(st.symbol),
		SecurityType:          1,
		ChannelNo:             st.channel,
		ApplSeqNum:            st.seq,
		SnapshotMDDateTime:    int64(g.cfg.Date)*1e9 + int64(st.mdtime),
		NumTrades:             st.step,
		LastPx:                last,
		PreClosePx:            schema.Price(g.cfg.BasePrice),
		BuyEntriesCount:       schema.Levels,
		SellEntriesCount:      schema.Levels,
		DataMultiplePowerOf10: schema.DefaultPowerOf10,
	}
	for i := 0; i < schema.Levels; i++ {
		s.BuyEntries[i] = schema.Entry{
			Level:          int32(i + 1),
			Price:          last - schema.Price(int64(i+1)*g.cfg.TickSize),
			TotalQty:       int32(defaultQty * (i + 1)),
			NumberOfOrders: int32(i + 1),
		}
		s.SellEntries[i] = schema.Entry{
			Level:          int32(i + 1),
			Price:          last + schema.Price(int64(i+1)*g.cfg.TickSize),
			TotalQty:       int32(defaultQty * (i + 2)),
			NumberOfOrders: int32(i + 2),
		}
	}
	return s
}
