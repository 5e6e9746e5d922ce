package codec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdlog/internal/schema"
	"mdlog/pkg/exception"
)

const recvTs = 1769045400050123456

func sampleOrder(gen schema.Generation) schema.Order {
	o := schema.Order{
		SecurityID:            "600000",
		MDDate:                20260122,
		MDTime:                93000050,
		SecurityIDSource:      101,
		SecurityType:          1,
		OrderIndex:            12,
		OrderType:             2,
		OrderPrice:            125000,
		OrderQty:              300,
		OrderBSFlag:           1,
		ChannelNo:             3,
		OrderNo:               55,
		TradedQty:             100,
		ApplSeqNum:            4402,
		DataMultiplePowerOf10: 4,
		SecurityStatus:        "OCALL",
	}
	if gen == schema.V2 {
		o.LocalRecvTimestamp = recvTs
	}
	return o
}

func sampleTransaction(gen schema.Generation) schema.Transaction {
	t := schema.Transaction{
		SecurityID:            "000001",
		MDDate:                20260122,
		MDTime:                93001120,
		SecurityIDSource:      102,
		SecurityType:          1,
		TradeIndex:            77,
		TradeBuyNo:            1001,
		TradeSellNo:           1002,
		TradeType:             0,
		TradeBSFlag:           2,
		TradePrice:            112300,
		TradeQty:              500,
		TradeMoney:            56150000,
		ApplSeqNum:            9001,
		ChannelNo:             2011,
		DataMultiplePowerOf10: 4,
	}
	if gen == schema.V2 {
		t.LocalRecvTimestamp = recvTs
	}
	return t
}

func sampleTick(gen schema.Generation) schema.Tick {
	t := schema.Tick{
		SecurityID:              "300750",
		MDDate:                  20260122,
		MDTime:                  93003000,
		DataTimestamp:           1769045403000,
		TradingPhaseCode:        'T',
		SecurityIDSource:        102,
		SecurityType:            1,
		MaxPx:                   2200000,
		MinPx:                   1800000,
		PreClosePx:              2000000,
		NumTrades:               812,
		TotalVolumeTrade:        91200,
		TotalValueTrade:         18240000000,
		LastPx:                  2001000,
		OpenPx:                  1999000,
		HighPx:                  2010000,
		LowPx:                   1990000,
		TotalBuyQty:             40000,
		TotalSellQty:            51000,
		WeightedAvgBuyPx:        1995000,
		WeightedAvgSellPx:       2005000,
		WithdrawBuyNumber:       3,
		WithdrawBuyAmount:       400,
		WithdrawBuyMoney:        80000000,
		WithdrawSellNumber:      4,
		WithdrawSellAmount:      500,
		WithdrawSellMoney:       100000000,
		TotalBuyNumber:          120,
		TotalSellNumber:         130,
		NumBuyOrders:            14,
		NumSellOrders:           15,
		ChannelNo:               1013,
		BuyOrderQueueCount:      50,
		SellOrderQueueCount:     7,
		BuyNumOrdersQueueCount:  10,
		SellNumOrdersQueueCount: 9,
		DataMultiplePowerOf10:   4,
	}
	for i := 0; i < schema.Levels; i++ {
		t.BuyPriceQueue[i] = schema.Price(2000000 - 100*int64(i))
		t.BuyOrderQtyQueue[i] = schema.Quantity(100 * int64(i+1))
		t.SellPriceQueue[i] = schema.Price(2001000 + 100*int64(i))
		t.SellOrderQtyQueue[i] = schema.Quantity(200 * int64(i+1))
	}
	for i := 0; i < schema.QueueDepth; i++ {
		t.BuyOrderQueue[i] = int64(i + 1)
		t.SellOrderQueue[i] = int64(1000 + i)
		t.BuyNumOrdersQueue[i] = int64(2000 + i)
		t.SellNumOrdersQueue[i] = int64(3000 + i)
	}
	if gen == schema.V2 {
		t.LocalRecvTimestamp = recvTs
	}
	return t
}

func sampleSnapshot(gen schema.Generation) schema.Snapshot {
	s := schema.Snapshot{
		SecurityID:         "601318",
		MDDate:             20260122,
		MDTime:             100000000,
		DataTimestamp:      1769047200000,
		TradingPhaseCode:   'T',
		SecurityIDSource:   101,
		SecurityType:       1,
		ChannelNo:          6,
		ApplSeqNum:         88123,
		SnapshotMDDateTime: 20260122100000000,
		NumTrades:          1500,
		TotalVolumeTrade:   3000000,
		TotalValueTrade:    1500000000000,
		LastPx:             500000,
		HighPx:             510000,
		LowPx:              490000,
		MaxPx:              550000,
		MinPx:              450000,
		PreClosePx:         495000,
		OpenPx:             496000,
		ClosePx:            0,
		TotalBuyQty:        80000,
		TotalSellQty:       90000,
		WeightedAvgBuyPx:   497000,
		WeightedAvgSellPx:  503000,
		TotalBuyNumber:     400,
		TotalSellNumber:    410,
		NumBuyOrders:       33,
		NumSellOrders:      34,
		BuyEntriesCount:    10,
		SellEntriesCount:   8,

		DataMultiplePowerOf10: 4,
	}
	for i := 0; i < schema.Levels; i++ {
		s.BuyEntries[i] = schema.Entry{Level: int32(i + 1), Price: schema.Price(499900 - 100*int64(i)), TotalQty: int32(1000 + i), NumberOfOrders: int32(i + 2)}
		s.SellEntries[i] = schema.Entry{Level: int32(i + 1), Price: schema.Price(500100 + 100*int64(i)), TotalQty: int32(2000 + i), NumberOfOrders: int32(i + 3)}
	}
	if gen == schema.V2 {
		s.LocalRecvTimestamp = recvTs
	}
	return s
}

func sampleRecord(l Layout) schema.Record {
	switch l.Kind() {
	case schema.KindOrder:
		return sampleOrder(l.Generation())
	case schema.KindTransaction:
		return sampleTransaction(l.Generation())
	case schema.KindTick:
		return sampleTick(l.Generation())
	default:
		return sampleSnapshot(l.Generation())
	}
}

func TestRoundTrip(t *testing.T) {
	for _, l := range Layouts {
		t.Run(l.String(), func(t *testing.T) {
			orig := sampleRecord(l)
			buf, err := Encode(nil, l, orig)
			require.NoError(t, err)
			require.Len(t, buf, l.Size())

			got, err := Decode(l, buf)
			require.NoError(t, err)
			assert.Equal(t, orig, got)
		})
	}
}

func TestEncodeV1DropsRecvTimestamp(t *testing.T) {
	o := sampleOrder(schema.V2)
	buf, err := Encode(nil, OrderV1, o)
	require.NoError(t, err)

	got, err := Decode(OrderV1, buf)
	require.NoError(t, err)
	assert.Zero(t, schema.RecvTimestamp(got))
	o.LocalRecvTimestamp = 0
	assert.Equal(t, o, got)
}

func TestFieldOffsets(t *testing.T) {
	o := sampleOrder(schema.V2)

	v1, err := Encode(nil, OrderV1, o)
	require.NoError(t, err)
	assert.Equal(t, "600000", string(v1[0:6]))
	assert.Equal(t, uint64(125000), binary.LittleEndian.Uint64(v1[72:]))
	assert.Equal(t, uint64(4402), binary.LittleEndian.Uint64(v1[112:]))
	assert.Equal(t, "OCALL", string(v1[124:129]))

	v2, err := Encode(nil, OrderV2, o)
	require.NoError(t, err)
	assert.Equal(t, uint64(recvTs), binary.LittleEndian.Uint64(v2[0:]))
	assert.Equal(t, uint64(125000), binary.LittleEndian.Uint64(v2[16:]))
	assert.Equal(t, "600000", string(v2[88:94]))

	s := sampleSnapshot(schema.V2)
	sv2, err := Encode(nil, SnapshotV2, s)
	require.NoError(t, err)
	assert.Equal(t, uint64(499900), binary.LittleEndian.Uint64(sv2[0:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(sv2[8:]))
	assert.Equal(t, byte('T'), sv2[728])

	tk := sampleTick(schema.V1)
	tv1, err := Encode(nil, TickV1, tk)
	require.NoError(t, err)
	assert.Equal(t, uint64(2200000), binary.LittleEndian.Uint64(tv1[72:]))
	assert.Equal(t, uint64(130), binary.LittleEndian.Uint64(tv1[248:]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(tv1[2208:]))
}

func TestDecodeLossySymbol(t *testing.T) {
	buf, err := Encode(nil, TransactionV2, sampleTransaction(schema.V2))
	require.NoError(t, err)
	buf[96+2] = 0xff

	got, err := Decode(TransactionV2, buf)
	require.NoError(t, err)
	assert.Equal(t, "00�001", got.Security())
}

func TestDecodeShortBuffer(t *testing.T) {
	_, err := Decode(TickV2, make([]byte, 100))
	require.ErrorIs(t, err, exception.ErrTruncated)

	_, err = Decode(LayoutUnknown, make([]byte, 1000))
	require.ErrorIs(t, err, exception.ErrUnknownMagic)
}

func TestEncodeKindMismatch(t *testing.T) {
	_, err := Encode(nil, TickV1, sampleOrder(schema.V1))
	require.ErrorIs(t, err, exception.ErrKindMismatch)

	_, err = Encode(nil, OrderV1, nil)
	require.ErrorIs(t, err, exception.ErrNilInstance)
}

func TestPeek(t *testing.T) {
	for _, l := range Layouts {
		rec := sampleRecord(l)
		buf, err := Encode(nil, l, rec)
		require.NoError(t, err)

		key, err := Peek(l, buf)
		require.NoError(t, err, l)
		assert.Equal(t, rec.Security(), string(key.Symbol), l)
		assert.Equal(t, rec.Date(), key.Date, l)
		assert.Equal(t, rec.Time(), key.Time, l)
		assert.Equal(t, rec.Channel(), key.Channel, l)

		if seq, ok := rec.(schema.Sequenced); ok {
			assert.True(t, l.HasSeq(), l)
			assert.Equal(t, seq.Seq(), key.Seq, l)
		} else {
			assert.False(t, l.HasSeq(), l)
			assert.Zero(t, key.Seq, l)
		}
	}
}

func TestLayoutTable(t *testing.T) {
	sizes := map[Layout]int{
		OrderV1: 144, OrderV2: 144,
		TransactionV1: 128, TransactionV2: 136,
		TickV1: 2216, TickV2: 2216,
		SnapshotV1: 728, SnapshotV2: 736,
	}
	seen := map[uint32]bool{}
	for _, l := range Layouts {
		assert.Equal(t, sizes[l], l.Size(), l)
		assert.Equal(t, l, LayoutOf(l.Magic()))
		assert.Equal(t, l, LayoutFor(l.Kind(), l.Generation()))
		assert.False(t, seen[l.Magic()], "duplicate magic %s", l)
		seen[l.Magic()] = true
	}
	assert.Equal(t, LayoutUnknown, LayoutOf(0xDEADBEEF))
	assert.False(t, LayoutUnknown.Valid())

	assert.Equal(t, "2DRO", MagicString(MagicOrderV2))
	assert.Equal(t, "RODM", MagicString(MagicOrderV1))
	assert.Equal(t, "....", MagicString(0))
}

func BenchmarkDecode(b *testing.B) {
	for _, l := range []Layout{OrderV2, TickV2} {
		buf, _ := Encode(nil, l, sampleRecord(l))
		b.Run(l.String(), func(b *testing.B) {
			for b.Loop() {
				_, _ = Decode(l, buf)
			}
		})
	}
}

func BenchmarkPeek(b *testing.B) {
	buf, _ := Encode(nil, TransactionV2, sampleTransaction(schema.V2))
	for b.Loop() {
		_, _ = Peek(TransactionV2, buf)
	}
}
