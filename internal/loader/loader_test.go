package loader

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mdlog/internal/codec"
	"mdlog/internal/mdg"
	"mdlog/internal/scan"
	"mdlog/internal/store"
	"mdlog/pkg/conn"
	"mdlog/pkg/exception"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	c, err := conn.Open(sqlite.Open(":memory:"), conn.Option{
		MaxOpenConns: 1,
		Config:       &gorm.Config{Logger: logger.Discard},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(context.Background()))
	return c.DB()
}

func openStore(t *testing.T, l codec.Layout, n int) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), l.Kind().FileName())
	a, err := store.Create(path, l, store.AppendOptions{})
	require.NoError(t, err)
	g, err := mdg.NewGenerator(mdg.Config{Generation: l.Generation()})
	require.NoError(t, err)
	recs, err := g.Fill(l.Kind(), n)
	require.NoError(t, err)
	require.NoError(t, a.Append(recs...))
	require.NoError(t, a.Close())

	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestLoadOrders(t *testing.T) {
	db := openDB(t)
	ld, err := New(db, Config{BatchSize: 7})
	require.NoError(t, err)
	require.NoError(t, ld.Migrate(context.Background()))

	st := openStore(t, codec.OrderV2, 60)
	n, err := ld.Load(context.Background(), st, scan.Filter{Symbol: "600000"})
	require.NoError(t, err)
	assert.Equal(t, uint64(20), n)

	var rows []OrderRow
	require.NoError(t, db.Order("file_index").Find(&rows).Error)
	require.Len(t, rows, 20)
	want, err := st.ReadAt(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), rows[1].FileIndex)
	assert.Equal(t, want.Security(), rows[1].SecurityID)
	assert.Equal(t, want.Time(), rows[1].MDTime)
	assert.Equal(t, "TRADE", rows[1].SecurityStatus)
}

func TestLoadTransactions(t *testing.T) {
	db := openDB(t)
	ld, err := New(db, Config{})
	require.NoError(t, err)
	require.NoError(t, ld.Migrate(context.Background()))

	st := openStore(t, codec.TransactionV1, 30)
	n, err := ld.Load(context.Background(), st, scan.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(30), n)

	var count int64
	require.NoError(t, db.Model(&TransactionRow{}).Count(&count).Error)
	assert.Equal(t, int64(30), count)

	var first TransactionRow
	require.NoError(t, db.Order("file_index").First(&first).Error)
	assert.Zero(t, first.LocalRecvTimestamp)
	assert.Equal(t, first.TradePrice*first.TradeQty, first.TradeMoney)
}

func TestLoadUnsupported(t *testing.T) {
	ld, err := New(openDB(t), Config{})
	require.NoError(t, err)

	st := openStore(t, codec.TickV1, 3)
	_, err = ld.Load(context.Background(), st, scan.Filter{})
	require.ErrorIs(t, err, exception.ErrKindUnsupported)
}

func TestNewRejectsNil(t *testing.T) {
	_, err := New(nil, Config{})
	require.ErrorIs(t, err, exception.ErrNilInstance)
	_, err = New(openDB(t), Config{BatchSize: -1})
	require.Error(t, err)
}
