package export

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdlog/internal/codec"
	"mdlog/internal/mdg"
	"mdlog/internal/obs"
	"mdlog/internal/schema"
	"mdlog/internal/store"
	"mdlog/pkg/exception"
)

// Fixtures rotate 600000, 000001 and 300750 and step MDTime by 10ms from
// 09:30:00.000, so 1000 records hold 334, 333 and 333 of each.
func writeFixture(t testing.TB, dir string, l codec.Layout, n int) string {
	t.Helper()
	path := filepath.Join(dir, l.Kind().FileName())
	a, err := store.Create(path, l, store.AppendOptions{})
	require.NoError(t, err)
	g, err := mdg.NewGenerator(mdg.Config{Generation: l.Generation()})
	require.NoError(t, err)
	recs, err := g.Fill(l.Kind(), n)
	require.NoError(t, err)
	require.NoError(t, a.Append(recs...))
	require.NoError(t, a.Close())
	return path
}

func openFixture(t testing.TB, l codec.Layout, n int, m *obs.Metrics) *store.Store {
	t.Helper()
	path := writeFixture(t, t.TempDir(), l, n)
	st, err := store.New(store.Config{Path: path, Metrics: m})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func bufferSinks(codes ...string) (map[string]io.Writer, map[string]*bytes.Buffer) {
	sinks := make(map[string]io.Writer, len(codes))
	bufs := make(map[string]*bytes.Buffer, len(codes))
	for _, c := range codes {
		b := &bytes.Buffer{}
		sinks[c], bufs[c] = b, b
	}
	return sinks, bufs
}

func lines(b *bytes.Buffer) []string {
	s := strings.TrimSuffix(b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestRunSinglePass(t *testing.T) {
	m := obs.NewMetrics()
	st := openFixture(t, codec.OrderV2, 1000, m)

	ex, err := New(Config{Metrics: m})
	require.NoError(t, err)
	sinks, bufs := bufferSinks("600000", "000001", "300750")

	stats, err := ex.Run(context.Background(), st, sinks)
	require.NoError(t, err)

	assert.Equal(t, uint64(1000), st.Reads())
	assert.Equal(t, uint64(1000), stats.Visited)
	assert.Zero(t, stats.Unmatched)
	assert.Zero(t, stats.Filtered)
	assert.Equal(t, map[string]uint64{"600000": 334, "000001": 333, "300750": 333}, stats.Matched)

	var total int
	for code, b := range bufs {
		ls := lines(b)
		assert.Len(t, ls, int(stats.Matched[code]))
		for _, l := range ls {
			assert.True(t, strings.HasPrefix(l, `HTSCSecurityID: "`+schema.FullSymbol(code)+`"`), l)
		}
		total += len(ls)
	}
	assert.Equal(t, 1000, total+int(stats.Unmatched))
	assert.Equal(t, uint64(1000), m.Load(schema.KindOrder, obs.CounterDecoded))
	assert.Equal(t, uint64(1000), m.Load(schema.KindOrder, obs.CounterMatched))
}

func TestRunDecodesOnlyMatches(t *testing.T) {
	m := obs.NewMetrics()
	st := openFixture(t, codec.TransactionV1, 1000, m)

	ex, err := New(Config{Metrics: m})
	require.NoError(t, err)
	sinks, bufs := bufferSinks("600000.SH", "000001", "688981")

	stats, err := ex.Run(context.Background(), st, sinks)
	require.NoError(t, err)

	assert.Equal(t, uint64(1000), st.Reads())
	assert.Equal(t, uint64(334), stats.Matched["600000"])
	assert.Equal(t, uint64(333), stats.Matched["000001"])
	assert.Zero(t, stats.Matched["688981"])
	assert.Equal(t, uint64(333), stats.Unmatched)
	assert.Equal(t, stats.Visited, stats.TotalMatched()+stats.Unmatched)
	assert.Equal(t, uint64(667), m.Load(schema.KindTransaction, obs.CounterDecoded))
	assert.Equal(t, uint64(333), m.Load(schema.KindTransaction, obs.CounterUnmatched))

	assert.Len(t, lines(bufs["600000.SH"]), 334)
	assert.Empty(t, bufs["688981"].Bytes())
}

func TestRunEndTime(t *testing.T) {
	st := openFixture(t, codec.OrderV1, 1000, nil)

	// 09:30:00.500 is the MDTime of record 50
	ex, err := New(Config{EndTime: optional.Some[int32](93000500)})
	require.NoError(t, err)
	sinks, bufs := bufferSinks("600000", "000001", "300750")

	stats, err := ex.Run(context.Background(), st, sinks)
	require.NoError(t, err)

	assert.Equal(t, uint64(50), stats.TotalMatched())
	assert.Equal(t, uint64(950), stats.Filtered)
	assert.Equal(t, uint64(17), stats.Matched["600000"])
	for _, l := range lines(bufs["600000"]) {
		assert.NotContains(t, l, "MDTime: 930005")
	}
}

func TestRunProgress(t *testing.T) {
	st := openFixture(t, codec.OrderV2, 1000, nil)

	var reports []Progress
	ex, err := New(Config{ProgressStep: 10, OnProgress: func(p Progress) { reports = append(reports, p) }})
	require.NoError(t, err)
	sinks, _ := bufferSinks("600000")

	_, err = ex.Run(context.Background(), st, sinks)
	require.NoError(t, err)

	require.Len(t, reports, 10)
	for i, p := range reports[:9] {
		assert.Equal(t, uint64(100*(i+1)), p.Done)
		assert.Equal(t, uint64(1000), p.Total)
	}
	last := reports[9]
	assert.Equal(t, uint64(1000), last.Done)
	assert.Equal(t, float64(100), last.Percent())
	assert.Equal(t, uint64(334), last.Matched)
	assert.Zero(t, last.ETA())
}

func TestRunRejectsSnapshots(t *testing.T) {
	st := openFixture(t, codec.SnapshotV2, 10, nil)

	ex, err := New(Config{})
	require.NoError(t, err)
	sinks, _ := bufferSinks("600000")

	_, err = ex.Run(context.Background(), st, sinks)
	require.ErrorIs(t, err, exception.ErrKindUnsupported)
}

func TestRunRejectsDuplicateSinks(t *testing.T) {
	st := openFixture(t, codec.OrderV2, 10, nil)

	ex, err := New(Config{})
	require.NoError(t, err)
	sinks, _ := bufferSinks("600000", "600000.SH")

	_, err = ex.Run(context.Background(), st, sinks)
	require.ErrorIs(t, err, exception.ErrInvalidArgument)
}

func TestRunCanceled(t *testing.T) {
	st := openFixture(t, codec.OrderV2, 100, nil)

	ex, err := New(Config{})
	require.NoError(t, err)
	sinks, _ := bufferSinks("600000")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ex.Run(ctx, st, sinks)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	_, err := New(Config{ProgressStep: 101})
	require.Error(t, err)
	_, err = New(Config{ProgressInterval: -1})
	require.Error(t, err)
}

func BenchmarkRun(b *testing.B) {
	st := openFixture(b, codec.OrderV2, 10_000, nil)
	ex, err := New(Config{})
	require.NoError(b, err)
	sinks := map[string]io.Writer{"600000": io.Discard, "000001": io.Discard}

	for b.Loop() {
		if _, err := ex.Run(context.Background(), st, sinks); err != nil {
			b.Fatal(err)
		}
	}
}
