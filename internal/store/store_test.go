package store

import (
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdlog/internal/codec"
	"mdlog/internal/mdg"
	"mdlog/internal/obs"
	"mdlog/internal/schema"
	"mdlog/pkg/exception"
)

func generate(t testing.TB, l codec.Layout, n int) []schema.Record {
	t.Helper()
	g, err := mdg.NewGenerator(mdg.Config{Generation: l.Generation()})
	require.NoError(t, err)
	recs, err := g.Fill(l.Kind(), n)
	require.NoError(t, err)
	return recs
}

func writeFixture(t testing.TB, dir string, l codec.Layout, n int, opts AppendOptions) (string, []schema.Record) {
	t.Helper()
	path := filepath.Join(dir, l.Kind().FileName())
	a, err := Create(path, l, opts)
	require.NoError(t, err)
	recs := generate(t, l, n)
	require.NoError(t, a.Append(recs...))
	require.NoError(t, a.Close())
	return path, recs
}

func patchHeader(t testing.TB, path string, off int64, v []byte) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteAt(v, off)
	require.NoError(t, err)
}

func u64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func TestOpenAndReadAt(t *testing.T) {
	for _, l := range codec.Layouts {
		t.Run(l.String(), func(t *testing.T) {
			path, recs := writeFixture(t, t.TempDir(), l, 25, AppendOptions{})

			s, err := Open(path)
			require.NoError(t, err)
			defer s.Close()

			assert.Equal(t, l, s.Layout())
			assert.Equal(t, l.Kind(), s.Kind())
			assert.Equal(t, l.Size(), s.StructSize())
			require.Equal(t, uint64(25), s.Len())

			for i, want := range recs {
				got, err := s.ReadAt(uint64(i))
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
			assert.Equal(t, uint64(25), s.Reads())

			_, err = s.ReadAt(25)
			require.ErrorIs(t, err, exception.ErrIndexOutOfRange)
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "orders.bin"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOpenShorterThanHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 20), 0o644))

	_, err := Open(path)
	require.ErrorIs(t, err, exception.ErrTruncated)
}

func TestOpenSizeMismatch(t *testing.T) {
	path, _ := writeFixture(t, t.TempDir(), codec.TransactionV1, 3, AppendOptions{})
	patchHeader(t, path, 6, binary.LittleEndian.AppendUint16(nil, 136))

	_, err := Open(path)
	require.ErrorIs(t, err, exception.ErrSizeMismatch)
	var fe *codec.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, codec.SizeMismatch, fe.Kind)
}

func TestOpenUnknownMagic(t *testing.T) {
	path, _ := writeFixture(t, t.TempDir(), codec.OrderV2, 1, AppendOptions{})
	patchHeader(t, path, 0, binary.LittleEndian.AppendUint32(nil, 0xCAFEBABE))

	_, err := Open(path)
	require.ErrorIs(t, err, exception.ErrUnknownMagic)
}

func TestOpenCountBeyondFile(t *testing.T) {
	path, _ := writeFixture(t, t.TempDir(), codec.OrderV1, 50, AppendOptions{})
	patchHeader(t, path, codec.RecordCountOffset, u64(100))

	_, err := Open(path)
	require.ErrorIs(t, err, exception.ErrTruncated)

	patchHeader(t, path, codec.RecordCountOffset, u64(1<<62))
	_, err = Open(path)
	require.ErrorIs(t, err, exception.ErrTruncated)
}

func TestOpenKindMismatch(t *testing.T) {
	path, _ := writeFixture(t, t.TempDir(), codec.TickV2, 2, AppendOptions{})

	_, err := New(Config{Path: path, Kind: schema.KindOrder})
	require.ErrorIs(t, err, exception.ErrKindMismatch)

	s, err := New(Config{Path: path, Kind: schema.KindTick})
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestPreallocatedFile(t *testing.T) {
	path, recs := writeFixture(t, t.TempDir(), codec.TransactionV2, 10, AppendOptions{Preallocate: 1000})

	st, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(codec.HeaderSize+1000*136), st.Size())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, uint64(10), s.Len())
	got, err := s.ReadAt(9)
	require.NoError(t, err)
	assert.Equal(t, recs[9], got)

	// zeroed bytes past the count are never handed out
	_, err = s.ReadAt(10)
	require.ErrorIs(t, err, exception.ErrIndexOutOfRange)
	require.ErrorIs(t, s.Visit(0, 11, func(uint64, []byte) error { return nil }), exception.ErrIndexOutOfRange)
}

func TestLiveGrowth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.bin")
	a, err := Create(path, codec.OrderV2, AppendOptions{})
	require.NoError(t, err)
	defer a.Close()

	recs := generate(t, codec.OrderV2, 5000)
	require.NoError(t, a.Append(recs[:10]...))

	m := obs.NewMetrics()
	s, err := New(Config{Path: path, Metrics: m})
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, uint64(10), s.Len())
	mapped := s.MappedSize()

	require.NoError(t, a.Append(recs[10:]...))
	require.Equal(t, uint64(5000), s.Len())
	assert.Equal(t, uint64(5000), s.Header().RecordCount)

	got, err := s.ReadAt(4999)
	require.NoError(t, err)
	assert.Equal(t, recs[4999], got)
	assert.Greater(t, s.MappedSize(), mapped)
	assert.Equal(t, uint64(1), m.Load(schema.KindOrder, obs.CounterRemaps))
}

func TestCountAdvancesPastShrunkFile(t *testing.T) {
	path, _ := writeFixture(t, t.TempDir(), codec.OrderV1, 50, AppendOptions{})

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	patchHeader(t, path, codec.RecordCountOffset, u64(80))
	assert.Equal(t, uint64(80), s.Len())

	_, err = s.ReadAt(0)
	require.ErrorIs(t, err, exception.ErrTruncated)
}

func TestVisit(t *testing.T) {
	path, recs := writeFixture(t, t.TempDir(), codec.OrderV1, 100, AppendOptions{})

	s, err := New(Config{Path: path, ChunkRecords: 7})
	require.NoError(t, err)
	defer s.Close()

	var seen []uint64
	err = s.Visit(10, 40, func(i uint64, rec []byte) error {
		seen = append(seen, i)
		r, err := s.Decode(rec)
		if err != nil {
			return err
		}
		assert.Equal(t, recs[i], r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 30)
	assert.Equal(t, uint64(10), seen[0])
	assert.Equal(t, uint64(39), seen[29])
	assert.Equal(t, uint64(30), s.Reads())

	stop := exception.ErrInvalidArgument
	n := 0
	err = s.Visit(0, 100, func(uint64, []byte) error {
		n++
		if n == 3 {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, uint64(33), s.Reads())

	require.ErrorIs(t, s.Visit(5, 4, func(uint64, []byte) error { return nil }), exception.ErrInvalidArgument)
	require.NoError(t, s.Visit(5, 5, func(uint64, []byte) error { return nil }))
}

func TestClose(t *testing.T) {
	path, _ := writeFixture(t, t.TempDir(), codec.SnapshotV1, 3, AppendOptions{})
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Zero(t, s.Len())

	_, err = s.ReadAt(0)
	require.ErrorIs(t, err, exception.ErrStoreClosed)
}

func TestConcurrentReadersDuringAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.bin")
	a, err := Create(path, codec.TransactionV2, AppendOptions{})
	require.NoError(t, err)
	defer a.Close()

	recs := generate(t, codec.TransactionV2, 2000)
	require.NoError(t, a.Append(recs[0]))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				n := s.Len()
				r, err := s.ReadAt(n - 1)
				if err != nil {
					errs <- err
					return
				}
				if r.Security() == "" {
					errs <- exception.ErrInvalidArgument
					return
				}
			}
		}()
	}

	for i := 1; i < len(recs); i += 100 {
		require.NoError(t, a.Append(recs[i:min(i+100, len(recs))]...))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, uint64(2000), s.Len())
}

func TestResumeAppender(t *testing.T) {
	path, recs := writeFixture(t, t.TempDir(), codec.TickV1, 3, AppendOptions{})

	a, err := Resume(path)
	require.NoError(t, err)
	assert.Equal(t, codec.TickV1, a.Layout())
	assert.Equal(t, uint64(3), a.Count())
	require.NoError(t, a.Append(recs[0]))
	require.NoError(t, a.Sync())
	require.NoError(t, a.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, uint64(4), s.Len())
	got, err := s.ReadAt(3)
	require.NoError(t, err)
	assert.Equal(t, recs[0], got)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, codec.OrderV2, 4, AppendOptions{})
	writeFixture(t, dir, codec.TickV1, 2, AppendOptions{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transactions.bin"), []byte("short"), 0o644))

	infos, err := Inspect(dir)
	require.NoError(t, err)
	require.Len(t, infos, 4)

	byKind := map[schema.Kind]FileInfo{}
	for _, fi := range infos {
		byKind[fi.Kind] = fi
	}

	orders := byKind[schema.KindOrder]
	require.NoError(t, orders.Err)
	assert.True(t, orders.Present)
	assert.Equal(t, codec.OrderV2, orders.Layout())
	assert.Equal(t, uint64(4), orders.Header.RecordCount)

	assert.Equal(t, codec.TickV1, byKind[schema.KindTick].Layout())

	txn := byKind[schema.KindTransaction]
	assert.True(t, txn.Present)
	require.ErrorIs(t, txn.Err, exception.ErrTruncated)

	assert.False(t, byKind[schema.KindSnapshot].Present)
	assert.NoError(t, byKind[schema.KindSnapshot].Err)

	_, err = Inspect(filepath.Join(dir, "orders.bin"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	require.Error(t, Config{}.Validate())
	require.Error(t, Config{Path: "x", ChunkRecords: -1}.Validate())
	require.Error(t, Config{Path: "x", ChunkRecords: 1, Kind: schema.Kind(9)}.Validate())
	require.NoError(t, DefaultConfig("x").Validate())
}

func BenchmarkReadAt(b *testing.B) {
	path, _ := writeFixture(b, b.TempDir(), codec.OrderV2, 1024, AppendOptions{})
	s, err := Open(path)
	require.NoError(b, err)
	defer s.Close()

	var i uint64
	for b.Loop() {
		_, _ = s.ReadAt(i & 1023)
		i++
	}
}
