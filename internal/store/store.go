package store

import (
	"encoding/binary"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/yanun0323/logs"

	"mdlog/internal/codec"
	"mdlog/internal/errors"
	"mdlog/internal/obs"
	"mdlog/internal/schema"
	"mdlog/pkg/exception"
)

// Store is a read-only memory mapping of one log file. The file may keep
// growing under an external writer; every bounded read reloads the record
// count from the mapped header first. Safe for concurrent use.
type Store struct {
	cfg    Config
	file   *os.File
	opened codec.Header
	layout codec.Layout
	size   uint64

	mu   sync.RWMutex
	data []byte

	reads atomic.Uint64
}

// Open maps path with the default configuration.
func Open(path string) (*Store, error) {
	return New(DefaultConfig(path))
}

// New opens and validates the log file named by cfg.Path.
func New(cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}

	s, err := mapStore(f, cfg)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, cfg.Path)
	}

	logs.Infof("store opened %s, layout %s, records %d, mapped %d bytes",
		cfg.Path, s.layout, s.opened.RecordCount, len(s.data))
	return s, nil
}

func mapStore(f *os.File, cfg Config) (*Store, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat")
	}
	if fi.Size() < codec.HeaderSize {
		return nil, &codec.FormatError{Kind: codec.Truncated, Have: uint64(fi.Size()), Want: codec.HeaderSize}
	}
	if fi.Size() > math.MaxInt {
		return nil, errors.Wrapf(exception.ErrArgumentUnsupported, "file size %d", fi.Size())
	}

	data, err := mapFile(f, int(fi.Size()))
	if err != nil {
		return nil, errors.Wrap(err, "mmap")
	}

	s := &Store{cfg: cfg, file: f, data: data}
	if err := s.init(); err != nil {
		_ = unmapFile(data)
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	h, err := codec.ReadHeader(s.data)
	if err != nil {
		return err
	}

	l := h.Layout()
	if s.cfg.Kind != schema.KindUnknown && s.cfg.Kind != l.Kind() {
		return errors.Wrapf(exception.ErrKindMismatch, "file holds %s records, want %s", l.Kind(), s.cfg.Kind)
	}

	s.opened = h
	s.layout = l
	s.size = uint64(l.Size())

	if need := requiredSize(h.RecordCount, s.size); need > uint64(len(s.data)) {
		return &codec.FormatError{Kind: codec.Truncated, Magic: h.Magic, Have: uint64(len(s.data)), Want: need}
	}
	return nil
}

// requiredSize is the file size needed for count records, saturating
// instead of overflowing on a corrupt count.
func requiredSize(count, size uint64) uint64 {
	if count > (math.MaxUint64-codec.HeaderSize)/size {
		return math.MaxUint64
	}
	return codec.HeaderSize + count*size
}

func loadU64(data []byte, off int) uint64 {
	v := atomic.LoadUint64((*uint64)(unsafe.Pointer(&data[off])))
	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], v)
	return binary.LittleEndian.Uint64(b[:])
}

// capacity is how many records the current mapping holds.
func (s *Store) capacity() uint64 {
	return (uint64(len(s.data)) - codec.HeaderSize) / s.size
}

func (s *Store) record(index uint64) []byte {
	off := codec.HeaderSize + index*s.size
	return s.data[off : off+s.size : off+s.size]
}

// acquire read-locks a mapping that covers the live record count and
// returns that count. The caller releases with s.mu.RUnlock on success.
func (s *Store) acquire() (uint64, error) {
	s.mu.RLock()
	if s.data == nil {
		s.mu.RUnlock()
		return 0, exception.ErrStoreClosed
	}
	count := loadU64(s.data, codec.RecordCountOffset)
	if count <= s.capacity() {
		return count, nil
	}
	s.mu.RUnlock()

	if err := s.remap(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	if s.data == nil {
		s.mu.RUnlock()
		return 0, exception.ErrStoreClosed
	}
	return min(loadU64(s.data, codec.RecordCountOffset), s.capacity()), nil
}

// remap maps the file again after the writer grew it past the mapping.
func (s *Store) remap() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return exception.ErrStoreClosed
	}
	count := loadU64(s.data, codec.RecordCountOffset)
	if count <= s.capacity() {
		return nil
	}

	fi, err := s.file.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat %s", s.cfg.Path)
	}
	need := requiredSize(count, s.size)
	if uint64(fi.Size()) < need {
		return errors.Wrap(&codec.FormatError{Kind: codec.Truncated, Magic: s.opened.Magic, Have: uint64(fi.Size()), Want: need}, s.cfg.Path)
	}

	data, err := mapFile(s.file, int(fi.Size()))
	if err != nil {
		return errors.Wrapf(err, "remap %s", s.cfg.Path)
	}
	old := s.data
	s.data = data
	if err := unmapFile(old); err != nil {
		logs.Errorf("unmap %s, err: %+v", s.cfg.Path, err)
	}

	s.cfg.Metrics.Inc(s.layout.Kind(), obs.CounterRemaps)
	logs.Infof("store remapped %s, %d -> %d bytes, records %d", s.cfg.Path, len(old), len(data), count)
	return nil
}

// Len returns the live record count, reloaded from the mapping on every
// call. It is zero after Close.
func (s *Store) Len() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return 0
	}
	return loadU64(s.data, codec.RecordCountOffset)
}

// Header returns the header with the live record count and write offset.
func (s *Store) Header() codec.Header {
	h := s.opened
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data != nil {
		h.RecordCount = loadU64(s.data, codec.RecordCountOffset)
		h.WriteOffset = loadU64(s.data, codec.WriteOffsetOffset)
	}
	return h
}

func (s *Store) Path() string { return s.cfg.Path }

func (s *Store) Layout() codec.Layout { return s.layout }

func (s *Store) Kind() schema.Kind { return s.layout.Kind() }

func (s *Store) Generation() schema.Generation { return s.layout.Generation() }

// StructSize is the byte length of one record.
func (s *Store) StructSize() int { return int(s.size) }

// Reads counts records handed out by ReadAt and Visit since open.
func (s *Store) Reads() uint64 { return s.reads.Load() }

// MappedSize is the length of the current mapping.
func (s *Store) MappedSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *Store) visited(n uint64) {
	s.reads.Add(n)
	s.cfg.Metrics.Add(s.layout.Kind(), obs.CounterVisited, n)
}

// Decode decodes record bytes handed out by Visit.
func (s *Store) Decode(rec []byte) (schema.Record, error) {
	r, err := codec.Decode(s.layout, rec)
	if err == nil {
		s.cfg.Metrics.Inc(s.layout.Kind(), obs.CounterDecoded)
	}
	return r, err
}

// ReadAt decodes the record at index. It fails with
// exception.ErrIndexOutOfRange when index is not below the live count.
func (s *Store) ReadAt(index uint64) (schema.Record, error) {
	count, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()

	if index >= count {
		return nil, errors.Wrapf(exception.ErrIndexOutOfRange, "index %d, record count %d", index, count)
	}
	s.visited(1)
	return s.Decode(s.record(index))
}

// Visit calls fn with the raw bytes of records [from, to) in index order.
// rec aliases the mapping and is valid only during the call; fn must not
// call back into the store. to must not exceed the live count. The first
// error returned by fn stops the visit and is returned.
func (s *Store) Visit(from, to uint64, fn func(index uint64, rec []byte) error) error {
	if from > to {
		return errors.Wrapf(exception.ErrInvalidArgument, "visit range [%d, %d)", from, to)
	}
	if fn == nil {
		return exception.ErrNilInstance
	}

	chunk := uint64(s.cfg.ChunkRecords)
	for from < to {
		count, err := s.acquire()
		if err != nil {
			return err
		}
		if to > count {
			s.mu.RUnlock()
			return errors.Wrapf(exception.ErrIndexOutOfRange, "visit to %d, record count %d", to, count)
		}

		end := min(to, from+chunk)
		i := from
		for ; i < end; i++ {
			if err = fn(i, s.record(i)); err != nil {
				i++
				break
			}
		}
		s.visited(i - from)
		s.mu.RUnlock()
		if err != nil {
			return err
		}
		from = end
	}
	return nil
}

// Close unmaps the file. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil
	}
	err := unmapFile(s.data)
	s.data = nil
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}
