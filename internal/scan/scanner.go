package scan

import (
	"mdlog/internal/codec"
	"mdlog/internal/errors"
	"mdlog/internal/schema"
	"mdlog/pkg/exception"
)

const defaultBatch = 1024

// Source is the read side of a mapped store.
type Source interface {
	Len() uint64
	Layout() codec.Layout
	Visit(from, to uint64, fn func(index uint64, rec []byte) error) error
	Decode(rec []byte) (schema.Record, error)
}

// Hit is one matching record and its index in the file.
type Hit struct {
	Index  uint64
	Record schema.Record
}

// Scanner yields matching records in index order. Records are decoded one
// batch ahead of the caller; non-matching records are rejected from their
// key fields without a full decode. A Scanner is not restartable.
type Scanner struct {
	src    Source
	filter Filter
	layout codec.Layout
	pos    uint64
	end    uint64
	batch  uint64

	buf  []Hit
	head int
	cur  Hit
	err  error
}

// New scans the whole file as it is now: the live count is read once, here.
// Records appended later are not visited.
func New(src Source, f Filter) *Scanner {
	return &Scanner{
		src:    src,
		filter: f,
		layout: src.Layout(),
		end:    src.Len(),
		batch:  defaultBatch,
	}
}

// NewRange scans [from, to). to must not exceed the live count.
func NewRange(src Source, f Filter, from, to uint64) (*Scanner, error) {
	if from > to {
		return nil, errors.Wrapf(exception.ErrInvalidArgument, "scan range [%d, %d)", from, to)
	}
	if n := src.Len(); to > n {
		return nil, errors.Wrapf(exception.ErrIndexOutOfRange, "scan to %d, record count %d", to, n)
	}
	s := New(src, f)
	s.pos, s.end = from, to
	return s, nil
}

// Next advances to the next matching record. It returns false at the end of
// the range or on error; check Err afterwards.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	if s.head == len(s.buf) {
		s.fill()
	}
	if s.head == len(s.buf) {
		s.cur = Hit{}
		return false
	}
	s.cur = s.buf[s.head]
	s.buf[s.head] = Hit{}
	s.head++
	return true
}

func (s *Scanner) fill() {
	s.buf, s.head = s.buf[:0], 0
	for len(s.buf) == 0 && s.pos < s.end {
		to := min(s.end, s.pos+s.batch)
		err := s.src.Visit(s.pos, to, func(i uint64, rec []byte) error {
			key, err := codec.Peek(s.layout, rec)
			if err != nil {
				return err
			}
			if !s.filter.matchKey(key) {
				return nil
			}
			r, err := s.src.Decode(rec)
			if err != nil {
				return err
			}
			s.buf = append(s.buf, Hit{Index: i, Record: r})
			return nil
		})
		s.pos = to
		if err != nil {
			s.err = err
			return
		}
	}
}

// Record is the current record, valid after Next returned true.
func (s *Scanner) Record() schema.Record { return s.cur.Record }

// Index is the file index of the current record.
func (s *Scanner) Index() uint64 { return s.cur.Index }

// Hit is the current record and its index.
func (s *Scanner) Hit() Hit { return s.cur }

func (s *Scanner) Err() error { return s.err }

// Collect drains the scanner.
func (s *Scanner) Collect() ([]Hit, error) {
	var out []Hit
	for s.Next() {
		out = append(out, s.Hit())
	}
	return out, s.Err()
}
