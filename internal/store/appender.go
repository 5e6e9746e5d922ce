package store

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"mdlog/internal/codec"
	"mdlog/internal/errors"
	"mdlog/internal/schema"
	"mdlog/pkg/exception"
)

// AppendOptions controls how Create lays out a new file.
type AppendOptions struct {
	// Preallocate extends the file to hold this many records up front, the
	// way the engine sizes its mapping for a whole session.
	Preallocate uint64
}

// Appender writes a log file following the engine's contract: the bytes of
// a batch go down first, the header count is published after. It backs
// test fixtures and the gen tool; it is not meant to compete with the
// engine.
type Appender struct {
	f      *os.File
	path   string
	layout codec.Layout
	size   uint64
	count  uint64
	buf    []byte
}

// Create truncates path and writes an empty header for layout l.
func Create(path string, l codec.Layout, opts AppendOptions) (*Appender, error) {
	if !l.Valid() {
		return nil, errors.Wrapf(exception.ErrInvalidArgument, "create %s with layout %s", path, l)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create store dir")
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "create store")
	}

	a := &Appender{f: f, path: path, layout: l, size: uint64(l.Size())}
	if _, err := f.WriteAt(codec.EncodeHeader(nil, codec.NewHeader(l)), 0); err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "write header %s", path)
	}
	if opts.Preallocate > 0 {
		if err := f.Truncate(int64(requiredSize(opts.Preallocate, a.size))); err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "preallocate %s", path)
		}
	}
	return a, nil
}

// Resume opens an existing file for further appends.
func Resume(path string) (*Appender, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrap(err, "resume store")
	}

	var buf [codec.HeaderSize]byte
	if _, err := f.ReadAt(buf[:], 0); err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "read header %s", path)
	}
	h, err := codec.ReadHeader(buf[:])
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, path)
	}

	return &Appender{
		f:      f,
		path:   path,
		layout: h.Layout(),
		size:   uint64(h.StructSize),
		count:  h.RecordCount,
	}, nil
}

func (a *Appender) Layout() codec.Layout { return a.layout }

// Count is the number of published records.
func (a *Appender) Count() uint64 { return a.count }

// Append writes recs after the published records, then publishes the new
// count. Readers never observe a partially written batch.
func (a *Appender) Append(recs ...schema.Record) error {
	if len(recs) == 0 {
		return nil
	}

	off := int64(requiredSize(a.count, a.size))
	for _, r := range recs {
		var err error
		a.buf, err = codec.Encode(a.buf, a.layout, r)
		if err != nil {
			return err
		}
		if _, err := a.f.WriteAt(a.buf, off); err != nil {
			return errors.Wrapf(err, "append %s", a.path)
		}
		off += int64(a.size)
	}

	return a.publish(a.count + uint64(len(recs)))
}

func (a *Appender) publish(count uint64) error {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:], count)
	binary.LittleEndian.PutUint64(b[8:], count)
	if _, err := a.f.WriteAt(b[:], codec.RecordCountOffset); err != nil {
		return errors.Wrapf(err, "publish count %s", a.path)
	}
	a.count = count
	return nil
}

// Sync flushes the file to stable storage.
func (a *Appender) Sync() error {
	return a.f.Sync()
}

// Close is idempotent.
func (a *Appender) Close() error {
	if a.f == nil {
		return nil
	}
	err := a.f.Close()
	a.f = nil
	return err
}
