package scan

import (
	"mdlog/internal/codec"
	"mdlog/internal/errors"
	"mdlog/pkg/exception"
)

// Page is one page of matches plus the match count of the whole file.
type Page struct {
	Number int
	Size   int
	Hits   []Hit
	// Total counts every match in the file, not just this page.
	Total uint64
}

// Pages is the number of pages Total spans.
func (p Page) Pages() uint64 {
	if p.Size <= 0 {
		return 0
	}
	return (p.Total + uint64(p.Size) - 1) / uint64(p.Size)
}

// Paginate returns the page-th page of matches, pages counted from 1. The
// whole file is scanned to report Total; only the records on the page are
// fully decoded.
func Paginate(src Source, f Filter, page, size int) (Page, error) {
	if page < 1 || size < 1 {
		return Page{}, errors.Wrapf(exception.ErrInvalidArgument, "page %d, size %d", page, size)
	}

	p := Page{Number: page, Size: size}
	first := uint64(page-1) * uint64(size)
	last := first + uint64(size)
	layout := src.Layout()

	err := src.Visit(0, src.Len(), func(i uint64, rec []byte) error {
		key, err := codec.Peek(layout, rec)
		if err != nil {
			return err
		}
		if !f.matchKey(key) {
			return nil
		}
		n := p.Total
		p.Total++
		if n < first || n >= last {
			return nil
		}
		r, err := src.Decode(rec)
		if err != nil {
			return err
		}
		p.Hits = append(p.Hits, Hit{Index: i, Record: r})
		return nil
	})
	return p, err
}

// Count returns the number of matches without decoding any record fully.
func Count(src Source, f Filter) (uint64, error) {
	var total uint64
	layout := src.Layout()
	err := src.Visit(0, src.Len(), func(_ uint64, rec []byte) error {
		key, err := codec.Peek(layout, rec)
		if err != nil {
			return err
		}
		if f.matchKey(key) {
			total++
		}
		return nil
	})
	return total, err
}

// Tail returns the last n records in ascending index order. It fails with
// exception.ErrIndexOutOfRange when n exceeds the live count; callers that
// want fewer clamp with min(n, src.Len()).
func Tail(src Source, n uint64) ([]Hit, error) {
	count := src.Len()
	if n > count {
		return nil, errors.Wrapf(exception.ErrIndexOutOfRange, "tail %d, record count %d", n, count)
	}

	out := make([]Hit, 0, n)
	err := src.Visit(count-n, count, func(i uint64, rec []byte) error {
		r, err := src.Decode(rec)
		if err != nil {
			return err
		}
		out = append(out, Hit{Index: i, Record: r})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
