package codec

import (
	"encoding/binary"
	"fmt"

	"mdlog/pkg/exception"
)

// HeaderSize is the fixed size of the file header at offset 0.
const HeaderSize = 64

const (
	offMagic       = 0
	offVersion     = 4
	offStructSize  = 6
	offRecordCount = 8
	offWriteOffset = 16
)

// FormatVersion is the header version every known writer stamps. Layout
// selection never looks at it.
const FormatVersion = 1

// Header is the decoded file header.
type Header struct {
	Magic      uint32
	Version    uint16
	StructSize uint16
	// RecordCount is the number of fully written records. It is the only
	// field readers trust for bounds.
	RecordCount uint64
	// WriteOffset is the writer's append cursor. The engine keeps it equal to
	// RecordCount; readers never use it.
	WriteOffset uint64
}

// Layout returns the record layout selected by the magic.
func (h Header) Layout() Layout { return LayoutOf(h.Magic) }

// MagicString is the printable form of the magic.
func (h Header) MagicString() string { return MagicString(h.Magic) }

// DataSize is the number of bytes the declared records occupy after the
// header.
func (h Header) DataSize() uint64 {
	return h.RecordCount * uint64(h.StructSize)
}

// MinFileSize is the smallest file able to hold every declared record.
func (h Header) MinFileSize() uint64 {
	return HeaderSize + h.DataSize()
}

// FormatErrorKind classifies a FormatError.
type FormatErrorKind uint8

const (
	Truncated FormatErrorKind = iota + 1
	UnknownMagic
	SizeMismatch
)

func (k FormatErrorKind) String() string {
	switch k {
	case Truncated:
		return "truncated"
	case UnknownMagic:
		return "unknown magic"
	case SizeMismatch:
		return "size mismatch"
	default:
		return "format"
	}
}

// FormatError reports a file that cannot be read as a log. It is fatal for
// that file only.
type FormatError struct {
	Kind FormatErrorKind
	// Have and Want are byte counts for Truncated and SizeMismatch.
	Have, Want uint64
	Magic      uint32
}

func (e *FormatError) Error() string {
	switch e.Kind {
	case Truncated:
		return fmt.Sprintf("format: truncated, have %d bytes, want %d", e.Have, e.Want)
	case UnknownMagic:
		return fmt.Sprintf("format: unknown magic 0x%08X (%s)", e.Magic, MagicString(e.Magic))
	case SizeMismatch:
		return fmt.Sprintf("format: struct size %d does not match %s size %d",
			e.Have, LayoutOf(e.Magic), e.Want)
	default:
		return "format: invalid"
	}
}

// Is maps the error onto the exception sentinels.
func (e *FormatError) Is(target error) bool {
	switch target {
	case exception.ErrTruncated:
		return e.Kind == Truncated
	case exception.ErrUnknownMagic:
		return e.Kind == UnknownMagic
	case exception.ErrSizeMismatch:
		return e.Kind == SizeMismatch
	}
	return false
}

// ReadHeader parses and validates the first HeaderSize bytes of src.
func ReadHeader(src []byte) (Header, error) {
	if len(src) < HeaderSize {
		return Header{}, &FormatError{Kind: Truncated, Have: uint64(len(src)), Want: HeaderSize}
	}

	h := Header{
		Magic:       binary.LittleEndian.Uint32(src[offMagic:]),
		Version:     binary.LittleEndian.Uint16(src[offVersion:]),
		StructSize:  binary.LittleEndian.Uint16(src[offStructSize:]),
		RecordCount: binary.LittleEndian.Uint64(src[offRecordCount:]),
		WriteOffset: binary.LittleEndian.Uint64(src[offWriteOffset:]),
	}

	layout := h.Layout()
	if !layout.Valid() {
		return h, &FormatError{Kind: UnknownMagic, Magic: h.Magic}
	}
	if int(h.StructSize) != layout.Size() {
		return h, &FormatError{Kind: SizeMismatch, Magic: h.Magic, Have: uint64(h.StructSize), Want: uint64(layout.Size())}
	}

	return h, nil
}

// EncodeHeader writes h into the first HeaderSize bytes of dst. Reserved
// bytes are zeroed.
func EncodeHeader(dst []byte, h Header) []byte {
	if cap(dst) < HeaderSize {
		dst = make([]byte, HeaderSize)
	} else {
		dst = dst[:HeaderSize]
		clear(dst)
	}

	binary.LittleEndian.PutUint32(dst[offMagic:], h.Magic)
	binary.LittleEndian.PutUint16(dst[offVersion:], h.Version)
	binary.LittleEndian.PutUint16(dst[offStructSize:], h.StructSize)
	binary.LittleEndian.PutUint64(dst[offRecordCount:], h.RecordCount)
	binary.LittleEndian.PutUint64(dst[offWriteOffset:], h.WriteOffset)

	return dst
}

// NewHeader returns an empty header for layout l.
func NewHeader(l Layout) Header {
	return Header{
		Magic:      l.Magic(),
		Version:    FormatVersion,
		StructSize: uint16(l.Size()),
	}
}

// RecordCountOffset is the byte offset of record_count inside the header.
// Readers reload it from the mapping before bounding any iteration.
const RecordCountOffset = offRecordCount

// WriteOffsetOffset is the byte offset of write_offset inside the header.
const WriteOffsetOffset = offWriteOffset
