package codec

import (
	"encoding/binary"

	"mdlog/internal/schema"
)

// absent marks a field the layout does not carry, such as the receive
// timestamp of V1 records.
const absent = -1

// identity holds the offsets shared by every record kind.
type identity struct {
	recv    int
	symbol  int
	date    int
	time    int
	source  int
	secType int
	channel int
	seq     int
	pow10   int
}

func getI64(src []byte, off int) int64 {
	if off == absent {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(src[off:]))
}

func getI32(src []byte, off int) int32 {
	if off == absent {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(src[off:]))
}

func putI64(dst []byte, off int, v int64) {
	if off == absent {
		return
	}
	binary.LittleEndian.PutUint64(dst[off:], uint64(v))
}

func putI32(dst []byte, off int, v int32) {
	if off == absent {
		return
	}
	binary.LittleEndian.PutUint32(dst[off:], uint32(v))
}

func getString(src []byte, off, n int) string {
	return schema.CString(src[off : off+n])
}

// putString writes s NUL padded into a fixed-width field, cutting it at n
// bytes.
func putString(dst []byte, off, n int, s string) {
	field := dst[off : off+n]
	k := copy(field, s)
	clear(field[k:])
}

func getInts[T ~int64](dst []T, src []byte, off int) {
	for i := range dst {
		dst[i] = T(binary.LittleEndian.Uint64(src[off+8*i:]))
	}
}

func putInts[T ~int64](dst []byte, off int, src []T) {
	for i, v := range src {
		binary.LittleEndian.PutUint64(dst[off+8*i:], uint64(v))
	}
}
