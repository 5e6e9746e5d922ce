package codec

import (
	"fmt"

	"mdlog/internal/schema"
)

// Magic numbers of every known record layout. Read as a little-endian u32.
const (
	MagicOrderV1       uint32 = 0x4D444F52 // "MDOR"
	MagicTransactionV1 uint32 = 0x4D445458 // "MDTX"
	MagicTickV1        uint32 = 0x4D44544B // "MDTK"
	MagicSnapshotV1    uint32 = 0x4D444F42 // "MDOB"

	MagicOrderV2       uint32 = 0x4F524432 // "ORD2"
	MagicTransactionV2 uint32 = 0x54584E32 // "TXN2"
	MagicTickV2        uint32 = 0x54494B32 // "TIK2"
	MagicSnapshotV2    uint32 = 0x4F424B32 // "OBK2"
)

// Layout is the closed set of (kind, generation) pairs a file may hold.
type Layout uint8

const (
	LayoutUnknown Layout = iota
	OrderV1
	OrderV2
	TransactionV1
	TransactionV2
	TickV1
	TickV2
	SnapshotV1
	SnapshotV2
)

type layoutInfo struct {
	name  string
	magic uint32
	size  int
	kind  schema.Kind
	gen   schema.Generation
}

var layouts = [...]layoutInfo{
	LayoutUnknown: {name: "unknown"},
	OrderV1:       {"OrderV1", MagicOrderV1, 144, schema.KindOrder, schema.V1},
	OrderV2:       {"OrderV2", MagicOrderV2, 144, schema.KindOrder, schema.V2},
	TransactionV1: {"TransactionV1", MagicTransactionV1, 128, schema.KindTransaction, schema.V1},
	TransactionV2: {"TransactionV2", MagicTransactionV2, 136, schema.KindTransaction, schema.V2},
	TickV1:        {"TickV1", MagicTickV1, 2216, schema.KindTick, schema.V1},
	TickV2:        {"TickV2", MagicTickV2, 2216, schema.KindTick, schema.V2},
	SnapshotV1:    {"SnapshotV1", MagicSnapshotV1, 728, schema.KindSnapshot, schema.V1},
	SnapshotV2:    {"SnapshotV2", MagicSnapshotV2, 736, schema.KindSnapshot, schema.V2},
}

// Layouts lists every known layout.
var Layouts = []Layout{OrderV1, OrderV2, TransactionV1, TransactionV2, TickV1, TickV2, SnapshotV1, SnapshotV2}

// LayoutOf selects the layout for a header magic.
func LayoutOf(magic uint32) Layout {
	switch magic {
	case MagicOrderV1:
		return OrderV1
	case MagicOrderV2:
		return OrderV2
	case MagicTransactionV1:
		return TransactionV1
	case MagicTransactionV2:
		return TransactionV2
	case MagicTickV1:
		return TickV1
	case MagicTickV2:
		return TickV2
	case MagicSnapshotV1:
		return SnapshotV1
	case MagicSnapshotV2:
		return SnapshotV2
	default:
		return LayoutUnknown
	}
}

// LayoutFor is the inverse of Layout.Kind and Layout.Generation.
func LayoutFor(kind schema.Kind, gen schema.Generation) Layout {
	for _, l := range Layouts {
		if layouts[l].kind == kind && layouts[l].gen == gen {
			return l
		}
	}
	return LayoutUnknown
}

func (l Layout) info() layoutInfo {
	if int(l) < len(layouts) {
		return layouts[l]
	}
	return layouts[LayoutUnknown]
}

func (l Layout) String() string {
	if int(l) >= len(layouts) {
		return fmt.Sprintf("Layout(%d)", l)
	}
	return layouts[l].name
}

// Size is the fixed byte length of one record, zero for unknown layouts.
func (l Layout) Size() int { return l.info().size }

func (l Layout) Magic() uint32 { return l.info().magic }

func (l Layout) Kind() schema.Kind { return l.info().kind }

func (l Layout) Generation() schema.Generation { return l.info().gen }

// Valid reports whether l is one of the eight known layouts.
func (l Layout) Valid() bool {
	return l > LayoutUnknown && int(l) < len(layouts)
}

// MagicString renders a magic low byte first, with '.' for bytes outside
// printable ASCII.
func MagicString(magic uint32) string {
	var b [4]byte
	for i := range b {
		c := byte(magic >> (8 * i))
		if c < 32 || c > 126 {
			c = '.'
		}
		b[i] = c
	}
	return string(b[:])
}
