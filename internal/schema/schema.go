package schema

import "fmt"

// Kind identifies which record family a log file carries.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindOrder
	KindTransaction
	KindTick
	KindSnapshot
)

var kindNames = [...]string{
	KindUnknown:     "unknown",
	KindOrder:       "order",
	KindTransaction: "transaction",
	KindTick:        "tick",
	KindSnapshot:    "snapshot",
}

var kindFiles = [...]string{
	KindOrder:       "orders.bin",
	KindTransaction: "transactions.bin",
	KindTick:        "ticks.bin",
	KindSnapshot:    "snapshots.bin",
}

// Kinds lists every record family in file-discovery order.
var Kinds = []Kind{KindOrder, KindTransaction, KindTick, KindSnapshot}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// FileName returns the conventional per-day file name for the kind.
func (k Kind) FileName() string {
	if k == KindUnknown || int(k) >= len(kindFiles) {
		return ""
	}
	return kindFiles[k]
}

// ParseKind accepts the long names and the short aliases used by the tools.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "order", "orders":
		return KindOrder, nil
	case "transaction", "transactions", "txn":
		return KindTransaction, nil
	case "tick", "ticks":
		return KindTick, nil
	case "snapshot", "snapshots", "snap":
		return KindSnapshot, nil
	}
	return KindUnknown, fmt.Errorf("unknown record kind %q", s)
}

// Generation is the schema generation of a record layout.
type Generation uint8

const (
	GenerationUnknown Generation = iota
	V1
	V2
)

func (g Generation) String() string {
	switch g {
	case V1:
		return "V1"
	case V2:
		return "V2"
	default:
		return "V?"
	}
}
