package codec

import (
	"mdlog/internal/errors"
	"mdlog/internal/schema"
	"mdlog/pkg/exception"
)

var identities = [...]*identity{
	OrderV1:       &orderV1Fields.identity,
	OrderV2:       &orderV2Fields.identity,
	TransactionV1: &transactionV1Fields.identity,
	TransactionV2: &transactionV2Fields.identity,
	TickV1:        &tickV1Fields.identity,
	TickV2:        &tickV2Fields.identity,
	SnapshotV1:    &snapshotV1Fields.identity,
	SnapshotV2:    &snapshotV2Fields.identity,
}

func checkSize(l Layout, n int) error {
	if !l.Valid() {
		return &FormatError{Kind: UnknownMagic, Magic: l.Magic()}
	}
	if n < l.Size() {
		return &FormatError{Kind: Truncated, Have: uint64(n), Want: uint64(l.Size())}
	}
	return nil
}

// Decode parses one record of layout l from the first l.Size() bytes of src.
// Bad bytes in text fields are replaced, never reported.
func Decode(l Layout, src []byte) (schema.Record, error) {
	if err := checkSize(l, len(src)); err != nil {
		return nil, err
	}

	switch l {
	case OrderV1:
		return decodeOrder(src, &orderV1Fields), nil
	case OrderV2:
		return decodeOrder(src, &orderV2Fields), nil
	case TransactionV1:
		return decodeTransaction(src, &transactionV1Fields), nil
	case TransactionV2:
		return decodeTransaction(src, &transactionV2Fields), nil
	case TickV1:
		return decodeTick(src, &tickV1Fields), nil
	case TickV2:
		return decodeTick(src, &tickV2Fields), nil
	case SnapshotV1:
		return decodeSnapshot(src, &snapshotV1Fields), nil
	default:
		return decodeSnapshot(src, &snapshotV2Fields), nil
	}
}

// Encode serializes r in layout l. dst is reused when large enough. V1
// layouts drop the receive timestamp.
func Encode(dst []byte, l Layout, r schema.Record) ([]byte, error) {
	if !l.Valid() {
		return dst, &FormatError{Kind: UnknownMagic, Magic: l.Magic()}
	}
	if r == nil {
		return dst, exception.ErrNilInstance
	}
	if r.Kind() != l.Kind() {
		return dst, errors.Wrapf(exception.ErrKindMismatch, "encode %s record as %s", r.Kind(), l)
	}

	size := l.Size()
	if cap(dst) < size {
		dst = make([]byte, size)
	} else {
		dst = dst[:size]
		clear(dst)
	}

	switch v := r.(type) {
	case schema.Order:
		encodeOrder(dst, orderFields(l), v)
	case schema.Transaction:
		encodeTransaction(dst, transactionFields(l), v)
	case schema.Tick:
		encodeTick(dst, tickFields(l), v)
	case schema.Snapshot:
		encodeSnapshot(dst, snapshotFields(l), v)
	default:
		return dst, errors.Wrapf(exception.ErrArgumentUnsupported, "encode record type %T", r)
	}

	return dst, nil
}

func orderFields(l Layout) *orderLayout {
	if l.Generation() == schema.V1 {
		return &orderV1Fields
	}
	return &orderV2Fields
}

func transactionFields(l Layout) *transactionLayout {
	if l.Generation() == schema.V1 {
		return &transactionV1Fields
	}
	return &transactionV2Fields
}

func tickFields(l Layout) *tickLayout {
	if l.Generation() == schema.V1 {
		return &tickV1Fields
	}
	return &tickV2Fields
}

func snapshotFields(l Layout) *snapshotLayout {
	if l.Generation() == schema.V1 {
		return &snapshotV1Fields
	}
	return &snapshotV2Fields
}

// Key is the part of a record needed to route or group it, read without
// decoding the whole record.
type Key struct {
	// Symbol aliases the source bytes up to the first NUL. Copy it before
	// the source buffer goes away.
	Symbol  []byte
	Date    int32
	Time    int32
	Channel int32
	// Seq is zero for tick layouts, which carry no ApplSeqNum.
	Seq int64
}

// Peek reads the routing fields of a record of layout l.
func Peek(l Layout, src []byte) (Key, error) {
	if err := checkSize(l, len(src)); err != nil {
		return Key{}, err
	}

	f := identities[l]
	return Key{
		Symbol:  schema.CStringBytes(src[f.symbol : f.symbol+schema.SecurityIDSize]),
		Date:    getI32(src, f.date),
		Time:    getI32(src, f.time),
		Channel: getI32(src, f.channel),
		Seq:     getI64(src, f.seq),
	}, nil
}

// HasSeq reports whether records of layout l carry an ApplSeqNum.
func (l Layout) HasSeq() bool {
	return l.Valid() && identities[l].seq != absent
}
