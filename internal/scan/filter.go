package scan

import (
	"bytes"
	"strings"

	"github.com/moznion/go-optional"

	"mdlog/internal/codec"
	"mdlog/internal/schema"
)

// Filter selects records during a scan. The zero Filter matches
// everything.
type Filter struct {
	// Symbol is matched as a case-sensitive substring of the stored code,
	// which carries no exchange suffix.
	Symbol string
	// Channel keeps a single channel. Channel 0 is a real channel, so an
	// unset filter is None rather than zero.
	Channel optional.Option[int32]
	// StartTime drops records with MDTime < start.
	StartTime optional.Option[int32]
	// EndTime drops records with MDTime >= end.
	EndTime optional.Option[int32]
}

// Match reports whether r passes the filter.
func (f Filter) Match(r schema.Record) bool {
	if f.Symbol != "" && !strings.Contains(r.Security(), f.Symbol) {
		return false
	}
	return f.matchFields(r.Channel(), r.Time())
}

func (f Filter) matchKey(k codec.Key) bool {
	if f.Symbol != "" && !bytes.Contains(k.Symbol, []byte(f.Symbol)) {
		return false
	}
	return f.matchFields(k.Channel, k.Time)
}

func (f Filter) matchFields(channel, mdtime int32) bool {
	if f.Channel.IsSome() && channel != f.Channel.Unwrap() {
		return false
	}
	if f.StartTime.IsSome() && mdtime < f.StartTime.Unwrap() {
		return false
	}
	if f.EndTime.IsSome() && mdtime >= f.EndTime.Unwrap() {
		return false
	}
	return true
}

// IsZero reports whether the filter passes every record.
func (f Filter) IsZero() bool {
	return f.Symbol == "" && f.Channel.IsNone() && f.StartTime.IsNone() && f.EndTime.IsNone()
}
