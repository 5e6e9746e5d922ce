package validate

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/yanun0323/logs"

	"mdlog/internal/codec"
	"mdlog/internal/errors"
	"mdlog/internal/schema"
	"mdlog/pkg/exception"
)

const (
	defaultMinRecords = 10
	defaultSamples    = 5
	ctxCheckEvery     = 4096
)

// Source is the read side of a mapped store.
type Source interface {
	Len() uint64
	Layout() codec.Layout
	Visit(from, to uint64, fn func(index uint64, rec []byte) error) error
}

// Config controls the sequence validator.
type Config struct {
	// MinRecords is the smallest channel that gets a report.
	MinRecords int
	// MaxRecords bounds the scan to the first records of the file. Zero
	// scans everything.
	MaxRecords uint64
	// Samples is how many records are kept from each end of a channel.
	Samples int
}

func (c Config) withDefaults() Config {
	if c.MinRecords == 0 {
		c.MinRecords = defaultMinRecords
	}
	if c.Samples == 0 {
		c.Samples = defaultSamples
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.MinRecords < 1 {
		return fmt.Errorf("invalid validator config: MinRecords must be > 0")
	}
	if c.Samples < 0 {
		return fmt.Errorf("invalid validator config: Samples must be >= 0")
	}
	return nil
}

// Sample is one record as seen by the validator.
type Sample struct {
	Index  uint64
	Time   int32
	Seq    int64
	Symbol string
}

// ChannelReport holds the ordering diagnostics of one channel.
type ChannelReport struct {
	Channel int32
	Records uint64
	// SeqViolations counts records whose ApplSeqNum is not above the
	// previous record of the channel.
	SeqViolations uint64
	// TimeViolations counts records whose MDTime is below the previous
	// record of the channel.
	TimeViolations uint64
	Head           []Sample
	Tail           []Sample
}

// Report is the outcome of one validation pass. Violations are findings,
// never errors.
type Report struct {
	Layout  codec.Layout
	Scanned uint64
	// Channels is sorted by channel number and only holds channels with at
	// least MinRecords records.
	Channels []ChannelReport
	// Skipped counts channels below MinRecords.
	Skipped int
}

// Violations sums the violations of every reported channel.
func (r Report) Violations() (seq, time uint64) {
	for _, c := range r.Channels {
		seq += c.SeqViolations
		time += c.TimeViolations
	}
	return seq, time
}

// Channel looks up the report of one channel.
func (r Report) Channel(ch int32) (ChannelReport, bool) {
	i, ok := slices.BinarySearchFunc(r.Channels, ch, func(c ChannelReport, ch int32) int {
		return cmp.Compare(c.Channel, ch)
	})
	if !ok {
		return ChannelReport{}, false
	}
	return r.Channels[i], true
}

type tailSample struct {
	index  uint64
	time   int32
	seq    int64
	symbol [schema.SecurityIDSize]byte
	n      int
}

type channelState struct {
	report   ChannelReport
	prevSeq  int64
	prevTime int32
	tail     []tailSample
	tailNext int
}

func (s *channelState) observe(i uint64, key codec.Key, keep int) {
	r := &s.report
	if r.Records > 0 {
		if key.Seq <= s.prevSeq {
			r.SeqViolations++
		}
		if key.Time < s.prevTime {
			r.TimeViolations++
		}
	}
	r.Records++
	s.prevSeq, s.prevTime = key.Seq, key.Time

	if keep == 0 {
		return
	}
	if len(r.Head) < keep {
		r.Head = append(r.Head, Sample{Index: i, Time: key.Time, Seq: key.Seq, Symbol: schema.CString(key.Symbol)})
	}

	var slot *tailSample
	if len(s.tail) < keep {
		s.tail = append(s.tail, tailSample{})
		slot = &s.tail[len(s.tail)-1]
	} else {
		slot = &s.tail[s.tailNext]
		s.tailNext = (s.tailNext + 1) % keep
	}
	slot.index, slot.time, slot.seq = i, key.Time, key.Seq
	slot.n = copy(slot.symbol[:], key.Symbol)
}

func (s *channelState) finish() ChannelReport {
	r := s.report
	r.Tail = make([]Sample, 0, len(s.tail))
	for k := range s.tail {
		t := &s.tail[(s.tailNext+k)%len(s.tail)]
		r.Tail = append(r.Tail, Sample{Index: t.index, Time: t.time, Seq: t.seq, Symbol: schema.CString(t.symbol[:t.n])})
	}
	return r
}

// Validator checks per-channel ApplSeqNum and MDTime ordering.
type Validator struct {
	cfg Config
}

// New validates cfg and creates a validator.
func New(cfg Config) (*Validator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Validator{cfg: cfg}, nil
}

// Run streams the file once. Only layouts carrying ApplSeqNum can be
// validated; tick files fail with exception.ErrKindUnsupported.
func (v *Validator) Run(ctx context.Context, src Source) (Report, error) {
	layout := src.Layout()
	if !layout.HasSeq() {
		return Report{}, errors.Wrapf(exception.ErrKindUnsupported, "validate %s", layout)
	}

	count := src.Len()
	if v.cfg.MaxRecords > 0 {
		count = min(count, v.cfg.MaxRecords)
	}

	states := make(map[int32]*channelState)
	err := src.Visit(0, count, func(i uint64, rec []byte) error {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		key, err := codec.Peek(layout, rec)
		if err != nil {
			return err
		}
		st := states[key.Channel]
		if st == nil {
			st = &channelState{report: ChannelReport{Channel: key.Channel}}
			states[key.Channel] = st
		}
		st.observe(i, key, v.cfg.Samples)
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	rep := Report{Layout: layout, Scanned: count}
	for _, st := range states {
		if st.report.Records < uint64(v.cfg.MinRecords) {
			rep.Skipped++
			continue
		}
		rep.Channels = append(rep.Channels, st.finish())
	}
	slices.SortFunc(rep.Channels, func(a, b ChannelReport) int {
		return cmp.Compare(a.Channel, b.Channel)
	})

	seq, tm := rep.Violations()
	logs.Infof("validate %s, scanned %d, channels %d, skipped %d, seq violations %d, time violations %d",
		layout, count, len(rep.Channels), rep.Skipped, seq, tm)
	return rep, nil
}
