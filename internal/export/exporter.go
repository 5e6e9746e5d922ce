package export

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/moznion/go-optional"
	"github.com/yanun0323/logs"

	"mdlog/internal/codec"
	"mdlog/internal/errors"
	"mdlog/internal/obs"
	"mdlog/internal/schema"
	"mdlog/pkg/exception"
)

const (
	defaultProgressStep     = 1
	defaultProgressInterval = 30 * time.Second
	defaultBufferSize       = 64 << 10

	ctxCheckEvery   = 4096
	clockCheckEvery = 1024
)

// Source is the read side of a mapped store.
type Source interface {
	Len() uint64
	Layout() codec.Layout
	Visit(from, to uint64, fn func(index uint64, rec []byte) error) error
	Decode(rec []byte) (schema.Record, error)
}

// Config controls one export pass.
type Config struct {
	// EndTime drops records with MDTime at or after it (packed HHMMSSmmm).
	EndTime optional.Option[int32]
	// ProgressStep is the percentage of records between progress reports.
	ProgressStep int
	// ProgressInterval forces a report after this much wall time.
	ProgressInterval time.Duration
	// OnProgress receives every progress report. Reports are logged either way.
	OnProgress func(Progress)
	// BufferSize is the write buffer of every output sink.
	BufferSize int
	Metrics    *obs.Metrics
}

func (c Config) withDefaults() Config {
	if c.ProgressStep == 0 {
		c.ProgressStep = defaultProgressStep
	}
	if c.ProgressInterval == 0 {
		c.ProgressInterval = defaultProgressInterval
	}
	if c.BufferSize == 0 {
		c.BufferSize = defaultBufferSize
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.ProgressStep < 1 || c.ProgressStep > 100 {
		return fmt.Errorf("invalid export config: ProgressStep must be in [1, 100]")
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("invalid export config: ProgressInterval must be >= 0")
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("invalid export config: BufferSize must be >= 0")
	}
	return nil
}

// Progress is a point-in-time view of a running pass.
type Progress struct {
	Kind    schema.Kind
	Done    uint64
	Total   uint64
	Matched uint64
	Elapsed time.Duration
}

func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Done) * 100 / float64(p.Total)
}

// Rate is records per second.
func (p Progress) Rate() float64 {
	if p.Elapsed <= 0 {
		return 0
	}
	return float64(p.Done) / p.Elapsed.Seconds()
}

func (p Progress) ETA() time.Duration {
	rate := p.Rate()
	if rate == 0 || p.Done >= p.Total {
		return 0
	}
	return time.Duration(float64(p.Total-p.Done) / rate * float64(time.Second))
}

// Stats is the outcome of one pass. Visited always equals the sum of
// Matched, Unmatched and Filtered.
type Stats struct {
	Kind      schema.Kind
	Visited   uint64
	Unmatched uint64
	Filtered  uint64
	// Matched is keyed by bare code and holds every target, matched or not.
	Matched map[string]uint64
	Elapsed time.Duration
}

// TotalMatched sums the lines written to all sinks.
func (s Stats) TotalMatched() uint64 {
	var n uint64
	for _, c := range s.Matched {
		n += c
	}
	return n
}

type sink struct {
	code string
	w    *bufio.Writer
	n    uint64
}

// Exporter splits one log file into per-symbol text streams.
type Exporter struct {
	cfg Config
}

// New validates cfg and creates an exporter.
func New(cfg Config) (*Exporter, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Exporter{cfg: cfg}, nil
}

// Exportable reports whether records of kind have a text form.
func Exportable(kind schema.Kind) bool {
	switch kind {
	case schema.KindOrder, schema.KindTransaction, schema.KindTick:
		return true
	}
	return false
}

// Run reads src exactly once. Every record whose symbol's bare code is a key
// of sinks is written to that sink as one text line; keys may carry an
// exchange suffix. Records are matched on their key fields and only matches
// are decoded. Sinks are flushed but not closed.
func (e *Exporter) Run(ctx context.Context, src Source, sinks map[string]io.Writer) (Stats, error) {
	layout := src.Layout()
	kind := layout.Kind()
	if !Exportable(kind) {
		return Stats{}, errors.Wrapf(exception.ErrKindUnsupported, "export %s", layout)
	}

	targets := make(map[string]*sink, len(sinks))
	stats := Stats{Kind: kind, Matched: make(map[string]uint64, len(sinks))}
	for key, w := range sinks {
		if w == nil {
			return Stats{}, errors.Wrapf(exception.ErrNilInstance, "sink %s", key)
		}
		code := schema.BareCode(key)
		if _, dup := targets[code]; dup {
			return Stats{}, errors.Wrapf(exception.ErrInvalidArgument, "duplicate sink for %s", code)
		}
		targets[code] = &sink{code: code, w: bufio.NewWriterSize(w, e.cfg.BufferSize)}
		stats.Matched[code] = 0
	}

	total := src.Len()
	start := time.Now()
	prog := newTracker(e.cfg, kind, total, start)
	hasEnd, end := e.cfg.EndTime.IsSome(), e.cfg.EndTime.Unwrap()

	var (
		buf     []byte
		matched uint64
	)
	err := src.Visit(0, total, func(i uint64, rec []byte) error {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		prog.tick(i, matched)

		key, err := codec.Peek(layout, rec)
		if err != nil {
			return err
		}
		sym := schema.CStringBytes(key.Symbol)
		if dot := bytes.IndexByte(sym, '.'); dot >= 0 {
			sym = sym[:dot]
		}
		sk, ok := targets[string(sym)]
		if !ok {
			stats.Unmatched++
			return nil
		}
		if hasEnd && key.Time >= end {
			stats.Filtered++
			return nil
		}

		r, err := src.Decode(rec)
		if err != nil {
			return err
		}
		buf, err = AppendLine(buf[:0], r)
		if err != nil {
			return err
		}
		buf = append(buf, '\n')
		if _, err := sk.w.Write(buf); err != nil {
			return errors.Wrapf(err, "write %s line", sk.code)
		}
		sk.n++
		matched++
		return nil
	})
	stats.Visited = matched + stats.Unmatched + stats.Filtered
	if err != nil {
		return stats, errors.Wrapf(err, "export %s at record %d", layout, stats.Visited)
	}

	for _, sk := range targets {
		if err := sk.w.Flush(); err != nil {
			return stats, errors.Wrapf(err, "flush %s", sk.code)
		}
		stats.Matched[sk.code] = sk.n
	}
	stats.Elapsed = time.Since(start)
	prog.done(total, matched)

	m := e.cfg.Metrics
	m.Add(kind, obs.CounterMatched, matched)
	m.Add(kind, obs.CounterUnmatched, stats.Unmatched)
	m.Add(kind, obs.CounterFiltered, stats.Filtered)
	m.ObservePass(kind, stats.Elapsed)

	logs.Infof("export %s done in %s, records %d, matched %d, unmatched %d, filtered %d",
		layout, stats.Elapsed.Round(time.Millisecond), stats.Visited, matched, stats.Unmatched, stats.Filtered)
	return stats, nil
}

// tracker emits a progress report every ProgressStep percent or every
// ProgressInterval, whichever comes first.
type tracker struct {
	kind     schema.Kind
	total    uint64
	step     uint64
	next     uint64
	interval time.Duration
	start    time.Time
	last     time.Time
	notify   func(Progress)
}

func newTracker(cfg Config, kind schema.Kind, total uint64, now time.Time) *tracker {
	step := max(total*uint64(cfg.ProgressStep)/100, 1)
	return &tracker{
		kind:     kind,
		total:    total,
		step:     step,
		next:     step,
		interval: cfg.ProgressInterval,
		start:    now,
		last:     now,
		notify:   cfg.OnProgress,
	}
}

func (t *tracker) tick(i, matched uint64) {
	if i == 0 {
		return
	}
	if i >= t.next {
		t.next = (i/t.step + 1) * t.step
		t.report(i, matched, time.Now())
		return
	}
	if i%clockCheckEvery == 0 {
		if now := time.Now(); now.Sub(t.last) >= t.interval {
			t.report(i, matched, now)
		}
	}
}

func (t *tracker) done(total, matched uint64) {
	t.report(total, matched, time.Now())
}

func (t *tracker) report(done, matched uint64, now time.Time) {
	t.last = now
	p := Progress{Kind: t.kind, Done: done, Total: t.total, Matched: matched, Elapsed: now.Sub(t.start)}
	logs.Infof("%s: %.0f%% (%d/%d) speed=%.0f/s ETA=%.0fs matched=%d",
		t.kind, p.Percent(), done, t.total, p.Rate(), p.ETA().Seconds(), matched)
	if t.notify != nil {
		t.notify(p)
	}
}
