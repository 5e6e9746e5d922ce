package obs

import (
	"sync/atomic"
	"time"

	"mdlog/internal/schema"
)

// Counter names one per-kind record counter.
type Counter uint8

const (
	// CounterVisited counts records handed out by a store.
	CounterVisited Counter = iota
	// CounterDecoded counts full record decodes.
	CounterDecoded
	// CounterMatched counts records routed to an output.
	CounterMatched
	// CounterUnmatched counts records whose symbol is not a target.
	CounterUnmatched
	// CounterFiltered counts target records cut by the end time.
	CounterFiltered
	// CounterRemaps counts store remaps after the file grew.
	CounterRemaps
	counterCount
)

var counterNames = [counterCount]string{
	CounterVisited:   "visited",
	CounterDecoded:   "decoded",
	CounterMatched:   "matched",
	CounterUnmatched: "unmatched",
	CounterFiltered:  "filtered",
	CounterRemaps:    "remaps",
}

func (c Counter) String() string {
	if c < counterCount {
		return counterNames[c]
	}
	return "unknown"
}

const kindCount = int(schema.KindSnapshot) + 1

// Metrics collects per-kind record counters and pass durations. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	counts [kindCount][counterCount]uint64
	passes [kindCount]LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Sum   time.Duration
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values. Zero counters are left out.
type Snapshot struct {
	Counts map[schema.Kind]map[Counter]uint64
	Passes map[schema.Kind]LatencySnapshot
}

// Get returns one counter, zero when absent.
func (s Snapshot) Get(kind schema.Kind, c Counter) uint64 {
	return s.Counts[kind][c]
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func kindIndex(kind schema.Kind) (int, bool) {
	idx := int(kind)
	return idx, idx >= 0 && idx < kindCount
}

// Add increases a counter by n.
func (m *Metrics) Add(kind schema.Kind, c Counter, n uint64) {
	if m == nil || c >= counterCount || n == 0 {
		return
	}
	if idx, ok := kindIndex(kind); ok {
		atomic.AddUint64(&m.counts[idx][c], n)
	}
}

// Inc increases a counter by one.
func (m *Metrics) Inc(kind schema.Kind, c Counter) {
	m.Add(kind, c, 1)
}

// Load reads one counter.
func (m *Metrics) Load(kind schema.Kind, c Counter) uint64 {
	if m == nil || c >= counterCount {
		return 0
	}
	if idx, ok := kindIndex(kind); ok {
		return atomic.LoadUint64(&m.counts[idx][c])
	}
	return 0
}

// ObservePass records how long one full pass over a file took.
func (m *Metrics) ObservePass(kind schema.Kind, d time.Duration) {
	if m == nil {
		return
	}
	if idx, ok := kindIndex(kind); ok {
		m.passes[idx].Observe(d)
	}
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counts: make(map[schema.Kind]map[Counter]uint64),
		Passes: make(map[schema.Kind]LatencySnapshot),
	}
	if m == nil {
		return snap
	}
	for k := range m.counts {
		for c := range m.counts[k] {
			v := atomic.LoadUint64(&m.counts[k][c])
			if v == 0 {
				continue
			}
			kind := schema.Kind(k)
			if snap.Counts[kind] == nil {
				snap.Counts[kind] = make(map[Counter]uint64)
			}
			snap.Counts[kind][Counter(c)] = v
		}
		if p := m.passes[k].Snapshot(); p.Count > 0 {
			snap.Passes[schema.Kind(k)] = p
		}
	}
	return snap
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		cur := atomic.LoadUint64(&l.min)
		if cur != 0 && nanos >= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, cur, nanos) {
			break
		}
	}

	for {
		cur := atomic.LoadUint64(&l.max)
		if nanos <= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, cur, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	return LatencySnapshot{
		Count: count,
		Sum:   time.Duration(sum),
		Min:   time.Duration(atomic.LoadUint64(&l.min)),
		Max:   time.Duration(atomic.LoadUint64(&l.max)),
		Avg:   time.Duration(sum / count),
	}
}
