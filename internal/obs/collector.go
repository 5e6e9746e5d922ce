package obs

import (
	"github.com/prometheus/client_golang/prometheus"

	"mdlog/internal/schema"
)

const namespace = "mdlog"

// Collector exposes Metrics to a prometheus registry.
type Collector struct {
	m       *Metrics
	records [counterCount]*prometheus.Desc
	pass    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector wraps m. Register it with prometheus.MustRegister or a
// private registry.
func NewCollector(m *Metrics) *Collector {
	c := &Collector{
		m: m,
		pass: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pass", "duration_seconds"),
			"Duration of full passes over a log file.",
			[]string{"kind"}, nil,
		),
	}
	for i := range c.records {
		name := Counter(i).String()
		c.records[i] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "records", name+"_total"),
			"Records "+name+" per record kind.",
			[]string{"kind"}, nil,
		)
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.records {
		ch <- d
	}
	ch <- c.pass
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, kind := range schema.Kinds {
		for i, d := range c.records {
			v := c.m.Load(kind, Counter(i))
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), kind.String())
		}
	}

	snap := c.m.Snapshot()
	for kind, p := range snap.Passes {
		ch <- prometheus.MustNewConstSummary(c.pass, p.Count, p.Sum.Seconds(), nil, kind.String())
	}
}
