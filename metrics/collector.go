// Package metrics provides an optional Prometheus-backed observability
// collector for the cache package, grounded on the metrics fields and
// RegisterMetrics pattern used by the retrieval pack's storage engines
// (e.g. a BadgerEngine registering LSM/value-log-size gauges and a
// GC-reclaimed counter). None of this changes cache behavior: it only
// counts operations the cache package already performs.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector observes Cache operations. The zero value is not usable; build
// one with New (registered against a Registry) or Noop (unregistered, for
// callers that don't want metrics).
type Collector struct {
	size            prometheus.Gauge
	capacity        prometheus.Gauge
	emplaceHits     prometheus.Counter
	emplaceMisses   prometheus.Counter
	reclaimedTotal  prometheus.Counter
	ambiguousProbes prometheus.Counter
}

func newCollector() *Collector {
	return &Collector{
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "refcache_entries",
			Help: "Number of live entries in the cache when ShrinkToFit last ran.",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "refcache_capacity",
			Help: "Size of the auxiliary metadata map when ShrinkToFit last ran.",
		}),
		emplaceHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "refcache_emplace_hits_total",
			Help: "Emplace calls that found an existing entry for the key (first-writer-wins).",
		}),
		emplaceMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "refcache_emplace_misses_total",
			Help: "Emplace calls that created a new entry.",
		}),
		reclaimedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "refcache_reclaimed_total",
			Help: "Entries removed by DropUnused/DropUnusedButLast.",
		}),
		ambiguousProbes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "refcache_ambiguous_probes_total",
			Help: "EntryFor calls that failed because more than one key supported the probe.",
		}),
	}
}

// New builds a Collector and registers its metrics against reg.
func New(reg *prometheus.Registry) *Collector {
	c := newCollector()
	reg.MustRegister(
		c.size,
		c.capacity,
		c.emplaceHits,
		c.emplaceMisses,
		c.reclaimedTotal,
		c.ambiguousProbes,
	)
	return c
}

// Noop returns a Collector that is never registered against any Registry.
// Its methods are fully functional (nothing panics or races), they are
// simply never scraped by anything — the cheapest way to give Cache an
// always-non-nil Collector without a nil check on every operation.
func Noop() *Collector {
	return newCollector()
}

// Registry returns a fresh Registry with a newly registered Collector, for
// callers (tests, the demo binary) that want both together.
func Registry() (*prometheus.Registry, *Collector) {
	reg := prometheus.NewRegistry()
	return reg, New(reg)
}

// ObserveSize records the cache's current entry count.
func (c *Collector) ObserveSize(n int) {
	c.size.Set(float64(n))
}

// ObserveCapacity records the auxiliary map's current size.
func (c *Collector) ObserveCapacity(n int) {
	c.capacity.Set(float64(n))
}

// IncEmplaceHit records an Emplace call that found an existing entry.
func (c *Collector) IncEmplaceHit() {
	c.emplaceHits.Inc()
}

// IncEmplaceMiss records an Emplace call that created a new entry.
func (c *Collector) IncEmplaceMiss() {
	c.emplaceMisses.Inc()
}

// AddReclaimed records n entries removed by a reclamation call.
func (c *Collector) AddReclaimed(n int) {
	if n <= 0 {
		return
	}
	c.reclaimedTotal.Add(float64(n))
}

// IncAmbiguousProbe records an EntryFor call that failed with more than one
// supporting key.
func (c *Collector) IncAmbiguousProbe() {
	c.ambiguousProbes.Inc()
}

// Size exposes the size gauge collector for callers (tests, the demo
// binary) that want to read a value back via
// prometheus/client_golang/prometheus/testutil.ToFloat64.
func (c *Collector) Size() prometheus.Gauge { return c.size }

// Capacity exposes the capacity gauge collector, see Size.
func (c *Collector) Capacity() prometheus.Gauge { return c.capacity }

// EmplaceHits exposes the emplace-hit counter collector, see Size.
func (c *Collector) EmplaceHits() prometheus.Counter { return c.emplaceHits }

// EmplaceMisses exposes the emplace-miss counter collector, see Size.
func (c *Collector) EmplaceMisses() prometheus.Counter { return c.emplaceMisses }

// Reclaimed exposes the reclaimed-total counter collector, see Size.
func (c *Collector) Reclaimed() prometheus.Counter { return c.reclaimedTotal }

// AmbiguousProbes exposes the ambiguous-probe counter collector, see Size.
func (c *Collector) AmbiguousProbes() prometheus.Counter { return c.ambiguousProbes }
