package cache

import (
	"github.com/hashicorp/go-hclog"

	"github.com/vertexlab/refcache/metrics"
)

// Config configures a Cache. The value returned by NewConfig is ready to use;
// callers set only the fields they care about before passing it to New,
// following the same plain-builder shape the teacher package's own Config
// uses (New calls Config.Build() internally to normalize it).
type Config struct {
	// Shards is the number of shards backing both the primary entries map
	// and the auxiliary counts map. Replaced with the default of 16 by
	// Build if zero, negative, or not a power of two.
	Shards int

	// Logger receives Debug/Trace-level tracing of emplace hits/misses,
	// reclamation, and Warn-level notice of ambiguous EntryFor probes. A
	// nil Logger is replaced with hclog.NewNullLogger() by Build, matching
	// spec's "logs nothing... on its own" posture: logging is opt-in.
	Logger hclog.Logger

	// Metrics receives counts of cache operations. Its size and capacity
	// gauges are set only by ShrinkToFit; no other operation updates them.
	// A nil Metrics is replaced with a no-op collector by Build.
	Metrics *metrics.Collector
}

// NewConfig returns a Config with the package defaults.
func NewConfig() Config {
	return Config{Shards: 16}
}

// Build validates and normalizes c, returning the Config to actually use.
// It never fails: unusable values are replaced with defaults rather than
// rejected, mirroring the teacher package's Config.Build.
func (c Config) Build() Config {
	if c.Shards <= 0 || c.Shards&(c.Shards-1) != 0 {
		c.Shards = 16
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Noop()
	}
	return c
}
