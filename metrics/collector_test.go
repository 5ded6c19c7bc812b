package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexlab/refcache/metrics"
)

func TestNewRegistersAllMetrics(t *testing.T) {
	reg, c := metrics.Registry()

	c.ObserveSize(3)
	c.ObserveCapacity(5)
	c.IncEmplaceHit()
	c.IncEmplaceHit()
	c.IncEmplaceMiss()
	c.AddReclaimed(2)
	c.IncAmbiguousProbe()

	assert.Equal(t, float64(3), testutil.ToFloat64(c.Size()))
	assert.Equal(t, float64(5), testutil.ToFloat64(c.Capacity()))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.EmplaceHits()))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.EmplaceMisses()))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.Reclaimed()))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.AmbiguousProbes()))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 6, "all six metrics should be registered")
}

func TestAddReclaimedIgnoresNonPositive(t *testing.T) {
	c := metrics.Noop()
	c.AddReclaimed(0)
	c.AddReclaimed(-5)
	assert.Equal(t, float64(0), testutil.ToFloat64(c.Reclaimed()))
}

func TestNoopIsUsableWithoutARegistry(t *testing.T) {
	c := metrics.Noop()
	c.ObserveSize(1)
	c.IncEmplaceHit()
	assert.Equal(t, float64(1), testutil.ToFloat64(c.Size()))
}
