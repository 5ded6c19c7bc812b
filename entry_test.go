package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntryIsValid(t *testing.T) {
	e := newEntry("hello", 3)
	v, err := e.Get()
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	assert.EqualValues(t, 3, e.SequenceNumber())
	assert.EqualValues(t, 0, e.UseCount())
}

func TestZeroValueEntryIsInvalid(t *testing.T) {
	// Every Entry reachable through the public API is built via newEntry
	// with valid already set; this only exercises the defensive branch on
	// a zero-value Entry the source's own type also guards against.
	var e Entry[int]
	_, err := e.Get()
	require.ErrorIs(t, err, ErrInvalidEntry)
}

func TestEntryIncrDecr(t *testing.T) {
	e := newEntry(1, 0)
	assert.EqualValues(t, 0, e.UseCount())

	e.incr()
	e.incr()
	assert.EqualValues(t, 2, e.UseCount())

	e.decr()
	assert.EqualValues(t, 1, e.UseCount())

	e.decr()
	assert.EqualValues(t, 0, e.UseCount())
}
