package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleZeroValueIsInvalid(t *testing.T) {
	var h Handle[int]
	assert.False(t, h.Valid())
	_, err := h.Get()
	require.ErrorIs(t, err, ErrInvalidHandle)
}

func TestHandleMustGetPanicsWhenEmpty(t *testing.T) {
	var h Handle[int]
	assert.Panics(t, func() { h.MustGet() })
}

func TestHandleCloneAddsIndependentPin(t *testing.T) {
	e := newEntry(5, 0)
	h1 := newHandle(e)
	h1.entry.incr()
	require.EqualValues(t, 1, e.UseCount())

	h2 := h1.Clone()
	assert.EqualValues(t, 2, e.UseCount())

	h2.Release()
	assert.EqualValues(t, 1, e.UseCount())
	assert.False(t, h2.Valid())

	h1.Release()
	assert.EqualValues(t, 0, e.UseCount())
}

func TestHandleCloneOfEmptyIsEmpty(t *testing.T) {
	var h Handle[int]
	clone := h.Clone()
	assert.False(t, clone.Valid())
}

func TestHandleReleaseIsIdempotent(t *testing.T) {
	e := newEntry(5, 0)
	e.incr()
	h := newHandle(e)

	h.Release()
	assert.EqualValues(t, 0, e.UseCount())

	h.Release()
	assert.EqualValues(t, 0, e.UseCount(), "second release must not underflow the count")
}

func TestHandleReassignToDifferentEntry(t *testing.T) {
	e1 := newEntry(1, 0)
	e1.incr()
	e2 := newEntry(2, 1)
	e2.incr()

	h := newHandle(e1)
	other := newHandle(e2)

	h.Reassign(other)

	assert.EqualValues(t, 0, e1.UseCount())
	assert.EqualValues(t, 2, e2.UseCount())

	h.Release()
	other.Release()
	assert.EqualValues(t, 0, e2.UseCount())
}

func TestHandleReassignToSameEntryIsNoop(t *testing.T) {
	e := newEntry(1, 0)
	e.incr()
	h := newHandle(e)
	alias := newHandle(e)

	h.Reassign(alias)

	assert.EqualValues(t, 1, e.UseCount(), "reassigning to the same entry must not transiently touch use_count")
}

func TestHandleReassignFromEmpty(t *testing.T) {
	e := newEntry(1, 0)
	e.incr()
	h := newHandle(e)

	h.Reassign(Handle[int]{})
	assert.False(t, h.Valid())
	assert.EqualValues(t, 0, e.UseCount())
}
