package cache

// Handle is a lightweight, copyable pin into a Cache entry: while at least
// one live pin refers to an entry, that entry is never removed by any
// reclamation call. A zero-value Handle is empty (Valid reports false) and
// safely Release-able (a no-op).
//
// Copy semantics differ from the source's C++ handle, which runs code on
// every copy construction and copy assignment. Go has no such hooks: a bare
// `h2 := h1` is a plain struct copy that shares h1's existing pin without
// acquiring a new one. Treat a plain-copied Handle as a read-only alias of
// the original — Release it through exactly one of the aliases, never both.
// To acquire an independently-released pin, call Clone.
type Handle[V any] struct {
	entry *Entry[V]
}

func newHandle[V any](e *Entry[V]) Handle[V] {
	return Handle[V]{entry: e}
}

// Valid reports whether the handle currently pins an entry.
func (h Handle[V]) Valid() bool {
	return h.entry != nil
}

// Get returns the pinned value, or ErrInvalidHandle if the handle is empty.
func (h Handle[V]) Get() (V, error) {
	if h.entry == nil {
		var zero V
		return zero, ErrInvalidHandle.withCause(nil)
	}
	return h.entry.Get()
}

// MustGet returns the pinned value and panics if the handle is empty. It
// exists for call sites that have already checked Valid (or a scenario
// script that, like the source's tests, dereferences unconditionally) and
// want a value rather than an (V, error) pair.
func (h Handle[V]) MustGet() V {
	v, err := h.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Clone acquires an additional, independently-released pin on the same
// entry as h — the Go equivalent of the source's copy constructor. Cloning
// an empty handle returns another empty handle.
func (h Handle[V]) Clone() Handle[V] {
	if h.entry == nil {
		return Handle[V]{}
	}
	h.entry.incr()
	return Handle[V]{entry: h.entry}
}

// Release drops h's pin, if any, and empties h. Release is idempotent:
// calling it more than once on the same Handle value only decrements once,
// since the first call already nils out entry.
func (h *Handle[V]) Release() {
	if h.entry == nil {
		return
	}
	h.entry.decr()
	h.entry = nil
}

// Reassign replaces h's pin with other's, acquiring a new pin on other's
// entry and releasing h's old one — the Go equivalent of the source's copy
// assignment operator. When h and other already pin the same entry, this is
// a no-op on the reference count: it does not decrement-then-increment,
// because a transient drop to zero between those two steps could let a
// concurrent reclamation scan erase the entry out from under h before the
// increment restores it. This mirrors the exact hazard the source's
// operator= comment documents.
//
// Reassign never releases other: other keeps its own independent pin (this
// is visible in the same-entry case above, where other's pin is left
// untouched rather than folded into h's). Callers that built other solely
// to feed it to Reassign, e.g. `h.Reassign(c.At(k))`, still own that pin and
// must Release it themselves once done with h.
func (h *Handle[V]) Reassign(other Handle[V]) {
	if h.entry == other.entry {
		return
	}
	if other.entry != nil {
		other.entry.incr()
	}
	if h.entry != nil {
		h.entry.decr()
	}
	h.entry = other.entry
}
