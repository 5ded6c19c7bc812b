package cache

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/vertexlab/refcache/internal/cmap"
)

// Prober is implemented by key types that support entry_for-style semantic
// lookup: given a probe of type P, Supports reports whether this key covers
// it. The source's C++ keys enable entry_for only when they expose a
// supports method; Go has no conditional method enablement, so the same
// contract is expressed as a constraint on the free function EntryFor
// instead of a method on Cache.
type Prober[P any] interface {
	Supports(P) bool
}

// Cache is a concurrent, reference-counted, insertion-ordered associative
// store. Entries are never evicted by size, weight, or age; they are
// removed only by an explicit reclamation call (DropUnused,
// DropUnusedButLast, ShrinkToFit), and only once no Handle pins them.
//
// entries and counts hold the same set of *Entry[V] pointers under two
// independently-shardable maps: entries is the primary store consulted by
// Emplace/At, counts is the append-mostly auxiliary map EntryFor scans and
// reclamation walks, kept separate so a long entry_for scan never contends
// with entries' per-key locks.
type Cache[K comparable, V any] struct {
	entries *cmap.Map[K, *Entry[V]]
	counts  *cmap.Map[K, *Entry[V]]
	nextSeq atomic.Uint64
	cfg     Config

	shrinkGuard sync.Mutex
}

// New constructs a Cache for a comparable key type, sharded by
// fmt.Sprintf+maphash (see internal/cmap.New). Use NewString for a
// murmur3-hashed fast path when K is string.
func New[K comparable, V any](config Config) *Cache[K, V] {
	cfg := config.Build()
	return &Cache[K, V]{
		entries: cmap.New[K, *Entry[V]](cfg.Shards),
		counts:  cmap.New[K, *Entry[V]](cfg.Shards),
		cfg:     cfg,
	}
}

// NewString constructs a Cache keyed by string, using murmur3 for shard
// selection instead of the generic fmt.Sprintf+maphash path.
func NewString[V any](config Config) *Cache[string, V] {
	cfg := config.Build()
	return &Cache[string, V]{
		entries: cmap.NewStringShardedMurmur3[*Entry[V]](cfg.Shards),
		counts:  cmap.NewStringShardedMurmur3[*Entry[V]](cfg.Shards),
		cfg:     cfg,
	}
}

// Emplace inserts value under key if no entry exists for key yet, or pins
// the existing entry otherwise (first writer wins: on a pre-existing slot
// value is discarded). Either way it returns a Handle pinning the entry.
func (c *Cache[K, V]) Emplace(key K, value V) Handle[V] {
	entry, inserted := c.entries.AcquireAndPin(key,
		func() *Entry[V] {
			sn := c.nextSeq.Add(1) - 1
			return newEntry(value, sn)
		},
		func(e *Entry[V]) { e.incr() },
	)
	if inserted {
		// insert-or-overwrite: a re-emplace on the same key while this one
		// is in flight already resolved to a single entry via
		// AcquireAndPin's own shard lock, so this Set always records the
		// entry that just won.
		c.counts.Set(key, entry)
		c.cfg.Metrics.IncEmplaceMiss()
		c.cfg.Logger.Trace("cache: emplace created entry", "sequence", entry.SequenceNumber())
	} else {
		c.cfg.Metrics.IncEmplaceHit()
		c.cfg.Logger.Trace("cache: emplace found existing entry", "sequence", entry.SequenceNumber())
	}
	return newHandle(entry)
}

// At looks up key without creating an entry. It returns an empty Handle if
// no entry exists for key.
func (c *Cache[K, V]) At(key K) Handle[V] {
	entry, ok := c.entries.FindAndPin(key, func(e *Entry[V]) { e.incr() })
	if !ok {
		return Handle[V]{}
	}
	return newHandle(entry)
}

// EntryFor scans the keys recorded in c's auxiliary counts map looking for
// the unique one that supports probe, and returns a pinning Handle to its
// entry (equivalent to At(matched_key)). It returns an empty Handle if no
// key supports probe, and ErrAmbiguousProbe if more than one does — at most
// one key may support any given probe value at a time; that this invariant
// is upheld is the caller's responsibility, not this function's.
//
// The scan is not a snapshot: keys inserted after the scan begins may or
// may not be observed. counts keeps the keys of reclaimed entries until
// ShrinkToFit, so such a key still takes part in the scan: as the single
// match it yields an empty Handle (as does a key reclaimed before the
// subsequent At call), and alongside another match it yields
// ErrAmbiguousProbe.
func EntryFor[P any, K interface {
	comparable
	Prober[P]
}, V any](c *Cache[K, V], probe P) (Handle[V], error) {
	var matches []K
	c.counts.Range(func(key K, _ *Entry[V]) bool {
		if key.Supports(probe) {
			matches = append(matches, key)
		}
		return true
	})

	switch len(matches) {
	case 0:
		return Handle[V]{}, nil
	case 1:
		return c.At(matches[0]), nil
	default:
		c.cfg.Metrics.IncAmbiguousProbe()
		c.cfg.Logger.Warn("cache: ambiguous probe, multiple keys support it", "matches", len(matches))
		return Handle[V]{}, ErrAmbiguousProbe.withCause(nil)
	}
}

// DropUnused removes every currently-unpinned entry. It is equivalent to
// DropUnusedButLast(0).
func (c *Cache[K, V]) DropUnused() {
	c.DropUnusedButLast(0)
}

// DropUnusedButLast removes unpinned entries, retaining the n unpinned
// entries with the highest sequence numbers (i.e. the n most recently
// created). Entries pinned at scan time are never removed by this call,
// regardless of n.
func (c *Cache[K, V]) DropUnusedButLast(n uint) {
	type candidate struct {
		key   K
		entry *Entry[V]
	}

	var unused []candidate
	c.counts.Range(func(key K, e *Entry[V]) bool {
		if e.UseCount() == 0 {
			// counts still holds the metadata of entries erased by earlier
			// calls; only entries still live in entries are candidates, so
			// stale metadata never takes one of the n retained places.
			if cur, ok := c.entries.FindAndPin(key, func(*Entry[V]) {}); ok && cur == e {
				unused = append(unused, candidate{key: key, entry: e})
			}
		}
		return true
	})

	if uint(len(unused)) <= n {
		return
	}

	sort.Slice(unused, func(i, j int) bool {
		return unused[i].entry.SequenceNumber() > unused[j].entry.SequenceNumber()
	})

	reclaimed := 0
	for _, cand := range unused[n:] {
		// Re-check use_count == 0 under the entries shard's lock immediately
		// before erasing: a concurrent At/EntryFor may have re-pinned this
		// key between the Range above and here, and EraseIf's condition is
		// evaluated atomically with the delete itself.
		erased := c.entries.EraseIf(cand.key, func(e *Entry[V]) bool {
			return e.UseCount() == 0
		})
		if !erased {
			continue
		}
		// counts is left untouched: it is only compacted by ShrinkToFit
		// (spec: "not shrunk on reclamation"). Erasing it here as well would
		// race a concurrent Emplace that recreates this key and re-Sets its
		// metadata into counts between the two erases, permanently wiping
		// the fresh entry's metadata while leaving it live in entries.
		reclaimed++
	}

	if reclaimed > 0 {
		c.cfg.Metrics.AddReclaimed(reclaimed)
		c.cfg.Logger.Debug("cache: reclaimed unused entries", "count", reclaimed, "kept", n)
	}
}

// ShrinkToFit performs DropUnused and then rebuilds the auxiliary counts
// map from scratch to release memory retained by prior insertions.
//
// The caller must guarantee no concurrent Cache access is in flight;
// ShrinkToFit only detects overlapping calls to itself (via a non-blocking
// lock attempt) and panics rather than corrupting counts, mirroring the
// source's debug-only single-threaded assertion. It cannot detect
// concurrent Emplace/At/EntryFor/DropUnused* calls — that precondition is
// on the caller.
func (c *Cache[K, V]) ShrinkToFit() {
	if !c.shrinkGuard.TryLock() {
		panic("cache: ShrinkToFit called concurrently")
	}
	defer c.shrinkGuard.Unlock()

	c.DropUnused()

	c.counts.Reset()
	c.entries.Range(func(key K, e *Entry[V]) bool {
		c.counts.Set(key, e)
		return true
	})

	c.cfg.Metrics.ObserveSize(c.entries.Len())
	c.cfg.Metrics.ObserveCapacity(c.counts.Len())
}

// Size returns the number of live entries in the primary map.
func (c *Cache[K, V]) Size() int {
	return c.entries.Len()
}

// Empty reports whether Size() == 0.
func (c *Cache[K, V]) Empty() bool {
	return c.Size() == 0
}

// Capacity returns the size of the auxiliary counts map, which may exceed
// Size after reclamation until the next ShrinkToFit compacts it.
func (c *Cache[K, V]) Capacity() int {
	return c.counts.Len()
}
