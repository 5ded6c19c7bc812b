package cmap

import (
	"fmt"
	"hash/maphash"
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is used whenever a caller does not specify a shard
// count, or specifies one that is not a power of two.
const DefaultShardCount = 16

// Map is a concurrent-safe sharded map. Unlike a plain Get/Set map, it
// exposes accessors that run a callback while a key's shard lock is held
// (AcquireAndPin, FindAndPin, EraseIf), so that "look up (or create) and
// atomically do something to the result before anyone else can touch it"
// is expressible without a separate top-level mutex.
type Map[K comparable, V any] struct {
	shards []*shard[K, V]
	mask   uint64
	hash   func(K) uint64
}

type shard[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// New creates a sharded map for any comparable key type, hashed by
// formatting the key and feeding it through hash/maphash. This mirrors
// the generic-key shard-selection scheme used across the retrieval pack's
// sharded maps; callers with a cheaply-hashable key type (e.g. string)
// should prefer NewWithHasher or NewStringShardedMurmur3.
func New[K comparable, V any](shardCount int) *Map[K, V] {
	seed := maphash.MakeSeed()
	return NewWithHasher[K, V](shardCount, func(k K) uint64 {
		var h maphash.Hash
		h.SetSeed(seed)
		_, _ = h.WriteString(fmt.Sprintf("%v", k))
		return h.Sum64()
	})
}

// NewWithHasher creates a sharded map using a caller-supplied hash
// function for shard selection.
func NewWithHasher[K comparable, V any](shardCount int, hash func(K) uint64) *Map[K, V] {
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		shardCount = DefaultShardCount
	}

	m := &Map[K, V]{
		shards: make([]*shard[K, V], shardCount),
		mask:   uint64(shardCount - 1),
		hash:   hash,
	}
	for i := range m.shards {
		m.shards[i] = &shard[K, V]{items: make(map[K]V)}
	}
	return m
}

// NewStringShardedMurmur3 creates a sharded map keyed by string, using
// murmur3 for shard selection instead of maphash+fmt.Sprintf. This is the
// faster, better-distributed path the retrieval pack's own sharded maps
// reserve for their string-key fast path, wired here to a real dependency
// rather than reimplemented.
func NewStringShardedMurmur3[V any](shardCount int) *Map[string, V] {
	return NewWithHasher[string, V](shardCount, func(k string) uint64 {
		return murmur3.Sum64([]byte(k))
	})
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	return m.shards[m.hash(key)&m.mask]
}

// AcquireAndPin locks key's shard, finds or creates its slot, and calls
// pin on the resulting value before releasing the lock. This is the
// acquire(key) -> (slot, inserted) primitive: the pin callback runs while
// the shard is still exclusively locked, so nothing can observe the newly
// (re)acquired value before pin has run, and nothing can erase it out from
// under pin either — EraseIf blocks on the same lock.
func (m *Map[K, V]) AcquireAndPin(key K, create func() V, pin func(V)) (value V, inserted bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.items[key]; ok {
		pin(v)
		return v, false
	}

	v := create()
	s.items[key] = v
	pin(v)
	return v, true
}

// FindAndPin locks key's shard for reading, and if present calls pin on
// the value before releasing the lock. This is the find(key) -> slot?
// primitive; running pin under the shard's read lock closes the same
// race window AcquireAndPin closes for inserts: EraseIf needs the write
// lock, so it cannot erase the slot between FindAndPin's lookup and its
// pin call.
func (m *Map[K, V]) FindAndPin(key K, pin func(V)) (value V, ok bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[key]
	if !ok {
		return value, false
	}
	pin(v)
	return v, true
}

// EraseIf deletes key's slot if present and cond(value) holds, both
// checked under the shard's write lock. This is erase_by_key made
// conditional, so callers can re-verify "still unused" immediately before
// erasing without a separate round-trip that would reopen the race.
func (m *Map[K, V]) EraseIf(key K, cond func(V) bool) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[key]
	if !ok {
		return false
	}
	if !cond(v) {
		return false
	}
	delete(s.items, key)
	return true
}

// Set unconditionally inserts or overwrites key's slot.
func (m *Map[K, V]) Set(key K, value V) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

// Range iterates over all key/value pairs, shard by shard. It is not a
// consistent snapshot: concurrent inserts and erasures may or may not be
// observed, and different shards are locked at different times.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Len returns the approximate total number of entries across all shards.
func (m *Map[K, V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// Reset replaces every shard's backing map with a fresh, empty one,
// releasing memory retained by prior insertions. Callers are responsible
// for ensuring no concurrent access is in flight (see Cache.ShrinkToFit).
func (m *Map[K, V]) Reset() {
	for _, s := range m.shards {
		s.mu.Lock()
		s.items = make(map[K]V)
		s.mu.Unlock()
	}
}
