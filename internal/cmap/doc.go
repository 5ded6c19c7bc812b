// Package cmap provides a concurrent-safe sharded map that exposes
// lock-scoped accessors instead of plain Get/Set: callers can run a
// callback while a key's shard lock is held, which is what the cache
// package needs to pin an entry's reference count atomically with the
// lookup or insert that produced it.
package cmap
