// Package cache provides a concurrent, reference-counted, insertion-ordered
// associative store.
//
// Unlike a size- or TTL-bounded cache, entries here are never evicted on a
// schedule or under memory pressure: they are removed only by an explicit
// reclamation call (DropUnused, DropUnusedButLast, ShrinkToFit), and even
// then only once no Handle pins them. Handles are the pin: while at least
// one live Handle refers to an entry, that entry survives every
// reclamation call regardless of how it was reached (Emplace, At,
// EntryFor, or a copy of an existing Handle).
//
// # Lookup
//
// Emplace inserts a value under a key, or returns a Handle to the existing
// entry if the key is already present (first writer wins). At looks up a
// key without creating anything. EntryFor resolves a probe value against
// whichever key currently supports it, for key types that implement
// Prober — see the iov subpackage for a worked example key.
//
// # Reclamation
//
// DropUnused removes every currently-unpinned entry. DropUnusedButLast(n)
// retains the n most recently created unpinned entries and removes the
// rest. Neither call ever removes a pinned entry. ShrinkToFit additionally
// compacts internal bookkeeping, but requires the caller to guarantee no
// concurrent Cache access is in flight.
//
// # Configuration
//
// Config is a plain struct (no builder pattern). Set the fields you care
// about and pass it to New or NewString. Internally, New calls
// Config.Build() to validate and normalize fields.
//
// # Concurrency
//
// Cache operations are safe for concurrent use. A Handle returned from one
// goroutine may be Released from another, but a given Handle value must not
// be used or Released from more than one goroutine at the same time.
package cache
