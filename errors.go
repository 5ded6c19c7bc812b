package cache

import (
	"errors"
	"fmt"
)

// Kind categorizes a CacheError. It exists so callers can branch on the
// failure category without string-matching a message, and so ErrInvalidHandle
// et al. remain usable with errors.Is regardless of the details attached to
// a particular occurrence.
type Kind string

const (
	// KindInvalidHandle marks dereference of an empty Handle.
	KindInvalidHandle Kind = "invalid_handle"
	// KindInvalidEntry marks dereference of an entry whose value was never
	// populated. This should not occur in correct code; seeing it indicates
	// an implementation bug rather than caller misuse.
	KindInvalidEntry Kind = "invalid_entry"
	// KindAmbiguousProbe marks an EntryFor call whose probe is supported by
	// more than one key currently in the cache.
	KindAmbiguousProbe Kind = "ambiguous_probe"
)

// CacheError is the tagged failure type used throughout this package: a
// category (Kind), a human-readable message, and an optional wrapped cause.
type CacheError struct {
	Kind    Kind
	Message string
	Cause   error
}

func newError(kind Kind, message string) *CacheError {
	return &CacheError{Kind: kind, Message: message}
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any, for errors.Unwrap/errors.As.
func (e *CacheError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a CacheError of the same Kind, so that
// errors.Is(err, ErrInvalidHandle) works regardless of the specific message
// or wrapped cause attached to a given occurrence.
func (e *CacheError) Is(target error) bool {
	t, ok := target.(*CacheError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func (e *CacheError) withCause(cause error) *CacheError {
	return &CacheError{Kind: e.Kind, Message: e.Message, Cause: cause}
}

// Sentinel errors for use with errors.Is. Each carries no cause; wrap one
// with fmt.Errorf("...: %w", ErrInvalidHandle) or CacheError.withCause if a
// specific occurrence needs to attach more context.
var (
	// ErrInvalidHandle is returned by Handle.Get when the handle is empty.
	ErrInvalidHandle = newError(KindInvalidHandle, "invalid cache handle dereference")
	// ErrInvalidEntry is returned by Entry.Get when the entry's value was
	// never populated.
	ErrInvalidEntry = newError(KindInvalidEntry, "invalid cache entry dereference")
	// ErrAmbiguousProbe is returned by EntryFor when more than one stored
	// key supports the same probe value.
	ErrAmbiguousProbe = newError(KindAmbiguousProbe, "more than one key supports probe")
)

// IsCacheError reports whether err is a CacheError of the given Kind. If
// kind is empty, it reports whether err is a CacheError at all.
func IsCacheError(err error, kind Kind) bool {
	var ce *CacheError
	if errors.As(err, &ce) {
		if kind == "" {
			return true
		}
		return ce.Kind == kind
	}
	return false
}
