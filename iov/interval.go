// Package iov provides a half-open interval-of-validity key type: a worked
// example of a key that supports refcache's custom-key lookup protocol,
// grounded on the retrieval pack's own interval_of_validity test key.
package iov

import "fmt"

// Interval is a half-open range [Begin, End) over unsigned event numbers,
// used as a Cache key when lookups need to resolve a probe value (a single
// event number) to whichever stored key covers it rather than an exact key
// match.
type Interval struct {
	Begin uint64
	End   uint64
}

// New returns the interval [begin, end).
func New(begin, end uint64) Interval {
	return Interval{Begin: begin, End: end}
}

// Supports reports whether x falls within the half-open range [Begin, End).
func (i Interval) Supports(x uint64) bool {
	return i.Begin <= x && x < i.End
}

// String renders the interval the way the source's operator<< does.
func (i Interval) String() string {
	return fmt.Sprintf("[%d, %d)", i.Begin, i.End)
}
