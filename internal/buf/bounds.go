// Package buf contains overflow-safe offset arithmetic for views into a
// single owned byte buffer.
package buf

import "math"

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow uint64.
func AddOverflowSafe(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// Span validates that [off, off+n) lies within a buffer of bufLen bytes and
// returns the exclusive end offset.
func Span(bufLen int, off, n uint64) (uint64, bool) {
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > uint64(bufLen) {
		return 0, false
	}
	return end, true
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n uint64) ([]byte, bool) {
	end, ok := Span(len(b), off, n)
	if !ok {
		return nil, false
	}
	return b[off:end:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n uint64) bool {
	_, ok := Span(len(b), off, n)
	return ok
}
