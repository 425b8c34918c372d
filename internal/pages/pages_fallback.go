//go:build !unix

// Package pages provides page-backed byte regions that live outside the Go
// heap. The arena uses them for its buffer when page backing is requested.
package pages

import "fmt"

// Supported reports whether Map returns memory outside the Go heap.
const Supported = false

// Map allocates a regular Go slice when anonymous mappings are not available.
func Map(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("pages: invalid size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}

// Discard zeroes b.
func Discard(b []byte) error {
	clear(b)
	return nil
}
