//go:build unix

// Package pages provides page-backed byte regions that live outside the Go
// heap. The arena uses them for its buffer when page backing is requested.
package pages

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Supported reports whether Map returns memory outside the Go heap.
const Supported = true

// Map reserves size bytes of zeroed, private, anonymous memory and returns it
// with a release function. Release is safe to call more than once.
func Map(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("pages: invalid size %d", size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("pages: mmap %d bytes: %w", size, err)
	}
	release := func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		data = nil
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	return data, release, nil
}

// advise tells the kernel the pages of b are no longer needed.
func advise(b []byte) error {
	if err := unix.Madvise(b, unix.MADV_DONTNEED); err != nil {
		return fmt.Errorf("pages: madvise: %w", err)
	}
	return nil
}
