package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadMagic indicates an offset that does not hold a live block header.
	ErrBadMagic = errors.New("format: header magic mismatch")
	// ErrBadAlignment indicates an alignment unit outside the supported range.
	ErrBadAlignment = errors.New("format: unsupported alignment")
)
