package arena

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory indicates that no free block can hold the request. The
	// arena is left unchanged.
	ErrOutOfMemory = errors.New("arena: out of memory")

	// ErrInvalidPointer indicates a pointer that is not the payload of a
	// currently used block.
	ErrInvalidPointer = errors.New("arena: invalid pointer")

	// ErrDoubleFree indicates a pointer whose block is already free. It wraps
	// ErrInvalidPointer.
	ErrDoubleFree = fmt.Errorf("%w (double free)", ErrInvalidPointer)

	// ErrBadConfig indicates an unusable capacity or alignment.
	ErrBadConfig = errors.New("arena: bad config")

	// ErrClosed indicates use of an arena after Close.
	ErrClosed = errors.New("arena: closed")
)

// splitTooSmall is the panic value raised when split is asked to cut a block
// below the cut threshold. Reaching it means placement or resize is broken.
const splitTooSmall = "arena: split too small"
