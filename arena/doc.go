// Package arena provides a fixed-capacity allocator over a single byte buffer.
//
// # Overview
//
// An Arena reserves one buffer at construction and serves Allocate,
// Deallocate and Reallocate requests from it. It never grows. Every block,
// used or free, starts with a header carrying its payload size, a free flag
// and a free-list link. Free blocks are chained in strictly increasing
// address order, anchored by a permanent zero-payload sentinel at offset 0.
//
// Pointers are payload offsets (Ptr). Use Bytes to obtain a slice view of a
// payload.
//
// # Placement
//
// Allocate rounds the request up to the alignment unit and takes the first
// free block, in address order, that fits:
//
//	size < req                        not enough, keep scanning
//	size >= req + header + alignment  cut: hand out the front, free the tail
//	otherwise                         fill: hand out the whole block
//
// # Coalescing
//
// Deallocate links the block back at its address position, merges it with a
// free physical successor, then lets its free-list predecessor merge with the
// block if the two touch. No two adjacent blocks are ever both free.
//
// # Resize
//
// Reallocate shrinks in place, grows in place when the physical successor is
// free and large enough, and otherwise moves the payload to a new block. A
// failed move leaves the original block untouched.
//
// # Usage Example
//
//	a, err := arena.New(arena.WithCapacity(64 << 10))
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	p, err := a.Allocate(100)
//	if err != nil {
//	    return err
//	}
//	b, _ := a.Bytes(p)
//	copy(b, "hello")
//
//	p, err = a.Reallocate(p, 400)
//	if err != nil {
//	    return err
//	}
//	_ = a.Deallocate(p)
//
// # Thread Safety
//
// Arena is not safe for concurrent use. Locked wraps an Arena with a mutex
// around every operation. Lazy constructs a shared arena on first use.
//
// # Pointer Validation
//
// By default every pointer passed to Deallocate or Reallocate is checked
// against the physical block chain, which costs a walk over all blocks. Pass
// WithPointerCheck(CheckHeader) when the free-list scan should be the only
// linear part of an operation; the header magic and free flag still catch
// stale, misaligned and double-freed pointers.
//
// # Debugging
//
// Set HEAPKIT_LOG_ALLOC=1 to trace splits, merges and moves to stderr, or pass
// a logger with WithLogger. Check validates every layout invariant.
package arena
