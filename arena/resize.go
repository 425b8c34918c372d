package arena

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Reallocate resizes the block at p and returns its possibly new pointer. The
// first min(old, new) payload bytes are preserved.
//
// Shrinking and growing into a free successor keep the pointer. Otherwise a
// new block is placed, the payload copied and the old block freed. If that
// placement fails the result is ErrOutOfMemory and the original block is
// untouched.
//
// Reallocate(NilPtr, n) behaves like Allocate(n).
func (a *Arena) Reallocate(p Ptr, size uint64) (Ptr, error) {
	if err := a.usable(); err != nil {
		return NilPtr, err
	}
	if p == NilPtr {
		return a.Allocate(size)
	}
	off, err := a.resolve(p, "reallocate")
	if err != nil {
		return NilPtr, err
	}
	a.stats.Reallocations++

	req, err := a.round(size)
	if err != nil {
		a.outOfMemory("reallocate", size)
		return NilPtr, err
	}

	old := a.sizeOf(off)
	if req <= old {
		a.shrink(off, req)
		return p, nil
	}
	if a.growInPlace(off, old, req) {
		return p, nil
	}

	dst, ok := a.place(req)
	if !ok {
		a.outOfMemory("reallocate", size)
		return NilPtr, fmt.Errorf("%w: grow 0x%X from %d to %d bytes, %d free", ErrOutOfMemory, uint32(p), old, req, a.bytesFree)
	}
	copy(a.payload(dst), a.payload(off))
	a.free(off)
	a.stats.Moves++

	if a.debugEnabled() {
		a.log.Debug("move", "from", off, "to", dst, "old", old, "new", req)
	}
	return Ptr(a.geo.Payload(dst)), nil
}

// shrink cuts the block down to req in place. The tail becomes a free block
// only when it clears the cut threshold.
func (a *Arena) shrink(off, req uint32) {
	if uint64(a.sizeOf(off)) < a.geo.CutThreshold(req) {
		return
	}
	back := a.split(off, req, format.SentinelOffset)
	if a.cfg.Scrub {
		clear(a.payload(back))
	}
	a.mergeWithSuccessor(back)
	a.stats.ShrinksInPlace++
}

// growInPlace extends the block into a free physical successor when that
// covers the shortfall, then cuts off any excess.
func (a *Arena) growInPlace(off, old, req uint32) bool {
	succ, ok := a.successor(off)
	if !ok {
		return false
	}
	sh := a.header(succ)
	if !sh.Free() || uint64(sh.Size)+uint64(a.geo.HeaderSize) < uint64(req-old) {
		return false
	}
	a.mergeWithSuccessor(off)
	if uint64(a.sizeOf(off)) >= a.geo.CutThreshold(req) {
		a.split(off, req, format.SentinelOffset)
	}
	a.stats.GrowsInPlace++
	return true
}
