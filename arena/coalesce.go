package arena

import "github.com/joshuapare/heapkit/internal/format"

// Deallocate returns the block at p to the free list and merges it with any
// free physical neighbour. Deallocate(NilPtr) is a no-op.
//
// A pointer that is not the payload of a used block yields ErrInvalidPointer,
// or ErrDoubleFree when the block is already free; the arena is not modified.
func (a *Arena) Deallocate(p Ptr) error {
	if err := a.usable(); err != nil {
		return err
	}
	if p == NilPtr {
		return nil
	}
	off, err := a.resolve(p, "deallocate")
	if err != nil {
		return err
	}
	a.stats.Frees++
	a.free(off)
	return nil
}

// free links a used block back in and restores the no-adjacent-free rule:
// first the block absorbs its successor, then its list predecessor absorbs
// the block if they touch.
func (a *Arena) free(off uint32) {
	if a.cfg.Scrub {
		clear(a.payload(off))
	}
	prev := a.spliceIn(off)
	a.mergeWithSuccessor(off)
	if prev != format.SentinelOffset {
		a.mergeWithSuccessor(prev)
	}
	if a.debugEnabled() {
		a.log.Debug("free", "off", off, "bytes_free", a.bytesFree, "free_blocks", a.freeCount)
	}
}
