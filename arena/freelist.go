package arena

import "github.com/joshuapare/heapkit/internal/format"

// findPredecessor returns the last free-list entry below target, starting the
// walk at the sentinel.
func (a *Arena) findPredecessor(target uint32) uint32 {
	return a.findPredecessorFrom(format.SentinelOffset, target)
}

// findPredecessorFrom walks the free list from start, which must be the
// sentinel or a listed block below target.
func (a *Arena) findPredecessorFrom(start, target uint32) uint32 {
	prev := start
	for n := a.next(prev); n != format.NoNext && n < target; n = a.next(prev) {
		prev = n
	}
	return prev
}

// spliceOut unlinks the free block at off, whose list predecessor is prev,
// and marks it used.
func (a *Arena) spliceOut(prev, off uint32) {
	a.setNext(prev, a.next(off))
	a.setNext(off, format.NoNext)
	a.setFree(off, false)

	a.freeCount--
	a.usedCount++
	a.bytesFree -= uint64(a.sizeOf(off))
}

// spliceIn marks the used block at off free and links it at its address
// position. Returns the list predecessor.
func (a *Arena) spliceIn(off uint32) uint32 {
	prev := a.findPredecessor(off)
	a.setNext(off, a.next(prev))
	a.setNext(prev, off)
	a.setFree(off, true)

	a.freeCount++
	a.usedCount--
	a.bytesFree += uint64(a.sizeOf(off))
	return prev
}

// split cuts the used block at off into a front of req bytes and a free back
// block holding the rest. hint is any free-list entry below the block, or the
// sentinel. Returns the back block offset.
//
// Panics if the block is below the cut threshold for req.
func (a *Arena) split(off, req, hint uint32) uint32 {
	size := a.sizeOf(off)
	if uint64(size) < a.geo.CutThreshold(req) {
		panic(splitTooSmall)
	}

	back := a.geo.Successor(off, req)
	backSize := size - req - a.geo.HeaderSize
	a.setSize(off, req)

	prev := a.findPredecessorFrom(hint, back)
	format.EncodeHeader(a.buf, back, format.Header{
		Next:  a.next(prev),
		Size:  backSize,
		Flags: format.FlagFree,
		Magic: format.HeaderMagic,
	})
	a.setNext(prev, back)

	a.freeCount++
	a.bytesFree += uint64(backSize)
	a.stats.Splits++

	if a.debugEnabled() {
		a.log.Debug("split", "off", off, "front", req, "back", back, "back_size", backSize)
	}
	return back
}

// mergeWithSuccessor absorbs the physical successor of off when it is free.
// It works for both free and used blocks and is a no-op on the sentinel or
// when the successor is used. Reports whether a merge happened.
func (a *Arena) mergeWithSuccessor(off uint32) bool {
	if off == format.SentinelOffset {
		return false
	}
	succ, ok := a.successor(off)
	if !ok {
		return false
	}
	sh := a.header(succ)
	if !sh.Free() {
		return false
	}

	h := a.header(off)
	// A free block sits directly before its free successor in the list.
	prev := off
	if !h.Free() {
		prev = a.findPredecessor(succ)
	}
	a.setNext(prev, sh.Next)

	a.setSize(off, h.Size+a.geo.HeaderSize+sh.Size)
	format.Scrub(a.buf, succ, a.geo.HeaderSize)

	a.freeCount--
	if h.Free() {
		a.bytesFree += uint64(a.geo.HeaderSize)
	} else {
		a.bytesFree -= uint64(sh.Size)
	}
	a.stats.Merges++

	if a.debugEnabled() {
		a.log.Debug("merge", "off", off, "absorbed", succ, "size", a.sizeOf(off))
	}
	return true
}
