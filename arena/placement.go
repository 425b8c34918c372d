package arena

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// fit classifies a free block against a request.
type fit int

const (
	notEnough    fit = iota // smaller than the request
	enoughToCut             // leaves room for a header plus one alignment unit
	enoughToFill            // fits, remainder too small to stand alone
)

func (f fit) String() string {
	switch f {
	case notEnough:
		return "not-enough"
	case enoughToCut:
		return "cut"
	case enoughToFill:
		return "fill"
	default:
		return fmt.Sprintf("fit(%d)", int(f))
	}
}

func (a *Arena) classify(size, req uint32) fit {
	switch {
	case size < req:
		return notEnough
	case uint64(size) >= a.geo.CutThreshold(req):
		return enoughToCut
	default:
		return enoughToFill
	}
}

// Allocate returns a pointer to at least size bytes. The size is rounded up to
// the alignment unit; zero is served as one unit. The lowest-addressed free
// block that fits is used.
func (a *Arena) Allocate(size uint64) (Ptr, error) {
	if err := a.usable(); err != nil {
		return NilPtr, err
	}
	a.stats.Allocations++

	req, err := a.round(size)
	if err != nil {
		a.outOfMemory("allocate", size)
		return NilPtr, err
	}
	off, ok := a.place(req)
	if !ok {
		a.outOfMemory("allocate", size)
		return NilPtr, fmt.Errorf("%w: %d bytes requested, %d free", ErrOutOfMemory, size, a.bytesFree)
	}
	return Ptr(a.geo.Payload(off)), nil
}

// place runs first fit for an aligned request and returns the header offset
// of the block now marked used.
func (a *Arena) place(req uint32) (uint32, bool) {
	prev := uint32(format.SentinelOffset)
	for off := a.next(prev); off != format.NoNext; prev, off = off, a.next(off) {
		f := a.classify(a.sizeOf(off), req)
		if f == notEnough {
			continue
		}
		a.spliceOut(prev, off)
		if f == enoughToCut {
			a.split(off, req, prev)
		}
		if a.debugEnabled() {
			a.log.Debug("place", "off", off, "req", req, "fit", f.String(), "size", a.sizeOf(off))
		}
		return off, true
	}
	return 0, false
}

func (a *Arena) outOfMemory(op string, size uint64) {
	a.stats.OutOfMemory++
	a.log.Warn("arena: out of memory",
		"op", op,
		"size", size,
		"bytes_free", a.bytesFree,
		"free_blocks", a.freeCount)
}
