package arena

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Header views over the arena buffer. Offsets passed here are header offsets,
// never payload pointers.

func (a *Arena) header(off uint32) format.Header {
	return format.DecodeHeader(a.buf, off)
}

func (a *Arena) next(off uint32) uint32 {
	return format.ReadU32(a.buf, int(off)+format.NextOffset)
}

func (a *Arena) setNext(off, next uint32) {
	format.PutU32(a.buf, int(off)+format.NextOffset, next)
}

func (a *Arena) sizeOf(off uint32) uint32 {
	return format.ReadU32(a.buf, int(off)+format.SizeOffset)
}

func (a *Arena) setSize(off, size uint32) {
	format.PutU32(a.buf, int(off)+format.SizeOffset, size)
}

func (a *Arena) setFree(off uint32, free bool) {
	flags := format.ReadU32(a.buf, int(off)+format.FlagsOffset)
	if free {
		flags |= format.FlagFree
	} else {
		flags &^= format.FlagFree
	}
	format.PutU32(a.buf, int(off)+format.FlagsOffset, flags)
}

// successor returns the header offset of the block physically after off.
// ok is false for the last block in the buffer.
func (a *Arena) successor(off uint32) (uint32, bool) {
	s := a.geo.Successor(off, a.sizeOf(off))
	if uint64(s) >= uint64(len(a.buf)) {
		return 0, false
	}
	return s, true
}

func (a *Arena) payload(off uint32) []byte {
	start := a.geo.Payload(off)
	return a.buf[start : start+a.sizeOf(off)]
}

// resolve maps a caller pointer to the header offset of a used block.
func (a *Arena) resolve(p Ptr, op string) (uint32, error) {
	off, reason, err := a.locate(p)
	if err != nil {
		a.stats.RejectedPointers++
		a.log.Warn("arena: rejected pointer", "op", op, "ptr", uint32(p), "reason", reason)
		return 0, fmt.Errorf("%w: %s 0x%X: %s", err, op, uint32(p), reason)
	}
	return off, nil
}

func (a *Arena) locate(p Ptr) (uint32, string, error) {
	h := a.geo.HeaderSize
	ptr := uint64(p)

	switch {
	case ptr < 2*uint64(h):
		return 0, "inside sentinel", ErrInvalidPointer
	case !format.IsAligned(ptr, uint64(a.geo.Alignment)):
		return 0, "misaligned", ErrInvalidPointer
	case !buf.Has(a.buf, ptr, uint64(a.geo.Alignment)):
		return 0, "out of range", ErrInvalidPointer
	}

	off := a.geo.HeaderOf(uint32(p))
	hdr := a.header(off)
	switch {
	case !hdr.Live():
		return 0, "no block header", ErrInvalidPointer
	case hdr.Sentinel():
		return 0, "sentinel", ErrInvalidPointer
	case !buf.Has(a.buf, ptr, uint64(hdr.Size)):
		return 0, "size runs past capacity", ErrInvalidPointer
	}

	if a.cfg.PointerCheck == CheckStrict && !a.onChain(off) {
		return 0, "not on block chain", ErrInvalidPointer
	}
	if hdr.Free() {
		return 0, "block is free", ErrDoubleFree
	}
	return off, "", nil
}

// onChain walks the physical chain looking for a block boundary at target.
func (a *Arena) onChain(target uint32) bool {
	off := uint32(format.SentinelOffset)
	for off < target {
		s, ok := a.successor(off)
		if !ok {
			return false
		}
		off = s
	}
	return off == target
}
