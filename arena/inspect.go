package arena

import (
	"github.com/joshuapare/heapkit/arena/verify"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// BlockInfo describes one block in physical order.
type BlockInfo struct {
	Offset   uint32 // Header offset
	Ptr      Ptr    // Payload pointer, NilPtr for the sentinel
	Size     uint32 // Payload size
	Next     uint32 // Free-list link, meaningful for free blocks and the sentinel
	Free     bool
	Sentinel bool
}

// Blocks walks the buffer in address order, sentinel first. It returns nil on
// a closed arena.
func (a *Arena) Blocks() []BlockInfo {
	if a.closed {
		return nil
	}
	blocks := make([]BlockInfo, 0, a.usedCount+a.freeCount+1)
	off := uint32(format.SentinelOffset)
	for {
		h := a.header(off)
		info := BlockInfo{
			Offset:   off,
			Size:     h.Size,
			Next:     h.Next,
			Free:     h.Free(),
			Sentinel: h.Sentinel(),
		}
		if !info.Sentinel {
			info.Ptr = Ptr(a.geo.Payload(off))
		}
		blocks = append(blocks, info)

		s, ok := a.successor(off)
		if !ok {
			return blocks
		}
		off = s
	}
}

// Bytes returns the payload of the used block at p. The slice aliases the
// arena buffer and is capped at the payload size; it is valid until the block
// is freed, moved or the arena is reset.
func (a *Arena) Bytes(p Ptr) ([]byte, error) {
	if err := a.usable(); err != nil {
		return nil, err
	}
	off, err := a.resolve(p, "bytes")
	if err != nil {
		return nil, err
	}
	b, _ := buf.Slice(a.buf, uint64(a.geo.Payload(off)), uint64(a.sizeOf(off)))
	return b, nil
}

// SizeOf returns the usable payload size of the used block at p, which may
// exceed the size originally requested.
func (a *Arena) SizeOf(p Ptr) (uint64, error) {
	if err := a.usable(); err != nil {
		return 0, err
	}
	off, err := a.resolve(p, "sizeof")
	if err != nil {
		return 0, err
	}
	return uint64(a.sizeOf(off)), nil
}

// Check validates every layout invariant against the current buffer and
// counters. A failure is a *verify.ValidationError.
func (a *Arena) Check() error {
	if err := a.usable(); err != nil {
		return err
	}
	return verify.AllInvariants(a.buf, a.geo, verify.Counters{
		BytesFree:  a.bytesFree,
		UsedBlocks: a.usedCount,
		FreeBlocks: a.freeCount,
	})
}
