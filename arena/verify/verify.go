package verify

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Counters are the allocator-maintained totals checked by Accounting.
type Counters struct {
	BytesFree  uint64
	UsedBlocks int
	FreeBlocks int
}

// AllInvariants validates all arena invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(data []byte, g format.Geometry, c Counters) error {
	if err := Sentinel(data, g); err != nil {
		return err
	}
	if err := Conservation(data, g); err != nil {
		return err
	}
	if err := FreeList(data, g); err != nil {
		return err
	}
	if err := Adjacency(data, g); err != nil {
		return err
	}
	return Accounting(data, g, c)
}

// Sentinel validates the anchor header at offset 0.
func Sentinel(data []byte, g format.Geometry) error {
	if uint64(len(data)) < g.MinCapacity() {
		return &ValidationError{
			Type:    "Sentinel",
			Message: fmt.Sprintf("buffer too small: %d bytes (need %d)", len(data), g.MinCapacity()),
			Offset:  -1,
		}
	}
	h := format.DecodeHeader(data, format.SentinelOffset)
	switch {
	case !h.Live():
		return &ValidationError{Type: "Sentinel", Message: "missing header magic", Offset: 0}
	case !h.Sentinel():
		return &ValidationError{Type: "Sentinel", Message: "sentinel flag not set", Offset: 0}
	case h.Free():
		return &ValidationError{Type: "Sentinel", Message: "sentinel marked free", Offset: 0}
	case h.Size != 0:
		return &ValidationError{
			Type:    "Sentinel",
			Message: fmt.Sprintf("sentinel payload %d, expected 0", h.Size),
			Offset:  0,
		}
	}
	return nil
}

// Conservation walks the physical chain and checks that header plus payload
// over every block, sentinel included, sums to the buffer length.
func Conservation(data []byte, g format.Geometry) error {
	var total uint64
	err := walk(data, g, func(off uint32, h format.Header) error {
		if h.Size%g.Alignment != 0 {
			return &ValidationError{
				Type:    "Conservation",
				Message: fmt.Sprintf("payload %d not a multiple of %d", h.Size, g.Alignment),
				Offset:  int(off),
			}
		}
		if off != format.SentinelOffset && h.Sentinel() {
			return &ValidationError{Type: "Conservation", Message: "second sentinel", Offset: int(off)}
		}
		total += uint64(g.HeaderSize) + uint64(h.Size)
		return nil
	})
	if err != nil {
		return err
	}
	if total != uint64(len(data)) {
		return &ValidationError{
			Type:    "Conservation",
			Message: fmt.Sprintf("blocks cover %d bytes, capacity is %d", total, len(data)),
			Offset:  -1,
		}
	}
	return nil
}

// FreeList validates ordering and membership of the free list.
func FreeList(data []byte, g format.Geometry) error {
	listed := make(map[uint32]struct{})
	limit := len(data)/int(g.HeaderSize) + 1

	prev := uint32(format.SentinelOffset)
	next := format.DecodeHeader(data, prev).Next
	for next != format.NoNext {
		if len(listed) > limit {
			return &ValidationError{Type: "FreeList", Message: "cycle detected", Offset: int(next)}
		}
		if next <= prev {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("not address-ordered: 0x%X follows 0x%X", next, prev),
				Offset:  int(next),
			}
		}
		h, err := format.ReadHeader(data, next)
		if err != nil {
			return &ValidationError{Type: "FreeList", Message: err.Error(), Offset: int(next)}
		}
		if !h.Free() {
			return &ValidationError{Type: "FreeList", Message: "listed block not marked free", Offset: int(next)}
		}
		listed[next] = struct{}{}
		prev, next = next, h.Next
	}

	physicalFree := 0
	err := walk(data, g, func(off uint32, h format.Header) error {
		if !h.Free() {
			return nil
		}
		physicalFree++
		if _, ok := listed[off]; !ok {
			return &ValidationError{Type: "FreeList", Message: "free block missing from list", Offset: int(off)}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if physicalFree != len(listed) {
		return &ValidationError{
			Type:    "FreeList",
			Message: fmt.Sprintf("list holds %d entries, %d free blocks on the chain", len(listed), physicalFree),
			Offset:  -1,
		}
	}
	return nil
}

// Adjacency checks that coalescing left no two neighbouring free blocks.
func Adjacency(data []byte, g format.Geometry) error {
	prevFree := false
	var prevOff uint32
	return walk(data, g, func(off uint32, h format.Header) error {
		if h.Free() && prevFree {
			return &ValidationError{
				Type:    "Adjacency",
				Message: fmt.Sprintf("free block follows free block at 0x%X", prevOff),
				Offset:  int(off),
			}
		}
		prevFree, prevOff = h.Free(), off
		return nil
	})
}

// Accounting compares the buffer contents against the allocator counters.
func Accounting(data []byte, g format.Geometry, c Counters) error {
	var (
		bytesFree uint64
		used      int
		free      int
	)
	err := walk(data, g, func(off uint32, h format.Header) error {
		switch {
		case off == format.SentinelOffset:
		case h.Free():
			free++
			bytesFree += uint64(h.Size)
		default:
			used++
		}
		return nil
	})
	if err != nil {
		return err
	}
	if bytesFree != c.BytesFree {
		return &ValidationError{
			Type:    "Accounting",
			Message: fmt.Sprintf("bytes free %d, counter says %d", bytesFree, c.BytesFree),
			Offset:  -1,
		}
	}
	if used != c.UsedBlocks || free != c.FreeBlocks {
		return &ValidationError{
			Type:    "Accounting",
			Message: fmt.Sprintf("blocks used=%d free=%d, counters say used=%d free=%d", used, free, c.UsedBlocks, c.FreeBlocks),
			Offset:  -1,
		}
	}
	return nil
}

// walk visits every block in physical order, starting with the sentinel.
func walk(data []byte, g format.Geometry, fn func(off uint32, h format.Header) error) error {
	end := uint64(len(data))
	for off := uint64(0); off < end; {
		h, err := format.ReadHeader(data, uint32(off))
		if err != nil {
			return &ValidationError{Type: "Chain", Message: err.Error(), Offset: int(off)}
		}
		next := off + uint64(g.HeaderSize) + uint64(h.Size)
		if next > end {
			return &ValidationError{
				Type:    "Chain",
				Message: fmt.Sprintf("block of %d bytes runs past capacity %d", h.Size, end),
				Offset:  int(off),
			}
		}
		if err := fn(uint32(off), h); err != nil {
			return err
		}
		off = next
	}
	return nil
}
