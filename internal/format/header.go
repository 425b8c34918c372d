package format

import "fmt"

// Header is the decoded form of a block header.
type Header struct {
	Next  uint32 // Offset of the next free header, NoNext at the end of the list
	Size  uint32 // Payload size in bytes
	Flags uint32
	Magic uint32
}

// Free reports whether the header is marked free.
func (h Header) Free() bool { return h.Flags&FlagFree != 0 }

// Sentinel reports whether the header is the arena sentinel.
func (h Header) Sentinel() bool { return h.Flags&FlagSentinel != 0 }

// Live reports whether the header carries the block magic.
func (h Header) Live() bool { return h.Magic == HeaderMagic }

// DecodeHeader reads the header at off. The caller must ensure
// off+RawHeaderSize is within b.
func DecodeHeader(b []byte, off uint32) Header {
	o := int(off)
	return Header{
		Next:  ReadU32(b, o+NextOffset),
		Size:  ReadU32(b, o+SizeOffset),
		Flags: ReadU32(b, o+FlagsOffset),
		Magic: ReadU32(b, o+MagicOffset),
	}
}

// EncodeHeader writes h at off.
func EncodeHeader(b []byte, off uint32, h Header) {
	o := int(off)
	PutU32(b, o+NextOffset, h.Next)
	PutU32(b, o+SizeOffset, h.Size)
	PutU32(b, o+FlagsOffset, h.Flags)
	PutU32(b, o+MagicOffset, h.Magic)
}

// ReadHeader is DecodeHeader with a bounds check.
func ReadHeader(b []byte, off uint32) (Header, error) {
	if uint64(off)+RawHeaderSize > uint64(len(b)) {
		return Header{}, fmt.Errorf("header at 0x%X: %w", off, ErrTruncated)
	}
	h := DecodeHeader(b, off)
	if !h.Live() {
		return h, fmt.Errorf("header at 0x%X: %w", off, ErrBadMagic)
	}
	return h, nil
}

// Scrub zeroes n bytes at off. Used when a header is absorbed by a merge so a
// stale pointer can no longer find a live magic there.
func Scrub(b []byte, off, n uint32) {
	clear(b[off : off+n])
}

// Geometry captures the header size and alignment unit of one arena. Both are
// fixed for the arena lifetime.
type Geometry struct {
	HeaderSize uint32
	Alignment  uint32
}

// NewGeometry derives the padded header size for the given alignment unit.
func NewGeometry(alignment uint32) (Geometry, error) {
	if alignment < MinAlignment || alignment > MaxAlignment || !IsPowerOfTwo(uint64(alignment)) {
		return Geometry{}, fmt.Errorf("%w: %d", ErrBadAlignment, alignment)
	}
	return Geometry{
		HeaderSize: AlignUp32(RawHeaderSize, alignment),
		Alignment:  alignment,
	}, nil
}

// Payload returns the payload offset of the block whose header is at off.
func (g Geometry) Payload(off uint32) uint32 { return off + g.HeaderSize }

// HeaderOf returns the header offset for a payload offset.
func (g Geometry) HeaderOf(payload uint32) uint32 { return payload - g.HeaderSize }

// Successor returns the offset of the physical successor of a block at off
// with the given payload size.
func (g Geometry) Successor(off, size uint32) uint32 {
	return off + g.HeaderSize + size
}

// CutThreshold is the smallest payload that can be split to serve req: the
// remainder must hold a header plus one alignment unit.
func (g Geometry) CutThreshold(req uint32) uint64 {
	return uint64(req) + uint64(g.HeaderSize) + uint64(g.Alignment)
}

// MinCapacity is the smallest arena that holds the sentinel and one block with
// a single alignment unit of payload.
func (g Geometry) MinCapacity() uint64 {
	return 2*uint64(g.HeaderSize) + uint64(g.Alignment)
}
