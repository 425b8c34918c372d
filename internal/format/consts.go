// Package format describes the in-buffer layout of arena block headers. It is
// deliberately free of allocator policy so that the allocator and the
// verifier decode blocks the same way.
package format

// Block header layout (little-endian). The raw header is padded up to the
// arena alignment unit, so payloads always start on an aligned offset.
//
//	Offset  Size  Field
//	0x00    4     Next free header offset (0 = end of free list)
//	0x04    4     Payload size in bytes, header excluded
//	0x08    4     Flags (bit 0 free, bit 1 sentinel)
//	0x0C    4     Magic, marks a live header boundary
const (
	NextOffset  = 0x00
	SizeOffset  = 0x04
	FlagsOffset = 0x08
	MagicOffset = 0x0C

	// RawHeaderSize is the unpadded header length.
	RawHeaderSize = 0x10
)

const (
	// FlagFree marks a block that is linked into the free list.
	FlagFree uint32 = 1 << 0

	// FlagSentinel marks the zero-payload block at offset 0.
	FlagSentinel uint32 = 1 << 1

	// HeaderMagic is "HBLK" read as a little-endian uint32.
	HeaderMagic uint32 = 0x4B4C4248
)

const (
	// SentinelOffset is where the sentinel header lives. Because nothing can
	// link back to the sentinel, 0 doubles as the end-of-list marker.
	SentinelOffset = 0

	// NoNext terminates the free list.
	NoNext = 0
)

const (
	// DefaultAlignment is the alignment unit used when none is configured.
	DefaultAlignment = 8

	// MinAlignment and MaxAlignment bound the configurable alignment unit.
	MinAlignment = 8
	MaxAlignment = 4096
)
