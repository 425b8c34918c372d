package arena

import "github.com/joshuapare/heapkit/internal/format"

// opCounters holds running operation totals.
type opCounters struct {
	Allocations      int // Allocate calls, including failures
	Frees            int // Successful Deallocate calls
	Reallocations    int // Reallocate calls on a valid pointer
	Splits           int // Blocks cut in two
	Merges           int // Physical neighbours absorbed
	ShrinksInPlace   int // Reallocate shrinks that released a tail
	GrowsInPlace     int // Reallocate grows served by the successor
	Moves            int // Reallocate grows served by copy
	OutOfMemory      int // Requests that found no fitting block
	RejectedPointers int // Pointers failing validation
	Resets           int
}

// Stats is a point-in-time snapshot of an arena.
type Stats struct {
	Capacity    uint64
	HeaderSize  uint32
	Alignment   uint32
	BytesFree   uint64
	UsedBlocks  int
	FreeBlocks  int
	LargestFree uint32 // Largest single free payload

	Allocations      int
	Frees            int
	Reallocations    int
	Splits           int
	Merges           int
	ShrinksInPlace   int
	GrowsInPlace     int
	Moves            int
	OutOfMemory      int
	RejectedPointers int
	Resets           int
}

// Stats returns a snapshot of the arena counters. LargestFree walks the free
// list.
func (a *Arena) Stats() Stats {
	s := Stats{
		Capacity:   a.cfg.Capacity,
		HeaderSize: a.geo.HeaderSize,
		Alignment:  a.geo.Alignment,
		BytesFree:  a.bytesFree,
		UsedBlocks: a.usedCount,
		FreeBlocks: a.freeCount,

		Allocations:      a.stats.Allocations,
		Frees:            a.stats.Frees,
		Reallocations:    a.stats.Reallocations,
		Splits:           a.stats.Splits,
		Merges:           a.stats.Merges,
		ShrinksInPlace:   a.stats.ShrinksInPlace,
		GrowsInPlace:     a.stats.GrowsInPlace,
		Moves:            a.stats.Moves,
		OutOfMemory:      a.stats.OutOfMemory,
		RejectedPointers: a.stats.RejectedPointers,
		Resets:           a.stats.Resets,
	}
	if a.closed {
		return s
	}
	for off := a.next(format.SentinelOffset); off != format.NoNext; off = a.next(off) {
		s.LargestFree = max(s.LargestFree, a.sizeOf(off))
	}
	return s
}
