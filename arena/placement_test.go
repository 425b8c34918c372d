package arena

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAllocate_RoundsUpToAlignment checks true round-up, including sizes whose
// bit 3 is clear (20 -> 24).
func TestAllocate_RoundsUpToAlignment(t *testing.T) {
	tests := []struct {
		req  uint64
		want uint64
	}{
		{0, 8},
		{1, 8},
		{7, 8},
		{8, 8},
		{9, 16},
		{17, 24},
		{20, 24},
		{24, 24},
		{100, 104},
		{2016, 2016},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.req), func(t *testing.T) {
			a := newTestArena(t)
			p := mustAlloc(t, a, tt.req)
			size, err := a.SizeOf(p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, size)
			assertInvariants(t, a)
		})
	}
}

func TestClassify(t *testing.T) {
	a := newTestArena(t)

	assert.Equal(t, notEnough, a.classify(56, 64))
	assert.Equal(t, enoughToFill, a.classify(64, 64))
	assert.Equal(t, enoughToFill, a.classify(80, 64), "tail of 0 payload cannot stand alone")
	assert.Equal(t, enoughToCut, a.classify(88, 64), "tail of one unit")
	assert.Equal(t, "cut", enoughToCut.String())
	assert.Equal(t, "fit(9)", fit(9).String())
}

func TestAllocate_CutLeavesFreeTail(t *testing.T) {
	a := newTestArena(t)

	p := mustAlloc(t, a, 64)
	assert.Equal(t, Ptr(32), p)

	blocks := a.Blocks()
	require.Len(t, blocks, 3)
	assert.Equal(t, uint32(64), blocks[1].Size)
	assert.False(t, blocks[1].Free)
	assert.Equal(t, uint32(96), blocks[2].Offset)
	assert.Equal(t, uint32(2016-64-16), blocks[2].Size)
	assert.True(t, blocks[2].Free)

	assert.Equal(t, 1, a.Stats().Splits)
	assertInvariants(t, a)
}

func TestAllocate_FillHandsOutWholeBlock(t *testing.T) {
	a := newTestArena(t)

	// [used 64][free 64][used 64][free rest]
	p1 := mustAlloc(t, a, 64)
	p2 := mustAlloc(t, a, 64)
	mustAlloc(t, a, 64)
	_ = p1
	mustFree(t, a, p2)
	require.Equal(t, []uint32{64, 2016 - 3*80}, freeSizes(a))

	// 48 + header + unit = 72 > 64, so the hole is filled, not cut.
	p := mustAlloc(t, a, 48)
	assert.Equal(t, p2, p)
	size, err := a.SizeOf(p)
	require.NoError(t, err)
	assert.Equal(t, uint64(64), size)
	assert.Equal(t, []uint32{2016 - 3*80}, freeSizes(a))
	assertInvariants(t, a)
}

func TestAllocate_FirstFitLowestAddress(t *testing.T) {
	a := newTestArena(t)

	ptrs := make([]Ptr, 4)
	for i := range ptrs {
		ptrs[i] = mustAlloc(t, a, 64)
	}
	mustFree(t, a, ptrs[0])
	mustFree(t, a, ptrs[2])
	require.Equal(t, []uint32{64, 64, 2016 - 4*80}, freeSizes(a))

	// Both holes fit; the lower one wins and is cut.
	p := mustAlloc(t, a, 32)
	assert.Equal(t, ptrs[0], p)
	assert.Equal(t, []uint32{16, 64, 2016 - 4*80}, freeSizes(a))

	// The 16-byte tail is too small; the next hole is filled.
	q := mustAlloc(t, a, 64)
	assert.Equal(t, ptrs[2], q)
	assert.Equal(t, []uint32{16, 2016 - 4*80}, freeSizes(a))
	assertInvariants(t, a)
}

// TestAllocate_Exhaustion: capacity 2048, header 16, 16-byte requests. Each
// allocation costs 32 bytes; 62 cuts leave a 32-byte block that is filled by
// the 63rd call.
func TestAllocate_Exhaustion(t *testing.T) {
	a := newTestArena(t)

	var last Ptr
	for i := range 63 {
		p, err := a.Allocate(16)
		require.NoError(t, err, "allocation %d", i+1)
		last = p
	}
	_, err := a.Allocate(16)
	require.ErrorIs(t, err, ErrOutOfMemory, "64th allocation must fail")

	size, err := a.SizeOf(last)
	require.NoError(t, err)
	assert.Equal(t, uint64(32), size, "final block is handed out whole")

	assert.Zero(t, a.BytesFree())
	assert.Equal(t, 63, a.UsedBlocks())
	assert.Zero(t, a.FreeBlocks())

	s := a.Stats()
	assert.Equal(t, 62, s.Splits)
	assert.Equal(t, 1, s.OutOfMemory)
	assert.Equal(t, 64, s.Allocations)
	assertInvariants(t, a)
}

func TestAllocate_ExhaustionTable(t *testing.T) {
	tests := []struct {
		capacity  uint64
		alignment uint32
		req       uint64
		want      int
	}{
		{2048, 8, 16, 63},
		{2048, 8, 8, 84},
		{2048, 16, 16, 63},
		{4096, 64, 64, 31},
		{40, 8, 8, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("C%d_A%d_R%d", tt.capacity, tt.alignment, tt.req), func(t *testing.T) {
			a := newTestArena(t, WithCapacity(tt.capacity), WithAlignment(tt.alignment))

			n := 0
			for {
				if _, err := a.Allocate(tt.req); err != nil {
					require.ErrorIs(t, err, ErrOutOfMemory)
					break
				}
				n++
			}
			assert.Equal(t, tt.want, n)
			assertInvariants(t, a)
		})
	}
}

func TestAllocate_OutOfMemoryLeavesArenaUnchanged(t *testing.T) {
	a := newTestArena(t)
	mustAlloc(t, a, 500)
	p := mustAlloc(t, a, 500)
	mustAlloc(t, a, 500)
	mustFree(t, a, p)

	before := a.Blocks()
	free := a.BytesFree()

	for _, n := range []uint64{1000, 4096, math.MaxUint32, math.MaxUint64} {
		_, err := a.Allocate(n)
		require.ErrorIs(t, err, ErrOutOfMemory, "Allocate(%d)", n)
	}

	assert.Equal(t, before, a.Blocks())
	assert.Equal(t, free, a.BytesFree())
	assert.Equal(t, 4, a.Stats().OutOfMemory)
	assertInvariants(t, a)
}
