package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestArena creates an arena with the given options and closes it when the
// test ends.
func newTestArena(t testing.TB, opts ...Option) *Arena {
	t.Helper()

	a, err := New(opts...)
	require.NoError(t, err, "failed to create arena")
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// mustAlloc allocates n bytes and fails the test on error.
func mustAlloc(t testing.TB, a *Arena, n uint64) Ptr {
	t.Helper()

	p, err := a.Allocate(n)
	require.NoError(t, err, "Allocate(%d)", n)
	require.NotEqual(t, NilPtr, p)
	return p
}

// mustFree deallocates p and fails the test on error.
func mustFree(t testing.TB, a *Arena, p Ptr) {
	t.Helper()
	require.NoError(t, a.Deallocate(p), "Deallocate(0x%X)", uint32(p))
}

// assertInvariants runs the verifier and then recomputes conservation and
// accounting independently from Blocks.
func assertInvariants(t testing.TB, a *Arena) {
	t.Helper()

	require.NoError(t, a.Check())

	var (
		total     uint64
		bytesFree uint64
		used      int
		free      int
		prevFree  bool
	)
	for i, b := range a.Blocks() {
		total += uint64(a.HeaderSize()) + uint64(b.Size)
		require.Zero(t, b.Size%a.Alignment(), "block %d payload not aligned", i)
		switch {
		case b.Sentinel:
			require.Zero(t, i, "sentinel must be first")
		case b.Free:
			require.False(t, prevFree, "adjacent free blocks at 0x%X", b.Offset)
			free++
			bytesFree += uint64(b.Size)
		default:
			used++
		}
		prevFree = b.Free
	}
	require.Equal(t, a.Capacity(), total, "capacity conservation")
	require.Equal(t, bytesFree, a.BytesFree(), "bytes free")
	require.Equal(t, used, a.UsedBlocks(), "used blocks")
	require.Equal(t, free, a.FreeBlocks(), "free blocks")
}

// freeSizes returns the payload sizes on the free list in list order.
func freeSizes(a *Arena) []uint32 {
	var sizes []uint32
	for off := a.next(0); off != 0; off = a.next(off) {
		sizes = append(sizes, a.sizeOf(off))
	}
	return sizes
}

// fillPattern writes a recognisable byte pattern into the payload at p.
func fillPattern(t testing.TB, a *Arena, p Ptr, n int, seed byte) {
	t.Helper()

	b, err := a.Bytes(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b), n)
	for i := range n {
		b[i] = seed + byte(i)
	}
}

// requirePattern checks the first n payload bytes at p against fillPattern.
func requirePattern(t testing.TB, a *Arena, p Ptr, n int, seed byte) {
	t.Helper()

	b, err := a.Bytes(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b), n)
	for i := range n {
		if b[i] != seed+byte(i) {
			require.Failf(t, "payload mismatch", "ptr 0x%X byte %d: got 0x%02X want 0x%02X",
				uint32(p), i, b[i], seed+byte(i))
		}
	}
}
