package arena

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

func TestNew_DefaultLayout(t *testing.T) {
	a := newTestArena(t)

	assert.Equal(t, uint64(DefaultCapacity), a.Capacity())
	assert.Equal(t, uint32(8), a.Alignment())
	assert.Equal(t, uint32(16), a.HeaderSize())
	assert.Equal(t, uint64(2048-2*16), a.BytesFree())
	assert.Equal(t, 0, a.UsedBlocks())
	assert.Equal(t, 1, a.FreeBlocks())

	blocks := a.Blocks()
	require.Len(t, blocks, 2)

	assert.Equal(t, BlockInfo{Offset: 0, Ptr: NilPtr, Size: 0, Next: 16, Sentinel: true}, blocks[0])
	assert.Equal(t, BlockInfo{Offset: 16, Ptr: 32, Size: 2016, Next: 0, Free: true}, blocks[1])

	assertInvariants(t, a)
}

func TestNew_HeaderSizeFollowsAlignment(t *testing.T) {
	tests := []struct {
		alignment uint32
		capacity  uint64
		header    uint32
	}{
		{8, 2048, 16},
		{16, 2048, 16},
		{32, 2048, 32},
		{64, 4096, 64},
		{4096, 32768, 4096},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("align_%d", tt.alignment), func(t *testing.T) {
			a := newTestArena(t, WithAlignment(tt.alignment), WithCapacity(tt.capacity))
			assert.Equal(t, tt.header, a.HeaderSize())
			assert.Equal(t, tt.capacity-2*uint64(tt.header), a.BytesFree())

			p := mustAlloc(t, a, 1)
			assert.Zero(t, uint32(p)%tt.alignment, "payload must be aligned")
			size, err := a.SizeOf(p)
			require.NoError(t, err)
			assert.Equal(t, uint64(tt.alignment), size)
			assertInvariants(t, a)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero alignment", func(c *Config) { c.Alignment = 0 }, true},
		{"alignment not power of two", func(c *Config) { c.Alignment = 12 }, true},
		{"alignment too small", func(c *Config) { c.Alignment = 4 }, true},
		{"alignment too large", func(c *Config) { c.Alignment = 8192 }, true},
		{"capacity not aligned", func(c *Config) { c.Capacity = 2047 }, true},
		{"capacity below minimum", func(c *Config) { c.Capacity = 32 }, true},
		{"capacity at minimum", func(c *Config) { c.Capacity = 40 }, false},
		{"capacity at maximum", func(c *Config) { c.Capacity = MaxCapacity }, false},
		{"capacity above maximum", func(c *Config) { c.Capacity = MaxCapacity + 8 }, true},
		{"unknown backing", func(c *Config) { c.Backing = Backing(7) }, true},
		{"unknown pointer check", func(c *Config) { c.PointerCheck = PointerCheck(3) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrBadConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfig_AlignmentErrorWrapsFormat(t *testing.T) {
	_, err := New(WithAlignment(24))
	require.ErrorIs(t, err, ErrBadConfig)
	require.ErrorIs(t, err, format.ErrBadAlignment)
}

func TestNew_MinimumCapacity(t *testing.T) {
	a := newTestArena(t, WithCapacity(40))
	assert.Equal(t, uint64(8), a.BytesFree())

	p := mustAlloc(t, a, 8)
	assert.Equal(t, Ptr(32), p)
	assert.Zero(t, a.BytesFree())

	_, err := a.Allocate(1)
	require.ErrorIs(t, err, ErrOutOfMemory)
	assertInvariants(t, a)
}

func TestWithConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 4096
	cfg.Alignment = 32

	a := newTestArena(t, WithConfig(cfg), WithScrub(false))
	assert.Equal(t, uint64(4096), a.Capacity())
	assert.Equal(t, uint32(32), a.Alignment())
	assert.False(t, a.cfg.Scrub)
}

func TestClose_RejectsFurtherUse(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	p := mustAlloc(t, a, 16)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close(), "Close must be idempotent")

	_, err = a.Allocate(8)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, a.Deallocate(p), ErrClosed)
	_, err = a.Reallocate(p, 32)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = a.Bytes(p)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = a.SizeOf(p)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, a.Check(), ErrClosed)
	assert.ErrorIs(t, a.Reset(), ErrClosed)
	assert.Nil(t, a.Blocks())

	s := a.Stats()
	assert.Equal(t, 1, s.Allocations)
	assert.Zero(t, s.LargestFree)
}

func TestReset_RestoresInitialLayout(t *testing.T) {
	a := newTestArena(t)
	initial := a.Blocks()

	for range 10 {
		mustAlloc(t, a, 40)
	}
	p := mustAlloc(t, a, 100)
	mustFree(t, a, p)

	require.NoError(t, a.Reset())
	assert.Equal(t, initial, a.Blocks())
	assert.Equal(t, uint64(2016), a.BytesFree())
	assert.Zero(t, a.UsedBlocks())
	assert.Equal(t, 1, a.FreeBlocks())

	s := a.Stats()
	assert.Equal(t, 11, s.Allocations, "counters survive reset")
	assert.Equal(t, 1, s.Resets)
	assertInvariants(t, a)

	_, err := a.SizeOf(p)
	assert.ErrorIs(t, err, ErrInvalidPointer, "pointers die with reset")
}

func TestReset_ScrubClearsPayloads(t *testing.T) {
	a := newTestArena(t)
	p := mustAlloc(t, a, 64)
	fillPattern(t, a, p, 64, 0x41)

	require.NoError(t, a.Reset())
	assert.Equal(t, make([]byte, 64), a.buf[p:p+64])
}

func TestReset_ScrubClearsPagesBacking(t *testing.T) {
	a := newTestArena(t, WithBacking(BackingPages), WithCapacity(16<<10))
	p := mustAlloc(t, a, 6000)
	q := mustAlloc(t, a, 6000)
	fillPattern(t, a, p, 6000, 0x5A)
	fillPattern(t, a, q, 6000, 0xA5)

	require.NoError(t, a.Reset())
	assertInvariants(t, a)
	assert.Equal(t, make([]byte, 6000), a.buf[p:p+6000])
	assert.Equal(t, make([]byte, 6000), a.buf[q:q+6000])
}

func TestPagesBacking(t *testing.T) {
	a := newTestArena(t, WithBacking(BackingPages), WithCapacity(64<<10))

	p := mustAlloc(t, a, 1000)
	fillPattern(t, a, p, 1000, 7)
	q := mustAlloc(t, a, 500)

	p, err := a.Reallocate(p, 4000)
	require.NoError(t, err)
	requirePattern(t, a, p, 1000, 7)
	mustFree(t, a, q)
	assertInvariants(t, a)

	require.NoError(t, a.Reset())
	assertInvariants(t, a)
	assert.Equal(t, uint64(64<<10-32), a.BytesFree())

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
}

func TestWithLogger_TracesAndWarns(t *testing.T) {
	var out bytes.Buffer
	l := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := newTestArena(t, WithLogger(l))

	p := mustAlloc(t, a, 64)
	mustFree(t, a, p)
	_, err := a.Allocate(1 << 20)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Error(t, a.Deallocate(p))

	log := out.String()
	assert.Contains(t, log, "msg=split")
	assert.Contains(t, log, "msg=merge")
	assert.Contains(t, log, "msg=free")
	assert.Contains(t, log, `msg="arena: out of memory"`)
	assert.Contains(t, log, `msg="arena: rejected pointer"`)
}

func TestBackingAndCheckStrings(t *testing.T) {
	assert.Equal(t, "heap", BackingHeap.String())
	assert.Equal(t, "pages", BackingPages.String())
	assert.Equal(t, "Backing(9)", Backing(9).String())
	assert.Equal(t, "strict", CheckStrict.String())
	assert.Equal(t, "header", CheckHeader.String())
	assert.Equal(t, "PointerCheck(9)", PointerCheck(9).String())
}

func TestErrDoubleFreeWrapsInvalidPointer(t *testing.T) {
	assert.True(t, errors.Is(ErrDoubleFree, ErrInvalidPointer))
	assert.False(t, errors.Is(ErrInvalidPointer, ErrDoubleFree))
}
