package arena

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/internal/format"
)

const (
	// DefaultCapacity is the arena size used when none is configured.
	DefaultCapacity = 2048

	// MaxCapacity bounds the arena so every offset fits a header field.
	MaxCapacity = 1 << 30
)

// Backing selects where the arena buffer lives.
type Backing int

const (
	// BackingHeap allocates the buffer as an ordinary Go slice.
	BackingHeap Backing = iota

	// BackingPages maps anonymous private pages outside the Go heap. On
	// platforms without mmap support it falls back to the heap.
	BackingPages
)

func (b Backing) String() string {
	switch b {
	case BackingHeap:
		return "heap"
	case BackingPages:
		return "pages"
	default:
		return fmt.Sprintf("Backing(%d)", int(b))
	}
}

// PointerCheck selects how Deallocate, Reallocate and the inspection calls
// validate caller pointers.
type PointerCheck int

const (
	// CheckStrict additionally walks the physical block chain and rejects
	// pointers that do not land on a block boundary. O(blocks) per call.
	CheckStrict PointerCheck = iota

	// CheckHeader trusts a header whose magic, flags and size are plausible.
	// O(1) per call.
	CheckHeader
)

func (c PointerCheck) String() string {
	switch c {
	case CheckStrict:
		return "strict"
	case CheckHeader:
		return "header"
	default:
		return fmt.Sprintf("PointerCheck(%d)", int(c))
	}
}

// Config holds the construction parameters of an arena. Capacity and
// Alignment are fixed for the arena lifetime.
type Config struct {
	Capacity     uint64
	Alignment    uint32
	Backing      Backing
	PointerCheck PointerCheck

	// Scrub zeroes the payload of every block handed back to the free list,
	// including the tail cut off by a shrinking Reallocate.
	Scrub bool

	// Logger receives allocator tracing. Nil means logger.L.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration New starts from.
func DefaultConfig() Config {
	return Config{
		Capacity:     DefaultCapacity,
		Alignment:    format.DefaultAlignment,
		Backing:      BackingHeap,
		PointerCheck: CheckStrict,
		Scrub:        true,
	}
}

// Validate reports whether the configuration describes a usable arena.
func (c Config) Validate() error {
	geo, err := format.NewGeometry(c.Alignment)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadConfig, err)
	}
	switch {
	case c.Capacity > MaxCapacity:
		return fmt.Errorf("%w: capacity %d exceeds %d", ErrBadConfig, c.Capacity, MaxCapacity)
	case !format.IsAligned(c.Capacity, uint64(c.Alignment)):
		return fmt.Errorf("%w: capacity %d not a multiple of alignment %d", ErrBadConfig, c.Capacity, c.Alignment)
	case c.Capacity < geo.MinCapacity():
		return fmt.Errorf("%w: capacity %d below minimum %d", ErrBadConfig, c.Capacity, geo.MinCapacity())
	}
	switch c.Backing {
	case BackingHeap, BackingPages:
	default:
		return fmt.Errorf("%w: unknown backing %d", ErrBadConfig, int(c.Backing))
	}
	switch c.PointerCheck {
	case CheckStrict, CheckHeader:
	default:
		return fmt.Errorf("%w: unknown pointer check %d", ErrBadConfig, int(c.PointerCheck))
	}
	return nil
}

// Option configures an arena at construction.
type Option func(*Config)

// WithCapacity sets the total arena size in bytes, sentinel included.
func WithCapacity(n uint64) Option {
	return func(c *Config) { c.Capacity = n }
}

// WithAlignment sets the alignment unit. Must be a power of two in [8, 4096].
func WithAlignment(n uint32) Option {
	return func(c *Config) { c.Alignment = n }
}

// WithLogger routes allocator tracing to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithBacking selects heap or page backing.
func WithBacking(b Backing) Option {
	return func(c *Config) { c.Backing = b }
}

// WithPointerCheck selects the pointer validation mode. CheckStrict makes
// Deallocate, Reallocate, Bytes and SizeOf linear in the total number of
// blocks, used and free. CheckHeader keeps validation constant time so each
// call is bounded by the free-list length alone, at the cost of accepting a
// forged header that carries a valid magic.
func WithPointerCheck(m PointerCheck) Option {
	return func(c *Config) { c.PointerCheck = m }
}

// WithScrub toggles zeroing of freed payloads.
func WithScrub(on bool) Option {
	return func(c *Config) { c.Scrub = on }
}

// WithConfig replaces the whole configuration. Later options still apply.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}
