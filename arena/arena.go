package arena

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
	"github.com/joshuapare/heapkit/internal/pages"
)

// Ptr is the offset of a block payload inside the arena buffer. NilPtr never
// addresses a payload because offset 0 holds the sentinel header.
type Ptr uint32

// NilPtr is the zero pointer.
const NilPtr Ptr = 0

// Arena manages one fixed-size buffer with an address-ordered free list.
//
// An Arena is not safe for concurrent use; wrap it with NewLocked when several
// goroutines share it.
type Arena struct {
	cfg     Config
	geo     format.Geometry
	buf     []byte
	release func() error
	log     *slog.Logger

	bytesFree uint64 // Sum of free payload sizes
	usedCount int    // Used blocks, sentinel excluded
	freeCount int    // Free blocks

	stats  opCounters
	closed bool
}

// New creates an arena from DefaultConfig and the given options.
func New(opts ...Option) (*Arena, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	geo, _ := format.NewGeometry(cfg.Alignment)

	a := &Arena{
		cfg: cfg,
		geo: geo,
		log: cfg.Logger,
	}
	if a.log == nil {
		a.log = logger.L
	}

	switch cfg.Backing {
	case BackingPages:
		if !pages.Supported {
			a.log.Debug("arena: page backing unavailable, using heap")
		}
		data, release, err := pages.Map(int(cfg.Capacity))
		if err != nil {
			return nil, fmt.Errorf("arena: page backing: %w", err)
		}
		a.buf, a.release = data, release
	default:
		a.buf = make([]byte, cfg.Capacity)
	}

	a.initLayout()
	if a.debugEnabled() {
		a.log.Debug("arena created",
			"capacity", cfg.Capacity,
			"alignment", geo.Alignment,
			"header", geo.HeaderSize,
			"backing", cfg.Backing.String())
	}
	return a, nil
}

// initLayout writes the initial layout: the sentinel followed by one free block
// spanning the rest of the buffer.
func (a *Arena) initLayout() {
	h := a.geo.HeaderSize
	first := h
	size := uint32(len(a.buf)) - 2*h

	format.EncodeHeader(a.buf, format.SentinelOffset, format.Header{
		Next:  first,
		Flags: format.FlagSentinel,
		Magic: format.HeaderMagic,
	})
	format.EncodeHeader(a.buf, first, format.Header{
		Next:  format.NoNext,
		Size:  size,
		Flags: format.FlagFree,
		Magic: format.HeaderMagic,
	})

	a.bytesFree = uint64(size)
	a.freeCount = 1
	a.usedCount = 0
}

// Reset discards every allocation and restores the initial layout. Pointers
// handed out before Reset become invalid. Operation counters are kept.
func (a *Arena) Reset() error {
	if err := a.usable(); err != nil {
		return err
	}
	if a.cfg.Scrub {
		if a.cfg.Backing == BackingPages {
			if err := pages.Discard(a.buf); err != nil {
				a.log.Warn("arena reset: discard failed", "err", err)
			}
		} else {
			clear(a.buf)
		}
	}
	a.initLayout()
	a.stats.Resets++
	a.log.Debug("arena reset", "bytes_free", a.bytesFree)
	return nil
}

// Close releases the backing store. Every later call returns ErrClosed.
// Close is idempotent.
func (a *Arena) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.buf = nil
	if a.release != nil {
		return a.release()
	}
	return nil
}

// Capacity returns the arena size in bytes, sentinel included.
func (a *Arena) Capacity() uint64 { return a.cfg.Capacity }

// Alignment returns the alignment unit.
func (a *Arena) Alignment() uint32 { return a.geo.Alignment }

// HeaderSize returns the padded block header size.
func (a *Arena) HeaderSize() uint32 { return a.geo.HeaderSize }

// BytesFree returns the sum of free payload sizes. Headers are not counted.
func (a *Arena) BytesFree() uint64 { return a.bytesFree }

// UsedBlocks returns the number of allocated blocks.
func (a *Arena) UsedBlocks() int { return a.usedCount }

// FreeBlocks returns the number of free blocks.
func (a *Arena) FreeBlocks() int { return a.freeCount }

func (a *Arena) usable() error {
	if a.closed {
		return ErrClosed
	}
	return nil
}

func (a *Arena) debugEnabled() bool {
	return a.log.Enabled(context.Background(), slog.LevelDebug)
}

// round converts a caller size into an aligned payload size. Zero rounds up
// to one alignment unit.
func (a *Arena) round(size uint64) (uint32, error) {
	if size == 0 {
		size = 1
	}
	n, ok := format.AlignUp(size, uint64(a.geo.Alignment))
	if !ok || n > a.cfg.Capacity {
		return 0, fmt.Errorf("%w: %d bytes exceeds capacity %d", ErrOutOfMemory, size, a.cfg.Capacity)
	}
	return uint32(n), nil
}
