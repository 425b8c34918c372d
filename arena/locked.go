package arena

import "sync"

// Locked serializes access to an Arena with a single mutex.
type Locked struct {
	mu sync.Mutex
	a  *Arena
}

// NewLocked wraps a. The caller must not use a directly afterwards.
func NewLocked(a *Arena) *Locked {
	return &Locked{a: a}
}

// Allocate is Arena.Allocate under the lock.
func (l *Locked) Allocate(size uint64) (Ptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Allocate(size)
}

// Deallocate is Arena.Deallocate under the lock.
func (l *Locked) Deallocate(p Ptr) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Deallocate(p)
}

// Reallocate is Arena.Reallocate under the lock. The returned pointer is
// only meaningful to payload access inside With.
func (l *Locked) Reallocate(p Ptr, size uint64) (Ptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Reallocate(p, size)
}

// BytesFree returns the total free payload.
func (l *Locked) BytesFree() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.BytesFree()
}

// UsedBlocks returns the number of allocated blocks.
func (l *Locked) UsedBlocks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.UsedBlocks()
}

// FreeBlocks returns the length of the free list.
func (l *Locked) FreeBlocks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.FreeBlocks()
}

// Stats returns a consistent snapshot taken under the lock.
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Stats()
}

// Check validates the arena layout.
func (l *Locked) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Check()
}

// Reset restores the initial layout. See Arena.Reset.
func (l *Locked) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Reset()
}

// Close releases the wrapped arena.
func (l *Locked) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Close()
}

// With runs fn with the lock held. Use it to read or write payloads through
// Bytes, since those slices must not be touched outside the lock.
func (l *Locked) With(fn func(a *Arena) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.a)
}
