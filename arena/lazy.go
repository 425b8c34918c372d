package arena

import "sync"

// Lazy holds an arena that is constructed on first use. It replaces a
// process-global allocator: the owner creates the Lazy and passes it to the
// code that needs it.
type Lazy struct {
	opts []Option
	once sync.Once
	a    *Arena
	err  error
}

// NewLazy records the options for a later New.
func NewLazy(opts ...Option) *Lazy {
	return &Lazy{opts: opts}
}

// Get returns the arena, constructing it on the first call. Every call
// returns the same instance, or the same construction error.
func (l *Lazy) Get() (*Arena, error) {
	l.once.Do(func() {
		l.a, l.err = New(l.opts...)
	})
	return l.a, l.err
}
