package arena

// Allocator is the allocation surface shared by Arena and Locked.
type Allocator interface {
	Allocate(size uint64) (Ptr, error)
	Deallocate(p Ptr) error
	Reallocate(p Ptr, size uint64) (Ptr, error)
	BytesFree() uint64
	UsedBlocks() int
	FreeBlocks() int
}

var (
	_ Allocator = (*Arena)(nil)
	_ Allocator = (*Locked)(nil)
)
