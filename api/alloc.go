package api

import "unsafe"

// Mallocer interface for fixed size block allocators.
type Mallocer interface {
	// Blocksize fixed size of blocks served by this allocator.
	Blocksize() int64

	// Alloc one block. Allocated blocks are writable for Blocksize
	// bytes and uniquely owned until freed. Returns false when
	// backing memory is exhausted.
	Alloc() (ptr unsafe.Pointer, ok bool)

	// Free a block previously returned by Alloc and not yet freed.
	Free(ptr unsafe.Pointer)

	// Release the allocator and all its resources.
	Release()

	// Info of memory accounting for this allocator.
	Info() (capacity, heap, alloc, overhead int64)

	// Stats of allocator operations.
	Stats() map[string]interface{}
}
