package main

import "unsafe"

import "github.com/bnclabs/slaballoc/malloc"

// runtimepool baseline allocator over the Go runtime, for comparing
// against the slab cache. The runtime frees by garbage collection, so
// Free only accounts; caller held pointers keep blocks alive.
type runtimepool struct {
	n_allocs int64
	n_frees  int64
}

func newruntimepool() *runtimepool {
	return &runtimepool{}
}

// Blocksize implement api.Mallocer{} interface.
func (pool *runtimepool) Blocksize() int64 {
	return malloc.Blocksize
}

// Alloc implement api.Mallocer{} interface.
func (pool *runtimepool) Alloc() (unsafe.Pointer, bool) {
	pool.n_allocs++
	return unsafe.Pointer(new([64]byte)), true
}

// Free implement api.Mallocer{} interface.
func (pool *runtimepool) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		panic("free nil pointer")
	}
	pool.n_frees++
}

// Release implement api.Mallocer{} interface.
func (pool *runtimepool) Release() {
}

// Info implement api.Mallocer{} interface.
func (pool *runtimepool) Info() (capacity, heap, alloc, overhead int64) {
	alloc = (pool.n_allocs - pool.n_frees) * malloc.Blocksize
	return alloc, alloc, alloc, 0
}

// Stats implement api.Mallocer{} interface.
func (pool *runtimepool) Stats() map[string]interface{} {
	return map[string]interface{}{
		"n_allocs": pool.n_allocs,
		"n_frees":  pool.n_frees,
	}
}
