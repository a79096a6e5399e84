// Package malloc supplies a thread-cached slab allocator for fixed
// size memory blocks, with a limited scope:
//
//  * Each Cache is owned by a single thread of execution; Types and
//    Functions exported by this package are not thread safe unless
//    noted otherwise.
//  * Blocks are exactly Blocksize bytes; there is no variable sized
//    allocation and no realloc.
//  * Memory is allocated from the OS in slabs of Blockcount block
//    slots, aligned to their own size so that any block address can
//    be masked back to its owning slab.
//  * Once a slab is allocated from the OS it is not automatically
//    given back. Slabs are freed only when the owning Cache is
//    Released.
//  * Slab memory lives on the C heap; the Go collector never scans
//    or moves it.
//
// The steady state hot paths touch only memory local to the calling
// thread's Cache: allocations come from a short LIFO of recently
// freed blocks (the fastbin), refilled in batches from the cache's
// current slab, and frees push back onto the fastbin until it
// saturates. Only slab construction and Release call into the OS.
//
// A block allocated through one Cache may be freed through another.
// When such a free spills out of the fastbin, the owning slab is
// recovered from the block address and, if it was fully allocated
// until then, the freeing Cache adopts it onto its partial list.
package malloc
