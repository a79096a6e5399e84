// Functions and methods are not thread safe.

package malloc

//#include <stdlib.h>
import "C"

import "unsafe"

// block links a free block into its slab free list, or into a cache
// fastbin. While a block is allocated all Blocksize bytes are opaque
// application data and the link is dead.
type block struct {
	next *block
}

// slab header, resident in the leading block slots of its own aligned
// region on the C heap. The first word of the region is the header's
// own address, so the header of any block is a mask and a load away.
type slab struct {
	self      *slab          // word 0 of the region
	mem       unsafe.Pointer // aligned region base
	raw       unsafe.Pointer // unaligned allocation, released as a whole
	freelist  *block         // head of this slab's free chain
	freecount int64          // length of freelist
	next      *slab          // link in the owning cache's current/partial list
}

// allocateslab get a fresh slab from the C heap and install it as the
// cache's current slab. The raw allocation is twice Slabalignment so
// that rounding up to the next aligned address always leaves room for
// the full region.
//
// C.calloc, not C.malloc: cgo aborts the process when C.malloc fails,
// while calloc reports nil and lets the caller surface out-of-memory.
func allocateslab(tc *Cache) (*slab, bool) {
	raw := C.calloc(C.size_t(1), C.size_t(2*Slabalignment))
	if raw == nil {
		return nil, false
	}
	base := (uintptr(raw) + uintptr(Slabalignment) - 1) &^ uintptr(Slabalignment-1)
	sl := (*slab)(unsafe.Pointer(base))
	sl.self = sl
	sl.mem = unsafe.Pointer(base)
	sl.raw = raw

	// calloc already zeroed the region; write over the block array
	// anyway to warm its pages into RAM.
	blocks := base + uintptr(Slaboverhead*Blocksize)
	initblock(blocks, Effectiveblocks*Blocksize)

	// thread the block array into a free list in ascending address
	// order, last block terminating the chain.
	sl.freelist = (*block)(unsafe.Pointer(blocks))
	for i := int64(0); i < Effectiveblocks; i++ {
		addr := blocks + uintptr(i*Blocksize)
		list := (*block)(unsafe.Pointer(addr))
		if i == Effectiveblocks-1 {
			list.next = nil
		} else {
			list.next = (*block)(unsafe.Pointer(addr + uintptr(Blocksize)))
		}
	}
	sl.freecount = Effectiveblocks

	sl.next = tc.currentslab
	tc.currentslab = sl
	tc.n_slabs++
	debugf("malloc: new slab %p for cache %p\n", sl, tc)
	return sl, true
}

// slabof recover the owning slab of a block from its address alone.
func slabof(ptr unsafe.Pointer) *slab {
	base := uintptr(ptr) &^ uintptr(Slabalignment-1)
	return *(**slab)(unsafe.Pointer(base))
}

// freeslab give the backing region back to the C heap. The header
// lives inside the region, so the slab pointer is dead on return.
func freeslab(sl *slab) {
	C.free(sl.raw)
}

func (sl *slab) contentoflist() int64 {
	count := int64(0)
	for blk := sl.freelist; blk != nil; blk = blk.next {
		count++
	}
	return count
}
