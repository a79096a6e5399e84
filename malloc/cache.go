// Functions and methods are not thread safe.

package malloc

import "unsafe"

import humanize "github.com/dustin/go-humanize"

// Cache of slabs and recently freed blocks, one per thread of
// execution. The zero value is ready to use; the first Alloc builds
// the first slab. Callers must Release the cache when its thread is
// done, which gives every slab still linked to the cache back to the
// OS.
//
// A Cache must not be shared between concurrently running threads,
// but blocks may cross: a block allocated from one cache can be freed
// through another.
type Cache struct {
	// 64-bit aligned stats
	n_allocs        int64
	n_frees         int64
	n_slabs         int64
	n_refills       int64
	n_spills        int64
	n_adopts        int64
	n_releasedslabs int64

	currentslab  *slab  // slab allocations are currently served from
	partialslabs *slab  // slabs with free blocks, not current
	fastbin      *block // LIFO of recently freed blocks
	fastbincount int64
	released     bool
}

// Blocksize implement api.Mallocer{} interface.
func (tc *Cache) Blocksize() int64 {
	return Blocksize
}

// Alloc implement api.Mallocer{} interface. Get one block, checking
// the fastbin, then the current slab, then the partial list, and as a
// last resort building a fresh slab. Only the last tier calls into
// the OS; it is also the only tier that can fail.
func (tc *Cache) Alloc() (unsafe.Pointer, bool) {
	if tc.released {
		panicerr("cache already released")
	}
	if blk := tc.fastbin; blk != nil {
		tc.fastbin, tc.fastbincount = blk.next, tc.fastbincount-1
		tc.n_allocs++
		return unsafe.Pointer(blk), true
	}
	for {
		if sl := tc.currentslab; sl != nil && sl.freecount > 0 {
			if sl.freecount > Blockcacherefill {
				tc.refill(sl)
			}
			blk := sl.freelist
			sl.freelist, sl.freecount = blk.next, sl.freecount-1
			if sl.freecount == 0 {
				// fully allocated, reachable only through its
				// blocks until a free spills back into it.
				tc.currentslab = nil
			}
			tc.n_allocs++
			return unsafe.Pointer(blk), true
		}
		tc.currentslab = nil
		if sl := tc.partialslabs; sl != nil {
			tc.partialslabs, sl.next = sl.next, nil
			tc.currentslab = sl
			tc.n_adopts++
			continue
		}
		if _, ok := allocateslab(tc); !ok {
			return nil, false
		}
	}
}

// refill move a batch of blocks from the current slab's free list
// into the fastbin, so that the next Blockcacherefill allocations and
// as many frees stay on the fastbin path. The transfer reverses block
// order, which is not observable.
func (tc *Cache) refill(sl *slab) {
	for i := int64(0); i < Blockcacherefill; i++ {
		blk := sl.freelist
		sl.freelist = blk.next
		blk.next, tc.fastbin = tc.fastbin, blk
	}
	sl.freecount -= Blockcacherefill
	tc.fastbincount += Blockcacherefill
	tc.n_refills++
}

// Free implement api.Mallocer{} interface. Give back a block obtained
// from Alloc, on this cache or any other. While the fastbin has room
// the block parks there and no slab is touched. Once the fastbin is
// saturated the owning slab is recovered from the block address and
// the block rejoins its free list; a slab coming back from fully
// allocated is adopted onto this cache's partial list.
func (tc *Cache) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		panicerr("free nil pointer")
	} else if tc.released {
		panicerr("cache already released")
	}
	tc.n_frees++
	blk := (*block)(ptr)
	if tc.fastbincount < Blockcachelimit {
		blk.next, tc.fastbin = tc.fastbin, blk
		tc.fastbincount++
		return
	}
	sl := slabof(ptr)
	blk.next, sl.freelist = sl.freelist, blk
	sl.freecount++
	tc.n_spills++
	if sl.freecount == 1 && sl != tc.currentslab {
		sl.next = tc.partialslabs
		tc.partialslabs = sl
	}
}

// Release implement api.Mallocer{} interface. Give every slab linked
// to this cache back to the OS. Blocks parked in the fastbin go with
// their slabs; blocks of slabs that migrated to another cache's
// partial list remain valid and are that cache's to release.
func (tc *Cache) Release() {
	if tc.released {
		panicerr("cache already released")
	}
	nslabs := int64(0)
	for _, head := range [2]*slab{tc.currentslab, tc.partialslabs} {
		for sl := head; sl != nil; {
			next := sl.next
			freeslab(sl)
			nslabs++
			sl = next
		}
	}
	tc.n_releasedslabs += nslabs
	infof(
		"malloc: released cache %p, slabs:%v heap:%v allocs:%v frees:%v\n",
		tc, nslabs, humanize.Bytes(uint64(nslabs*2*Slabalignment)),
		tc.n_allocs, tc.n_frees)
	tc.currentslab, tc.partialslabs, tc.fastbin = nil, nil, nil
	tc.fastbincount, tc.released = 0, true
}

// Info implement api.Mallocer{} interface. Memory accounting over the
// slabs still linked to this cache. Blocks parked in the fastbin are
// counted as free; in the steady state they belong to linked slabs,
// blocks that crossed caches can skew alloc until they spill back.
func (tc *Cache) Info() (capacity, heap, alloc, overhead int64) {
	nslabs, nfree := int64(0), int64(0)
	for _, head := range [2]*slab{tc.currentslab, tc.partialslabs} {
		for sl := head; sl != nil; sl = sl.next {
			nslabs++
			nfree += sl.freecount
		}
	}
	capacity = nslabs * Effectiveblocks * Blocksize
	heap = nslabs * 2 * Slabalignment
	alloc = capacity - (nfree+tc.fastbincount)*Blocksize
	overhead = heap - capacity
	return
}

// Stats implement api.Mallocer{} interface.
func (tc *Cache) Stats() map[string]interface{} {
	capacity, heap, alloc, overhead := tc.Info()
	return map[string]interface{}{
		"n_allocs":        tc.n_allocs,
		"n_frees":         tc.n_frees,
		"n_slabs":         tc.n_slabs,
		"n_refills":       tc.n_refills,
		"n_spills":        tc.n_spills,
		"n_adopts":        tc.n_adopts,
		"n_releasedslabs": tc.n_releasedslabs,
		"fastbin_count":   tc.fastbincount,
		"capacity":        capacity,
		"heap":            heap,
		"alloc":           alloc,
		"overhead":        overhead,
	}
}

// Validate the cache against its invariants, panic on violation.
// Walks every linked slab and the fastbin; meant for tests and
// quiescent points, not hot paths.
func (tc *Cache) Validate() {
	seen := map[*slab]bool{}
	for _, head := range [2]*slab{tc.currentslab, tc.partialslabs} {
		for sl := head; sl != nil; sl = sl.next {
			if seen[sl] {
				panicerr("validate: slab %p linked twice", sl)
			}
			seen[sl] = true
			if n := sl.contentoflist(); n != sl.freecount {
				fmsg := "validate: freecount %v != free list length %v"
				panicerr(fmsg, sl.freecount, n)
			}
			if sl.freecount < 0 || sl.freecount > Effectiveblocks {
				panicerr("validate: freecount %v out of range", sl.freecount)
			}
			if slabof(unsafe.Pointer(sl)) != sl {
				panicerr("validate: slab %p lost its region word", sl)
			}
		}
	}
	if tc.fastbincount > Blockcachelimit {
		fmsg := "validate: fastbin count %v exceeds %v"
		panicerr(fmsg, tc.fastbincount, Blockcachelimit)
	}
	count := int64(0)
	for blk := tc.fastbin; blk != nil; blk = blk.next {
		count++
	}
	if count != tc.fastbincount {
		panicerr("validate: fastbin count %v != length %v", tc.fastbincount, count)
	}
}
