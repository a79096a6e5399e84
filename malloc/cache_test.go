package malloc

import "testing"
import "unsafe"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func TestCacherefill(t *testing.T) {
	tc := &Cache{}
	defer tc.Release()

	ptrs := make([]unsafe.Pointer, 0, 33)

	// first allocation builds the slab and batch-moves a refill's
	// worth of blocks into the fastbin, serving the request from the
	// slab free list.
	ptr, ok := tc.Alloc()
	require.True(t, ok)
	ptrs = append(ptrs, ptr)
	assert.Equal(t, int64(1), tc.n_slabs)
	assert.Equal(t, int64(1), tc.n_refills)
	assert.Equal(t, Blockcacherefill, tc.fastbincount)
	assert.Equal(t, Effectiveblocks-Blockcacherefill-1, tc.currentslab.freecount)

	// the next 31 pops drain the fastbin down to one block.
	for i := 0; i < 31; i++ {
		ptr, ok = tc.Alloc()
		require.True(t, ok)
		ptrs = append(ptrs, ptr)
	}
	assert.Equal(t, int64(1), tc.fastbincount)
	assert.Equal(t, int64(1), tc.n_refills)

	// the 33rd pops the last fastbin entry without touching the slab.
	ptr, ok = tc.Alloc()
	require.True(t, ok)
	ptrs = append(ptrs, ptr)
	assert.Equal(t, int64(0), tc.fastbincount)
	assert.Equal(t, Effectiveblocks-33, tc.currentslab.freecount)

	uniq := map[unsafe.Pointer]bool{}
	for _, ptr := range ptrs {
		assert.False(t, uniq[ptr], "duplicate %p", ptr)
		uniq[ptr] = true
	}
	tc.Validate()
}

func TestFastbinsaturation(t *testing.T) {
	tc := &Cache{}
	defer tc.Release()

	ptrs := make([]unsafe.Pointer, 65)
	for i := range ptrs {
		ptr, ok := tc.Alloc()
		require.True(t, ok)
		ptrs[i] = ptr
	}
	assert.Equal(t, int64(1), tc.fastbincount)
	assert.Equal(t, int64(957), tc.currentslab.freecount)

	// pushes park on the fastbin until it saturates.
	for _, ptr := range ptrs[:63] {
		tc.Free(ptr)
	}
	assert.Equal(t, Blockcachelimit, tc.fastbincount)
	assert.Equal(t, int64(957), tc.currentslab.freecount)
	assert.Equal(t, int64(0), tc.n_spills)

	// saturated: the block goes home to its slab, recovered from the
	// address alone.
	tc.Free(ptrs[63])
	assert.Equal(t, Blockcachelimit, tc.fastbincount)
	assert.Equal(t, int64(958), tc.currentslab.freecount)
	assert.Equal(t, int64(1), tc.n_spills)
	assert.Equal(t, unsafe.Pointer(tc.currentslab.freelist), ptrs[63])

	tc.Free(ptrs[64])
	assert.Equal(t, int64(959), tc.currentslab.freecount)
	tc.Validate()
}

func TestPartialadoption(t *testing.T) {
	tc := &Cache{}

	// exhaust the first slab so it falls off the cache.
	ptrs := make([]unsafe.Pointer, Effectiveblocks)
	for i := range ptrs {
		ptr, ok := tc.Alloc()
		require.True(t, ok)
		ptrs[i] = ptr
	}
	first := slabof(ptrs[0])
	require.Nil(t, tc.currentslab)

	// saturate the fastbin with blocks from a second slab.
	more := make([]unsafe.Pointer, Blockcachelimit)
	for i := range more {
		ptr, ok := tc.Alloc()
		require.True(t, ok)
		more[i] = ptr
	}
	second := tc.currentslab
	require.NotNil(t, second)
	for _, ptr := range more {
		tc.Free(ptr)
	}
	assert.Equal(t, Blockcachelimit, tc.fastbincount)
	// spills into the current slab do not relist it.
	assert.Nil(t, tc.partialslabs)

	// first spill into the dropped slab adopts it as a partial.
	tc.Free(ptrs[0])
	assert.Equal(t, first, tc.partialslabs)
	assert.Equal(t, int64(1), first.freecount)

	for _, ptr := range ptrs[1:] {
		tc.Free(ptr)
	}
	assert.Equal(t, Effectiveblocks, first.freecount)
	tc.Validate()

	assert.Equal(t, int64(2), tc.n_slabs)
	tc.Release()
	assert.Equal(t, int64(2), tc.n_releasedslabs)
}

func TestCrosscachefree(t *testing.T) {
	tca, tcb := &Cache{}, &Cache{}

	ptr, ok := tca.Alloc()
	require.True(t, ok)
	freecount := tca.currentslab.freecount

	// the block migrates to the freeing cache's fastbin; the owning
	// slab is untouched.
	tcb.Free(ptr)
	assert.Equal(t, int64(1), tcb.fastbincount)
	assert.Equal(t, freecount, tca.currentslab.freecount)
	assert.Equal(t, int64(0), tcb.n_slabs)

	tca.Validate()
	tcb.Validate()
	tca.Release()
	tcb.Release()
}

func TestRoundtrip(t *testing.T) {
	tc := &Cache{}
	defer tc.Release()

	ptr, ok := tc.Alloc()
	require.True(t, ok)
	fastbincount, freecount := tc.fastbincount, tc.currentslab.freecount

	tc.Free(ptr)
	assert.Equal(t, fastbincount+1, tc.fastbincount)

	again, ok := tc.Alloc()
	require.True(t, ok)
	assert.Equal(t, ptr, again)
	assert.Equal(t, fastbincount, tc.fastbincount)
	assert.Equal(t, freecount, tc.currentslab.freecount)
	tc.Validate()
}

func TestUniqueness(t *testing.T) {
	tc := &Cache{}

	n := 5000
	ptrs := make([]unsafe.Pointer, n)
	uniq := map[unsafe.Pointer]bool{}
	for i := range ptrs {
		ptr, ok := tc.Alloc()
		require.True(t, ok)
		require.False(t, uniq[ptr], "duplicate %p", ptr)
		uniq[ptr] = true
		ptrs[i] = ptr
		fillblock(ptr, byte(i%251))
	}
	for i, ptr := range ptrs {
		require.True(t, checkblock(ptr, byte(i%251)), "block %v corrupted", i)
	}
	for i := n - 1; i >= 0; i-- {
		tc.Free(ptrs[i])
	}
	tc.Validate()

	assert.Equal(t, int64(5), tc.n_slabs)
	tc.Release()
	assert.Equal(t, int64(5), tc.n_releasedslabs)
}

func TestSteadystate(t *testing.T) {
	tc := &Cache{}
	defer tc.Release()

	// fill and drain in reverse.
	n := 10000
	ptrs := make([]unsafe.Pointer, n)
	for i := range ptrs {
		ptr, ok := tc.Alloc()
		require.True(t, ok)
		ptrs[i] = ptr
	}
	for i := n - 1; i >= 0; i-- {
		tc.Free(ptrs[i])
	}
	tc.Validate()

	// paired alloc/free stays on the fastbin: no new slabs, no
	// refills, no spills.
	nslabs, nrefills, nspills := tc.n_slabs, tc.n_refills, tc.n_spills
	for i := 0; i < n; i++ {
		ptr, ok := tc.Alloc()
		require.True(t, ok)
		tc.Free(ptr)
	}
	assert.Equal(t, nslabs, tc.n_slabs)
	assert.Equal(t, nrefills, tc.n_refills)
	assert.Equal(t, nspills, tc.n_spills)
	tc.Validate()
}

func TestCachereleased(t *testing.T) {
	tc := &Cache{}
	ptr, ok := tc.Alloc()
	require.True(t, ok)
	tc.Release()

	// panic cases
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		tc.Alloc()
	}()
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		tc.Free(ptr)
	}()
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		tc.Release()
	}()
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		tc = &Cache{}
		defer tc.Release()
		tc.Free(nil)
	}()
}

func TestCachestats(t *testing.T) {
	tc := &Cache{}
	defer tc.Release()

	for i := 0; i < 100; i++ {
		_, ok := tc.Alloc()
		require.True(t, ok)
	}
	capacity, heap, alloc, overhead := tc.Info()
	assert.Equal(t, Effectiveblocks*Blocksize, capacity)
	assert.Equal(t, 2*Slabalignment, heap)
	assert.Equal(t, int64(100)*Blocksize, alloc)
	assert.Equal(t, heap-capacity, overhead)

	stats := tc.Stats()
	assert.Equal(t, int64(100), stats["n_allocs"])
	assert.Equal(t, int64(0), stats["n_frees"])
	assert.Equal(t, int64(1), stats["n_slabs"])
}
