package malloc

import "unsafe"

// Blocksize fixed size of every allocatable block.
const Blocksize = int64(64)

// Blockcount number of block slots in a slab region, header included.
const Blockcount = int64(1024)

// Blockcachelimit maximum number of blocks parked in a cache fastbin.
const Blockcachelimit = int64(64)

// Blockcacherefill number of blocks moved from the current slab into
// the fastbin by a single batched refill.
const Blockcacherefill = int64(32)

// Slabalignment size, and alignment, of every slab region. Masking a
// block address with ^(Slabalignment-1) yields its region base.
const Slabalignment = Blocksize * Blockcount

// Slaboverhead number of leading block slots occupied by the slab
// header.
const Slaboverhead = (int64(unsafe.Sizeof(slab{})) + Blocksize - 1) / Blocksize

// Effectiveblocks number of allocatable blocks in every slab.
const Effectiveblocks = Blockcount - Slaboverhead
