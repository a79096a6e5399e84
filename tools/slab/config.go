package main

import s "github.com/bnclabs/gosettings"
import "github.com/cloudfoundry/gosigar"

import "github.com/bnclabs/slaballoc/malloc"

// Defaultsettings for the benchmark, sized so that the payload of the
// default workload, Blocksize bytes per allocation across all workers,
// stays within half of free system memory. Slab backing and the
// pointer arrays of the workload are not counted.
func Defaultsettings() s.Settings {
	workers, allocs := int64(16), int64(1000000)
	if _, _, free := getsysmem(); free > 0 {
		if max := int64(free) / 2 / (workers * malloc.Blocksize); max < allocs {
			allocs = max
		}
	}
	return s.Settings{
		"workers": workers,
		"allocs":  allocs,
		"mode":    "both",
	}
}

func getsysmem() (total, used, free uint64) {
	mem := sigar.Mem{}
	mem.Get()
	return mem.Total, mem.Used, mem.Free
}
