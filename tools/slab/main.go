package main

import "flag"
import "fmt"
import "sync"
import "time"
import "unsafe"

import humanize "github.com/dustin/go-humanize"

import "github.com/bnclabs/slaballoc/api"
import "github.com/bnclabs/slaballoc/malloc"

var _ api.Mallocer = (*malloc.Cache)(nil)
var _ api.Mallocer = (*runtimepool)(nil)

var options struct {
	workers int
	allocs  int
	mode    string
}

func argParse() {
	setts := Defaultsettings()
	flag.IntVar(&options.workers, "workers", int(setts.Int64("workers")),
		"number of concurrent workers")
	flag.IntVar(&options.allocs, "allocs", int(setts.Int64("allocs")),
		"allocations per worker")
	flag.StringVar(&options.mode, "mode", setts.String("mode"),
		"runtime | slab | both")
	flag.Parse()
}

func main() {
	argParse()

	total, _, free := getsysmem()
	fmt.Printf("sysmem: total %v, free %v\n",
		humanize.Bytes(total), humanize.Bytes(free))
	fmt.Printf("workers: %v\nallocations per worker: %v\n\n",
		options.workers, options.allocs)

	var rtelapsed, slabelapsed time.Duration
	if options.mode == "runtime" || options.mode == "both" {
		rtelapsed = benchruntime()
		report("runtime", rtelapsed)
	}
	if options.mode == "slab" || options.mode == "both" {
		slabelapsed = benchslab()
		report("slab", slabelapsed)
	}
	if options.mode == "both" {
		fmt.Printf("speedup: %.2fx\n", float64(rtelapsed)/float64(slabelapsed))
	}
}

// one worker's workload: fill, drain in reverse, then paired
// alloc/free to exercise the steady state.
func workload(pool api.Mallocer) {
	ptrs := make([]unsafe.Pointer, options.allocs)
	for i := range ptrs {
		ptr, ok := pool.Alloc()
		if !ok {
			panic(malloc.ErrorOutofmemory)
		}
		ptrs[i] = ptr
	}
	for i := len(ptrs) - 1; i >= 0; i-- {
		pool.Free(ptrs[i])
	}
	for i := 0; i < len(ptrs); i++ {
		ptr, ok := pool.Alloc()
		if !ok {
			panic(malloc.ErrorOutofmemory)
		}
		pool.Free(ptr)
	}
}

func benchslab() time.Duration {
	start := time.Now()
	malloc.Workers(options.workers, func(id int, tc *malloc.Cache) {
		workload(tc)
		tc.Validate()
	})
	return time.Since(start)
}

func benchruntime() time.Duration {
	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(options.workers)
	for i := 0; i < options.workers; i++ {
		go func() {
			defer wg.Done()
			pool := newruntimepool()
			defer pool.Release()
			workload(pool)
		}()
	}
	wg.Wait()
	return time.Since(start)
}

func report(mode string, elapsed time.Duration) {
	ops := int64(options.workers) * int64(options.allocs) * 2
	nsop := float64(elapsed.Nanoseconds()) / float64(ops)
	fmt.Printf("%-8v %10v %8.1f ns/op\n", mode+":", elapsed, nsop)
}
