package malloc

import "runtime"
import "sync"

// Workers run count workers concurrently, each pinned to its own OS
// thread with a private Cache, and wait for all of them to return.
// The cache is created before the worker body runs and released when
// it returns, so slab memory follows the thread's lifetime. Workers
// may hand blocks to each other and free them on whichever cache
// receives them.
func Workers(count int, fn func(id int, tc *Cache)) {
	var wg sync.WaitGroup

	wg.Add(count)
	for i := 0; i < count; i++ {
		go func(id int) {
			defer wg.Done()

			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			tc := &Cache{}
			defer tc.Release()
			fn(id, tc)
		}(i)
	}
	wg.Wait()
}
