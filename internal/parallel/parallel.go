// Package parallel provides a bounded fan-out helper for loops over
// independent units of work, such as the per-entry loops of the acquisition
// transforms.
package parallel

import (
	"runtime"
	"sync"
)

// ForEach runs fn(i) for every i in [0, n), using at most workers
// goroutines. A workers value below 1 selects runtime.NumCPU(). ForEach
// returns once every call has completed.
//
// fn must not touch state shared between iterations without its own
// synchronization; the intended use is loops where iteration i owns the
// i-th element of a pre-allocated result slice.
func ForEach(workers, n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		indices <- i
	}
	close(indices)
	wg.Wait()
}
