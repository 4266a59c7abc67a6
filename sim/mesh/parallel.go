package mesh

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum number of x-rows worth splitting across
// workers. Below this, a single goroutine is faster.
const parallelThreshold = 16

// Runner launches element-wise kernels over a box. Each call returns only after
// every cell has been visited, so consecutive calls are separated by a barrier.
type Runner struct {
	workers int
}

// NewRunner returns a Runner with the given worker count; workers <= 0 uses
// GOMAXPROCS.
func NewRunner(workers int) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{workers: workers}
}

// Workers returns the number of goroutines a launch may use.
func (r *Runner) Workers() int { return r.workers }

// ParallelFor calls kernel once for every cell of b. Cells are distributed over
// workers in contiguous (y, z) row chunks; kernel must not write memory another
// cell's invocation reads or writes.
func (r *Runner) ParallelFor(b Box, kernel func(x, y, z int)) {
	if !b.Ok() {
		return
	}
	s := b.Size()
	rows := s[1] * s[2]

	runRows := func(start, end int) {
		for row := start; row < end; row++ {
			y := b.Lo[1] + row%s[1]
			z := b.Lo[2] + row/s[1]
			for x := b.Lo[0]; x <= b.Hi[0]; x++ {
				kernel(x, y, z)
			}
		}
	}

	workers := r.workers
	if workers > rows {
		workers = rows
	}
	if workers <= 1 || rows < parallelThreshold {
		runRows(0, rows)
		return
	}

	chunk := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < rows; start += chunk {
		end := min(start+chunk, rows)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			runRows(start, end)
		}(start, end)
	}
	wg.Wait()
}
