package utils

import (
	"runtime"
	"sync"

	"go.uber.org/atomic"
)

// MultiThread runs f for every integer in [start, end), spreading the work over
// runtime.NumCPU() * threadsPerCPU goroutines. It blocks until every call has returned.
//
// Each goroutine claims 'opsPerThread' consecutive indexes at a time. f must be safe to call
// concurrently for different indexes; MultiThread itself never calls f twice with the same
// index.
//
// MultiThread assumes end ≥ start. Values of opsPerThread or threadsPerCPU below 1 are
// treated as 1.
func MultiThread(start, end int, f func(int), opsPerThread, threadsPerCPU int) {
	if end <= start {
		return
	}

	if opsPerThread < 1 {
		opsPerThread = 1
	}
	if threadsPerCPU < 1 {
		threadsPerCPU = 1
	}

	numThreads := runtime.NumCPU() * threadsPerCPU
	if chunks := (end - start + opsPerThread - 1) / opsPerThread; chunks < numThreads {
		numThreads = chunks
	}

	// running on a single goroutine needs none of the bookkeeping
	if numThreads == 1 {
		for i := start; i < end; i++ {
			f(i)
		}
		return
	}

	next := atomic.NewInt64(int64(start))

	var wg sync.WaitGroup
	wg.Add(numThreads)
	for thread := 0; thread < numThreads; thread++ {
		go func() {
			defer wg.Done()

			for {
				i := int(next.Add(int64(opsPerThread))) - opsPerThread
				if i >= end {
					return
				}

				e := i + opsPerThread
				if e > end {
					e = end
				}

				for ; i < e; i++ {
					f(i)
				}
			}
		}()
	}

	wg.Wait()
}
