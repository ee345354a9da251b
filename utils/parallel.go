package utils

import (
	"image"
	"runtime"
	"sync"
)

// ParallelFactor is the maximum number of goroutines ParallelForEachPixel starts. Tests may lower
// it.
var ParallelFactor = runtime.GOMAXPROCS(0)

// ParallelForEachPixel calls f once for every [x, y] position inside size. Rows are split into
// ParallelFactor contiguous bands, each visited by its own goroutine. f must only write state owned
// by its own pixel. If f panics in any band, the first panic is re-raised in the caller once every
// band has stopped, so a partially filled result is never returned.
func ParallelForEachPixel(size image.Point, f func(x, y int)) {
	bands := MinInt(ParallelFactor, size.Y)
	if bands <= 1 {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				f(x, y)
			}
		}
		return
	}

	rowsPerBand := (size.Y + bands - 1) / bands
	var (
		waitGroup sync.WaitGroup
		panicOnce sync.Once
		panicked  bool
		recovered interface{}
	)
	for start := 0; start < size.Y; start += rowsPerBand {
		end := MinInt(start+rowsPerBand, size.Y)
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { panicked, recovered = true, r })
				}
			}()
			for y := start; y < end; y++ {
				for x := 0; x < size.X; x++ {
					f(x, y)
				}
			}
		}()
	}
	waitGroup.Wait()
	if panicked {
		panic(recovered)
	}
}
