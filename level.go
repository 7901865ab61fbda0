package cacheprobe

import (
	"fmt"
	"math/bits"
	"time"
)

// levelSweep records one warmed sample per working-set size, minSize
// through maxSize inclusive, doubling between steps. Each step's buffer
// is acquired immediately before its measurements and released before the
// next step, so no working set outlives its own sample.
func levelSweep(alloc Allocator, h harness, minSize, maxSize, stride uint64) ([]time.Duration, error) {
	samples := make([]time.Duration, 0, bits.Len64(maxSize/minSize))
	for size := minSize; ; size *= 2 {
		buf, err := alloc.Acquire(size)
		if err != nil {
			return nil, NewAllocError("DetectLevel",
				fmt.Sprintf("acquiring %d byte working set", size), err)
		}
		samples = append(samples, h.measureWarm(buf, stride, LevelWarmups))
		alloc.Release(buf)

		if size > maxSize/2 {
			break
		}
	}
	return samples, nil
}

// levelFromSamples applies the capacity heuristics in priority order: the
// largest positive adjacent delta, then the first sample beyond the
// baseline threshold, then half the window as a last resort. The jump
// happens when the working set stops fitting, so the reported capacity is
// the size one doubling earlier.
func levelFromSamples(samples []time.Duration, minSize, maxSize uint64) uint64 {
	if jump := maxPositiveDeltaIndex(samples); jump > 0 {
		return sizeBeforeJump(minSize, jump)
	}
	if jump := firstOverBaselineIndex(samples, BaselineJumpRatio); jump > 0 {
		return sizeBeforeJump(minSize, jump)
	}
	return maxSize / 2
}
