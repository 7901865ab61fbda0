package cacheprobe

import "time"

// Boundary heuristics over ordered timing samples. Sample order follows
// the sweep's doubling parameter, so an adjacent delta marks the cost of
// one doubling and a "jump" marks a cache boundary. Each heuristic is a
// pure function over the sample slice, independently testable without
// touching hardware.

// maxDeltaIndex returns the index ending the largest adjacent delta, the
// first occurrence winning ties, or -1 when fewer than two samples exist.
// The winning delta may be negative on flat or noisy data.
func maxDeltaIndex(samples []time.Duration) int {
	if len(samples) < 2 {
		return -1
	}
	best := 1
	bestDelta := samples[1] - samples[0]
	for i := 2; i < len(samples); i++ {
		if d := samples[i] - samples[i-1]; d > bestDelta {
			best, bestDelta = i, d
		}
	}
	return best
}

// maxPositiveDeltaIndex is maxDeltaIndex restricted to samples that
// actually grow; it returns -1 when no adjacent delta is positive.
func maxPositiveDeltaIndex(samples []time.Duration) int {
	best := -1
	var bestDelta time.Duration
	for i := 1; i < len(samples); i++ {
		if d := samples[i] - samples[i-1]; d > bestDelta {
			best, bestDelta = i, d
		}
	}
	return best
}

// firstOverBaselineIndex returns the first index whose sample exceeds the
// sweep's first sample by more than the given ratio, or -1. A baseline at
// or below zero never matches, since clock-resolution zeros carry no
// scale to compare against.
func firstOverBaselineIndex(samples []time.Duration, ratio float64) int {
	if len(samples) < 2 || samples[0] <= 0 {
		return -1
	}
	limit := float64(samples[0]) * ratio
	for i := 1; i < len(samples); i++ {
		if float64(samples[i]) > limit {
			return i
		}
	}
	return -1
}

// sizeBeforeJump maps a jump index back onto the doubling sweep that
// produced the samples: the parameter one doubling before the jump, the
// largest value that still fit. jump must be at least 1.
func sizeBeforeJump(minSize uint64, jump int) uint64 {
	return minSize << (jump - 1)
}
