package cacheprobe

import (
	"fmt"
	"math/bits"
	"time"
)

// LineStrategy selects how the cache-line size is measured.
type LineStrategy int

const (
	// LineFixedStride probes one large buffer at a handful of doubling
	// strides and reads the line size off the stride pair with the
	// largest timing jump. The default.
	LineFixedStride LineStrategy = iota

	// LineGrowthSweep grows the buffer and the stride together from one
	// byte and reads the line size off the alignment one doubling before
	// the largest jump.
	LineGrowthSweep
)

// String returns the strategy name as used by CLI flags.
func (s LineStrategy) String() string {
	switch s {
	case LineFixedStride:
		return "fixed-stride"
	case LineGrowthSweep:
		return "growth-sweep"
	default:
		return "unknown"
	}
}

// lineEstimator is the common contract of the two strategies.
type lineEstimator interface {
	estimate(alloc Allocator, h harness) (uint64, error)
}

// lineStrides are the candidates probed by the fixed-stride strategy.
// Powers of two spanning the line sizes real hardware ships.
var lineStrides = [...]uint64{32, 64, 128, 256}

// fixedStrideLine measures one probeSize buffer at each candidate stride.
// Below the line size, consecutive touches land on a line already loaded;
// at and above it, every touch pulls a fresh line, so the largest positive
// delta between adjacent candidates brackets the boundary and the smaller
// stride of that pair is the estimate.
type fixedStrideLine struct {
	probeSize uint64
}

func (f fixedStrideLine) estimate(alloc Allocator, h harness) (uint64, error) {
	buf, err := alloc.Acquire(f.probeSize)
	if err != nil {
		// Degraded mode: without a probe buffer the line size cannot be
		// measured, so report the common size instead of failing the run.
		return DefaultLineSize, nil
	}
	defer alloc.Release(buf)

	var samples [len(lineStrides)]time.Duration
	for i, stride := range lineStrides {
		samples[i] = h.measureWarm(buf, stride, LineWarmups)
	}

	jump := maxPositiveDeltaIndex(samples[:])
	if jump < 1 {
		return DefaultLineSize, nil
	}
	return lineStrides[jump-1], nil
}

// growthSweepLine doubles an alignment from one byte through maxAlignment,
// allocating a buffer of exactly that size each step and traversing it
// with stride equal to the alignment. The estimate is the alignment one
// doubling before the largest delta.
type growthSweepLine struct {
	maxAlignment uint64
}

func (g growthSweepLine) estimate(alloc Allocator, h harness) (uint64, error) {
	const op = "CacheLine"

	samples := make([]time.Duration, 0, bits.Len64(g.maxAlignment))
	for alignment := uint64(1); ; alignment *= 2 {
		buf, err := alloc.Acquire(alignment)
		if err != nil {
			// A skipped point would corrupt the ordered-delta scan, so
			// the sweep aborts instead of recording a gap.
			return 0, NewAllocError(op,
				fmt.Sprintf("acquiring %d byte sweep buffer", alignment), err)
		}
		samples = append(samples, h.measure(buf, alignment))
		alloc.Release(buf)

		if alignment > g.maxAlignment/2 {
			break
		}
	}

	jump := maxDeltaIndex(samples)
	if jump < 1 {
		return 0, NewInvalidArgError(op, "sweep produced fewer than two samples")
	}
	return uint64(1) << (jump - 1), nil
}
