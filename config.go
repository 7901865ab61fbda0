// Package cacheprobe configuration constants
package cacheprobe

// Traversal parameters
const (
	// DefaultSteps is the number of strided touches per timed traversal.
	// Large enough that miss latency dominates once a working set spills
	// out of cache, and that several full passes cover every buffer the
	// sweeps allocate. Wall-clock cost of every sample scales linearly
	// with this value.
	DefaultSteps = 128 * 1024 * 1024 // 128Mi touches

	// Warm-up traversals discarded before the recorded measurement
	LineWarmups  = 1
	LevelWarmups = 2
)

// Cache-line probing parameters
const (
	// DefaultLineSize is the degraded-mode line estimate (common on
	// x86-64 and most ARM cores)
	DefaultLineSize = 64

	// DefaultLineProbeSize is the buffer used by the fixed-stride strategy
	DefaultLineProbeSize = 1024 * 1024 // 1MB

	// DefaultLineSweepMax bounds the growth-sweep strategy's alignment
	DefaultLineSweepMax = 1024 * 1024 // 1MB
)

// Capacity detection windows (in bytes)
const (
	// L1 window covers typical per-core L1D sizes, including M1 P-cores
	L1WindowMin = 16 * 1024         // 16KB
	L1WindowMax = 512 * 1024        // 512KB

	// L2 window covers per-core and shared L2 designs
	L2WindowMin = 256 * 1024        // 256KB
	L2WindowMax = 16 * 1024 * 1024  // 16MB

	// L3 window covers L3 and system-level caches on unified designs
	L3WindowMin = 4 * 1024 * 1024   // 4MB
	L3WindowMax = 64 * 1024 * 1024  // 64MB
)

// Detection tuning parameters
const (
	// BaselineJumpRatio is the secondary capacity heuristic's threshold:
	// the first sample exceeding the sweep's baseline by this factor marks
	// the boundary when no adjacent delta is positive
	BaselineJumpRatio = 1.5
)

// Allocation parameters
const (
	// DefaultAllocLimit caps a single working-set allocation. Requests
	// above it report allocation failure instead of swapping the host.
	DefaultAllocLimit = 1024 * 1024 * 1024 // 1GB

	// DefaultEvictSize is the working set EvictCaches walks when the
	// caller does not size it. Large enough to displace the biggest L3
	// in the default detection windows.
	DefaultEvictSize = 64 * 1024 * 1024 // 64MB
)
