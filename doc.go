// Package cacheprobe empirically detects a CPU's memory-hierarchy
// geometry: the cache line size and the capacities of the L1, L2, and L3
// (or last-level) caches, inferred purely from timing synthetic memory
// access patterns.
//
// The probe needs nothing from the operating system beyond a monotonic
// clock. It times strided read-modify-write traversals over working sets
// of doubling sizes and reads the hardware boundaries off the jumps in
// the timing curve: a stride crossing the line size stops sharing cache
// lines between touches, and a working set crossing a capacity stops
// fitting, and both show up as a step in elapsed time.
//
// Detection is deliberately single-threaded. The measurement signal is
// the state of the caches under test, and concurrent sweeps would evict
// each other's working sets.
//
// For hosts that do expose their geometry, the hwid subpackage queries
// CPUID, sysctl, or sysfs directly; the timing probe stands alone when no
// such source exists and serves as a cross-check when one does.
package cacheprobe
