package cacheprobe

import (
	"runtime"
	"time"
)

// EvictCaches walks a throwaway working set to displace the cache
// hierarchy's current contents, so the next probe starts from a cold
// state instead of inheriting whatever the process touched last. A zero
// size walks DefaultEvictSize. Returns the time the walk took.
func EvictCaches(size uint64) time.Duration {
	if size == 0 {
		size = DefaultEvictSize
	}
	buf := make([]byte, size)

	start := time.Now()
	evict(buf)
	elapsed := time.Since(start)

	// Return the walked pages before the caller's own allocations.
	runtime.GC()
	return elapsed
}

// evict touches one byte per line, twice with different values so the
// second pass cannot be satisfied from a write-allocate of the first.
func evict(buf []byte) {
	for i := 0; i < len(buf); i += DefaultLineSize {
		buf[i] = byte(i % 256)
	}
	for i := 0; i < len(buf); i += DefaultLineSize {
		buf[i] = byte((i * 7) % 256)
	}
}
