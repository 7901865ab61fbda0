package cacheprobe

// Allocator provides the working buffers traversed during measurement.
// Each buffer has exactly one owner for its lifetime: the estimator call
// that acquired it, which must release it before acquiring the next.
// Implementations must not pool or reuse released memory for later
// acquisitions, since a recycled buffer arrives with its pages warm and
// biases the cold-start portion of the next sample.
type Allocator interface {
	// Acquire returns a zeroed buffer of exactly size bytes, or an error
	// if the allocation cannot be satisfied.
	Acquire(size uint64) ([]byte, error)

	// Release returns a buffer obtained from Acquire. The caller must not
	// touch the buffer afterward.
	Release(buf []byte)
}

// heapAllocator backs working sets with ordinary garbage-collected
// allocations, capped so a runaway sweep bound reports allocation failure
// instead of swapping the host.
type heapAllocator struct {
	limit uint64 // max bytes per acquisition, 0 means uncapped
}

func newHeapAllocator(limit uint64) *heapAllocator {
	return &heapAllocator{limit: limit}
}

func (a *heapAllocator) Acquire(size uint64) ([]byte, error) {
	if size == 0 {
		return nil, ErrInvalidSize
	}
	if a.limit > 0 && size > a.limit {
		return nil, ErrAllocLimit
	}
	return make([]byte, size), nil
}

func (a *heapAllocator) Release(buf []byte) {
	// Nothing to do: dropping the reference unpins the pages for the
	// collector. Deliberately no free list.
}
