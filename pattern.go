package cacheprobe

import "fmt"

// traverse touches steps bytes of buf at the given stride, wrapping at the
// buffer length. Each touch is a read-modify-write so the compiler cannot
// eliminate the loop, and the stride supplies controlled irregularity:
// strides below the cache line size revisit a line already loaded, strides
// at or above it pull a fresh line on every touch.
//
// len(buf) must be a power of two smaller than steps; callers validate
// before entry.
//
// See http://igoro.com/archive/gallery-of-processor-cache-effects/
func traverse(buf []byte, stride, steps uint64) {
	lengthMod := uint64(len(buf)) - 1
	for i := uint64(0); i < steps; i++ {
		buf[(i*stride)&lengthMod]++
	}
}

// isPowerOfTwo reports whether n is a non-zero power of two.
func isPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// checkSweepSize validates one working-set size against the traversal
// preconditions. The wrap mask only covers the whole buffer for power-of-two
// sizes, and a size at or above the step count would leave part of the
// buffer untouched.
func checkSweepSize(op string, size, steps uint64) error {
	if !isPowerOfTwo(size) {
		return NewInvalidArgError(op, fmt.Sprintf("working-set size %d is not a power of two", size))
	}
	if size >= steps {
		return NewInvalidArgError(op, fmt.Sprintf("working-set size %d must be below the traversal step count %d", size, steps))
	}
	return nil
}

// checkStride validates a traversal stride against one working-set size.
func checkStride(op string, stride, size uint64) error {
	if stride == 0 {
		return NewInvalidArgError(op, "stride must be positive")
	}
	if stride > size {
		return NewInvalidArgError(op, fmt.Sprintf("stride %d exceeds working-set size %d", stride, size))
	}
	return nil
}
