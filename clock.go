package cacheprobe

import "time"

// Clock is the monotonic time source bracketing each traversal. The
// production clock reads time.Now, which carries Go's monotonic reading;
// tests substitute scripted clocks to feed the estimators synthetic
// timings without touching real hardware.
type Clock interface {
	Now() time.Time
}

// systemClock reads the host's monotonic clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// harness times pattern traversals over caller-owned buffers. It never
// allocates or performs I/O inside the timed window.
type harness struct {
	clock Clock
	steps uint64
}

// measure runs one traversal of buf at the given stride and returns its
// elapsed wall time. Zero and negative results are legal at clock
// resolution limits; downstream heuristics tolerate them.
func (h harness) measure(buf []byte, stride uint64) time.Duration {
	start := h.clock.Now()
	traverse(buf, stride, h.steps)
	return h.clock.Now().Sub(start)
}

// measureWarm discards warmups traversals, then records one. The discarded
// runs prime the working set so first-touch page faults and cold-start
// costs are not charged to the kept sample.
func (h harness) measureWarm(buf []byte, stride uint64, warmups int) time.Duration {
	for i := 0; i < warmups; i++ {
		h.measure(buf, stride)
	}
	return h.measure(buf, stride)
}
