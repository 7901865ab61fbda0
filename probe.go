// Package cacheprobe infers CPU cache geometry from timing measurements.
//
// Example usage:
//
//	geom := cacheprobe.Detect()
//	fmt.Printf("line=%dB L1=%dB L2=%dB L3=%dB\n",
//		geom.Line, geom.L1, geom.L2, geom.L3)
//
//	// Or with a custom configuration:
//	p, err := cacheprobe.NewProber(
//		cacheprobe.WithLineStrategy(cacheprobe.LineGrowthSweep),
//		cacheprobe.WithSteps(64*1024*1024),
//	)
//	if err != nil {
//		return err
//	}
//	line, err := p.CacheLine()
package cacheprobe

import (
	"fmt"
	"sync"
)

// Window bounds one cache level's capacity search in bytes. Both bounds
// are inclusive powers of two with Min below Max.
type Window struct {
	Min uint64
	Max uint64
}

// Geometry holds one complete detection result in bytes. A zero level
// means that sweep could not run; zero is never a real capacity.
type Geometry struct {
	L1   uint64 `json:"l1"`   // level-1 data cache capacity
	L2   uint64 `json:"l2"`   // level-2 cache capacity
	L3   uint64 `json:"l3"`   // level-3 or last-level cache capacity
	Line uint64 `json:"line"` // cache-line size
}

// Sizes returns the geometry in fixed batch order: L1, L2, L3, line.
func (g Geometry) Sizes() [4]uint64 {
	return [4]uint64{g.L1, g.L2, g.L3, g.Line}
}

// Prober measures cache geometry from timing alone, without consulting
// any OS hardware descriptor. All measurement runs on the calling
// goroutine: parallel sweeps would contend for the caches under test and
// destroy the signal.
type Prober struct {
	clock Clock
	alloc Allocator
	steps uint64

	strategy      LineStrategy
	lineProbeSize uint64
	lineSweepMax  uint64

	allocLimit uint64

	l1, l2, l3 Window
}

// Option configures a Prober.
type Option func(*Prober)

// WithClock substitutes the time source bracketing each traversal.
// Passing nil keeps the system monotonic clock.
func WithClock(c Clock) Option {
	return func(p *Prober) { p.clock = c }
}

// WithSteps sets the number of touches per timed traversal. More steps
// buy noise immunity at a linear wall-clock cost; every probed buffer
// must stay below this count.
func WithSteps(steps uint64) Option {
	return func(p *Prober) { p.steps = steps }
}

// WithAllocator substitutes the working-set allocator. Passing nil keeps
// the default heap allocator.
func WithAllocator(a Allocator) Option {
	return func(p *Prober) { p.alloc = a }
}

// WithAllocLimit caps single allocations made by the default heap
// allocator, zero meaning uncapped. It has no effect when WithAllocator
// supplies a custom allocator.
func WithAllocLimit(limit uint64) Option {
	return func(p *Prober) { p.allocLimit = limit }
}

// WithLineStrategy selects the cache-line estimation strategy.
func WithLineStrategy(s LineStrategy) Option {
	return func(p *Prober) { p.strategy = s }
}

// WithLineProbeSize sets the buffer size probed by the fixed-stride
// strategy.
func WithLineProbeSize(size uint64) Option {
	return func(p *Prober) { p.lineProbeSize = size }
}

// WithLineSweepMax sets the largest alignment visited by the growth-sweep
// strategy.
func WithLineSweepMax(max uint64) Option {
	return func(p *Prober) { p.lineSweepMax = max }
}

// WithL1Window overrides the level-1 capacity search window.
func WithL1Window(w Window) Option {
	return func(p *Prober) { p.l1 = w }
}

// WithL2Window overrides the level-2 capacity search window.
func WithL2Window(w Window) Option {
	return func(p *Prober) { p.l2 = w }
}

// WithL3Window overrides the level-3 capacity search window.
func WithL3Window(w Window) Option {
	return func(p *Prober) { p.l3 = w }
}

// NewProber builds a Prober from the default configuration and the given
// options, validating the result. The defaults probe the typical
// windows: 16KB-512KB for L1, 256KB-16MB for L2, 4MB-64MB for L3.
func NewProber(opts ...Option) (*Prober, error) {
	p := &Prober{
		steps:         DefaultSteps,
		strategy:      LineFixedStride,
		lineProbeSize: DefaultLineProbeSize,
		lineSweepMax:  DefaultLineSweepMax,
		allocLimit:    DefaultAllocLimit,
		l1:            Window{Min: L1WindowMin, Max: L1WindowMax},
		l2:            Window{Min: L2WindowMin, Max: L2WindowMax},
		l3:            Window{Min: L3WindowMin, Max: L3WindowMax},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.clock == nil {
		p.clock = systemClock{}
	}
	if p.alloc == nil {
		p.alloc = newHeapAllocator(p.allocLimit)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Prober) validate() error {
	const op = "NewProber"
	if p.steps == 0 {
		return NewInvalidArgError(op, "steps must be positive")
	}
	// Only the active strategy's parameters constrain the configuration.
	switch p.strategy {
	case LineFixedStride:
		if err := checkSweepSize(op, p.lineProbeSize, p.steps); err != nil {
			return err
		}
		if err := checkStride(op, lineStrides[len(lineStrides)-1], p.lineProbeSize); err != nil {
			return err
		}
	case LineGrowthSweep:
		if p.lineSweepMax < 2 {
			return NewInvalidArgError(op,
				fmt.Sprintf("line sweep bound %d leaves fewer than two sweep points", p.lineSweepMax))
		}
		if err := checkSweepSize(op, p.lineSweepMax, p.steps); err != nil {
			return err
		}
	default:
		return NewInvalidArgError(op, fmt.Sprintf("unknown line strategy %d", p.strategy))
	}
	for _, w := range []struct {
		name string
		w    Window
	}{
		{"L1", p.l1},
		{"L2", p.l2},
		{"L3", p.l3},
	} {
		if err := checkWindow(op, w.name, w.w, p.steps); err != nil {
			return err
		}
	}
	return nil
}

// checkWindow validates one capacity search window against the geometric
// sweep's assumptions.
func checkWindow(op, name string, w Window, steps uint64) error {
	if !isPowerOfTwo(w.Min) || !isPowerOfTwo(w.Max) {
		return NewInvalidArgError(op,
			fmt.Sprintf("%s window bounds %d..%d must be powers of two", name, w.Min, w.Max))
	}
	if w.Min >= w.Max {
		return NewInvalidArgError(op,
			fmt.Sprintf("%s window %d..%d is inverted or empty", name, w.Min, w.Max))
	}
	if err := checkSweepSize(op, w.Max, steps); err != nil {
		return err
	}
	return nil
}

func (p *Prober) harness() harness {
	return harness{clock: p.clock, steps: p.steps}
}

func (p *Prober) line() lineEstimator {
	if p.strategy == LineGrowthSweep {
		return growthSweepLine{maxAlignment: p.lineSweepMax}
	}
	return fixedStrideLine{probeSize: p.lineProbeSize}
}

// CacheLine measures the cache-line size in bytes with the configured
// strategy. The fixed-stride strategy degrades to DefaultLineSize rather
// than erroring; the growth-sweep strategy reports allocation failures.
func (p *Prober) CacheLine() (uint64, error) {
	return p.line().estimate(p.alloc, p.harness())
}

// DetectLevel sweeps working-set sizes from minSize through maxSize,
// doubling each step with the given traversal stride, and reports the
// capacity of the cache boundary inside that window. Flat or noisy
// timings fall back through the documented heuristics, never an error;
// allocation failure reports zero alongside the error.
func (p *Prober) DetectLevel(minSize, maxSize, stride uint64) (uint64, error) {
	const op = "DetectLevel"
	if err := checkWindow(op, "detection", Window{Min: minSize, Max: maxSize}, p.steps); err != nil {
		return 0, err
	}
	if err := checkStride(op, stride, minSize); err != nil {
		return 0, err
	}
	samples, err := levelSweep(p.alloc, p.harness(), minSize, maxSize, stride)
	if err != nil {
		return 0, err
	}
	return levelFromSamples(samples, minSize, maxSize), nil
}

// lineOrDefault resolves the stride used by the level sweeps: the
// measured line size when the estimator succeeds, DefaultLineSize when it
// cannot run, so a capacity sweep always has a usable stride.
func (p *Prober) lineOrDefault() uint64 {
	line, err := p.CacheLine()
	if err != nil || line == 0 {
		return DefaultLineSize
	}
	return line
}

func (p *Prober) levelWith(w Window, stride uint64) uint64 {
	size, err := p.DetectLevel(w.Min, w.Max, stride)
	if err != nil {
		return 0
	}
	return size
}

// L1 probes the level-1 window and reports the detected capacity in
// bytes, zero when undetermined.
func (p *Prober) L1() uint64 {
	return p.levelWith(p.l1, p.lineOrDefault())
}

// L2 probes the level-2 window and reports the detected capacity in
// bytes, zero when undetermined.
func (p *Prober) L2() uint64 {
	return p.levelWith(p.l2, p.lineOrDefault())
}

// L3 probes the level-3 window and reports the detected capacity in
// bytes, zero when undetermined. On parts without a discrete L3 this
// lands on the last-level or system cache instead.
func (p *Prober) L3() uint64 {
	return p.levelWith(p.l3, p.lineOrDefault())
}

// Detect runs the whole probe: the line estimator once, then the three
// level windows reusing that line as stride. Detection always completes
// with four values; levels degrade to their documented fallbacks and to
// zero only when a sweep could not allocate.
func (p *Prober) Detect() Geometry {
	line := p.lineOrDefault()
	return Geometry{
		L1:   p.levelWith(p.l1, line),
		L2:   p.levelWith(p.l2, line),
		L3:   p.levelWith(p.l3, line),
		Line: line,
	}
}

// Global default prober
var (
	defaultProber *Prober
	initOnce      sync.Once
)

func init() {
	initOnce.Do(func() {
		// The default configuration always validates.
		defaultProber, _ = NewProber()
	})
}

// Detect runs the whole probe on the default prober.
func Detect() Geometry {
	return defaultProber.Detect()
}

// CacheLine measures the cache-line size on the default prober.
func CacheLine() (uint64, error) {
	return defaultProber.CacheLine()
}

// L1 probes the default level-1 window on the default prober.
func L1() uint64 {
	return defaultProber.L1()
}

// L2 probes the default level-2 window on the default prober.
func L2() uint64 {
	return defaultProber.L2()
}

// L3 probes the default level-3 window on the default prober.
func L3() uint64 {
	return defaultProber.L3()
}
