package cacheprobe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestProber builds a prober scaled for scripted tests: a short
// traversal, a small line probe, and three overlapping windows of four
// doubling steps each.
func newTestProber(t *testing.T, clock Clock, opts ...Option) *Prober {
	t.Helper()
	base := []Option{
		WithClock(clock),
		WithSteps(65536),
		WithLineProbeSize(4096),
		WithL1Window(Window{Min: 1024, Max: 8192}),
		WithL2Window(Window{Min: 2048, Max: 16384}),
		WithL3Window(Window{Min: 4096, Max: 32768}),
	}
	p, err := NewProber(append(base, opts...)...)
	require.NoError(t, err)
	return p
}

func concat(scripts ...[]time.Duration) []time.Duration {
	var out []time.Duration
	for _, s := range scripts {
		out = append(out, s...)
	}
	return out
}

func TestNewProberDefaults(t *testing.T) {
	p, err := NewProber()
	require.NoError(t, err)

	assert.Equal(t, uint64(DefaultSteps), p.steps)
	assert.Equal(t, LineFixedStride, p.strategy)
	assert.Equal(t, uint64(DefaultLineProbeSize), p.lineProbeSize)
	assert.Equal(t, Window{Min: L1WindowMin, Max: L1WindowMax}, p.l1)
	assert.Equal(t, Window{Min: L2WindowMin, Max: L2WindowMax}, p.l2)
	assert.Equal(t, Window{Min: L3WindowMin, Max: L3WindowMax}, p.l3)
	assert.NotNil(t, p.clock)
	assert.NotNil(t, p.alloc)
}

func TestNewProberRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"zero steps", []Option{WithSteps(0)}},
		{"probe size at step count", []Option{WithSteps(65536)}},
		{"probe size not a power of two", []Option{WithLineProbeSize(100)}},
		{"probe size below largest stride", []Option{WithLineProbeSize(128)}},
		{"sweep bound below two points", []Option{
			WithLineStrategy(LineGrowthSweep), WithLineSweepMax(1)}},
		{"sweep bound not a power of two", []Option{
			WithLineStrategy(LineGrowthSweep), WithLineSweepMax(3)}},
		{"unknown strategy", []Option{WithLineStrategy(LineStrategy(7))}},
		{"inverted window", []Option{
			WithL1Window(Window{Min: 8192, Max: 1024})}},
		{"window bound not a power of two", []Option{
			WithL2Window(Window{Min: 1000, Max: 8192})}},
		{"window above step count", []Option{
			WithSteps(65536), WithLineProbeSize(4096),
			WithL1Window(Window{Min: 1024, Max: 8192}),
			WithL2Window(Window{Min: 2048, Max: 16384}),
			WithL3Window(Window{Min: 4096, Max: 65536})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProber(tt.opts...)
			require.Error(t, err)
			assert.True(t, IsInvalidArgError(err))
		})
	}
}

func TestNewProberChecksOnlyActiveStrategy(t *testing.T) {
	// The default fixed-stride probe size would exceed this step count,
	// but under the growth strategy it is inert and must not be checked.
	_, err := NewProber(
		WithSteps(65536),
		WithLineStrategy(LineGrowthSweep),
		WithLineSweepMax(1024),
		WithL1Window(Window{Min: 1024, Max: 8192}),
		WithL2Window(Window{Min: 2048, Max: 16384}),
		WithL3Window(Window{Min: 4096, Max: 32768}),
	)
	assert.NoError(t, err)
}

func TestCacheLineFixedStride(t *testing.T) {
	clock := newScriptClock(lineScript(
		10*time.Millisecond,
		10*time.Millisecond,
		10*time.Millisecond,
		40*time.Millisecond,
	))
	p := newTestProber(t, clock)

	line, err := p.CacheLine()
	require.NoError(t, err)
	assert.Equal(t, uint64(128), line)
}

func TestCacheLineGrowthSweep(t *testing.T) {
	clock := newScriptClock([]time.Duration{
		5 * time.Millisecond,
		5 * time.Millisecond,
		5 * time.Millisecond,
		20 * time.Millisecond,
		20 * time.Millisecond,
	})
	p := newTestProber(t, clock,
		WithLineStrategy(LineGrowthSweep),
		WithLineSweepMax(16),
	)

	line, err := p.CacheLine()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), line)
}

func TestDetectFlatTimings(t *testing.T) {
	// Forty-four flat measures: the line falls back to the default and
	// every level lands on the half-window fallback.
	clock := newScriptClock(concat(
		lineScript(2*time.Millisecond, 2*time.Millisecond,
			2*time.Millisecond, 2*time.Millisecond),
		levelScript(2*time.Millisecond, 2*time.Millisecond,
			2*time.Millisecond, 2*time.Millisecond),
		levelScript(2*time.Millisecond, 2*time.Millisecond,
			2*time.Millisecond, 2*time.Millisecond),
		levelScript(2*time.Millisecond, 2*time.Millisecond,
			2*time.Millisecond, 2*time.Millisecond),
	))
	p := newTestProber(t, clock)

	geom := p.Detect()
	assert.Equal(t, Geometry{L1: 4096, L2: 8192, L3: 16384, Line: 64}, geom)
}

func TestDetectReadsJumpsPerWindow(t *testing.T) {
	// The line jump sits between strides 64 and 128. Each window then
	// shows its own spill point: after the third size for L1 and L3,
	// after the second for L2.
	clock := newScriptClock(concat(
		lineScript(10*time.Millisecond, 10*time.Millisecond,
			10*time.Millisecond, 40*time.Millisecond),
		levelScript(1*time.Millisecond, 1*time.Millisecond,
			1*time.Millisecond, 5*time.Millisecond),
		levelScript(1*time.Millisecond, 1*time.Millisecond,
			6*time.Millisecond, 6*time.Millisecond),
		levelScript(2*time.Millisecond, 2*time.Millisecond,
			2*time.Millisecond, 9*time.Millisecond),
	))
	p := newTestProber(t, clock)

	geom := p.Detect()
	assert.Equal(t, Geometry{L1: 4096, L2: 4096, L3: 16384, Line: 128}, geom)
}

func TestDetectAllAllocationsFail(t *testing.T) {
	p := newTestProber(t, newScriptClock(nil),
		WithAllocator(&failAllocator{failAt: 1}))

	geom := p.Detect()
	assert.Equal(t, Geometry{L1: 0, L2: 0, L3: 0, Line: DefaultLineSize}, geom)
}

func TestLevelAccessorsShareLineFallback(t *testing.T) {
	// L1 runs its own line probe before the sweep: 4 line measures plus
	// 12 level measures, flat, landing on the half-window fallback.
	clock := newScriptClock(concat(
		lineScript(3*time.Millisecond, 3*time.Millisecond,
			3*time.Millisecond, 3*time.Millisecond),
		levelScript(3*time.Millisecond, 3*time.Millisecond,
			3*time.Millisecond, 3*time.Millisecond),
	))
	p := newTestProber(t, clock)

	assert.Equal(t, uint64(4096), p.L1())
}

func TestGeometrySizesOrder(t *testing.T) {
	g := Geometry{L1: 1, L2: 2, L3: 3, Line: 4}
	assert.Equal(t, [4]uint64{1, 2, 3, 4}, g.Sizes())
}

func TestDefaultProberInitialized(t *testing.T) {
	assert.NotNil(t, defaultProber)
}

func TestProbeSmoke(t *testing.T) {
	if testing.Short() {
		t.Skip("timing smoke test")
	}

	p, err := NewProber(
		WithSteps(1<<23),
		WithLineProbeSize(1<<20),
		WithL1Window(Window{Min: 16 * 1024, Max: 256 * 1024}),
		WithL2Window(Window{Min: 128 * 1024, Max: 2 * 1024 * 1024}),
		WithL3Window(Window{Min: 512 * 1024, Max: 4 * 1024 * 1024}),
	)
	require.NoError(t, err)

	geom := p.Detect()

	// Real timings vary by host, but every result stays inside its
	// window's reachable range.
	assert.GreaterOrEqual(t, geom.Line, uint64(32))
	assert.LessOrEqual(t, geom.Line, uint64(256))
	assert.GreaterOrEqual(t, geom.L1, uint64(16*1024))
	assert.LessOrEqual(t, geom.L1, uint64(128*1024))
	assert.GreaterOrEqual(t, geom.L2, uint64(128*1024))
	assert.LessOrEqual(t, geom.L2, uint64(1024*1024))
	assert.GreaterOrEqual(t, geom.L3, uint64(512*1024))
	assert.LessOrEqual(t, geom.L3, uint64(2*1024*1024))
}
