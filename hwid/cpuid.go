package hwid

import "github.com/klauspost/cpuid/v2"

// cpuidGeometry reads the cache sizes the CPU reports about itself.
// klauspost/cpuid decodes the x86 CPUID leaves on any OS and the arm64
// system registers where the kernel exposes them; undetected values come
// back negative and are dropped here.
func cpuidGeometry() (Geometry, bool) {
	var g Geometry
	if cpuid.CPU.CacheLine > 0 {
		g.Line = uint64(cpuid.CPU.CacheLine)
	}
	if cpuid.CPU.Cache.L1D > 0 {
		g.L1 = uint64(cpuid.CPU.Cache.L1D)
	}
	if cpuid.CPU.Cache.L2 > 0 {
		g.L2 = uint64(cpuid.CPU.Cache.L2)
	}
	if cpuid.CPU.Cache.L3 > 0 {
		g.L3 = uint64(cpuid.CPU.Cache.L3)
	}
	return g, g != (Geometry{})
}
