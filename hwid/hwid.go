// Package hwid queries the host's cache geometry from hardware
// descriptors: CPUID leaves, the sysctl namespace on darwin, sysfs on
// linux. Where a descriptor exists it is faster and more exact than
// timing; the probe in the parent package needs none of this and serves
// as the fallback and cross-check.
package hwid

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Geometry holds descriptor-reported sizes in bytes, zero meaning the
// host does not say.
type Geometry struct {
	L1   uint64
	L2   uint64
	L3   uint64
	Line uint64
}

// Source names the provider that contributed a geometry.
type Source string

const (
	SourceCPUID  Source = "cpuid"
	SourceSysctl Source = "sysctl"
	SourceSysfs  Source = "sysfs"
	SourcePad    Source = "cachelinepad"
	SourceNone   Source = "none"
)

// Detect queries the providers in confidence order and merges their
// answers, first provider winning per field: CPUID, then the OS
// descriptor, then the compile-time line-size floor. The returned Source
// names the first provider that contributed anything; fields no provider
// knows stay zero.
func Detect() (Geometry, Source) {
	var g Geometry
	src := SourceNone

	if cg, ok := cpuidGeometry(); ok {
		merge(&g, cg)
		src = SourceCPUID
	}
	if og, osrc, ok := osGeometry(); ok {
		merge(&g, og)
		if src == SourceNone {
			src = osrc
		}
	}
	if g.Line == 0 {
		g.Line = padLineSize()
		if src == SourceNone && g.Line != 0 {
			src = SourcePad
		}
	}
	return g, src
}

// merge fills dst's unknown fields from src.
func merge(dst *Geometry, src Geometry) {
	if dst.L1 == 0 {
		dst.L1 = src.L1
	}
	if dst.L2 == 0 {
		dst.L2 = src.L2
	}
	if dst.L3 == 0 {
		dst.L3 = src.L3
	}
	if dst.Line == 0 {
		dst.Line = src.Line
	}
}

// padLineSize is the line size x/sys/cpu pads contended structures with
// on this architecture. A build-time floor, not a measurement of the
// running part.
func padLineSize() uint64 {
	return uint64(unsafe.Sizeof(cpu.CacheLinePad{}))
}
