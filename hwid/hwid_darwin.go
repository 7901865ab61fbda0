//go:build darwin
// +build darwin

package hwid

import "golang.org/x/sys/unix"

// osGeometry queries the darwin sysctl namespace. Apple Silicon splits
// the per-core sizes by perflevel; the perflevel0 (performance core)
// values are preferred since that is where a single-threaded probe runs.
func osGeometry() (Geometry, Source, bool) {
	g := Geometry{
		Line: sysctlSize("hw.cachelinesize"),
		L1:   firstSysctlSize("hw.perflevel0.l1dcachesize", "hw.l1dcachesize"),
		L2:   firstSysctlSize("hw.perflevel0.l2cachesize", "hw.l2cachesize"),
		L3:   sysctlSize("hw.l3cachesize"),
	}
	return g, SourceSysctl, g != (Geometry{})
}

// sysctlSize reads one numeric sysctl, zero when absent. The hw cache
// entries are 64-bit on current kernels but were 32-bit historically, so
// a failed wide read retries narrow.
func sysctlSize(name string) uint64 {
	if v, err := unix.SysctlUint64(name); err == nil {
		return v
	}
	if v, err := unix.SysctlUint32(name); err == nil {
		return uint64(v)
	}
	return 0
}

// firstSysctlSize returns the first name that reports a non-zero size.
func firstSysctlSize(names ...string) uint64 {
	for _, name := range names {
		if v := sysctlSize(name); v != 0 {
			return v
		}
	}
	return 0
}
