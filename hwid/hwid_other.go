//go:build !linux && !darwin
// +build !linux,!darwin

package hwid

// osGeometry has no OS descriptor source on this platform; CPUID and the
// pad floor are all there is.
func osGeometry() (Geometry, Source, bool) {
	return Geometry{}, SourceNone, false
}
