// Package sizefmt renders byte counts in human-readable binary units.
package sizefmt

import "fmt"

// Binary unit divisors
const (
	KB uint64 = 1024
	MB        = 1024 * KB
	GB        = 1024 * MB
)

// Split breaks a byte count into a quantity and the largest binary unit
// that divides it evenly, so power-of-two sizes print without fractions.
func Split(n uint64) (uint64, string) {
	switch {
	case n >= GB && n%GB == 0:
		return n / GB, "GB"
	case n >= MB && n%MB == 0:
		return n / MB, "MB"
	case n >= KB && n%KB == 0:
		return n / KB, "KB"
	default:
		return n, "B"
	}
}

// Bytes renders a byte count with its unit, e.g. 65536 -> "64KB".
func Bytes(n uint64) string {
	quantity, unit := Split(n)
	return fmt.Sprintf("%d%s", quantity, unit)
}
