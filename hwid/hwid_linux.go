//go:build linux
// +build linux

package hwid

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const sysfsCacheRoot = "/sys/devices/system/cpu/cpu0/cache"

// osGeometry walks cpu0's sysfs cache tree. cpu0 stands in for the whole
// package; asymmetric (big.LITTLE) parts report whichever core the
// kernel enumerated first.
func osGeometry() (Geometry, Source, bool) {
	g := sysfsGeometry(sysfsCacheRoot)
	return g, SourceSysfs, g != (Geometry{})
}

// sysfsGeometry parses a cache directory tree laid out like
// /sys/devices/system/cpu/cpu0/cache/index*/{type,level,size,coherency_line_size}.
// Instruction caches are skipped; only Data and Unified entries describe
// what a data-access probe would measure.
func sysfsGeometry(root string) Geometry {
	var g Geometry
	indexes, err := filepath.Glob(filepath.Join(root, "index*"))
	if err != nil {
		return g
	}
	for _, dir := range indexes {
		typ := readSysfsString(filepath.Join(dir, "type"))
		if typ != "Data" && typ != "Unified" {
			continue
		}
		level, err := strconv.Atoi(readSysfsString(filepath.Join(dir, "level")))
		if err != nil {
			continue
		}
		size, err := parseSysfsSize(readSysfsString(filepath.Join(dir, "size")))
		if err != nil {
			continue
		}
		switch level {
		case 1:
			g.L1 = size
		case 2:
			g.L2 = size
		case 3:
			g.L3 = size
		}
		if g.Line == 0 {
			if line, err := strconv.ParseUint(readSysfsString(filepath.Join(dir, "coherency_line_size")), 10, 64); err == nil {
				g.Line = line
			}
		}
	}
	return g
}

// readSysfsString reads one sysfs attribute, empty when unreadable.
func readSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// parseSysfsSize parses the kernel's "32K"/"12M" cache size notation
// into bytes.
func parseSysfsSize(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	mult := uint64(1)
	switch s[len(s)-1] {
	case 'K':
		mult = 1024
		s = s[:len(s)-1]
	case 'M':
		mult = 1024 * 1024
		s = s[:len(s)-1]
	case 'G':
		mult = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed cache size %q: %w", s, err)
	}
	return n * mult, nil
}
