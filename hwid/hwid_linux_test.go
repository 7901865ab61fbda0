//go:build linux
// +build linux

package hwid

import (
	"os"
	"path/filepath"
	"testing"
)

// writeCacheIndex lays out one sysfs cache index directory with the
// attributes sysfsGeometry reads.
func writeCacheIndex(t *testing.T, root, index string, attrs map[string]string) {
	t.Helper()
	dir := filepath.Join(root, index)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, value := range attrs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSysfsGeometry(t *testing.T) {
	root := t.TempDir()
	writeCacheIndex(t, root, "index0", map[string]string{
		"type":                "Data",
		"level":               "1",
		"size":                "32K",
		"coherency_line_size": "64",
	})
	writeCacheIndex(t, root, "index1", map[string]string{
		"type":                "Instruction",
		"level":               "1",
		"size":                "48K",
		"coherency_line_size": "64",
	})
	writeCacheIndex(t, root, "index2", map[string]string{
		"type":                "Unified",
		"level":               "2",
		"size":                "1024K",
		"coherency_line_size": "64",
	})
	writeCacheIndex(t, root, "index3", map[string]string{
		"type":                "Unified",
		"level":               "3",
		"size":                "12M",
		"coherency_line_size": "64",
	})

	g := sysfsGeometry(root)
	want := Geometry{
		L1:   32 * 1024,
		L2:   1024 * 1024,
		L3:   12 * 1024 * 1024,
		Line: 64,
	}
	if g != want {
		t.Errorf("sysfsGeometry = %+v, want %+v", g, want)
	}
}

func TestSysfsGeometrySkipsMalformedIndexes(t *testing.T) {
	root := t.TempDir()
	writeCacheIndex(t, root, "index0", map[string]string{
		"type":  "Data",
		"level": "one",
		"size":  "32K",
	})
	writeCacheIndex(t, root, "index1", map[string]string{
		"type":                "Unified",
		"level":               "2",
		"size":                "512K",
		"coherency_line_size": "64",
	})

	g := sysfsGeometry(root)
	want := Geometry{L2: 512 * 1024, Line: 64}
	if g != want {
		t.Errorf("sysfsGeometry = %+v, want %+v", g, want)
	}
}

func TestSysfsGeometryMissingRoot(t *testing.T) {
	g := sysfsGeometry(filepath.Join(t.TempDir(), "absent"))
	if g != (Geometry{}) {
		t.Errorf("sysfsGeometry on missing tree = %+v, want zero", g)
	}
}

func TestParseSysfsSize(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"32K", 32 * 1024, false},
		{"48K", 48 * 1024, false},
		{"12M", 12 * 1024 * 1024, false},
		{"1G", 1024 * 1024 * 1024, false},
		{"512", 512, false},
		{"", 0, true},
		{"junk", 0, true},
	}

	for _, tt := range tests {
		got, err := parseSysfsSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSysfsSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSysfsSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
