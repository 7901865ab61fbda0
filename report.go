package cacheprobe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Report captures one detection run for reuse across invocations. A full
// timing probe costs minutes of wall clock, so callers persist the result
// and skip re-probing while the host fingerprint still matches.
type Report struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Hostname    string        `json:"hostname,omitempty"`
	OS          string        `json:"os"`
	Arch        string        `json:"arch"`
	NumCPU      int           `json:"num_cpu"`
	Fingerprint string        `json:"fingerprint"`
	Source      string        `json:"source"` // which provider produced the geometry
	Geometry    Geometry      `json:"geometry"`
	Elapsed     time.Duration `json:"elapsed,omitempty"`
}

// NewReport stamps a detection result with the host's identity.
func NewReport(geom Geometry, source string, elapsed time.Duration) *Report {
	hostname, _ := os.Hostname()
	return &Report{
		ID:          uuid.NewString(),
		Timestamp:   time.Now(),
		Hostname:    hostname,
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		NumCPU:      runtime.NumCPU(),
		Fingerprint: HostFingerprint(),
		Source:      source,
		Geometry:    geom,
		Elapsed:     elapsed,
	}
}

// HostFingerprint hashes the host identity facets a cache geometry
// depends on. A stored report whose fingerprint differs was measured on
// other hardware and must not be reused.
func HostFingerprint() string {
	hostname, _ := os.Hostname()
	d := xxhash.New()
	fmt.Fprintf(d, "%s|%s|%s|%d", hostname, runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	return fmt.Sprintf("%016x", d.Sum64())
}

// Fresh reports whether the result is recent enough to reuse on a host
// with a matching fingerprint.
func (r *Report) Fresh(maxAge time.Duration) bool {
	if r.Fingerprint != HostFingerprint() {
		return false
	}
	return time.Since(r.Timestamp) <= maxAge
}

// WriteFile persists the report as indented JSON at path.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Save writes the report into dir under a timestamped name and returns
// the path written.
func (r *Report) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	name := fmt.Sprintf("cacheprobe_%s.json", r.Timestamp.Format("20060102_150405"))
	path := filepath.Join(dir, name)
	return path, r.WriteFile(path)
}

// ReadReportFile loads a report written by WriteFile or Save.
func ReadReportFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &r, nil
}

// LatestReport returns the most recently written report in dir.
func LatestReport(dir string) (*Report, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no reports found in %s", dir)
	}

	// Sort by modification time to get latest
	var latest string
	var latestTime time.Time
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latest = file
			latestTime = info.ModTime()
		}
	}
	if latest == "" {
		return nil, fmt.Errorf("no readable reports in %s", dir)
	}

	return ReadReportFile(latest)
}
