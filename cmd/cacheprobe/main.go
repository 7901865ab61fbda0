// Command cacheprobe reports the host CPU's cache geometry.
//
// It prefers the hardware's own descriptors (CPUID, sysctl, sysfs) and
// falls back to the timing probe for anything the host will not say.
// A full probe costs minutes; -reuse caches results across runs.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/LynnColeArt/cacheprobe"
	"github.com/LynnColeArt/cacheprobe/hwid"
	"github.com/LynnColeArt/cacheprobe/sizefmt"
)

func main() {
	var (
		forceProbe  = flag.Bool("probe", false, "skip hardware descriptors and measure everything")
		strategy    = flag.String("strategy", "fixed", "line estimation strategy: fixed or growth")
		steps       = flag.Uint64("steps", cacheprobe.DefaultSteps, "touches per timed traversal")
		cold        = flag.Bool("cold", false, "evict the caches before probing")
		jsonPath    = flag.String("json", "", "write the result as JSON to this file")
		reuseDir    = flag.String("reuse", "", "reuse the latest fresh report in this directory, saving new ones there")
		maxAge      = flag.Duration("max-age", 30*24*time.Hour, "how old a reused report may be")
		quiet       = flag.Bool("quiet", false, "print the four sizes only")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		version, sum := cacheprobe.Version()
		if version == "" {
			version = "(devel)"
		}
		fmt.Printf("cacheprobe %s %s\n", version, sum)
		return
	}

	if *reuseDir != "" {
		if r, err := cacheprobe.LatestReport(*reuseDir); err == nil && r.Fresh(*maxAge) {
			printGeometry(r.Geometry, r.Source+" (cached)", *quiet)
			return
		}
	}

	if *cold {
		cacheprobe.EvictCaches(0)
	}

	start := time.Now()
	geom, source := detect(*forceProbe, *strategy, *steps)
	elapsed := time.Since(start)

	printGeometry(geom, source, *quiet)

	if *jsonPath != "" || *reuseDir != "" {
		report := cacheprobe.NewReport(geom, source, elapsed)
		if *jsonPath != "" {
			if err := report.WriteFile(*jsonPath); err != nil {
				log.Fatalf("writing report: %v", err)
			}
		}
		if *reuseDir != "" {
			if _, err := report.Save(*reuseDir); err != nil {
				log.Fatalf("saving report: %v", err)
			}
		}
	}
}

// detect consults the descriptors first, then probes whatever they left
// unanswered.
func detect(forceProbe bool, strategy string, steps uint64) (cacheprobe.Geometry, string) {
	var native cacheprobe.Geometry
	source := ""

	if !forceProbe {
		if g, src := hwid.Detect(); src != hwid.SourceNone {
			native = cacheprobe.Geometry{L1: g.L1, L2: g.L2, L3: g.L3, Line: g.Line}
			source = string(src)
		}
	}

	if complete(native) {
		return native, source
	}

	measured := prober(strategy, steps).Detect()
	if source == "" {
		return measured, "probe"
	}

	// Keep the descriptor values and fill the gaps from measurement.
	if native.Line == 0 {
		native.Line = measured.Line
	}
	if native.L1 == 0 {
		native.L1 = measured.L1
	}
	if native.L2 == 0 {
		native.L2 = measured.L2
	}
	if native.L3 == 0 {
		native.L3 = measured.L3
	}
	return native, source + "+probe"
}

func complete(g cacheprobe.Geometry) bool {
	return g.L1 != 0 && g.L2 != 0 && g.L3 != 0 && g.Line != 0
}

func prober(strategy string, steps uint64) *cacheprobe.Prober {
	opts := []cacheprobe.Option{cacheprobe.WithSteps(steps)}
	switch strategy {
	case "fixed":
	case "growth":
		opts = append(opts, cacheprobe.WithLineStrategy(cacheprobe.LineGrowthSweep))
	default:
		log.Fatalf("unknown strategy %q (want fixed or growth)", strategy)
	}
	p, err := cacheprobe.NewProber(opts...)
	if err != nil {
		log.Fatalf("configuring prober: %v", err)
	}
	return p
}

func printGeometry(geom cacheprobe.Geometry, source string, quiet bool) {
	if quiet {
		fmt.Printf("%s %s %s %s\n",
			sizefmt.Bytes(geom.Line), sizefmt.Bytes(geom.L1),
			sizefmt.Bytes(geom.L2), sizefmt.Bytes(geom.L3))
		return
	}

	fmt.Printf("Cache line -> [%s]\n", sizefmt.Bytes(geom.Line))
	printLevel("L1 data", geom.L1)
	printLevel("L2", geom.L2)
	printLevel("L3/SLC", geom.L3)
	fmt.Printf("Source: %s\n", source)
}

func printLevel(name string, size uint64) {
	if size == 0 {
		fmt.Printf("%-9s -> undetermined\n", name)
		return
	}
	fmt.Printf("%-9s -> [%s]\n", name, sizefmt.Bytes(size))
}
