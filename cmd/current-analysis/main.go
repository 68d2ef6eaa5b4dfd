// Command current-analysis builds current speed/direction distribution
// tables and rose plot data from a long-format point current CSV.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/oceanobs/bran-analysis/internal/domain"
	"github.com/oceanobs/bran-analysis/internal/log"
	"github.com/oceanobs/bran-analysis/internal/usecase"
)

func main() {
	input := flag.String("input", "", "Path to the point current CSV (time,st_ocean,u,v)")
	outDir := flag.String("out", "./output", "Output directory")
	depth := flag.Float64("depth", 2.5, "Depth level (st_ocean) to analyze, matched exactly")
	periods := flag.String("periods", "all", "Comma-separated periods: all, season codes (DJF, MAM, JJA, SON) or month names")
	mode := flag.String("mode", "bins", "Table mode: bins or accumulate")
	thresholds := flag.String("thresholds", "", "Comma-separated speed bin edges in m/s (default 0 to 0.5 step 0.05)")
	roseWindow := flag.Duration("rose-window", 0, "Averaging window for rose data (0 = raw samples)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *input == "" {
		log.Fatalf("-input is required")
	}

	tableMode, err := domain.ParseMode(*mode)
	if err != nil {
		log.Fatalf("Invalid mode: %v", err)
	}

	var edges []float64
	if *thresholds != "" {
		edges, err = parseFloatList(*thresholds)
		if err != nil {
			log.Fatalf("Invalid thresholds: %v", err)
		}
	}

	result, err := usecase.RunAnalysis(usecase.AnalysisRequest{
		InputCSV:        *input,
		OutputDir:       *outDir,
		Depth:           *depth,
		Periods:         splitList(*periods),
		Mode:            tableMode,
		SpeedThresholds: edges,
		RoseWindow:      *roseWindow,
	})
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}
	log.Infof("Wrote %d distribution tables and %d rose files to %s",
		len(result.Tables), len(result.RoseFiles), *outDir)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloatList(s string) ([]float64, error) {
	parts := splitList(s)
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
