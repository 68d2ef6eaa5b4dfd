// Command current-extract samples u and v from a directory of BRAN monthly
// NetCDF files at the grid point nearest a given coordinate and writes the
// merged long-format current CSV consumed by current-analysis.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/oceanobs/bran-analysis/internal/log"
	"github.com/oceanobs/bran-analysis/internal/usecase"
)

func main() {
	dir := flag.String("dir", "./data/bran", "Directory holding ocean_u_*.nc and ocean_v_*.nc files")
	lat := flag.Float64("lat", 0, "Latitude of the point of interest")
	lon := flag.Float64("lon", 0, "Longitude of the point of interest (either -180..180 or 0..360)")
	output := flag.String("out", "./output/currents.csv", "Output CSV path")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	uFiles := globSorted(filepath.Join(*dir, "ocean_u_*.nc"))
	vFiles := globSorted(filepath.Join(*dir, "ocean_v_*.nc"))
	if len(uFiles) == 0 || len(vFiles) == 0 {
		log.Fatalf("No ocean_u_*.nc / ocean_v_*.nc files found in %s", *dir)
	}
	log.Infof("Found %d u files and %d v files", len(uFiles), len(vFiles))

	err := usecase.RunCurrentExtraction(usecase.CurrentExtractRequest{
		UFiles: uFiles,
		VFiles: vFiles,
		Lat:    *lat,
		Lon:    *lon,
		Output: *output,
	})
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}
}

func globSorted(pattern string) []string {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		log.Fatalf("Bad glob pattern %s: %v", pattern, err)
	}
	sort.Strings(matches)
	return matches
}
