// Command eta-extract samples sea surface height (eta_t) from a directory of
// BRAN monthly NetCDF files at each station's nearest grid point, writing one
// CSV per station. Stations come from a CSV file or from a single -name /
// -lat / -lon triple.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/oceanobs/bran-analysis/internal/adapter/store/csvseries"
	"github.com/oceanobs/bran-analysis/internal/log"
	"github.com/oceanobs/bran-analysis/internal/usecase"
)

func main() {
	dir := flag.String("dir", "./data/bran", "Directory holding ocean_eta_t_*.nc files")
	stationsCSV := flag.String("stations", "", "Station CSV (name,lat,lon); overrides -name/-lat/-lon")
	name := flag.String("name", "", "Single station name")
	lat := flag.Float64("lat", 0, "Single station latitude")
	lon := flag.Float64("lon", 0, "Single station longitude")
	variable := flag.String("var", "eta_t", "NetCDF variable to extract")
	buffer := flag.Int("buffer", 2, "Extra grid-step offset points per station")
	outDir := flag.String("out", "./output/eta", "Output directory")
	workers := flag.Int("workers", 0, "Max concurrent stations (0 = all at once)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var stations []csvseries.Station
	if *stationsCSV != "" {
		var err error
		stations, err = csvseries.LoadStations(*stationsCSV)
		if err != nil {
			log.Fatalf("Failed to load stations: %v", err)
		}
	} else if *name != "" {
		stations = []csvseries.Station{{Name: *name, Lat: *lat, Lon: *lon}}
	} else {
		log.Fatalf("Either -stations or -name/-lat/-lon is required")
	}
	log.Infof("Processing %d station(s)", len(stations))

	files, err := filepath.Glob(filepath.Join(*dir, "ocean_eta_t_*.nc"))
	if err != nil {
		log.Fatalf("Bad glob pattern: %v", err)
	}
	sort.Strings(files)
	if len(files) == 0 {
		log.Fatalf("No ocean_eta_t_*.nc files found in %s", *dir)
	}
	log.Infof("Found %d eta files", len(files))

	paths, err := usecase.RunEtaExtraction(usecase.EtaExtractRequest{
		Files:       files,
		Variable:    *variable,
		Stations:    stations,
		OutputDir:   *outDir,
		BufferSteps: *buffer,
		Workers:     *workers,
	})
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}
	log.Infof("Wrote %d station file(s) to %s", len(paths), *outDir)
}
