package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oceanobs/bran-analysis/internal/adapter/store/bran"
	"github.com/oceanobs/bran-analysis/internal/adapter/store/csvseries"
	"github.com/oceanobs/bran-analysis/internal/log"
)

// EtaExtractRequest describes a sea-surface-height point extraction: one
// output CSV per station, built from a set of BRAN eta files.
type EtaExtractRequest struct {
	Files     []string
	Variable  string // Defaults to "eta_t".
	Stations  []csvseries.Station
	OutputDir string

	// BufferSteps adds extra sample points offset by k grid steps
	// (lon + k·Δx, lat − k·Δy, k = 1..BufferSteps) around each station,
	// for stations whose nominal coordinates fall on land.
	BufferSteps int

	// Workers bounds the per-station fan-out (0 = one goroutine per
	// station).
	Workers int
}

// RunEtaExtraction processes stations concurrently; a failing station is
// logged and skipped rather than aborting the whole run. Returns the paths
// written.
func RunEtaExtraction(req EtaExtractRequest) ([]string, error) {
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	if len(req.Stations) == 0 {
		return nil, fmt.Errorf("no stations")
	}
	if req.BufferSteps < 0 {
		return nil, fmt.Errorf("buffer steps must not be negative")
	}
	variable := req.Variable
	if variable == "" {
		variable = "eta_t"
	}

	//nolint:gosec // G301: Extraction outputs are world-readable by design.
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Grid spacing for the buffer offsets comes from the first file.
	dx, dy, err := gridSpacing(req.Files[0])
	if err != nil {
		return nil, err
	}
	log.Infof("Grid spacing: dx=%g dy=%g", dx, dy)

	workers := req.Workers
	if workers <= 0 || workers > len(req.Stations) {
		workers = len(req.Stations)
	}

	type stationResult struct {
		path string
		err  error
	}
	results := make([]stationResult, len(req.Stations))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, station := range req.Stations {
		wg.Add(1)
		go func(i int, station csvseries.Station) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			path, err := extractStation(req.Files, variable, station, req.BufferSteps, dx, dy, req.OutputDir)
			results[i] = stationResult{path: path, err: err}
		}(i, station)
	}
	wg.Wait()

	paths := make([]string, 0, len(req.Stations))
	failed := 0
	for i, res := range results {
		if res.err != nil {
			log.Errorf("Station %s failed: %v", req.Stations[i].Name, res.err)
			failed++
			continue
		}
		paths = append(paths, res.path)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("all %d stations failed", failed)
	}
	return paths, nil
}

func gridSpacing(path string) (dx, dy float64, err error) {
	ds, err := bran.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = ds.Close() }()
	return ds.GridSpacing()
}

// extractStation pulls the station's buffer points from every file and
// writes one chronologically ordered CSV.
func extractStation(files []string, variable string, station csvseries.Station, bufferSteps int, dx, dy float64, outputDir string) (string, error) {
	log.Infof("Processing station %s (lat=%g lon=%g)", station.Name, station.Lat, station.Lon)

	type row struct {
		t    time.Time
		vals []float64
	}
	rows := make([]row, 0)

	for _, file := range files {
		ds, err := bran.Open(file)
		if err != nil {
			return "", err
		}

		var fileRows []row
		for k := 0; k <= bufferSteps; k++ {
			lat := station.Lat - float64(k)*dy
			lon := station.Lon + float64(k)*dx

			series, err := ds.ExtractPointSeries(variable, lat, lon)
			if err != nil {
				_ = ds.Close()
				return "", fmt.Errorf("%s: %w", file, err)
			}
			if k == 0 {
				fileRows = make([]row, len(series.Times))
				for ti, t := range series.Times {
					fileRows[ti] = row{t: t, vals: make([]float64, bufferSteps+1)}
				}
			}
			if len(series.Times) != len(fileRows) {
				_ = ds.Close()
				return "", fmt.Errorf("%s: time axis length changed between buffer points", file)
			}
			for ti := range series.Times {
				fileRows[ti].vals[k] = series.Values[ti][0]
			}
		}
		_ = ds.Close()
		rows = append(rows, fileRows...)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].t.Before(rows[j].t) })

	times := make([]time.Time, len(rows))
	points := make([][]float64, len(rows))
	for i, r := range rows {
		times[i] = r.t
		points[i] = r.vals
	}

	path := filepath.Join(outputDir, fmt.Sprintf("eta_%s.csv", sanitizeName(station.Name)))
	err := writeTo(path, func(f *os.File) error {
		return csvseries.WriteEtaSeries(f, csvseries.EtaMetadata{
			Station: station.Name,
			Lat:     station.Lat,
			Lon:     station.Lon,
			DeltaX:  dx,
			DeltaY:  dy,
		}, times, points)
	})
	if err != nil {
		return "", err
	}
	log.Infof("Saved station %s: %s (%d records)", station.Name, path, len(rows))
	return path, nil
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(name))
}

// CurrentExtractRequest describes a current point extraction: u and v files
// are sampled at the station's nearest grid point for every depth level and
// merged into the long-format CSV consumed by the analysis command.
type CurrentExtractRequest struct {
	UFiles []string
	VFiles []string
	Lat    float64
	Lon    float64
	Output string
}

// RunCurrentExtraction extracts u and v at the point of interest and writes
// the merged long-format current CSV.
func RunCurrentExtraction(req CurrentExtractRequest) error {
	if len(req.UFiles) == 0 || len(req.VFiles) == 0 {
		return fmt.Errorf("need both u and v input files")
	}
	if req.Output == "" {
		return fmt.Errorf("output path is required")
	}

	log.Infof("Extracting currents at lat=%g lon=%g", req.Lat, req.Lon)

	uVals, depths, err := extractComponent(req.UFiles, "u", req.Lat, req.Lon)
	if err != nil {
		return err
	}
	vVals, vDepths, err := extractComponent(req.VFiles, "v", req.Lat, req.Lon)
	if err != nil {
		return err
	}
	if len(depths) != len(vDepths) {
		return fmt.Errorf("u has %d depth levels, v has %d", len(depths), len(vDepths))
	}

	// Merge on timestamps present in both components.
	times := make([]time.Time, 0, len(uVals))
	for t := range uVals {
		if _, ok := vVals[t]; ok {
			times = append(times, t)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	records := make([]csvseries.CurrentRecord, 0, len(times)*len(depths))
	for _, t := range times {
		for li, depth := range depths {
			records = append(records, csvseries.CurrentRecord{
				Time:  t,
				Depth: depth,
				U:     uVals[t][li],
				V:     vVals[t][li],
			})
		}
	}

	if err := writeTo(req.Output, func(f *os.File) error {
		return csvseries.WriteCurrentRecords(f, records)
	}); err != nil {
		return err
	}
	log.Infof("Saved %d records to %s", len(records), req.Output)
	return nil
}

// extractComponent reads one velocity component across all files, keyed by
// timestamp, along with the depth axis of the first file.
func extractComponent(files []string, variable string, lat, lon float64) (map[time.Time][]float64, []float64, error) {
	values := make(map[time.Time][]float64)
	var depths []float64

	for _, file := range files {
		ds, err := bran.Open(file)
		if err != nil {
			return nil, nil, err
		}
		series, err := ds.ExtractPointSeries(variable, lat, lon)
		_ = ds.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", file, err)
		}
		if series.Depths == nil {
			return nil, nil, fmt.Errorf("%s: variable %s has no depth axis", file, variable)
		}
		if depths == nil {
			depths = series.Depths
			log.Infof("Depth levels for %s: %v", variable, depths)
		} else if len(series.Depths) != len(depths) {
			return nil, nil, fmt.Errorf("%s: depth axis length changed (%d vs %d)", file, len(series.Depths), len(depths))
		}
		for ti, t := range series.Times {
			values[t] = series.Values[ti]
		}
	}
	return values, depths, nil
}
