// Package csvseries provides CSV-based time-series loading and saving for
// the extraction and analysis commands.
package csvseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oceanobs/bran-analysis/internal/domain"
)

// timeLayouts are accepted timestamp formats, most specific first.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CurrentRecord is one raw velocity sample at a depth level, as written by
// the extraction command and read back by the analysis command.
type CurrentRecord struct {
	Time  time.Time
	Depth float64
	U     float64
	V     float64
}

// LoadCurrentSeries reads a long-format current CSV (columns time, st_ocean,
// u, v; header names case-insensitive, "depth" accepted for st_ocean) and
// derives speed and direction for each row.
func LoadCurrentSeries(path string) (domain.Series, error) {
	//nolint:gosec // G304: Path comes from the command line.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open current CSV: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	timeCol := findColumn(header, "time")
	depthCol := findColumn(header, "st_ocean", "depth")
	uCol := findColumn(header, "u")
	vCol := findColumn(header, "v")
	if timeCol < 0 || depthCol < 0 || uCol < 0 || vCol < 0 {
		return nil, fmt.Errorf("invalid CSV header: need time, st_ocean, u, v columns, got %v", header)
	}

	series := make(domain.Series, 0)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		line++

		ts, err := parseTime(record[timeCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		depth, err := parseFloat(record[depthCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid depth: %w", line, err)
		}
		u, err := parseFloat(record[uCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid u: %w", line, err)
		}
		v, err := parseFloat(record[vCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid v: %w", line, err)
		}

		speed, direction := domain.SpeedDirection(u, v)
		series = append(series, domain.Observation{
			Time:      ts,
			Depth:     depth,
			Speed:     speed,
			Direction: direction,
		})
	}

	return series, nil
}

// WriteCurrentRecords writes the long-format current CSV consumed by
// LoadCurrentSeries.
func WriteCurrentRecords(w io.Writer, records []CurrentRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "st_ocean", "u", "v"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Time.UTC().Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(r.Depth, 'f', -1, 64),
			strconv.FormatFloat(r.U, 'f', 6, 64),
			strconv.FormatFloat(r.V, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Station is a named point of interest.
type Station struct {
	Name string
	Lat  float64
	Lon  float64
}

// LoadStations reads a station CSV with name, lat, lon columns. Decimal
// commas in the coordinate values are tolerated (some upstream station
// lists use them).
func LoadStations(path string) ([]Station, error) {
	//nolint:gosec // G304: Path comes from the command line.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stations CSV: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read stations header: %w", err)
	}
	nameCol := findColumn(header, "name", "station")
	latCol := findColumn(header, "lat", "latitude")
	lonCol := findColumn(header, "lon", "longitude")
	if nameCol < 0 || latCol < 0 || lonCol < 0 {
		return nil, fmt.Errorf("invalid stations header: need name, lat, lon columns, got %v", header)
	}

	stations := make([]Station, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read station record: %w", err)
		}

		name := strings.TrimSpace(record[nameCol])
		lat, err := parseFloat(record[latCol])
		if err != nil {
			return nil, fmt.Errorf("invalid latitude for station %s: %w", name, err)
		}
		lon, err := parseFloat(record[lonCol])
		if err != nil {
			return nil, fmt.Errorf("invalid longitude for station %s: %w", name, err)
		}
		stations = append(stations, Station{Name: name, Lat: lat, Lon: lon})
	}

	if len(stations) == 0 {
		return nil, fmt.Errorf("no stations found in %s", path)
	}
	return stations, nil
}

func findColumn(header []string, candidates ...string) int {
	for i, h := range header {
		for _, c := range candidates {
			if strings.EqualFold(strings.TrimSpace(h), c) {
				return i
			}
		}
	}
	return -1
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}
