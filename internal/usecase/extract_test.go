package usecase

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/oceanobs/bran-analysis/internal/adapter/store/csvseries"
)

// writeEtaFixture builds a minimal Time x yt_ocean x xt_ocean eta file.
// values[t][lat][lon] must be flattened row-major.
func writeEtaFixture(t *testing.T, path string, times, lats, lons []float64, values []float32) {
	t.Helper()
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	defer func() { _ = f.Close() }()

	timeDim, _ := f.AddDim("Time", uint64(len(times)))
	latDim, _ := f.AddDim("yt_ocean", uint64(len(lats)))
	lonDim, _ := f.AddDim("xt_ocean", uint64(len(lons)))
	vtime, _ := f.AddVar("Time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	vlat, _ := f.AddVar("yt_ocean", netcdf.DOUBLE, []netcdf.Dim{latDim})
	vlon, _ := f.AddVar("xt_ocean", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	veta, _ := f.AddVar("eta_t", netcdf.FLOAT, []netcdf.Dim{timeDim, latDim, lonDim})

	if err := vtime.Attr("units").WriteBytes([]byte("days since 1979-01-01 00:00:00")); err != nil {
		t.Fatalf("write units attr: %v", err)
	}
	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}
	if err := vtime.WriteFloat64s(times); err != nil {
		t.Fatalf("write times: %v", err)
	}
	if err := vlat.WriteFloat64s(lats); err != nil {
		t.Fatalf("write lats: %v", err)
	}
	if err := vlon.WriteFloat64s(lons); err != nil {
		t.Fatalf("write lons: %v", err)
	}
	if err := veta.WriteFloat32s(values); err != nil {
		t.Fatalf("write eta: %v", err)
	}
}

// writeVelocityFixture builds a Time x st_ocean x yu_ocean x xu_ocean file
// holding a single constant-valued velocity component.
func writeVelocityFixture(t *testing.T, path, varName string, times, depths, lats, lons []float64, value float32) {
	t.Helper()
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	defer func() { _ = f.Close() }()

	timeDim, _ := f.AddDim("Time", uint64(len(times)))
	depthDim, _ := f.AddDim("st_ocean", uint64(len(depths)))
	latDim, _ := f.AddDim("yu_ocean", uint64(len(lats)))
	lonDim, _ := f.AddDim("xu_ocean", uint64(len(lons)))
	vtime, _ := f.AddVar("Time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	vdepth, _ := f.AddVar("st_ocean", netcdf.DOUBLE, []netcdf.Dim{depthDim})
	vlat, _ := f.AddVar("yu_ocean", netcdf.DOUBLE, []netcdf.Dim{latDim})
	vlon, _ := f.AddVar("xu_ocean", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	vvel, _ := f.AddVar(varName, netcdf.FLOAT, []netcdf.Dim{timeDim, depthDim, latDim, lonDim})

	if err := vtime.Attr("units").WriteBytes([]byte("days since 1979-01-01 00:00:00")); err != nil {
		t.Fatalf("write units attr: %v", err)
	}
	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}
	if err := vtime.WriteFloat64s(times); err != nil {
		t.Fatalf("write times: %v", err)
	}
	if err := vdepth.WriteFloat64s(depths); err != nil {
		t.Fatalf("write depths: %v", err)
	}
	if err := vlat.WriteFloat64s(lats); err != nil {
		t.Fatalf("write lats: %v", err)
	}
	if err := vlon.WriteFloat64s(lons); err != nil {
		t.Fatalf("write lons: %v", err)
	}
	values := make([]float32, len(times)*len(depths)*len(lats)*len(lons))
	for i := range values {
		values[i] = value
	}
	if err := vvel.WriteFloat32s(values); err != nil {
		t.Fatalf("write %s: %v", varName, err)
	}
}

func TestRunEtaExtraction(t *testing.T) {
	dir := t.TempDir()

	lats := []float64{-33, -32, -31}
	lons := []float64{307, 308, 309}

	// values[t][lat][lon] = 100*t + 10*latIdx + lonIdx; two files, later
	// month first to exercise chronological sorting.
	makeValues := func(times []float64) []float32 {
		values := make([]float32, 0, len(times)*len(lats)*len(lons))
		for ti := range times {
			for li := range lats {
				for gi := range lons {
					values = append(values, float32(100*ti+10*li+gi))
				}
			}
		}
		return values
	}
	fileFeb := filepath.Join(dir, "ocean_eta_t_1997_02.nc")
	fileJan := filepath.Join(dir, "ocean_eta_t_1997_01.nc")
	writeEtaFixture(t, fileFeb, []float64{31, 32}, lats, lons, makeValues([]float64{31, 32}))
	writeEtaFixture(t, fileJan, []float64{0, 1}, lats, lons, makeValues([]float64{0, 1}))

	outDir := filepath.Join(dir, "out")
	paths, err := RunEtaExtraction(EtaExtractRequest{
		Files:       []string{fileFeb, fileJan},
		Stations:    []csvseries.Station{{Name: "Station A", Lat: -32, Lon: 308}},
		OutputDir:   outDir,
		BufferSteps: 1,
	})
	if err != nil {
		t.Fatalf("RunEtaExtraction: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 output file, got %d", len(paths))
	}

	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "Station: Station A") {
		t.Errorf("missing station preamble:\n%s", content)
	}
	if !strings.Contains(content, "date,point_0,point_1") {
		t.Errorf("missing data header:\n%s", content)
	}

	// Rows from both files, oldest timestamp first.
	lines := strings.Split(strings.TrimSpace(content), "\n")
	var dataLines []string
	inData := false
	for _, line := range lines {
		if inData {
			dataLines = append(dataLines, line)
		}
		if strings.HasPrefix(line, "date,") {
			inData = true
		}
	}
	if len(dataLines) != 4 {
		t.Fatalf("expected 4 data rows, got %d: %v", len(dataLines), dataLines)
	}
	if !strings.HasPrefix(dataLines[0], "1979-01-01") {
		t.Errorf("rows not chronological, first row: %s", dataLines[0])
	}
	// point_0 at (-32, 308) → value 11; point_1 is one step east-south,
	// (-33, 309) → value 2.
	fields := strings.Split(dataLines[0], ",")
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %v", fields)
	}
	if fields[1] != "11.000000" || fields[2] != "2.000000" {
		t.Errorf("unexpected point values: %v", fields[1:])
	}
}

func TestRunEtaExtractionAllStationsFail(t *testing.T) {
	dir := t.TempDir()
	lats := []float64{-33, -32}
	lons := []float64{307, 308}
	path := filepath.Join(dir, "ocean_eta_t_1997_01.nc")
	writeEtaFixture(t, path, []float64{0}, lats, lons, make([]float32, 4))

	// The fixture has no "zeta" variable, so the only station fails.
	_, err := RunEtaExtraction(EtaExtractRequest{
		Files:     []string{path},
		Variable:  "zeta",
		Stations:  []csvseries.Station{{Name: "A", Lat: -32, Lon: 308}},
		OutputDir: filepath.Join(dir, "out"),
	})
	if err == nil {
		t.Fatal("expected an error when every station fails")
	}
}

func TestRunCurrentExtraction(t *testing.T) {
	dir := t.TempDir()

	times := []float64{0, 1}
	depths := []float64{2.5, 7.5}
	lats := []float64{-33, -32}
	lons := []float64{307, 308}

	uPath := filepath.Join(dir, "ocean_u_1997_01.nc")
	vPath := filepath.Join(dir, "ocean_v_1997_01.nc")
	writeVelocityFixture(t, uPath, "u", times, depths, lats, lons, 0.3)
	writeVelocityFixture(t, vPath, "v", times, depths, lats, lons, 0.4)

	output := filepath.Join(dir, "currents.csv")
	err := RunCurrentExtraction(CurrentExtractRequest{
		UFiles: []string{uPath},
		VFiles: []string{vPath},
		Lat:    -32,
		Lon:    308,
		Output: output,
	})
	if err != nil {
		t.Fatalf("RunCurrentExtraction: %v", err)
	}

	series, err := csvseries.LoadCurrentSeries(output)
	if err != nil {
		t.Fatalf("LoadCurrentSeries: %v", err)
	}
	// 2 timestamps x 2 depth levels.
	if len(series) != 4 {
		t.Fatalf("expected 4 observations, got %d", len(series))
	}
	for _, obs := range series {
		if math.Abs(obs.Speed-0.5) > 1e-6 {
			t.Errorf("speed: expected 0.5, got %g", obs.Speed)
		}
		if math.Abs(obs.Direction-53.13010235415598) > 1e-6 {
			t.Errorf("direction: expected 53.1301, got %g", obs.Direction)
		}
	}
}
