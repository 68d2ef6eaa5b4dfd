// Package bran provides access to BRAN reanalysis NetCDF output (daily
// ocean_u, ocean_v and ocean_eta_t files).
package bran

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fhs/go-netcdf/netcdf"
)

// Candidate coordinate variable names, BRAN conventions first.
var (
	lonNames   = []string{"xt_ocean", "xu_ocean", "lon", "longitude", "x"}
	latNames   = []string{"yt_ocean", "yu_ocean", "lat", "latitude", "y"}
	depthNames = []string{"st_ocean", "depth", "lev"}
	timeNames  = []string{"Time", "time"}
)

// Dataset wraps one open BRAN NetCDF file.
type Dataset struct {
	nc   netcdf.Dataset
	path string
}

// PointSeries holds the values of one variable at a single grid point over
// the file's time axis. For 4D variables (time, depth, lat, lon) there is one
// column per depth level; for 3D variables Depths is nil and each row has a
// single column.
type PointSeries struct {
	Times  []time.Time
	Depths []float64
	Values [][]float64

	// Grid coordinates actually used (nearest grid point to the query).
	Lat float64
	Lon float64
}

// Open opens a BRAN NetCDF file read-only.
func Open(path string) (*Dataset, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file %s: %w", path, err)
	}
	return &Dataset{nc: nc, path: path}, nil
}

// Close closes the underlying NetCDF file.
func (d *Dataset) Close() error {
	return d.nc.Close()
}

// Path returns the file path the dataset was opened from.
func (d *Dataset) Path() string {
	return d.path
}

// LonAxis reads the longitude coordinate variable.
func (d *Dataset) LonAxis() ([]float64, error) {
	return d.axis(lonNames)
}

// LatAxis reads the latitude coordinate variable.
func (d *Dataset) LatAxis() ([]float64, error) {
	return d.axis(latNames)
}

// DepthAxis reads the vertical model-level coordinate (st_ocean).
func (d *Dataset) DepthAxis() ([]float64, error) {
	return d.axis(depthNames)
}

// GridSpacing returns the longitude and latitude grid steps, used to offset
// buffer points around coastal stations whose nominal coordinates fall on
// land.
func (d *Dataset) GridSpacing() (dx, dy float64, err error) {
	lons, err := d.LonAxis()
	if err != nil {
		return 0, 0, err
	}
	lats, err := d.LatAxis()
	if err != nil {
		return 0, 0, err
	}
	if len(lons) < 2 || len(lats) < 2 {
		return 0, 0, fmt.Errorf("axes too short to derive grid spacing")
	}
	return lons[1] - lons[0], lats[1] - lats[0], nil
}

// Times reads and decodes the time axis using its CF units attribute
// ("days since 1979-01-01", also hours/minutes/seconds since).
func (d *Dataset) Times() ([]time.Time, error) {
	v, name, err := d.findVar(timeNames)
	if err != nil {
		return nil, fmt.Errorf("time variable not found (tried: %v)", timeNames)
	}

	values, err := readFloat64Var(v)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	units, err := readStringAttr(v, "units")
	if err != nil {
		return nil, fmt.Errorf("time variable %s has no units attribute: %w", name, err)
	}
	base, step, err := parseTimeUnits(units)
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, len(values))
	for i, val := range values {
		times[i] = base.Add(time.Duration(val * float64(step)))
	}
	return times, nil
}

// ExtractPointSeries extracts the named variable at the grid point nearest
// to (lat, lon) across all times (and all depth levels for 4D variables).
// Fill values surface as NaN.
func (d *Dataset) ExtractPointSeries(varName string, lat, lon float64) (*PointSeries, error) {
	v, err := d.nc.Var(varName)
	if err != nil {
		return nil, fmt.Errorf("variable %s not found in %s: %w", varName, d.path, err)
	}

	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions of %s: %w", varName, err)
	}
	if len(dims) != 3 && len(dims) != 4 {
		return nil, fmt.Errorf("expected 3D or 4D variable, %s is %dD", varName, len(dims))
	}

	// Map each dimension to its axis role by name.
	type dimInfo struct {
		name string
		size int
	}
	infos := make([]dimInfo, len(dims))
	timeDim, depthDim, latDim, lonDim := -1, -1, -1, -1
	for i, dim := range dims {
		name, err := dim.Name()
		if err != nil {
			return nil, fmt.Errorf("failed to get dimension name: %w", err)
		}
		length, err := dim.Len()
		if err != nil {
			return nil, fmt.Errorf("failed to get dimension length: %w", err)
		}
		infos[i] = dimInfo{name: name, size: int(length)}
		switch {
		case matchesAny(name, timeNames):
			timeDim = i
		case matchesAny(name, depthNames):
			depthDim = i
		case matchesAny(name, latNames):
			latDim = i
		case matchesAny(name, lonNames):
			lonDim = i
		}
	}
	if timeDim < 0 || latDim < 0 || lonDim < 0 {
		return nil, fmt.Errorf("variable %s lacks time/lat/lon dimensions", varName)
	}
	if len(dims) == 4 && depthDim < 0 {
		return nil, fmt.Errorf("4D variable %s lacks a depth dimension", varName)
	}

	// Nearest grid point.
	lonAxis, err := d.axis([]string{infos[lonDim].name})
	if err != nil {
		return nil, err
	}
	latAxis, err := d.axis([]string{infos[latDim].name})
	if err != nil {
		return nil, err
	}
	lonIdx := nearestIndex(lonAxis, normalizeLonForAxis(lonAxis, lon))
	latIdx := nearestIndex(latAxis, lat)

	times, err := d.Times()
	if err != nil {
		return nil, err
	}
	if len(times) != infos[timeDim].size {
		return nil, fmt.Errorf("time axis length %d does not match dimension %d", len(times), infos[timeDim].size)
	}

	var depths []float64
	numLevels := 1
	if depthDim >= 0 {
		depths, err = d.axis([]string{infos[depthDim].name})
		if err != nil {
			return nil, err
		}
		numLevels = infos[depthDim].size
	}

	total := 1
	for _, info := range infos {
		total *= info.size
	}
	flat, err := readFlatFloat64Var(v, total)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", varName, err)
	}

	// Row-major strides over the file's dimension order.
	strides := make([]int, len(infos))
	stride := 1
	for i := len(infos) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= infos[i].size
	}

	fill, hasFill := fillValue(v)

	values := make([][]float64, len(times))
	for ti := range times {
		row := make([]float64, numLevels)
		for li := 0; li < numLevels; li++ {
			offset := ti*strides[timeDim] + latIdx*strides[latDim] + lonIdx*strides[lonDim]
			if depthDim >= 0 {
				offset += li * strides[depthDim]
			}
			val := flat[offset]
			if hasFill && val == fill {
				val = math.NaN()
			}
			row[li] = val
		}
		values[ti] = row
	}

	return &PointSeries{
		Times:  times,
		Depths: depths,
		Values: values,
		Lat:    latAxis[latIdx],
		Lon:    lonAxis[lonIdx],
	}, nil
}

func (d *Dataset) axis(candidates []string) ([]float64, error) {
	v, name, err := d.findVar(candidates)
	if err != nil {
		return nil, fmt.Errorf("coordinate variable not found (tried: %v)", candidates)
	}
	values, err := readFloat64Var(v)
	if err != nil {
		return nil, fmt.Errorf("failed to read axis %s: %w", name, err)
	}
	return values, nil
}

func (d *Dataset) findVar(candidates []string) (netcdf.Var, string, error) {
	for _, name := range candidates {
		if v, err := d.nc.Var(name); err == nil {
			return v, name, nil
		}
	}
	return netcdf.Var{}, "", fmt.Errorf("not found")
}

func matchesAny(name string, candidates []string) bool {
	for _, c := range candidates {
		if strings.EqualFold(name, c) {
			return true
		}
	}
	return false
}

// nearestIndex returns the index of the axis value closest to v.
func nearestIndex(axis []float64, v float64) int {
	best := 0
	bestDist := math.Abs(axis[0] - v)
	for i := 1; i < len(axis); i++ {
		if dist := math.Abs(axis[i] - v); dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

// lonAxisRequiresWrap reports whether the longitude axis uses the 0-360°
// convention (BRAN files do).
func lonAxisRequiresWrap(lons []float64) bool {
	if len(lons) == 0 {
		return false
	}
	minVal := lons[0]
	maxVal := lons[len(lons)-1]
	if minVal > maxVal {
		minVal, maxVal = maxVal, minVal
	}
	return minVal >= 0 && maxVal > 180
}

// normalizeLon360 maps arbitrary degree longitudes into the [0, 360) range.
func normalizeLon360(lon float64) float64 {
	lon = math.Mod(lon, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	return lon
}

// normalizeLonForAxis converts a query longitude to the axis convention:
// −180..180 queries are wrapped for 0-360 axes and vice versa.
func normalizeLonForAxis(lons []float64, lon float64) float64 {
	if lonAxisRequiresWrap(lons) {
		return normalizeLon360(lon)
	}
	if lon > 180 {
		return lon - 360.0
	}
	return lon
}

// parseTimeUnits parses a CF time units string like
// "days since 1979-01-01 00:00:00" into a base time and a step duration.
func parseTimeUnits(units string) (time.Time, time.Duration, error) {
	fields := strings.Fields(units)
	if len(fields) < 3 || !strings.EqualFold(fields[1], "since") {
		return time.Time{}, 0, fmt.Errorf("unsupported time units %q", units)
	}

	var step time.Duration
	switch strings.ToLower(fields[0]) {
	case "days", "day":
		step = 24 * time.Hour
	case "hours", "hour":
		step = time.Hour
	case "minutes", "minute":
		step = time.Minute
	case "seconds", "second":
		step = time.Second
	default:
		return time.Time{}, 0, fmt.Errorf("unsupported time unit %q", fields[0])
	}

	stamp := fields[2]
	if len(fields) >= 4 {
		stamp += " " + fields[3]
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if base, err := time.Parse(layout, stamp); err == nil {
			return base.UTC(), step, nil
		}
	}
	// Retry with the date part only; some files append a timezone token.
	if base, err := time.Parse("2006-01-02", fields[2]); err == nil {
		return base.UTC(), step, nil
	}
	return time.Time{}, 0, fmt.Errorf("unparseable time base in units %q", units)
}

// fillValue returns the _FillValue or missing_value attribute if present.
func fillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		a := v.Attr(name)
		if a == (netcdf.Attr{}) {
			continue
		}
		if n, err := a.Len(); err == nil && n > 0 {
			buf64 := make([]float64, 1)
			if err := a.ReadFloat64s(buf64); err == nil {
				return buf64[0], true
			}
			buf32 := make([]float32, 1)
			if err := a.ReadFloat32s(buf32); err == nil {
				return float64(buf32[0]), true
			}
			bufi := make([]int32, 1)
			if err := a.ReadInt32s(bufi); err == nil {
				return float64(bufi[0]), true
			}
		}
	}
	return 0, false
}

// readStringAttr reads a text attribute.
func readStringAttr(v netcdf.Var, name string) (string, error) {
	a := v.Attr(name)
	if a == (netcdf.Attr{}) {
		return "", fmt.Errorf("attribute %s not present", name)
	}
	n, err := a.Len()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", err
	}
	return strings.TrimRight(string(buf), "\x00"), nil
}

// readFloat64Var reads a 1D float64 array from a NetCDF variable.
func readFloat64Var(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}
	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	return readFlatFloat64Var(v, int(length))
}

// readFlatFloat64Var reads a variable of any shape as a flat float64 slice.
func readFlatFloat64Var(v netcdf.Var, total int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %v", err)
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, total)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, total)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.INT:
		tmp := make([]int32, total)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.SHORT:
		tmp := make([]int16, total)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
}
