// Command bran-generator writes synthetic BRAN-like monthly NetCDF files
// (ocean_u, ocean_v, ocean_eta_t) for local development and testing. Fields
// are smooth sinusoids with a rotating seasonal current so the extraction and
// analysis commands produce plausible output without real model data.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fhs/go-netcdf/netcdf"
)

const (
	timeUnits = "days since 1979-01-01 00:00:00"
	fillVal   = float32(-1e20)
)

var timeBase = time.Date(1979, 1, 1, 0, 0, 0, 0, time.UTC)

// regionGrid defines the synthetic domain. Longitudes follow the BRAN 0-360
// convention.
type regionGrid struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
	Resolution     float64
}

func (g regionGrid) latAxis() []float64 { return axisValues(g.LatMin, g.LatMax, g.Resolution) }
func (g regionGrid) lonAxis() []float64 { return axisValues(g.LonMin, g.LonMax, g.Resolution) }

func axisValues(lo, hi, step float64) []float64 {
	n := int(math.Floor((hi-lo)/step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

func main() {
	outDir := flag.String("out", "./data/bran", "Output directory for NetCDF files")
	year := flag.Int("year", 1997, "First year to generate")
	months := flag.Int("months", 12, "Number of consecutive months")
	latMin := flag.Float64("lat-min", -34.0, "Minimum latitude")
	latMax := flag.Float64("lat-max", -30.0, "Maximum latitude")
	lonMin := flag.Float64("lon-min", 305.0, "Minimum longitude (0-360 convention)")
	lonMax := flag.Float64("lon-max", 310.0, "Maximum longitude (0-360 convention)")
	resolution := flag.Float64("resolution", 0.1, "Grid resolution in degrees")
	flag.Parse()

	grid := regionGrid{
		LatMin: *latMin, LatMax: *latMax,
		LonMin: *lonMin, LonMax: *lonMax,
		Resolution: *resolution,
	}
	depths := []float64{2.5, 7.5, 12.5, 17.5, 22.5}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	month := time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for m := 0; m < *months; m++ {
		times := dailyOffsets(month)
		tag := fmt.Sprintf("%04d_%02d", month.Year(), int(month.Month()))

		products := []struct {
			prefix, varName string
			depths          []float64
			field           fieldFunc
		}{
			{"ocean_u", "u", depths, uField},
			{"ocean_v", "v", depths, vField},
			{"ocean_eta_t", "eta_t", nil, etaField},
		}
		for _, p := range products {
			path := filepath.Join(*outDir, fmt.Sprintf("%s_%s.nc", p.prefix, tag))
			if err := writeFile(path, p.varName, grid, p.depths, times, p.field); err != nil {
				log.Fatalf("Failed to write %s: %v", path, err)
			}
			log.Printf("Wrote %s (%d time steps)", path, len(times))
		}
		month = month.AddDate(0, 1, 0)
	}
}

type fieldFunc func(day, depth, lat, lon float64) float32

// dailyOffsets returns the day offsets from the time base for every day of
// the given month.
func dailyOffsets(month time.Time) []float64 {
	next := month.AddDate(0, 1, 0)
	out := make([]float64, 0, 31)
	for d := month; d.Before(next); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Sub(timeBase).Hours()/24)
	}
	return out
}

// uField and vField describe a current that rotates with the day of year and
// weakens with depth; amplitudes stay within the default 0-0.5 m/s bins.
func uField(day, depth, lat, lon float64) float32 {
	phase := 2 * math.Pi * math.Mod(day, 365.25) / 365.25
	amp := 0.25 * math.Exp(-depth/50)
	return float32(amp*math.Cos(phase) + 0.05*math.Sin(lat+lon))
}

func vField(day, depth, lat, lon float64) float32 {
	phase := 2 * math.Pi * math.Mod(day, 365.25) / 365.25
	amp := 0.25 * math.Exp(-depth/50)
	return float32(amp*math.Sin(phase) + 0.05*math.Cos(lat-lon))
}

// etaField is a propagating sea level wave plus a seasonal cycle.
func etaField(day, _, lat, lon float64) float32 {
	seasonal := 0.1 * math.Sin(2*math.Pi*math.Mod(day, 365.25)/365.25)
	wave := 0.3 * math.Sin(0.5*lon+0.3*lat+0.2*day)
	return float32(seasonal + wave)
}

// writeFile creates one monthly file: Time x [st_ocean x] lat x lon. Velocity
// components use the BRAN u-grid axis names, eta the t-grid names. The first
// latitude row is masked with the fill value, standing in for land.
func writeFile(path, varName string, grid regionGrid, depths []float64, times []float64, field fieldFunc) error {
	lats := grid.latAxis()
	lons := grid.lonAxis()

	latName, lonName := "yt_ocean", "xt_ocean"
	if varName != "eta_t" {
		latName, lonName = "yu_ocean", "xu_ocean"
	}

	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	timeDim, err := f.AddDim("Time", uint64(len(times)))
	if err != nil {
		return err
	}
	latDim, err := f.AddDim(latName, uint64(len(lats)))
	if err != nil {
		return err
	}
	lonDim, err := f.AddDim(lonName, uint64(len(lons)))
	if err != nil {
		return err
	}

	varDims := []netcdf.Dim{timeDim, latDim, lonDim}
	var depthVar netcdf.Var
	if len(depths) > 0 {
		depthDim, err := f.AddDim("st_ocean", uint64(len(depths)))
		if err != nil {
			return err
		}
		depthVar, err = f.AddVar("st_ocean", netcdf.DOUBLE, []netcdf.Dim{depthDim})
		if err != nil {
			return err
		}
		varDims = []netcdf.Dim{timeDim, depthDim, latDim, lonDim}
	}

	timeVar, err := f.AddVar("Time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	if err != nil {
		return err
	}
	latVar, err := f.AddVar(latName, netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	lonVar, err := f.AddVar(lonName, netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return err
	}
	dataVar, err := f.AddVar(varName, netcdf.FLOAT, varDims)
	if err != nil {
		return err
	}

	if err := timeVar.Attr("units").WriteBytes([]byte(timeUnits)); err != nil {
		return err
	}
	if err := dataVar.Attr("missing_value").WriteFloat32s([]float32{fillVal}); err != nil {
		return err
	}
	if err := f.EndDef(); err != nil {
		return err
	}

	if err := timeVar.WriteFloat64s(times); err != nil {
		return err
	}
	if err := latVar.WriteFloat64s(lats); err != nil {
		return err
	}
	if err := lonVar.WriteFloat64s(lons); err != nil {
		return err
	}
	if len(depths) > 0 {
		if err := depthVar.WriteFloat64s(depths); err != nil {
			return err
		}
	}

	numLevels := len(depths)
	if numLevels == 0 {
		numLevels = 1
	}
	values := make([]float32, 0, len(times)*numLevels*len(lats)*len(lons))
	for _, day := range times {
		for li := 0; li < numLevels; li++ {
			depth := 0.0
			if len(depths) > 0 {
				depth = depths[li]
			}
			for yi, lat := range lats {
				for _, lon := range lons {
					if yi == 0 {
						values = append(values, fillVal)
						continue
					}
					values = append(values, field(day, depth, lat, lon))
				}
			}
		}
	}
	return dataVar.WriteFloat32s(values)
}
