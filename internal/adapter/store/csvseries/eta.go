package csvseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

// EtaMetadata describes an eta point-extraction output: the station's
// nominal coordinates and the grid spacing used for the buffer offsets.
type EtaMetadata struct {
	Station string
	Lat     float64
	Lon     float64
	DeltaX  float64
	DeltaY  float64
}

// WriteEtaSeries writes a sea-surface-height point series with a
// human-readable metadata preamble before the CSV body. Each row carries the
// values of the buffer points (point_0 is the station's nearest grid point,
// point_k is offset by k grid steps). NaN values are written as empty cells.
func WriteEtaSeries(w io.Writer, meta EtaMetadata, times []time.Time, points [][]float64) error {
	if len(times) != len(points) {
		return fmt.Errorf("times (%d) and points (%d) length mismatch", len(times), len(points))
	}

	fmt.Fprintf(w, "Metadata:\n")
	fmt.Fprintf(w, "Station: %s\n", meta.Station)
	fmt.Fprintf(w, "Coordinates (Lat, Lon): %g, %g\n", meta.Lat, meta.Lon)
	fmt.Fprintf(w, "Delta X: %g, Delta Y: %g\n", meta.DeltaX, meta.DeltaY)
	fmt.Fprintf(w, "\nData:\n")

	numPoints := 0
	if len(points) > 0 {
		numPoints = len(points[0])
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, numPoints+1)
	header = append(header, "date")
	for k := 0; k < numPoints; k++ {
		header = append(header, fmt.Sprintf("point_%d", k))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, numPoints+1)
	for i, t := range times {
		if len(points[i]) != numPoints {
			return fmt.Errorf("row %d has %d points, expected %d", i, len(points[i]), numPoints)
		}
		row[0] = t.UTC().Format("2006-01-02 15:04:05")
		for k, v := range points[i] {
			if math.IsNaN(v) {
				row[k+1] = ""
			} else {
				row[k+1] = strconv.FormatFloat(v, 'f', 6, 64)
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
