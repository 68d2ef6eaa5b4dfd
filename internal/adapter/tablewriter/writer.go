// Package tablewriter serializes distribution tables and rose data to CSV.
package tablewriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/oceanobs/bran-analysis/internal/domain"
)

// Write serializes a distribution table as CSV with a two-row column header
// (sector names, then sector centers in degrees) and row labels in the first
// column. Cells are formatted with two decimals.
func Write(w io.Writer, table *domain.Table) error {
	cw := csv.NewWriter(w)

	names := make([]string, 0, len(table.Columns)+1)
	names = append(names, "Direction")
	degrees := make([]string, 0, len(table.Columns)+1)
	degrees = append(degrees, "Degrees")
	for _, c := range table.Columns {
		names = append(names, c.Name)
		degrees = append(degrees, c.Degrees)
	}
	if err := cw.Write(names); err != nil {
		return err
	}
	if err := cw.Write(degrees); err != nil {
		return err
	}

	for i, label := range table.RowLabels {
		row := make([]string, 0, len(table.Columns)+1)
		row = append(row, label)
		for _, v := range table.Cells[i] {
			row = append(row, strconv.FormatFloat(v, 'f', 2, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteRose serializes rose plot input data: one (time, direction, speed)
// row per sample, for an external renderer.
func WriteRose(w io.Writer, points []domain.RosePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "direction_deg", "speed_ms"}); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{
			p.Time.UTC().Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(p.Direction, 'f', 4, 64),
			strconv.FormatFloat(p.Speed, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
