package domain

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrInvalidConfiguration indicates bad speed thresholds or direction bins.
var ErrInvalidConfiguration = fmt.Errorf("invalid configuration")

// Mode selects between binned and cumulative distributions.
type Mode int

const (
	// ModeBins produces per-bin (non-cumulative) percentages.
	ModeBins Mode = iota
	// ModeAccumulate produces running cumulative percentages across
	// increasing speed bins.
	ModeAccumulate
)

// ParseMode parses "bins" or "accumulate".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "bins":
		return ModeBins, nil
	case "accumulate":
		return ModeAccumulate, nil
	}
	return ModeBins, fmt.Errorf("%w: unknown mode %q (use bins or accumulate)", ErrInvalidConfiguration, s)
}

// String returns the flag-level name of the mode.
func (m Mode) String() string {
	if m == ModeAccumulate {
		return "accumulate"
	}
	return "bins"
}

// sectorNames are the 12 compass labels for the 30°-wide direction sectors
// centered on 0°, 30°, ..., 330°.
var sectorNames = [numSectors]string{
	"N", "NNE", "ENE", "E", "ESE", "SSE", "S", "SSW", "WSW", "W", "WNW", "NNW",
}

const numSectors = 12

// DefaultSpeedThresholds returns the default speed bin edges: 0.00 to 0.50
// m/s in 0.05 steps.
func DefaultSpeedThresholds() []float64 {
	edges := make([]float64, 11)
	for i := range edges {
		edges[i] = float64(i) * 0.05
	}
	return edges
}

// DefaultDirectionBins returns the default sector centers plus the closing
// edge: 0 to 360 degrees in 30° steps.
func DefaultDirectionBins() []float64 {
	edges := make([]float64, numSectors+1)
	for i := range edges {
		edges[i] = float64(i) * 30.0
	}
	return edges
}

// TableConfig configures a distribution table build. Zero-value fields take
// the defaults above.
type TableConfig struct {
	SpeedThresholds []float64
	DirectionBins   []float64
	Period          *Period // nil means no period filter.
	Mode            Mode
}

// ColumnLabel is a two-level column header: sector name plus its center in
// degrees. The Omni aggregate column has an empty Degrees level.
type ColumnLabel struct {
	Name    string
	Degrees string
}

// Table is a finished distribution table: one row per speed bin plus the
// Total, Mean and Maximum summary rows; one column per direction sector plus
// the Omni aggregate. Cell values are percentages rounded to 2 decimals.
type Table struct {
	RowLabels []string
	Columns   []ColumnLabel
	Cells     [][]float64
}

// NumBinRows returns the number of speed-bin rows (excluding summary rows).
func (t *Table) NumBinRows() int {
	return len(t.RowLabels) - 3
}

// Cell looks up a value by row label and column name.
func (t *Table) Cell(rowLabel, colName string) (float64, bool) {
	row := -1
	for i, l := range t.RowLabels {
		if l == rowLabel {
			row = i
			break
		}
	}
	if row < 0 {
		return 0, false
	}
	for j, c := range t.Columns {
		if c.Name == colName {
			return t.Cells[row][j], true
		}
	}
	return 0, false
}

// BuildDistributionTable converts the observations at the given depth level
// (optionally filtered to a period) into a percentage-occurrence table keyed
// by speed bin × direction sector.
//
// Percentages are taken against the full filtered observation count, so
// observations whose speed falls outside the threshold range still dilute
// the binned percentages.
func BuildDistributionTable(s Series, depth float64, cfg TableConfig) (*Table, error) {
	thresholds := cfg.SpeedThresholds
	if thresholds == nil {
		thresholds = DefaultSpeedThresholds()
	}
	dirBins := cfg.DirectionBins
	if dirBins == nil {
		dirBins = DefaultDirectionBins()
	}
	if err := validateThresholds(thresholds); err != nil {
		return nil, err
	}
	if err := validateDirectionBins(dirBins); err != nil {
		return nil, err
	}

	filtered := s.FilterDepth(depth)
	if cfg.Period != nil {
		filtered = filtered.FilterPeriod(*cfg.Period)
	}

	numBins := len(thresholds) - 1
	counts := make([][]int, numBins)
	for i := range counts {
		counts[i] = make([]int, numSectors)
	}

	for _, o := range filtered {
		bin := speedBinIndex(thresholds, o.Speed)
		if bin < 0 {
			// Out-of-range speeds are excluded from the table but still
			// count toward the percentage divisor.
			continue
		}
		counts[bin][sectorIndex(o.Direction)]++
	}

	// Percentage of all filtered observations, per cell.
	cells := make([][]float64, numBins)
	for i := range cells {
		cells[i] = make([]float64, numSectors)
		if len(filtered) == 0 {
			continue
		}
		for j, n := range counts[i] {
			cells[i][j] = float64(n) * 100.0 / float64(len(filtered))
		}
	}

	// Cumulative sum runs over unrounded percentages.
	if cfg.Mode == ModeAccumulate {
		for i := 1; i < numBins; i++ {
			floats.Add(cells[i], cells[i-1])
		}
	}

	for i := range cells {
		for j := range cells[i] {
			cells[i][j] = round2(cells[i][j])
		}
	}

	// Omni column: row-wise sum across the 12 sectors.
	for i := range cells {
		cells[i] = append(cells[i], round2(floats.Sum(cells[i])))
	}

	// Total row: column-wise sum across the speed-bin rows.
	total := make([]float64, numSectors+1)
	for j := range total {
		for i := range cells {
			total[j] += cells[i][j]
		}
		total[j] = round2(total[j])
	}

	// Mean and Maximum rows cover the speed-bin rows only; their Omni cells
	// derive from the row's own 12 sector values.
	mean := make([]float64, numSectors+1)
	maximum := make([]float64, numSectors+1)
	col := make([]float64, numBins)
	for j := 0; j < numSectors; j++ {
		for i := range cells {
			col[i] = cells[i][j]
		}
		mean[j] = round2(stat.Mean(col, nil))
		maximum[j] = floats.Max(col)
	}
	mean[numSectors] = round2(stat.Mean(mean[:numSectors], nil))
	maximum[numSectors] = floats.Max(maximum[:numSectors])

	rows := make([][]float64, 0, numBins+3)
	rows = append(rows, cells...)
	rows = append(rows, total, mean, maximum)

	labels := make([]string, 0, numBins+3)
	for i := 0; i < numBins; i++ {
		lo := formatEdge(thresholds[i])
		hi := formatEdge(thresholds[i+1])
		if cfg.Mode == ModeAccumulate {
			labels = append(labels, "< "+hi)
		} else {
			labels = append(labels, lo+"-"+hi)
		}
	}
	labels = append(labels, "Total", "Mean", "Maximum")

	columns := make([]ColumnLabel, 0, numSectors+1)
	for j := 0; j < numSectors; j++ {
		columns = append(columns, ColumnLabel{
			Name:    sectorNames[j],
			Degrees: formatEdge(dirBins[j]) + "°",
		})
	}
	columns = append(columns, ColumnLabel{Name: "Omni"})

	return &Table{
		RowLabels: labels,
		Columns:   columns,
		Cells:     rows,
	}, nil
}

// sectorIndex assigns a direction in [0, 360) to one of the 12 sectors.
// Sector boundaries sit 15° below the centers, so sector j spans
// [30j−15°, 30j+15°). The 0°-centered sector absorbs the wrap-around range
// [345°, 360°).
func sectorIndex(direction float64) int {
	if direction >= 345.0 {
		return 0
	}
	return int((direction + 15.0) / 30.0)
}

// speedBinIndex returns the half-open interval [edge_i, edge_i+1) containing
// speed, or -1 when speed falls outside the threshold range.
func speedBinIndex(thresholds []float64, speed float64) int {
	for i := 0; i < len(thresholds)-1; i++ {
		if speed >= thresholds[i] && speed < thresholds[i+1] {
			return i
		}
	}
	return -1
}

func validateThresholds(thresholds []float64) error {
	if len(thresholds) < 2 {
		return fmt.Errorf("%w: need at least 2 speed thresholds, got %d", ErrInvalidConfiguration, len(thresholds))
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return fmt.Errorf("%w: speed thresholds must be strictly increasing", ErrInvalidConfiguration)
		}
	}
	return nil
}

func validateDirectionBins(bins []float64) error {
	if len(bins) != numSectors+1 {
		return fmt.Errorf("%w: need exactly %d direction bin edges, got %d", ErrInvalidConfiguration, numSectors+1, len(bins))
	}
	for i, b := range bins {
		if b != float64(i)*30.0 {
			return fmt.Errorf("%w: direction bins must span 0..360 in 30° steps", ErrInvalidConfiguration)
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100.0) / 100.0
}

// formatEdge renders a bin edge the shortest way ("0", "0.05", "0.1"),
// matching the row-label convention of the source data products.
func formatEdge(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64)
}
