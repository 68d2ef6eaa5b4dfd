// Package usecase orchestrates the analysis and extraction pipelines.
package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oceanobs/bran-analysis/internal/adapter/store/csvseries"
	"github.com/oceanobs/bran-analysis/internal/adapter/tablewriter"
	"github.com/oceanobs/bran-analysis/internal/domain"
	"github.com/oceanobs/bran-analysis/internal/log"
)

// AnalysisRequest describes one analysis run: a point current CSV in, one
// distribution table and one rose data file out per requested period.
type AnalysisRequest struct {
	InputCSV  string
	OutputDir string

	// Depth is the model level (st_ocean) to filter on, matched exactly.
	Depth float64

	// Periods holds period labels: season codes, month names, or "all" /
	// "" for the unfiltered dataset.
	Periods []string

	Mode            domain.Mode
	SpeedThresholds []float64 // nil means defaults.

	// RoseWindow pre-averages rose samples over fixed buckets (0 = raw).
	RoseWindow time.Duration
}

// AnalysisResult lists the files written.
type AnalysisResult struct {
	Tables    []string
	RoseFiles []string
}

// Validate checks the request and resolves period labels, failing fast
// before any data is read.
func (r *AnalysisRequest) Validate() ([]*domain.Period, error) {
	if r.InputCSV == "" {
		return nil, fmt.Errorf("input CSV path is required")
	}
	if r.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if r.RoseWindow < 0 {
		return nil, fmt.Errorf("rose window must not be negative")
	}

	labels := r.Periods
	if len(labels) == 0 {
		labels = []string{"all"}
	}
	periods := make([]*domain.Period, len(labels))
	for i, label := range labels {
		if label == "" || label == "all" {
			continue
		}
		p, err := domain.ParsePeriod(label)
		if err != nil {
			return nil, err
		}
		periods[i] = &p
	}
	return periods, nil
}

// RunAnalysis loads the current series once and writes a distribution table
// and rose data file for every requested period. Table builds are pure and
// independent per period.
func RunAnalysis(req AnalysisRequest) (*AnalysisResult, error) {
	periods, err := req.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	//nolint:gosec // G301: Analysis outputs are world-readable by design.
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	log.Infof("Reading current data from %s", req.InputCSV)
	series, err := csvseries.LoadCurrentSeries(req.InputCSV)
	if err != nil {
		return nil, err
	}
	log.Infof("Loaded %d observations", len(series))

	result := &AnalysisResult{}
	for _, period := range periods {
		label := "all"
		if period != nil {
			label = period.Label()
		}

		table, err := domain.BuildDistributionTable(series, req.Depth, domain.TableConfig{
			SpeedThresholds: req.SpeedThresholds,
			Period:          period,
			Mode:            req.Mode,
		})
		if err != nil {
			return nil, fmt.Errorf("distribution table for period %s: %w", label, err)
		}

		tablePath := filepath.Join(req.OutputDir, fmt.Sprintf("distribution_%s.csv", label))
		if err := writeTo(tablePath, func(f *os.File) error {
			return tablewriter.Write(f, table)
		}); err != nil {
			return nil, err
		}
		log.Infof("Saved distribution table: %s", tablePath)
		result.Tables = append(result.Tables, tablePath)

		points := domain.BuildRoseData(series, req.Depth, period, req.RoseWindow)
		rosePath := filepath.Join(req.OutputDir, fmt.Sprintf("rose_%s.csv", label))
		if err := writeTo(rosePath, func(f *os.File) error {
			return tablewriter.WriteRose(f, points)
		}); err != nil {
			return nil, err
		}
		log.Infof("Saved rose data: %s", rosePath)
		result.RoseFiles = append(result.RoseFiles, rosePath)
	}

	return result, nil
}

func writeTo(path string, write func(*os.File) error) error {
	//nolint:gosec // G304: Output path derives from the command line.
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
