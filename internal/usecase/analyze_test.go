package usecase

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oceanobs/bran-analysis/internal/domain"
)

func writeCurrentCSV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "currents.csv")
	content := strings.Join([]string{
		"time,st_ocean,u,v",
		"2000-01-15 00:00:00,2.5,0.08,0.0",  // E, winter (DJF)
		"2000-01-16 00:00:00,2.5,0.0,0.12",  // N
		"2000-07-15 00:00:00,2.5,-0.08,0.0", // W, winter excluded
		"2000-07-16 00:00:00,2.5,0.0,-0.12", // S
		"2000-07-15 00:00:00,7.5,0.3,0.4",   // other depth level
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRunAnalysis(t *testing.T) {
	dir := t.TempDir()
	input := writeCurrentCSV(t, dir)
	outDir := filepath.Join(dir, "out")

	result, err := RunAnalysis(AnalysisRequest{
		InputCSV:  input,
		OutputDir: outDir,
		Depth:     2.5,
		Periods:   []string{"all", "DJF"},
		Mode:      domain.ModeBins,
	})
	if err != nil {
		t.Fatalf("RunAnalysis: %v", err)
	}

	if len(result.Tables) != 2 || len(result.RoseFiles) != 2 {
		t.Fatalf("expected 2 tables and 2 rose files, got %d and %d",
			len(result.Tables), len(result.RoseFiles))
	}

	all, err := os.ReadFile(filepath.Join(outDir, "distribution_all.csv"))
	if err != nil {
		t.Fatalf("read all table: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(all)), "\n")
	if !strings.HasPrefix(lines[0], "Direction,N,") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	// 4 observations at depth 2.5, all in range: Total Omni 100.00.
	var totalLine string
	for _, line := range lines {
		if strings.HasPrefix(line, "Total,") {
			totalLine = line
		}
	}
	if totalLine == "" {
		t.Fatal("no Total row in output")
	}
	if !strings.HasSuffix(totalLine, ",100.00") {
		t.Errorf("Total row should end at 100.00 Omni: %s", totalLine)
	}

	djf, err := os.ReadFile(filepath.Join(outDir, "rose_DJF.csv"))
	if err != nil {
		t.Fatalf("read DJF rose: %v", err)
	}
	roseLines := strings.Split(strings.TrimSpace(string(djf)), "\n")
	// Header plus the two January samples; the July one is filtered out.
	if len(roseLines) != 3 {
		t.Errorf("expected 3 rose lines for DJF, got %d: %v", len(roseLines), roseLines)
	}
}

func TestRunAnalysisInvalidPeriod(t *testing.T) {
	dir := t.TempDir()
	input := writeCurrentCSV(t, dir)

	_, err := RunAnalysis(AnalysisRequest{
		InputCSV:  input,
		OutputDir: filepath.Join(dir, "out"),
		Depth:     2.5,
		Periods:   []string{"Foobar"},
	})
	if err == nil {
		t.Fatal("expected an error for an unknown period")
	}
}

func TestValidateRequiresPaths(t *testing.T) {
	req := AnalysisRequest{}
	if _, err := req.Validate(); err == nil {
		t.Error("expected an error for empty input path")
	}
	req = AnalysisRequest{InputCSV: "in.csv"}
	if _, err := req.Validate(); err == nil {
		t.Error("expected an error for empty output directory")
	}
}
