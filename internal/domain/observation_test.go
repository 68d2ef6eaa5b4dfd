package domain

import (
	"math"
	"testing"
	"time"
)

// TestSpeedDirection checks derivation of speed and direction from the
// zonal/meridional velocity components across all quadrants.
func TestSpeedDirection(t *testing.T) {
	tests := []struct {
		u, v      float64
		speed     float64
		direction float64
	}{
		{1, 0, 1, 0},
		{0, 1, 1, 90},
		{-1, 0, 1, 180},
		{0, -1, 1, 270},
		{0.3, 0.4, 0.5, 53.1301},
		{-0.3, -0.4, 0.5, 233.1301},
	}

	for _, tt := range tests {
		speed, direction := SpeedDirection(tt.u, tt.v)
		if math.Abs(speed-tt.speed) > 1e-9 {
			t.Errorf("SpeedDirection(%.2f, %.2f): speed expected %.4f, got %.10f", tt.u, tt.v, tt.speed, speed)
		}
		if math.Abs(direction-tt.direction) > 1e-4 {
			t.Errorf("SpeedDirection(%.2f, %.2f): direction expected %.4f, got %.6f", tt.u, tt.v, tt.direction, direction)
		}
		if direction < 0 || direction >= 360 {
			t.Errorf("direction %.4f outside [0, 360)", direction)
		}
	}
}

// TestFilterDepth checks exact-equality depth filtering.
func TestFilterDepth(t *testing.T) {
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Series{
		{Time: base, Depth: 2.5, Speed: 0.1, Direction: 0},
		{Time: base, Depth: 7.5, Speed: 0.2, Direction: 90},
		{Time: base, Depth: 2.5, Speed: 0.3, Direction: 180},
	}

	got := s.FilterDepth(2.5)
	if len(got) != 2 {
		t.Fatalf("FilterDepth(2.5): expected 2 observations, got %d", len(got))
	}
	for _, o := range got {
		if o.Depth != 2.5 {
			t.Errorf("unexpected depth %.1f after filtering", o.Depth)
		}
	}

	if len(s.FilterDepth(5.0)) != 0 {
		t.Error("FilterDepth(5.0): expected empty result")
	}
}
