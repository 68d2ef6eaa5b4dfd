// Package domain contains the current-analysis domain model: observation
// series, period filters, the distribution table and rose data preparation.
package domain

import (
	"math"
	"time"
)

// Observation is a single timestamped current sample at one model depth
// level, with speed in m/s and direction-of-flow in degrees [0, 360).
type Observation struct {
	Time      time.Time
	Depth     float64 // Model level (st_ocean) in meters.
	Speed     float64
	Direction float64
}

// Series is a time-ordered sequence of observations, possibly spanning
// several depth levels.
type Series []Observation

// SpeedDirection derives current speed and direction from zonal (u) and
// meridional (v) velocity components. Direction is normalized to [0, 360).
func SpeedDirection(u, v float64) (speed, direction float64) {
	speed = math.Hypot(u, v)
	direction = math.Mod(Rad2Deg(math.Atan2(v, u))+360.0, 360.0)
	return speed, direction
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// FilterDepth returns the observations at exactly the given depth level.
func (s Series) FilterDepth(depth float64) Series {
	out := make(Series, 0, len(s))
	for _, o := range s {
		if o.Depth == depth {
			out = append(out, o)
		}
	}
	return out
}

// FilterPeriod returns the observations whose calendar month falls inside p.
func (s Series) FilterPeriod(p Period) Series {
	out := make(Series, 0, len(s))
	for _, o := range s {
		if p.Contains(o.Time) {
			out = append(out, o)
		}
	}
	return out
}
