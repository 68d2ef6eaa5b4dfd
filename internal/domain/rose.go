package domain

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// RosePoint is one (direction, speed) sample fed to an external rose
// renderer.
type RosePoint struct {
	Time      time.Time
	Direction float64
	Speed     float64
}

// BuildRoseData extracts the (direction, speed) sequence for a rose diagram
// at the given depth level, optionally filtered to a period and pre-averaged
// over a fixed resampling window (e.g. time.Hour). With window zero the raw
// samples are returned in chronological order.
//
// Window averages are plain arithmetic means of speed and direction per
// bucket; direction is not averaged circularly, matching the source data
// products.
func BuildRoseData(s Series, depth float64, period *Period, window time.Duration) []RosePoint {
	filtered := s.FilterDepth(depth)
	if period != nil {
		filtered = filtered.FilterPeriod(*period)
	}

	if window <= 0 {
		points := make([]RosePoint, len(filtered))
		for i, o := range filtered {
			points[i] = RosePoint{Time: o.Time, Direction: o.Direction, Speed: o.Speed}
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
		return points
	}

	type bucket struct {
		speeds     []float64
		directions []float64
	}
	buckets := make(map[time.Time]*bucket)
	for _, o := range filtered {
		key := o.Time.Truncate(window)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.speeds = append(b.speeds, o.Speed)
		b.directions = append(b.directions, o.Direction)
	}

	points := make([]RosePoint, 0, len(buckets))
	for key, b := range buckets {
		points = append(points, RosePoint{
			Time:      key,
			Direction: stat.Mean(b.directions, nil),
			Speed:     stat.Mean(b.speeds, nil),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points
}
