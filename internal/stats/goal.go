package stats

import (
	"math"
	"sort"

	"trackos/internal/model"
)

const msPerDay = 24 * 60 * 60 * 1000

// TimePoint is a metric value at an instant (milliseconds).
type TimePoint struct {
	Timestamp int64
	Value     float64
}

// Progress returns the normalized [0, 1] fraction of distance traveled
// from start toward target. For AtMost goals lower values are better; for
// AtLeast goals higher values are better. When start equals target the
// fraction is 1 if current already satisfies the comparator, else 0.
// ok is false when any input is non-finite.
func Progress(start, current, target float64, cmp model.Comparator) (fraction float64, ok bool) {
	if !isFinite(start) || !isFinite(current) || !isFinite(target) {
		return 0, false
	}
	if cmp == model.AtMost {
		denom := start - target
		if denom == 0 {
			if current <= target {
				return 1, true
			}
			return 0, true
		}
		return clamp((start-current)/denom, 0, 1), true
	}
	denom := target - start
	if denom == 0 {
		if current >= target {
			return 1, true
		}
		return 0, true
	}
	return clamp((current-start)/denom, 0, 1), true
}

// ProjectedDate extrapolates when a series will reach target by fitting a
// regression line over days since the first point. ok is false when fewer
// than 2 finite points remain, when the series has no trend, or when the
// trend moves away from the target (negative days-to-target). The goal's
// comparator needs no explicit branching here: a moving-away trend is
// caught by the negative-days guard.
func ProjectedDate(points []TimePoint, target float64) (tsMs int64, ok bool) {
	pts := make([]TimePoint, 0, len(points))
	for _, p := range points {
		if isFinite(float64(p.Timestamp)) && isFinite(p.Value) {
			pts = append(pts, p)
		}
	}
	if len(pts) < 2 {
		return 0, false
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Timestamp < pts[j].Timestamp })

	t0 := pts[0].Timestamp
	reg := make([]Point, len(pts))
	for i, p := range pts {
		reg[i] = Point{X: float64(p.Timestamp-t0) / msPerDay, Y: p.Value}
	}
	slopePerDay := LinearRegressionSlope(reg)
	if slopePerDay == 0 {
		return 0, false
	}

	last := pts[len(pts)-1]
	daysToTarget := (target - last.Value) / slopePerDay
	if !isFinite(daysToTarget) || daysToTarget < 0 {
		return 0, false
	}
	projected := float64(last.Timestamp) + daysToTarget*msPerDay
	if !isFinite(projected) {
		return 0, false
	}
	return int64(projected), true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
