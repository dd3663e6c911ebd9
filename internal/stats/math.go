// Package stats contains the derived-metrics and goal-progress engine.
//
// Every function is a pure, deterministic mapping from inputs to outputs:
// no shared state, no IO, no clock reads. Degenerate inputs (too few
// points, zero denominators, non-positive weights) yield neutral values
// rather than errors so callers can render "no data" states directly.
package stats

import "fmt"

// Point is an (x, y) sample for regression.
type Point struct {
	X float64
	Y float64
}

// RollingAverage computes a trailing mean over the given window. The window
// shrinks at the start of the series instead of padding, so the output has
// the same length as the input. Panics if window is not positive; that is a
// programmer error, not a data condition.
func RollingAverage(values []float64, window int) []float64 {
	if window <= 0 {
		panic(fmt.Sprintf("stats: rolling average window must be > 0, got %d", window))
	}
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// LinearRegressionSlope returns the ordinary-least-squares slope of the
// points. Fewer than 2 points, or points with identical x values, have no
// defined trend and return 0.
func LinearRegressionSlope(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	n := float64(len(points))
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumXX += p.X * p.X
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
