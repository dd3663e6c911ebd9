package stats

import (
	"math"
	"testing"

	"trackos/internal/model"
)

func TestProgressLowerIsBetter(t *testing.T) {
	frac, ok := Progress(200, 180, 150, model.AtMost)
	if !ok {
		t.Fatal("expected ok")
	}
	if !almostEqual(frac, 0.4, 1e-9) {
		t.Fatalf("progress = %v, want 0.4", frac)
	}
}

func TestProgressHigherIsBetter(t *testing.T) {
	frac, ok := Progress(100, 150, 200, model.AtLeast)
	if !ok {
		t.Fatal("expected ok")
	}
	if !almostEqual(frac, 0.5, 1e-9) {
		t.Fatalf("progress = %v, want 0.5", frac)
	}
}

func TestProgressClamps(t *testing.T) {
	if frac, _ := Progress(200, 140, 150, model.AtMost); frac != 1 {
		t.Fatalf("overshoot should clamp to 1, got %v", frac)
	}
	if frac, _ := Progress(200, 210, 150, model.AtMost); frac != 0 {
		t.Fatalf("regression should clamp to 0, got %v", frac)
	}
}

func TestProgressZeroDenominator(t *testing.T) {
	if frac, _ := Progress(150, 149, 150, model.AtMost); frac != 1 {
		t.Fatalf("start=target with current meeting comparator: got %v, want 1", frac)
	}
	if frac, _ := Progress(150, 151, 150, model.AtMost); frac != 0 {
		t.Fatalf("start=target with current missing comparator: got %v, want 0", frac)
	}
	if frac, _ := Progress(150, 151, 150, model.AtLeast); frac != 1 {
		t.Fatalf("start=target AtLeast met: got %v, want 1", frac)
	}
	if frac, _ := Progress(150, 149, 150, model.AtLeast); frac != 0 {
		t.Fatalf("start=target AtLeast missed: got %v, want 0", frac)
	}
}

func TestProgressNonFiniteInputs(t *testing.T) {
	if _, ok := Progress(math.NaN(), 180, 150, model.AtMost); ok {
		t.Fatal("NaN start should not be ok")
	}
	if _, ok := Progress(200, math.Inf(1), 150, model.AtMost); ok {
		t.Fatal("infinite current should not be ok")
	}
}

func TestProjectedDateApproachingTarget(t *testing.T) {
	// Losing one unit per day toward 180 from 190: five more days.
	var pts []TimePoint
	t0 := int64(1_700_000_000_000)
	for i := 0; i < 6; i++ {
		pts = append(pts, TimePoint{Timestamp: t0 + int64(i)*msPerDay, Value: 190 - float64(i)})
	}
	last := pts[len(pts)-1]
	got, ok := ProjectedDate(pts, 180)
	if !ok {
		t.Fatal("expected a projection")
	}
	if got <= last.Timestamp {
		t.Fatalf("projection %d not after last point %d", got, last.Timestamp)
	}
	want := last.Timestamp + 5*msPerDay
	if got < want-1000 || got > want+1000 {
		t.Fatalf("projection = %d, want about %d", got, want)
	}
}

func TestProjectedDateMovingAway(t *testing.T) {
	// Trending upward while targeting a lower value: no projection.
	pts := []TimePoint{
		{Timestamp: 0, Value: 190},
		{Timestamp: msPerDay, Value: 191},
		{Timestamp: 2 * msPerDay, Value: 192},
	}
	if _, ok := ProjectedDate(pts, 180); ok {
		t.Fatal("moving-away trend should not project")
	}
}

func TestProjectedDateInsufficientData(t *testing.T) {
	if _, ok := ProjectedDate(nil, 180); ok {
		t.Fatal("empty series should not project")
	}
	if _, ok := ProjectedDate([]TimePoint{{Timestamp: 0, Value: 190}}, 180); ok {
		t.Fatal("single point should not project")
	}
	// Non-finite values are filtered before the count check.
	pts := []TimePoint{
		{Timestamp: 0, Value: math.NaN()},
		{Timestamp: msPerDay, Value: 190},
	}
	if _, ok := ProjectedDate(pts, 180); ok {
		t.Fatal("series with one finite point should not project")
	}
}

func TestProjectedDateFlatSeries(t *testing.T) {
	pts := []TimePoint{
		{Timestamp: 0, Value: 190},
		{Timestamp: msPerDay, Value: 190},
		{Timestamp: 2 * msPerDay, Value: 190},
	}
	if _, ok := ProjectedDate(pts, 180); ok {
		t.Fatal("zero slope should not project")
	}
}

func TestProjectedDateSortsUnorderedInput(t *testing.T) {
	pts := []TimePoint{
		{Timestamp: 2 * msPerDay, Value: 188},
		{Timestamp: 0, Value: 190},
		{Timestamp: msPerDay, Value: 189},
	}
	got, ok := ProjectedDate(pts, 180)
	if !ok {
		t.Fatal("expected a projection")
	}
	if got <= 2*msPerDay {
		t.Fatalf("projection %d should be after the chronologically last point", got)
	}
}
