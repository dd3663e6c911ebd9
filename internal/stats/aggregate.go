package stats

import (
	"sort"
	"time"

	"trackos/internal/clock"
	"trackos/internal/model"
)

// DayValue is one tracking-day bucket of a daily series.
type DayValue struct {
	Day       string
	Timestamp int64
	Value     float64
}

// SumByDay buckets entries into tracking days and sums values within each
// day, for cumulative metrics such as calories. Days are returned in
// ascending key order.
func SumByDay(entries []model.Entry, dayBoundaryHour int) []DayValue {
	totals := map[string]float64{}
	for _, e := range entries {
		totals[clock.DayKey(e.Timestamp, dayBoundaryHour)] += e.Value
	}
	out := make([]DayValue, 0, len(totals))
	for day, total := range totals {
		out = append(out, DayValue{Day: day, Value: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// LastByDay buckets entries into tracking days and keeps the latest sample
// of each day, for point-in-time metrics such as body weight. Days are
// returned in ascending key order.
func LastByDay(entries []model.Entry, dayBoundaryHour int) []DayValue {
	latest := map[string]DayValue{}
	for _, e := range entries {
		day := clock.DayKey(e.Timestamp, dayBoundaryHour)
		prev, ok := latest[day]
		if !ok || e.Timestamp > prev.Timestamp {
			latest[day] = DayValue{Day: day, Timestamp: e.Timestamp, Value: e.Value}
		}
	}
	out := make([]DayValue, 0, len(latest))
	for _, v := range latest {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// SumSeries returns exactly n tracking-day buckets ending at endDay
// (inclusive), zero-filled for days without entries.
func SumSeries(entries []model.Entry, endDay string, n, dayBoundaryHour int) ([]DayValue, error) {
	end, err := time.ParseInLocation("2006-01-02", endDay, time.Local)
	if err != nil {
		return nil, err
	}
	totals := map[string]float64{}
	for _, d := range SumByDay(entries, dayBoundaryHour) {
		totals[d.Day] = d.Value
	}
	out := make([]DayValue, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i).Format("2006-01-02")
		out = append(out, DayValue{Day: day, Value: totals[day]})
	}
	return out, nil
}

// WeeklyWorkoutCounts counts workout sessions per tracking-week key.
func WeeklyWorkoutCounts(workouts []model.Workout, weekStartsOn, dayBoundaryHour int) map[string]int {
	counts := map[string]int{}
	for _, w := range workouts {
		counts[clock.WeekKey(w.StartedAt, weekStartsOn, dayBoundaryHour)]++
	}
	return counts
}

// CountInWeek counts workout sessions whose week key matches weekKey.
func CountInWeek(workouts []model.Workout, weekKey string, weekStartsOn, dayBoundaryHour int) int {
	n := 0
	for _, w := range workouts {
		if clock.WeekKey(w.StartedAt, weekStartsOn, dayBoundaryHour) == weekKey {
			n++
		}
	}
	return n
}

// WeekdayWeekendAverages partitions daily totals by the calendar weekday of
// the bucket date and averages each partition independently. Saturday and
// Sunday count as weekend. Empty partitions average to 0.
func WeekdayWeekendAverages(daily []DayValue) (weekdayAvg, weekendAvg float64) {
	var wkSum, weSum float64
	var wkCount, weCount int
	for _, d := range daily {
		// Noon avoids any ambiguity at DST transitions.
		date, err := time.ParseInLocation("2006-01-02 15", d.Day+" 12", time.Local)
		if err != nil {
			continue
		}
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weSum += d.Value
			weCount++
		} else {
			wkSum += d.Value
			wkCount++
		}
	}
	if wkCount > 0 {
		weekdayAvg = wkSum / float64(wkCount)
	}
	if weCount > 0 {
		weekendAvg = weSum / float64(weCount)
	}
	return weekdayAvg, weekendAvg
}

// maxStreakWeeks caps the streak walk-back at two years of history.
const maxStreakWeeks = 104

// WeekStreak counts consecutive tracking weeks, starting at the week
// containing now, whose workout count meets or exceeds target. The walk
// stops at the first failing week and never looks back further than
// maxStreakWeeks.
func WeekStreak(workouts []model.Workout, target float64, nowMs int64, weekStartsOn, dayBoundaryHour int) int {
	counts := WeeklyWorkoutCounts(workouts, weekStartsOn, dayBoundaryHour)
	streak := 0
	cursor := time.UnixMilli(nowMs).In(time.Local)
	for i := 0; i < maxStreakWeeks; i++ {
		key := clock.WeekKey(cursor.UnixMilli(), weekStartsOn, dayBoundaryHour)
		if float64(counts[key]) >= target {
			streak++
		} else {
			break
		}
		cursor = cursor.AddDate(0, 0, -7)
	}
	return streak
}

// TrendDelta returns the change between the last value and the value span
// positions earlier (clamped to the start of the series). ok is false when
// fewer than 2 values exist.
func TrendDelta(values []float64, span int) (delta float64, ok bool) {
	if len(values) < 2 {
		return 0, false
	}
	base := len(values) - 1 - span
	if base < 0 {
		base = 0
	}
	return values[len(values)-1] - values[base], true
}

// Direction classifies a delta as "up", "down", or "flat" against a
// symmetric threshold.
func Direction(delta, threshold float64) string {
	switch {
	case delta > threshold:
		return "up"
	case delta < -threshold:
		return "down"
	default:
		return "flat"
	}
}

// DeltaVsRollingAverage returns how far the last value sits from the
// trailing rolling average ending at the same position.
func DeltaVsRollingAverage(values []float64, window int) (delta float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	avg := RollingAverage(values, window)
	return values[len(values)-1] - avg[len(avg)-1], true
}

// SpotlightChange summarizes recent strength movement: the latest
// session-best score and its percent change against a baseline, where the
// baseline is the first point inside the trailing 28 days (or the first
// point overall when none are that recent). ok is false for an empty
// series.
func SpotlightChange(series []ScorePoint, nowMs int64) (latest, changePct float64, ok bool) {
	if len(series) == 0 {
		return 0, 0, false
	}
	latest = series[len(series)-1].Score
	cutoff := nowMs - 28*msPerDay
	baseline := series[0].Score
	for _, p := range series {
		if p.Timestamp >= cutoff {
			baseline = p.Score
			break
		}
	}
	if baseline != 0 {
		changePct = (latest - baseline) / baseline * 100
	}
	return latest, changePct, true
}
