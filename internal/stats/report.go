package stats

import (
	"context"
	"fmt"
	"time"

	"trackos/internal/clock"
	"trackos/internal/model"
	"trackos/internal/store"
)

// Weight deltas inside this band render as "flat".
const flatWeightThreshold = 0.2

// Spotlight summarizes recent movement for a pinned exercise.
type Spotlight struct {
	ExerciseID string
	Name       string
	HasData    bool
	Latest     float64
	ChangePct  float64
}

// GoalProgress is a goal with its computed progress and projection.
type GoalProgress struct {
	Goal        model.Goal
	HasProgress bool
	Progress    float64
	Subtitle    string
	HasEstimate bool
	EstimateMs  int64
}

// Report contains precomputed data for dashboard and insights rendering.
// Building it reads one snapshot of the store; callers rebuild it whenever
// the underlying collections change.
type Report struct {
	TodayKey string
	WeekKey  string

	TodayCalories float64
	CalorieTarget float64
	CalorieBars   []DayValue
	WeekdayAvg    float64
	WeekendAvg    float64

	HasWeightToday bool
	WeightToday    float64
	HasWeightDelta bool
	WeightDelta7   float64
	HasTrend       bool
	TrendPerWeek   float64
	HasDelta14     bool
	Delta14        float64
	Direction      string
	WeightSeries   []float64

	WeekWorkoutCount int
	HasWeeklyGoal    bool
	WeeklyGoalTarget float64
	Streak           int

	Spotlights []Spotlight
	Goals      []GoalProgress
}

// BuildReport loads one consistent snapshot and computes every derived
// number the dashboard and insights surfaces show. nowMs is passed in
// rather than read from the clock so the computation stays deterministic.
func BuildReport(ctx context.Context, st *store.Store, settings model.Settings, nowMs int64) (Report, error) {
	r := Report{
		TodayKey: clock.DayKey(nowMs, settings.DayBoundaryHour),
		WeekKey:  clock.WeekKey(nowMs, settings.WeekStartsOn, settings.DayBoundaryHour),
	}

	goals, err := st.ListGoals(ctx, model.GoalActive)
	if err != nil {
		return Report{}, fmt.Errorf("list goals: %w", err)
	}

	if err := buildCalories(ctx, st, settings, nowMs, goals, &r); err != nil {
		return Report{}, err
	}
	if err := buildWeight(ctx, st, settings, nowMs, &r); err != nil {
		return Report{}, err
	}
	if err := buildWorkouts(ctx, st, settings, nowMs, goals, &r); err != nil {
		return Report{}, err
	}
	if err := buildSpotlights(ctx, st, settings, nowMs, &r); err != nil {
		return Report{}, err
	}
	for _, g := range goals {
		gp, err := buildGoalProgress(ctx, st, g, settings, nowMs)
		if err != nil {
			return Report{}, err
		}
		r.Goals = append(r.Goals, gp)
	}
	return r, nil
}

func buildCalories(ctx context.Context, st *store.Store, settings model.Settings, nowMs int64, goals []model.Goal, r *Report) error {
	dayStart, dayEnd, err := clock.TrackingDayRange(r.TodayKey, settings.DayBoundaryHour)
	if err != nil {
		return err
	}
	today, err := st.EntriesBetween(ctx, model.MetricDailyCalories, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("load today calories: %w", err)
	}
	for _, e := range today {
		r.TodayCalories += e.Value
	}

	r.CalorieTarget = settings.CalorieTarget
	for _, g := range goals {
		if g.Type == model.GoalDailyThreshold && g.MetricID == model.MetricDailyCalories {
			r.CalorieTarget = g.Target
			break
		}
	}

	week, err := st.EntriesBetween(ctx, model.MetricDailyCalories, dayEnd-7*msPerDay, dayEnd)
	if err != nil {
		return fmt.Errorf("load week calories: %w", err)
	}
	bars, err := SumSeries(week, r.TodayKey, 7, settings.DayBoundaryHour)
	if err != nil {
		return err
	}
	r.CalorieBars = bars

	month, err := st.EntriesBetween(ctx, model.MetricDailyCalories, nowMs-28*msPerDay, nowMs+1)
	if err != nil {
		return fmt.Errorf("load 28d calories: %w", err)
	}
	r.WeekdayAvg, r.WeekendAvg = WeekdayWeekendAverages(SumByDay(month, settings.DayBoundaryHour))
	return nil
}

func buildWeight(ctx context.Context, st *store.Store, settings model.Settings, nowMs int64, r *Report) error {
	entries, err := st.EntriesBetween(ctx, model.MetricBodyWeight, nowMs-120*msPerDay, nowMs+1)
	if err != nil {
		return fmt.Errorf("load weight: %w", err)
	}
	daily := LastByDay(entries, settings.DayBoundaryHour)
	values := make([]float64, len(daily))
	for i, d := range daily {
		values[i] = d.Value
	}
	r.WeightSeries = values
	if len(daily) == 0 {
		return nil
	}

	if daily[len(daily)-1].Day == r.TodayKey {
		r.HasWeightToday = true
		r.WeightToday = daily[len(daily)-1].Value
	}

	if delta, ok := DeltaVsRollingAverage(values, 7); ok {
		r.HasWeightDelta = true
		r.WeightDelta7 = delta
	}

	avg7 := RollingAverage(values, 7)
	recent := avg7
	if len(recent) > 21 {
		recent = recent[len(recent)-21:]
	}
	pts := make([]Point, len(recent))
	for i, v := range recent {
		pts[i] = Point{X: float64(i), Y: v}
	}
	if len(pts) >= 2 {
		r.HasTrend = true
		r.TrendPerWeek = LinearRegressionSlope(pts) * 7
	}

	if delta, ok := TrendDelta(values, 14); ok {
		r.HasDelta14 = true
		r.Delta14 = delta
		r.Direction = Direction(delta, flatWeightThreshold)
	}
	return nil
}

func buildWorkouts(ctx context.Context, st *store.Store, settings model.Settings, nowMs int64, goals []model.Goal, r *Report) error {
	workouts, err := st.ListWorkouts(ctx)
	if err != nil {
		return fmt.Errorf("list workouts: %w", err)
	}
	r.WeekWorkoutCount = CountInWeek(workouts, r.WeekKey, settings.WeekStartsOn, settings.DayBoundaryHour)

	for _, g := range goals {
		if g.Type == model.GoalWeeklyFrequency {
			r.HasWeeklyGoal = true
			r.WeeklyGoalTarget = g.Target
			r.Streak = WeekStreak(workouts, g.Target, nowMs, settings.WeekStartsOn, settings.DayBoundaryHour)
			break
		}
	}
	return nil
}

func buildSpotlights(ctx context.Context, st *store.Store, settings model.Settings, nowMs int64, r *Report) error {
	pinned := settings.PinnedExercises
	if len(pinned) > 3 {
		pinned = pinned[:3]
	}
	for _, id := range pinned {
		name := "Exercise"
		if ex, ok, err := st.GetExercise(ctx, id); err != nil {
			return fmt.Errorf("load exercise %s: %w", id, err)
		} else if ok {
			name = ex.Name
		}
		sets, err := st.SetsForExercise(ctx, id, nowMs-35*msPerDay, nowMs+1)
		if err != nil {
			return fmt.Errorf("load sets for %s: %w", id, err)
		}
		series := SessionBest(sets, settings.DayBoundaryHour)
		sp := Spotlight{ExerciseID: id, Name: name}
		if latest, changePct, ok := SpotlightChange(series, nowMs); ok {
			sp.HasData = true
			sp.Latest = latest
			sp.ChangePct = changePct
		}
		r.Spotlights = append(r.Spotlights, sp)
	}
	return nil
}

func buildGoalProgress(ctx context.Context, st *store.Store, g model.Goal, settings model.Settings, nowMs int64) (GoalProgress, error) {
	gp := GoalProgress{Goal: g, Subtitle: fmt.Sprintf("%s -> %s", g.StartDate, g.EndDate)}
	todayKey := clock.DayKey(nowMs, settings.DayBoundaryHour)

	switch {
	case g.Type == model.GoalDailyThreshold && g.MetricID == model.MetricDailyCalories:
		start, end, err := clock.TrackingDayRange(todayKey, settings.DayBoundaryHour)
		if err != nil {
			return GoalProgress{}, err
		}
		rows, err := st.EntriesBetween(ctx, model.MetricDailyCalories, start, end)
		if err != nil {
			return GoalProgress{}, err
		}
		total := 0.0
		for _, e := range rows {
			total += e.Value
		}
		gp.HasProgress = true
		gp.Progress = clamp(total/g.Target, 0, 1)
		gp.Subtitle = fmt.Sprintf("Today: %.0f / %.0f kcal", total, g.Target)

	case g.Type == model.GoalWeeklyFrequency:
		workouts, err := st.ListWorkouts(ctx)
		if err != nil {
			return GoalProgress{}, err
		}
		weekKey := clock.WeekKey(nowMs, settings.WeekStartsOn, settings.DayBoundaryHour)
		count := CountInWeek(workouts, weekKey, settings.WeekStartsOn, settings.DayBoundaryHour)
		gp.HasProgress = true
		gp.Progress = clamp(float64(count)/g.Target, 0, 1)
		gp.Subtitle = fmt.Sprintf("This week: %d / %.0f", count, g.Target)

	case g.Type == model.GoalTargetByDate && g.MetricID == model.MetricBodyWeight:
		series, err := weightSeries(ctx, st, g.StartDate, nowMs, settings.DayBoundaryHour)
		if err != nil {
			return GoalProgress{}, err
		}
		fillTargetProgress(&gp, series, 21, "")

	case g.Type == model.GoalTargetByDate && g.ExerciseID != "":
		startMs, err := startOfDateMs(g.StartDate)
		if err != nil {
			return GoalProgress{}, err
		}
		sets, err := st.SetsForExercise(ctx, g.ExerciseID, startMs, nowMs+1)
		if err != nil {
			return GoalProgress{}, err
		}
		best := SessionBest(sets, settings.DayBoundaryHour)
		series := make([]TimePoint, len(best))
		for i, p := range best {
			series[i] = TimePoint{Timestamp: p.Timestamp, Value: p.Score}
		}
		name := "Exercise"
		if ex, ok, err := st.GetExercise(ctx, g.ExerciseID); err != nil {
			return GoalProgress{}, err
		} else if ok {
			name = ex.Name
		}
		fillTargetProgress(&gp, series, 10, name)
	}
	return gp, nil
}

// fillTargetProgress computes start->current progress and a projected
// completion date over the trailing window of the series.
func fillTargetProgress(gp *GoalProgress, series []TimePoint, window int, label string) {
	if len(series) == 0 {
		return
	}
	start := series[0].Value
	current := series[len(series)-1].Value
	if frac, ok := Progress(start, current, gp.Goal.Target, gp.Goal.Comparator); ok {
		gp.HasProgress = true
		gp.Progress = frac
	}
	if label != "" {
		gp.Subtitle = fmt.Sprintf("%s: %.1f -> %s %.1f", label, current, comparatorGlyph(gp.Goal.Comparator), gp.Goal.Target)
	} else {
		gp.Subtitle = fmt.Sprintf("Now: %.1f -> %s %.1f", current, comparatorGlyph(gp.Goal.Comparator), gp.Goal.Target)
	}
	recent := series
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	if ts, ok := ProjectedDate(recent, gp.Goal.Target); ok {
		gp.HasEstimate = true
		gp.EstimateMs = ts
	}
}

func weightSeries(ctx context.Context, st *store.Store, startDate string, nowMs int64, dayBoundaryHour int) ([]TimePoint, error) {
	startMs, err := startOfDateMs(startDate)
	if err != nil {
		return nil, err
	}
	rows, err := st.EntriesBetween(ctx, model.MetricBodyWeight, startMs, nowMs+1)
	if err != nil {
		return nil, err
	}
	daily := LastByDay(rows, dayBoundaryHour)
	series := make([]TimePoint, len(daily))
	for i, d := range daily {
		series[i] = TimePoint{Timestamp: d.Timestamp, Value: d.Value}
	}
	return series, nil
}

func startOfDateMs(date string) (int64, error) {
	t, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid goal start date %q: %w", date, err)
	}
	return t.UnixMilli(), nil
}

func comparatorGlyph(cmp model.Comparator) string {
	if cmp == model.AtMost {
		return "<="
	}
	return ">="
}
