package stats

import (
	"fmt"
	"io"
	"time"

	"trackos/internal/clock"
	"trackos/internal/model"
)

// RenderInsights prints the insights report as plain text.
func RenderInsights(w io.Writer, r Report, settings model.Settings) error {
	if _, err := fmt.Fprintf(w, "Insights for %s\n\n", r.TodayKey); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "Calories (last 28 days)"); err != nil {
		return err
	}
	rows := [][]string{
		{"Weekday avg", fmt.Sprintf("%.0f kcal", r.WeekdayAvg)},
		{"Weekend avg", fmt.Sprintf("%.0f kcal", r.WeekendAvg)},
		{"Today", fmt.Sprintf("%.0f / %.0f kcal", r.TodayCalories, r.CalorieTarget)},
	}
	if err := writeLines(w, formatTable(nil, rows, map[int]bool{1: true})); err != nil {
		return err
	}
	if err := renderCalorieBars(w, r.CalorieBars); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\nWeight"); err != nil {
		return err
	}
	if r.HasDelta14 {
		rows = [][]string{
			{"14-day delta", fmt.Sprintf("%+.1f %s (%s)", r.Delta14, settings.BodyWeightUnit, r.Direction)},
		}
		if r.HasTrend {
			rows = append(rows, []string{"Trend", fmt.Sprintf("%+.2f %s/week", r.TrendPerWeek, settings.BodyWeightUnit)})
		}
		if err := writeLines(w, formatTable(nil, rows, nil)); err != nil {
			return err
		}
		if len(r.WeightSeries) > 1 {
			if _, err := fmt.Fprintf(w, "  %s\n", Sparkline(r.WeightSeries)); err != nil {
				return err
			}
		}
	} else {
		if _, err := fmt.Fprintln(w, "  No data yet."); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "\nWorkout consistency"); err != nil {
		return err
	}
	if r.HasWeeklyGoal {
		rows = [][]string{
			{"This week", fmt.Sprintf("%d / %.0f", r.WeekWorkoutCount, r.WeeklyGoalTarget)},
			{"Streak", fmt.Sprintf("%d weeks", r.Streak)},
		}
		if err := writeLines(w, formatTable(nil, rows, nil)); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(w, "  Create a workouts-per-week goal to see streaks."); err != nil {
			return err
		}
	}

	if len(r.Spotlights) > 0 {
		if _, err := fmt.Fprintln(w, "\nPinned exercises (35 days)"); err != nil {
			return err
		}
		rows = rows[:0]
		for _, sp := range r.Spotlights {
			if sp.HasData {
				rows = append(rows, []string{sp.Name, fmt.Sprintf("%.1f", sp.Latest), fmt.Sprintf("%+.1f%%", sp.ChangePct)})
			} else {
				rows = append(rows, []string{sp.Name, "-", "-"})
			}
		}
		if err := writeLines(w, formatTable([]string{"Exercise", "e1RM", "Change"}, rows, map[int]bool{1: true, 2: true})); err != nil {
			return err
		}
	}
	return nil
}

func renderCalorieBars(w io.Writer, bars []DayValue) error {
	if len(bars) == 0 {
		return nil
	}
	maxVal := 0.0
	for _, b := range bars {
		if b.Value > maxVal {
			maxVal = b.Value
		}
	}
	width := chartWidth()
	for _, b := range bars {
		if _, err := fmt.Fprintf(w, "  %s %5.0f %s\n", b.Day[5:], b.Value, barFor(b.Value, maxVal, width)); err != nil {
			return err
		}
	}
	return nil
}

// RenderGoals prints computed goal progress as a table.
func RenderGoals(w io.Writer, goals []GoalProgress) error {
	if len(goals) == 0 {
		_, err := fmt.Fprintln(w, "No goals yet.")
		return err
	}
	rows := make([][]string, 0, len(goals))
	for _, gp := range goals {
		progress := "-"
		if gp.HasProgress {
			progress = fmt.Sprintf("%.0f%%", gp.Progress*100)
		}
		estimate := ""
		if gp.HasEstimate {
			estimate = "est " + time.UnixMilli(gp.EstimateMs).In(time.Local).Format("2006-01-02")
		}
		rows = append(rows, []string{
			string(gp.Goal.Type),
			gp.Subtitle,
			progress,
			estimate,
			string(gp.Goal.Status),
		})
	}
	return writeLines(w, formatTable([]string{"Type", "Progress", "%", "Estimate", "Status"}, rows, map[int]bool{2: true}))
}

// RenderExerciseHistory prints the session-best e1RM history of one
// exercise with personal records marked per the configured threshold.
func RenderExerciseHistory(w io.Writer, name string, sets []model.ExerciseSet, settings model.Settings) error {
	series := SessionBest(sets, settings.DayBoundaryHour)
	if len(series) == 0 {
		_, err := fmt.Fprintf(w, "No sets logged for %s yet.\n", name)
		return err
	}
	marked := MarkPersonalRecords(series, settings.PRThresholdPct)

	if _, err := fmt.Fprintf(w, "%s: session-best e1RM (%s)\n", name, settings.LoadUnit); err != nil {
		return err
	}
	prCount := 0
	rows := make([][]string, 0, len(marked))
	for _, p := range marked {
		flag := ""
		if p.PR {
			flag = "PR"
			prCount++
		}
		rows = append(rows, []string{
			clock.DayKey(p.Timestamp, settings.DayBoundaryHour),
			fmt.Sprintf("%.1f", p.Score),
			flag,
		})
	}
	if err := writeLines(w, formatTable(nil, rows, map[int]bool{1: true})); err != nil {
		return err
	}
	if len(series) > 1 {
		scores := make([]float64, len(series))
		for i, p := range series {
			scores[i] = p.Score
		}
		if _, err := fmt.Fprintf(w, "  %s\n", Sparkline(scores)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d sessions, %d PRs (threshold %.1f%%)\n", len(marked), prCount, settings.PRThresholdPct)
	return err
}

// RenderWorkoutSets prints one workout with its attached sets. names maps
// exercise ids to display names.
func RenderWorkoutSets(w io.Writer, workout model.Workout, sets []model.ExerciseSet, names map[string]string, settings model.Settings) error {
	day := clock.DayKey(workout.StartedAt, settings.DayBoundaryHour)
	if _, err := fmt.Fprintf(w, "%s  %s  %d min  %s\n", day, workout.Type, workout.DurationMin, workout.Intensity); err != nil {
		return err
	}
	if workout.Notes != "" {
		if _, err := fmt.Fprintf(w, "%s\n", workout.Notes); err != nil {
			return err
		}
	}
	if len(sets) == 0 {
		_, err := fmt.Fprintln(w, "No sets attached.")
		return err
	}
	rows := make([][]string, 0, len(sets))
	for _, s := range sets {
		name := names[s.ExerciseID]
		if name == "" {
			name = s.ExerciseID
		}
		rpe := ""
		if s.RPE > 0 {
			rpe = fmt.Sprintf("@%.1f", s.RPE)
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%dx%.1f %s", s.Reps, s.Weight, settings.LoadUnit),
			fmt.Sprintf("e1RM %.1f", OneRepMax(s.Weight, float64(s.Reps))),
			rpe,
		})
	}
	return writeLines(w, formatTable(nil, rows, map[int]bool{1: true, 2: true}))
}

// RenderWeight prints the weight summary with raw and smoothed series.
func RenderWeight(w io.Writer, r Report, settings model.Settings) error {
	if len(r.WeightSeries) == 0 {
		_, err := fmt.Fprintln(w, "No weight entries yet.")
		return err
	}
	if r.HasWeightToday {
		if _, err := fmt.Fprintf(w, "Today: %.1f %s\n", r.WeightToday, settings.BodyWeightUnit); err != nil {
			return err
		}
	}
	if r.HasWeightDelta {
		if _, err := fmt.Fprintf(w, "vs 7-day avg: %+.1f %s\n", r.WeightDelta7, settings.BodyWeightUnit); err != nil {
			return err
		}
	}
	if r.HasTrend {
		if _, err := fmt.Fprintf(w, "Trend: %+.2f %s/week\n", r.TrendPerWeek, settings.BodyWeightUnit); err != nil {
			return err
		}
	}
	if len(r.WeightSeries) > 1 {
		avg := RollingAverage(r.WeightSeries, 7)
		if _, err := fmt.Fprintf(w, "Raw:    %s\n", Sparkline(r.WeightSeries)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "7d avg: %s\n", Sparkline(avg)); err != nil {
			return err
		}
	}
	return nil
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
			return err
		}
	}
	return nil
}
