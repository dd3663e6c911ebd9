// Package main provides the CLI entrypoint for trackos.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"trackos/internal/backup"
	"trackos/internal/clock"
	"trackos/internal/config"
	"trackos/internal/dashui"
	"trackos/internal/model"
	"trackos/internal/stats"
	"trackos/internal/store"
)

var (
	dbPath     string
	configPath string

	boundaryHour   int
	weekStartsOn   int
	prThresholdPct float64

	caloriesDay  string
	caloriesNote string

	weightDay  string
	weightNote string

	workoutType      string
	workoutDuration  int
	workoutIntensity string
	workoutNotes     string
	workoutDay       string
	workoutLast      int

	setExercise string
	setReps     int
	setWeight   float64
	setRPE      float64
	setWorkout  string
	setDay      string

	exerciseCategory string
	exerciseAll      bool

	goalTemplate string
	goalTarget   float64
	goalEnd      string
	goalExercise string
	goalAll      bool

	backupOut        string
	backupEncrypt    bool
	backupPassphrase string
	backupReplace    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := model.DefaultSettings()
	rootCmd := &cobra.Command{
		Use:           "trackos",
		Short:         "Local-first calorie, weight, and workout tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config path (default: XDG config dir)")
	rootCmd.PersistentFlags().IntVar(&boundaryHour, "day-boundary-hour", defaults.DayBoundaryHour, "hour (0-23) when a tracking day rolls over")
	rootCmd.PersistentFlags().IntVar(&weekStartsOn, "week-starts-on", defaults.WeekStartsOn, "first day of week: 0=Sunday, 1=Monday")
	rootCmd.PersistentFlags().Float64Var(&prThresholdPct, "pr-threshold", defaults.PRThresholdPct, "percent improvement required for a PR")

	rootCmd.AddCommand(newCaloriesCmd())
	rootCmd.AddCommand(newWeightCmd())
	rootCmd.AddCommand(newWorkoutCmd())
	rootCmd.AddCommand(newSetCmd())
	rootCmd.AddCommand(newExerciseCmd())
	rootCmd.AddCommand(newGoalCmd())
	rootCmd.AddCommand(newInsightsCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func loadSettings(cmd *cobra.Command) (model.Settings, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	settings := fileCfg.Settings()
	applyIntFlag(cmd, "day-boundary-hour", &settings.DayBoundaryHour, boundaryHour)
	applyIntFlag(cmd, "week-starts-on", &settings.WeekStartsOn, weekStartsOn)
	applyFloatFlag(cmd, "pr-threshold", &settings.PRThresholdPct, prThresholdPct)
	if err := config.ValidateSettings(settings); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

func openStore(ctx context.Context) (*store.Store, error) {
	path := dbPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := st.Bootstrap(ctx); err != nil {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
		return nil, fmt.Errorf("failed to bootstrap db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	program := tea.NewProgram(dashui.NewModel(st, settings), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newCaloriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calories",
		Short: "Log and review calorie entries",
	}

	addCmd := &cobra.Command{
		Use:   "add <kcal>",
		Short: "Log a calorie entry",
		Args:  cobra.ExactArgs(1),
		RunE:  runCaloriesAddCmd,
	}
	addCmd.Flags().StringVar(&caloriesDay, "day", "", "tracking day (YYYY-MM-DD, default today)")
	addCmd.Flags().StringVar(&caloriesNote, "note", "", "optional note")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Show today's calorie total",
		Args:  cobra.NoArgs,
		RunE:  runCaloriesTodayCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "undo",
		Short: "Delete the most recent calorie entry of today",
		Args:  cobra.NoArgs,
		RunE:  runCaloriesUndoCmd,
	})
	return cmd
}

func runCaloriesAddCmd(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil || value <= 0 {
		return fmt.Errorf("kcal must be a positive number")
	}
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ts, err := entryTimestamp(caloriesDay, settings.DayBoundaryHour)
	if err != nil {
		return err
	}
	entry := model.Entry{
		ID:        uuid.NewString(),
		MetricID:  model.MetricDailyCalories,
		Timestamp: ts,
		Value:     value,
		Note:      caloriesNote,
	}
	if err := st.PutEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}

	total, err := dayTotal(ctx, st, model.MetricDailyCalories, clock.DayKey(ts, settings.DayBoundaryHour), settings.DayBoundaryHour)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %.0f kcal. Day total: %.0f / %.0f\n", value, total, settings.CalorieTarget)
	return nil
}

func runCaloriesTodayCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	nowMs := time.Now().UnixMilli()
	dayKey := clock.DayKey(nowMs, settings.DayBoundaryHour)
	start, end, err := clock.TrackingDayRange(dayKey, settings.DayBoundaryHour)
	if err != nil {
		return err
	}
	entries, err := st.EntriesBetween(ctx, model.MetricDailyCalories, start, end)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	total := 0.0
	out := cmd.OutOrStdout()
	for _, e := range entries {
		total += e.Value
		label := e.Note
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(out, "%s  %6.0f  %s\n", time.UnixMilli(e.Timestamp).In(time.Local).Format("15:04"), e.Value, label)
	}
	fmt.Fprintf(out, "Total for %s: %.0f / %.0f kcal\n", dayKey, total, settings.CalorieTarget)
	return nil
}

func runCaloriesUndoCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	nowMs := time.Now().UnixMilli()
	dayKey := clock.DayKey(nowMs, settings.DayBoundaryHour)
	start, end, err := clock.TrackingDayRange(dayKey, settings.DayBoundaryHour)
	if err != nil {
		return err
	}
	entry, ok, err := st.LatestEntry(ctx, model.MetricDailyCalories, start, end)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	if !ok {
		return fmt.Errorf("no calorie entries for %s", dayKey)
	}
	if err := st.DeleteEntry(ctx, entry.ID); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %.0f kcal entry from %s\n", entry.Value, dayKey)
	return nil
}

func newWeightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weight",
		Short: "Log and review body weight",
	}

	logCmd := &cobra.Command{
		Use:   "log <value>",
		Short: "Log a body weight sample",
		Args:  cobra.ExactArgs(1),
		RunE:  runWeightLogCmd,
	}
	logCmd.Flags().StringVar(&weightDay, "day", "", "tracking day (YYYY-MM-DD, default today)")
	logCmd.Flags().StringVar(&weightNote, "note", "", "optional note")
	cmd.AddCommand(logCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show weight trend and rolling average",
		Args:  cobra.NoArgs,
		RunE:  runWeightShowCmd,
	})
	return cmd
}

func runWeightLogCmd(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil || value <= 0 {
		return fmt.Errorf("weight must be a positive number")
	}
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ts, err := entryTimestamp(weightDay, settings.DayBoundaryHour)
	if err != nil {
		return err
	}
	entry := model.Entry{
		ID:        uuid.NewString(),
		MetricID:  model.MetricBodyWeight,
		Timestamp: ts,
		Value:     value,
		Note:      weightNote,
	}
	if err := st.PutEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %.1f %s for %s\n",
		value, settings.BodyWeightUnit, clock.DayKey(ts, settings.DayBoundaryHour))
	return nil
}

func runWeightShowCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	report, err := stats.BuildReport(ctx, st, settings, time.Now().UnixMilli())
	if err != nil {
		return err
	}
	return stats.RenderWeight(cmd.OutOrStdout(), report, settings)
}

func newWorkoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "Log and review workout sessions",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Log a workout session",
		Args:  cobra.NoArgs,
		RunE:  runWorkoutAddCmd,
	}
	addCmd.Flags().StringVar(&workoutType, "type", "lift", "workout type: lift, cardio, or sport")
	addCmd.Flags().IntVar(&workoutDuration, "duration", 0, "duration in minutes")
	addCmd.Flags().StringVar(&workoutIntensity, "intensity", "med", "intensity: easy, med, or hard")
	addCmd.Flags().StringVar(&workoutNotes, "notes", "", "optional notes")
	addCmd.Flags().StringVar(&workoutDay, "day", "", "tracking day (YYYY-MM-DD, default today)")
	cmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent workouts",
		Args:  cobra.NoArgs,
		RunE:  runWorkoutListCmd,
	}
	listCmd.Flags().IntVar(&workoutLast, "last", 10, "number of workouts to show")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a workout and its sets",
		Args:  cobra.ExactArgs(1),
		RunE:  runWorkoutShowCmd,
	})
	return cmd
}

func runWorkoutShowCmd(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	workout, ok, err := st.GetWorkout(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load workout: %w", err)
	}
	if !ok {
		return fmt.Errorf("unknown workout id %q", args[0])
	}
	sets, err := st.SetsForWorkout(ctx, workout.ID)
	if err != nil {
		return fmt.Errorf("failed to load sets: %w", err)
	}
	names := map[string]string{}
	for _, s := range sets {
		if _, seen := names[s.ExerciseID]; seen {
			continue
		}
		if ex, ok, err := st.GetExercise(ctx, s.ExerciseID); err != nil {
			return fmt.Errorf("failed to load exercise: %w", err)
		} else if ok {
			names[s.ExerciseID] = ex.Name
		}
	}
	return stats.RenderWorkoutSets(cmd.OutOrStdout(), workout, sets, names, settings)
}

func runWorkoutAddCmd(cmd *cobra.Command, _ []string) error {
	wType := model.WorkoutType(workoutType)
	switch wType {
	case model.WorkoutLift, model.WorkoutCardio, model.WorkoutSport:
	default:
		return fmt.Errorf("--type must be lift, cardio, or sport")
	}
	if workoutDuration <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	switch workoutIntensity {
	case "easy", "med", "hard":
	default:
		return fmt.Errorf("--intensity must be easy, med, or hard")
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ts, err := entryTimestamp(workoutDay, settings.DayBoundaryHour)
	if err != nil {
		return err
	}
	workout := model.Workout{
		ID:          uuid.NewString(),
		StartedAt:   ts,
		DurationMin: workoutDuration,
		Type:        wType,
		Intensity:   workoutIntensity,
		Notes:       workoutNotes,
	}
	if err := st.InsertWorkout(ctx, workout); err != nil {
		return fmt.Errorf("failed to save workout: %w", err)
	}

	workouts, err := st.ListWorkouts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workouts: %w", err)
	}
	weekKey := clock.WeekKey(ts, settings.WeekStartsOn, settings.DayBoundaryHour)
	count := stats.CountInWeek(workouts, weekKey, settings.WeekStartsOn, settings.DayBoundaryHour)
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s workout (%d min). Week %s: %d sessions. Workout id: %s\n",
		workoutType, workoutDuration, weekKey, count, workout.ID)
	return nil
}

func runWorkoutListCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	workouts, err := st.ListWorkouts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workouts: %w", err)
	}
	if len(workouts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No workouts yet.")
		return nil
	}
	if workoutLast > 0 && len(workouts) > workoutLast {
		workouts = workouts[len(workouts)-workoutLast:]
	}
	out := cmd.OutOrStdout()
	for _, w := range workouts {
		day := clock.DayKey(w.StartedAt, settings.DayBoundaryHour)
		fmt.Fprintf(out, "%s  %s  %-6s %3d min  %-4s  %s\n", w.ID, day, w.Type, w.DurationMin, w.Intensity, w.Notes)
	}
	return nil
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Log strength training sets",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Log an exercise set",
		Args:  cobra.NoArgs,
		RunE:  runSetAddCmd,
	}
	addCmd.Flags().StringVar(&setExercise, "exercise", "", "exercise name")
	addCmd.Flags().IntVar(&setReps, "reps", 0, "repetitions")
	addCmd.Flags().Float64Var(&setWeight, "weight", 0, "load")
	addCmd.Flags().Float64Var(&setRPE, "rpe", 0, "rate of perceived exertion (optional)")
	addCmd.Flags().StringVar(&setWorkout, "workout", "", "workout id to attach the set to (optional)")
	addCmd.Flags().StringVar(&setDay, "day", "", "tracking day (YYYY-MM-DD, default today)")
	cmd.AddCommand(addCmd)
	return cmd
}

func runSetAddCmd(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(setExercise) == "" {
		return fmt.Errorf("--exercise is required")
	}
	if setReps <= 0 {
		return fmt.Errorf("--reps must be > 0")
	}
	if setWeight <= 0 {
		return fmt.Errorf("--weight must be > 0")
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ex, ok, err := st.FindExerciseByName(ctx, setExercise)
	if err != nil {
		return fmt.Errorf("failed to look up exercise: %w", err)
	}
	if !ok {
		return fmt.Errorf("unknown exercise %q; create it with: trackos exercise add %q", setExercise, setExercise)
	}

	ts, err := entryTimestamp(setDay, settings.DayBoundaryHour)
	if err != nil {
		return err
	}
	set := model.ExerciseSet{
		ID:         uuid.NewString(),
		WorkoutID:  setWorkout,
		ExerciseID: ex.ID,
		Timestamp:  ts,
		Reps:       setReps,
		Weight:     setWeight,
		RPE:        setRPE,
	}
	if err := st.InsertSet(ctx, set); err != nil {
		return fmt.Errorf("failed to save set: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s %dx%.1f %s (e1RM %.1f)\n",
		ex.Name, setReps, setWeight, settings.LoadUnit, stats.OneRepMax(setWeight, float64(setReps)))
	return nil
}

func newExerciseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercise",
		Short: "Manage the exercise catalog",
	}

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an exercise",
		Args:  cobra.ExactArgs(1),
		RunE:  runExerciseAddCmd,
	}
	addCmd.Flags().StringVar(&exerciseCategory, "category", "", "category label")
	cmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List exercises",
		Args:  cobra.NoArgs,
		RunE:  runExerciseListCmd,
	}
	listCmd.Flags().BoolVar(&exerciseAll, "all", false, "include archived exercises")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show session-best e1RM history with personal records",
		Args:  cobra.ExactArgs(1),
		RunE:  runExerciseShowCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "archive <name>",
		Short: "Archive an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExerciseArchiveCmd(cmd, args[0], true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "restore <name>",
		Short: "Restore an archived exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExerciseArchiveCmd(cmd, args[0], false)
		},
	})
	return cmd
}

func runExerciseShowCmd(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ex, ok, err := findExerciseByNameAny(ctx, st, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("unknown exercise %q", args[0])
	}
	sets, err := st.SetsForExercise(ctx, ex.ID, 0, math.MaxInt64)
	if err != nil {
		return fmt.Errorf("failed to load sets: %w", err)
	}
	return stats.RenderExerciseHistory(cmd.OutOrStdout(), ex.Name, sets, settings)
}

func runExerciseArchiveCmd(cmd *cobra.Command, name string, archived bool) error {
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ex, ok, err := findExerciseByNameAny(ctx, st, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("unknown exercise %q", name)
	}
	if ex.Archived == archived {
		if archived {
			return fmt.Errorf("exercise %q is already archived", ex.Name)
		}
		return fmt.Errorf("exercise %q is not archived", ex.Name)
	}
	if _, err := st.SetExerciseArchived(ctx, ex.ID, archived); err != nil {
		return fmt.Errorf("failed to update exercise: %w", err)
	}
	verb := "Archived"
	if !archived {
		verb = "Restored"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s exercise %q\n", verb, ex.Name)
	return nil
}

// findExerciseByNameAny matches archived exercises too; history and
// archive management must reach them even though logging cannot.
func findExerciseByNameAny(ctx context.Context, st *store.Store, name string) (model.Exercise, bool, error) {
	exercises, err := st.ListExercises(ctx, true)
	if err != nil {
		return model.Exercise{}, false, fmt.Errorf("failed to list exercises: %w", err)
	}
	for _, ex := range exercises {
		if ex.Name == name {
			return ex, true, nil
		}
	}
	return model.Exercise{}, false, nil
}

func runExerciseAddCmd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("exercise name must not be empty")
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if _, ok, err := st.FindExerciseByName(ctx, name); err != nil {
		return fmt.Errorf("failed to look up exercise: %w", err)
	} else if ok {
		return fmt.Errorf("exercise %q already exists", name)
	}
	ex := model.Exercise{ID: uuid.NewString(), Name: name, Category: exerciseCategory}
	if err := st.PutExercise(ctx, ex); err != nil {
		return fmt.Errorf("failed to save exercise: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created exercise %q (id %s)\n", name, ex.ID)
	return nil
}

func runExerciseListCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	exercises, err := st.ListExercises(ctx, exerciseAll)
	if err != nil {
		return fmt.Errorf("failed to list exercises: %w", err)
	}
	if len(exercises) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No exercises yet.")
		return nil
	}
	out := cmd.OutOrStdout()
	for _, ex := range exercises {
		suffix := ""
		if ex.Archived {
			suffix = "  (archived)"
		}
		if ex.Category != "" {
			fmt.Fprintf(out, "%-24s %s%s\n", ex.Name, ex.Category, suffix)
		} else {
			fmt.Fprintf(out, "%s%s\n", ex.Name, suffix)
		}
	}
	return nil
}

func newGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage goals",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a goal from a template",
		Args:  cobra.NoArgs,
		RunE:  runGoalAddCmd,
	}
	addCmd.Flags().StringVar(&goalTemplate, "template", "", "one of: weight_by_date, calories_daily_cap, workouts_per_week, exercise_e1rm_by_date")
	addCmd.Flags().Float64Var(&goalTarget, "target", 0, "target value")
	addCmd.Flags().StringVar(&goalEnd, "end", "", "end date (YYYY-MM-DD, required for by-date goals)")
	addCmd.Flags().StringVar(&goalExercise, "exercise", "", "exercise name (for exercise_e1rm_by_date)")
	cmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List goals with progress",
		Args:  cobra.NoArgs,
		RunE:  runGoalListCmd,
	}
	listCmd.Flags().BoolVar(&goalAll, "all", false, "include non-active goals")
	cmd.AddCommand(listCmd)
	return cmd
}

func runGoalAddCmd(cmd *cobra.Command, _ []string) error {
	if goalTarget <= 0 {
		return fmt.Errorf("--target must be > 0")
	}
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	nowMs := time.Now().UnixMilli()
	today := clock.DayKey(nowMs, settings.DayBoundaryHour)
	goal := model.Goal{
		ID:        uuid.NewString(),
		Target:    goalTarget,
		StartDate: today,
		EndDate:   goalEnd,
		Status:    model.GoalActive,
		CreatedAt: nowMs,
		UpdatedAt: nowMs,
	}

	switch goalTemplate {
	case "weight_by_date":
		if err := requireEndDate(goalEnd); err != nil {
			return err
		}
		goal.Type = model.GoalTargetByDate
		goal.MetricID = model.MetricBodyWeight
		goal.Comparator = model.AtMost
	case "calories_daily_cap":
		goal.Type = model.GoalDailyThreshold
		goal.MetricID = model.MetricDailyCalories
		goal.Comparator = model.AtMost
		if goal.EndDate == "" {
			goal.EndDate = today
		}
	case "workouts_per_week":
		goal.Type = model.GoalWeeklyFrequency
		goal.Comparator = model.AtLeast
		if goal.EndDate == "" {
			goal.EndDate = today
		}
	case "exercise_e1rm_by_date":
		if err := requireEndDate(goalEnd); err != nil {
			return err
		}
		if strings.TrimSpace(goalExercise) == "" {
			return fmt.Errorf("--exercise is required for exercise_e1rm_by_date")
		}
		ex, ok, err := st.FindExerciseByName(ctx, goalExercise)
		if err != nil {
			return fmt.Errorf("failed to look up exercise: %w", err)
		}
		if !ok {
			return fmt.Errorf("unknown exercise %q", goalExercise)
		}
		goal.Type = model.GoalTargetByDate
		goal.ExerciseID = ex.ID
		goal.Comparator = model.AtLeast
	default:
		return fmt.Errorf("--template must be one of: weight_by_date, calories_daily_cap, workouts_per_week, exercise_e1rm_by_date")
	}

	if err := st.PutGoal(ctx, goal); err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s goal (target %.1f)\n", goal.Type, goal.Target)
	return nil
}

func runGoalListCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	report, err := stats.BuildReport(ctx, st, settings, time.Now().UnixMilli())
	if err != nil {
		return err
	}
	goals := report.Goals
	if goalAll {
		// The report only computes progress for active goals; append the
		// rest without progress so they still show up.
		all, err := st.ListGoals(ctx, "")
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}
		for _, g := range all {
			if g.Status != model.GoalActive {
				goals = append(goals, stats.GoalProgress{Goal: g, Subtitle: fmt.Sprintf("%s -> %s", g.StartDate, g.EndDate)})
			}
		}
	}
	return stats.RenderGoals(cmd.OutOrStdout(), goals)
}

func newInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show the analytics report",
		Args:  cobra.NoArgs,
		RunE:  runInsightsCmd,
	}
}

func runInsightsCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	report, err := stats.BuildReport(ctx, st, settings, time.Now().UnixMilli())
	if err != nil {
		return err
	}
	return stats.RenderInsights(cmd.OutOrStdout(), report, settings)
}

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export and import backups",
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data to a JSON backup",
		Args:  cobra.NoArgs,
		RunE:  runBackupExportCmd,
	}
	exportCmd.Flags().StringVar(&backupOut, "out", "", "output path (default: trackos-backup-<date>.json)")
	exportCmd.Flags().BoolVar(&backupEncrypt, "encrypt", false, "encrypt the backup with a passphrase")
	exportCmd.Flags().StringVar(&backupPassphrase, "passphrase", "", "passphrase (prompted when omitted)")
	cmd.AddCommand(exportCmd)

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data from a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackupImportCmd,
	}
	importCmd.Flags().StringVar(&backupPassphrase, "passphrase", "", "passphrase (prompted when needed)")
	importCmd.Flags().BoolVar(&backupReplace, "replace", false, "confirm replacing all existing data")
	cmd.AddCommand(importCmd)
	return cmd
}

func runBackupExportCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	passphrase := ""
	if backupEncrypt {
		passphrase = backupPassphrase
		if passphrase == "" {
			passphrase = os.Getenv("TRACKOS_PASSPHRASE")
		}
		if passphrase == "" {
			passphrase, err = readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
			confirm, err := readPassphrase("Confirm passphrase: ")
			if err != nil {
				return err
			}
			if passphrase != confirm {
				return fmt.Errorf("passphrases do not match")
			}
		}
		if passphrase == "" {
			return fmt.Errorf("passphrase must not be empty")
		}
	}

	snap, err := st.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to snapshot db: %w", err)
	}
	data, err := backup.Marshal(backup.NewPayload(snap, settings, time.Now()), passphrase)
	if err != nil {
		return err
	}

	outPath := backupOut
	if outPath == "" {
		outPath = fmt.Sprintf("trackos-backup-%s.json", time.Now().In(time.Local).Format("2006-01-02"))
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d entries, %d sets, %d goals)\n",
		outPath, len(snap.Entries), len(snap.Sets), len(snap.Goals))
	return nil
}

func runBackupImportCmd(cmd *cobra.Command, args []string) error {
	if !backupReplace {
		return fmt.Errorf("import replaces all existing data; re-run with --replace to confirm")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	passphrase := backupPassphrase
	if passphrase == "" {
		passphrase = os.Getenv("TRACKOS_PASSPHRASE")
	}
	payload, err := backup.Unmarshal(data, passphrase)
	if err != nil && passphrase == "" && strings.Contains(err.Error(), "passphrase required") {
		passphrase, err = readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		payload, err = backup.Unmarshal(data, passphrase)
	}
	if err != nil {
		return err
	}

	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.ImportReplace(ctx, payload.Snapshot()); err != nil {
		return fmt.Errorf("failed to import backup: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries, %d sets, %d goals (exported %s)\n",
		len(payload.Entries), len(payload.Sets), len(payload.Goals),
		time.UnixMilli(payload.ExportedAt).In(time.Local).Format("2006-01-02 15:04"))
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// entryTimestamp resolves the --day flag. An empty value means now; a
// back-dated entry lands at the midpoint of that tracking day.
func entryTimestamp(date string, dayBoundaryHour int) (int64, error) {
	if date == "" {
		return time.Now().UnixMilli(), nil
	}
	if _, err := time.ParseInLocation("2006-01-02", date, time.Local); err != nil {
		return 0, fmt.Errorf("invalid --day value (expected YYYY-MM-DD): %w", err)
	}
	start, _, err := clock.TrackingDayRange(date, dayBoundaryHour)
	if err != nil {
		return 0, err
	}
	return start + 12*60*60*1000, nil
}

func dayTotal(ctx context.Context, st *store.Store, metricID, dayKey string, dayBoundaryHour int) (float64, error) {
	start, end, err := clock.TrackingDayRange(dayKey, dayBoundaryHour)
	if err != nil {
		return 0, err
	}
	entries, err := st.EntriesBetween(ctx, metricID, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to load entries: %w", err)
	}
	total := 0.0
	for _, e := range entries {
		total += e.Value
	}
	return total, nil
}

func requireEndDate(date string) error {
	if date == "" {
		return fmt.Errorf("--end is required for by-date goals")
	}
	if _, err := time.ParseInLocation("2006-01-02", date, time.Local); err != nil {
		return fmt.Errorf("invalid --end value (expected YYYY-MM-DD): %w", err)
	}
	return nil
}

func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	return string(raw), nil
}

func applyIntFlag(cmd *cobra.Command, name string, target *int, value int) {
	if cmd.Flags().Changed(name) || flagChanged(cmd, name) {
		*target = value
	}
}

func applyFloatFlag(cmd *cobra.Command, name string, target *float64, value float64) {
	if cmd.Flags().Changed(name) || flagChanged(cmd, name) {
		*target = value
	}
}

// flagChanged also checks inherited persistent flags; subcommands see the
// root's tracking flags through the inherited set.
func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.InheritedFlags().Lookup(name)
	return f != nil && f.Changed
}

func defaultConfigTemplate() string {
	defaults := model.DefaultSettings()
	return fmt.Sprintf(`# trackos configuration
# Uncomment a value to enable it. CLI flags override config values.

[tracking]
# day-boundary-hour = %d    # Hour when a tracking day rolls over (0-23)
# week-starts-on = %d       # 0 = Sunday, 1 = Monday
# pr-threshold = %.1f      # Percent improvement required for a PR
# pinned-exercises = []    # Exercise ids spotlighted on the dashboard

[units]
# body-weight = %q       # lb or kg
# load = %q              # lb or kg

[calories]
# presets = [50, 100, 200, 500, 1000]
# daily-target = %.0f     # Used when no calorie goal exists
`,
		defaults.DayBoundaryHour,
		defaults.WeekStartsOn,
		defaults.PRThresholdPct,
		defaults.BodyWeightUnit,
		defaults.LoadUnit,
		defaults.CalorieTarget,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
