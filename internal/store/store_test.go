package store

import (
	"context"
	"path/filepath"
	"testing"

	"trackos/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "trackos.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestBootstrapIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	if err := st.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := st.Bootstrap(ctx); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	snap, err := st.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Metrics) != 3 {
		t.Fatalf("expected 3 seeded metrics, got %d", len(snap.Metrics))
	}
}

func TestEntriesBetweenIsHalfOpen(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	for _, e := range []model.Entry{
		{ID: "a", MetricID: model.MetricDailyCalories, Timestamp: 999, Value: 1},
		{ID: "b", MetricID: model.MetricDailyCalories, Timestamp: 1000, Value: 2},
		{ID: "c", MetricID: model.MetricDailyCalories, Timestamp: 1999, Value: 3},
		{ID: "d", MetricID: model.MetricDailyCalories, Timestamp: 2000, Value: 4},
	} {
		if err := st.PutEntry(ctx, e); err != nil {
			t.Fatalf("put entry %s: %v", e.ID, err)
		}
	}
	got, err := st.EntriesBetween(ctx, model.MetricDailyCalories, 1000, 2000)
	if err != nil {
		t.Fatalf("EntriesBetween: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(got), got)
	}
	if got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("wrong entries or order: %+v", got)
	}

	// The boundary sample lands in exactly one adjacent window.
	next, err := st.EntriesBetween(ctx, model.MetricDailyCalories, 2000, 3000)
	if err != nil {
		t.Fatalf("EntriesBetween: %v", err)
	}
	if len(next) != 1 || next[0].ID != "d" {
		t.Fatalf("expected only the boundary entry, got %+v", next)
	}
}

func TestPutEntryReplacesByID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	e := model.Entry{ID: "a", MetricID: model.MetricBodyWeight, Timestamp: 100, Value: 181}
	if err := st.PutEntry(ctx, e); err != nil {
		t.Fatalf("put: %v", err)
	}
	e.Value = 180.4
	if err := st.PutEntry(ctx, e); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := st.EntriesBetween(ctx, model.MetricBodyWeight, 0, 200)
	if err != nil {
		t.Fatalf("EntriesBetween: %v", err)
	}
	if len(got) != 1 || got[0].Value != 180.4 {
		t.Fatalf("expected one replaced entry, got %+v", got)
	}
}

func TestLatestEntry(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	for _, e := range []model.Entry{
		{ID: "a", MetricID: model.MetricBodyWeight, Timestamp: 100, Value: 181},
		{ID: "b", MetricID: model.MetricBodyWeight, Timestamp: 300, Value: 180},
	} {
		if err := st.PutEntry(ctx, e); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	e, ok, err := st.LatestEntry(ctx, model.MetricBodyWeight, 0, 400)
	if err != nil || !ok {
		t.Fatalf("LatestEntry: ok=%v err=%v", ok, err)
	}
	if e.ID != "b" {
		t.Fatalf("latest = %+v, want b", e)
	}
	if _, ok, err := st.LatestEntry(ctx, model.MetricBodyWeight, 400, 500); err != nil || ok {
		t.Fatalf("empty interval should report no entry, ok=%v err=%v", ok, err)
	}
}

func TestSetsForWorkoutAndExercise(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	if err := st.PutExercise(ctx, model.Exercise{ID: "ex1", Name: "Bench Press"}); err != nil {
		t.Fatalf("put exercise: %v", err)
	}
	sets := []model.ExerciseSet{
		{ID: "s1", WorkoutID: "wo1", ExerciseID: "ex1", Timestamp: 200, Reps: 5, Weight: 185},
		{ID: "s2", WorkoutID: "wo1", ExerciseID: "ex1", Timestamp: 100, Reps: 5, Weight: 185},
		{ID: "s3", WorkoutID: "", ExerciseID: "ex1", Timestamp: 300, Reps: 3, Weight: 195},
	}
	for _, set := range sets {
		if err := st.InsertSet(ctx, set); err != nil {
			t.Fatalf("insert set %s: %v", set.ID, err)
		}
	}
	byWorkout, err := st.SetsForWorkout(ctx, "wo1")
	if err != nil {
		t.Fatalf("SetsForWorkout: %v", err)
	}
	if len(byWorkout) != 2 || byWorkout[0].ID != "s2" || byWorkout[1].ID != "s1" {
		t.Fatalf("workout sets wrong or unordered: %+v", byWorkout)
	}
	byExercise, err := st.SetsForExercise(ctx, "ex1", 0, 1000)
	if err != nil {
		t.Fatalf("SetsForExercise: %v", err)
	}
	if len(byExercise) != 3 {
		t.Fatalf("expected 3 sets, got %d", len(byExercise))
	}
}

func TestListExercisesSkipsArchived(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	for _, ex := range []model.Exercise{
		{ID: "ex1", Name: "Squat"},
		{ID: "ex2", Name: "Leg Press", Archived: true},
	} {
		if err := st.PutExercise(ctx, ex); err != nil {
			t.Fatalf("put exercise: %v", err)
		}
	}
	active, err := st.ListExercises(ctx, false)
	if err != nil {
		t.Fatalf("ListExercises: %v", err)
	}
	if len(active) != 1 || active[0].ID != "ex1" {
		t.Fatalf("expected only the active exercise, got %+v", active)
	}
	all, err := st.ListExercises(ctx, true)
	if err != nil {
		t.Fatalf("ListExercises(all): %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 exercises, got %d", len(all))
	}
	if _, ok, err := st.FindExerciseByName(ctx, "Leg Press"); err != nil || ok {
		t.Fatalf("archived exercise should not match by name, ok=%v err=%v", ok, err)
	}
}

func TestListGoalsFiltersByStatus(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	goals := []model.Goal{
		{ID: "g1", Type: model.GoalWeeklyFrequency, Target: 3, Comparator: model.AtLeast, Status: model.GoalActive, UpdatedAt: 1},
		{ID: "g2", Type: model.GoalDailyThreshold, Target: 2400, Comparator: model.AtMost, Status: model.GoalCompleted, UpdatedAt: 2},
	}
	for _, g := range goals {
		if err := st.PutGoal(ctx, g); err != nil {
			t.Fatalf("put goal: %v", err)
		}
	}
	active, err := st.ListGoals(ctx, model.GoalActive)
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if len(active) != 1 || active[0].ID != "g1" {
		t.Fatalf("expected one active goal, got %+v", active)
	}
	all, err := st.ListGoals(ctx, "")
	if err != nil {
		t.Fatalf("ListGoals(all): %v", err)
	}
	if len(all) != 2 || all[0].ID != "g2" {
		t.Fatalf("expected goals newest-first, got %+v", all)
	}
}

func TestImportReplaceSwapsAllTables(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	if err := st.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := st.PutEntry(ctx, model.Entry{ID: "old", MetricID: model.MetricDailyCalories, Timestamp: 100, Value: 500}); err != nil {
		t.Fatalf("put: %v", err)
	}

	snap := Snapshot{
		Metrics: []model.Metric{
			{ID: model.MetricDailyCalories, Type: model.MetricCounterDaily, Name: "Daily Calories", Unit: "kcal"},
		},
		Entries: []model.Entry{
			{ID: "new1", MetricID: model.MetricDailyCalories, Timestamp: 200, Value: 700},
			{ID: "new2", MetricID: model.MetricDailyCalories, Timestamp: 300, Value: 800},
		},
		Exercises: []model.Exercise{{ID: "ex1", Name: "Deadlift"}},
		Workouts:  []model.Workout{{ID: "wo1", StartedAt: 250, DurationMin: 40, Type: model.WorkoutLift, Intensity: "high"}},
		Sets: []model.ExerciseSet{
			{ID: "s1", WorkoutID: "wo1", ExerciseID: "ex1", Timestamp: 260, Reps: 5, Weight: 315},
		},
		Goals: []model.Goal{
			{ID: "g1", Type: model.GoalWeeklyFrequency, Target: 3, Comparator: model.AtLeast, Status: model.GoalActive},
		},
	}
	if err := st.ImportReplace(ctx, snap); err != nil {
		t.Fatalf("ImportReplace: %v", err)
	}

	got, err := st.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(got.Metrics) != 1 {
		t.Fatalf("expected seeded metrics replaced, got %d", len(got.Metrics))
	}
	if len(got.Entries) != 2 || got.Entries[0].ID != "new1" {
		t.Fatalf("expected imported entries only, got %+v", got.Entries)
	}
	if len(got.Exercises) != 1 || len(got.Workouts) != 1 || len(got.Sets) != 1 || len(got.Goals) != 1 {
		t.Fatalf("unexpected snapshot after import: %+v", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := newTestStore(t)
	dst := newTestStore(t)
	ctx := context.Background()
	if err := src.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := src.PutEntry(ctx, model.Entry{ID: "e1", MetricID: model.MetricBodyWeight, Timestamp: 100, Value: 180.5, Note: "am"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	snap, err := src.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if err := dst.ImportReplace(ctx, snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	got, err := dst.Snapshot(ctx)
	if err != nil {
		t.Fatalf("dst snapshot: %v", err)
	}
	if len(got.Metrics) != len(snap.Metrics) || len(got.Entries) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Entries[0].Note != "am" {
		t.Fatalf("note lost in round trip: %+v", got.Entries[0])
	}
}

func TestGetWorkout(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	want := model.Workout{
		ID: "w1", StartedAt: 1000, DurationMin: 45,
		Type: model.WorkoutLift, Intensity: "hard", Notes: "heavy",
	}
	if err := st.InsertWorkout(ctx, want); err != nil {
		t.Fatalf("insert workout: %v", err)
	}
	got, ok, err := st.GetWorkout(ctx, "w1")
	if err != nil || !ok {
		t.Fatalf("GetWorkout: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if _, ok, err := st.GetWorkout(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing workout: ok=%v err=%v", ok, err)
	}
}

func TestSetExerciseArchivedHidesFromLookup(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ex := model.Exercise{ID: "ex1", Name: "Squat", Category: "legs"}
	if err := st.PutExercise(ctx, ex); err != nil {
		t.Fatalf("put exercise: %v", err)
	}

	found, err := st.SetExerciseArchived(ctx, "ex1", true)
	if err != nil || !found {
		t.Fatalf("SetExerciseArchived: found=%v err=%v", found, err)
	}
	if _, ok, err := st.FindExerciseByName(ctx, "Squat"); err != nil || ok {
		t.Fatalf("archived exercise should not resolve by name: ok=%v err=%v", ok, err)
	}
	active, err := st.ListExercises(ctx, false)
	if err != nil || len(active) != 0 {
		t.Fatalf("active list = %+v, err=%v", active, err)
	}
	all, err := st.ListExercises(ctx, true)
	if err != nil || len(all) != 1 || !all[0].Archived {
		t.Fatalf("all list = %+v, err=%v", all, err)
	}
	if all[0].Name != "Squat" || all[0].Category != "legs" {
		t.Fatalf("archiving must not touch other fields: %+v", all[0])
	}

	// Restoring makes it resolvable again.
	if found, err := st.SetExerciseArchived(ctx, "ex1", false); err != nil || !found {
		t.Fatalf("restore: found=%v err=%v", found, err)
	}
	if _, ok, err := st.FindExerciseByName(ctx, "Squat"); err != nil || !ok {
		t.Fatalf("restored exercise should resolve by name: ok=%v err=%v", ok, err)
	}

	if found, err := st.SetExerciseArchived(ctx, "missing", true); err != nil || found {
		t.Fatalf("missing id: found=%v err=%v", found, err)
	}
}
