// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"trackos/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for tracking data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS metrics (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			name TEXT NOT NULL,
			unit TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			metric_id TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			value REAL NOT NULL,
			note TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS exercises (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			archived INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			duration_min INTEGER NOT NULL,
			type TEXT NOT NULL,
			intensity TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS exercise_sets (
			id TEXT PRIMARY KEY,
			workout_id TEXT NOT NULL DEFAULT '',
			exercise_id TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			reps INTEGER NOT NULL,
			weight REAL NOT NULL,
			rpe REAL NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			target REAL NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			metric_id TEXT NOT NULL DEFAULT '',
			exercise_id TEXT NOT NULL DEFAULT '',
			comparator TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_metric_ts ON entries(metric_id, timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_sets_exercise_ts ON exercise_sets(exercise_id, timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_sets_workout_ts ON exercise_sets(workout_id, timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_started_at ON workouts(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_goals_status ON goals(status);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Bootstrap seeds the precreated metrics if missing. Safe to run on every
// startup.
func (s *Store) Bootstrap(ctx context.Context) error {
	seed := []model.Metric{
		{ID: model.MetricDailyCalories, Type: model.MetricCounterDaily, Name: "Daily Calories", Unit: "kcal"},
		{ID: model.MetricBodyWeight, Type: model.MetricTimeseries, Name: "Body Weight", Unit: "lb"},
		{ID: model.MetricWorkout, Type: model.MetricEvent, Name: "Workout Session", Unit: "min"},
	}
	for _, m := range seed {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO metrics (id, type, name, unit) VALUES (?, ?, ?, ?)`,
			m.ID, string(m.Type), m.Name, m.Unit)
		if err != nil {
			return fmt.Errorf("seed metric %s: %w", m.ID, err)
		}
	}
	return nil
}

// PutEntry inserts or replaces an entry.
func (s *Store) PutEntry(ctx context.Context, e model.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO entries (id, metric_id, timestamp, value, note) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.MetricID, e.Timestamp, e.Value, e.Note)
	return err
}

// DeleteEntry removes an entry by id.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	return err
}

// EntriesBetween returns entries for a metric in the half-open interval
// [startMs, endMs), ordered by timestamp. Half-open semantics keep a
// sample on a bucket boundary from being counted twice.
func (s *Store) EntriesBetween(ctx context.Context, metricID string, startMs, endMs int64) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, metric_id, timestamp, value, note
		 FROM entries
		 WHERE metric_id = ? AND timestamp >= ? AND timestamp < ?
		 ORDER BY timestamp ASC`,
		metricID, startMs, endMs)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.Entry
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.ID, &e.MetricID, &e.Timestamp, &e.Value, &e.Note); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// LatestEntry returns the most recent entry for a metric within
// [startMs, endMs), or false when the interval is empty.
func (s *Store) LatestEntry(ctx context.Context, metricID string, startMs, endMs int64) (model.Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, metric_id, timestamp, value, note
		 FROM entries
		 WHERE metric_id = ? AND timestamp >= ? AND timestamp < ?
		 ORDER BY timestamp DESC
		 LIMIT 1`,
		metricID, startMs, endMs)
	var e model.Entry
	if err := row.Scan(&e.ID, &e.MetricID, &e.Timestamp, &e.Value, &e.Note); err != nil {
		if err == sql.ErrNoRows {
			return model.Entry{}, false, nil
		}
		return model.Entry{}, false, err
	}
	return e, true, nil
}

// InsertWorkout stores a workout session.
func (s *Store) InsertWorkout(ctx context.Context, w model.Workout) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workouts (id, started_at, duration_min, type, intensity, notes) VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.StartedAt, w.DurationMin, string(w.Type), w.Intensity, w.Notes)
	return err
}

// ListWorkouts returns all workouts ordered by start time.
func (s *Store) ListWorkouts(ctx context.Context) ([]model.Workout, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_min, type, intensity, notes FROM workouts ORDER BY started_at ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var workouts []model.Workout
	for rows.Next() {
		var w model.Workout
		var typ string
		if err := rows.Scan(&w.ID, &w.StartedAt, &w.DurationMin, &typ, &w.Intensity, &w.Notes); err != nil {
			return nil, err
		}
		w.Type = model.WorkoutType(typ)
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

// GetWorkout returns one workout by id.
func (s *Store) GetWorkout(ctx context.Context, id string) (model.Workout, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, duration_min, type, intensity, notes FROM workouts WHERE id = ?`, id)
	var w model.Workout
	var typ string
	if err := row.Scan(&w.ID, &w.StartedAt, &w.DurationMin, &typ, &w.Intensity, &w.Notes); err != nil {
		if err == sql.ErrNoRows {
			return model.Workout{}, false, nil
		}
		return model.Workout{}, false, err
	}
	w.Type = model.WorkoutType(typ)
	return w, true, nil
}

// InsertSet stores an exercise set.
func (s *Store) InsertSet(ctx context.Context, set model.ExerciseSet) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exercise_sets (id, workout_id, exercise_id, timestamp, reps, weight, rpe, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		set.ID, set.WorkoutID, set.ExerciseID, set.Timestamp, set.Reps, set.Weight, set.RPE, set.Notes)
	return err
}

// SetsForExercise returns sets of one exercise in the half-open interval
// [startMs, endMs), ordered by timestamp.
func (s *Store) SetsForExercise(ctx context.Context, exerciseID string, startMs, endMs int64) ([]model.ExerciseSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workout_id, exercise_id, timestamp, reps, weight, rpe, notes
		 FROM exercise_sets
		 WHERE exercise_id = ? AND timestamp >= ? AND timestamp < ?
		 ORDER BY timestamp ASC`,
		exerciseID, startMs, endMs)
	if err != nil {
		return nil, err
	}
	return scanSets(rows)
}

// SetsForWorkout returns all sets belonging to a workout, ordered by
// timestamp.
func (s *Store) SetsForWorkout(ctx context.Context, workoutID string) ([]model.ExerciseSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workout_id, exercise_id, timestamp, reps, weight, rpe, notes
		 FROM exercise_sets
		 WHERE workout_id = ?
		 ORDER BY timestamp ASC`,
		workoutID)
	if err != nil {
		return nil, err
	}
	return scanSets(rows)
}

func scanSets(rows *sql.Rows) ([]model.ExerciseSet, error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var sets []model.ExerciseSet
	for rows.Next() {
		var set model.ExerciseSet
		if err := rows.Scan(&set.ID, &set.WorkoutID, &set.ExerciseID, &set.Timestamp, &set.Reps, &set.Weight, &set.RPE, &set.Notes); err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}

// PutExercise inserts or replaces an exercise.
func (s *Store) PutExercise(ctx context.Context, ex model.Exercise) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO exercises (id, name, category, archived) VALUES (?, ?, ?, ?)`,
		ex.ID, ex.Name, ex.Category, boolToInt(ex.Archived))
	return err
}

// SetExerciseArchived flips the archived flag on one exercise. Returns
// false when no exercise has the given id.
func (s *Store) SetExerciseArchived(ctx context.Context, id string, archived bool) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE exercises SET archived = ? WHERE id = ?`, boolToInt(archived), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListExercises returns exercises ordered by name, optionally including
// archived ones.
func (s *Store) ListExercises(ctx context.Context, includeArchived bool) ([]model.Exercise, error) {
	query := `SELECT id, name, category, archived FROM exercises`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var exercises []model.Exercise
	for rows.Next() {
		var ex model.Exercise
		var archived int
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.Category, &archived); err != nil {
			return nil, err
		}
		ex.Archived = archived != 0
		exercises = append(exercises, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

// GetExercise returns one exercise by id.
func (s *Store) GetExercise(ctx context.Context, id string) (model.Exercise, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, category, archived FROM exercises WHERE id = ?`, id)
	var ex model.Exercise
	var archived int
	if err := row.Scan(&ex.ID, &ex.Name, &ex.Category, &archived); err != nil {
		if err == sql.ErrNoRows {
			return model.Exercise{}, false, nil
		}
		return model.Exercise{}, false, err
	}
	ex.Archived = archived != 0
	return ex, true, nil
}

// FindExerciseByName returns the first non-archived exercise matching name
// exactly.
func (s *Store) FindExerciseByName(ctx context.Context, name string) (model.Exercise, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, category, archived FROM exercises WHERE name = ? AND archived = 0 LIMIT 1`, name)
	var ex model.Exercise
	var archived int
	if err := row.Scan(&ex.ID, &ex.Name, &ex.Category, &archived); err != nil {
		if err == sql.ErrNoRows {
			return model.Exercise{}, false, nil
		}
		return model.Exercise{}, false, err
	}
	ex.Archived = archived != 0
	return ex, true, nil
}

// PutGoal inserts or replaces a goal.
func (s *Store) PutGoal(ctx context.Context, g model.Goal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO goals
		 (id, type, target, start_date, end_date, metric_id, exercise_id, comparator, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, string(g.Type), g.Target, g.StartDate, g.EndDate, g.MetricID, g.ExerciseID,
		string(g.Comparator), string(g.Status), g.CreatedAt, g.UpdatedAt)
	return err
}

// ListGoals returns goals ordered by most recently updated. Pass an empty
// status to list all goals.
func (s *Store) ListGoals(ctx context.Context, status model.GoalStatus) ([]model.Goal, error) {
	query := `SELECT id, type, target, start_date, end_date, metric_id, exercise_id, comparator, status, created_at, updated_at
		FROM goals`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY updated_at DESC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var goals []model.Goal
	for rows.Next() {
		var g model.Goal
		var typ, cmp, st string
		if err := rows.Scan(&g.ID, &typ, &g.Target, &g.StartDate, &g.EndDate, &g.MetricID, &g.ExerciseID, &cmp, &st, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		g.Type = model.GoalType(typ)
		g.Comparator = model.Comparator(cmp)
		g.Status = model.GoalStatus(st)
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return goals, nil
}

// DeleteGoal removes a goal by id.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
