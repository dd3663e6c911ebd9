package store

import (
	"context"

	"trackos/internal/model"
)

// Snapshot is a full copy of every table, used by the backup subsystem.
type Snapshot struct {
	Metrics   []model.Metric
	Entries   []model.Entry
	Exercises []model.Exercise
	Workouts  []model.Workout
	Sets      []model.ExerciseSet
	Goals     []model.Goal
}

// Snapshot reads every table at one logical point.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	rows, err := s.db.QueryContext(ctx, `SELECT id, type, name, unit FROM metrics ORDER BY id`)
	if err != nil {
		return Snapshot{}, err
	}
	for rows.Next() {
		var m model.Metric
		var typ string
		if err := rows.Scan(&m.ID, &typ, &m.Name, &m.Unit); err != nil {
			closeRows(rows)
			return Snapshot{}, err
		}
		m.Type = model.MetricType(typ)
		snap.Metrics = append(snap.Metrics, m)
	}
	if err := finishRows(rows); err != nil {
		return Snapshot{}, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT id, metric_id, timestamp, value, note FROM entries ORDER BY timestamp`)
	if err != nil {
		return Snapshot{}, err
	}
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.ID, &e.MetricID, &e.Timestamp, &e.Value, &e.Note); err != nil {
			closeRows(rows)
			return Snapshot{}, err
		}
		snap.Entries = append(snap.Entries, e)
	}
	if err := finishRows(rows); err != nil {
		return Snapshot{}, err
	}

	exercises, err := s.ListExercises(ctx, true)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Exercises = exercises

	workouts, err := s.ListWorkouts(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Workouts = workouts

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, workout_id, exercise_id, timestamp, reps, weight, rpe, notes FROM exercise_sets ORDER BY timestamp`)
	if err != nil {
		return Snapshot{}, err
	}
	sets, err := scanSets(rows)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Sets = sets

	goals, err := s.ListGoals(ctx, "")
	if err != nil {
		return Snapshot{}, err
	}
	snap.Goals = goals

	return snap, nil
}

// ImportReplace clears every table and repopulates it from the snapshot in
// a single transaction.
func (s *Store) ImportReplace(ctx context.Context, snap Snapshot) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	for _, table := range []string{"metrics", "entries", "exercises", "workouts", "exercise_sets", "goals"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}

	for _, m := range snap.Metrics {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO metrics (id, type, name, unit) VALUES (?, ?, ?, ?)`,
			m.ID, string(m.Type), m.Name, m.Unit); err != nil {
			return err
		}
	}
	for _, e := range snap.Entries {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO entries (id, metric_id, timestamp, value, note) VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.MetricID, e.Timestamp, e.Value, e.Note); err != nil {
			return err
		}
	}
	for _, ex := range snap.Exercises {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO exercises (id, name, category, archived) VALUES (?, ?, ?, ?)`,
			ex.ID, ex.Name, ex.Category, boolToInt(ex.Archived)); err != nil {
			return err
		}
	}
	for _, w := range snap.Workouts {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO workouts (id, started_at, duration_min, type, intensity, notes) VALUES (?, ?, ?, ?, ?, ?)`,
			w.ID, w.StartedAt, w.DurationMin, string(w.Type), w.Intensity, w.Notes); err != nil {
			return err
		}
	}
	for _, set := range snap.Sets {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO exercise_sets (id, workout_id, exercise_id, timestamp, reps, weight, rpe, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			set.ID, set.WorkoutID, set.ExerciseID, set.Timestamp, set.Reps, set.Weight, set.RPE, set.Notes); err != nil {
			return err
		}
	}
	for _, g := range snap.Goals {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO goals
			 (id, type, target, start_date, end_date, metric_id, exercise_id, comparator, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID, string(g.Type), g.Target, g.StartDate, g.EndDate, g.MetricID, g.ExerciseID,
			string(g.Comparator), string(g.Status), g.CreatedAt, g.UpdatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func closeRows(rows interface{ Close() error }) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}

func finishRows(rows interface {
	Close() error
	Err() error
}) error {
	err := rows.Err()
	closeRows(rows)
	return err
}
