package stats

import (
	"sort"

	"trackos/internal/clock"
	"trackos/internal/model"
)

// ScorePoint is a session-best strength score at an instant.
type ScorePoint struct {
	Timestamp int64
	Score     float64
}

// PRPoint is a score point annotated with personal-record status.
type PRPoint struct {
	Timestamp int64
	Score     float64
	PR        bool
}

// sessionKey distinguishes explicit workouts from day-grouped loose sets.
// Keeping the two variants in separate fields avoids collisions between a
// workout id and a date string.
type sessionKey struct {
	workoutID string
	day       string
}

func keyForSet(s model.ExerciseSet, dayBoundaryHour int) sessionKey {
	if s.WorkoutID != "" {
		return sessionKey{workoutID: s.WorkoutID}
	}
	return sessionKey{day: clock.DayKey(s.Timestamp, dayBoundaryHour)}
}

// OneRepMax estimates a one-rep max from a set using the Epley formula,
// weight * (1 + reps/30). Non-positive weight or reps yield a neutral 0
// score; callers may feed partially entered input.
func OneRepMax(weight, reps float64) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	return weight * (1 + reps/30)
}

// SessionBest reduces sets to one best one-rep-max estimate per session,
// sorted ascending by timestamp. Sets sharing a workout id form one
// session; sets without one group by tracking day. Each point carries the
// timestamp of the earliest set achieving that session's best score.
func SessionBest(sets []model.ExerciseSet, dayBoundaryHour int) []ScorePoint {
	best := map[sessionKey]ScorePoint{}
	for _, s := range sets {
		key := keyForSet(s, dayBoundaryHour)
		score := OneRepMax(s.Weight, float64(s.Reps))
		prev, ok := best[key]
		if !ok || score > prev.Score || (score == prev.Score && s.Timestamp < prev.Timestamp) {
			best[key] = ScorePoint{Timestamp: s.Timestamp, Score: score}
		}
	}
	out := make([]ScorePoint, 0, len(best))
	for _, p := range best {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// MarkPersonalRecords annotates a time-ordered score series with PR flags.
// A point is a PR when its score exceeds the running best by more than
// thresholdPct percent. The running best advances only on confirmed PRs,
// so a near-miss does not raise the bar for later attempts. The first
// point seeds the baseline and is never a PR.
func MarkPersonalRecords(series []ScorePoint, thresholdPct float64) []PRPoint {
	out := make([]PRPoint, 0, len(series))
	baseline := 0.0
	for i, p := range series {
		pr := false
		if i == 0 {
			baseline = p.Score
		} else if p.Score > baseline*(1+thresholdPct/100) {
			pr = true
			baseline = p.Score
		}
		out = append(out, PRPoint{Timestamp: p.Timestamp, Score: p.Score, PR: pr})
	}
	return out
}
