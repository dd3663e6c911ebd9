// Package model defines shared data structures.
package model

// MetricType classifies how entries of a metric aggregate within a day.
type MetricType string

// Metric types. Counter metrics sum within a tracking day, timeseries
// metrics keep the latest sample of the day, event metrics are counted.
const (
	MetricCounterDaily MetricType = "counter_daily"
	MetricTimeseries   MetricType = "timeseries"
	MetricEvent        MetricType = "event"
)

// Precreated metric ids seeded at bootstrap.
const (
	MetricDailyCalories = "dailyCalories"
	MetricBodyWeight    = "bodyWeight"
	MetricWorkout       = "workoutSession"
)

// Metric describes a tracked quantity.
type Metric struct {
	ID   string     `json:"id"`
	Type MetricType `json:"type"`
	Name string     `json:"name"`
	Unit string     `json:"unit"`
}

// Entry is a single time-stamped sample of a metric.
// Timestamp is milliseconds since the Unix epoch (an absolute instant).
type Entry struct {
	ID        string  `json:"id"`
	MetricID  string  `json:"metricId"`
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
	Note      string  `json:"note,omitempty"`
}

// Exercise is a reference-table row for strength exercises.
type Exercise struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Archived bool   `json:"archived,omitempty"`
}

// WorkoutType classifies a workout session.
type WorkoutType string

// Workout types.
const (
	WorkoutLift   WorkoutType = "lift"
	WorkoutCardio WorkoutType = "cardio"
	WorkoutSport  WorkoutType = "sport"
)

// Workout is an explicit training session.
type Workout struct {
	ID          string      `json:"id"`
	StartedAt   int64       `json:"startedAt"`
	DurationMin int         `json:"durationMin"`
	Type        WorkoutType `json:"type"`
	Intensity   string      `json:"intensity"`
	Notes       string      `json:"notes,omitempty"`
}

// ExerciseSet is one logged set. WorkoutID is empty when the set was
// logged outside an explicit workout; such sets group by tracking day.
type ExerciseSet struct {
	ID         string  `json:"id"`
	WorkoutID  string  `json:"workoutId,omitempty"`
	ExerciseID string  `json:"exerciseId"`
	Timestamp  int64   `json:"timestamp"`
	Reps       int     `json:"reps"`
	Weight     float64 `json:"weight"`
	RPE        float64 `json:"rpe,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// GoalType selects the progress semantics of a goal.
type GoalType string

// Goal types.
const (
	GoalTargetByDate    GoalType = "target_by_date"
	GoalWeeklyFrequency GoalType = "weekly_frequency"
	GoalDailyThreshold  GoalType = "daily_threshold"
)

// Comparator states whether higher or lower values are better.
type Comparator string

// Comparators.
const (
	AtLeast Comparator = ">="
	AtMost  Comparator = "<="
)

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

// Goal statuses.
const (
	GoalActive    GoalStatus = "active"
	GoalPaused    GoalStatus = "paused"
	GoalCompleted GoalStatus = "completed"
)

// Goal is a user-defined target.
type Goal struct {
	ID         string     `json:"id"`
	Type       GoalType   `json:"type"`
	Target     float64    `json:"target"`
	StartDate  string     `json:"startDate"` // calendar date, YYYY-MM-DD
	EndDate    string     `json:"endDate"`
	MetricID   string     `json:"metricId,omitempty"`
	ExerciseID string     `json:"exerciseId,omitempty"`
	Comparator Comparator `json:"comparator"`
	Status     GoalStatus `json:"status"`
	CreatedAt  int64      `json:"createdAt"`
	UpdatedAt  int64      `json:"updatedAt"`
}

// Settings holds the tracking configuration consumed by the engine.
// Values are validated at load time; the analytics functions assume
// DayBoundaryHour is within 0-23 and WeekStartsOn is 0 or 1.
type Settings struct {
	DayBoundaryHour int      `json:"dayBoundaryHour"`
	WeekStartsOn    int      `json:"weekStartsOn"` // 0 = Sunday, 1 = Monday
	PRThresholdPct  float64  `json:"prThresholdPct"`
	BodyWeightUnit  string   `json:"bodyWeightUnit"`
	LoadUnit        string   `json:"loadUnit"`
	CaloriePresets  []int    `json:"caloriePresets"`
	CalorieTarget   float64  `json:"calorieTarget"`
	PinnedExercises []string `json:"pinnedExerciseIds,omitempty"`
}

// DefaultSettings mirrors the seed configuration of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		DayBoundaryHour: 4,
		WeekStartsOn:    1,
		PRThresholdPct:  0.5,
		BodyWeightUnit:  "lb",
		LoadUnit:        "lb",
		CaloriePresets:  []int{50, 100, 200, 500, 1000},
		CalorieTarget:   2800,
	}
}
