package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgramExercise is one planned exercise of the training program: the target
// an athlete should hit for a given day, independent of any concrete session.
// Identity for lookups is (Day, Name); the reps target is kept as the raw
// string from the program table because it may be a range like "8-10".
type ProgramExercise struct {
	Day          string  `json:"day"`
	Name         string  `json:"name"`
	Sets         int     `json:"sets"`
	Reps         string  `json:"reps"`
	TargetWeight float64 `json:"target_weight"`
	TargetRPE    int     `json:"target_rpe"`
	Category     string  `json:"category"`
	Comment      *string `json:"comment,omitempty"`
	OrderIndex   int     `json:"order_index"`
}

// SessionHistory is one workout attempt. A row is created the moment a session
// is opened (completed=false) so abandoned sessions still leave a trace, and
// updated exactly once at finish time with the final aggregates.
type SessionHistory struct {
	ID          uuid.UUID `json:"id"`
	Day         string    `json:"day"`
	StartedAt   time.Time `json:"started_at"`
	TotalVolume float64   `json:"total_volume"`
	AverageRPE  float64   `json:"average_rpe"`
	DurationMin *int      `json:"duration_min,omitempty"`
	Completed   bool      `json:"completed"`
}

// PerformanceRecord is the immutable log entry for one validated set.
// Sets is always 1: every logged set is its own record. Reps is the resolved
// integer (range resolution happens once, when the set is turned into a
// record, never later). Category is copied from the program exercise at log
// time so later program edits do not rewrite history.
type PerformanceRecord struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	ExerciseName string    `json:"exercise_name"`
	Sets         int       `json:"sets"`
	Reps         int       `json:"reps"`
	Weight       float64   `json:"weight"`
	RPE          int       `json:"rpe"`
	RestTimeSec  *int      `json:"rest_time_sec,omitempty"`
	Comment      *string   `json:"comment,omitempty"`
	Category     string    `json:"category"`
	RecordedAt   time.Time `json:"recorded_at"`
}
