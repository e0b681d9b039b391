package workout

import (
	"context"

	"github.com/LeRenardBlanc/TPlanner/internal/models"
)

// Repository is the slice of durable storage the session engine needs. The
// engine never retries a failed call; retry policy, if any, belongs to the
// implementation behind this interface.
type Repository interface {
	// ProgramForDay returns the program exercises for a day, ordered by
	// their order index.
	ProgramForDay(ctx context.Context, day string) ([]models.ProgramExercise, error)
	// LastPerformance returns the most recent record for an exercise, or
	// nil when the exercise has never been logged.
	LastPerformance(ctx context.Context, exerciseName string) (*models.PerformanceRecord, error)
	// InsertSession persists a freshly opened session.
	InsertSession(ctx context.Context, s models.SessionHistory) error
	// UpdateSession overwrites a session row with its final aggregates.
	UpdateSession(ctx context.Context, s models.SessionHistory) error
	// SessionsForDay returns sessions for a day, most recent first.
	SessionsForDay(ctx context.Context, day string, limit int) ([]models.SessionHistory, error)
	// InsertPerformanceRecords persists a batch of validated sets.
	InsertPerformanceRecords(ctx context.Context, records []models.PerformanceRecord) error
}
