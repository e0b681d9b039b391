package mcp

import (
	"context"
	"time"

	"github.com/LeRenardBlanc/TPlanner/internal/models"
	"github.com/LeRenardBlanc/TPlanner/internal/storage"
)

// DataSource abstracts the data layer for MCP tools so the server can run
// against anything that exposes the training data reads.
type DataSource interface {
	AllProgramExercises(ctx context.Context) ([]models.ProgramExercise, error)
	ProgramForDay(ctx context.Context, day string) ([]models.ProgramExercise, error)
	PerformanceHistory(ctx context.Context, exerciseName string, limit int) ([]models.PerformanceRecord, error)
	AllPerformanceRecords(ctx context.Context) ([]models.PerformanceRecord, error)
	RecentSessions(ctx context.Context, limit int) ([]models.SessionHistory, error)
	SessionsInRange(ctx context.Context, start, end time.Time) ([]models.SessionHistory, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
