package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/LeRenardBlanc/TPlanner/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertPerformanceRecords batch-inserts validated sets. An empty batch is a
// no-op, which lets a session with no validated sets still finish cleanly.
func (db *DB) InsertPerformanceRecords(ctx context.Context, records []models.PerformanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `INSERT INTO performance_records (id, session_id, exercise_name, sets, reps,
		weight, rpe, rest_time_sec, comment, category, recorded_at) VALUES `
	args := make([]any, 0, len(records)*11)
	valueStrings := make([]string, 0, len(records))

	for i, r := range records {
		base := i * 11
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11,
		))
		args = append(args, r.ID, r.SessionID, r.ExerciseName, r.Sets, r.Reps,
			r.Weight, r.RPE, r.RestTimeSec, r.Comment, r.Category, r.RecordedAt)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting performance records: %w", err)
	}
	return nil
}

// LastPerformance returns the most recent record for an exercise, or nil when
// the exercise has never been logged.
func (db *DB) LastPerformance(ctx context.Context, exerciseName string) (*models.PerformanceRecord, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, session_id, exercise_name, sets, reps, weight, rpe, rest_time_sec, comment, category, recorded_at
		 FROM performance_records
		 WHERE exercise_name = $1
		 ORDER BY recorded_at DESC
		 LIMIT 1`,
		exerciseName)
	var r models.PerformanceRecord
	err := row.Scan(&r.ID, &r.SessionID, &r.ExerciseName, &r.Sets, &r.Reps,
		&r.Weight, &r.RPE, &r.RestTimeSec, &r.Comment, &r.Category, &r.RecordedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last performance for %s: %w", exerciseName, err)
	}
	return &r, nil
}

// PerformanceHistory returns up to limit of the most recent records for an
// exercise, ordered oldest first so callers can feed them straight into the
// progression analytics.
func (db *DB) PerformanceHistory(ctx context.Context, exerciseName string, limit int) ([]models.PerformanceRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, exercise_name, sets, reps, weight, rpe, rest_time_sec, comment, category, recorded_at
		 FROM (
			SELECT id, session_id, exercise_name, sets, reps, weight, rpe, rest_time_sec, comment, category, recorded_at
			FROM performance_records
			WHERE exercise_name = $1
			ORDER BY recorded_at DESC
			LIMIT $2
		 ) recent
		 ORDER BY recorded_at ASC`,
		exerciseName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying performance history for %s: %w", exerciseName, err)
	}
	defer rows.Close()
	return scanPerformanceRecords(rows)
}

// AllPerformanceRecords returns the full history, oldest first.
func (db *DB) AllPerformanceRecords(ctx context.Context) ([]models.PerformanceRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, exercise_name, sets, reps, weight, rpe, rest_time_sec, comment, category, recorded_at
		 FROM performance_records
		 ORDER BY recorded_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying performance records: %w", err)
	}
	defer rows.Close()
	return scanPerformanceRecords(rows)
}

// RecordsBySession returns the records of one session in log order.
func (db *DB) RecordsBySession(ctx context.Context, sessionID uuid.UUID) ([]models.PerformanceRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, exercise_name, sets, reps, weight, rpe, rest_time_sec, comment, category, recorded_at
		 FROM performance_records
		 WHERE session_id = $1
		 ORDER BY recorded_at ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying records for session %s: %w", sessionID, err)
	}
	defer rows.Close()
	return scanPerformanceRecords(rows)
}

func scanPerformanceRecords(rows pgx.Rows) ([]models.PerformanceRecord, error) {
	var result []models.PerformanceRecord
	for rows.Next() {
		var r models.PerformanceRecord
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ExerciseName, &r.Sets, &r.Reps,
			&r.Weight, &r.RPE, &r.RestTimeSec, &r.Comment, &r.Category, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning performance record: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
