package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/LeRenardBlanc/TPlanner/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertSession persists a freshly opened session row.
func (db *DB) InsertSession(ctx context.Context, s models.SessionHistory) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO session_history (id, day, started_at, total_volume, average_rpe, duration_min, completed)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.Day, s.StartedAt, s.TotalVolume, s.AverageRPE, s.DurationMin, s.Completed)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// UpdateSession overwrites a session row, typically at finish time with the
// final aggregates and the completed flag.
func (db *DB) UpdateSession(ctx context.Context, s models.SessionHistory) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE session_history
		 SET day = $2, started_at = $3, total_volume = $4, average_rpe = $5, duration_min = $6, completed = $7
		 WHERE id = $1`,
		s.ID, s.Day, s.StartedAt, s.TotalVolume, s.AverageRPE, s.DurationMin, s.Completed)
	if err != nil {
		return fmt.Errorf("updating session %s: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating session %s: no such session", s.ID)
	}
	return nil
}

// SessionByID fetches a single session.
func (db *DB) SessionByID(ctx context.Context, id uuid.UUID) (*models.SessionHistory, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, day, started_at, total_volume, average_rpe, duration_min, completed
		 FROM session_history WHERE id = $1`, id)
	var s models.SessionHistory
	err := row.Scan(&s.ID, &s.Day, &s.StartedAt, &s.TotalVolume, &s.AverageRPE, &s.DurationMin, &s.Completed)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session %s: %w", id, err)
	}
	return &s, nil
}

// SessionsForDay returns the sessions recorded for a day, most recent first.
func (db *DB) SessionsForDay(ctx context.Context, day string, limit int) ([]models.SessionHistory, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, day, started_at, total_volume, average_rpe, duration_min, completed
		 FROM session_history
		 WHERE day = $1
		 ORDER BY started_at DESC
		 LIMIT $2`,
		day, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions for day %s: %w", day, err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// RecentSessions returns the most recent sessions across all days.
func (db *DB) RecentSessions(ctx context.Context, limit int) ([]models.SessionHistory, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, day, started_at, total_volume, average_rpe, duration_min, completed
		 FROM session_history
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// SessionsInRange returns the completed sessions started within [start, end),
// oldest first. Used for period comparisons such as the weekly overload index.
func (db *DB) SessionsInRange(ctx context.Context, start, end time.Time) ([]models.SessionHistory, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, day, started_at, total_volume, average_rpe, duration_min, completed
		 FROM session_history
		 WHERE started_at >= $1 AND started_at < $2 AND completed
		 ORDER BY started_at ASC`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("querying sessions in range: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

func scanSessions(rows pgx.Rows) ([]models.SessionHistory, error) {
	var result []models.SessionHistory
	for rows.Next() {
		var s models.SessionHistory
		if err := rows.Scan(&s.ID, &s.Day, &s.StartedAt, &s.TotalVolume,
			&s.AverageRPE, &s.DurationMin, &s.Completed); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
