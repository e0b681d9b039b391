package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/LeRenardBlanc/TPlanner/internal/models"
	"github.com/jackc/pgx/v5"
)

// ProgramForDay returns the program exercises for a day in display order.
func (db *DB) ProgramForDay(ctx context.Context, day string) ([]models.ProgramExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT day, name, sets, reps, target_weight, target_rpe, category, comment, order_index
		 FROM program_exercises
		 WHERE day = $1
		 ORDER BY order_index ASC`,
		day)
	if err != nil {
		return nil, fmt.Errorf("querying program for day %s: %w", day, err)
	}
	defer rows.Close()
	return scanProgramExercises(rows)
}

// AllProgramExercises returns the whole program, grouped by day in display order.
func (db *DB) AllProgramExercises(ctx context.Context) ([]models.ProgramExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT day, name, sets, reps, target_weight, target_rpe, category, comment, order_index
		 FROM program_exercises
		 ORDER BY order_index ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying program: %w", err)
	}
	defer rows.Close()
	return scanProgramExercises(rows)
}

// ProgramDays returns the distinct days of the program, ordered by first
// appearance in the program table.
func (db *DB) ProgramDays(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT day FROM program_exercises GROUP BY day ORDER BY MIN(order_index) ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying program days: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning program day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// ReplaceProgram replaces the whole training program in one transaction:
// delete everything, then insert the new exercises. Imports are full
// replacements, never merges.
func (db *DB) ReplaceProgram(ctx context.Context, exercises []models.ProgramExercise) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM program_exercises`); err != nil {
		return fmt.Errorf("deleting program: %w", err)
	}

	if len(exercises) > 0 {
		query := `INSERT INTO program_exercises (day, name, sets, reps, target_weight, target_rpe, category, comment, order_index) VALUES `
		args := make([]any, 0, len(exercises)*9)
		valueStrings := make([]string, 0, len(exercises))

		for i, e := range exercises {
			base := i * 9
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
			))
			args = append(args, e.Day, e.Name, e.Sets, e.Reps, e.TargetWeight,
				e.TargetRPE, e.Category, e.Comment, e.OrderIndex)
		}

		query += strings.Join(valueStrings, ",")
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting program exercises: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func scanProgramExercises(rows pgx.Rows) ([]models.ProgramExercise, error) {
	var result []models.ProgramExercise
	for rows.Next() {
		var e models.ProgramExercise
		if err := rows.Scan(&e.Day, &e.Name, &e.Sets, &e.Reps, &e.TargetWeight,
			&e.TargetRPE, &e.Category, &e.Comment, &e.OrderIndex); err != nil {
			return nil, fmt.Errorf("scanning program exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
