package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/LeRenardBlanc/TPlanner/internal/models"
)

// ProgramStore is the storage slice the provider needs to commit an import.
type ProgramStore interface {
	ReplaceProgram(ctx context.Context, exercises []models.ProgramExercise) error
}

// Provider decodes program CSV uploads and commits them to storage. A
// successful import replaces the whole program.
type Provider struct {
	db  ProgramStore
	log *slog.Logger
}

// NewProvider creates a program import provider.
func NewProvider(db ProgramStore, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Import decodes a program CSV and, when at least one row decoded, replaces
// the stored program with the result. Row-level errors are carried in the
// returned ImportResult and do not block the import; they are the caller's to
// surface.
func (p *Provider) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	result := ImportProgram(r)
	if len(result.Errors) > 0 {
		p.log.Warn("program import had row errors", "rows", len(result.Exercises), "errors", len(result.Errors))
	}

	if len(result.Exercises) > 0 {
		if err := p.db.ReplaceProgram(ctx, result.Exercises); err != nil {
			return nil, fmt.Errorf("replacing program: %w", err)
		}
	}

	return &result, nil
}
