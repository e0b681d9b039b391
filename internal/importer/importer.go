// Package importer drives the tplanner-import CLI: it reads a program CSV
// from disk, replaces the stored program with its contents, and tracks
// imported files in a local SQLite state database so re-running the command
// against an unchanged file is a no-op.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/LeRenardBlanc/TPlanner/internal/ingest"
)

// Stats tracks the outcome of one import run.
type Stats struct {
	Imported  int
	RowErrors []string
	Skipped   bool
}

// Importer imports program CSV files into the database.
type Importer struct {
	db     ingest.ProgramStore
	state  *StateDB
	log    *slog.Logger
	dryRun bool
}

// New creates a new Importer. state may be nil, in which case no
// already-imported tracking happens (every run imports).
func New(db ingest.ProgramStore, state *StateDB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, state: state, log: log, dryRun: dryRun}
}

// ImportFile imports a single program CSV file. Unless force is set, a file
// whose size and hash match a previous successful import is skipped.
func (imp *Importer) ImportFile(ctx context.Context, path string, force bool) (*Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("statting %s: %w", path, err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}

	if imp.state != nil && !force {
		done, err := imp.state.IsImported(path, info.Size(), hash)
		if err != nil {
			return nil, fmt.Errorf("checking import state: %w", err)
		}
		if done {
			imp.log.Info("file unchanged since last import, skipping", "path", path)
			return &Stats{Skipped: true}, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	result := ingest.ImportProgram(f)
	for _, msg := range result.Errors {
		imp.log.Warn("import row error", "path", path, "error", msg)
	}

	stats := &Stats{Imported: len(result.Exercises), RowErrors: result.Errors}

	if imp.dryRun {
		imp.log.Info("dry run: program not written", "exercises", stats.Imported)
		return stats, nil
	}
	if len(result.Exercises) == 0 {
		return stats, fmt.Errorf("no importable rows in %s", path)
	}

	if err := imp.db.ReplaceProgram(ctx, result.Exercises); err != nil {
		return stats, fmt.Errorf("replacing program: %w", err)
	}

	if imp.state != nil {
		if err := imp.state.MarkImported(path, info.Size(), hash); err != nil {
			return stats, fmt.Errorf("recording import state: %w", err)
		}
	}

	return stats, nil
}
