package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/LeRenardBlanc/TPlanner/internal/config"
	"github.com/LeRenardBlanc/TPlanner/internal/importer"
	"github.com/LeRenardBlanc/TPlanner/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to program CSV file (required)")
	stateDir := flag.String("state-dir", ".tplanner-import", "directory for the import state database")
	dryRun := flag.Bool("dry-run", false, "decode and report counts without writing to the database")
	force := flag.Bool("force", false, "import even if the file is unchanged since the last run")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: tplanner-import -config config.yaml -file programme.csv [-dry-run] [-force]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Open import state tracking
	state, err := importer.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state db", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	imp := importer.New(db, state, log, *dryRun)
	stats, err := imp.ImportFile(ctx, *filePath, *force)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	if stats.Skipped {
		log.Info("nothing to do")
		return
	}
	log.Info("import complete",
		"exercises", stats.Imported,
		"row_errors", len(stats.RowErrors),
	)
}
