package server

import (
	"log/slog"
	"net/http"

	"github.com/LeRenardBlanc/TPlanner/internal/ingest"
	"github.com/LeRenardBlanc/TPlanner/internal/storage"
	"github.com/LeRenardBlanc/TPlanner/internal/workout"
	"github.com/go-chi/chi/v5"
)

// The storage layer must satisfy the session engine's repository facade.
var _ workout.Repository = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	importer *ingest.Provider
	sessions *workout.Manager
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, log *slog.Logger, apiKey string) *Server {
	s := &Server{
		db:       db,
		importer: ingest.NewProvider(db, log),
		sessions: workout.NewManager(db),
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Program import replaces the whole program: API key required.
	s.router.Route("/api/v1/program/import", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleImportProgram)
	})

	s.router.Get("/api/v1/program", s.handleProgram)
	s.router.Get("/api/v1/program/days", s.handleProgramDays)
	s.router.Get("/api/v1/program/export", s.handleExportProgram)

	s.router.Post("/api/v1/sessions", s.handleStartSession)
	s.router.Get("/api/v1/sessions/{id}", s.handleGetSession)
	s.router.Patch("/api/v1/sessions/{id}/exercises/{name}", s.handleEditExercise)
	s.router.Post("/api/v1/sessions/{id}/exercises/{name}/validate", s.handleValidateSet)
	s.router.Post("/api/v1/sessions/{id}/finish", s.handleFinishSession)

	s.router.Get("/api/v1/history/sessions", s.handleRecentSessions)
	s.router.Get("/api/v1/history/sessions/{id}", s.handleSessionHistory)
	s.router.Get("/api/v1/history/export", s.handleExportHistory)

	s.router.Get("/api/v1/progress/exercises/{name}", s.handleExerciseProgress)
	s.router.Get("/api/v1/progress/overload", s.handleOverloadIndex)
	s.router.Get("/api/v1/progress/categories", s.handleVolumeByCategory)
	s.router.Get("/api/v1/progress/records", s.handlePersonalRecords)
}
