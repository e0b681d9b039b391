package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/LeRenardBlanc/TPlanner/internal/ingest"
	"github.com/LeRenardBlanc/TPlanner/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleImportProgram(w http.ResponseWriter, r *http.Request) {
	result, err := s.importer.Import(r.Context(), r.Body)
	if err != nil {
		s.log.Error("program import error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"imported": len(result.Exercises),
		"errors":   result.Errors,
	})
}

func (s *Server) handleProgram(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.db.AllProgramExercises(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleProgramDays(w http.ResponseWriter, r *http.Request) {
	days, err := s.db.ProgramDays(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (s *Server) handleExportProgram(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.db.AllProgramExercises(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="programme.csv"`)
	if err := ingest.ExportProgram(w, exercises); err != nil {
		s.log.Error("program export error", "error", err)
	}
}

func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.db.AllPerformanceRecords(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="historique.csv"`)
	if err := ingest.ExportPerformance(w, records); err != nil {
		s.log.Error("history export error", "error", err)
	}
}

func (s *Server) handleRecentSessions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	sessions, err := s.db.RecentSessions(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	session, err := s.db.SessionByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if session == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	records, err := s.db.RecordsBySession(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session": session,
		"records": records,
	})
}

// sessionView is the wire shape of a live session.
type sessionView struct {
	ID        uuid.UUID                `json:"id"`
	Day       string                   `json:"day"`
	State     string                   `json:"state"`
	Exercises []*workout.ExerciseState `json:"exercises"`
}

func viewOf(session *workout.Session) sessionView {
	return sessionView{
		ID:        session.ID,
		Day:       session.Day,
		State:     session.State().String(),
		Exercises: session.Exercises,
	}
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Day string `json:"day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Day == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "day is required"})
		return
	}

	session, err := s.sessions.Start(r.Context(), req.Day)
	if err != nil {
		s.log.Error("session start error", "day", req.Day, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, viewOf(session))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(session))
}

// editRequest carries partial field edits; absent fields stay untouched.
type editRequest struct {
	Weight   *string `json:"weight"`
	RPE      *string `json:"rpe"`
	Reps     *string `json:"reps"`
	RestTime *string `json:"rest_time"`
	Comment  *string `json:"comment"`
}

func (s *Server) handleEditExercise(w http.ResponseWriter, r *http.Request) {
	session, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	name := exerciseName(r)

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	edits := []struct {
		value *string
		apply func(string, string) error
	}{
		{req.Weight, session.SetWeight},
		{req.RPE, session.SetRPE},
		{req.Reps, session.SetReps},
		{req.RestTime, session.SetRestTime},
		{req.Comment, session.SetComment},
	}
	for _, e := range edits {
		if e.value == nil {
			continue
		}
		if err := e.apply(name, *e.value); err != nil {
			writeEngineError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, viewOf(session))
}

func (s *Server) handleValidateSet(w http.ResponseWriter, r *http.Request) {
	session, ok := s.liveSession(w, r)
	if !ok {
		return
	}

	if err := session.ValidateSet(exerciseName(r)); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(session))
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	summary, err := s.sessions.Finish(r.Context(), id)
	if err != nil {
		if errors.Is(err, workout.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		s.log.Error("session finish error", "session", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// liveSession resolves the {id} route param to a registered session, writing
// the error response itself when that fails.
func (s *Server) liveSession(w http.ResponseWriter, r *http.Request) (*workout.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return nil, false
	}
	session, err := s.sessions.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return nil, false
	}
	return session, true
}

func exerciseName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workout.ErrUnknownExercise):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, workout.ErrNotActive):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
