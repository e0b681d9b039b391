package server

import (
	"net/http"
	"time"

	"github.com/LeRenardBlanc/TPlanner/internal/models"
	"github.com/LeRenardBlanc/TPlanner/internal/progress"
)

// exerciseProgressView bundles an exercise's history with the derived
// strength metrics the progress screen needs.
type exerciseProgressView struct {
	Exercise   string                     `json:"exercise"`
	Records    []models.PerformanceRecord `json:"records"`
	MaxWeight  float64                    `json:"max_weight"`
	Epley1RM   float64                    `json:"epley_1rm"`
	Brzycki1RM float64                    `json:"brzycki_1rm"`
	Stagnant   bool                       `json:"stagnant"`
}

func (s *Server) handleExerciseProgress(w http.ResponseWriter, r *http.Request) {
	name := exerciseName(r)
	limit := queryInt(r, "limit", 50)

	records, err := s.db.PerformanceHistory(r.Context(), name, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	view := exerciseProgressView{
		Exercise: name,
		Records:  records,
		Stagnant: progress.DetectStagnation(records, progress.DefaultStagnationThreshold),
	}
	for _, rec := range records {
		if rec.Weight > view.MaxWeight {
			view.MaxWeight = rec.Weight
		}
	}
	if len(records) > 0 {
		last := records[len(records)-1]
		view.Epley1RM = progress.Estimate1RMEpley(last.Weight, last.Reps)
		view.Brzycki1RM = progress.Estimate1RMBrzycki(last.Weight, last.Reps)
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleOverloadIndex(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	weekStart := now.AddDate(0, 0, -7)
	prevWeekStart := now.AddDate(0, 0, -14)

	current, err := s.db.SessionsInRange(r.Context(), weekStart, now)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	previous, err := s.db.SessionsInRange(r.Context(), prevWeekStart, weekStart)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var currentVolume, previousVolume float64
	for _, sess := range current {
		currentVolume += sess.TotalVolume
	}
	for _, sess := range previous {
		previousVolume += sess.TotalVolume
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"overload_index_pct": progress.OverloadIndex(current, previous),
		"current_volume":     currentVolume,
		"previous_volume":    previousVolume,
		"current_sessions":   len(current),
		"previous_sessions":  len(previous),
	})
}

func (s *Server) handleVolumeByCategory(w http.ResponseWriter, r *http.Request) {
	records, err := s.db.AllPerformanceRecords(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, progress.VolumeByCategory(records))
}

func (s *Server) handlePersonalRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.db.AllPerformanceRecords(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, progress.PersonalRecords(records))
}
