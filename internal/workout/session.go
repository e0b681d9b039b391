// Package workout drives one live training session from load to finish.
// A Session is single-use: it opens in Loading, accepts edits and set
// validations while Active, and becomes terminal once Finished. Re-entering
// the same day starts an unrelated session with a new identifier.
package workout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/LeRenardBlanc/TPlanner/internal/models"
	"github.com/google/uuid"
)

// State is the lifecycle phase of a session. No state is ever revisited.
type State int

const (
	StateLoading State = iota
	StateActive
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

var (
	// ErrNotActive is returned for edits, validations or finish attempts
	// outside the Active state.
	ErrNotActive = errors.New("session is not active")
	// ErrUnknownExercise is returned when an edit names an exercise the
	// session was not seeded with.
	ErrUnknownExercise = errors.New("unknown exercise")
)

// ValidatedSet is an immutable snapshot of the editable fields at the moment
// the athlete confirmed a set. Values stay as entered; they are only resolved
// to numbers at finish time.
type ValidatedSet struct {
	Weight   string  `json:"weight"`
	RPE      string  `json:"rpe"`
	Reps     string  `json:"reps"`
	RestTime *string `json:"rest_time,omitempty"`
}

// ExerciseState is the live editable state for one exercise of the session.
// The fields hold raw text so the caller can type freely; Reps in particular
// carries the target's range notation verbatim until finish.
type ExerciseState struct {
	Exercise        models.ProgramExercise `json:"exercise"`
	Weight          string                 `json:"weight"`
	RPE             string                 `json:"rpe"`
	Reps            string                 `json:"reps"`
	RestTime        string                 `json:"rest_time"`
	Comment         string                 `json:"comment"`
	ValidatedSets   []ValidatedSet         `json:"validated_sets"`
	LastPerformance string                 `json:"last_performance,omitempty"`
}

// Session is one live workout for a single day.
type Session struct {
	ID        uuid.UUID
	Day       string
	StartedAt time.Time
	Exercises []*ExerciseState

	repo  Repository
	state State
}

// Summary is the closing report of a finished session.
type Summary struct {
	SessionID       uuid.UUID `json:"session_id"`
	Day             string    `json:"day"`
	TotalVolume     float64   `json:"total_volume"`
	AverageRPE      float64   `json:"average_rpe"`
	SetCount        int       `json:"set_count"`
	VolumeChangePct *float64  `json:"volume_change_pct,omitempty"`
	Comparison      string    `json:"comparison"`
}

// Load opens a new session for a day. The session row is persisted before
// anything else so an abandoned workout still leaves an audit trail. Each
// exercise's editable state is seeded from its last recorded performance when
// one exists, otherwise from the program targets; reps always start from the
// target string so range notation survives into the editor. A day without
// program exercises falls back to the built-in demonstration program.
func Load(ctx context.Context, repo Repository, day string) (*Session, error) {
	s := &Session{
		ID:        uuid.New(),
		Day:       day,
		StartedAt: time.Now(),
		repo:      repo,
		state:     StateLoading,
	}

	if err := repo.InsertSession(ctx, models.SessionHistory{
		ID:        s.ID,
		Day:       day,
		StartedAt: s.StartedAt,
	}); err != nil {
		return nil, fmt.Errorf("creating session for %s: %w", day, err)
	}

	exercises, err := repo.ProgramForDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("loading program for %s: %w", day, err)
	}
	if len(exercises) == 0 {
		exercises = DemoProgram(day)
	}

	for _, ex := range exercises {
		last, err := repo.LastPerformance(ctx, ex.Name)
		if err != nil {
			return nil, fmt.Errorf("loading last performance for %s: %w", ex.Name, err)
		}

		es := &ExerciseState{
			Exercise: ex,
			Weight:   formatNumber(ex.TargetWeight),
			RPE:      strconv.Itoa(ex.TargetRPE),
			Reps:     ex.Reps,
		}
		if ex.Comment != nil {
			es.Comment = *ex.Comment
		}
		if last != nil {
			es.Weight = formatNumber(last.Weight)
			es.RPE = strconv.Itoa(last.RPE)
			if last.RestTimeSec != nil {
				es.RestTime = strconv.Itoa(*last.RestTimeSec)
			}
			es.LastPerformance = fmt.Sprintf("Dernière: %skg × %d @ RPE %d",
				formatNumber(last.Weight), last.Reps, last.RPE)
		}
		s.Exercises = append(s.Exercises, es)
	}

	s.state = StateActive
	return s, nil
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	return s.state
}

// SetWeight replaces the editable weight of an exercise.
func (s *Session) SetWeight(exerciseName, value string) error {
	return s.edit(exerciseName, func(es *ExerciseState) { es.Weight = value })
}

// SetRPE replaces the editable RPE of an exercise.
func (s *Session) SetRPE(exerciseName, value string) error {
	return s.edit(exerciseName, func(es *ExerciseState) { es.RPE = value })
}

// SetReps replaces the editable reps of an exercise.
func (s *Session) SetReps(exerciseName, value string) error {
	return s.edit(exerciseName, func(es *ExerciseState) { es.Reps = value })
}

// SetRestTime replaces the editable rest time of an exercise.
func (s *Session) SetRestTime(exerciseName, value string) error {
	return s.edit(exerciseName, func(es *ExerciseState) { es.RestTime = value })
}

// SetComment replaces the editable comment of an exercise.
func (s *Session) SetComment(exerciseName, value string) error {
	return s.edit(exerciseName, func(es *ExerciseState) { es.Comment = value })
}

func (s *Session) edit(exerciseName string, apply func(*ExerciseState)) error {
	if s.state != StateActive {
		return ErrNotActive
	}
	es := s.exercise(exerciseName)
	if es == nil {
		return fmt.Errorf("%w: %s", ErrUnknownExercise, exerciseName)
	}
	apply(es)
	return nil
}

func (s *Session) exercise(name string) *ExerciseState {
	for _, es := range s.Exercises {
		if es.Exercise.Name == name {
			return es
		}
	}
	return nil
}

// ValidateSet snapshots the current editable fields of an exercise as one
// completed set. Rest time is kept only when non-blank. The editable fields
// are deliberately not reset, so several identical sets can be logged by
// validating repeatedly.
func (s *Session) ValidateSet(exerciseName string) error {
	if s.state != StateActive {
		return ErrNotActive
	}
	es := s.exercise(exerciseName)
	if es == nil {
		return fmt.Errorf("%w: %s", ErrUnknownExercise, exerciseName)
	}

	set := ValidatedSet{
		Weight: es.Weight,
		RPE:    es.RPE,
		Reps:   es.Reps,
	}
	if strings.TrimSpace(es.RestTime) != "" {
		rest := es.RestTime
		set.RestTime = &rest
	}
	es.ValidatedSets = append(es.ValidatedSets, set)
	return nil
}

// Finish closes the session: every validated set becomes one immutable
// performance record (sets fixed at 1, reps resolved from range notation),
// the records are persisted in one batch, and only then is the session row
// updated with its final aggregates and marked completed — a crash mid-finish
// can therefore never report completion without its records. The returned
// summary compares total volume against the previous session for the same
// day when one exists.
func (s *Session) Finish(ctx context.Context) (*Summary, error) {
	if s.state != StateActive {
		return nil, ErrNotActive
	}

	var (
		records     []models.PerformanceRecord
		totalVolume float64
		totalRPE    float64
		setCount    int
	)
	now := time.Now()

	for _, es := range s.Exercises {
		for _, set := range es.ValidatedSets {
			weight, err := strconv.ParseFloat(strings.TrimSpace(set.Weight), 64)
			if err != nil {
				weight = 0
			}
			rpe, err := strconv.Atoi(strings.TrimSpace(set.RPE))
			if err != nil {
				rpe = 0
			}
			reps := resolveReps(set.Reps)

			var restTime *int
			if set.RestTime != nil {
				if v, err := strconv.Atoi(strings.TrimSpace(*set.RestTime)); err == nil {
					restTime = &v
				}
			}
			var comment *string
			if strings.TrimSpace(es.Comment) != "" {
				c := es.Comment
				comment = &c
			}

			totalVolume += weight * float64(reps)
			totalRPE += float64(rpe)
			setCount++

			records = append(records, models.PerformanceRecord{
				ID:           uuid.New(),
				SessionID:    s.ID,
				ExerciseName: es.Exercise.Name,
				Sets:         1,
				Reps:         reps,
				Weight:       weight,
				RPE:          rpe,
				RestTimeSec:  restTime,
				Comment:      comment,
				Category:     es.Exercise.Category,
				RecordedAt:   now,
			})
		}
	}

	averageRPE := 0.0
	if setCount > 0 {
		averageRPE = totalRPE / float64(setCount)
	}

	// Records must be durable before the session claims completion.
	if err := s.repo.InsertPerformanceRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("saving performance records: %w", err)
	}
	duration := int(now.Sub(s.StartedAt).Minutes())
	if err := s.repo.UpdateSession(ctx, models.SessionHistory{
		ID:          s.ID,
		Day:         s.Day,
		StartedAt:   s.StartedAt,
		TotalVolume: totalVolume,
		AverageRPE:  averageRPE,
		DurationMin: &duration,
		Completed:   true,
	}); err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}

	summary := &Summary{
		SessionID:   s.ID,
		Day:         s.Day,
		TotalVolume: totalVolume,
		AverageRPE:  averageRPE,
		SetCount:    setCount,
	}
	summary.Comparison = fmt.Sprintf("Volume total: %.1f kg", totalVolume)

	sessions, err := s.repo.SessionsForDay(ctx, s.Day, 2)
	if err != nil {
		return nil, fmt.Errorf("loading previous sessions for %s: %w", s.Day, err)
	}
	if len(sessions) >= 2 {
		previous := sessions[1]
		if previous.TotalVolume > 0 {
			change := (totalVolume - previous.TotalVolume) / previous.TotalVolume * 100
			summary.VolumeChangePct = &change
			summary.Comparison = fmt.Sprintf("Volume total: %+.1f%% par rapport à la dernière séance", change)
		}
	}

	s.state = StateFinished
	return summary, nil
}

// resolveReps turns a reps string into a concrete integer. A range "a-b"
// resolves to the average of its parseable bounds truncated toward zero;
// bounds that do not parse are dropped, and when none parse the result is 0.
// TODO: revisit the truncation once a rounding policy is decided for ranges
// entered with a single bound or stray whitespace.
func resolveReps(reps string) int {
	var sum, count int
	for _, part := range strings.Split(reps, "-") {
		if v, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return int(float64(sum) / float64(count))
}

// formatNumber renders a weight without a trailing ".0" for whole values.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
