package workout

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/LeRenardBlanc/TPlanner/internal/models"
)

// fakeRepo is an in-memory Repository that records every mutation and the
// order mutations arrive in.
type fakeRepo struct {
	program map[string][]models.ProgramExercise
	last    map[string]*models.PerformanceRecord
	history []models.SessionHistory

	inserted []models.SessionHistory
	updated  []models.SessionHistory
	records  []models.PerformanceRecord
	ops      []string

	insertRecordsErr error
	updateSessionErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		program: make(map[string][]models.ProgramExercise),
		last:    make(map[string]*models.PerformanceRecord),
	}
}

func (f *fakeRepo) ProgramForDay(_ context.Context, day string) ([]models.ProgramExercise, error) {
	return f.program[day], nil
}

func (f *fakeRepo) LastPerformance(_ context.Context, exerciseName string) (*models.PerformanceRecord, error) {
	return f.last[exerciseName], nil
}

func (f *fakeRepo) InsertSession(_ context.Context, s models.SessionHistory) error {
	f.ops = append(f.ops, "insert_session")
	f.inserted = append(f.inserted, s)
	return nil
}

func (f *fakeRepo) UpdateSession(_ context.Context, s models.SessionHistory) error {
	if f.updateSessionErr != nil {
		return f.updateSessionErr
	}
	f.ops = append(f.ops, "update_session")
	f.updated = append(f.updated, s)
	return nil
}

func (f *fakeRepo) SessionsForDay(_ context.Context, day string, limit int) ([]models.SessionHistory, error) {
	var out []models.SessionHistory
	for _, s := range f.history {
		if s.Day == day {
			out = append(out, s)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) InsertPerformanceRecords(_ context.Context, records []models.PerformanceRecord) error {
	if f.insertRecordsErr != nil {
		return f.insertRecordsErr
	}
	f.ops = append(f.ops, "insert_records")
	f.records = append(f.records, records...)
	return nil
}

func programExercise(day, name string, sets int, reps string, weight float64, rpe int, category string) models.ProgramExercise {
	return models.ProgramExercise{
		Day: day, Name: name, Sets: sets, Reps: reps,
		TargetWeight: weight, TargetRPE: rpe, Category: category,
	}
}

func TestLoadSeedsFromTargets(t *testing.T) {
	repo := newFakeRepo()
	repo.program["Lundi"] = []models.ProgramExercise{
		programExercise("Lundi", "Squat", 5, "6-8", 100, 8, "Jambes"),
	}

	s, err := Load(context.Background(), repo, "Lundi")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.State() != StateActive {
		t.Fatalf("state = %v, want active", s.State())
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("session rows inserted = %d, want 1", len(repo.inserted))
	}
	if repo.inserted[0].ID != s.ID || repo.inserted[0].Day != "Lundi" {
		t.Errorf("inserted row = %+v", repo.inserted[0])
	}
	if repo.inserted[0].Completed {
		t.Error("fresh session must not be completed")
	}

	if len(s.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(s.Exercises))
	}
	es := s.Exercises[0]
	if es.Weight != "100" || es.RPE != "8" || es.Reps != "6-8" {
		t.Errorf("seed = %s/%s/%s, want 100/8/6-8", es.Weight, es.RPE, es.Reps)
	}
	if es.LastPerformance != "" {
		t.Errorf("unexpected last-performance hint %q", es.LastPerformance)
	}
}

func TestLoadSeedsFromLastPerformance(t *testing.T) {
	repo := newFakeRepo()
	repo.program["Lundi"] = []models.ProgramExercise{
		programExercise("Lundi", "Squat", 5, "6-8", 100, 8, "Jambes"),
	}
	rest := 120
	repo.last["Squat"] = &models.PerformanceRecord{
		ExerciseName: "Squat", Reps: 7, Weight: 102.5, RPE: 9, RestTimeSec: &rest,
	}

	s, err := Load(context.Background(), repo, "Lundi")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	es := s.Exercises[0]
	if es.Weight != "102.5" || es.RPE != "9" || es.RestTime != "120" {
		t.Errorf("seed = %s/%s/%s, want 102.5/9/120", es.Weight, es.RPE, es.RestTime)
	}
	// Reps keep the program's range notation even when a last record exists.
	if es.Reps != "6-8" {
		t.Errorf("reps = %q, want target range 6-8", es.Reps)
	}
	if es.LastPerformance != "Dernière: 102.5kg × 7 @ RPE 9" {
		t.Errorf("hint = %q", es.LastPerformance)
	}
}

func TestLoadFallsBackToDemoProgram(t *testing.T) {
	repo := newFakeRepo()

	s, err := Load(context.Background(), repo, "Mercredi")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Exercises) == 0 {
		t.Fatal("expected demonstration exercises for an empty day")
	}
	if got := s.Exercises[0].Exercise.Name; got != "Tirage vertical prise neutre" {
		t.Errorf("first demo exercise = %q", got)
	}

	// A day outside the demonstration program stays empty.
	s2, err := Load(context.Background(), repo, "Dimanche")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s2.Exercises) != 0 {
		t.Errorf("got %d exercises for unknown day, want 0", len(s2.Exercises))
	}
}

func TestEdits(t *testing.T) {
	repo := newFakeRepo()
	repo.program["Lundi"] = []models.ProgramExercise{
		programExercise("Lundi", "Squat", 5, "5", 100, 8, "Jambes"),
	}
	s, err := Load(context.Background(), repo, "Lundi")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.SetWeight("Squat", "105"); err != nil {
		t.Fatalf("SetWeight: %v", err)
	}
	if err := s.SetRPE("Squat", "9"); err != nil {
		t.Fatalf("SetRPE: %v", err)
	}
	if err := s.SetReps("Squat", "4"); err != nil {
		t.Fatalf("SetReps: %v", err)
	}
	if err := s.SetRestTime("Squat", "180"); err != nil {
		t.Fatalf("SetRestTime: %v", err)
	}
	if err := s.SetComment("Squat", "barre basse"); err != nil {
		t.Fatalf("SetComment: %v", err)
	}

	es := s.Exercises[0]
	if es.Weight != "105" || es.RPE != "9" || es.Reps != "4" || es.RestTime != "180" || es.Comment != "barre basse" {
		t.Errorf("state after edits = %+v", es)
	}

	if err := s.SetWeight("Curl", "10"); !errors.Is(err, ErrUnknownExercise) {
		t.Errorf("unknown exercise error = %v", err)
	}
}

func TestValidateSetSnapshotsWithoutReset(t *testing.T) {
	repo := newFakeRepo()
	repo.program["Lundi"] = []models.ProgramExercise{
		programExercise("Lundi", "Squat", 5, "5", 100, 8, "Jambes"),
	}
	s, err := Load(context.Background(), repo, "Lundi")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.ValidateSet("Squat"); err != nil {
		t.Fatalf("ValidateSet: %v", err)
	}
	if err := s.ValidateSet("Squat"); err != nil {
		t.Fatalf("ValidateSet: %v", err)
	}

	es := s.Exercises[0]
	if len(es.ValidatedSets) != 2 {
		t.Fatalf("validated sets = %d, want 2", len(es.ValidatedSets))
	}
	// Editable fields survive validation so identical sets stack up.
	if es.Weight != "100" || es.Reps != "5" {
		t.Errorf("fields were reset: %s/%s", es.Weight, es.Reps)
	}
	// Blank rest time is absent from the snapshot, not an empty string.
	if es.ValidatedSets[0].RestTime != nil {
		t.Errorf("rest time = %q, want nil", *es.ValidatedSets[0].RestTime)
	}

	if err := s.SetRestTime("Squat", "90"); err != nil {
		t.Fatalf("SetRestTime: %v", err)
	}
	if err := s.ValidateSet("Squat"); err != nil {
		t.Fatalf("ValidateSet: %v", err)
	}
	if set := es.ValidatedSets[2]; set.RestTime == nil || *set.RestTime != "90" {
		t.Errorf("rest time snapshot = %v, want 90", set.RestTime)
	}

	// A later edit must not rewrite earlier snapshots.
	if err := s.SetWeight("Squat", "110"); err != nil {
		t.Fatalf("SetWeight: %v", err)
	}
	if es.ValidatedSets[0].Weight != "100" {
		t.Errorf("snapshot mutated to %q", es.ValidatedSets[0].Weight)
	}
}

func TestFinish(t *testing.T) {
	repo := newFakeRepo()
	repo.program["Lundi"] = []models.ProgramExercise{
		programExercise("Lundi", "Squat", 2, "8-10", 100, 8, "Jambes"),
	}
	s, err := Load(context.Background(), repo, "Lundi")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.SetComment("Squat", "profond"); err != nil {
		t.Fatalf("SetComment: %v", err)
	}
	if err := s.ValidateSet("Squat"); err != nil {
		t.Fatalf("ValidateSet: %v", err)
	}
	if err := s.SetWeight("Squat", "105"); err != nil {
		t.Fatalf("SetWeight: %v", err)
	}
	if err := s.SetReps("Squat", "8"); err != nil {
		t.Fatalf("SetReps: %v", err)
	}
	if err := s.ValidateSet("Squat"); err != nil {
		t.Fatalf("ValidateSet: %v", err)
	}

	summary, err := s.Finish(context.Background())
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if s.State() != StateFinished {
		t.Errorf("state = %v, want finished", s.State())
	}

	if len(repo.records) != 2 {
		t.Fatalf("records = %d, want 2", len(repo.records))
	}
	first, second := repo.records[0], repo.records[1]
	// "8-10" resolves to the truncated average 9.
	if first.Reps != 9 || first.Weight != 100 {
		t.Errorf("first record = %d reps @ %v kg, want 9 @ 100", first.Reps, first.Weight)
	}
	if second.Reps != 8 || second.Weight != 105 {
		t.Errorf("second record = %d reps @ %v kg, want 8 @ 105", second.Reps, second.Weight)
	}
	if first.Sets != 1 || second.Sets != 1 {
		t.Error("each validated set must persist as exactly one set")
	}
	if first.SessionID != s.ID {
		t.Errorf("record session = %v, want %v", first.SessionID, s.ID)
	}
	if first.Comment == nil || *first.Comment != "profond" {
		t.Errorf("record comment = %v, want profond", first.Comment)
	}
	if first.Category != "Jambes" {
		t.Errorf("record category = %q", first.Category)
	}

	wantVolume := 100*9.0 + 105*8.0
	if summary.TotalVolume != wantVolume {
		t.Errorf("total volume = %v, want %v", summary.TotalVolume, wantVolume)
	}
	if summary.AverageRPE != 8 {
		t.Errorf("average rpe = %v, want 8", summary.AverageRPE)
	}
	if summary.SetCount != 2 {
		t.Errorf("set count = %d, want 2", summary.SetCount)
	}

	if len(repo.updated) != 1 {
		t.Fatalf("session updates = %d, want 1", len(repo.updated))
	}
	final := repo.updated[0]
	if !final.Completed || final.TotalVolume != wantVolume || final.AverageRPE != 8 {
		t.Errorf("final session row = %+v", final)
	}
	if final.DurationMin == nil {
		t.Error("final session row is missing a duration")
	}

	// Records must land before the session is marked completed.
	wantOps := []string{"insert_session", "insert_records", "update_session"}
	if len(repo.ops) != len(wantOps) {
		t.Fatalf("ops = %v", repo.ops)
	}
	for i, op := range wantOps {
		if repo.ops[i] != op {
			t.Fatalf("ops = %v, want %v", repo.ops, wantOps)
		}
	}

	// No previous session on file: the summary reports the absolute volume.
	if summary.VolumeChangePct != nil {
		t.Errorf("change pct = %v, want nil", *summary.VolumeChangePct)
	}
	if summary.Comparison != "Volume total: 1740.0 kg" {
		t.Errorf("comparison = %q", summary.Comparison)
	}
}

func TestFinishComparesAgainstPreviousSession(t *testing.T) {
	repo := newFakeRepo()
	repo.program["Lundi"] = []models.ProgramExercise{
		programExercise("Lundi", "Squat", 1, "10", 100, 8, "Jambes"),
	}
	s, err := Load(context.Background(), repo, "Lundi")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Most recent first: the live session, then last week's.
	repo.history = []models.SessionHistory{
		{ID: s.ID, Day: "Lundi", TotalVolume: 0},
		{Day: "Lundi", TotalVolume: 800, Completed: true},
	}

	if err := s.ValidateSet("Squat"); err != nil {
		t.Fatalf("ValidateSet: %v", err)
	}
	summary, err := s.Finish(context.Background())
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if summary.VolumeChangePct == nil {
		t.Fatal("expected a volume change percentage")
	}
	if got := *summary.VolumeChangePct; math.Abs(got-25) > 1e-9 {
		t.Errorf("change = %v%%, want 25%%", got)
	}
	if summary.Comparison != "Volume total: +25.0% par rapport à la dernière séance" {
		t.Errorf("comparison = %q", summary.Comparison)
	}
}

func TestFinishEmptySession(t *testing.T) {
	repo := newFakeRepo()
	repo.program["Lundi"] = []models.ProgramExercise{
		programExercise("Lundi", "Squat", 5, "5", 100, 8, "Jambes"),
	}
	s, err := Load(context.Background(), repo, "Lundi")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	summary, err := s.Finish(context.Background())
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if summary.TotalVolume != 0 || summary.AverageRPE != 0 || summary.SetCount != 0 {
		t.Errorf("summary = %+v, want zeros", summary)
	}
	if len(repo.records) != 0 {
		t.Errorf("records = %d, want 0", len(repo.records))
	}
	if len(repo.updated) != 1 || !repo.updated[0].Completed {
		t.Error("empty session must still complete")
	}
}

func TestFinishUnparsableFields(t *testing.T) {
	repo := newFakeRepo()
	repo.program["Lundi"] = []models.ProgramExercise{
		programExercise("Lundi", "Squat", 1, "max", 100, 8, "Jambes"),
	}
	s, err := Load(context.Background(), repo, "Lundi")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.SetWeight("Squat", "lourde"); err != nil {
		t.Fatalf("SetWeight: %v", err)
	}
	if err := s.SetRPE("Squat", "dur"); err != nil {
		t.Fatalf("SetRPE: %v", err)
	}
	if err := s.ValidateSet("Squat"); err != nil {
		t.Fatalf("ValidateSet: %v", err)
	}

	summary, err := s.Finish(context.Background())
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	rec := repo.records[0]
	if rec.Weight != 0 || rec.RPE != 0 || rec.Reps != 0 {
		t.Errorf("record = %+v, want zeroed numerics", rec)
	}
	if summary.TotalVolume != 0 {
		t.Errorf("total volume = %v, want 0", summary.TotalVolume)
	}
}

func TestFinishPersistenceFailureKeepsSessionActive(t *testing.T) {
	repo := newFakeRepo()
	repo.program["Lundi"] = []models.ProgramExercise{
		programExercise("Lundi", "Squat", 1, "5", 100, 8, "Jambes"),
	}
	s, err := Load(context.Background(), repo, "Lundi")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.ValidateSet("Squat"); err != nil {
		t.Fatalf("ValidateSet: %v", err)
	}

	repo.insertRecordsErr = errors.New("disque plein")
	if _, err := s.Finish(context.Background()); err == nil {
		t.Fatal("expected a persistence error")
	}
	if s.State() != StateActive {
		t.Errorf("state = %v, want active after failed finish", s.State())
	}
	if len(repo.updated) != 0 {
		t.Error("session must not be marked completed when records failed")
	}

	// The retry succeeds once storage recovers.
	repo.insertRecordsErr = nil
	if _, err := s.Finish(context.Background()); err != nil {
		t.Fatalf("retry Finish: %v", err)
	}
	if s.State() != StateFinished {
		t.Errorf("state = %v, want finished", s.State())
	}
}

func TestFinishedSessionRejectsEverything(t *testing.T) {
	repo := newFakeRepo()
	repo.program["Lundi"] = []models.ProgramExercise{
		programExercise("Lundi", "Squat", 1, "5", 100, 8, "Jambes"),
	}
	s, err := Load(context.Background(), repo, "Lundi")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := s.Finish(context.Background()); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if err := s.SetWeight("Squat", "110"); !errors.Is(err, ErrNotActive) {
		t.Errorf("SetWeight after finish = %v", err)
	}
	if err := s.ValidateSet("Squat"); !errors.Is(err, ErrNotActive) {
		t.Errorf("ValidateSet after finish = %v", err)
	}
	if _, err := s.Finish(context.Background()); !errors.Is(err, ErrNotActive) {
		t.Errorf("second Finish = %v", err)
	}
}

func TestResolveReps(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"10", 10},
		{"8-10", 9},
		{"8-11", 9},
		{" 8 - 10 ", 9},
		{"8-x", 8},
		{"x-10", 10},
		{"max", 0},
		{"", 0},
		{"-", 0},
	}
	for _, tt := range tests {
		if got := resolveReps(tt.in); got != tt.want {
			t.Errorf("resolveReps(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestManagerLifecycle(t *testing.T) {
	repo := newFakeRepo()
	repo.program["Lundi"] = []models.ProgramExercise{
		programExercise("Lundi", "Squat", 1, "5", 100, 8, "Jambes"),
	}
	m := NewManager(repo)

	s, err := m.Start(context.Background(), "Lundi")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	got, err := m.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}

	if err := s.ValidateSet("Squat"); err != nil {
		t.Fatalf("ValidateSet: %v", err)
	}
	if _, err := m.Finish(context.Background(), s.ID); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if _, err := m.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after finish = %v, want ErrSessionNotFound", err)
	}
}

func TestManagerKeepsSessionOnFailedFinish(t *testing.T) {
	repo := newFakeRepo()
	repo.program["Lundi"] = []models.ProgramExercise{
		programExercise("Lundi", "Squat", 1, "5", 100, 8, "Jambes"),
	}
	m := NewManager(repo)
	s, err := m.Start(context.Background(), "Lundi")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.ValidateSet("Squat"); err != nil {
		t.Fatalf("ValidateSet: %v", err)
	}

	repo.updateSessionErr = errors.New("connexion perdue")
	if _, err := m.Finish(context.Background(), s.ID); err == nil {
		t.Fatal("expected finish to fail")
	}
	if _, err := m.Get(s.ID); err != nil {
		t.Errorf("session dropped from registry after failed finish: %v", err)
	}
}
