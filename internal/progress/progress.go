// Package progress computes training analytics from performance history:
// volume, intensity, estimated one-rep maxima, stagnation detection and
// per-category aggregation. Everything here is a pure function over slices;
// nothing mutates its arguments and every function is safe on empty input.
package progress

import (
	"github.com/LeRenardBlanc/TPlanner/internal/models"
)

// DefaultStagnationThreshold is the percentage growth below which a lift is
// considered stagnant.
const DefaultStagnationThreshold = 3.0

// Volume returns the load of a single record: weight × reps × sets.
func Volume(r models.PerformanceRecord) float64 {
	return r.Weight * float64(r.Reps) * float64(r.Sets)
}

// TotalVolume sums Volume over all records. Empty input yields 0.
func TotalVolume(records []models.PerformanceRecord) float64 {
	var total float64
	for _, r := range records {
		total += Volume(r)
	}
	return total
}

// AverageRPE returns the arithmetic mean of the reported RPEs, or 0 for an
// empty slice. Callers that need to tell "no data" apart from a genuine zero
// must check the record count, not the value.
func AverageRPE(records []models.PerformanceRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += float64(r.RPE)
	}
	return sum / float64(len(records))
}

// OverloadIndex returns the percentage change in total session volume between
// two periods: (Σcurrent/Σprevious − 1) × 100. When the previous period sums
// to zero or less the index is 0.0; that floor guards the division and keeps
// a first training week from reading as infinite progress.
func OverloadIndex(current, previous []models.SessionHistory) float64 {
	var currentVolume, previousVolume float64
	for _, s := range current {
		currentVolume += s.TotalVolume
	}
	for _, s := range previous {
		previousVolume += s.TotalVolume
	}
	if previousVolume <= 0 {
		return 0.0
	}
	return (currentVolume/previousVolume - 1.0) * 100.0
}

// Estimate1RMEpley estimates a one-rep max with the Epley formula:
// weight × (1 + reps/30).
func Estimate1RMEpley(weight float64, reps int) float64 {
	return weight * (1 + float64(reps)/30.0)
}

// Estimate1RMBrzycki estimates a one-rep max with the Brzycki formula:
// weight × (36 / (37 − reps)). At 37 reps or more the denominator stops being
// positive, so the estimate saturates to the weight itself.
func Estimate1RMBrzycki(weight float64, reps int) float64 {
	if reps >= 37 {
		return weight
	}
	return weight * (36.0 / (37.0 - float64(reps)))
}

// DetectStagnation reports whether an exercise has stalled. It looks at the
// last four records only (stagnation is a short-window signal), computes the
// period-over-period percentage change in per-record volume for the three
// consecutive pairs, and flags stagnation when the average change falls below
// the threshold. Fewer than four records is never stagnant.
func DetectStagnation(records []models.PerformanceRecord, threshold float64) bool {
	if len(records) < 4 {
		return false
	}

	recent := records[len(records)-4:]
	volumes := make([]float64, len(recent))
	for i, r := range recent {
		volumes[i] = Volume(r)
	}

	var totalChange float64
	for i := 1; i < len(volumes); i++ {
		if volumes[i-1] > 0 {
			totalChange += (volumes[i] - volumes[i-1]) / volumes[i-1] * 100.0
		}
	}

	averageChange := totalChange / float64(len(volumes)-1)
	return averageChange < threshold
}

// VolumeByCategory sums volume per muscle-group category. Categories with no
// records are absent from the map rather than present with a zero.
func VolumeByCategory(records []models.PerformanceRecord) map[string]float64 {
	byCategory := make(map[string]float64)
	for _, r := range records {
		byCategory[r.Category] += Volume(r)
	}
	return byCategory
}

// PersonalRecords returns, per exercise name, the record with the highest
// weight. Ties on weight go to the earliest RecordedAt so the result does not
// depend on input order.
func PersonalRecords(records []models.PerformanceRecord) map[string]models.PerformanceRecord {
	best := make(map[string]models.PerformanceRecord)
	for _, r := range records {
		current, ok := best[r.ExerciseName]
		if !ok {
			best[r.ExerciseName] = r
			continue
		}
		if r.Weight > current.Weight ||
			(r.Weight == current.Weight && r.RecordedAt.Before(current.RecordedAt)) {
			best[r.ExerciseName] = r
		}
	}
	return best
}
