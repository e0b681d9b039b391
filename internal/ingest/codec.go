// Package ingest moves a training program in and out of the system as
// comma-separated text. Import is deliberately lenient: numeric fields that
// fail to parse fall back to documented defaults, and a malformed row is
// skipped and reported without aborting the rest of the stream.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/LeRenardBlanc/TPlanner/internal/models"
)

// Program CSV column headers. Header matching on import is case-insensitive
// and whitespace-trimmed; export always emits exactly these, in this order,
// so an exported program re-imports unchanged.
var programHeader = []string{"Jour", "Exercice", "Séries", "Reps", "Poids", "RPE", "Catégorie", "Commentaire"}

// Performance history export headers: the program columns prefixed with the
// record date and extended with the rest time.
var performanceHeader = []string{"Date", "Exercice", "Séries", "Reps", "Poids", "RPE", "Catégorie", "Repos (s)", "Commentaire"}

// Defaults substituted when a numeric program field does not parse. Rows are
// never dropped for a bad number alone.
const (
	defaultSets      = 3
	defaultWeight    = 0.0
	defaultTargetRPE = 8
)

const dateLayout = "2006-01-02 15:04:05"

// ImportResult is the outcome of decoding a program table: the rows that
// decoded plus one message per row that did not. Import never fails the whole
// stream for a single bad row; even an unreadable stream yields an (empty)
// result with one error entry.
type ImportResult struct {
	Exercises []models.ProgramExercise `json:"exercises"`
	Errors    []string                 `json:"errors"`
}

// ImportProgram decodes a program CSV. Rows are assigned increasing order
// indexes in encounter order, which fixes the display order within each day.
func ImportProgram(r io.Reader) ImportResult {
	var result ImportResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("reading CSV header: %v", err))
		return result
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	orderIndex := 0
	for rowNum := 1; ; rowNum++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
				continue
			}
			// Not a per-record error: the stream itself failed.
			result.Errors = append(result.Errors, fmt.Sprintf("reading CSV: %v", err))
			break
		}

		exercise, err := decodeRow(columns, row)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		exercise.OrderIndex = orderIndex
		orderIndex++
		result.Exercises = append(result.Exercises, exercise)
	}

	return result
}

func decodeRow(columns map[string]int, row []string) (models.ProgramExercise, error) {
	field := func(name string) (string, error) {
		i, ok := columns[name]
		if !ok {
			return "", fmt.Errorf("missing column %q", name)
		}
		if i >= len(row) {
			return "", fmt.Errorf("row too short for column %q", name)
		}
		return strings.TrimSpace(row[i]), nil
	}

	day, err := field("jour")
	if err != nil {
		return models.ProgramExercise{}, err
	}
	name, err := field("exercice")
	if err != nil {
		return models.ProgramExercise{}, err
	}
	setsRaw, err := field("séries")
	if err != nil {
		return models.ProgramExercise{}, err
	}
	reps, err := field("reps")
	if err != nil {
		return models.ProgramExercise{}, err
	}
	weightRaw, err := field("poids")
	if err != nil {
		return models.ProgramExercise{}, err
	}
	rpeRaw, err := field("rpe")
	if err != nil {
		return models.ProgramExercise{}, err
	}
	category, err := field("catégorie")
	if err != nil {
		return models.ProgramExercise{}, err
	}
	commentRaw, err := field("commentaire")
	if err != nil {
		return models.ProgramExercise{}, err
	}

	sets, err := strconv.Atoi(setsRaw)
	if err != nil {
		sets = defaultSets
	}
	weight, err := strconv.ParseFloat(weightRaw, 64)
	if err != nil {
		weight = defaultWeight
	}
	if weight < 0 {
		return models.ProgramExercise{}, fmt.Errorf("negative weight %q", weightRaw)
	}
	rpe, err := strconv.Atoi(rpeRaw)
	if err != nil {
		rpe = defaultTargetRPE
	}

	var comment *string
	if commentRaw != "" {
		comment = &commentRaw
	}

	return models.ProgramExercise{
		Day:          day,
		Name:         name,
		Sets:         sets,
		Reps:         reps,
		TargetWeight: weight,
		TargetRPE:    rpe,
		Category:     category,
		Comment:      comment,
	}, nil
}

// ExportProgram writes the program as CSV in the import schema, one row per
// exercise in the given order.
func ExportProgram(w io.Writer, exercises []models.ProgramExercise) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(programHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range exercises {
		comment := ""
		if e.Comment != nil {
			comment = *e.Comment
		}
		row := []string{
			e.Day,
			e.Name,
			strconv.Itoa(e.Sets),
			e.Reps,
			formatWeight(e.TargetWeight),
			strconv.Itoa(e.TargetRPE),
			e.Category,
			comment,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing exercise %q: %w", e.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportPerformance writes the performance history as CSV, one row per
// recorded set, with the record time in local "yyyy-MM-dd HH:mm:ss" form.
func ExportPerformance(w io.Writer, records []models.PerformanceRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(performanceHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		rest := ""
		if r.RestTimeSec != nil {
			rest = strconv.Itoa(*r.RestTimeSec)
		}
		comment := ""
		if r.Comment != nil {
			comment = *r.Comment
		}
		row := []string{
			r.RecordedAt.Local().Format(dateLayout),
			r.ExerciseName,
			strconv.Itoa(r.Sets),
			strconv.Itoa(r.Reps),
			formatWeight(r.Weight),
			strconv.Itoa(r.RPE),
			r.Category,
			rest,
			comment,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record for %q: %w", r.ExerciseName, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
