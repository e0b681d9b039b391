package mcp

import (
	"context"
	"time"

	"github.com/LeRenardBlanc/TPlanner/internal/models"
	"github.com/LeRenardBlanc/TPlanner/internal/progress"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetProgram = mcp.NewTool("get_program",
	mcp.WithDescription("Retrieve the training program. Returns planned exercises with day, sets, reps (possibly a range like '8-10'), target weight, target RPE and muscle-group category."),
	mcp.WithString("day", mcp.Description("Filter by day label (e.g. 'Mercredi'). Omit for the whole program.")),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("Progression analysis for one exercise: recorded sets in chronological order, best weight, Epley and Brzycki one-rep-max estimates from the latest set, and a stagnation flag (average volume growth over the last sessions below 3%)."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exact exercise name")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of recent records to analyze. Defaults to 50.")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Personal records: for each exercise ever logged, the set with the highest weight."),
)

var toolGetVolumeByCategory = mcp.NewTool("get_volume_by_category",
	mcp.WithDescription("Total training volume (weight × reps × sets) grouped by muscle-group category, over the whole history."),
)

var toolGetOverloadIndex = mcp.NewTool("get_overload_index",
	mcp.WithDescription("Progressive overload index: percentage change in total session volume of the last 7 days versus the 7 days before. 0.0 when the previous period has no volume."),
)

var toolGetRecentSessions = mcp.NewTool("get_recent_sessions",
	mcp.WithDescription("The most recent workout sessions with day, start time, total volume, average RPE and completion flag."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sessions. Defaults to 10.")),
)

// --- Tool handlers ---

func (h *handlers) getProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day := req.GetString("day", "")

	var (
		exercises []models.ProgramExercise
		err       error
	)
	if day != "" {
		exercises, err = h.ds.ProgramForDay(ctx, day)
	} else {
		exercises, err = h.ds.AllProgramExercises(ctx)
	}
	if err != nil {
		h.log.Error("mcp get_program", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	limit := req.GetInt("limit", 50)

	records, err := h.ds.PerformanceHistory(ctx, exercise, limit)
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := map[string]any{
		"exercise": exercise,
		"records":  records,
		"stagnant": progress.DetectStagnation(records, progress.DefaultStagnationThreshold),
	}
	var maxWeight float64
	for _, r := range records {
		if r.Weight > maxWeight {
			maxWeight = r.Weight
		}
	}
	out["max_weight"] = maxWeight
	if len(records) > 0 {
		last := records[len(records)-1]
		out["epley_1rm"] = progress.Estimate1RMEpley(last.Weight, last.Reps)
		out["brzycki_1rm"] = progress.Estimate1RMBrzycki(last.Weight, last.Reps)
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.ds.AllPerformanceRecords(ctx)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(progress.PersonalRecords(records))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getVolumeByCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.ds.AllPerformanceRecords(ctx)
	if err != nil {
		h.log.Error("mcp get_volume_by_category", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(progress.VolumeByCategory(records))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getOverloadIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := time.Now()
	weekStart := now.AddDate(0, 0, -7)
	prevWeekStart := now.AddDate(0, 0, -14)

	current, err := h.ds.SessionsInRange(ctx, weekStart, now)
	if err != nil {
		h.log.Error("mcp get_overload_index", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	previous, err := h.ds.SessionsInRange(ctx, prevWeekStart, weekStart)
	if err != nil {
		h.log.Error("mcp get_overload_index", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"overload_index_pct": progress.OverloadIndex(current, previous),
		"current_sessions":   len(current),
		"previous_sessions":  len(previous),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecentSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 10)

	sessions, err := h.ds.RecentSessions(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_recent_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
