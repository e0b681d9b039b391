package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("TPlanner", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("TPlanner strength-training server. Query the training program, session history and progress analytics (volume, estimated 1RM, stagnation, personal records)."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetProgram, Handler: h.getProgram},
		server.ServerTool{Tool: toolGetExerciseProgress, Handler: h.getExerciseProgress},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetVolumeByCategory, Handler: h.getVolumeByCategory},
		server.ServerTool{Tool: toolGetOverloadIndex, Handler: h.getOverloadIndex},
		server.ServerTool{Tool: toolGetRecentSessions, Handler: h.getRecentSessions},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resProgram, Handler: h.programResource},
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessionsResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resProgram = mcp.NewResource(
	"tplanner://program",
	"Training Program",
	mcp.WithResourceDescription("The full training program: every planned exercise with day, sets, reps, target weight, target RPE and category"),
	mcp.WithMIMEType("application/json"),
)

var resRecentSessions = mcp.NewResource(
	"tplanner://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("The ten most recent workout sessions with total volume and average RPE"),
	mcp.WithMIMEType("application/json"),
)
