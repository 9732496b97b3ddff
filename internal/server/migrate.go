package server

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

// migrateResult is the JSON payload returned for every migrate_<kind>
// call: the step's Result plus the Kind it ran, flattened into
// JSON-friendly fields (migerr.MigrationError doesn't marshal usefully
// on its own since its Unwrap target may not be JSON-safe).
type migrateResult struct {
	Kind      string            `json:"kind"`
	Counts    map[string]int    `json:"counts,omitempty"`
	Durations map[string]string `json:"durations,omitempty"`
	Error     *migrateError     `json:"error,omitempty"`
}

type migrateError struct {
	Category string `json:"category"`
	Object   string `json:"object,omitempty"`
	Message  string `json:"message"`
	Fragment string `json:"fragment,omitempty"`
}

// toolMigrateStep builds the tool/handler pair for one registered
// migstep.Kind, following the teacher's one-tool-per-operation shape
// (toolXxx/handleXxx pairs enumerated from registerTools) but generated
// from the migstep.Registry instead of hand-written one-by-one, since
// here the list is an order of magnitude longer than the teacher's.
func (s *Server) toolMigrateStep(kind migstep.Kind) (mcp.Tool, mcpserver.ToolHandlerFunc) {
	name := toolNameForKind(kind)
	tool := mcp.Tool{
		Name:        name,
		Description: "Runs the " + string(kind) + " migration step.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
	return tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.handleMigrateStep(ctx, kind)
	}
}

func (s *Server) handleMigrateStep(ctx context.Context, kind migstep.Kind) (*mcp.CallToolResult, error) {
	step, ok := migstep.New(kind, s.deps)
	if !ok {
		return mcp.NewToolResultError("unrecognised step kind: " + string(kind)), nil
	}

	progress := func(done, total int, message string) {
		s.log.Infow("migration step progress", "kind", string(kind), "done", done, "total", total, "message", message)
	}

	result := step.Run(ctx, progress)

	out := migrateResult{Kind: string(kind), Counts: result.Counts}
	if len(result.Durations) > 0 {
		out.Durations = make(map[string]string, len(result.Durations))
		for k, d := range result.Durations {
			out.Durations[k] = d.String()
		}
	}
	if result.Err != nil {
		out.Error = &migrateError{
			Category: string(result.Err.Category),
			Object:   result.Err.Object,
			Message:  result.Err.Message,
			Fragment: result.Err.Fragment,
		}
	}

	body, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}
