// Package server is the external interface of spec.md §6: the
// migrate_<kind> tools that front migstep.Step and the ancillary
// translate_sql tool, both exposed over stdio via mark3labs/mcp-go,
// matching the teacher's DbMCPServer/NewMcpServer/registerTools shape.
package server

import (
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

// Server is the MCP surface: one translate_sql tool plus one
// migrate_<kind> tool per registered migstep.Kind. Unlike the teacher's
// DbMCPServer it never owns a *sql.DB itself — both connections and the
// shared transfer.Pool are built and owned by cmd/orapgsyncd's
// composition root (spec.md §5) and handed in via migstep.Deps, so
// Close has nothing of its own to release.
type Server struct {
	mcp      *server.MCPServer
	schema   string
	snapshot *catalog.Snapshot
	deps     migstep.Deps
	log      *zap.SugaredLogger
}

// New builds a Server and registers every tool. snapshot is built once
// per session (catalog.Catalog.Snapshot, §3.1) and shared read-only
// across every translate_sql call.
func New(schema string, snapshot *catalog.Snapshot, deps migstep.Deps, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := &Server{
		mcp: server.NewMCPServer(
			"orapgsync",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		schema:   schema,
		snapshot: snapshot,
		deps:     deps,
		log:      log,
	}

	s.registerTools()
	return s
}

// Start runs the MCP server over stdio until the transport closes.
func (s *Server) Start() error {
	return server.ServeStdio(s.mcp)
}

// Close releases nothing of the Server's own; connections and the pool
// outlive it and are closed by cmd/orapgsyncd's composition root.
func (s *Server) Close() error {
	return nil
}

func (s *Server) registerTools() {
	// ===== SQL Translation =====
	s.mcp.AddTool(s.toolTranslateSQL())

	// ===== Migration Steps =====
	for _, kind := range migstep.Kinds() {
		s.mcp.AddTool(s.toolMigrateStep(kind))
	}
}

// toolNameForKind turns a migstep.Kind like "oracle.table.extract" into
// the MCP tool name "migrate_oracle_table_extract" (spec.md §4/§6: MCP
// tool names cannot carry dots the way Kind values do).
func toolNameForKind(kind migstep.Kind) string {
	return "migrate_" + strings.ReplaceAll(string(kind), ".", "_")
}
