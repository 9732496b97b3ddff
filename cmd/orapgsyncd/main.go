// Command orapgsyncd is the composition root (SPEC_FULL.md §4): it is
// the one and only place a transfer.Pool is built, the one place both
// database connections are opened, and the one place every registered
// migstep.Kind is turned into an MCP tool, mirroring the teacher's
// main.go + mcp/server.go NewMcpServer/Start/Close lifecycle.
package main

import (
	"database/sql"
	"log"

	_ "github.com/godror/godror"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
	"github.com/Sayiza/orapgsync-sub005/internal/server"
	"github.com/Sayiza/orapgsync-sub005/internal/transfer"

	// Registered step kinds, pulled in for their init()-time
	// migstep.Register calls. cmd/orapgsyncd never calls into these
	// packages directly, only enumerates what they registered.
	_ "github.com/Sayiza/orapgsync-sub005/internal/constraints"
	_ "github.com/Sayiza/orapgsync-sub005/internal/ddl"
	_ "github.com/Sayiza/orapgsync-sub005/internal/extract"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("orapgsyncd: setting up logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := server.LoadConfig()
	if err != nil {
		sugar.Fatalw("loading configuration", "error", err)
	}

	oracleDB, err := sql.Open("godror", cfg.OracleDSN)
	if err != nil {
		sugar.Fatalw("opening Oracle connection", "error", err)
	}
	defer oracleDB.Close()

	postgresDB, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		sugar.Fatalw("opening PostgreSQL connection", "error", err)
	}
	defer postgresDB.Close()

	cat := catalog.New()
	pool := transfer.NewPool(0)

	deps := migstep.Deps{
		OracleDB:   oracleDB,
		PostgresDB: postgresDB,
		Catalog:    cat,
		Pool:       pool,
	}

	srv := server.New(cfg.Schema, cat.Snapshot(), deps, sugar)
	defer srv.Close()

	sugar.Infow("orapgsyncd starting", "step_kinds", len(migstep.Kinds()))
	if err := srv.Start(); err != nil {
		sugar.Fatalw("serving MCP over stdio", "error", err)
	}
}
