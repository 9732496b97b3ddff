package server

import (
	"os"

	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
)

// Config is the set of env-var-read connection strings cmd/orapgsyncd
// needs to open both database handles. Connection pooling, credential
// storage, and config persistence are explicit non-goals (spec.md §1) —
// this is deliberately nothing more than two env var reads, not a
// configuration subsystem.
type Config struct {
	OracleDSN   string
	PostgresDSN string
	Schema      string
}

// LoadConfig reads ORAPGSYNC_ORACLE_DSN, ORAPGSYNC_POSTGRES_DSN, and
// ORAPGSYNC_SCHEMA from the environment. All three are required; a
// missing variable is a Configuration-category error (spec.md §7), the
// one category that never names a database object.
func LoadConfig() (Config, error) {
	cfg := Config{
		OracleDSN:   os.Getenv("ORAPGSYNC_ORACLE_DSN"),
		PostgresDSN: os.Getenv("ORAPGSYNC_POSTGRES_DSN"),
		Schema:      os.Getenv("ORAPGSYNC_SCHEMA"),
	}
	if cfg.OracleDSN == "" {
		return Config{}, migerr.New(migerr.Configuration, "", "ORAPGSYNC_ORACLE_DSN is required")
	}
	if cfg.PostgresDSN == "" {
		return Config{}, migerr.New(migerr.Configuration, "", "ORAPGSYNC_POSTGRES_DSN is required")
	}
	if cfg.Schema == "" {
		return Config{}, migerr.New(migerr.Configuration, "", "ORAPGSYNC_SCHEMA is required")
	}
	return cfg, nil
}
