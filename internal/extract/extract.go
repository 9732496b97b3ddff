// Package extract implements the Extractors (C5, spec.md §4.5): one
// migstep.Step per catalog entity kind, each streaming rows out of
// Oracle's data dictionary and into the Catalog via an atomic-swap
// Replace* call so a restarted extractor never leaves a half-populated
// kind visible to a concurrent reader.
package extract

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

// progressEvery controls how many rows pass between progress callbacks,
// so a million-row table doesn't spam the orchestrator with updates.
const progressEvery = 500

// rowCount runs a cheap SELECT COUNT(*) probe, returning -1 (unknown) on
// any error rather than failing the whole extraction over a probe.
func rowCount(ctx context.Context, db *sql.DB, query string, args ...any) int {
	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return -1
	}
	return n
}

func timed(name string, f func() error) (time.Duration, error) {
	start := time.Now()
	err := f()
	return time.Since(start), err
}

func fail(kind migstep.Kind, cat migerr.Category, object string, err error) migstep.Result {
	return migstep.Result{
		Err: migerr.Wrap(cat, object, fmt.Sprintf("%s failed", kind), err),
	}
}
