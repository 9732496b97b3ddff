// Package migstep defines the contract migration steps present to an
// orchestrator: job discovery, scheduling, and dispatch are the
// orchestrator's job (spec.md §6 non-goal); migstep.Step is the boundary
// the core exposes so that job. A Registry lets each package register
// its own step constructors in an init(), instead of one hand-maintained
// master list.
package migstep

import (
	"context"
	"database/sql"
	"time"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
)

// Kind names a step, e.g. "oracle.table.extract", "postgres.view-stub.create".
type Kind string

// Progress reports incremental completion. total is -1 when unknown.
type Progress func(done, total int, message string)

// Result is what a Step returns after Run completes or is cancelled.
type Result struct {
	Counts    map[string]int
	Durations map[string]time.Duration
	Err       *migerr.MigrationError
}

// Footprint declares which catalog entity kinds a step reads and writes,
// used by the orchestrator to schedule steps without import cycles back
// into the packages that implement them.
type Footprint struct {
	Reads  []catalog.EntityKind
	Writes []catalog.EntityKind
}

// Step is one unit of migration work: an extractor, a DDL emitter run,
// a data transfer, or a constraint install pass.
type Step interface {
	Kind() Kind
	Footprint() Footprint
	Run(ctx context.Context, progress Progress) Result
}

// Constructor builds a Step from session-scoped dependencies. Packages
// register constructors under a Kind; cmd/orapgsyncd never needs to
// import every step-producing package directly.
type Constructor func(deps Deps) Step

// Deps is the set of session-scoped handles every step constructor may
// need. Not every step uses every field.
type Deps struct {
	OracleDB   *sql.DB
	PostgresDB *sql.DB
	Catalog    *catalog.Catalog
	Pool       Pool
}

// Pool is the single shared worker pool every step acquires from before
// doing concurrent work, instead of building its own (spec.md §5, §9
// anti-pattern: "per-table/per-step pools").
type Pool interface {
	Acquire(ctx context.Context, n int64) error
	Release(n int64)
}

var registry = map[Kind]Constructor{}

// Register adds a step constructor under a Kind. Called from package
// init()s; panics on a duplicate Kind since that is always a programming
// error, never a runtime condition.
func Register(kind Kind, ctor Constructor) {
	if _, exists := registry[kind]; exists {
		panic("migstep: duplicate registration for kind " + string(kind))
	}
	registry[kind] = ctor
}

// New builds the Step registered for kind, or (nil, false) if no package
// registered it.
func New(kind Kind, deps Deps) (Step, bool) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, false
	}
	return ctor(deps), true
}

// Kinds lists every registered step kind, sorted by the caller if order
// matters; used by the orchestrator surface to enumerate recognised step
// kinds (spec.md §6).
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	return kinds
}
