package constraints

import (
	"context"
	"database/sql"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

// KindInstall is the migstep.Kind for the UK/FK/CHECK install pass
// (spec.md §4.9). Primary keys are installed earlier, by
// ddl.KindCreateSchemaObjects, since the loader relies on them for
// conflict detection during bulk load; everything else installs after
// the data is in place.
const KindInstall migstep.Kind = "postgres.constraint.install"

func init() {
	migstep.Register(KindInstall, func(deps migstep.Deps) migstep.Step {
		return &installStep{cat: deps.Catalog, db: deps.PostgresDB}
	})
}

type installStep struct {
	cat *catalog.Catalog
	db  *sql.DB
}

func (s *installStep) Kind() migstep.Kind { return KindInstall }

func (s *installStep) Footprint() migstep.Footprint {
	return migstep.Footprint{Reads: []catalog.EntityKind{catalog.KindTable}}
}

func (s *installStep) Run(ctx context.Context, progress migstep.Progress) migstep.Result {
	tables := s.cat.Tables()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return migstep.Result{Err: migerr.Wrap(migerr.Metadata, "", "opening constraint install transaction", err)}
	}
	defer tx.Rollback()

	outcomes := Install(ctx, tx, tables)

	applied, skipped, failed := 0, 0, 0
	for i, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
		case o.Skipped:
			skipped++
		default:
			applied++
		}
		progress(i+1, len(outcomes), "installed constraint on "+o.Table.String())
	}

	if failed > 0 {
		for _, o := range outcomes {
			if o.Err != nil {
				return migstep.Result{
					Counts: map[string]int{"applied": applied, "skipped": skipped, "failed": failed},
					Err:    migerr.Wrap(migerr.Metadata, o.Table.String(), "installing constraint", o.Err),
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return migstep.Result{Err: migerr.Wrap(migerr.Metadata, "", "committing constraint install transaction", err)}
	}

	return migstep.Result{Counts: map[string]int{"applied": applied, "skipped": skipped}}
}
