package extract

import (
	"context"
	"database/sql"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/dialect"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

const KindExtractSchemas migstep.Kind = "oracle.schema.extract"

func init() {
	migstep.Register(KindExtractSchemas, func(deps migstep.Deps) migstep.Step {
		return &schemaStep{db: deps.OracleDB, cat: deps.Catalog}
	})
}

type schemaStep struct {
	db  *sql.DB
	cat *catalog.Catalog
}

func (s *schemaStep) Kind() migstep.Kind { return KindExtractSchemas }

func (s *schemaStep) Footprint() migstep.Footprint {
	return migstep.Footprint{Writes: []catalog.EntityKind{catalog.KindSchema}}
}

func (s *schemaStep) Run(ctx context.Context, progress migstep.Progress) migstep.Result {
	var d dialect.Oracle
	systemSchemas := make(map[string]bool, len(d.SystemSchemas()))
	for _, n := range d.SystemSchemas() {
		systemSchemas[n] = true
	}

	var names []string
	err := func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT username FROM all_users ORDER BY username`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			if systemSchemas[name] {
				continue
			}
			names = append(names, name)
		}
		return rows.Err()
	}()
	if err != nil {
		return fail(s.Kind(), migerr.Metadata, "all_users", err)
	}

	s.cat.ReplaceSchemas(names)
	progress(len(names), len(names), "schemas extracted")
	return migstep.Result{Counts: map[string]int{"schemas": len(names)}}
}
