package extract

import (
	"context"
	"database/sql"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/dialect"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

const KindExtractViews migstep.Kind = "oracle.view.extract"

func init() {
	migstep.Register(KindExtractViews, func(deps migstep.Deps) migstep.Step {
		return &viewStep{db: deps.OracleDB, cat: deps.Catalog}
	})
}

type viewStep struct {
	db  *sql.DB
	cat *catalog.Catalog
}

func (s *viewStep) Kind() migstep.Kind { return KindExtractViews }

func (s *viewStep) Footprint() migstep.Footprint {
	return migstep.Footprint{Writes: []catalog.EntityKind{catalog.KindView}}
}

func (s *viewStep) Run(ctx context.Context, progress migstep.Progress) migstep.Result {
	var d dialect.Oracle
	q := d.ViewMetadata()

	var views []*catalog.View
	err := func() error {
		rows, err := s.db.QueryContext(ctx, q.ListViews)
		if err != nil {
			return err
		}
		defer rows.Close()

		var pairs [][2]string
		for rows.Next() {
			var owner, name string
			if err := rows.Scan(&owner, &name); err != nil {
				return err
			}
			pairs = append(pairs, [2]string{owner, name})
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for i, p := range pairs {
			cols, err := s.loadColumns(ctx, p[0], p[1])
			if err != nil {
				return err
			}
			text, err := s.loadDefinition(ctx, p[0], p[1])
			if err != nil {
				return err
			}
			views = append(views, &catalog.View{
				Name:          catalog.QualifiedName{Schema: p[0], Name: p[1]},
				Columns:       cols,
				OracleSQLText: text,
			})
			if (i+1)%progressEvery == 0 {
				progress(i+1, len(pairs), "extracting views")
			}
		}
		return nil
	}()
	if err != nil {
		return fail(s.Kind(), migerr.Metadata, "all_views", err)
	}

	s.cat.ReplaceViews(views)
	progress(len(views), len(views), "views extracted")
	return migstep.Result{Counts: map[string]int{"views": len(views)}}
}

func (s *viewStep) loadColumns(ctx context.Context, owner, name string) ([]catalog.Column, error) {
	var d dialect.Oracle
	rows, err := s.db.QueryContext(ctx, d.ViewMetadata().ListColumns, owner, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []catalog.Column
	for rows.Next() {
		var colName, dataType, nullable string
		var order int
		if err := rows.Scan(&colName, &dataType, &nullable, &order); err != nil {
			return nil, err
		}
		cols = append(cols, catalog.Column{
			Name:        colName,
			Type:        catalog.BuiltIn(dataType, nil, nil, nil),
			Nullable:    nullable == "Y",
			ColumnOrder: order,
		})
	}
	return cols, rows.Err()
}

func (s *viewStep) loadDefinition(ctx context.Context, owner, name string) (string, error) {
	var d dialect.Oracle
	var text string
	err := s.db.QueryRowContext(ctx, d.ViewMetadata().GetDefinition, owner, name).Scan(&text)
	if err != nil {
		return "", err
	}
	return text, nil
}
