package extract

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/dialect"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

const KindExtractTables migstep.Kind = "oracle.table.extract"

func init() {
	migstep.Register(KindExtractTables, func(deps migstep.Deps) migstep.Step {
		return &tableStep{db: deps.OracleDB, cat: deps.Catalog, d: dialect.Oracle{}}
	})
}

type tableStep struct {
	db  *sql.DB
	cat *catalog.Catalog
	d   dialect.Oracle
}

func (s *tableStep) Kind() migstep.Kind { return KindExtractTables }

func (s *tableStep) Footprint() migstep.Footprint {
	return migstep.Footprint{Writes: []catalog.EntityKind{catalog.KindTable}}
}

func (s *tableStep) Run(ctx context.Context, progress migstep.Progress) migstep.Result {
	q := s.d.TableMetadata()

	total := rowCount(ctx, s.db, "SELECT COUNT(*) FROM all_tables WHERE owner NOT IN ('SYS','SYSTEM','OUTLN','XDB','WMSYS','CTXSYS','MDSYS','OLAPSYS','ORDSYS','APPQOSSYS')")

	var tables []*catalog.Table

	dur, err := timed(string(s.Kind()), func() error {
		rows, err := s.db.QueryContext(ctx, q.ListTables)
		if err != nil {
			return err
		}
		defer rows.Close()

		done := 0
		for rows.Next() {
			var owner, name string
			if err := rows.Scan(&owner, &name); err != nil {
				return err
			}
			cols, pkCols, err := s.loadColumns(ctx, owner, name)
			if err != nil {
				return err
			}
			tables = append(tables, &catalog.Table{
				Name:        catalog.QualifiedName{Schema: owner, Name: name},
				Columns:     cols,
				Constraints: pkConstraints(pkCols),
			})
			done++
			if done%progressEvery == 0 {
				progress(done, total, fmt.Sprintf("extracted %s.%s", owner, name))
			}
		}
		return rows.Err()
	})
	if err != nil {
		return fail(s.Kind(), migerr.Metadata, "all_tables", err)
	}

	s.cat.ReplaceTables(tables)
	progress(len(tables), len(tables), "tables extracted")

	return migstep.Result{
		Counts:    map[string]int{"tables": len(tables)},
		Durations: map[string]time.Duration{"extract": dur},
	}
}

func (s *tableStep) loadColumns(ctx context.Context, owner, name string) ([]catalog.Column, []string, error) {
	q := s.d.TableMetadata()
	rows, err := s.db.QueryContext(ctx, q.ListColumns, owner, name)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var cols []catalog.Column
	for rows.Next() {
		var (
			colName, dataType, nullable string
			defExpr                     sql.NullString
			precision, scale, length    sql.NullInt64
			order                       int
		)
		if err := rows.Scan(&colName, &dataType, &nullable, &defExpr, &precision, &scale, &length, &order); err != nil {
			return nil, nil, err
		}
		cols = append(cols, catalog.Column{
			Name:        colName,
			Type:        builtinFrom(dataType, precision, scale, length),
			Nullable:    nullable == "Y",
			DefaultExpr: defExpr.String,
			ColumnOrder: order,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	pkRows, err := s.db.QueryContext(ctx, q.ListPrimaryKeys, owner, name)
	if err != nil {
		return nil, nil, err
	}
	defer pkRows.Close()

	var pkCols []string
	for pkRows.Next() {
		var col string
		var pos int
		if err := pkRows.Scan(&col, &pos); err != nil {
			return nil, nil, err
		}
		pkCols = append(pkCols, col)
	}
	return cols, pkCols, pkRows.Err()
}

func builtinFrom(dataType string, precision, scale, length sql.NullInt64) catalog.TypeRef {
	var p, sc *int
	if precision.Valid {
		v := int(precision.Int64)
		p = &v
	} else if length.Valid {
		v := int(length.Int64)
		p = &v
	}
	if scale.Valid {
		v := int(scale.Int64)
		sc = &v
	}
	return catalog.BuiltIn(dataType, nil, p, sc)
}

func pkConstraints(pkCols []string) []catalog.Constraint {
	if len(pkCols) == 0 {
		return nil
	}
	return []catalog.Constraint{{
		Kind:    catalog.ConstraintPrimaryKey,
		Name:    "",
		Columns: pkCols,
	}}
}
