package ddl

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

// KindCreateSchemaObjects is the migstep.Kind for the schema/composite
// -type/sequence/table/primary-key DDL pass: everything that must exist
// before internal/transfer can bulk-load a table. Of the constraints,
// only primary keys are created here; the rest wait for
// internal/constraints after the data is loaded.
const KindCreateSchemaObjects migstep.Kind = "postgres.schema.create"

// KindCreateStubs is the migstep.Kind for the view/routine/type-method
// stub pass (spec.md §4.6): placeholder objects with the final shape,
// bodies filled in later by a dedicated implement step outside this
// system's scope (§1 non-goal).
const KindCreateStubs migstep.Kind = "postgres.stub.create"

func init() {
	migstep.Register(KindCreateSchemaObjects, func(deps migstep.Deps) migstep.Step {
		return &createSchemaObjectsStep{cat: deps.Catalog, db: deps.PostgresDB}
	})
	migstep.Register(KindCreateStubs, func(deps migstep.Deps) migstep.Step {
		return &createStubsStep{cat: deps.Catalog, db: deps.PostgresDB}
	})
}

type createSchemaObjectsStep struct {
	cat *catalog.Catalog
	db  *sql.DB
}

func (s *createSchemaObjectsStep) Kind() migstep.Kind { return KindCreateSchemaObjects }

func (s *createSchemaObjectsStep) Footprint() migstep.Footprint {
	return migstep.Footprint{
		Reads: []catalog.EntityKind{
			catalog.KindSchema, catalog.KindComposite, catalog.KindSequence, catalog.KindTable,
		},
	}
}

func (s *createSchemaObjectsStep) Run(ctx context.Context, progress migstep.Progress) migstep.Result {
	var stmts []string

	for _, name := range s.cat.Schemas() {
		stmts = append(stmts, Schema(name))
	}

	composites, err := Composites(s.cat.Composites(), s.cat)
	if err != nil {
		return migstep.Result{Err: migerr.Wrap(migerr.Mapping, "", "emitting composite types", err)}
	}
	stmts = append(stmts, composites...)

	for _, seq := range s.cat.Sequences() {
		stmts = append(stmts, Sequence(seq))
	}

	tables := s.cat.Tables()
	for _, t := range tables {
		stmt, err := Table(t, s.cat)
		if err != nil {
			return migstep.Result{Err: migerr.Wrap(migerr.Mapping, t.Name.String(), "emitting table DDL", err)}
		}
		stmts = append(stmts, stmt)
		if pk, ok := PrimaryKeyConstraint(t); ok {
			stmts = append(stmts, pk)
		}
	}

	for i, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return migstep.Result{Err: migerr.Wrap(migerr.Metadata, "", "executing schema DDL", err)}
		}
		progress(i+1, len(stmts), fmt.Sprintf("executed statement %d/%d", i+1, len(stmts)))
	}

	return migstep.Result{Counts: map[string]int{
		"schemas":    len(s.cat.Schemas()),
		"composites": len(s.cat.Composites()),
		"sequences":  len(s.cat.Sequences()),
		"tables":     len(tables),
	}}
}

type createStubsStep struct {
	cat *catalog.Catalog
	db  *sql.DB
}

func (s *createStubsStep) Kind() migstep.Kind { return KindCreateStubs }

func (s *createStubsStep) Footprint() migstep.Footprint {
	return migstep.Footprint{
		Reads: []catalog.EntityKind{catalog.KindView, catalog.KindRoutine, catalog.KindTypeMethod},
	}
}

func (s *createStubsStep) Run(ctx context.Context, progress migstep.Progress) migstep.Result {
	var stmts []string

	for _, v := range s.cat.Views() {
		stmt, err := ViewStub(v, s.cat)
		if err != nil {
			return migstep.Result{Err: migerr.Wrap(migerr.Mapping, v.Name.String(), "emitting view stub", err)}
		}
		stmts = append(stmts, stmt)
	}

	for _, r := range s.cat.Routines() {
		stmt, err := FunctionStub(r, s.cat)
		if err != nil {
			return migstep.Result{Err: migerr.Wrap(migerr.Mapping, r.Name.String(), "emitting routine stub", err)}
		}
		stmts = append(stmts, stmt)
	}

	for _, owner := range s.cat.Composites() {
		for _, m := range s.cat.MethodsOf(owner.Name) {
			stmt, err := TypeMethodStub(m, s.cat)
			if err != nil {
				return migstep.Result{Err: migerr.Wrap(migerr.Mapping, owner.Name.String()+"."+m.MethodName, "emitting type-method stub", err)}
			}
			stmts = append(stmts, stmt)
		}
	}

	for i, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return migstep.Result{Err: migerr.Wrap(migerr.Metadata, "", "executing stub DDL", err)}
		}
		progress(i+1, len(stmts), fmt.Sprintf("executed statement %d/%d", i+1, len(stmts)))
	}

	return migstep.Result{Counts: map[string]int{"stubs_created": len(stmts)}}
}
