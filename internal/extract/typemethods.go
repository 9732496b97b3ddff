package extract

import (
	"context"
	"database/sql"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/dialect"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

const KindExtractTypeMethods migstep.Kind = "oracle.type-method.extract"

func init() {
	migstep.Register(KindExtractTypeMethods, func(deps migstep.Deps) migstep.Step {
		return &typeMethodStep{db: deps.OracleDB, cat: deps.Catalog}
	})
}

type typeMethodStep struct {
	db  *sql.DB
	cat *catalog.Catalog
}

func (s *typeMethodStep) Kind() migstep.Kind { return KindExtractTypeMethods }

func (s *typeMethodStep) Footprint() migstep.Footprint {
	return migstep.Footprint{
		Reads:  []catalog.EntityKind{catalog.KindComposite},
		Writes: []catalog.EntityKind{catalog.KindTypeMethod},
	}
}

func (s *typeMethodStep) Run(ctx context.Context, progress migstep.Progress) migstep.Result {
	var methods []*catalog.TypeMethod

	for _, t := range s.cat.Composites() {
		got, err := s.loadMethods(ctx, t.Name)
		if err != nil {
			return fail(s.Kind(), migerr.Metadata, t.Name.String(), err)
		}
		methods = append(methods, got...)
	}

	s.cat.ReplaceTypeMethods(methods)
	progress(len(methods), -1, "type methods extracted")
	return migstep.Result{Counts: map[string]int{"type_methods": len(methods)}}
}

func (s *typeMethodStep) loadMethods(ctx context.Context, owner catalog.QualifiedName) ([]*catalog.TypeMethod, error) {
	var d dialect.Oracle
	rows, err := s.db.QueryContext(ctx, d.TypeMetadata().ListMethods, owner.Schema, owner.Name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []*catalog.TypeMethod
	for rows.Next() {
		var name, methodType string
		var params, results sql.NullString
		if err := rows.Scan(&name, &methodType, &params, &results); err != nil {
			return nil, err
		}
		kind := catalog.MethodProcedure
		var ret *catalog.TypeRef
		if results.Valid && results.String != "" {
			kind = catalog.MethodFunction
			t := catalog.BuiltIn(results.String, nil, nil, nil)
			ret = &t
		}
		methods = append(methods, &catalog.TypeMethod{
			OwnerType:  owner,
			MethodName: name,
			Kind:       kind,
			ReturnType: ret,
		})
	}
	return methods, rows.Err()
}
