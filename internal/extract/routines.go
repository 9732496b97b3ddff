package extract

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/dialect"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

const KindExtractRoutines migstep.Kind = "oracle.routine.extract"

func init() {
	migstep.Register(KindExtractRoutines, func(deps migstep.Deps) migstep.Step {
		return &routineStep{db: deps.OracleDB, cat: deps.Catalog}
	})
}

type routineStep struct {
	db  *sql.DB
	cat *catalog.Catalog
}

func (s *routineStep) Kind() migstep.Kind { return KindExtractRoutines }

func (s *routineStep) Footprint() migstep.Footprint {
	return migstep.Footprint{Writes: []catalog.EntityKind{catalog.KindRoutine}}
}

type routineRow struct {
	owner, objectName, memberName, objectType string
}

func (s *routineStep) Run(ctx context.Context, progress migstep.Progress) migstep.Result {
	var d dialect.Oracle
	q := d.RoutineMetadata()

	var routines []*catalog.Routine
	err := func() error {
		rows, err := s.db.QueryContext(ctx, q.ListRoutines)
		if err != nil {
			return err
		}
		defer rows.Close()

		var all []routineRow
		for rows.Next() {
			var r routineRow
			var memberName sql.NullString
			if err := rows.Scan(&r.owner, &r.objectName, &memberName, &r.objectType); err != nil {
				return err
			}
			if r.objectType == "PACKAGE" && !memberName.Valid {
				continue // the package's own row carries no routine; its members come as PACKAGE rows with a procedure_name
			}
			r.memberName = memberName.String
			all = append(all, r)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for i, r := range all {
			routine, err := s.loadRoutine(ctx, r)
			if err != nil {
				return err
			}
			routines = append(routines, routine)
			if (i+1)%progressEvery == 0 {
				progress(i+1, len(all), "extracting routines")
			}
		}
		return nil
	}()
	if err != nil {
		return fail(s.Kind(), migerr.Metadata, "all_procedures", err)
	}

	s.cat.ReplaceRoutines(routines)
	progress(len(routines), len(routines), "routines extracted")
	return migstep.Result{Counts: map[string]int{"routines": len(routines)}}
}

func (s *routineStep) loadRoutine(ctx context.Context, r routineRow) (*catalog.Routine, error) {
	var d dialect.Oracle
	q := d.RoutineMetadata()

	pkgMember := r.memberName != ""
	name := r.objectName
	if pkgMember {
		name = r.objectName + "." + r.memberName
	}

	var pkgArg any
	if pkgMember {
		pkgArg = r.objectName
	}
	rows, err := s.db.QueryContext(ctx, q.ListParameters, r.owner, valueOrMember(pkgMember, r), pkgArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var params []catalog.Parameter
	var ret *catalog.TypeRef
	for rows.Next() {
		var argName sql.NullString
		var position int
		var inOut, dataType string
		var precision, scale sql.NullInt64
		if err := rows.Scan(&argName, &position, &inOut, &dataType, &precision, &scale); err != nil {
			return nil, err
		}
		typeRef := catalog.BuiltIn(dataType, nil, nullableIntPtr(precision), nullableIntPtr(scale))
		if !argName.Valid || argName.String == "" {
			// Position 0 with no name is Oracle's convention for a function's return type.
			ret = &typeRef
			continue
		}
		params = append(params, catalog.Parameter{
			Name: argName.String,
			Mode: parameterMode(inOut),
			Type: typeRef,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	kind := catalog.RoutineProcedure
	if r.objectType == "FUNCTION" || ret != nil {
		kind = catalog.RoutineFunction
	}

	sourceType := "PROCEDURE"
	if kind == catalog.RoutineFunction {
		sourceType = "FUNCTION"
	}
	body, err := s.loadSource(ctx, q.GetSource, r.owner, r.objectName, sourceType)
	if err != nil {
		return nil, err
	}

	return &catalog.Routine{
		Name:           catalog.QualifiedName{Schema: r.owner, Name: name},
		Kind:           kind,
		Parameters:     params,
		ReturnType:     ret,
		PackageMember:  pkgMember,
		OracleBodyText: body,
	}, nil
}

func (s *routineStep) loadSource(ctx context.Context, query, owner, name, kind string) (string, error) {
	rows, err := s.db.QueryContext(ctx, query, owner, name, kind)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var sb strings.Builder
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return "", err
		}
		sb.WriteString(line)
	}
	return sb.String(), rows.Err()
}

func valueOrMember(pkgMember bool, r routineRow) string {
	if pkgMember {
		return r.memberName
	}
	return r.objectName
}

func parameterMode(inOut string) catalog.ParameterMode {
	switch inOut {
	case "OUT":
		return catalog.ParamOut
	case "IN/OUT":
		return catalog.ParamInOut
	default:
		return catalog.ParamIn
	}
}

func nullableIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
