package extract

import (
	"context"
	"database/sql"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/dialect"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

const KindExtractComposites migstep.Kind = "oracle.composite.extract"

func init() {
	migstep.Register(KindExtractComposites, func(deps migstep.Deps) migstep.Step {
		return &compositeStep{db: deps.OracleDB, cat: deps.Catalog}
	})
}

type compositeStep struct {
	db  *sql.DB
	cat *catalog.Catalog
}

func (s *compositeStep) Kind() migstep.Kind { return KindExtractComposites }

func (s *compositeStep) Footprint() migstep.Footprint {
	return migstep.Footprint{Writes: []catalog.EntityKind{catalog.KindComposite}}
}

func (s *compositeStep) Run(ctx context.Context, progress migstep.Progress) migstep.Result {
	var d dialect.Oracle
	q := d.TypeMetadata()

	var types []*catalog.CompositeType
	err := func() error {
		rows, err := s.db.QueryContext(ctx, q.ListTypes)
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

		for _, p := range pairs {
			attrs, err := s.loadAttributes(ctx, p[0], p[1])
			if err != nil {
				return err
			}
			types = append(types, &catalog.CompositeType{
				Name:       catalog.QualifiedName{Schema: p[0], Name: p[1]},
				Attributes: attrs,
			})
		}
		return nil
	}()
	if err != nil {
		return fail(s.Kind(), migerr.Metadata, "all_types", err)
	}

	s.cat.ReplaceComposites(types)
	progress(len(types), -1, "composite types extracted")
	return migstep.Result{Counts: map[string]int{"composites": len(types)}}
}

func (s *compositeStep) loadAttributes(ctx context.Context, owner, name string) ([]catalog.Attribute, error) {
	var d dialect.Oracle
	rows, err := s.db.QueryContext(ctx, d.TypeMetadata().ListAttributes, owner, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attrs []catalog.Attribute
	for rows.Next() {
		var (
			attrName                      string
			typeOwner, typeName           sql.NullString
			length, precision, scale, num sql.NullInt64
		)
		if err := rows.Scan(&attrName, &typeOwner, &typeName, &length, &precision, &scale, &num); err != nil {
			return nil, err
		}
		attrs = append(attrs, catalog.Attribute{
			Name: attrName,
			Type: attributeType(typeOwner, typeName, length, precision, scale),
		})
	}
	return attrs, rows.Err()
}

// attributeType classifies an attribute as built-in or user-defined.
// Oracle's ALL_TYPE_ATTRS reports ATTR_TYPE_OWNER as NULL for built-ins.
func attributeType(typeOwner, typeName sql.NullString, length, precision, scale sql.NullInt64) catalog.TypeRef {
	if !typeOwner.Valid || typeOwner.String == "" {
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
		return catalog.BuiltIn(typeName.String, nil, p, sc)
	}
	ref := catalog.QualifiedName{Schema: typeOwner.String, Name: typeName.String}
	if typeOwner.String == "SYS" {
		return catalog.ComplexSystem(ref)
	}
	return catalog.UserDefined(ref)
}
