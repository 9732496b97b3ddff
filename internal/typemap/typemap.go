// Package typemap implements the Type Mapper (C1, spec.md §4.1): a pure
// function from an Oracle TypeRef to PostgreSQL type text.
package typemap

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
)

// Context is where a TypeRef is being mapped, since XMLTYPE maps
// differently in tables than everywhere else (spec.md §3, §4.1).
type Context int

const (
	ContextTable Context = iota
	ContextView
	ContextFunctionReturn
	ContextParameter
)

// Resolver looks up a composite type by qualified name, so MapType can
// fail with ErrUnknownCompositeType without importing the whole Catalog
// API.
type Resolver interface {
	Composite(q catalog.QualifiedName) (*catalog.CompositeType, bool)
}

// MapType maps an Oracle TypeRef to PostgreSQL type text (spec.md §4.1).
func MapType(t catalog.TypeRef, ctx Context, resolver Resolver) (string, error) {
	switch t.Kind {
	case catalog.TypeBuiltIn:
		return mapBuiltIn(t, ctx)
	case catalog.TypeUserDefined:
		if resolver != nil {
			if _, ok := resolver.Composite(t.Ref); !ok {
				return "", migerr.Wrap(migerr.Mapping, t.Ref.String(), "composite type not found in catalog", migerr.ErrUnknownCompositeType)
			}
		}
		return strings.ToLower(t.Ref.Schema) + "." + strings.ToLower(t.Ref.Name), nil
	case catalog.TypeComplexSystem:
		if ctx != ContextTable && strings.EqualFold(t.Ref.Name, "XMLTYPE") {
			return "xml", nil
		}
		return "jsonb", nil
	default:
		return "", migerr.New(migerr.Mapping, "", fmt.Sprintf("unrecognised TypeRef kind %d", t.Kind))
	}
}

func mapBuiltIn(t catalog.TypeRef, ctx Context) (string, error) {
	name := strings.ToUpper(t.OracleName)

	switch name {
	case "NUMBER":
		return mapNumber(t), nil
	case "VARCHAR2", "VARCHAR":
		if t.Length != nil {
			return fmt.Sprintf("varchar(%d)", *t.Length), nil
		}
		return "varchar", nil
	case "CHAR", "NCHAR":
		if t.Length != nil {
			return fmt.Sprintf("char(%d)", *t.Length), nil
		}
		return "char", nil
	case "DATE":
		return "timestamp(0)", nil
	case "TIMESTAMP":
		if t.Scale != nil {
			return fmt.Sprintf("timestamp(%d)", *t.Scale), nil
		}
		return "timestamp", nil
	case "CLOB", "NCLOB", "LONG":
		return "text", nil
	case "BLOB", "LONG RAW":
		return "bytea", nil
	case "RAW":
		return "bytea", nil
	case "BINARY_FLOAT":
		return "real", nil
	case "BINARY_DOUBLE":
		return "double precision", nil
	case "XMLTYPE":
		if ctx == ContextTable {
			return "jsonb", nil
		}
		return "xml", nil
	case "FLOAT":
		return "double precision", nil
	case "INTEGER", "INT", "SMALLINT":
		return "numeric", nil
	default:
		return "", migerr.Wrap(migerr.Mapping, "", "unsupported Oracle type", fmt.Errorf("%w: %s", migerr.ErrUnsupportedOracleType, t.OracleName))
	}
}

// mapNumber implements the three-way NUMBER(p,s) rule of spec.md §4.1.
func mapNumber(t catalog.TypeRef) string {
	if t.Precision == nil {
		return "numeric"
	}
	p := *t.Precision
	scale := 0
	if t.Scale != nil {
		scale = *t.Scale
	}

	if t.Scale == nil || scale == 0 {
		if p <= 19 {
			return fmt.Sprintf("numeric(%d)", p)
		}
		return "numeric"
	}
	return fmt.Sprintf("numeric(%d,%d)", p, scale)
}
