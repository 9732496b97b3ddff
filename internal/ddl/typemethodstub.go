package ddl

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/typemap"
)

// TypeMethodStub flattens a type method to a schema-level function or
// procedure using the same stub pattern as FunctionStub (spec.md §4.6),
// named per catalog.TypeMethod.FlattenedName ("typename__methodname").
func TypeMethodStub(m *catalog.TypeMethod, resolver typemap.Resolver) (string, error) {
	params := make([]string, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		pgType, err := typemap.MapType(p.Type, typemap.ContextParameter, resolver)
		if err != nil {
			return "", err
		}
		params = append(params, fmt.Sprintf("%s %s %s", paramDirection(p.Mode), QuoteIdent(p.Name), pgType))
	}

	name := m.FlattenedName()
	comment := fmt.Sprintf("-- migrated stub for type method %s.%s\n", m.OwnerType.String(), m.MethodName)

	if m.Kind == catalog.MethodProcedure {
		return fmt.Sprintf("%sCREATE PROCEDURE %s(%s)\nLANGUAGE plpgsql\nAS $$\nBEGIN\nEND;\n$$;",
			comment, QualifyIdent(m.OwnerType.Schema, name), strings.Join(params, ", ")), nil
	}

	retType := "text"
	if m.ReturnType != nil {
		mapped, err := typemap.MapType(*m.ReturnType, typemap.ContextFunctionReturn, resolver)
		if err != nil {
			return "", err
		}
		retType = mapped
	}

	return fmt.Sprintf("%sCREATE FUNCTION %s(%s) RETURNS %s\nLANGUAGE plpgsql\nAS $$\nBEGIN\n\tRETURN NULL;\nEND;\n$$;",
		comment, QualifyIdent(m.OwnerType.Schema, name), strings.Join(params, ", "), retType), nil
}
