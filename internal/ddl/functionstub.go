package ddl

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/typemap"
)

// FunctionStub emits a stub for a standalone or package-member routine:
// a function returns NULL, a procedure has an empty body, and both carry
// a comment naming the original Oracle qualified name (spec.md §4.6).
// Full procedural-body translation is out of scope (§1). The original
// body text is not inspected: no comment beyond the name line is added.
func FunctionStub(r *catalog.Routine, resolver typemap.Resolver) (string, error) {
	params := make([]string, 0, len(r.Parameters))
	for _, p := range r.Parameters {
		pgType, err := typemap.MapType(p.Type, typemap.ContextParameter, resolver)
		if err != nil {
			return "", err
		}
		params = append(params, fmt.Sprintf("%s %s %s", paramDirection(p.Mode), QuoteIdent(p.Name), pgType))
	}

	name := r.FlattenedName()
	comment := fmt.Sprintf("-- migrated stub for %s.%s\n", r.Name.Schema, r.Name.Name)

	if r.Kind == catalog.RoutineProcedure {
		return fmt.Sprintf("%sCREATE PROCEDURE %s(%s)\nLANGUAGE plpgsql\nAS $$\nBEGIN\nEND;\n$$;",
			comment, QualifyIdent(r.Name.Schema, name), strings.Join(params, ", ")), nil
	}

	retType := "text"
	if r.ReturnType != nil {
		mapped, err := typemap.MapType(*r.ReturnType, typemap.ContextFunctionReturn, resolver)
		if err != nil {
			return "", err
		}
		retType = mapped
	}

	return fmt.Sprintf("%sCREATE FUNCTION %s(%s) RETURNS %s\nLANGUAGE plpgsql\nAS $$\nBEGIN\n\tRETURN NULL;\nEND;\n$$;",
		comment, QualifyIdent(r.Name.Schema, name), strings.Join(params, ", "), retType), nil
}

func paramDirection(mode catalog.ParameterMode) string {
	switch mode {
	case catalog.ParamOut:
		return "OUT"
	case catalog.ParamInOut:
		return "INOUT"
	default:
		return "IN"
	}
}
