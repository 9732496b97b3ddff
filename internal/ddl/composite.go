package ddl

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/depgraph"
	"github.com/Sayiza/orapgsync-sub005/internal/typemap"
)

// Composites emits one CREATE TYPE ... AS (...) statement per composite
// type, ordered by internal/depgraph.Order so every type is emitted
// after the attribute types it depends on (spec.md §8 property 3).
func Composites(types []*catalog.CompositeType, resolver typemap.Resolver) ([]string, error) {
	ordered, err := depgraph.Order(types)
	if err != nil {
		return nil, err
	}

	stmts := make([]string, 0, len(ordered))
	for _, t := range ordered {
		stmt, err := Composite(t, resolver)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// Composite emits a single CREATE TYPE statement.
func Composite(t *catalog.CompositeType, resolver typemap.Resolver) (string, error) {
	lines := make([]string, 0, len(t.Attributes))
	for _, a := range t.Attributes {
		pgType, err := typemap.MapType(a.Type, typemap.ContextTable, resolver)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("\t%s %s", QuoteIdent(a.Name), pgType))
	}

	return fmt.Sprintf("CREATE TYPE %s AS (\n%s\n);",
		QualifyIdent(t.Name.Schema, t.Name.Name), strings.Join(lines, ",\n")), nil
}
