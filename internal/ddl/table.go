package ddl

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/typemap"
)

// Table emits the CREATE TABLE statement for a table's columns only
// (NOT NULL and DEFAULT included). The primary key is added separately
// by PrimaryKeyConstraint before bulk load; UK/FK/CHECK constraints are
// installed by internal/constraints (C9) after data transfer.
func Table(t *catalog.Table, resolver typemap.Resolver) (string, error) {
	lines := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		pgType, err := typemap.MapType(c.Type, typemap.ContextTable, resolver)
		if err != nil {
			return "", err
		}
		line := fmt.Sprintf("\t%s %s", QuoteIdent(c.Name), pgType)
		if !c.Nullable {
			line += " NOT NULL"
		}
		if c.DefaultExpr != "" {
			line += " DEFAULT " + c.DefaultExpr
		}
		lines = append(lines, line)
	}

	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);",
		QualifyIdent(t.Name.Schema, t.Name.Name), strings.Join(lines, ",\n")), nil
}

// PrimaryKeyConstraint emits the ALTER TABLE ... ADD PRIMARY KEY
// statement for a table's primary key, installed before bulk load so the
// loader can rely on it for conflict detection (spec.md §4.9).
func PrimaryKeyConstraint(t *catalog.Table) (string, bool) {
	for _, c := range t.Constraints {
		if c.Kind != catalog.ConstraintPrimaryKey {
			continue
		}
		cols := make([]string, len(c.Columns))
		for i, col := range c.Columns {
			cols[i] = QuoteIdent(col)
		}
		name := c.Name
		if name == "" {
			name = t.Name.Name + "_pkey"
		}
		return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s);",
			QualifyIdent(t.Name.Schema, t.Name.Name), QuoteIdent(name), strings.Join(cols, ", ")), true
	}
	return "", false
}
