// Package constraints implements the Constraint Installer (C9, spec.md
// §4.9): applies PK/UK/FK/CHECK constraints in dependency order,
// skipping any constraint that already exists by name on the target.
package constraints

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/ddl"
	"github.com/Sayiza/orapgsync-sub005/internal/depgraph"
	"github.com/Sayiza/orapgsync-sub005/internal/dialect"
)

// Outcome reports what happened to one constraint install attempt.
type Outcome struct {
	Constraint catalog.Constraint
	Table      catalog.QualifiedName
	Skipped    bool
	Err        error
}

// fkNode adapts one table's foreign-key constraints to depgraph.Node: it
// depends on every table they reference, so FKs are installed only after
// their target tables' own constraints (spec.md §4.3's graph reused for
// FKs, not just composite types).
type fkNode struct {
	table       catalog.QualifiedName
	constraints []catalog.Constraint
}

func (n fkNode) QualifiedName() catalog.QualifiedName { return n.table }
func (n fkNode) DependsOn() []catalog.QualifiedName {
	deps := make([]catalog.QualifiedName, 0, len(n.constraints))
	for _, c := range n.constraints {
		deps = append(deps, c.Referenced)
	}
	return deps
}

// Install applies every table's constraints against tx in the order PK,
// UK, FK (topologically sorted over the referenced-table graph), CHECK.
// A constraint already present by name on the target is skipped, not
// re-applied (idempotent across a restarted step, spec.md §4.5/§4.9).
func Install(ctx context.Context, tx *sql.Tx, tables []*catalog.Table) []Outcome {
	existing := loadExisting(ctx, tx, tables)

	var outcomes []Outcome
	outcomes = append(outcomes, installByKind(ctx, tx, tables, existing, catalog.ConstraintPrimaryKey)...)
	outcomes = append(outcomes, installByKind(ctx, tx, tables, existing, catalog.ConstraintUnique)...)
	outcomes = append(outcomes, installForeignKeysOrdered(ctx, tx, tables, existing)...)
	outcomes = append(outcomes, installByKind(ctx, tx, tables, existing, catalog.ConstraintCheck)...)
	return outcomes
}

func loadExisting(ctx context.Context, tx *sql.Tx, tables []*catalog.Table) map[string]bool {
	query := dialect.Postgres{}.ConstraintMetadata().ExistingConstraintNames

	existing := make(map[string]bool)
	for _, t := range tables {
		rows, err := tx.QueryContext(ctx, query, t.Name.Schema, t.Name.Name)
		if err != nil {
			continue // treated as "nothing known to exist yet"; Install will attempt and may itself fail loudly
		}
		for rows.Next() {
			var name string
			if rows.Scan(&name) == nil {
				existing[key(t.Name, name)] = true
			}
		}
		rows.Close()
	}
	return existing
}

func key(table catalog.QualifiedName, constraintName string) string {
	return strings.ToLower(table.String()) + "#" + strings.ToLower(constraintName)
}

func installByKind(ctx context.Context, tx *sql.Tx, tables []*catalog.Table, existing map[string]bool, kind catalog.ConstraintKind) []Outcome {
	var outcomes []Outcome
	for _, t := range tables {
		for _, c := range t.Constraints {
			if c.Kind != kind {
				continue
			}
			outcomes = append(outcomes, apply(ctx, tx, t.Name, c, existing))
		}
	}
	return outcomes
}

func installForeignKeysOrdered(ctx context.Context, tx *sql.Tx, tables []*catalog.Table, existing map[string]bool) []Outcome {
	var nodes []fkNode
	for _, t := range tables {
		n := fkNode{table: t.Name}
		for _, c := range t.Constraints {
			if c.Kind == catalog.ConstraintForeignKey {
				n.constraints = append(n.constraints, c)
			}
		}
		if len(n.constraints) > 0 {
			nodes = append(nodes, n)
		}
	}

	ordered, err := depgraph.Order(nodes)
	if err != nil {
		return []Outcome{{Err: err}}
	}

	outcomes := make([]Outcome, 0, len(ordered))
	for _, n := range ordered {
		for _, c := range n.constraints {
			outcomes = append(outcomes, apply(ctx, tx, n.table, c, existing))
		}
	}
	return outcomes
}

func apply(ctx context.Context, tx *sql.Tx, table catalog.QualifiedName, c catalog.Constraint, existing map[string]bool) Outcome {
	name := constraintName(table, c)
	if existing[key(table, name)] {
		return Outcome{Constraint: c, Table: table, Skipped: true}
	}

	stmt, err := statement(table, c, name)
	if err != nil {
		return Outcome{Constraint: c, Table: table, Err: err}
	}

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return Outcome{Constraint: c, Table: table, Err: err}
	}
	return Outcome{Constraint: c, Table: table}
}

func constraintName(table catalog.QualifiedName, c catalog.Constraint) string {
	if c.Name != "" {
		return c.Name
	}
	switch c.Kind {
	case catalog.ConstraintPrimaryKey:
		return table.Name + "_pkey"
	case catalog.ConstraintForeignKey:
		return table.Name + "_fkey"
	default:
		return table.Name + "_constraint"
	}
}

func statement(table catalog.QualifiedName, c catalog.Constraint, name string) (string, error) {
	qualified := ddl.QualifyIdent(table.Schema, table.Name)
	quotedName := ddl.QuoteIdent(name)

	switch c.Kind {
	case catalog.ConstraintPrimaryKey:
		return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s);",
			qualified, quotedName, quoteColumns(c.Columns)), nil

	case catalog.ConstraintUnique:
		return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s);",
			qualified, quotedName, quoteColumns(c.Columns)), nil

	case catalog.ConstraintForeignKey:
		ref := ddl.QualifyIdent(c.Referenced.Schema, c.Referenced.Name)
		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			qualified, quotedName, quoteColumns(c.LocalColumns), ref, quoteColumns(c.ReferencedColumns))
		if c.OnDelete != "" {
			stmt += " ON DELETE " + c.OnDelete
		}
		return stmt + ";", nil

	case catalog.ConstraintCheck:
		return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);",
			qualified, quotedName, c.Expression), nil

	case catalog.ConstraintNotNull:
		return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL;",
			qualified, ddl.QuoteIdent(c.Column)), nil

	default:
		return "", fmt.Errorf("constraints: unknown constraint kind %d", c.Kind)
	}
}

func quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ddl.QuoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}
