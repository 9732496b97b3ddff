package sqltransform

import (
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/sqlparse"
)

// qualifiedNameOf resolves a parsed QualifiedName node to its target
// catalog.QualifiedName, following an Oracle synonym if one matches
// (spec.md §4.11's identifier-qualification + synonym-substitution
// rule) and defaulting the schema to ctx.Schema when the reference was
// unqualified in the source text.
func qualifiedNameOf(qn *sqlparse.Node, ctx *Context) catalog.QualifiedName {
	var schema, name string
	switch len(qn.Children) {
	case 1:
		schema, name = ctx.Schema, qn.Children[0].Text()
	default:
		schema, name = qn.Children[len(qn.Children)-2].Text(), qn.Children[len(qn.Children)-1].Text()
	}

	if target, ok := ctx.ResolveSynonym(schema, name); ok {
		return target
	}
	return catalog.QualifiedName{Schema: schema, Name: name}
}

// emitFromClause emits one FROM clause, converting any comma-joined
// table pair with a collected `(+)` predicate into an explicit LEFT or
// RIGHT JOIN (spec.md §4.11's outer-join pass, Collected -> Emitting
// transition). Tables with no matching predicate stay plain comma-joins;
// ANSI JOIN ... ON clauses already in the source pass straight through.
func emitFromClause(n *sqlparse.Node, ctx *Context, oj *outerJoinPass) (string, error) {
	var b strings.Builder
	var first string // normalized alias of the first FROM item
	for i, child := range n.Children {
		switch child.Rule {
		case "JoinClause":
			s, err := emitJoinClause(child, ctx)
			if err != nil {
				return "", err
			}
			b.WriteString(" ")
			b.WriteString(s)

		default: // FromItem / SubqueryFromItem
			itemSQL, alias, err := emitFromItem(child, ctx)
			if err != nil {
				return "", err
			}
			if i == 0 {
				b.WriteString(itemSQL)
				first = normalize(alias)
				continue
			}

			join := " LEFT JOIN "
			preds := oj.predicatesFor(alias)
			if len(preds) == 0 {
				// The (+) side is the first FROM item, listed before this
				// preserved table.
				for _, p := range oj.byInner[first] {
					if normalize(p.outerAlias) == normalize(alias) {
						preds = append(preds, p)
					}
				}
				join = " RIGHT JOIN "
			}
			if len(preds) == 0 {
				b.WriteString(", ")
				b.WriteString(itemSQL)
				continue
			}
			onParts := make([]string, 0, len(preds))
			for _, p := range preds {
				onParts = append(onParts, quoteLower(p.outerAlias)+"."+quoteLower(p.outerCol)+" = "+quoteLower(p.innerAlias)+"."+quoteLower(p.innerCol))
			}
			b.WriteString(join)
			b.WriteString(itemSQL)
			b.WriteString(" ON ")
			b.WriteString(strings.Join(onParts, " AND "))
		}
	}
	return b.String(), nil
}

func emitJoinClause(n *sqlparse.Node, ctx *Context) (string, error) {
	var kw strings.Builder
	for _, t := range n.Tokens {
		kw.WriteString(t.Upper())
		kw.WriteString(" ")
	}
	kw.WriteString("JOIN")

	item := n.Children[0]
	itemSQL, _, err := emitFromItem(item, ctx)
	if err != nil {
		return "", err
	}

	out := kw.String() + " " + itemSQL
	if on := n.Find("OnClause"); on != nil {
		cond, err := emitExpr(on.Children[0], ctx)
		if err != nil {
			return "", err
		}
		out += " ON " + cond
	}
	return out, nil
}

// emitFromItem returns the emitted SQL text plus the alias this item is
// known by (its explicit alias, or its bare table name), used as the
// outer-join pass's lookup key.
func emitFromItem(n *sqlparse.Node, ctx *Context) (sql string, alias string, err error) {
	if n.Rule == "SubqueryFromItem" {
		body, err := emitQueryExpression(n.Children[0], ctx)
		if err != nil {
			return "", "", err
		}
		sql = "(" + body + ")"
		if len(n.Children) > 1 && n.Children[1].Rule == "Alias" {
			alias = n.Children[1].Text()
			sql += " AS " + quoteLower(alias)
		}
		return sql, alias, nil
	}

	qn := n.Children[0]
	table := qualifiedNameOf(qn, ctx)
	sql = quoteLower(table.Schema) + "." + quoteLower(table.Name)

	alias = qn.Children[len(qn.Children)-1].Text()
	if len(n.Children) > 1 && n.Children[1].Rule == "Alias" {
		alias = n.Children[1].Text()
		sql += " " + quoteLower(alias)
	}
	return sql, alias, nil
}

func quoteLower(s string) string {
	return strings.ToLower(s)
}
