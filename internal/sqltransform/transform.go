package sqltransform

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/sqlparse"
)

// Transform walks tree (as produced by internal/sqlparse.Parse) and
// emits PostgreSQL SQL text, applying every rewrite rule of spec.md
// §4.11. One visitor per grammar rule of interest, matching the parser's
// own organization (spec.md §9).
func Transform(tree *sqlparse.Node, ctx *Context) (string, error) {
	if tree == nil || tree.Rule != "Statement" {
		return "", migerr.New(migerr.Transformation, "", "Transform expects a Statement node")
	}

	var b strings.Builder
	for _, child := range tree.Children {
		switch child.Rule {
		case "WithClause":
			s, err := emitWithClause(child, ctx)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
			b.WriteString(" ")
		case "QueryExpression":
			s, err := emitQueryExpression(child, ctx)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
	return b.String(), nil
}

func emitWithClause(n *sqlparse.Node, ctx *Context) (string, error) {
	var b strings.Builder
	b.WriteString("WITH ")

	ctes := n.FindAll("CommonTableExpr")
	recursive := len(n.Tokens) > 0 // already declared RECURSIVE
	if !recursive {
		for _, cte := range ctes {
			name := cte.Children[0].Text()
			if cteReferencesItself(cte, name) {
				recursive = true
				break
			}
		}
	}
	if recursive {
		b.WriteString("RECURSIVE ")
	}

	for i, cte := range ctes {
		if i > 0 {
			b.WriteString(", ")
		}
		name := cte.Children[0].Text()
		b.WriteString(quoteLower(name))

		var cols []string
		for _, c := range cte.Children[1 : len(cte.Children)-1] {
			cols = append(cols, quoteLower(c.Text()))
		}
		if len(cols) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(cols, ", "))
		}

		body := cte.Children[len(cte.Children)-1]
		bodySQL, err := emitQueryExpression(body, ctx)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " AS (%s)", bodySQL)
	}
	return b.String(), nil
}

// cteReferencesItself reports whether name appears as a FROM-clause
// table reference anywhere inside cte's body — case-insensitive, schema
// prefix ignored, per spec.md §4.11's recursive-CTE detection rule.
func cteReferencesItself(cte *sqlparse.Node, name string) bool {
	body := cte.Children[len(cte.Children)-1]
	for _, qn := range body.FindAll("QualifiedName") {
		if len(qn.Children) == 0 {
			continue
		}
		last := qn.Children[len(qn.Children)-1].Text()
		if strings.EqualFold(last, name) {
			return true
		}
	}
	return false
}

func emitQueryExpression(n *sqlparse.Node, ctx *Context) (string, error) {
	var b strings.Builder
	for i, child := range n.Children {
		if i > 0 {
			b.WriteString(" ")
		}
		switch child.Rule {
		case "SetOperator":
			b.WriteString(operatorKeyword(child))
			b.WriteString(" ")
			s, err := emitQueryBlock(child.Children[0], ctx)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		default:
			s, err := emitQueryBlock(child, ctx)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
	return b.String(), nil
}

func operatorKeyword(setOp *sqlparse.Node) string {
	if len(setOp.Tokens) == 2 {
		return "UNION ALL"
	}
	return setOp.Tokens[0].Upper()
}

func emitQueryBlock(n *sqlparse.Node, ctx *Context) (string, error) {
	if n.Rule == "ParenthesizedQuery" {
		inner, err := emitQueryExpression(n.Children[0], ctx)
		if err != nil {
			return "", err
		}
		return "(" + inner + ")", nil
	}

	ctx.PushScope()
	defer ctx.PopScope()

	connectBy := n.Find("ConnectByClause")
	if connectBy != nil {
		return emitConnectByQuery(n, connectBy, ctx)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if len(n.Tokens) > 0 {
		b.WriteString(n.Tokens[0].Upper())
		b.WriteString(" ")
	}

	from := n.Find("FromClause")
	oj := newOuterJoinPass()
	where := n.Find("WhereClause")
	var whereExpr *sqlparse.Node
	if where != nil {
		whereExpr = where.Children[0]
	}
	oj.scanWhere(whereExpr)
	ctx.outerJoin = oj

	// Bind FROM aliases before emitting the select list, so column
	// references resolve regardless of textual order.
	bindFromAliases(from, ctx)

	selectList := n.Find("SelectList")
	listSQL, err := emitSelectList(selectList, ctx)
	if err != nil {
		return "", err
	}
	b.WriteString(listSQL)

	if isDualOnly(from) {
		// Oracle's mandatory FROM DUAL has no PostgreSQL equivalent
		// (spec.md §4.11: "Strip FROM DUAL").
	} else {
		fromSQL, err := emitFromClause(from, ctx, oj)
		if err != nil {
			return "", err
		}
		b.WriteString(" FROM ")
		b.WriteString(fromSQL)
	}
	oj.finishEmitting()

	var residue []*sqlparse.Node
	residue = append(residue, oj.residue...)
	if len(residue) > 0 {
		exprSQL, err := emitConjuncts(residue, ctx)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(exprSQL)
	}

	if group := n.Find("GroupByClause"); group != nil {
		parts := make([]string, 0, len(group.Children))
		for _, c := range group.Children {
			s, err := emitExpr(c, ctx)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(parts, ", "))

		if having := n.Find("HavingClause"); having != nil {
			s, err := emitExpr(having.Children[0], ctx)
			if err != nil {
				return "", err
			}
			b.WriteString(" HAVING ")
			b.WriteString(s)
		}
	}

	if order := n.Find("OrderByClause"); order != nil {
		s, err := emitOrderBy(order, ctx)
		if err != nil {
			return "", err
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(s)
	}

	return b.String(), nil
}

func isDualOnly(from *sqlparse.Node) bool {
	if from == nil || len(from.Children) != 1 {
		return false
	}
	item := from.Children[0]
	if item.Rule != "FromItem" || len(item.Children) == 0 {
		return false
	}
	qn := item.Children[0]
	if qn.Rule != "QualifiedName" || len(qn.Children) == 0 {
		return false
	}
	return strings.EqualFold(qn.Children[len(qn.Children)-1].Text(), "DUAL")
}

func emitConjuncts(conjuncts []*sqlparse.Node, ctx *Context) (string, error) {
	parts := make([]string, 0, len(conjuncts))
	for _, c := range conjuncts {
		s, err := emitExpr(c, ctx)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " AND "), nil
}

func emitSelectList(n *sqlparse.Node, ctx *Context) (string, error) {
	parts := make([]string, 0, len(n.Children))
	for _, item := range n.Children {
		s, err := emitSelectItem(item, ctx)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

func emitSelectItem(n *sqlparse.Node, ctx *Context) (string, error) {
	if len(n.Tokens) > 0 && n.Tokens[len(n.Tokens)-1].Text == "*" {
		if len(n.Tokens) == 1 {
			return "*", nil
		}
		// table.*
		return quoteLower(n.Tokens[0].Text) + "." + n.Tokens[len(n.Tokens)-1].Text, nil
	}

	expr, err := emitExpr(n.Children[0], ctx)
	if err != nil {
		return "", err
	}
	if len(n.Children) > 1 && n.Children[1].Rule == "Alias" {
		return expr + " AS " + quoteLower(n.Children[1].Text()), nil
	}
	return expr, nil
}

// bindFromAliases walks FROM once, registering every table alias in ctx
// before expressions elsewhere in the query block are emitted.
func bindFromAliases(from *sqlparse.Node, ctx *Context) {
	if from == nil {
		return
	}
	for _, child := range from.Children {
		bindOneFromEntry(child, ctx)
	}
}

func bindOneFromEntry(n *sqlparse.Node, ctx *Context) {
	switch n.Rule {
	case "FromItem":
		bindFromItemAlias(n, ctx)
	case "SubqueryFromItem":
		// Subquery aliases don't resolve to a QualifiedName; nothing to
		// register for type-method/column disambiguation purposes.
	case "JoinClause":
		for _, c := range n.Children {
			if c.Rule == "FromItem" || c.Rule == "SubqueryFromItem" {
				bindOneFromEntry(c, ctx)
			}
		}
	}
}

func bindFromItemAlias(n *sqlparse.Node, ctx *Context) {
	if len(n.Children) == 0 || n.Children[0].Rule != "QualifiedName" {
		return
	}
	qn := n.Children[0]
	table := qualifiedNameOf(qn, ctx)

	alias := qn.Children[len(qn.Children)-1].Text()
	if len(n.Children) > 1 && n.Children[1].Rule == "Alias" {
		alias = n.Children[1].Text()
	}
	ctx.Bind(alias, table)
}
