package sqltransform

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/sqlparse"
)

// emitConnectByQuery implements spec.md §4.11's CONNECT BY -> recursive
// CTE rewrite. Extracts the single base table, the optional START WITH
// condition, the CONNECT BY condition's single PRIOR equality, and the
// enclosing WHERE. NOCYCLE and ORDER SIBLINGS BY never reach it: they
// are rejected earlier by internal/sqlparse. This function rejects a
// FROM clause that is anything but one plain table reference, which
// also rules out a joined base table.
func emitConnectByQuery(block, connectBy *sqlparse.Node, ctx *Context) (string, error) {
	from := block.Find("FromClause")
	if from == nil || len(from.Children) != 1 || from.Children[0].Rule != "FromItem" {
		return "", migerr.New(migerr.Transformation, "", "CONNECT BY requires exactly one base table in FROM")
	}
	baseItem := from.Children[0]
	baseSQL, alias, err := emitFromItem(baseItem, ctx)
	if err != nil {
		return "", err
	}
	if strings.Contains(baseSQL, "(+)") {
		return "", migerr.New(migerr.Transformation, "", "CONNECT BY base table must not be outer-joined")
	}

	body := connectBy.Find("ConnectByBody")
	joinCond, err := priorJoinCondition(body.Children[0], alias)
	if err != nil {
		return "", err
	}

	var startWith *sqlparse.Node
	if sw := connectBy.Find("StartWithClause"); sw != nil {
		startWith = sw.Children[0]
	}

	var whereExpr *sqlparse.Node
	if w := block.Find("WhereClause"); w != nil {
		whereExpr = w.Children[0]
	}

	selectList := block.Find("SelectList")
	paths, err := collectSysConnectByPaths(selectList, ctx)
	if err != nil {
		return "", err
	}

	// Derived from the base table's alias rather than its qualified name,
	// so the generated CTE name is always a single clean identifier even
	// when the base table reference itself is schema-qualified.
	hierarchyName := strings.ToLower(alias) + "_hierarchy"

	baseCols, recCols, outerCols, err := connectBySelectColumns(selectList, alias, paths, ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "WITH RECURSIVE %s AS (", hierarchyName)
	fmt.Fprintf(&b, "SELECT %s, 1 AS level", strings.Join(baseCols, ", "))
	for _, p := range paths {
		fmt.Fprintf(&b, ", (%s) AS %s", p.baseExpr, p.column)
	}
	fmt.Fprintf(&b, " FROM %s", baseSQL)

	var baseWhere []string
	if startWith != nil {
		s, err := emitExpr(startWith, ctx)
		if err != nil {
			return "", err
		}
		baseWhere = append(baseWhere, s)
	}
	if whereExpr != nil {
		s, err := emitExpr(whereExpr, ctx)
		if err != nil {
			return "", err
		}
		baseWhere = append(baseWhere, s)
	}
	if len(baseWhere) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(baseWhere, " AND "))
	}

	fmt.Fprintf(&b, " UNION ALL SELECT %s, h.level + 1", strings.Join(recCols, ", "))
	for _, p := range paths {
		fmt.Fprintf(&b, ", h.%s || (%s)", p.column, p.baseExpr)
	}
	fmt.Fprintf(&b, " FROM %s JOIN %s h ON %s", baseSQL, hierarchyName, joinCond)
	if whereExpr != nil {
		s, err := emitExpr(whereExpr, ctx)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(s)
	}
	b.WriteString(") ")

	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(outerCols, ", "), hierarchyName)

	if order := block.Find("OrderByClause"); order != nil {
		s, err := emitOrderBy(order, ctx)
		if err != nil {
			return "", err
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(s)
	}

	return b.String(), nil
}

// priorJoinCondition derives the recursive JOIN's ON clause from the
// CONNECT BY condition's single PRIOR equality (spec.md §4.11 rule 4):
// `PRIOR x = y` becomes `t.y = h.x`; `x = PRIOR y` becomes `t.x = h.y`.
func priorJoinCondition(cond *sqlparse.Node, baseAlias string) (string, error) {
	if cond.Rule != "ComparisonExpr" || cond.Tokens[0].Text != "=" {
		return "", migerr.New(migerr.Transformation, "", "CONNECT BY condition must be a single PRIOR equality")
	}
	left, right := cond.Children[0], cond.Children[1]

	switch {
	case left.Rule == "PriorExpr":
		x := simpleColumnName(left.Children[0])
		y := simpleColumnName(right)
		return fmt.Sprintf("%s.%s = h.%s", baseAlias, y, x), nil
	case right.Rule == "PriorExpr":
		x := simpleColumnName(left)
		y := simpleColumnName(right.Children[0])
		return fmt.Sprintf("%s.%s = h.%s", baseAlias, x, y), nil
	default:
		return "", migerr.New(migerr.Transformation, "", "CONNECT BY condition must contain exactly one PRIOR expression")
	}
}

// simpleColumnName extracts the bare column name text from a parsed
// identifier or single-segment GeneralElement node — the shapes PRIOR
// operands and their comparison partners take (spec.md §4.11 rule 4).
func simpleColumnName(n *sqlparse.Node) string {
	switch n.Rule {
	case "Identifier", "QuotedIdentifier":
		return n.Text()
	case "GeneralElement":
		if len(n.Children) > 0 {
			return n.Children[len(n.Children)-1].Text()
		}
	}
	return n.Text()
}

type sysConnectByPath struct {
	key      string // rendered "exprSQL|sepSQL", used to match calls back to their column
	column   string
	baseExpr string // also reused verbatim for the recursive case, prefixed with "h.path_N || "
}

// sysConnectByPathArgs returns the two argument expression nodes of a
// SYS_CONNECT_BY_PATH(expr, separator) call, unwrapped from their
// Argument wrapper nodes.
func sysConnectByPathArgs(call *sqlparse.Node) (exprNode, sepNode *sqlparse.Node, ok bool) {
	idents, args, _ := splitGeneralElement(call)
	if len(idents) != 1 || !strings.EqualFold(idents[0].Text(), "SYS_CONNECT_BY_PATH") || len(args) != 2 {
		return nil, nil, false
	}
	return args[0].Children[0], args[1].Children[0], true
}

// sysConnectByPathKeyOf renders the (expr, separator) pair to the text
// they'll actually emit as, so distinct source spellings that mean the
// same column (e.g. whitespace differences) still dedupe correctly.
func sysConnectByPathKeyOf(exprNode, sepNode *sqlparse.Node, ctx *Context) (key, exprSQL, sepSQL string, err error) {
	exprSQL, err = emitExpr(exprNode, ctx)
	if err != nil {
		return "", "", "", err
	}
	sepSQL, err = emitExpr(sepNode, ctx)
	if err != nil {
		return "", "", "", err
	}
	return exprSQL + "|" + sepSQL, exprSQL, sepSQL, nil
}

// collectSysConnectByPaths allocates one path_N column per distinct
// (expr, separator) SYS_CONNECT_BY_PATH call found in the select list
// (spec.md §4.11 rule 6). The call itself is rewritten in place to
// reference that column by connectBySelectColumns.
func collectSysConnectByPaths(selectList *sqlparse.Node, ctx *Context) ([]sysConnectByPath, error) {
	var paths []sysConnectByPath
	seen := map[string]bool{}
	for _, call := range selectList.FindAll("FunctionCall") {
		exprNode, sepNode, ok := sysConnectByPathArgs(call)
		if !ok {
			continue
		}
		key, exprSQL, sepSQL, err := sysConnectByPathKeyOf(exprNode, sepNode, ctx)
		if err != nil {
			return nil, err
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		paths = append(paths, sysConnectByPath{
			key:      key,
			column:   fmt.Sprintf("path_%d", len(paths)+1),
			baseExpr: sepSQL + " || " + exprSQL,
		})
	}
	return paths, nil
}

// connectBySelectColumns renders the base-case, recursive-case, and
// final outer-query column lists, rewriting LEVEL -> 1 / h.level+1 /
// level and SYS_CONNECT_BY_PATH(...) -> path_N per spec.md §4.11 rule 5
// and rule 6.
func connectBySelectColumns(selectList *sqlparse.Node, alias string, paths []sysConnectByPath, ctx *Context) (base, recursive, outer []string, err error) {
	for _, item := range selectList.Children {
		if len(item.Tokens) > 0 && item.Tokens[0].Text == "*" {
			base = append(base, alias+".*")
			recursive = append(recursive, alias+".*")
			outer = append(outer, "*")
			continue
		}

		expr := item.Children[0]
		switch {
		case expr.Rule == "LevelExpr":
			base = append(base, "1")
			recursive = append(recursive, "h.level + 1")
			outer = append(outer, "level")
		case isSysConnectByPath(expr):
			col, e := pathColumnFor(expr, paths, ctx)
			if e != nil {
				return nil, nil, nil, e
			}
			outer = append(outer, col)
		default:
			s, e := emitExpr(expr, ctx)
			if e != nil {
				return nil, nil, nil, e
			}
			base = append(base, s)
			recursive = append(recursive, s)
			outer = append(outer, s)
		}
	}
	return base, recursive, outer, nil
}

func isSysConnectByPath(n *sqlparse.Node) bool {
	_, _, ok := sysConnectByPathArgs(n)
	return ok
}

func pathColumnFor(n *sqlparse.Node, paths []sysConnectByPath, ctx *Context) (string, error) {
	exprNode, sepNode, ok := sysConnectByPathArgs(n)
	if !ok {
		return "NULL", nil
	}
	key, _, _, err := sysConnectByPathKeyOf(exprNode, sepNode, ctx)
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		if p.key == key {
			return p.column, nil
		}
	}
	return "NULL", nil
}
