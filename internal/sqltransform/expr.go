package sqltransform

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/sqlparse"
)

// emitExpr dispatches on node.Rule, one case per sqlparse expression
// rule, exactly mirroring the parser's own rule breakdown (spec.md §9).
func emitExpr(n *sqlparse.Node, ctx *Context) (string, error) {
	switch n.Rule {
	case "OrExpr":
		return binaryExpr(n, ctx, "OR")
	case "AndExpr":
		return binaryExpr(n, ctx, "AND")
	case "NotExpr":
		operand, err := emitExpr(n.Children[0], ctx)
		if err != nil {
			return "", err
		}
		return "NOT " + operand, nil
	case "ComparisonExpr":
		return binaryExpr(n, ctx, n.Tokens[0].Text)
	case "LikeExpr":
		return binaryExpr(n, ctx, "LIKE")
	case "InExpr":
		return emitInExpr(n, ctx)
	case "BetweenExpr":
		return emitBetweenExpr(n, ctx)
	case "IsNullExpr":
		return emitIsNullExpr(n, ctx)
	case "ConcatExpr":
		return emitConcatChain(n, ctx)
	case "AdditiveExpr":
		return binaryExpr(n, ctx, n.Tokens[0].Text)
	case "MultiplicativeExpr":
		return binaryExpr(n, ctx, n.Tokens[0].Text)
	case "UnaryExpr":
		operand, err := emitExpr(n.Children[0], ctx)
		if err != nil {
			return "", err
		}
		return n.Tokens[0].Text + operand, nil
	case "StringLiteral":
		return "'" + strings.ReplaceAll(n.Tokens[0].Text, "'", "''") + "'", nil
	case "NumberLiteral":
		return n.Tokens[0].Text, nil
	case "NullLiteral":
		return "NULL", nil
	case "BindVariable":
		return n.Tokens[0].Text, nil // left as-is in view/function bodies (spec.md §3.13)
	case "LevelExpr":
		return "", migerr.New(migerr.Transformation, "", "LEVEL pseudo-column used outside a CONNECT BY query")
	case "RownumExpr":
		return "row_number() OVER ()", nil
	case "PriorExpr":
		return "", migerr.New(migerr.Transformation, "", "PRIOR used outside a CONNECT BY clause")
	case "ExistsExpr":
		sub, err := emitQueryExpression(n.Children[0], ctx)
		if err != nil {
			return "", err
		}
		return "EXISTS (" + sub + ")", nil
	case "ScalarSubquery":
		sub, err := emitQueryExpression(n.Children[0], ctx)
		if err != nil {
			return "", err
		}
		return "(" + sub + ")", nil
	case "ParenExpr":
		parts := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			s, err := emitExpr(c, ctx)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ")", nil
		}
		return "(" + strings.Join(parts, ", ") + ")", nil
	case "CaseExpr":
		return emitCaseExpr(n, ctx)
	case "Identifier", "QuotedIdentifier":
		return quoteLower(n.Text()), nil
	case "GeneralElement", "FunctionCall":
		return emitGeneralElement(n, ctx)
	default:
		return "", migerr.New(migerr.Transformation, "", "unrecognized expression node: "+n.Rule)
	}
}

func binaryExpr(n *sqlparse.Node, ctx *Context, op string) (string, error) {
	left, err := emitExpr(n.Children[0], ctx)
	if err != nil {
		return "", err
	}
	right, err := emitExpr(n.Children[1], ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", left, op, right), nil
}

func emitInExpr(n *sqlparse.Node, ctx *Context) (string, error) {
	left, err := emitExpr(n.Children[0], ctx)
	if err != nil {
		return "", err
	}
	if len(n.Children) == 2 && n.Children[1].Rule == "QueryExpression" {
		sub, err := emitQueryExpression(n.Children[1], ctx)
		if err != nil {
			return "", err
		}
		return left + " IN (" + sub + ")", nil
	}
	parts := make([]string, 0, len(n.Children)-1)
	for _, c := range n.Children[1:] {
		s, err := emitExpr(c, ctx)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return left + " IN (" + strings.Join(parts, ", ") + ")", nil
}

func emitBetweenExpr(n *sqlparse.Node, ctx *Context) (string, error) {
	subject, err := emitExpr(n.Children[0], ctx)
	if err != nil {
		return "", err
	}
	lo, err := emitExpr(n.Children[1], ctx)
	if err != nil {
		return "", err
	}
	hi, err := emitExpr(n.Children[2], ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s BETWEEN %s AND %s", subject, lo, hi), nil
}

func emitIsNullExpr(n *sqlparse.Node, ctx *Context) (string, error) {
	subject, err := emitExpr(n.Children[0], ctx)
	if err != nil {
		return "", err
	}
	if len(n.Tokens) > 1 { // IS, NOT
		return subject + " IS NOT NULL", nil
	}
	return subject + " IS NULL", nil
}

// emitConcatChain folds a left-deep chain of `||` operators into a
// single multi-arg CONCAT call (spec.md §4.11: "Nested concatenations
// fold into a single multi-arg CONCAT").
func emitConcatChain(n *sqlparse.Node, ctx *Context) (string, error) {
	var operands []*sqlparse.Node
	var flatten func(*sqlparse.Node)
	flatten = func(node *sqlparse.Node) {
		if node.Rule == "ConcatExpr" {
			flatten(node.Children[0])
			flatten(node.Children[1])
			return
		}
		operands = append(operands, node)
	}
	flatten(n)

	parts := make([]string, 0, len(operands))
	for _, op := range operands {
		s, err := emitExpr(op, ctx)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "CONCAT(" + strings.Join(parts, ", ") + ")", nil
}

func emitCaseExpr(n *sqlparse.Node, ctx *Context) (string, error) {
	var b strings.Builder
	b.WriteString("CASE")

	for _, child := range n.Children {
		switch child.Rule {
		case "CaseSubject":
			s, err := emitExpr(child.Children[0], ctx)
			if err != nil {
				return "", err
			}
			b.WriteString(" " + s)
		case "WhenClause":
			cond, err := emitExpr(child.Children[0], ctx)
			if err != nil {
				return "", err
			}
			result, err := emitExpr(child.Children[1], ctx)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, " WHEN %s THEN %s", cond, result)
		case "ElseClause":
			s, err := emitExpr(child.Children[0], ctx)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, " ELSE %s", s)
		}
	}
	b.WriteString(" END")
	return b.String(), nil
}

func emitOrderBy(n *sqlparse.Node, ctx *Context) (string, error) {
	parts := make([]string, 0, len(n.Children))
	for _, item := range n.Children {
		s, err := emitOrderItem(item, ctx)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

// emitOrderItem applies spec.md §4.11's NULLS ordering rule: Oracle's
// DESC defaults to NULLS FIRST where PostgreSQL's DESC defaults to NULLS
// LAST, so every DESC key without an explicit NULLS clause gets one
// appended. ASC needs no adjustment since both dialects default it to
// NULLS LAST already. Explicit NULLS clauses pass through untouched.
func emitOrderItem(n *sqlparse.Node, ctx *Context) (string, error) {
	expr, err := emitExpr(n.Children[0], ctx)
	if err != nil {
		return "", err
	}

	var direction string
	var hasNulls bool
	for _, t := range n.Tokens {
		switch t.Upper() {
		case "ASC", "DESC":
			direction = t.Upper()
		case "NULLS":
			hasNulls = true
		}
	}

	out := expr
	if direction != "" {
		out += " " + direction
	}
	if hasNulls {
		nullsTokens := n.Tokens[len(n.Tokens)-1].Upper()
		out += " NULLS " + nullsTokens
	} else if direction == "DESC" {
		out += " NULLS FIRST"
	}
	return out, nil
}
