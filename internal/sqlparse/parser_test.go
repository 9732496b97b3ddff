package sqlparse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
)

func TestParseSimpleSelect(t *testing.T) {
	tree, err := Parse(`SELECT id, name FROM hr.employees WHERE id = 1`)
	require.NoError(t, err)

	block := tree.Find("QueryBlock")
	require.NotNil(t, block)

	list := block.Find("SelectList")
	require.NotNil(t, list)
	assert.Len(t, list.Children, 2)

	where := block.Find("WhereClause")
	require.NotNil(t, where)
	cmp := where.Find("ComparisonExpr")
	require.NotNil(t, cmp)
	assert.Equal(t, "=", cmp.Tokens[0].Text)
}

func TestParseOracleOuterJoinMarker(t *testing.T) {
	tree, err := Parse(`SELECT e.name, d.name FROM employees e, departments d WHERE e.dept_id = d.id(+)`)
	require.NoError(t, err)

	cmp := tree.Find("ComparisonExpr")
	require.NotNil(t, cmp)
	require.Len(t, cmp.Children, 2)
	rhs := cmp.Children[1]
	require.Equal(t, "GeneralElement", rhs.Rule)
	require.NotEmpty(t, rhs.Tokens)
	assert.Equal(t, "(+)", rhs.Tokens[len(rhs.Tokens)-1].Text)
}

func TestParseAnsiJoinWithOn(t *testing.T) {
	tree, err := Parse(`SELECT e.name FROM employees e LEFT OUTER JOIN departments d ON e.dept_id = d.id`)
	require.NoError(t, err)

	join := tree.Find("JoinClause")
	require.NotNil(t, join)
	require.Len(t, join.Tokens, 2) // LEFT, OUTER
	on := join.Find("OnClause")
	require.NotNil(t, on)
}

func TestParseConnectByStartWith(t *testing.T) {
	tree, err := Parse(`SELECT employee_id FROM employees START WITH manager_id IS NULL CONNECT BY PRIOR employee_id = manager_id`)
	require.NoError(t, err)

	cb := tree.Find("ConnectByClause")
	require.NotNil(t, cb)
	require.NotNil(t, cb.Find("StartWithClause"))
	body := cb.Find("ConnectByBody")
	require.NotNil(t, body)
	require.NotNil(t, body.Find("PriorExpr"))
}

func TestParseWithClauseRecursiveCTE(t *testing.T) {
	tree, err := Parse(`WITH RECURSIVE tree AS (SELECT id FROM nodes) SELECT id FROM tree`)
	require.NoError(t, err)

	with := tree.Find("WithClause")
	require.NotNil(t, with)
	require.Len(t, with.Tokens, 1)
	assert.Equal(t, "RECURSIVE", with.Tokens[0].Upper())
	cte := with.Find("CommonTableExpr")
	require.NotNil(t, cte)
}

func TestParseFunctionCallAndConcat(t *testing.T) {
	tree, err := Parse(`SELECT NVL(first_name, 'x') || ' ' || last_name FROM employees`)
	require.NoError(t, err)

	call := tree.Find("FunctionCall")
	require.NotNil(t, call)
	assert.Equal(t, "NVL", call.Children[0].Text())

	concat := tree.Find("ConcatExpr")
	require.NotNil(t, concat)
}

func TestParseCaseExpr(t *testing.T) {
	tree, err := Parse(`SELECT CASE WHEN salary > 1000 THEN 'high' ELSE 'low' END FROM employees`)
	require.NoError(t, err)

	c := tree.Find("CaseExpr")
	require.NotNil(t, c)
	require.NotNil(t, c.Find("WhenClause"))
	require.NotNil(t, c.Find("ElseClause"))
}

func TestParseRejectsPivot(t *testing.T) {
	_, err := Parse(`SELECT * FROM sales PIVOT (SUM(amount) FOR quarter IN ('Q1', 'Q2'))`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, migerr.ErrUnsupportedConstruct))
}

func TestParseRejectsOrderSiblingsBy(t *testing.T) {
	_, err := Parse(`SELECT id FROM employees CONNECT BY PRIOR id = manager_id ORDER SIBLINGS BY id`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, migerr.ErrUnsupportedConstruct))
}

func TestParseMalformedSqlReturnsParseFailed(t *testing.T) {
	_, err := Parse(`SELECT FROM WHERE`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, migerr.ErrParseFailed))
}

func TestParseBindVariable(t *testing.T) {
	tree, err := Parse(`SELECT id FROM employees WHERE id = :emp_id`)
	require.NoError(t, err)
	bind := tree.Find("BindVariable")
	require.NotNil(t, bind)
	assert.Equal(t, ":emp_id", bind.Tokens[0].Text)
}

func TestParseOrderByNullsLast(t *testing.T) {
	tree, err := Parse(`SELECT id FROM employees ORDER BY hire_date DESC NULLS LAST`)
	require.NoError(t, err)
	item := tree.Find("OrderItem")
	require.NotNil(t, item)
	require.Len(t, item.Tokens, 3)
	assert.Equal(t, "DESC", item.Tokens[0].Upper())
	assert.Equal(t, "NULLS", item.Tokens[1].Upper())
	assert.Equal(t, "LAST", item.Tokens[2].Upper())
}
