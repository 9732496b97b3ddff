package sqltransform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/sqlparse"
)

func qn(schema, name string) catalog.QualifiedName {
	return catalog.QualifiedName{Schema: schema, Name: name}
}

func emptySnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Composites:       map[string]*catalog.CompositeType{},
		ColumnTypes:      map[string]catalog.TypeRef{},
		Methods:          map[string]*catalog.TypeMethod{},
		PackageFunctions: map[string]*catalog.Routine{},
		Synonyms:         map[string]catalog.QualifiedName{},
	}
}

func transformSQL(t *testing.T, src string, ctx *Context) string {
	t.Helper()
	tree, err := sqlparse.Parse(src)
	require.NoError(t, err)
	out, err := Transform(tree, ctx)
	require.NoError(t, err)
	return out
}

func TestTransformSimpleSelectQualifiesSchema(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT id, name FROM customers c", ctx)
	assert.Equal(t, "SELECT id, name FROM app.customers c", out)
}

func TestTransformSynonymSubstitution(t *testing.T) {
	snap := emptySnapshot()
	snap.Synonyms["app.cust"] = qn("app", "customers")
	ctx := NewContext("app", snap)
	out := transformSQL(t, "SELECT id FROM cust c", ctx)
	assert.Equal(t, "SELECT id FROM app.customers c", out)
}

func TestTransformOuterJoinRewrittenToLeftJoin(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT o.id, c.name FROM orders o, customers c WHERE o.cust_id = c.id(+)", ctx)
	assert.Equal(t, "SELECT o.id, c.name FROM app.orders o LEFT JOIN app.customers c ON o.cust_id = c.id", out)
}

func TestTransformOuterJoinMarkerOnLeftSide(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT o.id FROM orders o, customers c WHERE c.id(+) = o.cust_id", ctx)
	assert.Equal(t, "SELECT o.id FROM app.orders o LEFT JOIN app.customers c ON o.cust_id = c.id", out)
}

func TestOuterJoinPassPanicsOnInvalidTransition(t *testing.T) {
	oj := newOuterJoinPass()
	oj.scanWhere(nil)
	oj.predicatesFor("c")
	oj.finishEmitting()
	assert.Panics(t, func() {
		oj.scanWhere(nil) // already past Scanning
	})
}

func TestTransformConcatFoldsIntoConcat(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT a || b || c FROM dual", ctx)
	assert.Equal(t, "SELECT CONCAT(a, b, c)", out)
}

func TestTransformFromDualStripped(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT 1 FROM dual", ctx)
	assert.Equal(t, "SELECT 1", out)
}

func TestTransformNvlRewrite(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT NVL(a, 0) FROM dual", ctx)
	assert.Equal(t, "SELECT COALESCE(a, 0)", out)
}

func TestTransformDecodeRewrite(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT DECODE(a, 1, 'one', 2, 'two', 'other') FROM dual", ctx)
	assert.Equal(t, "SELECT CASE a WHEN 1 THEN 'one' WHEN 2 THEN 'two' ELSE 'other' END", out)
}

func TestTransformSubstrRewrite(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT SUBSTR(a, 1, 3) FROM dual", ctx)
	assert.Equal(t, "SELECT SUBSTRING(a FROM 1 FOR 3)", out)
}

func TestTransformTruncDateHeuristic(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT TRUNC(SYSDATE, 'MONTH') FROM dual", ctx)
	assert.Equal(t, "SELECT DATE_TRUNC('MONTH', CURRENT_TIMESTAMP)::DATE", out)
}

func TestTransformTruncNumericPassesThrough(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT TRUNC(a, 2) FROM dual", ctx)
	assert.Equal(t, "SELECT trunc(a, 2)", out)
}

func TestTransformOrderByDescGetsNullsFirst(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT id FROM customers c ORDER BY c.name DESC", ctx)
	assert.Equal(t, "SELECT id FROM app.customers c ORDER BY c.name DESC NULLS FIRST", out)
}

func TestTransformOrderByExplicitNullsPassesThrough(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT id FROM customers c ORDER BY c.name DESC NULLS LAST", ctx)
	assert.Equal(t, "SELECT id FROM app.customers c ORDER BY c.name DESC NULLS LAST", out)
}

func TestTransformWithClauseDetectsRecursiveCTE(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "WITH nums AS (SELECT 1 AS n FROM dual UNION ALL SELECT n+1 FROM nums WHERE n < 10) SELECT n FROM nums", ctx)
	assert.Contains(t, out, "WITH RECURSIVE nums AS (")
}

func TestTransformConnectByRewrite(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT emp_id, LEVEL FROM employees e START WITH mgr_id IS NULL CONNECT BY PRIOR emp_id = mgr_id", ctx)
	require.Contains(t, out, "WITH RECURSIVE")
	require.Contains(t, out, "e_hierarchy")
	assert.Contains(t, out, "UNION ALL")
	assert.Contains(t, out, "h.level + 1")
}

func TestTransformConnectBySysConnectByPath(t *testing.T) {
	ctx := NewContext("app", emptySnapshot())
	out := transformSQL(t, "SELECT SYS_CONNECT_BY_PATH(name, '/') FROM employees e START WITH mgr_id IS NULL CONNECT BY PRIOR emp_id = mgr_id", ctx)
	assert.Contains(t, out, "path_1")
}

func TestTransformPackageFunctionDisambiguation(t *testing.T) {
	snap := emptySnapshot()
	snap.PackageFunctions["app.pkg_util.to_slug"] = &catalog.Routine{
		Name:          qn("app", "pkg_util.to_slug"),
		PackageMember: true,
	}
	ctx := NewContext("app", snap)
	out := transformSQL(t, "SELECT pkg_util.to_slug(name) FROM customers c", ctx)
	assert.Contains(t, out, "pkg_util__to_slug(name)")
}

func TestTransformMethodCallDisambiguation(t *testing.T) {
	snap := emptySnapshot()
	addrType := qn("app", "address_t")
	snap.ColumnTypes["app.customers.addr"] = catalog.UserDefined(addrType)
	snap.Methods["app.address_t.to_text"] = &catalog.TypeMethod{
		OwnerType:  addrType,
		MethodName: "to_text",
	}
	ctx := NewContext("app", snap)
	out := transformSQL(t, "SELECT c.addr.to_text() FROM customers c", ctx)
	assert.Contains(t, out, "address_t__to_text(c.addr)")
}

func TestTransformRejectsPivotPropagatesParseError(t *testing.T) {
	_, err := sqlparse.Parse("SELECT * FROM (SELECT dept, sal FROM emp) PIVOT (SUM(sal) FOR dept IN ('A', 'B'))")
	require.Error(t, err)
	assert.ErrorIs(t, err, migerr.ErrUnsupportedConstruct)
}

func TestRewriteBindVariablesOrdinalAssignment(t *testing.T) {
	out := rewriteBindVariables("a = :id AND b = :name AND c = :id")
	assert.Equal(t, "a = $1 AND b = $2 AND c = $1", out)
}

func TestTranslateSQLAppliesBindVariableRewrite(t *testing.T) {
	out, err := TranslateSQL("SELECT * FROM customers WHERE id = :id", "app", emptySnapshot())
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM app.customers WHERE id = $1", out)
}

func TestTranslateSQLPropagatesTransformError(t *testing.T) {
	_, err := TranslateSQL("SELECT LEVEL FROM customers", "app", emptySnapshot())
	require.Error(t, err)
}
