package sqltransform

import (
	"fmt"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/sqlparse"
)

// TranslateSQL is the entry point the ancillary SQL-translation endpoint
// (spec.md §6, the `translate_sql` MCP tool) calls: parse, transform, and
// additionally rewrite bind variables (`:1`, `:name`) to PostgreSQL's
// `$n` ordinal form, since an ad-hoc statement submitted to that
// endpoint may be parameterized in a way view/function bodies never are
// once DDL-stubbed (SPEC_FULL.md §3.13's supplemented bind-variable
// rule).
func TranslateSQL(oracleSQL, schema string, snapshot *catalog.Snapshot) (string, error) {
	tree, err := sqlparse.Parse(oracleSQL)
	if err != nil {
		return "", err
	}

	ctx := NewContext(schema, snapshot)
	out, err := Transform(tree, ctx)
	if err != nil {
		return "", err
	}
	return rewriteBindVariables(out), nil
}

// rewriteBindVariables assigns PostgreSQL `$n` placeholders to every
// `:1`/`:name` bind variable left untouched by Transform, in left-to
// -right order of first appearance — the same ordinal assignment Oracle
// itself uses for positional binds, so repeated uses of the same named
// bind variable share one placeholder number.
func rewriteBindVariables(sql string) string {
	var out []byte
	seen := make(map[string]int)
	next := 1

	i := 0
	inLiteral := false
	for i < len(sql) {
		if sql[i] == '\'' {
			inLiteral = !inLiteral
		}
		// Text inside string literals and the second colon of a `::` cast
		// are not bind variables.
		if inLiteral || sql[i] != ':' || i+1 >= len(sql) || !isBindVarStart(sql[i+1]) || (i > 0 && sql[i-1] == ':') {
			out = append(out, sql[i])
			i++
			continue
		}
		j := i + 1
		for j < len(sql) && isBindVarPart(sql[j]) {
			j++
		}
		name := sql[i:j]
		n, ok := seen[name]
		if !ok {
			n = next
			seen[name] = n
			next++
		}
		out = append(out, []byte(fmt.Sprintf("$%d", n))...)
		i = j
	}
	return string(out)
}

func isBindVarStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isBindVarPart(c byte) bool {
	return isBindVarStart(c)
}
