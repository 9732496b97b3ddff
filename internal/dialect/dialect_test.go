package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOracleQuoteIdentifierUppercases(t *testing.T) {
	var d Oracle
	assert.Equal(t, `"EMPLOYEES"`, d.QuoteIdentifier("employees"))
}

func TestPostgresQuoteIdentifierLowercasesAndEscapes(t *testing.T) {
	var d Postgres
	assert.Equal(t, `"order""s"`, d.QuoteIdentifier(`Order"s`))
}

func TestOracleSystemSchemasExcludesUserSchemas(t *testing.T) {
	var d Oracle
	for _, s := range d.SystemSchemas() {
		assert.NotEqual(t, "HR", s)
	}
}

func TestBothDialectsExposeNonEmptyTableMetadata(t *testing.T) {
	var o Oracle
	var p Postgres
	assert.NotEmpty(t, o.TableMetadata().ListTables)
	assert.NotEmpty(t, p.TableMetadata().ListTables)
}
