package ddl

import "fmt"

// Schema emits a CREATE SCHEMA IF NOT EXISTS statement.
func Schema(name string) string {
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", QuoteIdent(name))
}
