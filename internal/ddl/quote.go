// Package ddl implements the DDL Emitters (C6, spec.md §4.6): pure
// Catalog-entry → string functions, one group per target object kind.
package ddl

import "strings"

// reserved holds the PostgreSQL reserved keywords (SQL:2016 "reserved"
// plus PostgreSQL's own additions) that force an identifier to be
// double-quoted even though it would otherwise print lower-case and
// unquoted (spec.md §3, §6: "any identifier colliding with a PostgreSQL
// reserved word").
var reserved = map[string]bool{
	"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
	"array": true, "as": true, "asc": true, "asymmetric": true, "authorization": true,
	"binary": true, "both": true, "case": true, "cast": true, "check": true,
	"collate": true, "collation": true, "column": true, "concurrently": true,
	"constraint": true, "create": true, "cross": true, "current_catalog": true,
	"current_date": true, "current_role": true, "current_schema": true,
	"current_time": true, "current_timestamp": true, "current_user": true,
	"default": true, "deferrable": true, "desc": true, "distinct": true,
	"do": true, "else": true, "end": true, "except": true, "false": true,
	"fetch": true, "for": true, "foreign": true, "freeze": true, "from": true,
	"full": true, "grant": true, "group": true, "having": true, "ilike": true,
	"in": true, "initially": true, "inner": true, "intersect": true,
	"into": true, "is": true, "isnull": true, "join": true, "lateral": true,
	"leading": true, "left": true, "like": true, "limit": true, "localtime": true,
	"localtimestamp": true, "natural": true, "not": true, "notnull": true,
	"null": true, "offset": true, "on": true, "only": true, "or": true,
	"order": true, "outer": true, "overlaps": true, "placing": true,
	"primary": true, "references": true, "returning": true, "right": true,
	"select": true, "session_user": true, "similar": true, "some": true,
	"symmetric": true, "table": true, "tablesample": true, "then": true,
	"to": true, "trailing": true, "true": true, "union": true, "unique": true,
	"user": true, "using": true, "variadic": true, "verbose": true,
	"when": true, "where": true, "window": true, "with": true,
	"row": true, "rows": true, "value": true, "values": true, "type": true,
	"cache": true, "cycle": true, "increment": true, "level": true, "sequence": true,
}

// QuoteIdent lower-cases an Oracle identifier and double-quotes it only
// when needed: it collides with a reserved word, or after folding it is
// not a plain identifier (it is empty, starts with a digit, or contains
// characters besides letters/digits/underscore). Mixed case is always
// folded to lower case, never preserved.
func QuoteIdent(name string) string {
	lower := strings.ToLower(name)
	if reserved[lower] || !isPlainIdent(lower) {
		return `"` + strings.ReplaceAll(lower, `"`, `""`) + `"`
	}
	return lower
}

func isPlainIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		case r == '_':
		default:
			return false
		}
	}
	return true
}

// QualifyIdent renders schema.name, quoting each part independently.
func QualifyIdent(schema, name string) string {
	if schema == "" {
		return QuoteIdent(name)
	}
	return QuoteIdent(schema) + "." + QuoteIdent(name)
}
