// Package sqltransform implements the SQL Transformer (C11, spec.md
// §4.11) and its Transformation Context (C12, spec.md §4.12): it walks
// an internal/sqlparse tree and emits PostgreSQL SQL text directly, one
// visitor function per grammar rule of interest, exactly as spec.md §9
// prescribes — no intermediate typed AST, no separate code-generation
// pass.
package sqltransform

import (
	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
)

// Context is the per-transformation-call value object of spec.md §4.12:
// the current schema, a stack of alias scopes (pushed/popped around
// subqueries so inner aliases never leak outward), and read-only
// pointers into a Snapshot built once per migration session and shared
// by every concurrent Transform call.
type Context struct {
	Schema string

	snapshot *catalog.Snapshot
	scopes   []map[string]catalog.QualifiedName

	outerJoin *outerJoinPass
}

// NewContext creates a Context for one Transform call. snapshot must
// have been built once per session via Catalog.Snapshot and is shared,
// read-only, across every concurrent call.
func NewContext(schema string, snapshot *catalog.Snapshot) *Context {
	return &Context{
		Schema:   schema,
		snapshot: snapshot,
		scopes:   []map[string]catalog.QualifiedName{make(map[string]catalog.QualifiedName)},
	}
}

// PushScope opens a new alias scope for a subquery.
func (c *Context) PushScope() {
	c.scopes = append(c.scopes, make(map[string]catalog.QualifiedName))
}

// PopScope closes the innermost alias scope. Calling it with no scope
// open beyond the root is a programming error and panics immediately,
// matching the "out-of-order call is a programming error caught in
// tests" principle SPEC_FULL.md §3.13 states for the outer-join state
// machine and applied here too.
func (c *Context) PopScope() {
	if len(c.scopes) <= 1 {
		panic("sqltransform: PopScope called with no subquery scope open")
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// Bind records that alias refers to table within the innermost scope.
func (c *Context) Bind(alias string, table catalog.QualifiedName) {
	c.scopes[len(c.scopes)-1][normalize(alias)] = table
}

// Resolve looks up an alias starting from the innermost scope outward.
func (c *Context) Resolve(alias string) (catalog.QualifiedName, bool) {
	key := normalize(alias)
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if q, ok := c.scopes[i][key]; ok {
			return q, true
		}
	}
	return catalog.QualifiedName{}, false
}

// ColumnType looks up the declared type of table.column via the shared
// Snapshot.
func (c *Context) ColumnType(table catalog.QualifiedName, column string) (catalog.TypeRef, bool) {
	t, ok := c.snapshot.ColumnTypes[tableKey(table)+"."+normalize(column)]
	return t, ok
}

// Method looks up a type method by owner type and method name.
func (c *Context) Method(owner catalog.QualifiedName, name string) (*catalog.TypeMethod, bool) {
	m, ok := c.snapshot.Methods[tableKey(owner)+"."+normalize(name)]
	return m, ok
}

// PackageFunction looks up a flattened package-member routine.
func (c *Context) PackageFunction(pkg, fn string) (*catalog.Routine, bool) {
	r, ok := c.snapshot.PackageFunctions[c.Schema+"."+normalize(pkg)+"."+normalize(fn)]
	if ok {
		return r, true
	}
	// Fall back to an unqualified lookup in case the package was
	// extracted under a different owning schema than the statement's
	// current schema (cross-schema package calls).
	for key, routine := range c.snapshot.PackageFunctions {
		if hasSuffix(key, "."+normalize(pkg)+"."+normalize(fn)) {
			return routine, true
		}
	}
	return nil, false
}

// ResolveSynonym follows a (owner, name) synonym to its target, if any.
func (c *Context) ResolveSynonym(owner, name string) (catalog.QualifiedName, bool) {
	q, ok := c.snapshot.Synonyms[normalize(owner)+"."+normalize(name)]
	return q, ok
}

// Composite looks up a composite type by qualified name.
func (c *Context) Composite(q catalog.QualifiedName) (*catalog.CompositeType, bool) {
	t, ok := c.snapshot.Composites[tableKey(q)]
	return t, ok
}

func tableKey(q catalog.QualifiedName) string {
	return normalize(q.Schema) + "." + normalize(q.Name)
}

func normalize(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
