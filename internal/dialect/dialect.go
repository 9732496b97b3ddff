// Package dialect supplies the system-catalog query text the Extractors
// (internal/extract) and the Constraint Installer (internal/constraints)
// need, one implementation per source/target database. Only Oracle and
// PostgreSQL exist: this system migrates in exactly one direction
// (spec.md §1), so a generic multi-driver Dialect is not needed here.
package dialect

// Dialect is the metadata-query surface extraction and constraint
// installation need. Trimmed from a much larger browser-style interface
// down to exactly what C5/C9 use.
type Dialect interface {
	// QuoteIdentifier quotes a single identifier for use in generated SQL.
	QuoteIdentifier(name string) string

	// NormalizeIdentifier puts a bare identifier into this dialect's
	// canonical case for catalog lookups (Oracle: upper, Postgres: lower).
	NormalizeIdentifier(name string) string

	// SystemSchemas lists schema names excluded from migration by default.
	SystemSchemas() []string

	TableMetadata() TableMetadataSQL
	ViewMetadata() ViewMetadataSQL
	RoutineMetadata() RoutineMetadataSQL
	TypeMetadata() TypeMetadataSQL
	SequenceMetadata() SequenceMetadataSQL
	SynonymMetadata() SynonymMetadataSQL
	ConstraintMetadata() ConstraintMetadataSQL
}

// TableMetadataSQL holds the queries used to extract tables, their
// columns and row counts.
type TableMetadataSQL struct {
	ListTables    string
	ListColumns   string
	RowCountOf    string // %s gets replaced with the quoted qualified table name
	ListPrimaryKeys string
}

// ViewMetadataSQL holds the queries used to extract views.
type ViewMetadataSQL struct {
	ListViews     string
	ListColumns   string
	GetDefinition string
}

// RoutineMetadataSQL holds the queries used to extract standalone and
// package-member procedures and functions (catalog.Routine unifies both
// kinds, so one query set covers both).
type RoutineMetadataSQL struct {
	ListRoutines   string
	ListParameters string
	GetSource      string
}

// TypeMetadataSQL holds the queries used to extract Oracle object types
// (composite types) along with their attributes and member methods. The
// teacher never needed this — its browser only ever looked at relational
// tables and views — so this shape has no teacher precedent and is built
// directly from Oracle's ALL_TYPES/ALL_TYPE_ATTRS/ALL_TYPE_METHODS family.
type TypeMetadataSQL struct {
	ListTypes      string
	ListAttributes string
	ListMethods    string
}

// SequenceMetadataSQL holds the queries used to extract sequences.
type SequenceMetadataSQL struct {
	ListSequences string
}

// SynonymMetadataSQL holds the queries used to extract synonyms.
type SynonymMetadataSQL struct {
	ListSynonyms string
}

// ConstraintMetadataSQL holds the queries the Constraint Installer uses
// to detect already-installed constraints and to extract FK targets for
// dependency ordering.
type ConstraintMetadataSQL struct {
	ListConstraints       string
	ExistingConstraintNames string
}
