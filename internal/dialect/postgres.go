package dialect

import "strings"

// Postgres implements Dialect against the target database's
// information_schema/pg_catalog views, used by the Constraint Installer
// (C9) to detect what already exists before issuing DDL.
type Postgres struct{}

func (Postgres) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(strings.ToLower(name), `"`, `""`) + `"`
}

func (Postgres) NormalizeIdentifier(name string) string {
	return strings.ToLower(name)
}

func (Postgres) SystemSchemas() []string {
	return []string{"pg_catalog", "information_schema", "pg_toast"}
}

func (Postgres) TableMetadata() TableMetadataSQL {
	return TableMetadataSQL{
		ListTables: `
			SELECT table_schema, table_name
			FROM information_schema.tables
			WHERE table_type = 'BASE TABLE'
				AND table_schema NOT IN ('pg_catalog', 'information_schema')
			ORDER BY table_schema, table_name`,

		ListColumns: `
			SELECT column_name, data_type, is_nullable, column_default, ordinal_position
			FROM information_schema.columns
			WHERE table_schema = $1 AND table_name = $2
			ORDER BY ordinal_position`,

		RowCountOf: `SELECT COUNT(*) FROM %s`,

		ListPrimaryKeys: `
			SELECT ku.column_name, ku.ordinal_position
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage ku
				ON tc.constraint_name = ku.constraint_name AND tc.table_schema = ku.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = $1 AND tc.table_name = $2
			ORDER BY ku.ordinal_position`,
	}
}

func (Postgres) ViewMetadata() ViewMetadataSQL {
	return ViewMetadataSQL{
		ListViews: `
			SELECT table_schema, table_name
			FROM information_schema.views
			WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
			ORDER BY table_schema, table_name`,

		ListColumns: `
			SELECT column_name, data_type, is_nullable, ordinal_position
			FROM information_schema.columns
			WHERE table_schema = $1 AND table_name = $2
			ORDER BY ordinal_position`,

		GetDefinition: `SELECT view_definition FROM information_schema.views WHERE table_schema = $1 AND table_name = $2`,
	}
}

func (Postgres) RoutineMetadata() RoutineMetadataSQL {
	return RoutineMetadataSQL{
		ListRoutines: `
			SELECT routine_schema, routine_name, routine_type
			FROM information_schema.routines
			WHERE routine_schema NOT IN ('pg_catalog', 'information_schema')
			ORDER BY routine_schema, routine_name`,

		ListParameters: `
			SELECT parameter_name, ordinal_position, parameter_mode, data_type
			FROM information_schema.parameters
			WHERE specific_schema = $1 AND specific_name = $2
			ORDER BY ordinal_position`,

		GetSource: `SELECT pg_get_functiondef(p.oid)
			FROM pg_proc p
			JOIN pg_namespace n ON p.pronamespace = n.oid
			WHERE n.nspname = $1 AND p.proname = $2`,
	}
}

// TypeMetadata is unused on the PostgreSQL side: by the time the target
// database is queried, every composite type has already been flattened
// to a plain `CREATE TYPE ... AS (...)` row type, so there is nothing
// equivalent to an Oracle object type's methods to read back. Present
// only to satisfy the Dialect interface.
func (Postgres) TypeMetadata() TypeMetadataSQL {
	return TypeMetadataSQL{
		ListTypes: `
			SELECT n.nspname, t.typname
			FROM pg_type t
			JOIN pg_namespace n ON t.typnamespace = n.oid
			WHERE t.typtype = 'c' AND n.nspname NOT IN ('pg_catalog', 'information_schema')
			ORDER BY n.nspname, t.typname`,
	}
}

func (Postgres) SequenceMetadata() SequenceMetadataSQL {
	return SequenceMetadataSQL{
		ListSequences: `
			SELECT sequence_schema, sequence_name, start_value, minimum_value, maximum_value, increment, cycle_option
			FROM information_schema.sequences
			WHERE sequence_schema NOT IN ('pg_catalog', 'information_schema')
			ORDER BY sequence_schema, sequence_name`,
	}
}

// SynonymMetadata has no PostgreSQL equivalent: synonyms are resolved
// entirely on the Oracle side before DDL is ever emitted (spec.md §4.2),
// so this is never called against the target database.
func (Postgres) SynonymMetadata() SynonymMetadataSQL {
	return SynonymMetadataSQL{}
}

func (Postgres) ConstraintMetadata() ConstraintMetadataSQL {
	return ConstraintMetadataSQL{
		ListConstraints: `
			SELECT
				tc.table_schema,
				tc.table_name,
				tc.constraint_name,
				tc.constraint_type
			FROM information_schema.table_constraints tc
			WHERE tc.table_schema NOT IN ('pg_catalog', 'information_schema')
			ORDER BY tc.table_schema, tc.table_name, tc.constraint_name`,

		ExistingConstraintNames: `
			SELECT constraint_name
			FROM information_schema.table_constraints
			WHERE table_schema = $1 AND table_name = $2`,
	}
}
