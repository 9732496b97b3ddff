package dialect

import (
	"fmt"
	"strings"
)

// Oracle implements Dialect against Oracle's ALL_* data dictionary views,
// queried with bind-parameter placeholders (:1, :2, ...) as godror expects.
type Oracle struct{}

func (Oracle) QuoteIdentifier(name string) string {
	return fmt.Sprintf(`"%s"`, strings.ToUpper(name))
}

func (Oracle) NormalizeIdentifier(name string) string {
	return strings.ToUpper(name)
}

func (Oracle) SystemSchemas() []string {
	return []string{"SYS", "SYSTEM", "OUTLN", "XDB", "WMSYS", "CTXSYS", "MDSYS", "OLAPSYS", "ORDSYS", "APPQOSSYS"}
}

func (Oracle) TableMetadata() TableMetadataSQL {
	return TableMetadataSQL{
		ListTables: `
			SELECT owner, table_name
			FROM all_tables
			WHERE owner NOT IN ('SYS', 'SYSTEM', 'OUTLN', 'XDB', 'WMSYS', 'CTXSYS', 'MDSYS', 'OLAPSYS', 'ORDSYS', 'APPQOSSYS')
			ORDER BY owner, table_name`,

		ListColumns: `
			SELECT
				column_name,
				data_type,
				nullable,
				data_default,
				data_precision,
				data_scale,
				data_length,
				column_id
			FROM all_tab_columns
			WHERE owner = :1 AND table_name = :2
			ORDER BY column_id`,

		RowCountOf: `SELECT COUNT(*) FROM %s`,

		ListPrimaryKeys: `
			SELECT acc.column_name, acc.position
			FROM all_constraints ac
			JOIN all_cons_columns acc
				ON ac.constraint_name = acc.constraint_name AND ac.owner = acc.owner
			WHERE ac.constraint_type = 'P' AND ac.owner = :1 AND ac.table_name = :2
			ORDER BY acc.position`,
	}
}

func (Oracle) ViewMetadata() ViewMetadataSQL {
	return ViewMetadataSQL{
		ListViews: `
			SELECT owner, view_name
			FROM all_views
			WHERE owner NOT IN ('SYS', 'SYSTEM', 'OUTLN', 'XDB', 'WMSYS', 'CTXSYS', 'MDSYS', 'OLAPSYS')
			ORDER BY owner, view_name`,

		ListColumns: `
			SELECT column_name, data_type, nullable, column_id
			FROM all_tab_columns
			WHERE owner = :1 AND table_name = :2
			ORDER BY column_id`,

		GetDefinition: `SELECT text FROM all_views WHERE owner = :1 AND view_name = :2`,
	}
}

func (Oracle) RoutineMetadata() RoutineMetadataSQL {
	return RoutineMetadataSQL{
		ListRoutines: `
			SELECT owner, object_name, procedure_name, object_type
			FROM all_procedures
			WHERE owner NOT IN ('SYS', 'SYSTEM')
				AND object_type IN ('PROCEDURE', 'FUNCTION', 'PACKAGE')
			ORDER BY owner, object_name, procedure_name`,

		ListParameters: `
			SELECT argument_name, position, in_out, data_type, data_precision, data_scale
			FROM all_arguments
			WHERE owner = :1 AND object_name = :2
				AND (package_name = :3 OR (:3 IS NULL AND package_name IS NULL))
			ORDER BY position`,

		GetSource: `
			SELECT text
			FROM all_source
			WHERE owner = :1 AND name = :2 AND type = :3
			ORDER BY line`,
	}
}

// TypeMetadata has no analogue in the teacher's dialects: it was built
// directly from Oracle's object-type data dictionary since the teacher
// never migrated user-defined object types anywhere.
func (Oracle) TypeMetadata() TypeMetadataSQL {
	return TypeMetadataSQL{
		ListTypes: `
			SELECT owner, type_name
			FROM all_types
			WHERE typecode = 'OBJECT'
				AND owner NOT IN ('SYS', 'SYSTEM', 'PUBLIC')
			ORDER BY owner, type_name`,

		ListAttributes: `
			SELECT attr_name, attr_type_owner, attr_type_name, length, precision, scale, attr_no
			FROM all_type_attrs
			WHERE owner = :1 AND type_name = :2
			ORDER BY attr_no`,

		ListMethods: `
			SELECT method_name, method_type, parameters, results
			FROM all_type_methods m
			WHERE m.owner = :1 AND m.type_name = :2
			ORDER BY m.method_no`,
	}
}

func (Oracle) SequenceMetadata() SequenceMetadataSQL {
	return SequenceMetadataSQL{
		ListSequences: `
			SELECT
				sequence_owner,
				sequence_name,
				min_value,
				max_value,
				increment_by,
				cache_size,
				cycle_flag,
				last_number
			FROM all_sequences
			WHERE sequence_owner NOT IN ('SYS', 'SYSTEM')
			ORDER BY sequence_owner, sequence_name`,
	}
}

func (Oracle) SynonymMetadata() SynonymMetadataSQL {
	return SynonymMetadataSQL{
		ListSynonyms: `
			SELECT owner, synonym_name, table_owner, table_name
			FROM all_synonyms
			WHERE owner NOT IN ('SYS', 'SYSTEM')
			ORDER BY owner, synonym_name`,
	}
}

func (Oracle) ConstraintMetadata() ConstraintMetadataSQL {
	return ConstraintMetadataSQL{
		ListConstraints: `
			SELECT
				ac.owner,
				ac.table_name,
				ac.constraint_name,
				ac.constraint_type,
				ac.search_condition,
				ac.r_owner,
				ac.r_constraint_name,
				acc.column_name,
				acc.position
			FROM all_constraints ac
			JOIN all_cons_columns acc
				ON ac.constraint_name = acc.constraint_name AND ac.owner = acc.owner
			WHERE ac.owner NOT IN ('SYS', 'SYSTEM')
				AND ac.constraint_type IN ('P', 'U', 'R', 'C')
			ORDER BY ac.owner, ac.table_name, ac.constraint_name, acc.position`,

		ExistingConstraintNames: `
			SELECT constraint_name
			FROM all_constraints
			WHERE owner = :1 AND table_name = :2`,
	}
}
