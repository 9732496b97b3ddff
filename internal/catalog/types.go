// Package catalog holds the process-wide, in-memory metadata store that
// every migration step reads from or writes to (spec §3, §4.4).
package catalog

import "strings"

// QualifiedName is a (schema, name) pair. Equality is case-insensitive on
// both components.
type QualifiedName struct {
	Schema string
	Name   string
}

// key returns the case-normalized lookup key for a QualifiedName.
func (q QualifiedName) key() string {
	return strings.ToLower(q.Schema) + "." + strings.ToLower(q.Name)
}

// Equal reports whether two QualifiedNames refer to the same object,
// ignoring case.
func (q QualifiedName) Equal(o QualifiedName) bool {
	return q.key() == o.key()
}

func (q QualifiedName) String() string {
	return q.Schema + "." + q.Name
}

// TypeRefKind tags the variant of a TypeRef.
type TypeRefKind int

const (
	// TypeBuiltIn is an Oracle scalar type (NUMBER, VARCHAR2, DATE, ...).
	TypeBuiltIn TypeRefKind = iota
	// TypeUserDefined is an Oracle object type (a composite/structured type).
	TypeUserDefined
	// TypeComplexSystem is an Oracle dynamic/opaque system type
	// (SYS.ANYDATA, SYS.XMLTYPE, SYS.AQ$_*, possibly under owner PUBLIC).
	TypeComplexSystem
)

// TypeRef is the tagged union over the three Oracle type shapes spec.md §3
// distinguishes.
type TypeRef struct {
	Kind TypeRefKind

	// BuiltIn fields.
	OracleName string
	Length     *int
	Precision  *int
	Scale      *int

	// UserDefined / ComplexSystem fields.
	Ref QualifiedName
}

// BuiltIn constructs a TypeBuiltIn TypeRef.
func BuiltIn(oracleName string, length, precision, scale *int) TypeRef {
	return TypeRef{Kind: TypeBuiltIn, OracleName: oracleName, Length: length, Precision: precision, Scale: scale}
}

// UserDefined constructs a TypeUserDefined TypeRef.
func UserDefined(ref QualifiedName) TypeRef {
	return TypeRef{Kind: TypeUserDefined, Ref: ref}
}

// ComplexSystem constructs a TypeComplexSystem TypeRef. Owner "PUBLIC"
// reflects a PUBLIC synonym over a SYS type (spec.md §3).
func ComplexSystem(ref QualifiedName) TypeRef {
	return TypeRef{Kind: TypeComplexSystem, Ref: ref}
}

// Column is one table or view column.
type Column struct {
	Name         string
	Type         TypeRef
	Nullable     bool
	DefaultExpr  string // empty when absent
	ColumnOrder  int
}

// ConstraintKind tags the variant of a Constraint.
type ConstraintKind int

const (
	ConstraintPrimaryKey ConstraintKind = iota
	ConstraintUnique
	ConstraintForeignKey
	ConstraintCheck
	ConstraintNotNull
)

// Constraint is the tagged union over the five constraint shapes of
// spec.md §3. Each carries its Oracle-assigned name.
type Constraint struct {
	Kind ConstraintKind
	Name string

	// PrimaryKey / Unique / NotNull.
	Columns []string

	// ForeignKey.
	LocalColumns      []string
	Referenced        QualifiedName
	ReferencedColumns []string
	OnDelete          string // "", "CASCADE", "SET NULL"

	// Check.
	Expression string

	// NotNull.
	Column string
}

// Table is an Oracle (or, post-migration, PostgreSQL) table.
type Table struct {
	Name        QualifiedName
	Columns     []Column
	Constraints []Constraint
}

// Attribute is one field of a CompositeType.
type Attribute struct {
	Name string
	Type TypeRef
}

// CompositeType is a user-defined Oracle object type.
//
// Invariant: every TypeUserDefined TypeRef among Attributes must resolve
// to another CompositeType in the same Catalog after synonym resolution
// (spec.md §3).
type CompositeType struct {
	Name       QualifiedName
	Attributes []Attribute
}

// QualifiedName implements depgraph.Node.
func (c *CompositeType) QualifiedName() QualifiedName { return c.Name }

// DependsOn implements depgraph.Node: every UserDefined attribute type is a
// dependency edge.
func (c *CompositeType) DependsOn() []QualifiedName {
	var deps []QualifiedName
	for _, a := range c.Attributes {
		if a.Type.Kind == TypeUserDefined {
			deps = append(deps, a.Type.Ref)
		}
	}
	return deps
}

// Synonym is an Oracle alias for another object. Owner is either a
// concrete schema name or the literal "PUBLIC".
type Synonym struct {
	Owner  string
	Name   string
	Target QualifiedName
}

// Sequence carries all six Oracle sequence attributes (spec.md §4.6).
type Sequence struct {
	Name      QualifiedName
	Start     int64
	Increment int64
	Min       int64
	Max       int64
	Cache     int64
	Cycle     bool
}

// View is an Oracle (or PostgreSQL stub) view.
type View struct {
	Name          QualifiedName
	Columns       []Column
	OracleSQLText string
}

// RoutineKind distinguishes functions from procedures.
type RoutineKind int

const (
	RoutineFunction RoutineKind = iota
	RoutineProcedure
)

// ParameterMode tags a Routine Parameter's direction.
type ParameterMode int

const (
	ParamIn ParameterMode = iota
	ParamOut
	ParamInOut
)

// Parameter is one formal parameter of a Routine or TypeMethod.
type Parameter struct {
	Name string
	Mode ParameterMode
	Type TypeRef
}

// Routine is a standalone or package-member function/procedure.
// Package members are flattened on output: "packagename__routinename".
type Routine struct {
	Name           QualifiedName
	Kind           RoutineKind
	Parameters     []Parameter
	ReturnType     *TypeRef // function only
	PackageMember  bool
	OracleBodyText string
}

// FlattenedName returns the identifier this routine emits as, after
// package-member flattening (spec.md §3).
func (r *Routine) FlattenedName() string {
	if !r.PackageMember {
		return r.Name.Name
	}
	// Oracle package member qualified names are extracted as
	// "PACKAGE.ROUTINE"; the Name field carries that raw form until
	// flattening.
	if idx := lastIndexByte(r.Name.Name, '.'); idx >= 0 {
		return r.Name.Name[:idx] + "__" + r.Name.Name[idx+1:]
	}
	return r.Name.Name
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// TypeMethodKind tags the kind of a TypeMethod.
type TypeMethodKind int

const (
	MethodMember TypeMethodKind = iota
	MethodStatic
	MethodFunction
	MethodProcedure
)

// TypeMethod is a method on a user-defined Oracle object type. Flattened
// identifier on output: "typename__methodname" (spec.md §3).
type TypeMethod struct {
	OwnerType  QualifiedName
	MethodName string
	Kind       TypeMethodKind
	Parameters []Parameter
	ReturnType *TypeRef
}

// FlattenedName returns the schema-level function name this method emits
// as.
func (m *TypeMethod) FlattenedName() string {
	return m.OwnerType.Name + "__" + m.MethodName
}
