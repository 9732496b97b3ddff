package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
)

type nopResolver struct{}

func (nopResolver) Composite(q catalog.QualifiedName) (*catalog.CompositeType, bool) { return nil, false }

func TestQuoteIdentLowercasesPlainNames(t *testing.T) {
	assert.Equal(t, "employees", QuoteIdent("EMPLOYEES"))
}

func TestQuoteIdentQuotesReservedWords(t *testing.T) {
	assert.Equal(t, `"order"`, QuoteIdent("ORDER"))
}

func TestSchemaEmitsCreateSchemaIfNotExists(t *testing.T) {
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS hr;`, Schema("HR"))
}

func TestTableEmitsColumnsInOrderWithoutConstraints(t *testing.T) {
	tbl := &catalog.Table{
		Name: catalog.QualifiedName{Schema: "HR", Name: "EMPLOYEES"},
		Columns: []catalog.Column{
			{Name: "ID", Type: catalog.BuiltIn("NUMBER", nil, intp(10), intp(0)), Nullable: false},
			{Name: "NAME", Type: catalog.BuiltIn("VARCHAR2", intp(100), nil, nil), Nullable: true},
		},
	}

	stmt, err := Table(tbl, nopResolver{})
	require.NoError(t, err)
	assert.Contains(t, stmt, `CREATE TABLE hr.employees`)
	assert.Contains(t, stmt, `id numeric(10) NOT NULL`)
	assert.Contains(t, stmt, `name varchar(100)`)
	assert.NotContains(t, stmt, "PRIMARY KEY")
}

func TestViewStubSelectsTypedNullsAndFiltersFalse(t *testing.T) {
	v := &catalog.View{
		Name: catalog.QualifiedName{Schema: "HR", Name: "EMP_V"},
		Columns: []catalog.Column{
			{Name: "ID", Type: catalog.BuiltIn("NUMBER", nil, nil, nil)},
		},
	}
	stmt, err := ViewStub(v, nopResolver{})
	require.NoError(t, err)
	assert.Contains(t, stmt, "CREATE VIEW")
	assert.Contains(t, stmt, "WHERE false")
	assert.Contains(t, stmt, "NULL::numeric AS")
}

func TestFunctionStubProcedureHasEmptyBody(t *testing.T) {
	r := &catalog.Routine{
		Name: catalog.QualifiedName{Schema: "HR", Name: "DO_THING"},
		Kind: catalog.RoutineProcedure,
	}
	stmt, err := FunctionStub(r, nopResolver{})
	require.NoError(t, err)
	assert.Contains(t, stmt, "CREATE PROCEDURE")
	assert.Contains(t, stmt, "migrated stub for HR.DO_THING")
}

func TestFunctionStubFunctionReturnsNull(t *testing.T) {
	retType := catalog.BuiltIn("NUMBER", nil, nil, nil)
	r := &catalog.Routine{
		Name:       catalog.QualifiedName{Schema: "HR", Name: "CALC"},
		Kind:       catalog.RoutineFunction,
		ReturnType: &retType,
	}
	stmt, err := FunctionStub(r, nopResolver{})
	require.NoError(t, err)
	assert.Contains(t, stmt, "RETURNS numeric")
	assert.Contains(t, stmt, "RETURN NULL;")
}

func TestCompositesAreOrderedByDependency(t *testing.T) {
	addr := &catalog.CompositeType{Name: catalog.QualifiedName{Schema: "HR", Name: "ADDRESS_T"}}
	person := &catalog.CompositeType{
		Name: catalog.QualifiedName{Schema: "HR", Name: "PERSON_T"},
		Attributes: []catalog.Attribute{
			{Name: "HOME", Type: catalog.UserDefined(addr.Name)},
		},
	}

	resolver := fakeResolver{known: map[string]*catalog.CompositeType{
		addr.Name.String():   addr,
		person.Name.String(): person,
	}}

	stmts, err := Composites([]*catalog.CompositeType{person, addr}, resolver)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "address_t", "address must be created before person")
}

type fakeResolver struct {
	known map[string]*catalog.CompositeType
}

func (f fakeResolver) Composite(q catalog.QualifiedName) (*catalog.CompositeType, bool) {
	c, ok := f.known[q.String()]
	return c, ok
}

func intp(i int) *int { return &i }
