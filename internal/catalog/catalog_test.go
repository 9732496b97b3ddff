package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualifiedNameEqualityIsCaseInsensitive(t *testing.T) {
	a := QualifiedName{Schema: "HR", Name: "EMPLOYEES"}
	b := QualifiedName{Schema: "hr", Name: "employees"}
	assert.True(t, a.Equal(b))

	c := QualifiedName{Schema: "HR", Name: "DEPARTMENTS"}
	assert.False(t, a.Equal(c))
}

func TestReplaceTablesIsAtomicAcrossRestarts(t *testing.T) {
	cat := New()

	first := []*Table{{Name: QualifiedName{Schema: "HR", Name: "EMPLOYEES"}}}
	cat.ReplaceTables(first)
	_, ok := cat.Table(QualifiedName{Schema: "hr", Name: "employees"})
	require.True(t, ok)

	// A restarted extraction replaces the previous population wholesale.
	second := []*Table{{Name: QualifiedName{Schema: "HR", Name: "DEPARTMENTS"}}}
	cat.ReplaceTables(second)

	_, ok = cat.Table(QualifiedName{Schema: "hr", Name: "employees"})
	assert.False(t, ok, "stale entry from the previous population must not survive")

	_, ok = cat.Table(QualifiedName{Schema: "hr", Name: "departments"})
	assert.True(t, ok)
}

func TestResetClearsEveryMap(t *testing.T) {
	cat := New()
	cat.AddSchema("HR")
	cat.ReplaceTables([]*Table{{Name: QualifiedName{Schema: "HR", Name: "EMPLOYEES"}}})
	cat.ReplaceComposites([]*CompositeType{{Name: QualifiedName{Schema: "HR", Name: "ADDRESS_T"}}})
	cat.SetRowCount(QualifiedName{Schema: "HR", Name: "EMPLOYEES"}, 42)

	cat.Reset()

	assert.Empty(t, cat.Schemas())
	assert.Empty(t, cat.Tables())
	assert.Empty(t, cat.Composites())
	_, ok := cat.RowCount(QualifiedName{Schema: "HR", Name: "EMPLOYEES"})
	assert.False(t, ok)
}

func TestCompositeTypeDependsOnOnlyUserDefinedAttributes(t *testing.T) {
	addr := &CompositeType{Name: QualifiedName{Schema: "HR", Name: "ADDRESS_T"}}
	person := &CompositeType{
		Name: QualifiedName{Schema: "HR", Name: "PERSON_T"},
		Attributes: []Attribute{
			{Name: "NAME", Type: BuiltIn("VARCHAR2", nil, nil, nil)},
			{Name: "HOME_ADDRESS", Type: UserDefined(addr.Name)},
		},
	}

	deps := person.DependsOn()
	require.Len(t, deps, 1)
	assert.True(t, deps[0].Equal(addr.Name))
}

func TestRoutineFlattenedNameUsesDoubleUnderscore(t *testing.T) {
	r := &Routine{
		Name:          QualifiedName{Schema: "HR", Name: "PKG_EMP.GET_SALARY"},
		PackageMember: true,
	}
	assert.Equal(t, "PKG_EMP__GET_SALARY", r.FlattenedName())

	standalone := &Routine{Name: QualifiedName{Schema: "HR", Name: "GET_SALARY"}}
	assert.Equal(t, "GET_SALARY", standalone.FlattenedName())
}

func TestTypeMethodFlattenedName(t *testing.T) {
	m := &TypeMethod{
		OwnerType:  QualifiedName{Schema: "HR", Name: "PERSON_T"},
		MethodName: "FULL_NAME",
	}
	assert.Equal(t, "PERSON_T__FULL_NAME", m.FlattenedName())
}
