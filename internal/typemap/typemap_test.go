package typemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
)

func intp(i int) *int { return &i }

func TestMapNumberVariants(t *testing.T) {
	cases := []struct {
		name      string
		precision *int
		scale     *int
		want      string
	}{
		{"bare NUMBER", nil, nil, "numeric"},
		{"NUMBER(19,0)", intp(19), intp(0), "numeric(19)"},
		{"NUMBER(20,0)", intp(20), intp(0), "numeric"},
		{"NUMBER(10,2)", intp(10), intp(2), "numeric(10,2)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := MapType(catalog.BuiltIn("NUMBER", nil, c.precision, c.scale), ContextTable, nil)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestMapXMLTypeContextDependent(t *testing.T) {
	tableResult, err := MapType(catalog.BuiltIn("XMLTYPE", nil, nil, nil), ContextTable, nil)
	require.NoError(t, err)
	assert.Equal(t, "jsonb", tableResult)

	viewResult, err := MapType(catalog.BuiltIn("XMLTYPE", nil, nil, nil), ContextView, nil)
	require.NoError(t, err)
	assert.Equal(t, "xml", viewResult)
}

func TestMapComplexSystemXMLTypeException(t *testing.T) {
	ref := catalog.QualifiedName{Schema: "SYS", Name: "XMLTYPE"}
	viewResult, err := MapType(catalog.ComplexSystem(ref), ContextView, nil)
	require.NoError(t, err)
	assert.Equal(t, "xml", viewResult)

	tableResult, err := MapType(catalog.ComplexSystem(ref), ContextTable, nil)
	require.NoError(t, err)
	assert.Equal(t, "jsonb", tableResult)

	anydata := catalog.QualifiedName{Schema: "SYS", Name: "ANYDATA"}
	result, err := MapType(catalog.ComplexSystem(anydata), ContextView, nil)
	require.NoError(t, err)
	assert.Equal(t, "jsonb", result)
}

type fakeResolver struct {
	known map[string]bool
}

func (f fakeResolver) Composite(q catalog.QualifiedName) (*catalog.CompositeType, bool) {
	if f.known[q.String()] {
		return &catalog.CompositeType{Name: q}, true
	}
	return nil, false
}

func TestMapUserDefinedUnknownComposite(t *testing.T) {
	ref := catalog.QualifiedName{Schema: "HR", Name: "ADDRESS_T"}
	_, err := MapType(catalog.UserDefined(ref), ContextTable, fakeResolver{known: map[string]bool{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, migerr.ErrUnknownCompositeType)
}

func TestMapUserDefinedKnownComposite(t *testing.T) {
	ref := catalog.QualifiedName{Schema: "HR", Name: "ADDRESS_T"}
	got, err := MapType(catalog.UserDefined(ref), ContextTable, fakeResolver{known: map[string]bool{ref.String(): true}})
	require.NoError(t, err)
	assert.Equal(t, "hr.address_t", got)
}

func TestMapUnsupportedBuiltIn(t *testing.T) {
	_, err := MapType(catalog.BuiltIn("BFILE", nil, nil, nil), ContextTable, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, migerr.ErrUnsupportedOracleType)
}

func TestMapTypeIsDeterministic(t *testing.T) {
	ref := catalog.BuiltIn("VARCHAR2", intp(255), nil, nil)
	a, err := MapType(ref, ContextTable, nil)
	require.NoError(t, err)
	b, err := MapType(ref, ContextTable, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "varchar(255)", a)
}
