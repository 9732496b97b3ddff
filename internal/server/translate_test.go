package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

func emptySnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Composites:       map[string]*catalog.CompositeType{},
		ColumnTypes:      map[string]catalog.TypeRef{},
		Methods:          map[string]*catalog.TypeMethod{},
		PackageFunctions: map[string]*catalog.Routine{},
		Synonyms:         map[string]catalog.QualifiedName{},
	}
}

func newTestServer() *Server {
	return New("app", emptySnapshot(), migstep.Deps{}, nil)
}

func TestDoTranslateSuccess(t *testing.T) {
	s := newTestServer()
	out := s.doTranslate("SELECT id FROM customers c", "app")
	assert.True(t, out.Success)
	assert.Equal(t, "SELECT id FROM app.customers c", out.PostgresSQL)
	assert.Empty(t, out.ErrorMessage)
}

func TestDoTranslateSchemaOverride(t *testing.T) {
	s := newTestServer()
	out := s.doTranslate("SELECT id FROM customers c", "reporting")
	assert.True(t, out.Success)
	assert.Equal(t, "SELECT id FROM reporting.customers c", out.PostgresSQL)
}

func TestDoTranslateValidationFailureIsBusinessOutcome(t *testing.T) {
	s := newTestServer()
	out := s.doTranslate("   ", "app")
	assert.False(t, out.Success)
	assert.Equal(t, ErrQueryEmpty.Error(), out.ErrorMessage)
	assert.Empty(t, out.PostgresSQL)
}

func TestDoTranslateRejectsUnsupportedConstruct(t *testing.T) {
	s := newTestServer()
	out := s.doTranslate("SELECT LEVEL FROM customers", "app")
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.ErrorMessage)
}

func TestDoTranslateRejectsNonStatementInput(t *testing.T) {
	s := newTestServer()
	out := s.doTranslate("not even sql", "app")
	assert.False(t, out.Success)
	assert.Equal(t, ErrNoStatementKeyword.Error(), out.ErrorMessage)
}

func TestGetArgsAndGetStringArg(t *testing.T) {
	args, ok := getArgs(map[string]interface{}{"oracle_sql": "SELECT 1"})
	assert.True(t, ok)

	val, ok := getStringArg(args, "oracle_sql")
	assert.True(t, ok)
	assert.Equal(t, "SELECT 1", val)

	_, ok = getStringArg(args, "missing")
	assert.False(t, ok)

	_, ok = getArgs("not a map")
	assert.False(t, ok)
}
