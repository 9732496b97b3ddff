package synonym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
)

func qn(schema, name string) catalog.QualifiedName {
	return catalog.QualifiedName{Schema: schema, Name: name}
}

func TestResolveCurrentSchemaWinsOverPublic(t *testing.T) {
	idx := Build([]*catalog.Synonym{
		{Owner: "HR", Name: "EMP", Target: qn("HR", "EMPLOYEES")},
		{Owner: "PUBLIC", Name: "EMP", Target: qn("SCOTT", "EMP")},
	}, nil)

	got, ok := idx.Resolve("HR", "EMP")
	require.True(t, ok)
	assert.True(t, got.Equal(qn("HR", "EMPLOYEES")))
}

func TestResolveFallsBackToPublic(t *testing.T) {
	idx := Build([]*catalog.Synonym{
		{Owner: "PUBLIC", Name: "DUAL_ALIAS", Target: qn("SYS", "DUAL")},
	}, nil)

	got, ok := idx.Resolve("HR", "DUAL_ALIAS")
	require.True(t, ok)
	assert.True(t, got.Equal(qn("SYS", "DUAL")))
}

func TestResolveMissingReturnsFalse(t *testing.T) {
	idx := Build(nil, nil)
	_, ok := idx.Resolve("HR", "NOPE")
	assert.False(t, ok)
}

func TestResolveIsCaseInsensitiveOnName(t *testing.T) {
	idx := Build([]*catalog.Synonym{
		{Owner: "HR", Name: "Emp", Target: qn("HR", "EMPLOYEES")},
	}, nil)

	got, ok := idx.Resolve("hr", "emp")
	require.True(t, ok)
	assert.True(t, got.Equal(qn("HR", "EMPLOYEES")))
}

func TestSynonymChainLogsWarningAndKeepsFirstHop(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core).Sugar()

	idx := Build([]*catalog.Synonym{
		{Owner: "HR", Name: "EMP", Target: qn("HR", "EMPLOYEES")},
		{Owner: "HR", Name: "EMP", Target: qn("SCOTT", "EMP_BAK")},
	}, log)

	got, ok := idx.Resolve("HR", "EMP")
	require.True(t, ok)
	assert.True(t, got.Equal(qn("HR", "EMPLOYEES")), "first hop must win, chains are a data error")

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "synonym chain")
}
