package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

func TestNewBuildsServerWithSchema(t *testing.T) {
	s := newTestServer()
	assert.NotNil(t, s.mcp)
	assert.Equal(t, "app", s.schema)
}

func TestCloseIsANoOp(t *testing.T) {
	s := newTestServer()
	assert.NoError(t, s.Close())
}

func TestToolNameForKindReplacesEveryDot(t *testing.T) {
	assert.Equal(t, "migrate_postgres_data_transfer", toolNameForKind(migstep.Kind("postgres.data.transfer")))
}
