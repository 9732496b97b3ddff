package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

const testKind migstep.Kind = "test.fixture.step"

type fixtureStep struct {
	result migstep.Result
}

func (f *fixtureStep) Kind() migstep.Kind { return testKind }

func (f *fixtureStep) Footprint() migstep.Footprint {
	return migstep.Footprint{Reads: []catalog.EntityKind{catalog.KindTable}}
}

func (f *fixtureStep) Run(ctx context.Context, progress migstep.Progress) migstep.Result {
	progress(1, 1, "done")
	return f.result
}

func init() {
	migstep.Register(testKind, func(deps migstep.Deps) migstep.Step {
		return &fixtureStep{result: migstep.Result{
			Counts:    map[string]int{"rows": 5},
			Durations: map[string]time.Duration{"total": 2 * time.Second},
		}}
	})
}

func TestToolNameForKind(t *testing.T) {
	assert.Equal(t, "migrate_oracle_table_extract", toolNameForKind(migstep.Kind("oracle.table.extract")))
}

func TestHandleMigrateStepSuccess(t *testing.T) {
	s := newTestServer()
	res, err := s.handleMigrateStep(context.Background(), testKind)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"rows": 5`)
	assert.Contains(t, text.Text, `"total": "2s"`)
}

func TestHandleMigrateStepUnrecognisedKind(t *testing.T) {
	s := newTestServer()
	res, err := s.handleMigrateStep(context.Background(), migstep.Kind("no.such.kind"))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleMigrateStepPropagatesStepError(t *testing.T) {
	const errKind migstep.Kind = "test.fixture.step.error"
	migstep.Register(errKind, func(deps migstep.Deps) migstep.Step {
		return &fixtureStep{result: migstep.Result{
			Err: migerr.New(migerr.Data, "app.customers", "row count mismatch"),
		}}
	})

	s := newTestServer()
	res, err := s.handleMigrateStep(context.Background(), errKind)
	require.NoError(t, err)
	require.False(t, res.IsError)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"category": "data"`)
	assert.Contains(t, text.Text, `"object": "app.customers"`)
}
