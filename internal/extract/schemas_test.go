package extract

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

func TestSchemaStepExcludesSystemSchemas(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"username"}).
		AddRow("HR").
		AddRow("SYS").
		AddRow("SCOTT")
	mock.ExpectQuery("SELECT username FROM all_users").WillReturnRows(rows)

	cat := catalog.New()
	step := &schemaStep{db: db, cat: cat}

	var lastDone, lastTotal int
	result := step.Run(context.Background(), func(done, total int, _ string) {
		lastDone, lastTotal = done, total
	})

	require.Nil(t, result.Err)
	require.NoError(t, mock.ExpectationsWereMet())

	got := cat.Schemas()
	require.ElementsMatch(t, []string{"hr", "scott"}, got)
	require.Equal(t, 2, lastDone)
	require.Equal(t, 2, lastTotal)
}

func TestSchemaStepKindAndFootprint(t *testing.T) {
	step := &schemaStep{}
	require.Equal(t, migstep.Kind("oracle.schema.extract"), step.Kind())
	require.Equal(t, []catalog.EntityKind{catalog.KindSchema}, step.Footprint().Writes)
}
