package transfer

import (
	"bytes"
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
)

type nopResolver struct{}

func (nopResolver) Composite(q catalog.QualifiedName) (*catalog.CompositeType, bool) { return nil, false }

func TestProducerStreamEncodesRowsAndNulls(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"ID", "NAME"}).
		AddRow("1", "Alice").
		AddRow("2", nil)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	cols := []catalog.Column{
		{Name: "ID", Type: catalog.BuiltIn("NUMBER", nil, nil, nil)},
		{Name: "NAME", Type: catalog.BuiltIn("VARCHAR2", nil, nil, nil)},
	}

	p := NewProducer(db, nopResolver{})
	var buf bytes.Buffer
	n, err := p.Stream(context.Background(), "SELECT id, name FROM hr.employees", cols, &buf)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	require.Equal(t, "1\tAlice\n2\t\\N\n", buf.String())
	require.NoError(t, mock.ExpectationsWereMet())
}
