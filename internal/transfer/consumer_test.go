package transfer

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestConsumerLoadTruncatesCopiesAndVerifiesCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`TRUNCATE TABLE "hr"."employees"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(`COPY`)
	mock.ExpectExec(`COPY`).WithArgs("1", "Alice").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`COPY`).WithArgs("2", nil).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`COPY`).WillReturnResult(sqlmock.NewResult(0, 0)) // final flush, no args
	mock.ExpectCommit()

	c := NewConsumer(db)
	input := strings.NewReader("1\tAlice\n2\t\\N\n")

	n, err := c.Load(context.Background(), "hr", "employees", []string{"id", "name"}, input, 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumerLoadErrorsOnRowCountMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`TRUNCATE TABLE "hr"."employees"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(`COPY`)
	mock.ExpectExec(`COPY`).WithArgs("1", "Alice").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`COPY`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	c := NewConsumer(db)
	input := strings.NewReader("1\tAlice\n")

	_, err = c.Load(context.Background(), "hr", "employees", []string{"id", "name"}, input, 5)
	require.Error(t, err)
}
