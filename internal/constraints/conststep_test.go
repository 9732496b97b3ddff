package constraints

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
)

func TestInstallStepAppliesAndCommits(t *testing.T) {
	cat := catalog.New()
	cat.ReplaceTables([]*catalog.Table{
		{
			Name: qn("hr", "orders"),
			Constraints: []catalog.Constraint{
				{Kind: catalog.ConstraintUnique, Name: "orders_number_uk", Columns: []string{"order_number"}},
			},
		},
	})

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("constraint_name").
		WithArgs("hr", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name"}))
	mock.ExpectExec(`ALTER TABLE hr.orders ADD CONSTRAINT orders_number_uk UNIQUE`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	step := &installStep{cat: cat, db: db}
	result := step.Run(context.Background(), func(int, int, string) {})

	require.Nil(t, result.Err)
	assert.Equal(t, 1, result.Counts["applied"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstallStepRollsBackOnFailure(t *testing.T) {
	cat := catalog.New()
	cat.ReplaceTables([]*catalog.Table{
		{
			Name: qn("hr", "orders"),
			Constraints: []catalog.Constraint{
				{Kind: catalog.ConstraintCheck, Name: "orders_amount_chk", Expression: "amount > 0"},
			},
		},
	})

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("constraint_name").
		WithArgs("hr", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name"}))
	mock.ExpectExec(`ALTER TABLE hr.orders ADD CONSTRAINT orders_amount_chk CHECK`).
		WillReturnError(errBoom{})
	mock.ExpectRollback()

	step := &installStep{cat: cat, db: db}
	result := step.Run(context.Background(), func(int, int, string) {})

	require.NotNil(t, result.Err)
	assert.Equal(t, "metadata", string(result.Err.Category))
	require.NoError(t, mock.ExpectationsWereMet())
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
