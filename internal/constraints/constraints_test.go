package constraints

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
)

func qn(schema, name string) catalog.QualifiedName {
	return catalog.QualifiedName{Schema: schema, Name: name}
}

func TestInstallOrdersPKBeforeFKAndSkipsExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orders := &catalog.Table{
		Name: qn("hr", "orders"),
		Constraints: []catalog.Constraint{
			{Kind: catalog.ConstraintPrimaryKey, Name: "orders_pk", Columns: []string{"id"}},
			{
				Kind:              catalog.ConstraintForeignKey,
				Name:              "orders_customer_fk",
				LocalColumns:      []string{"customer_id"},
				Referenced:        qn("hr", "customers"),
				ReferencedColumns: []string{"id"},
			},
		},
	}
	customers := &catalog.Table{
		Name: qn("hr", "customers"),
		Constraints: []catalog.Constraint{
			{Kind: catalog.ConstraintPrimaryKey, Name: "customers_pk", Columns: []string{"id"}},
		},
	}
	tables := []*catalog.Table{orders, customers}

	mock.ExpectBegin()
	mock.ExpectQuery("constraint_name").
		WithArgs("hr", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name"}))
	mock.ExpectQuery("constraint_name").
		WithArgs("hr", "customers").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name"}).AddRow("customers_pk"))

	mock.ExpectExec(`ALTER TABLE hr\.orders ADD CONSTRAINT orders_pk PRIMARY KEY`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`ALTER TABLE hr\.orders ADD CONSTRAINT orders_customer_fk FOREIGN KEY`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	outcomes := Install(context.Background(), tx, tables)
	require.NoError(t, tx.Commit())

	var pkDone, fkDone, skipped bool
	for _, o := range outcomes {
		require.NoError(t, o.Err)
		switch o.Constraint.Name {
		case "orders_pk":
			pkDone = true
		case "orders_customer_fk":
			fkDone = true
			require.True(t, pkDone, "FK must install after PK")
		case "customers_pk":
			skipped = o.Skipped
		}
	}
	require.True(t, pkDone)
	require.True(t, fkDone)
	require.True(t, skipped, "customers_pk already existed on the target and must be skipped")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstallCheckConstraintUsesExpressionVerbatim(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t1 := &catalog.Table{
		Name: qn("hr", "employees"),
		Constraints: []catalog.Constraint{
			{Kind: catalog.ConstraintCheck, Name: "salary_positive", Expression: "salary > 0"},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("constraint_name").
		WithArgs("hr", "employees").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name"}))

	mock.ExpectExec(`ADD CONSTRAINT salary_positive CHECK \(salary > 0\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	outcomes := Install(context.Background(), tx, []*catalog.Table{t1})
	require.NoError(t, tx.Commit())

	require.Len(t, outcomes, 1)
	require.NoError(t, outcomes[0].Err)
	require.False(t, outcomes[0].Skipped)
	require.NoError(t, mock.ExpectationsWereMet())
}
