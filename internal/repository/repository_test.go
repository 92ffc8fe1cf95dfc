package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL and loads the schema into a
// throwaway schema. Tests are skipped when no database is configured.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	// search_path is per connection
	db.SetMaxOpenConns(1)

	schema := "cartera_test_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")
	db.MustExec(fmt.Sprintf("CREATE SCHEMA %s", schema))
	db.MustExec(fmt.Sprintf("SET search_path TO %s", schema))

	ddl, err := os.ReadFile("testdata/schema.sql")
	require.NoError(t, err)
	db.MustExec(string(ddl))

	t.Cleanup(func() {
		db.MustExec(fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
		db.Close()
	})
	return db
}

func ts(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 12, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, db *sqlx.DB) {
	t.Helper()

	db.MustExec(`INSERT INTO loan_types (id, week_duration, rate) VALUES ('14w', 14, 0.40)`)

	db.MustExec(`
		INSERT INTO loans (id, borrower_id, loan_type_id, requested_amount, amount_gived, profit_amount,
			total_debt_acquired, expected_weekly_payment, pending_amount_stored, sign_date, status)
		VALUES ('loan-1', 'b-1', '14w', 3000, 3000, 1200, 4200, 300, 1200, $1, 'ACTIVE')`, ts(11, 1))

	db.MustExec(`
		INSERT INTO loans (id, borrower_id, requested_amount, pending_amount_stored, sign_date, finished_date, status)
		VALUES ('legacy', 'b-2', 1000, 0, $1, $2, 'FINISHED')`, ts(6, 1), ts(9, 1))

	db.MustExec(`
		INSERT INTO loans (id, borrower_id, loan_type_id, requested_amount, pending_amount_stored, sign_date,
			renewed_date, previous_loan_id, status)
		VALUES ('loan-2', 'b-1', '14w', 3000, 4200, $1, NULL, 'loan-1', 'ACTIVE')`, ts(11, 20))

	db.MustExec(`INSERT INTO payments (id, loan_id, amount, received_at, created_at) VALUES ('p1', 'loan-1', 300, $1, $1)`, ts(11, 5))
	db.MustExec(`INSERT INTO payments (id, loan_id, amount, received_at, created_at) VALUES ('p2', 'loan-1', 300, NULL, $1)`, ts(11, 12))
	db.MustExec(`INSERT INTO payments (id, loan_id, amount, received_at, created_at) VALUES ('p3', 'loan-2', 324.49, $1, $1)`, ts(11, 26))
}

func TestLoanRepository(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	t.Run("get by id joins the loan type", func(t *testing.T) {
		loan, err := repo.GetByID(ctx, "loan-1")
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(1200).Equal(loan.PendingAmountStored))
		require.NotNil(t, loan.WeekDuration)
		assert.Equal(t, 14, *loan.WeekDuration)
		require.NotNil(t, loan.Rate)
		assert.True(t, decimal.RequireFromString("0.4").Equal(*loan.Rate))
		assert.Nil(t, loan.PreviousLoanID)
	})

	t.Run("legacy loan has no terms", func(t *testing.T) {
		loan, err := repo.GetByID(ctx, "legacy")
		require.NoError(t, err)
		assert.Nil(t, loan.WeekDuration)
		assert.Nil(t, loan.ExpectedWeeklyPayment)
		assert.Equal(t, 0, loan.TermWeeks())
	})

	t.Run("missing loan", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("open during a week", func(t *testing.T) {
		loans, err := repo.ListOpenDuring(ctx, ts(11, 18), ts(11, 24))
		require.NoError(t, err)
		require.Len(t, loans, 2)
		assert.Equal(t, "loan-1", loans[0].ID)
		assert.Equal(t, "loan-2", loans[1].ID)
	})

	t.Run("for period", func(t *testing.T) {
		loans, err := repo.ListForPeriod(ctx, ts(8, 1), ts(9, 30))
		require.NoError(t, err)
		require.Len(t, loans, 1)
		assert.Equal(t, "legacy", loans[0].ID)
	})
}

func TestPaymentRepository(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	payments, err := repo.GetByLoanID(ctx, "loan-1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "p1", payments[0].ID)
	assert.Nil(t, payments[1].ReceivedAt)
	assert.True(t, ts(11, 12).Equal(payments[1].Date()))

	inRange, err := repo.ListByLoanIDs(ctx, []string{"loan-1", "loan-2"}, ts(11, 10), ts(11, 30))
	require.NoError(t, err)
	require.Len(t, inRange, 2)
	assert.Equal(t, "p2", inRange[0].ID)
	assert.Equal(t, "p3", inRange[1].ID)

	none, err := repo.ListByLoanIDs(ctx, nil, ts(11, 10), ts(11, 30))
	require.NoError(t, err)
	assert.Empty(t, none)
}
