package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/cartera-engine/internal/domain"
)

const loanColumns = `
		l.id, l.borrower_id, l.lead_id, l.requested_amount, l.amount_gived,
		l.profit_amount, l.total_debt_acquired, l.expected_weekly_payment,
		l.pending_amount_stored, lt.week_duration, lt.rate, l.sign_date,
		l.finished_date, l.renewed_date, l.bad_debt_date, l.excluded_by_cleanup,
		l.previous_loan_id, l.status
`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) GetByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `
		SELECT` + loanColumns + `
		FROM loans l
		LEFT JOIN loan_types lt ON lt.id = l.loan_type_id
		WHERE l.id = $1
	`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, loanID)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) ListOpenDuring(ctx context.Context, start, end time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT` + loanColumns + `
		FROM loans l
		LEFT JOIN loan_types lt ON lt.id = l.loan_type_id
		WHERE l.sign_date <= $2
		  AND l.status <> 'CANCELLED'
		  AND (l.finished_date IS NULL OR l.finished_date >= $1)
		  AND (l.renewed_date IS NULL OR l.renewed_date >= $1)
		  AND (l.bad_debt_date IS NULL OR l.bad_debt_date >= $1)
		ORDER BY l.sign_date, l.id
	`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query, start, end)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListForPeriod(ctx context.Context, start, end time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT` + loanColumns + `
		FROM loans l
		LEFT JOIN loan_types lt ON lt.id = l.loan_type_id
		WHERE l.status <> 'CANCELLED'
		  AND (l.sign_date BETWEEN $1 AND $2
		    OR l.finished_date BETWEEN $1 AND $2
		    OR l.renewed_date BETWEEN $1 AND $2)
		ORDER BY l.sign_date, l.id
	`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query, start, end)
	if err != nil {
		return nil, err
	}

	return loans, nil
}
