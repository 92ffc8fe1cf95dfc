package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/segyhp/cartera-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetByLoanID(ctx context.Context, loanID string) ([]*domain.Payment, error) {
	query := `
		SELECT id, loan_id, amount, received_at, created_at, payment_method
		FROM payments
		WHERE loan_id = $1
		ORDER BY COALESCE(received_at, created_at), id
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, loanID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) ListByLoanIDs(ctx context.Context, loanIDs []string, from, to time.Time) ([]*domain.Payment, error) {
	if len(loanIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, loan_id, amount, received_at, created_at, payment_method
		FROM payments
		WHERE loan_id = ANY($1)
		  AND COALESCE(received_at, created_at) BETWEEN $2 AND $3
		ORDER BY loan_id, COALESCE(received_at, created_at), id
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, pq.Array(loanIDs), from, to)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
