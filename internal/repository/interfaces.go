package repository

import (
	"context"
	"time"

	"github.com/segyhp/cartera-engine/internal/domain"
)

// LoanRepository reads loans from the servicing database
type LoanRepository interface {
	// GetByID retrieves a loan with its loan type terms
	GetByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListOpenDuring returns loans signed by end that had not finished,
	// been renewed or written off before start
	ListOpenDuring(ctx context.Context, start, end time.Time) ([]*domain.Loan, error)

	// ListForPeriod returns loans signed, finished or renewed within [start, end]
	ListForPeriod(ctx context.Context, start, end time.Time) ([]*domain.Loan, error)
}

// PaymentRepository reads payments from the servicing database
type PaymentRepository interface {
	// GetByLoanID retrieves all payments for a loan, oldest first
	GetByLoanID(ctx context.Context, loanID string) ([]*domain.Payment, error)

	// ListByLoanIDs retrieves payments of the given loans dated within [from, to]
	ListByLoanIDs(ctx context.Context, loanIDs []string, from, to time.Time) ([]*domain.Payment, error)
}
