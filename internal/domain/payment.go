package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a payment row. Older rows carry no received_at and are dated
// by created_at instead.
type Payment struct {
	ID            string          `json:"id" db:"id"`
	LoanID        string          `json:"loan_id" db:"loan_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	ReceivedAt    *time.Time      `json:"received_at,omitempty" db:"received_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
}

// Date returns the moment the payment counts for.
func (p *Payment) Date() time.Time {
	if p.ReceivedAt != nil && !p.ReceivedAt.IsZero() {
		return *p.ReceivedAt
	}
	return p.CreatedAt
}

// GroupByLoan indexes payments by loan ID, keeping their order.
func GroupByLoan(payments []*Payment) map[string][]*Payment {
	grouped := make(map[string][]*Payment)
	for _, p := range payments {
		grouped[p.LoanID] = append(grouped[p.LoanID], p)
	}
	return grouped
}
