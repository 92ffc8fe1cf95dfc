package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive    = "ACTIVE"
	LoanStatusFinished  = "FINISHED"
	LoanStatusRenovated = "RENOVATED"
	LoanStatusCancelled = "CANCELLED"
)

// Loan is a loan row joined with its loan type, as read from the servicing
// database. Terms columns are nullable for legacy loans.
type Loan struct {
	ID                    string           `json:"id" db:"id"`
	BorrowerID            string           `json:"borrower_id" db:"borrower_id"`
	LeadID                *string          `json:"lead_id,omitempty" db:"lead_id"`
	RequestedAmount       decimal.Decimal  `json:"requested_amount" db:"requested_amount"`
	AmountGived           decimal.Decimal  `json:"amount_gived" db:"amount_gived"`
	ProfitAmount          decimal.Decimal  `json:"profit_amount" db:"profit_amount"`
	TotalDebtAcquired     decimal.Decimal  `json:"total_debt_acquired" db:"total_debt_acquired"`
	ExpectedWeeklyPayment *decimal.Decimal `json:"expected_weekly_payment,omitempty" db:"expected_weekly_payment"`
	PendingAmountStored   decimal.Decimal  `json:"pending_amount_stored" db:"pending_amount_stored"`
	WeekDuration          *int             `json:"week_duration,omitempty" db:"week_duration"`
	Rate                  *decimal.Decimal `json:"rate,omitempty" db:"rate"`
	SignDate              time.Time        `json:"sign_date" db:"sign_date"`
	FinishedDate          *time.Time       `json:"finished_date,omitempty" db:"finished_date"`
	RenewedDate           *time.Time       `json:"renewed_date,omitempty" db:"renewed_date"`
	BadDebtDate           *time.Time       `json:"bad_debt_date,omitempty" db:"bad_debt_date"`
	ExcludedByCleanup     *string          `json:"excluded_by_cleanup,omitempty" db:"excluded_by_cleanup"`
	PreviousLoanID        *string          `json:"previous_loan_id,omitempty" db:"previous_loan_id"`
	Status                string           `json:"status" db:"status"`
}

// IsBadDebt reports whether the loan has been written off.
func (l *Loan) IsBadDebt() bool {
	return l.BadDebtDate != nil
}

// TermWeeks returns the loan type duration, 0 when unknown.
func (l *Loan) TermWeeks() int {
	if l.WeekDuration == nil {
		return 0
	}
	return *l.WeekDuration
}
