// Package portfolio classifies loans into Cartera Vencida (CV) for a business
// week and aggregates portfolio KPIs over a period. Nothing here is persisted:
// every status is recomputed from the loan and its payments on each call.
package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/cartera-engine/internal/calendar"
)

// Loan statuses the portfolio rules look at.
const (
	StatusActive    = "ACTIVE"
	StatusFinished  = "FINISHED"
	StatusRenovated = "RENOVATED"
)

// Loan is the projection of a loan the portfolio rules need.
type Loan struct {
	ID                  string          `json:"id"`
	PendingAmountStored decimal.Decimal `json:"pendingAmountStored"`
	SignDate            time.Time       `json:"signDate"`
	FinishedDate        *time.Time      `json:"finishedDate,omitempty"`
	RenewedDate         *time.Time      `json:"renewedDate,omitempty"`
	BadDebtDate         *time.Time      `json:"badDebtDate,omitempty"`
	ExcludedByCleanup   *string         `json:"excludedByCleanup,omitempty"`
	PreviousLoan        *string         `json:"previousLoan,omitempty"`
	Status              string          `json:"status,omitempty"`
}

// Payment is a received payment.
type Payment struct {
	ID         string          `json:"id"`
	ReceivedAt time.Time       `json:"receivedAt"`
	Amount     decimal.Decimal `json:"amount"`
}

// CVStatus is the weekly classification of a loan.
type CVStatus string

const (
	StatusAlCorriente CVStatus = "AL_CORRIENTE"
	StatusEnCV        CVStatus = "EN_CV"
	StatusExcluido    CVStatus = "EXCLUIDO"
)

// ExclusionReason explains an EXCLUIDO status.
type ExclusionReason string

const (
	ExclusionBadDebt   ExclusionReason = "BAD_DEBT"
	ExclusionCleanup   ExclusionReason = "CLEANUP"
	ExclusionNotActive ExclusionReason = "NOT_ACTIVE"
)

// CVResult is the classification of one loan for one week.
type CVResult struct {
	LoanID           string          `json:"loanId"`
	Status           CVStatus        `json:"status"`
	ExclusionReason  ExclusionReason `json:"exclusionReason,omitempty"`
	PaymentsInWeek   int             `json:"paymentsInWeek"`
	ExitedCVThisWeek bool            `json:"exitedCVThisWeek"`
}

// IsActiveLoan reports whether the loan still owes money and has not been
// written off or cleaned up.
func IsActiveLoan(loan Loan) bool {
	return loan.PendingAmountStored.IsPositive() &&
		loan.BadDebtDate == nil &&
		loan.ExcludedByCleanup == nil
}

// CountPaymentsInWeek counts payments received inside week.
func CountPaymentsInWeek(payments []Payment, week calendar.WeekRange) int {
	count := 0
	for _, p := range payments {
		if calendar.IsDateInWeek(p.ReceivedAt, week) {
			count++
		}
	}
	return count
}

// IsInCarteraVencida reports whether an active loan received no payment in
// activeWeek. Loans signed during activeWeek are in their grace week.
func IsInCarteraVencida(loan Loan, payments []Payment, activeWeek calendar.WeekRange) bool {
	if !IsActiveLoan(loan) {
		return false
	}
	if calendar.IsDateInWeek(loan.SignDate, activeWeek) {
		return false
	}
	return CountPaymentsInWeek(payments, activeWeek) == 0
}

// ExitedCarteraVencida reports whether a loan that paid nothing in
// previousWeek caught up in currentWeek. A single payment is not enough; it
// takes at least two.
func ExitedCarteraVencida(payments []Payment, previousWeek, currentWeek calendar.WeekRange) bool {
	if CountPaymentsInWeek(payments, previousWeek) > 0 {
		return false
	}
	return CountPaymentsInWeek(payments, currentWeek) >= 2
}

// CalculateCVStatus classifies loan for activeWeek. Exclusions are checked in
// order bad debt, cleanup, no pending balance. previousWeek is optional;
// without it ExitedCVThisWeek stays false.
func CalculateCVStatus(loan Loan, payments []Payment, activeWeek calendar.WeekRange, previousWeek *calendar.WeekRange) CVResult {
	result := CVResult{
		LoanID:         loan.ID,
		PaymentsInWeek: CountPaymentsInWeek(payments, activeWeek),
	}

	switch {
	case loan.BadDebtDate != nil:
		result.Status, result.ExclusionReason = StatusExcluido, ExclusionBadDebt
		return result
	case loan.ExcludedByCleanup != nil:
		result.Status, result.ExclusionReason = StatusExcluido, ExclusionCleanup
		return result
	case !loan.PendingAmountStored.IsPositive():
		result.Status, result.ExclusionReason = StatusExcluido, ExclusionNotActive
		return result
	}

	if IsInCarteraVencida(loan, payments, activeWeek) {
		result.Status = StatusEnCV
		return result
	}

	result.Status = StatusAlCorriente
	if previousWeek != nil {
		result.ExitedCVThisWeek = ExitedCarteraVencida(payments, *previousWeek, activeWeek)
	}
	return result
}
