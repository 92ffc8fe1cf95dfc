// Package vdo replays a loan's payment history week by week to find how many
// weeks went unpaid, net of overpayments carried forward, and how much of
// the pending balance is in arrears.
//
// Amounts are float64: the figures drive collection routes, not accounting.
package vdo

import (
	"math"
	"time"

	"github.com/segyhp/cartera-engine/internal/calendar"
	customError "github.com/segyhp/cartera-engine/pkg/errors"
)

// Mode selects the last week included in the simulation.
type Mode string

const (
	// ModeCurrent stops at the last completed week.
	ModeCurrent Mode = "current"
	// ModeNext also includes the week in progress.
	ModeNext Mode = "next"
)

// ParseMode validates a mode name; an empty name means ModeCurrent.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeCurrent:
		return ModeCurrent, nil
	case ModeNext:
		return ModeNext, nil
	default:
		return "", customError.WrapInvalidMode(s)
	}
}

// LoanType carries the product terms.
type LoanType struct {
	WeekDuration int     `json:"weekDuration"`
	Rate         float64 `json:"rate"`
}

// Payment is a payment as recorded by the field agent. ReceivedAt wins over
// CreatedAt when set.
type Payment struct {
	Amount     float64   `json:"amount"`
	ReceivedAt time.Time `json:"receivedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Date returns the moment the payment counts for.
func (p Payment) Date() time.Time {
	if !p.ReceivedAt.IsZero() {
		return p.ReceivedAt
	}
	return p.CreatedAt
}

// Loan is the subset of a loan the simulation reads.
type Loan struct {
	ID                    string    `json:"id"`
	SignDate              time.Time `json:"signDate"`
	RequestedAmount       float64   `json:"requestedAmount"`
	ExpectedWeeklyPayment float64   `json:"expectedWeeklyPayment"`
	LoanType              *LoanType `json:"loantype,omitempty"`
	Payments              []Payment `json:"payments"`
}

// Result is the outcome of a simulation.
type Result struct {
	ExpectedWeeklyPayment float64 `json:"expectedWeeklyPayment"`
	WeeksWithoutPayment   int     `json:"weeksWithoutPayment"`
	ArrearsAmount         float64 `json:"arrearsAmount"`
	PartialPayment        float64 `json:"partialPayment"`
	PendingAmount         float64 `json:"pendingAmount"`
}

// ExpectedWeeklyPayment returns the explicit quota when positive, otherwise
// requestedAmount*(1+rate)/weekDuration. Missing terms give 0.
func ExpectedWeeklyPayment(loan Loan) float64 {
	if loan.ExpectedWeeklyPayment > 0 {
		return loan.ExpectedWeeklyPayment
	}
	if loan.LoanType == nil || loan.LoanType.WeekDuration <= 0 {
		return 0
	}
	return loan.RequestedAmount * (1 + loan.LoanType.Rate) / float64(loan.LoanType.WeekDuration)
}

// EvaluationEndDate returns the Sunday closing the last week to evaluate:
// the previous week for ModeCurrent, the week containing now for ModeNext.
func EvaluationEndDate(now time.Time, mode Mode) time.Time {
	weekStart := calendar.WeekStart(now)
	if mode == ModeNext {
		return calendar.WeekEnd(weekStart)
	}
	return calendar.WeekEnd(weekStart.AddDate(0, 0, -7))
}

// Calculate runs the simulation for loan as of now. now must already be in
// the business location.
//
// The sign week only feeds surplus; it is never counted as missed. For each
// later week the carried surplus plus the week's payments must reach the
// quota. A shortfall counts one missed week and is not carried forward;
// only an excess is.
func Calculate(loan Loan, now time.Time, mode Mode) Result {
	expected := ExpectedWeeklyPayment(loan)
	signDate := loan.SignDate.In(now.Location())
	end := EvaluationEndDate(now, mode)

	buckets := calendar.BucketByWeek(signDate, loan.Payments, Payment.Date)

	var (
		surplus     float64
		missedWeeks int
	)
	for idx := 0; ; idx++ {
		week := buckets.Range(idx)
		if week.End.After(end) {
			break
		}

		weeklyPaid := sumAmounts(buckets.Week(idx))
		if idx == 0 {
			surplus += weeklyPaid
			continue
		}

		available := surplus + weeklyPaid
		if available < expected {
			missedWeeks++
		}
		surplus = math.Max(0, available-expected)
	}

	totalDebt := loan.RequestedAmount
	if loan.LoanType != nil {
		totalDebt = loan.RequestedAmount * (1 + loan.LoanType.Rate)
	}
	pending := math.Max(0, totalDebt-sumAmounts(loan.Payments))

	return Result{
		ExpectedWeeklyPayment: expected,
		WeeksWithoutPayment:   missedWeeks,
		ArrearsAmount:         math.Min(float64(missedWeeks)*expected, pending),
		PartialPayment:        math.Max(0, surplus),
		PendingAmount:         pending,
	}
}

func sumAmounts(payments []Payment) float64 {
	var total float64
	for _, p := range payments {
		total += p.Amount
	}
	return total
}
