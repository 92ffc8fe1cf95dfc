package portfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/segyhp/cartera-engine/internal/calendar"
)

var (
	activeWeek   = calendar.ActiveWeekRange(time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC))
	previousWeek = calendar.PreviousWeek(activeWeek)
)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 12, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func paidOn(m time.Month, d int) Payment {
	return Payment{ID: day(m, d).Format("0102"), ReceivedAt: day(m, d), Amount: decimal.NewFromInt(300)}
}

func activeLoan() Loan {
	return Loan{
		ID:                  "loan-1",
		PendingAmountStored: decimal.NewFromInt(1200),
		SignDate:            day(11, 1),
		Status:              StatusActive,
	}
}

func TestIsActiveLoan(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Loan)
		want   bool
	}{
		{name: "pending balance", mutate: func(*Loan) {}, want: true},
		{name: "paid off", mutate: func(l *Loan) { l.PendingAmountStored = decimal.Zero }, want: false},
		{name: "bad debt", mutate: func(l *Loan) { l.BadDebtDate = ptr(day(11, 10)) }, want: false},
		{name: "cleaned up", mutate: func(l *Loan) { l.ExcludedByCleanup = ptr("cleanup-7") }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := activeLoan()
			tt.mutate(&loan)
			assert.Equal(t, tt.want, IsActiveLoan(loan))
		})
	}
}

func TestIsInCarteraVencida(t *testing.T) {
	t.Run("active loan without payments in the week", func(t *testing.T) {
		assert.True(t, IsInCarteraVencida(activeLoan(), []Payment{paidOn(11, 12)}, activeWeek))
	})

	t.Run("one payment in the week keeps it current", func(t *testing.T) {
		assert.False(t, IsInCarteraVencida(activeLoan(), []Payment{paidOn(11, 19)}, activeWeek))
	})

	t.Run("loan signed this week is in grace", func(t *testing.T) {
		loan := activeLoan()
		loan.SignDate = day(11, 18)
		assert.False(t, IsInCarteraVencida(loan, nil, activeWeek))
	})

	t.Run("inactive loan is never in CV", func(t *testing.T) {
		loan := activeLoan()
		loan.PendingAmountStored = decimal.Zero
		assert.False(t, IsInCarteraVencida(loan, nil, activeWeek))
	})

	t.Run("payment on sunday night still counts", func(t *testing.T) {
		late := Payment{ReceivedAt: activeWeek.End}
		assert.False(t, IsInCarteraVencida(activeLoan(), []Payment{late}, activeWeek))
	})
}

func TestExitedCarteraVencida(t *testing.T) {
	tests := []struct {
		name     string
		payments []Payment
		want     bool
	}{
		{name: "double payment after a missed week", payments: []Payment{paidOn(11, 19), paidOn(11, 21)}, want: true},
		{name: "single catch-up payment is not enough", payments: []Payment{paidOn(11, 19)}, want: false},
		{name: "paid the previous week so was never in CV", payments: []Payment{paidOn(11, 12), paidOn(11, 19), paidOn(11, 21)}, want: false},
		{name: "no payments", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitedCarteraVencida(tt.payments, previousWeek, activeWeek))
		})
	}
}

func TestCalculateCVStatus(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Loan)
		payments   []Payment
		previous   *calendar.WeekRange
		wantStatus CVStatus
		wantReason ExclusionReason
		wantExited bool
		wantCount  int
	}{
		{
			name: "bad debt wins over cleanup and zero balance",
			mutate: func(l *Loan) {
				l.BadDebtDate = ptr(day(11, 5))
				l.ExcludedByCleanup = ptr("c")
				l.PendingAmountStored = decimal.Zero
			},
			wantStatus: StatusExcluido,
			wantReason: ExclusionBadDebt,
		},
		{
			name: "cleanup wins over zero balance",
			mutate: func(l *Loan) {
				l.ExcludedByCleanup = ptr("c")
				l.PendingAmountStored = decimal.Zero
			},
			wantStatus: StatusExcluido,
			wantReason: ExclusionCleanup,
		},
		{
			name:       "nothing pending",
			mutate:     func(l *Loan) { l.PendingAmountStored = decimal.Zero },
			payments:   []Payment{paidOn(11, 19)},
			wantStatus: StatusExcluido,
			wantReason: ExclusionNotActive,
			wantCount:  1,
		},
		{
			name:       "no payment this week",
			payments:   []Payment{paidOn(11, 12)},
			previous:   &previousWeek,
			wantStatus: StatusEnCV,
		},
		{
			name:       "current and exited with a double payment",
			payments:   []Payment{paidOn(11, 19), paidOn(11, 20)},
			previous:   &previousWeek,
			wantStatus: StatusAlCorriente,
			wantExited: true,
			wantCount:  2,
		},
		{
			name:       "exit is not evaluated without a previous week",
			payments:   []Payment{paidOn(11, 19), paidOn(11, 20)},
			wantStatus: StatusAlCorriente,
			wantCount:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := activeLoan()
			if tt.mutate != nil {
				tt.mutate(&loan)
			}

			result := CalculateCVStatus(loan, tt.payments, activeWeek, tt.previous)

			assert.Equal(t, "loan-1", result.LoanID)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantReason, result.ExclusionReason)
			assert.Equal(t, tt.wantExited, result.ExitedCVThisWeek)
			assert.Equal(t, tt.wantCount, result.PaymentsInWeek)
		})
	}
}
