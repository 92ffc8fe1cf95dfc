package service

import (
	"time"

	"github.com/segyhp/cartera-engine/internal/chronology"
	"github.com/segyhp/cartera-engine/internal/domain"
	"github.com/segyhp/cartera-engine/internal/finance"
	"github.com/segyhp/cartera-engine/internal/portfolio"
	"github.com/segyhp/cartera-engine/internal/vdo"
	"github.com/segyhp/cartera-engine/pkg/utils"
)

// Records coming from the data layer are converted into the plain inputs
// of the calculation packages here. Missing numbers become 0.

func toVDOLoan(loan *domain.Loan, payments []*domain.Payment) vdo.Loan {
	out := vdo.Loan{
		ID:                    loan.ID,
		SignDate:              loan.SignDate,
		RequestedAmount:       utils.ToFloat(loan.RequestedAmount),
		ExpectedWeeklyPayment: utils.ToFloat(loan.ExpectedWeeklyPayment),
		Payments:              make([]vdo.Payment, 0, len(payments)),
	}
	if loan.WeekDuration != nil {
		out.LoanType = &vdo.LoanType{
			WeekDuration: *loan.WeekDuration,
			Rate:         utils.ToFloat(loan.Rate),
		}
	}

	for _, p := range payments {
		var receivedAt time.Time
		if p.ReceivedAt != nil {
			receivedAt = *p.ReceivedAt
		}
		out.Payments = append(out.Payments, vdo.Payment{
			Amount:     utils.ToFloat(p.Amount),
			ReceivedAt: receivedAt,
			CreatedAt:  p.CreatedAt,
		})
	}
	return out
}

func toChronologyLoan(loan *domain.Loan, payments []*domain.Payment) chronology.Loan {
	out := chronology.Loan{
		ID:                    loan.ID,
		SignDate:              loan.SignDate,
		Status:                loan.Status,
		FinishedDate:          loan.FinishedDate,
		BadDebtDate:           loan.BadDebtDate,
		Amount:                utils.ToFloat(loan.RequestedAmount),
		WeekDuration:          loan.TermWeeks(),
		ExpectedWeeklyPayment: vdo.ExpectedWeeklyPayment(toVDOLoan(loan, nil)),
		Payments:              make([]chronology.Payment, 0, len(payments)),
	}

	for _, p := range payments {
		out.Payments = append(out.Payments, chronology.Payment{
			ID:            p.ID,
			ReceivedAt:    p.Date(),
			Amount:        utils.ToFloat(p.Amount),
			PaymentMethod: p.PaymentMethod,
		})
	}
	return out
}

func toPortfolioLoan(loan *domain.Loan) portfolio.Loan {
	return portfolio.Loan{
		ID:                  loan.ID,
		PendingAmountStored: loan.PendingAmountStored,
		SignDate:            loan.SignDate,
		FinishedDate:        loan.FinishedDate,
		RenewedDate:         loan.RenewedDate,
		BadDebtDate:         loan.BadDebtDate,
		ExcludedByCleanup:   loan.ExcludedByCleanup,
		PreviousLoan:        loan.PreviousLoanID,
		Status:              loan.Status,
	}
}

func toPortfolioPayments(payments []*domain.Payment) []portfolio.Payment {
	out := make([]portfolio.Payment, 0, len(payments))
	for _, p := range payments {
		out = append(out, portfolio.Payment{
			ID:         p.ID,
			ReceivedAt: p.Date(),
			Amount:     p.Amount,
		})
	}
	return out
}

func toPreviousLoan(loan *domain.Loan) finance.PreviousLoan {
	return finance.PreviousLoan{
		PendingAmountStored: loan.PendingAmountStored,
		ProfitAmount:        loan.ProfitAmount,
		TotalDebtAcquired:   loan.TotalDebtAcquired,
	}
}
