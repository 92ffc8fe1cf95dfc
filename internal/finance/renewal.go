package finance

import (
	"github.com/shopspring/decimal"
)

// PreviousLoan is the part of a renewed loan that the renewal depends on.
type PreviousLoan struct {
	PendingAmountStored decimal.Decimal `json:"pendingAmountStored"`
	ProfitAmount        decimal.Decimal `json:"profitAmount"`
	TotalDebtAcquired   decimal.Decimal `json:"totalDebtAcquired"`
}

// InheritedProfit is the unrealized profit carried into a renewal.
type InheritedProfit struct {
	ProfitHeredado decimal.Decimal `json:"profitHeredado"`
	ProfitRatio    decimal.Decimal `json:"profitRatio"`
}

// RenewalMetrics are the figures of a loan that replaces an unfinished one.
type RenewalMetrics struct {
	ProfitBase            decimal.Decimal `json:"profitBase"`
	ProfitHeredado        decimal.Decimal `json:"profitHeredado"`
	ProfitTotal           decimal.Decimal `json:"profitTotal"`
	ReturnToCapital       decimal.Decimal `json:"returnToCapital"`
	TotalDebtAcquired     decimal.Decimal `json:"totalDebtAcquired"`
	AmountGived           decimal.Decimal `json:"amountGived"`
	ExpectedWeeklyPayment decimal.Decimal `json:"expectedWeeklyPayment"`
}

// CalculateProfitHeredado returns the share of the previous loan's pending
// balance that is still profit: pending * (profit / totalDebt).
//
// Only that share is inherited. The pending balance itself is mostly capital
// and must never be carried over whole as profit.
func CalculateProfitHeredado(previous PreviousLoan) InheritedProfit {
	if previous.TotalDebtAcquired.IsZero() {
		return InheritedProfit{ProfitHeredado: decimal.Zero, ProfitRatio: decimal.Zero}
	}

	ratio := previous.ProfitAmount.Div(previous.TotalDebtAcquired)
	return InheritedProfit{
		ProfitHeredado: previous.PendingAmountStored.Mul(ratio).Round(moneyPlaces),
		ProfitRatio:    ratio,
	}
}

// CalculateAmountToGive is the cash handed to the client on renewal: the new
// principal minus what they still owe, never below zero.
func CalculateAmountToGive(requestedAmount, pendingAmountStored decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, requestedAmount.Sub(pendingAmountStored)).Round(moneyPlaces)
}

// CalculateRenewalMetrics computes a renewal. The new principal returns
// entirely as capital; the profit is the new loan's own profit plus the
// profit inherited from the pending balance it absorbs.
func CalculateRenewalMetrics(requestedAmount, rate decimal.Decimal, weekDuration int, previous PreviousLoan) RenewalMetrics {
	profitBase := CalculateProfit(requestedAmount, rate)
	inherited := CalculateProfitHeredado(previous)
	profitTotal := profitBase.Add(inherited.ProfitHeredado)
	totalDebt := requestedAmount.Add(profitTotal).Round(moneyPlaces)

	weekly := decimal.Zero
	if weekDuration > 0 {
		weekly = totalDebt.Div(decimal.NewFromInt(int64(weekDuration))).Round(moneyPlaces)
	}

	return RenewalMetrics{
		ProfitBase:            profitBase,
		ProfitHeredado:        inherited.ProfitHeredado,
		ProfitTotal:           profitTotal,
		ReturnToCapital:       requestedAmount.Round(moneyPlaces),
		TotalDebtAcquired:     totalDebt,
		AmountGived:           CalculateAmountToGive(requestedAmount, previous.PendingAmountStored),
		ExpectedWeeklyPayment: weekly,
	}
}
