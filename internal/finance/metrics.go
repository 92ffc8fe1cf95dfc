// Package finance holds the money arithmetic of a loan: profit, weekly
// quota, the profit/capital split of each payment and the profit a renewal
// inherits from the loan it replaces.
//
// Every amount is a decimal.Decimal and every published amount is rounded
// to two places. The mobile app re-derives these numbers from the same raw
// records, so rounding points must not move.
package finance

import (
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var (
	hundred = decimal.NewFromInt(100)
)

// LoanMetrics are the figures fixed when a loan is signed.
type LoanMetrics struct {
	ProfitAmount          decimal.Decimal `json:"profitAmount"`
	TotalDebtAcquired     decimal.Decimal `json:"totalDebtAcquired"`
	ExpectedWeeklyPayment decimal.Decimal `json:"expectedWeeklyPayment"`
}

// PaymentProfit is the split of a single payment.
type PaymentProfit struct {
	ProfitAmount    decimal.Decimal `json:"profitAmount"`
	ReturnToCapital decimal.Decimal `json:"returnToCapital"`
}

// CalculateProfit returns requestedAmount * rate rounded to cents.
func CalculateProfit(requestedAmount, rate decimal.Decimal) decimal.Decimal {
	return requestedAmount.Mul(rate).Round(moneyPlaces)
}

// CalculateLoanMetrics computes profit, total debt and weekly quota. Each
// figure is rounded on its own from unrounded inputs. A non-positive
// weekDuration yields a zero weekly quota.
func CalculateLoanMetrics(requestedAmount, rate decimal.Decimal, weekDuration int) LoanMetrics {
	profit := requestedAmount.Mul(rate)
	totalDebt := requestedAmount.Add(profit)

	weekly := decimal.Zero
	if weekDuration > 0 {
		weekly = totalDebt.Div(decimal.NewFromInt(int64(weekDuration)))
	}

	return LoanMetrics{
		ProfitAmount:          profit.Round(moneyPlaces),
		TotalDebtAcquired:     totalDebt.Round(moneyPlaces),
		ExpectedWeeklyPayment: weekly.Round(moneyPlaces),
	}
}

// CalculatePaymentProfit splits a payment into profit and return to capital.
//
// A bad-debt loan has already been written off, so anything recovered is
// booked entirely as profit. Otherwise the payment carries the loan's
// profit share; capital is derived from the rounded profit so both parts
// always add up to paymentAmount exactly.
func CalculatePaymentProfit(paymentAmount, totalProfit, totalDebtAcquired decimal.Decimal, isBadDebt bool) PaymentProfit {
	if isBadDebt {
		return PaymentProfit{
			ProfitAmount:    paymentAmount.Round(moneyPlaces),
			ReturnToCapital: decimal.Zero,
		}
	}

	profit := decimal.Zero
	if !totalDebtAcquired.IsZero() {
		profit = paymentAmount.Mul(totalProfit).Div(totalDebtAcquired).Round(moneyPlaces)
	}

	return PaymentProfit{
		ProfitAmount:    profit,
		ReturnToCapital: paymentAmount.Sub(profit).Round(moneyPlaces),
	}
}

// CalculateCommission returns a lead's commission on baseAmount.
func CalculateCommission(baseAmount, commissionRate decimal.Decimal) decimal.Decimal {
	if baseAmount.LessThanOrEqual(decimal.Zero) || commissionRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return baseAmount.Mul(commissionRate).Round(moneyPlaces)
}

// CalculatePendingAmount is total - paid, floored at zero.
func CalculatePendingAmount(totalDebt, totalPaid decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, totalDebt.Sub(totalPaid)).Round(moneyPlaces)
}

// CalculatePaymentProgress returns the paid percentage of totalDebt, capped at 100.
func CalculatePaymentProgress(totalPaid, totalDebt decimal.Decimal) decimal.Decimal {
	if totalDebt.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if totalPaid.GreaterThanOrEqual(totalDebt) {
		return hundred
	}
	return totalPaid.Div(totalDebt).Mul(hundred).Round(moneyPlaces)
}

// CalculateRecoveryRate returns recovered as a percentage of expected.
func CalculateRecoveryRate(recovered, expected decimal.Decimal) decimal.Decimal {
	if expected.IsZero() {
		return decimal.Zero
	}
	return recovered.Div(expected).Mul(hundred).Round(moneyPlaces)
}

// CalculateAverageTicket returns total / count, or zero for an empty set.
func CalculateAverageTicket(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(moneyPlaces)
}

// SplitPendingBalance divides a pending balance into the profit and capital
// still embedded in it, using the loan's profit ratio.
func SplitPendingBalance(pendingAmount, profitAmount, totalDebtAcquired decimal.Decimal) PaymentProfit {
	if pendingAmount.LessThanOrEqual(decimal.Zero) {
		return PaymentProfit{ProfitAmount: decimal.Zero, ReturnToCapital: decimal.Zero}
	}
	return CalculatePaymentProfit(pendingAmount, profitAmount, totalDebtAcquired, false)
}
