package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/cartera-engine/internal/calendar"
)

const ratePlaces = 4

// Trend compares a KPI with its value in the previous period.
type Trend string

const (
	TrendUp     Trend = "UP"
	TrendDown   Trend = "DOWN"
	TrendStable Trend = "STABLE"
)

// ClientBalance counts how the client base moved during a period.
type ClientBalance struct {
	Nuevos               int   `json:"nuevos"`
	TerminadosSinRenovar int   `json:"terminadosSinRenovar"`
	Renovados            int   `json:"renovados"`
	Balance              int   `json:"balance"`
	Trend                Trend `json:"trend"`
}

// RenovationKPIs measure how many closing loans were renewed.
type RenovationKPIs struct {
	TotalRenovaciones      int             `json:"totalRenovaciones"`
	TotalCierresSinRenovar int             `json:"totalCierresSinRenovar"`
	TasaRenovacion         decimal.Decimal `json:"tasaRenovacion"`
	Tendencia              Trend           `json:"tendencia"`
}

// ClientsStatus is the CV breakdown of the active loans of a week.
type ClientsStatus struct {
	TotalActivos int `json:"totalActivos"`
	EnCV         int `json:"enCV"`
	AlCorriente  int `json:"alCorriente"`
}

// CalculateTrend compares current against previous.
func CalculateTrend(current, previous decimal.Decimal) Trend {
	switch current.Cmp(previous) {
	case 1:
		return TrendUp
	case -1:
		return TrendDown
	default:
		return TrendStable
	}
}

func inPeriod(t *time.Time, start, end time.Time) bool {
	return t != nil && !t.Before(start) && !t.After(end)
}

// IsNewClient reports whether loan is the borrower's first loan.
func IsNewClient(loan Loan) bool {
	return loan.PreviousLoan == nil
}

// IsNewClientInPeriod reports whether a first loan was signed in [start, end].
func IsNewClientInPeriod(loan Loan, start, end time.Time) bool {
	return IsNewClient(loan) && inPeriod(&loan.SignDate, start, end)
}

// IsFinishedWithoutRenewal reports whether loan finished in [start, end] and
// was not renewed.
func IsFinishedWithoutRenewal(loan Loan, start, end time.Time) bool {
	return inPeriod(loan.FinishedDate, start, end) &&
		loan.RenewedDate == nil &&
		loan.Status != StatusRenovated
}

// RenewalDate returns when loan was renewed. Loans marked RENOVATED without a
// renewal date fall back to their finish date.
func RenewalDate(loan Loan) *time.Time {
	if loan.RenewedDate != nil {
		return loan.RenewedDate
	}
	if loan.Status == StatusRenovated {
		return loan.FinishedDate
	}
	return nil
}

// IsRenewalInPeriod reports whether loan was renewed in [start, end].
func IsRenewalInPeriod(loan Loan, start, end time.Time) bool {
	return inPeriod(RenewalDate(loan), start, end)
}

// CalculateClientBalance counts new, renewed and lost clients of the period.
// The trend is STABLE unless previousBalance is given.
func CalculateClientBalance(loans []Loan, start, end time.Time, previousBalance *int) ClientBalance {
	var result ClientBalance
	for _, loan := range loans {
		if IsNewClientInPeriod(loan, start, end) {
			result.Nuevos++
		}
		if IsFinishedWithoutRenewal(loan, start, end) {
			result.TerminadosSinRenovar++
		}
		if IsRenewalInPeriod(loan, start, end) {
			result.Renovados++
		}
	}

	result.Balance = result.Nuevos - result.TerminadosSinRenovar
	result.Trend = TrendStable
	if previousBalance != nil {
		result.Trend = CalculateTrend(decimal.NewFromInt(int64(result.Balance)), decimal.NewFromInt(int64(*previousBalance)))
	}
	return result
}

// CalculateRenovationKPIs returns renewals / (renewals + closings without
// renewal) rounded to four places, 0 when nothing closed.
func CalculateRenovationKPIs(totalRenovaciones, totalCierresSinRenovar int, previousRate *decimal.Decimal) RenovationKPIs {
	rate := decimal.Zero
	if total := totalRenovaciones + totalCierresSinRenovar; total > 0 {
		rate = decimal.NewFromInt(int64(totalRenovaciones)).
			Div(decimal.NewFromInt(int64(total))).
			Round(ratePlaces)
	}

	trend := TrendStable
	if previousRate != nil {
		trend = CalculateTrend(rate, *previousRate)
	}

	return RenovationKPIs{
		TotalRenovaciones:      totalRenovaciones,
		TotalCierresSinRenovar: totalCierresSinRenovar,
		TasaRenovacion:         rate,
		Tendencia:              trend,
	}
}

// RenovationKPIsForPeriod counts renewals and closings of the period and
// derives the KPIs.
func RenovationKPIsForPeriod(loans []Loan, start, end time.Time, previousRate *decimal.Decimal) RenovationKPIs {
	var renewals, closings int
	for _, loan := range loans {
		if IsRenewalInPeriod(loan, start, end) {
			renewals++
		}
		if IsFinishedWithoutRenewal(loan, start, end) {
			closings++
		}
	}
	return CalculateRenovationKPIs(renewals, closings, previousRate)
}

// CountClientsStatus splits the active loans into EN_CV and AL_CORRIENTE for
// week. paymentsByLoan is keyed by loan ID.
func CountClientsStatus(loans []Loan, paymentsByLoan map[string][]Payment, week calendar.WeekRange) ClientsStatus {
	var result ClientsStatus
	for _, loan := range loans {
		if !IsActiveLoan(loan) {
			continue
		}
		result.TotalActivos++
		if IsInCarteraVencida(loan, paymentsByLoan[loan.ID], week) {
			result.EnCV++
		} else {
			result.AlCorriente++
		}
	}
	return result
}
