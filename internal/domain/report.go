package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/cartera-engine/internal/calendar"
	"github.com/segyhp/cartera-engine/internal/chronology"
	"github.com/segyhp/cartera-engine/internal/finance"
	"github.com/segyhp/cartera-engine/internal/portfolio"
	"github.com/segyhp/cartera-engine/internal/vdo"
)

// DTOs for requests and responses

type LoanVDOResponse struct {
	LoanID         string     `json:"loan_id"`
	Mode           vdo.Mode   `json:"mode"`
	EvaluatedUntil time.Time  `json:"evaluated_until"`
	Result         vdo.Result `json:"result"`
}

type ChronologyResponse struct {
	LoanID  string            `json:"loan_id"`
	EndDate time.Time         `json:"end_date"`
	Items   []chronology.Item `json:"items"`
}

type SplitPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"decimal_gt=0"`
}

type SplitPaymentResponse struct {
	LoanID         string                `json:"loan_id"`
	Amount         decimal.Decimal       `json:"amount"`
	IsBadDebt      bool                  `json:"is_bad_debt"`
	LeadCommission decimal.Decimal       `json:"lead_commission"`
	Split          finance.PaymentProfit `json:"split"`
	// PendingAfter splits what is still owed once this payment is applied.
	PendingAfter finance.PaymentProfit `json:"pending_after"`
	// ProgressAfter is the paid percentage of the total debt after this payment.
	ProgressAfter decimal.Decimal `json:"progress_after"`
}

type RenewalRequest struct {
	PreviousLoanID  string          `json:"previous_loan_id" validate:"required"`
	RequestedAmount decimal.Decimal `json:"requested_amount" validate:"decimal_gt=0"`
	Rate            decimal.Decimal `json:"rate" validate:"decimal_gte=0"`
	WeekDuration    int             `json:"week_duration" validate:"gt=0"`
	SignDate        *time.Time      `json:"sign_date,omitempty"`
}

type RenewalResponse struct {
	PreviousLoanID string                 `json:"previous_loan_id"`
	ProfitRatio    decimal.Decimal        `json:"profit_ratio"`
	LeadCommission decimal.Decimal        `json:"lead_commission"`
	Metrics        finance.RenewalMetrics `json:"metrics"`
}

type MonthlyKPIsRequest struct {
	Year            int              `json:"year" validate:"gte=2000,lte=2100"`
	Month           int              `json:"month" validate:"gte=1,lte=12"`
	PreviousBalance *int             `json:"previous_balance,omitempty"`
	PreviousRate    *decimal.Decimal `json:"previous_rate,omitempty"`
}

// CVReport is the Cartera Vencida snapshot of one business week.
type CVReport struct {
	SnapshotID  uuid.UUID               `json:"snapshot_id"`
	Week        calendar.WeekRange      `json:"week"`
	WeekLabel   string                  `json:"week_label"`
	GeneratedAt time.Time               `json:"generated_at"`
	Summary     portfolio.ClientsStatus `json:"summary"`
	ExitedCV    int                     `json:"exited_cv"`
	Excluded    int                     `json:"excluded"`
	Entries     []portfolio.CVResult    `json:"entries"`
}

// MonthlyKPIs aggregates the client balance and renewal KPIs of the weeks
// owned by a month.
type MonthlyKPIs struct {
	Year          int                      `json:"year"`
	Month         int                      `json:"month"`
	PeriodStart   time.Time                `json:"period_start"`
	PeriodEnd     time.Time                `json:"period_end"`
	Weeks         []calendar.WeekRange     `json:"weeks"`
	ClientBalance portfolio.ClientBalance  `json:"client_balance"`
	Renovation    portfolio.RenovationKPIs `json:"renovation"`
	GeneratedAt   time.Time                `json:"generated_at"`
}

// WeekView is a business week with its display label.
type WeekView struct {
	calendar.WeekRange
	Label string `json:"label"`
}

type MonthWeeksResponse struct {
	Year  int        `json:"year"`
	Month int        `json:"month"`
	Weeks []WeekView `json:"weeks"`
}
