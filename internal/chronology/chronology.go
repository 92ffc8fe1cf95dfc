// Package chronology rebuilds a loan's week-by-week payment history for the
// client history view: one entry per payment and one per elapsed week
// without payment, each tagged with how the week's quota was covered.
//
// Unlike the vdo simulator the running surplus here may go negative, so a
// client can see how far behind the schedule they were in any given week.
package chronology

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/segyhp/cartera-engine/internal/calendar"
	"github.com/segyhp/cartera-engine/pkg/utils"
)

// ItemType tells payments apart from gaps.
type ItemType string

const (
	ItemPayment   ItemType = "PAYMENT"
	ItemNoPayment ItemType = "NO_PAYMENT"
)

// CoverageType describes how a week's quota was met.
type CoverageType string

const (
	CoverageFull             CoverageType = "FULL"
	CoverageCoveredBySurplus CoverageType = "COVERED_BY_SURPLUS"
	CoveragePartial          CoverageType = "PARTIAL"
	CoverageMiss             CoverageType = "MISS"
)

// Loan statuses that close the timeline at FinishedDate.
const (
	StatusFinished  = "FINISHED"
	StatusRenovated = "RENOVATED"
)

// DefaultAmountPerWeek bounds the timeline of open loans to one week per
// this many units of principal when that exceeds the loan's term.
const DefaultAmountPerWeek = 100.0

// Payment is a recorded payment.
type Payment struct {
	ID            string    `json:"id"`
	ReceivedAt    time.Time `json:"receivedAt"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
}

// Loan is the loan data the timeline needs.
type Loan struct {
	ID                    string     `json:"id"`
	SignDate              time.Time  `json:"signDate"`
	Status                string     `json:"status"`
	FinishedDate          *time.Time `json:"finishedDate,omitempty"`
	BadDebtDate           *time.Time `json:"badDebtDate,omitempty"`
	Amount                float64    `json:"amount"`
	WeekDuration          int        `json:"weekDuration"`
	ExpectedWeeklyPayment float64    `json:"expectedWeeklyPayment"`
	Payments              []Payment  `json:"payments"`
}

// Item is one timeline entry.
type Item struct {
	ID             string       `json:"id"`
	Date           time.Time    `json:"date"`
	Type           ItemType     `json:"type"`
	Description    string       `json:"description"`
	Amount         float64      `json:"amount"`
	PaymentMethod  string       `json:"paymentMethod,omitempty"`
	WeekIndex      int          `json:"weekIndex"`
	WeekStart      time.Time    `json:"weekStart"`
	WeekEnd        time.Time    `json:"weekEnd"`
	WeeklyExpected float64      `json:"weeklyExpected"`
	WeeklyPaid     float64      `json:"weeklyPaid"`
	SurplusBefore  float64      `json:"surplusBefore"`
	SurplusAfter   float64      `json:"surplusAfter"`
	CoverageType   CoverageType `json:"coverageType"`
}

// Builder reconstructs timelines. The zero value is not usable; use NewBuilder.
type Builder struct {
	amountPerWeek float64
	fullyPaid     func(Loan) bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithAmountPerWeek overrides DefaultAmountPerWeek.
func WithAmountPerWeek(amount float64) Option {
	return func(b *Builder) {
		if amount > 0 {
			b.amountPerWeek = amount
		}
	}
}

// WithFullyPaid installs the predicate that closes a timeline at the last
// payment of a fully paid loan.
func WithFullyPaid(fn func(Loan) bool) Option {
	return func(b *Builder) {
		if fn != nil {
			b.fullyPaid = fn
		}
	}
}

// NewBuilder returns a Builder. By default no loan is treated as fully paid,
// so open loans keep generating weeks up to now.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		amountPerWeek: DefaultAmountPerWeek,
		fullyPaid:     func(Loan) bool { return false },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the timeline of loan as of now with default options.
func Build(loan Loan, now time.Time) []Item {
	return NewBuilder().Build(loan, now)
}

// EndDate returns the last moment the timeline covers: the finish date of a
// finished or renewed loan, else the bad-debt date, else the last payment
// of a fully paid loan, else now capped at the loan's maximum span.
func (b *Builder) EndDate(loan Loan, now time.Time) time.Time {
	if (loan.Status == StatusFinished || loan.Status == StatusRenovated) && loan.FinishedDate != nil {
		return *loan.FinishedDate
	}
	if loan.BadDebtDate != nil {
		return *loan.BadDebtDate
	}
	if b.fullyPaid(loan) {
		if last, ok := lastPaymentDate(loan.Payments); ok {
			return last
		}
	}

	maxWeeks := loan.WeekDuration
	if byAmount := int(math.Ceil(loan.Amount / b.amountPerWeek)); byAmount > maxWeeks {
		maxWeeks = byAmount
	}
	limit := loan.SignDate.AddDate(0, 0, maxWeeks*7)
	if now.Before(limit) {
		return now
	}
	return limit
}

// Build returns the timeline of loan as of now, ordered by date.
func (b *Builder) Build(loan Loan, now time.Time) []Item {
	signDate := loan.SignDate.In(now.Location())
	endDate := b.EndDate(loan, now)
	expected := loan.ExpectedWeeklyPayment

	idx := make([]int, len(loan.Payments))
	for i := range idx {
		idx[i] = i
	}
	buckets := calendar.BucketByWeek(signDate, idx, func(i int) time.Time { return loan.Payments[i].ReceivedAt })
	stats := func(week int) weekStats {
		return computeWeekStats(loan.Payments, buckets, week, expected)
	}

	totalWeeks := 0
	if elapsed := endDate.Sub(signDate); elapsed > 0 {
		totalWeeks = int(math.Ceil(elapsed.Hours() / (24 * 7)))
	}

	var items []Item
	attributed := make([]bool, len(loan.Payments))

	for week := 1; week <= totalWeeks; week++ {
		bounds := calendar.ActiveWeekRange(signDate.AddDate(0, 0, week*7))
		st := stats(week)

		inWeek := buckets.Week(week)
		if len(inWeek) > 0 {
			for _, i := range inWeek {
				attributed[i] = true
				items = append(items, paymentItem(loan.Payments[i], week, bounds, st))
			}
			continue
		}

		// Without a weekly quota there is nothing to miss.
		if expected > 0 && bounds.End.Before(now) && !bounds.Start.After(endDate) {
			items = append(items, gapItem(week, bounds, st))
		}
	}

	for i, p := range loan.Payments {
		if attributed[i] {
			continue
		}
		week := calendar.WeekIndex(signDate, p.ReceivedAt)
		items = append(items, paymentItem(p, week, buckets.Range(week), stats(week)))
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date.Equal(items[j].Date) {
			return items[i].Type == ItemPayment && items[j].Type != ItemPayment
		}
		return items[i].Date.Before(items[j].Date)
	})
	return items
}

type weekStats struct {
	expected      float64
	paid          float64
	surplusBefore float64
	surplusAfter  float64
	coverage      CoverageType
}

// computeWeekStats measures week against the schedule. Weeks up to the
// sign week are not due, so their quota is zero.
func computeWeekStats(payments []Payment, buckets calendar.WeekBuckets[int], week int, expectedWeekly float64) weekStats {
	expected := expectedWeekly
	dueWeeksBefore := week - 1
	if week < 1 {
		expected = 0
		dueWeeksBefore = 0
	}

	paid := sumOf(payments, buckets.Week(week))
	paidBefore := sumOf(payments, buckets.Before(week))
	surplusBefore := paidBefore - float64(dueWeeksBefore)*expectedWeekly

	return weekStats{
		expected:      expected,
		paid:          paid,
		surplusBefore: surplusBefore,
		surplusAfter:  surplusBefore + paid - expected,
		coverage:      classify(paid, surplusBefore, expected),
	}
}

func classify(weeklyPaid, surplusBefore, expected float64) CoverageType {
	switch {
	case weeklyPaid >= expected:
		return CoverageFull
	case surplusBefore > 0 && surplusBefore+weeklyPaid >= expected:
		return CoverageCoveredBySurplus
	case weeklyPaid > 0:
		return CoveragePartial
	default:
		return CoverageMiss
	}
}

func paymentItem(p Payment, week int, bounds calendar.WeekRange, st weekStats) Item {
	return Item{
		ID:             p.ID,
		Date:           p.ReceivedAt,
		Type:           ItemPayment,
		Description:    paymentDescription(st.coverage),
		Amount:         utils.RoundFloat(p.Amount, 2),
		PaymentMethod:  p.PaymentMethod,
		WeekIndex:      week,
		WeekStart:      bounds.Start,
		WeekEnd:        bounds.End,
		WeeklyExpected: utils.RoundFloat(st.expected, 2),
		WeeklyPaid:     utils.RoundFloat(st.paid, 2),
		SurplusBefore:  utils.RoundFloat(st.surplusBefore, 2),
		SurplusAfter:   utils.RoundFloat(st.surplusAfter, 2),
		CoverageType:   st.coverage,
	}
}

func gapItem(week int, bounds calendar.WeekRange, st weekStats) Item {
	description := "No payment"
	if st.coverage == CoverageCoveredBySurplus {
		description = "No payment, covered by surplus"
	}

	return Item{
		ID:             fmt.Sprintf("no-payment-%d", week),
		Date:           bounds.Start,
		Type:           ItemNoPayment,
		Description:    description,
		WeekIndex:      week,
		WeekStart:      bounds.Start,
		WeekEnd:        bounds.End,
		WeeklyExpected: utils.RoundFloat(st.expected, 2),
		SurplusBefore:  utils.RoundFloat(st.surplusBefore, 2),
		SurplusAfter:   utils.RoundFloat(st.surplusAfter, 2),
		CoverageType:   st.coverage,
	}
}

func paymentDescription(coverage CoverageType) string {
	switch coverage {
	case CoverageFull:
		return "Payment"
	case CoverageCoveredBySurplus:
		return "Payment, week covered by surplus"
	default:
		return "Partial payment"
	}
}

func sumOf(payments []Payment, idx []int) float64 {
	var total float64
	for _, i := range idx {
		total += payments[i].Amount
	}
	return total
}

func lastPaymentDate(payments []Payment) (time.Time, bool) {
	var last time.Time
	for _, p := range payments {
		if p.ReceivedAt.After(last) {
			last = p.ReceivedAt
		}
	}
	return last, !last.IsZero()
}
