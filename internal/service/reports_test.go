package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/cartera-engine/internal/calendar"
	"github.com/segyhp/cartera-engine/internal/domain"
	"github.com/segyhp/cartera-engine/internal/portfolio"
	customError "github.com/segyhp/cartera-engine/pkg/errors"
)

func openLoan(id string, signed time.Time) *domain.Loan {
	return &domain.Loan{
		ID:                  id,
		PendingAmountStored: dec("1200"),
		SignDate:            signed,
		Status:              domain.LoanStatusActive,
	}
}

// Week of Nov 18, previous week of Nov 11.
func cvPortfolio() ([]*domain.Loan, []*domain.Payment) {
	exited := openLoan("exited", day(10, 1))
	inCV := openLoan("in-cv", day(10, 1))
	badDebt := openLoan("bad-debt", day(10, 1))
	badDebt.BadDebtDate = ptr(day(11, 1))
	fresh := openLoan("fresh", day(11, 20))

	var payments []*domain.Payment
	payments = append(payments, paymentsOf("exited", day(11, 19), day(11, 21))...)
	payments = append(payments, paymentsOf("in-cv", day(11, 12))...)

	return []*domain.Loan{exited, inCV, badDebt, fresh}, payments
}

func TestGetWeeklyCVReport(t *testing.T) {
	f := newFixture()
	loans, payments := cvPortfolio()
	ids := []string{"exited", "in-cv", "bad-debt", "fresh"}

	f.cache.On("GetJSON", mock.Anything, "cartera:cv:2024-11-18", mock.Anything).Return(false, nil)
	f.loans.On("ListOpenDuring", mock.Anything, mock.Anything, mock.Anything).Return(loans, nil)
	f.payments.On("ListByLoanIDs", mock.Anything, ids, mock.Anything, mock.Anything).Return(payments, nil)
	f.cache.On("SetJSON", mock.Anything, "cartera:cv:2024-11-18", mock.AnythingOfType("*domain.CVReport"), time.Hour).Return(nil)

	report, err := f.service.GetWeeklyCVReport(context.Background(), day(11, 20))
	require.NoError(t, err)

	week := calendar.ActiveWeekRange(day(11, 20))
	assert.Equal(t, week, report.Week)
	assert.Equal(t, calendar.FormatWeekRange(week), report.WeekLabel)
	assert.NotEqual(t, uuid.Nil, report.SnapshotID)
	assert.Equal(t, now, report.GeneratedAt)

	assert.Equal(t, portfolio.ClientsStatus{TotalActivos: 3, EnCV: 1, AlCorriente: 2}, report.Summary)
	assert.Equal(t, 1, report.ExitedCV)
	assert.Equal(t, 1, report.Excluded)

	require.Len(t, report.Entries, 4)
	assert.Equal(t, portfolio.StatusAlCorriente, report.Entries[0].Status)
	assert.True(t, report.Entries[0].ExitedCVThisWeek)
	assert.Equal(t, 2, report.Entries[0].PaymentsInWeek)
	assert.Equal(t, portfolio.StatusEnCV, report.Entries[1].Status)
	assert.Equal(t, portfolio.StatusExcluido, report.Entries[2].Status)
	assert.Equal(t, portfolio.ExclusionBadDebt, report.Entries[2].ExclusionReason)
	assert.Equal(t, portfolio.StatusAlCorriente, report.Entries[3].Status)
	assert.False(t, report.Entries[3].ExitedCVThisWeek)

	// the summary agrees with the portfolio-wide count
	input := make([]portfolio.Loan, len(loans))
	for i, loan := range loans {
		input[i] = toPortfolioLoan(loan)
	}
	byLoan := map[string][]portfolio.Payment{}
	for id, ps := range domain.GroupByLoan(payments) {
		byLoan[id] = toPortfolioPayments(ps)
	}
	assert.Equal(t, portfolio.CountClientsStatus(input, byLoan, week), report.Summary)

	f.assertExpectations(t)
}

func TestGetWeeklyCVReportFromCache(t *testing.T) {
	f := newFixture()
	cached := domain.CVReport{
		SnapshotID: uuid.New(),
		WeekLabel:  "cached",
		Summary:    portfolio.ClientsStatus{TotalActivos: 7, EnCV: 2, AlCorriente: 5},
	}
	f.cache.On("GetJSON", mock.Anything, "cartera:cv:2024-11-18", mock.Anything).Return(true, nil, cached)

	report, err := f.service.GetWeeklyCVReport(context.Background(), day(11, 24))
	require.NoError(t, err)

	assert.Equal(t, cached.SnapshotID, report.SnapshotID)
	assert.Equal(t, cached.Summary, report.Summary)
	f.loans.AssertNotCalled(t, "ListOpenDuring", mock.Anything, mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetWeeklyCVReportCacheFailuresAreNotFatal(t *testing.T) {
	f := newFixture()
	f.cache.On("GetJSON", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	f.cache.On("SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	f.loans.On("ListOpenDuring", mock.Anything, mock.Anything, mock.Anything).Return([]*domain.Loan{}, nil)
	f.payments.On("ListByLoanIDs", mock.Anything, []string{}, mock.Anything, mock.Anything).Return(nil, nil)

	report, err := f.service.GetWeeklyCVReport(context.Background(), day(11, 20))
	require.NoError(t, err)
	assert.Empty(t, report.Entries)
	assert.Equal(t, portfolio.ClientsStatus{}, report.Summary)
}

func TestRefreshWeeklyCVReport(t *testing.T) {
	f := newFixture()
	f.loans.On("ListOpenDuring", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	f.cache.On("Delete", mock.Anything, []string{"cartera:cv:2024-11-18"}).Return(nil).Once()

	_, err := f.service.RefreshWeeklyCVReport(context.Background(), day(11, 20))
	assert.Equal(t, customError.ErrCodeDatabaseError, customError.CodeOf(err))
	f.cache.AssertNotCalled(t, "GetJSON", mock.Anything, mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestGetMonthlyKPIs(t *testing.T) {
	f := newFixture()

	first := openLoan("first", day(11, 5))
	second := openLoan("second", day(11, 20))
	closed := openLoan("closed", day(8, 1))
	closed.Status = domain.LoanStatusFinished
	closed.FinishedDate = ptr(day(11, 12))
	closed.PreviousLoanID = ptr("older")
	renewed := openLoan("renewed", day(8, 1))
	renewed.Status = domain.LoanStatusRenovated
	renewed.FinishedDate = ptr(day(11, 14))
	renewed.RenewedDate = ptr(day(11, 14))
	renewed.PreviousLoanID = ptr("older")

	key := "cartera:kpi:2024-11:0:-"
	f.cache.On("GetJSON", mock.Anything, key, mock.Anything).Return(false, nil)
	f.loans.On("ListForPeriod", mock.Anything, mock.Anything, mock.Anything).
		Return([]*domain.Loan{first, second, closed, renewed}, nil)
	f.cache.On("SetJSON", mock.Anything, key, mock.AnythingOfType("*domain.MonthlyKPIs"), time.Hour).Return(nil)

	kpis, err := f.service.GetMonthlyKPIs(context.Background(), &domain.MonthlyKPIsRequest{
		Year:            2024,
		Month:           11,
		PreviousBalance: ptr(0),
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC), kpis.PeriodStart)
	assert.Equal(t, time.Date(2024, 12, 1, 23, 59, 59, 999_000_000, time.UTC), kpis.PeriodEnd)
	assert.Len(t, kpis.Weeks, 4)

	assert.Equal(t, portfolio.ClientBalance{
		Nuevos:               2,
		TerminadosSinRenovar: 1,
		Renovados:            1,
		Balance:              1,
		Trend:                portfolio.TrendUp,
	}, kpis.ClientBalance)
	assert.Equal(t, 1, kpis.Renovation.TotalRenovaciones)
	assert.Equal(t, 1, kpis.Renovation.TotalCierresSinRenovar)
	assert.True(t, dec("0.5").Equal(kpis.Renovation.TasaRenovacion))
	assert.Equal(t, portfolio.TrendStable, kpis.Renovation.Tendencia)

	f.loans.AssertCalled(t, "ListForPeriod", mock.Anything, kpis.PeriodStart, kpis.PeriodEnd)
	f.assertExpectations(t)
}

func TestRefreshMonthlyKPIsOverwritesCachedEntry(t *testing.T) {
	f := newFixture()

	renewed := openLoan("renewed", day(8, 1))
	renewed.Status = domain.LoanStatusRenovated
	renewed.FinishedDate = ptr(day(11, 28))
	renewed.RenewedDate = ptr(day(11, 28))
	renewed.PreviousLoanID = ptr("older")

	key := "cartera:kpi:2024-11:-:-"
	f.cache.On("GetJSON", mock.Anything, key, mock.Anything).
		Return(true, nil, &domain.MonthlyKPIs{Year: 2024, Month: 11})
	f.cache.On("Delete", mock.Anything, []string{key}).Return(nil).Once()
	f.loans.On("ListForPeriod", mock.Anything, mock.Anything, mock.Anything).
		Return([]*domain.Loan{renewed}, nil).Once()
	f.cache.On("SetJSON", mock.Anything, key, mock.AnythingOfType("*domain.MonthlyKPIs"), time.Hour).Return(nil).Once()

	req := &domain.MonthlyKPIsRequest{Year: 2024, Month: 11}
	stale, err := f.service.GetMonthlyKPIs(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, stale.Renovation.TotalRenovaciones)
	f.loans.AssertNotCalled(t, "ListForPeriod", mock.Anything, mock.Anything, mock.Anything)

	kpis, err := f.service.RefreshMonthlyKPIs(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, kpis.Renovation.TotalRenovaciones)
	assert.True(t, now.Equal(kpis.GeneratedAt))

	f.cache.AssertNumberOfCalls(t, "GetJSON", 1)
	f.cache.AssertCalled(t, "SetJSON", mock.Anything, key, kpis, time.Hour)
	f.assertExpectations(t)
}

func TestRefreshMonthlyKPIsCacheFailuresAreNotFatal(t *testing.T) {
	f := newFixture()
	f.cache.On("Delete", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	f.cache.On("SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	f.loans.On("ListForPeriod", mock.Anything, mock.Anything, mock.Anything).Return([]*domain.Loan{}, nil)

	kpis, err := f.service.RefreshMonthlyKPIs(context.Background(), &domain.MonthlyKPIsRequest{Year: 2024, Month: 11})
	require.NoError(t, err)
	assert.Equal(t, 11, kpis.Month)
}

func TestGetMonthlyKPIsRejectsBadMonth(t *testing.T) {
	f := newFixture()
	_, err := f.service.GetMonthlyKPIs(context.Background(), &domain.MonthlyKPIsRequest{Year: 2024, Month: 13})
	assert.Equal(t, customError.ErrCodeInvalidPeriod, customError.CodeOf(err))
	f.cache.AssertNotCalled(t, "GetJSON", mock.Anything, mock.Anything, mock.Anything)
}
