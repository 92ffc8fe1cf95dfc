package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/cartera-engine/internal/cache"
	"github.com/segyhp/cartera-engine/internal/calendar"
	"github.com/segyhp/cartera-engine/internal/domain"
	"github.com/segyhp/cartera-engine/internal/metrics"
	"github.com/segyhp/cartera-engine/internal/portfolio"
	customError "github.com/segyhp/cartera-engine/pkg/errors"
)

// GetWeeklyCVReport returns the CV report of the business week containing
// date, from cache when available.
func (s *PortfolioService) GetWeeklyCVReport(ctx context.Context, date time.Time) (*domain.CVReport, error) {
	week := calendar.ActiveWeekRange(date.In(s.config.Location()))
	key := cache.CVReportKey(week)

	var cached domain.CVReport
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	return s.refreshCVReport(ctx, week, key)
}

// RefreshWeeklyCVReport recomputes the CV report of the week containing
// date and overwrites the cached copy.
// A failed refresh leaves no cached copy behind.
func (s *PortfolioService) RefreshWeeklyCVReport(ctx context.Context, date time.Time) (*domain.CVReport, error) {
	week := calendar.ActiveWeekRange(date.In(s.config.Location()))
	key := cache.CVReportKey(week)
	s.invalidate(ctx, key)
	return s.refreshCVReport(ctx, week, key)
}

func (s *PortfolioService) refreshCVReport(ctx context.Context, week calendar.WeekRange, key string) (report *domain.CVReport, err error) {
	defer observe("cv_report", time.Now(), &err)

	report, err = s.buildCVReport(ctx, week)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, report)
	return report, nil
}

func (s *PortfolioService) buildCVReport(ctx context.Context, week calendar.WeekRange) (*domain.CVReport, error) {
	previous := calendar.PreviousWeek(week)

	loans, err := s.LoanRepo.ListOpenDuring(ctx, week.Start, week.End)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	ids := make([]string, len(loans))
	for i, loan := range loans {
		ids[i] = loan.ID
	}

	payments, err := s.PaymentRepo.ListByLoanIDs(ctx, ids, previous.Start, week.End)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	byLoan := domain.GroupByLoan(payments)

	entries := s.classify(loans, byLoan, week, previous)

	report := &domain.CVReport{
		SnapshotID:  uuid.New(),
		Week:        week,
		WeekLabel:   calendar.FormatWeekRange(week),
		GeneratedAt: s.clock(),
		Entries:     entries,
	}
	for _, entry := range entries {
		metrics.CountCVStatus(string(entry.Status))

		switch entry.Status {
		case portfolio.StatusExcluido:
			report.Excluded++
			continue
		case portfolio.StatusEnCV:
			report.Summary.EnCV++
		case portfolio.StatusAlCorriente:
			report.Summary.AlCorriente++
		}
		report.Summary.TotalActivos++
		if entry.ExitedCVThisWeek {
			report.ExitedCV++
		}
	}

	s.logger.Info().
		Str("week", report.WeekLabel).
		Int("loans", len(loans)).
		Int("en_cv", report.Summary.EnCV).
		Int("al_corriente", report.Summary.AlCorriente).
		Int("exited_cv", report.ExitedCV).
		Int("excluded", report.Excluded).
		Msg("cv report built")

	return report, nil
}

// classify runs the CV classification of every loan on a bounded pool of
// workers. Results keep the order of loans.
func (s *PortfolioService) classify(loans []*domain.Loan, payments map[string][]*domain.Payment, week, previous calendar.WeekRange) []portfolio.CVResult {
	results := make([]portfolio.CVResult, len(loans))

	workers := s.config.Scheduler.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, loan := range loans {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, loan *domain.Loan) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = portfolio.CalculateCVStatus(
				toPortfolioLoan(loan),
				toPortfolioPayments(payments[loan.ID]),
				week,
				&previous,
			)
		}(i, loan)
	}
	wg.Wait()

	return results
}

// GetMonthlyKPIs computes client balance and renewal KPIs over the weeks
// owned by a month, from cache when available.
func (s *PortfolioService) GetMonthlyKPIs(ctx context.Context, req *domain.MonthlyKPIsRequest) (*domain.MonthlyKPIs, error) {
	return s.monthlyKPIs(ctx, req, false)
}

// RefreshMonthlyKPIs recomputes the KPIs of a month and overwrites the
// cached copy.
func (s *PortfolioService) RefreshMonthlyKPIs(ctx context.Context, req *domain.MonthlyKPIsRequest) (*domain.MonthlyKPIs, error) {
	return s.monthlyKPIs(ctx, req, true)
}

func (s *PortfolioService) monthlyKPIs(ctx context.Context, req *domain.MonthlyKPIsRequest, refresh bool) (kpis *domain.MonthlyKPIs, err error) {
	defer observe("monthly_kpis", time.Now(), &err)

	if req.Month < 1 || req.Month > 12 {
		return nil, customError.WrapInvalidPeriod(fmt.Sprintf("month %d out of range", req.Month))
	}

	loc := s.config.Location()
	month := time.Month(req.Month)
	start, end, ok := calendar.MonthPeriod(req.Year, month, loc)
	if !ok {
		return nil, customError.WrapInvalidPeriod(fmt.Sprintf("%04d-%02d owns no business weeks", req.Year, req.Month))
	}

	key := cache.MonthlyKPIsKey(req.Year, req.Month, req.PreviousBalance, req.PreviousRate)
	if refresh {
		s.invalidate(ctx, key)
	} else {
		var cached domain.MonthlyKPIs
		if s.lookup(ctx, key, &cached) {
			return &cached, nil
		}
	}

	loans, err := s.LoanRepo.ListForPeriod(ctx, start, end)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	input := make([]portfolio.Loan, len(loans))
	for i, loan := range loans {
		input[i] = toPortfolioLoan(loan)
	}

	kpis = &domain.MonthlyKPIs{
		Year:          req.Year,
		Month:         req.Month,
		PeriodStart:   start,
		PeriodEnd:     end,
		Weeks:         calendar.WeeksInMonth(req.Year, month, loc),
		ClientBalance: portfolio.CalculateClientBalance(input, start, end, req.PreviousBalance),
		Renovation:    portfolio.RenovationKPIsForPeriod(input, start, end, req.PreviousRate),
		GeneratedAt:   s.clock(),
	}

	s.logger.Info().
		Int("year", req.Year).
		Int("month", req.Month).
		Int("balance", kpis.ClientBalance.Balance).
		Str("tasa_renovacion", kpis.Renovation.TasaRenovacion.String()).
		Msg("monthly kpis computed")

	s.store(ctx, key, kpis)
	return kpis, nil
}

// lookup reads a cached report. Cache failures count as a miss.
func (s *PortfolioService) lookup(ctx context.Context, key string, dest any) bool {
	found, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		s.logger.Warn().Err(customError.WrapCacheError(err)).Str("key", key).Msg("report cache read failed")
		found = false
	}
	metrics.CountCacheLookup(found)
	return found
}

func (s *PortfolioService) store(ctx context.Context, key string, value any) {
	if err := s.cache.SetJSON(ctx, key, value, s.config.Redis.ReportTTL); err != nil {
		s.logger.Warn().Err(customError.WrapCacheError(err)).Str("key", key).Msg("report cache write failed")
	}
}

func (s *PortfolioService) invalidate(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(customError.WrapCacheError(err)).Str("key", key).Msg("report cache delete failed")
	}
}
