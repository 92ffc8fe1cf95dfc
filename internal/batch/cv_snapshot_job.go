package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/segyhp/cartera-engine/internal/calendar"
	"github.com/segyhp/cartera-engine/internal/domain"
)

type ReportService interface {
	RefreshWeeklyCVReport(ctx context.Context, date time.Time) (*domain.CVReport, error)
	RefreshMonthlyKPIs(ctx context.Context, req *domain.MonthlyKPIsRequest) (*domain.MonthlyKPIs, error)
}

// CVSnapshotJob freezes the CV report of the week that just closed. When
// that week was the last one owned by its month, the month's KPIs are
// computed as well.
type CVSnapshotJob struct {
	service  ReportService
	location *time.Location
	logger   zerolog.Logger
	now      func() time.Time
}

func NewCVSnapshotJob(service ReportService, location *time.Location, logger zerolog.Logger) *CVSnapshotJob {
	if service == nil || location == nil {
		panic("CVSnapshotJob dependencies cannot be nil")
	}
	return &CVSnapshotJob{
		service:  service,
		location: location,
		logger:   logger.With().Str("job", "cv_snapshot").Logger(),
		now:      time.Now,
	}
}

func (j *CVSnapshotJob) Run(ctx context.Context) error {
	startTime := time.Now()

	closed := calendar.PreviousWeek(calendar.ActiveWeekRange(j.now().In(j.location)))
	log := j.logger.With().Str("week", calendar.FormatWeekRange(closed)).Logger()
	log.Info().Msg("Starting CV snapshot job")

	report, err := j.service.RefreshWeeklyCVReport(ctx, closed.Start)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build CV snapshot")
		return fmt.Errorf("cv snapshot for %s: %w", calendar.FormatWeekRange(closed), err)
	}

	log.Info().
		Str("snapshot_id", report.SnapshotID.String()).
		Int("total_activos", report.Summary.TotalActivos).
		Int("en_cv", report.Summary.EnCV).
		Int("al_corriente", report.Summary.AlCorriente).
		Int("exited_cv", report.ExitedCV).
		Int("excluded", report.Excluded).
		Msg("CV snapshot stored")

	owner := calendar.WeekBelongsToMonth(closed.Start)
	next := calendar.NextWeek(closed)
	if calendar.WeekBelongsToMonth(next.Start) != owner {
		kpis, err := j.service.RefreshMonthlyKPIs(ctx, &domain.MonthlyKPIsRequest{
			Year:  owner.Year,
			Month: int(owner.Month),
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to compute monthly KPIs for closed month")
			return fmt.Errorf("monthly kpis for %04d-%02d: %w", owner.Year, owner.Month, err)
		}

		log.Info().
			Int("year", kpis.Year).
			Int("month", kpis.Month).
			Int("balance", kpis.ClientBalance.Balance).
			Str("tasa_renovacion", kpis.Renovation.TasaRenovacion.String()).
			Msg("Monthly KPIs stored for closed month")
	}

	log.Info().Dur("duration", time.Since(startTime)).Msg("CV snapshot job finished")
	return nil
}
