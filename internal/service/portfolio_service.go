package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/segyhp/cartera-engine/internal/cache"
	"github.com/segyhp/cartera-engine/internal/chronology"
	"github.com/segyhp/cartera-engine/internal/config"
	"github.com/segyhp/cartera-engine/internal/domain"
	"github.com/segyhp/cartera-engine/internal/finance"
	"github.com/segyhp/cartera-engine/internal/metrics"
	"github.com/segyhp/cartera-engine/internal/repository"
	"github.com/segyhp/cartera-engine/internal/vdo"
	customError "github.com/segyhp/cartera-engine/pkg/errors"
)

type PortfolioService struct {
	LoanRepo    repository.LoanRepository
	PaymentRepo repository.PaymentRepository
	cache       cache.Cache
	config      *config.Config
	logger      zerolog.Logger
	chronology  *chronology.Builder
	now         func() time.Time
}

// Option customizes a PortfolioService.
type Option func(*PortfolioService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *PortfolioService) {
		s.now = now
	}
}

func NewPortfolioService(
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	reportCache cache.Cache,
	config *config.Config,
	logger zerolog.Logger,
	opts ...Option,
) *PortfolioService {
	s := &PortfolioService{
		LoanRepo:    loanRepo,
		PaymentRepo: paymentRepo,
		cache:       reportCache,
		config:      config,
		logger:      logger.With().Str("component", "portfolio_service").Logger(),
		chronology:  chronology.NewBuilder(chronology.WithAmountPerWeek(config.GetChronologyAmountPerWeek())),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func observe(operation string, start time.Time, err *error) {
	metrics.ObserveCalculation(operation, start, *err)
}

// clock returns the current time in the business timezone.
func (s *PortfolioService) clock() time.Time {
	return s.now().In(s.config.Location())
}

func (s *PortfolioService) loadLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(loanID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

func (s *PortfolioService) loadLoanWithPayments(ctx context.Context, loanID string) (*domain.Loan, []*domain.Payment, error) {
	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}

	payments, err := s.PaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}
	return loan, payments, nil
}

// GetLoanVDO simulates the arrears of a loan up to the evaluation date of
// the given mode. An empty mode uses the configured default.
func (s *PortfolioService) GetLoanVDO(ctx context.Context, loanID, modeName string) (resp *domain.LoanVDOResponse, err error) {
	defer observe("vdo", time.Now(), &err)

	mode := s.config.GetDefaultVDOMode()
	if modeName != "" {
		mode, err = vdo.ParseMode(modeName)
		if err != nil {
			return nil, err
		}
	}

	loan, payments, err := s.loadLoanWithPayments(ctx, loanID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	result := vdo.Calculate(toVDOLoan(loan, payments), now, mode)

	s.logger.Debug().
		Str("loan_id", loanID).
		Str("mode", string(mode)).
		Int("weeks_without_payment", result.WeeksWithoutPayment).
		Float64("arrears", result.ArrearsAmount).
		Msg("vdo calculated")

	return &domain.LoanVDOResponse{
		LoanID:         loanID,
		Mode:           mode,
		EvaluatedUntil: vdo.EvaluationEndDate(now, mode),
		Result:         result,
	}, nil
}

// GetPaymentChronology rebuilds the weekly payment timeline of a loan.
func (s *PortfolioService) GetPaymentChronology(ctx context.Context, loanID string) (resp *domain.ChronologyResponse, err error) {
	defer observe("chronology", time.Now(), &err)

	loan, payments, err := s.loadLoanWithPayments(ctx, loanID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	input := toChronologyLoan(loan, payments)
	items := s.chronology.Build(input, now)

	s.logger.Debug().
		Str("loan_id", loanID).
		Int("items", len(items)).
		Msg("chronology built")

	return &domain.ChronologyResponse{
		LoanID:  loanID,
		EndDate: s.chronology.EndDate(input, now),
		Items:   items,
	}, nil
}

// SplitPayment divides a payment into profit and capital return, and
// reports the lead commission and the split of what remains owed.
func (s *PortfolioService) SplitPayment(ctx context.Context, loanID string, req *domain.SplitPaymentRequest) (resp *domain.SplitPaymentResponse, err error) {
	defer observe("payment_split", time.Now(), &err)

	if err := finance.ValidatePositiveAmount("amount", req.Amount); err != nil {
		return nil, err
	}

	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	isBadDebt := loan.IsBadDebt()
	split := finance.CalculatePaymentProfit(req.Amount, loan.ProfitAmount, loan.TotalDebtAcquired, isBadDebt)

	pending := finance.CalculatePendingAmount(loan.PendingAmountStored, req.Amount)

	return &domain.SplitPaymentResponse{
		LoanID:         loanID,
		Amount:         req.Amount,
		IsBadDebt:      isBadDebt,
		LeadCommission: finance.CalculateCommission(req.Amount, s.config.GetLeadCommissionRate()),
		Split:          split,
		PendingAfter:   finance.SplitPendingBalance(pending, loan.ProfitAmount, loan.TotalDebtAcquired),
		ProgressAfter:  finance.CalculatePaymentProgress(loan.TotalDebtAcquired.Sub(pending), loan.TotalDebtAcquired),
	}, nil
}

// CalculateRenewal previews the figures of a loan that renews previousLoanID.
func (s *PortfolioService) CalculateRenewal(ctx context.Context, req *domain.RenewalRequest) (resp *domain.RenewalResponse, err error) {
	defer observe("renewal", time.Now(), &err)

	if err := finance.ValidatePositiveAmount("requested_amount", req.RequestedAmount); err != nil {
		return nil, err
	}
	if req.Rate.IsNegative() {
		return nil, customError.WrapInvalidAmount("rate", req.Rate.String())
	}
	if err := finance.ValidateWeekDuration(req.WeekDuration); err != nil {
		return nil, err
	}
	if req.SignDate != nil {
		if err := finance.ValidatePastDate("sign_date", *req.SignDate, s.clock()); err != nil {
			return nil, err
		}
	}

	previous, err := s.loadLoan(ctx, req.PreviousLoanID)
	if err != nil {
		return nil, err
	}

	prev := toPreviousLoan(previous)
	renewal := finance.CalculateRenewalMetrics(req.RequestedAmount, req.Rate, req.WeekDuration, prev)
	if err := finance.ValidateLoanAmounts(renewal.AmountGived, req.RequestedAmount); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("previous_loan_id", req.PreviousLoanID).
		Str("requested_amount", req.RequestedAmount.String()).
		Str("profit_heredado", renewal.ProfitHeredado.String()).
		Str("amount_gived", renewal.AmountGived.String()).
		Msg("renewal previewed")

	return &domain.RenewalResponse{
		PreviousLoanID: req.PreviousLoanID,
		ProfitRatio:    finance.CalculateProfitHeredado(prev).ProfitRatio,
		LeadCommission: finance.CalculateCommission(req.RequestedAmount, s.config.GetLeadCommissionRate()),
		Metrics:        renewal,
	}, nil
}
