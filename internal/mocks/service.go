package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/cartera-engine/internal/domain"
)

type MockPortfolioService struct {
	mock.Mock
}

func (m *MockPortfolioService) GetLoanVDO(ctx context.Context, loanID, mode string) (*domain.LoanVDOResponse, error) {
	args := m.Called(ctx, loanID, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanVDOResponse), args.Error(1)
}

func (m *MockPortfolioService) GetPaymentChronology(ctx context.Context, loanID string) (*domain.ChronologyResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChronologyResponse), args.Error(1)
}

func (m *MockPortfolioService) SplitPayment(ctx context.Context, loanID string, req *domain.SplitPaymentRequest) (*domain.SplitPaymentResponse, error) {
	args := m.Called(ctx, loanID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SplitPaymentResponse), args.Error(1)
}

func (m *MockPortfolioService) CalculateRenewal(ctx context.Context, req *domain.RenewalRequest) (*domain.RenewalResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewalResponse), args.Error(1)
}

func (m *MockPortfolioService) GetWeeklyCVReport(ctx context.Context, date time.Time) (*domain.CVReport, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CVReport), args.Error(1)
}

func (m *MockPortfolioService) RefreshWeeklyCVReport(ctx context.Context, date time.Time) (*domain.CVReport, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CVReport), args.Error(1)
}

func (m *MockPortfolioService) GetMonthlyKPIs(ctx context.Context, req *domain.MonthlyKPIsRequest) (*domain.MonthlyKPIs, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MonthlyKPIs), args.Error(1)
}

func (m *MockPortfolioService) RefreshMonthlyKPIs(ctx context.Context, req *domain.MonthlyKPIsRequest) (*domain.MonthlyKPIs, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MonthlyKPIs), args.Error(1)
}

func NewMockPortfolioService() *MockPortfolioService {
	return &MockPortfolioService{}
}
