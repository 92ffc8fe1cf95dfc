package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/cartera-engine/internal/calendar"
	"github.com/segyhp/cartera-engine/internal/config"
	"github.com/segyhp/cartera-engine/internal/domain"
	"github.com/segyhp/cartera-engine/pkg/response"
)

const dateLayout = "2006-01-02"

type PortfolioService interface {
	GetLoanVDO(ctx context.Context, loanID, mode string) (*domain.LoanVDOResponse, error)
	GetPaymentChronology(ctx context.Context, loanID string) (*domain.ChronologyResponse, error)
	SplitPayment(ctx context.Context, loanID string, req *domain.SplitPaymentRequest) (*domain.SplitPaymentResponse, error)
	CalculateRenewal(ctx context.Context, req *domain.RenewalRequest) (*domain.RenewalResponse, error)
	GetWeeklyCVReport(ctx context.Context, date time.Time) (*domain.CVReport, error)
	GetMonthlyKPIs(ctx context.Context, req *domain.MonthlyKPIsRequest) (*domain.MonthlyKPIs, error)
}

type PortfolioHandler struct {
	service   PortfolioService
	validator *validator.Validate
	location  *time.Location
	now       func() time.Time
}

func NewPortfolioHandler(service PortfolioService, cfg *config.Config) *PortfolioHandler {
	return &PortfolioHandler{
		service:   service,
		validator: newValidator(),
		location:  cfg.Location(),
		now:       time.Now,
	}
}

// RegisterRoutes mounts the portfolio API on api.
func (h *PortfolioHandler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/loans/{loanId}/vdo", h.GetLoanVDO).Methods("GET")
	api.HandleFunc("/loans/{loanId}/chronology", h.GetPaymentChronology).Methods("GET")
	api.HandleFunc("/loans/{loanId}/payment-split", h.SplitPayment).Methods("POST")
	api.HandleFunc("/renewals/preview", h.PreviewRenewal).Methods("POST")
	api.HandleFunc("/portfolio/cv", h.GetCVReport).Methods("GET")
	api.HandleFunc("/portfolio/kpis/{year:[0-9]+}/{month:[0-9]+}", h.GetMonthlyKPIs).Methods("GET")
	api.HandleFunc("/calendar/weeks/{year:[0-9]+}/{month:[0-9]+}", h.GetMonthWeeks).Methods("GET")
}

// GetLoanVDO handles GET /loans/{loanId}/vdo?mode=current|next
func (h *PortfolioHandler) GetLoanVDO(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	resp, err := h.service.GetLoanVDO(r.Context(), loanID, r.URL.Query().Get("mode"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, resp)
}

// GetPaymentChronology handles GET /loans/{loanId}/chronology
func (h *PortfolioHandler) GetPaymentChronology(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	resp, err := h.service.GetPaymentChronology(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, resp)
}

// SplitPayment handles POST /loans/{loanId}/payment-split
func (h *PortfolioHandler) SplitPayment(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	var req domain.SplitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON payload", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	resp, err := h.service.SplitPayment(r.Context(), loanID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, resp)
}

// PreviewRenewal handles POST /renewals/preview
func (h *PortfolioHandler) PreviewRenewal(w http.ResponseWriter, r *http.Request) {
	var req domain.RenewalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON payload", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	resp, err := h.service.CalculateRenewal(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, resp)
}

// GetCVReport handles GET /portfolio/cv?date=YYYY-MM-DD. Without a date
// the current week is reported.
func (h *PortfolioHandler) GetCVReport(w http.ResponseWriter, r *http.Request) {
	date := h.now().In(h.location)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, h.location)
		if err != nil {
			response.BadRequest(w, "Invalid date, expected YYYY-MM-DD", err)
			return
		}
		date = parsed
	}

	report, err := h.service.GetWeeklyCVReport(r.Context(), date)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, report)
}

// GetMonthlyKPIs handles GET /portfolio/kpis/{year}/{month}
func (h *PortfolioHandler) GetMonthlyKPIs(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.yearMonth(w, r)
	if !ok {
		return
	}

	req := domain.MonthlyKPIsRequest{Year: year, Month: month}

	query := r.URL.Query()
	if raw := query.Get("previousBalance"); raw != "" {
		balance, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Invalid previousBalance", err)
			return
		}
		req.PreviousBalance = &balance
	}
	if raw := query.Get("previousRate"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			response.BadRequest(w, "Invalid previousRate", err)
			return
		}
		req.PreviousRate = &rate
	}

	kpis, err := h.service.GetMonthlyKPIs(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, kpis)
}

// GetMonthWeeks handles GET /calendar/weeks/{year}/{month}
func (h *PortfolioHandler) GetMonthWeeks(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.yearMonth(w, r)
	if !ok {
		return
	}

	weeks := calendar.WeeksInMonth(year, time.Month(month), h.location)
	resp := domain.MonthWeeksResponse{
		Year:  year,
		Month: month,
		Weeks: make([]domain.WeekView, 0, len(weeks)),
	}
	for _, week := range weeks {
		resp.Weeks = append(resp.Weeks, domain.WeekView{
			WeekRange: week,
			Label:     calendar.FormatWeekRange(week),
		})
	}

	response.Success(w, resp)
}

// yearMonth reads and validates the {year}/{month} path variables, writing
// a 400 when they are out of range.
func (h *PortfolioHandler) yearMonth(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	vars := mux.Vars(r)

	year, yearErr := strconv.Atoi(vars["year"])
	month, monthErr := strconv.Atoi(vars["month"])
	if yearErr != nil || monthErr != nil {
		response.BadRequest(w, "Invalid year or month", nil)
		return 0, 0, false
	}

	period := domain.MonthlyKPIsRequest{Year: year, Month: month}
	if err := h.validator.Struct(period); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return 0, 0, false
	}
	return year, month, true
}
