package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound                = errors.New("loan not found")
	ErrInvalidAmount               = errors.New("amount must be greater than zero")
	ErrFutureDate                  = errors.New("date cannot be in the future")
	ErrAmountGivenExceedsRequested = errors.New("amount given cannot exceed requested amount")
	ErrInvalidWeekDuration         = errors.New("week duration must be greater than zero")
	ErrInvalidMode                 = errors.New("invalid evaluation mode")
	ErrInvalidPeriod               = errors.New("invalid period")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLoanNotFound                = "LOAN_NOT_FOUND"
	ErrCodeInvalidAmount               = "INVALID_AMOUNT"
	ErrCodeFutureDate                  = "FUTURE_DATE"
	ErrCodeAmountGivenExceedsRequested = "AMOUNT_GIVEN_EXCEEDS_REQUESTED"
	ErrCodeInvalidWeekDuration         = "INVALID_WEEK_DURATION"
	ErrCodeInvalidMode                 = "INVALID_MODE"
	ErrCodeInvalidPeriod               = "INVALID_PERIOD"
	ErrCodeValidation                  = "VALIDATION_ERROR"
	ErrCodeDatabaseError               = "DATABASE_ERROR"
	ErrCodeCacheError                  = "CACHE_ERROR"
)

// CodeOf returns the business code carried by err, or "" when err is not a BusinessError.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapInvalidAmount(field, amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("%s must be greater than zero, got %s", field, amount),
		ErrInvalidAmount,
	)
}

func WrapFutureDate(field, date string) *BusinessError {
	return NewBusinessError(
		ErrCodeFutureDate,
		fmt.Sprintf("%s %s is in the future", field, date),
		ErrFutureDate,
	)
}

func WrapAmountGivenExceedsRequested(amountGived, requested string) *BusinessError {
	return NewBusinessError(
		ErrCodeAmountGivenExceedsRequested,
		fmt.Sprintf("Amount given %s exceeds requested amount %s", amountGived, requested),
		ErrAmountGivenExceedsRequested,
	)
}

func WrapInvalidWeekDuration(weeks int) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidWeekDuration,
		fmt.Sprintf("Week duration must be greater than zero, got %d", weeks),
		ErrInvalidWeekDuration,
	)
}

func WrapInvalidMode(mode string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidMode,
		fmt.Sprintf("Unknown evaluation mode %q", mode),
		ErrInvalidMode,
	)
}

func WrapInvalidPeriod(message string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidPeriod, message, ErrInvalidPeriod)
}

func WrapValidation(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		"request validation failed",
		err,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
