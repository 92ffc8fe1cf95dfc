package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessErrorWrapping(t *testing.T) {
	tests := []struct {
		name     string
		err      *BusinessError
		code     string
		sentinel error
	}{
		{"loan not found", WrapLoanNotFound("loan-1"), ErrCodeLoanNotFound, ErrLoanNotFound},
		{"invalid amount", WrapInvalidAmount("amount", "-5"), ErrCodeInvalidAmount, ErrInvalidAmount},
		{"future date", WrapFutureDate("sign_date", "2030-01-01"), ErrCodeFutureDate, ErrFutureDate},
		{"amount given", WrapAmountGivenExceedsRequested("2000", "1000"), ErrCodeAmountGivenExceedsRequested, ErrAmountGivenExceedsRequested},
		{"week duration", WrapInvalidWeekDuration(0), ErrCodeInvalidWeekDuration, ErrInvalidWeekDuration},
		{"mode", WrapInvalidMode("later"), ErrCodeInvalidMode, ErrInvalidMode},
		{"period", WrapInvalidPeriod("month 13 out of range"), ErrCodeInvalidPeriod, ErrInvalidPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)

			assert.Equal(t, tt.code, CodeOf(wrapped))
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Contains(t, tt.err.Error(), tt.code)
		})
	}
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, "", CodeOf(errors.New("boom")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestInfrastructureErrorsKeepCause(t *testing.T) {
	cause := errors.New("connection refused")

	assert.ErrorIs(t, WrapDatabaseError(cause), cause)
	assert.ErrorIs(t, WrapCacheError(cause), cause)
	assert.Equal(t, "DATABASE_ERROR: database operation failed (connection refused)", WrapDatabaseError(cause).Error())
}
