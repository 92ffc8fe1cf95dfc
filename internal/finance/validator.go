package finance

import (
	"time"

	"github.com/shopspring/decimal"

	customError "github.com/segyhp/cartera-engine/pkg/errors"
)

// ValidatePositiveAmount rejects amounts that are zero or negative.
func ValidatePositiveAmount(field string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return customError.WrapInvalidAmount(field, amount.String())
	}
	return nil
}

// ValidatePastDate rejects dates after now.
func ValidatePastDate(field string, date, now time.Time) error {
	if date.After(now) {
		return customError.WrapFutureDate(field, date.Format(time.RFC3339))
	}
	return nil
}

// ValidateLoanAmounts rejects a disbursement larger than the requested principal.
func ValidateLoanAmounts(amountGived, requestedAmount decimal.Decimal) error {
	if amountGived.GreaterThan(requestedAmount) {
		return customError.WrapAmountGivenExceedsRequested(amountGived.String(), requestedAmount.String())
	}
	return nil
}

// ValidateWeekDuration rejects loan types without a positive number of weeks.
func ValidateWeekDuration(weeks int) error {
	if weeks <= 0 {
		return customError.WrapInvalidWeekDuration(weeks)
	}
	return nil
}
