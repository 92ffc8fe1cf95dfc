package vdo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/segyhp/cartera-engine/pkg/errors"
)

// Signed on Friday 2024-11-01, so week 0 runs 28 Oct - 3 Nov.
var signDate = time.Date(2024, 11, 1, 11, 0, 0, 0, time.UTC)

// Wednesday: the last completed week ends Sunday 24 Nov.
var now = time.Date(2024, 11, 27, 10, 0, 0, 0, time.UTC)

func paidOn(y int, m time.Month, day int, amount float64) Payment {
	return Payment{Amount: amount, ReceivedAt: time.Date(y, m, day, 12, 0, 0, 0, time.UTC)}
}

func standardLoan(payments ...Payment) Loan {
	return Loan{
		ID:                    "loan-1",
		SignDate:              signDate,
		RequestedAmount:       3000,
		ExpectedWeeklyPayment: 300,
		LoanType:              &LoanType{WeekDuration: 14, Rate: 0.40},
		Payments:              payments,
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name            string
		loan            Loan
		mode            Mode
		expectedMissed  int
		expectedArrears float64
		expectedPartial float64
		expectedPending float64
	}{
		{
			name:            "no payments misses every completed week after the sign week",
			loan:            standardLoan(),
			mode:            ModeCurrent,
			expectedMissed:  3,
			expectedArrears: 900,
			expectedPending: 4200,
		},
		{
			name:            "next mode includes the week in progress",
			loan:            standardLoan(),
			mode:            ModeNext,
			expectedMissed:  4,
			expectedArrears: 1200,
			expectedPending: 4200,
		},
		{
			name: "paid every week",
			loan: standardLoan(
				paidOn(2024, 11, 5, 300),
				paidOn(2024, 11, 12, 300),
				paidOn(2024, 11, 19, 300),
			),
			mode:            ModeCurrent,
			expectedPending: 3300,
		},
		{
			name: "double payment covers the following week",
			loan: standardLoan(
				paidOn(2024, 11, 5, 600),
				paidOn(2024, 11, 19, 300),
			),
			mode:            ModeCurrent,
			expectedPending: 3300,
		},
		{
			name: "sign week payment becomes surplus but is not itself a due week",
			loan: standardLoan(
				paidOn(2024, 11, 2, 300),
			),
			mode:            ModeCurrent,
			expectedMissed:  2,
			expectedArrears: 600,
			expectedPending: 3900,
		},
		{
			name: "deficits do not carry into the next week",
			loan: standardLoan(
				paidOn(2024, 11, 6, 200),
				paidOn(2024, 11, 13, 300),
				paidOn(2024, 11, 20, 300),
			),
			mode:            ModeCurrent,
			expectedMissed:  1,
			expectedArrears: 300,
			expectedPending: 3400,
		},
		{
			name: "overpayment is reported as partial payment",
			loan: standardLoan(
				paidOn(2024, 11, 4, 450),
				paidOn(2024, 11, 11, 300),
				paidOn(2024, 11, 18, 300),
			),
			mode:            ModeCurrent,
			expectedPartial: 150,
			expectedPending: 3150,
		},
		{
			name: "payments after the evaluation window only reduce pending",
			loan: standardLoan(
				paidOn(2024, 11, 26, 900),
			),
			mode:            ModeCurrent,
			expectedMissed:  3,
			expectedArrears: 900,
			expectedPending: 3300,
		},
		{
			name: "arrears never exceed the pending balance",
			loan: Loan{
				SignDate:              signDate,
				RequestedAmount:       500,
				ExpectedWeeklyPayment: 300,
				LoanType:              &LoanType{WeekDuration: 14, Rate: 0},
			},
			mode:            ModeCurrent,
			expectedMissed:  3,
			expectedArrears: 500,
			expectedPending: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Calculate(tt.loan, now, tt.mode)

			assert.Equal(t, tt.expectedMissed, result.WeeksWithoutPayment)
			assert.InDelta(t, tt.expectedArrears, result.ArrearsAmount, 0.001)
			assert.InDelta(t, tt.expectedPartial, result.PartialPayment, 0.001)
			assert.InDelta(t, tt.expectedPending, result.PendingAmount, 0.001)
			assert.LessOrEqual(t, result.ArrearsAmount, result.PendingAmount)
			assert.GreaterOrEqual(t, result.PartialPayment, 0.0)
		})
	}
}

func TestCalculateLoanSignedThisWeek(t *testing.T) {
	loan := standardLoan()
	loan.SignDate = time.Date(2024, 11, 25, 9, 0, 0, 0, time.UTC)

	current := Calculate(loan, now, ModeCurrent)
	assert.Equal(t, 0, current.WeeksWithoutPayment)

	next := Calculate(loan, now, ModeNext)
	assert.Equal(t, 0, next.WeeksWithoutPayment)
}

func TestExpectedWeeklyPayment(t *testing.T) {
	derived := Loan{RequestedAmount: 3000, LoanType: &LoanType{WeekDuration: 14, Rate: 0.40}}
	assert.InDelta(t, 300, ExpectedWeeklyPayment(derived), 0.0001)

	explicit := derived
	explicit.ExpectedWeeklyPayment = 320
	assert.Equal(t, 320.0, ExpectedWeeklyPayment(explicit))

	assert.Equal(t, 0.0, ExpectedWeeklyPayment(Loan{RequestedAmount: 3000}))
	assert.Equal(t, 0.0, ExpectedWeeklyPayment(Loan{RequestedAmount: 3000, LoanType: &LoanType{}}))
}

func TestCalculateWithoutTermsNeverMisses(t *testing.T) {
	loan := Loan{SignDate: signDate, RequestedAmount: 1000}

	result := Calculate(loan, now, ModeCurrent)

	assert.Equal(t, 0, result.WeeksWithoutPayment)
	assert.Equal(t, 1000.0, result.PendingAmount)
}

func TestPaymentDateFallsBackToCreatedAt(t *testing.T) {
	created := time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC)
	p := Payment{Amount: 300, CreatedAt: created}
	assert.True(t, created.Equal(p.Date()))

	result := Calculate(standardLoan(p, paidOn(2024, 11, 12, 300), paidOn(2024, 11, 19, 300)), now, ModeCurrent)
	assert.Equal(t, 0, result.WeeksWithoutPayment)
}

func TestEvaluationEndDate(t *testing.T) {
	assert.True(t, time.Date(2024, 11, 24, 23, 59, 59, 999_000_000, time.UTC).Equal(EvaluationEndDate(now, ModeCurrent)))
	assert.True(t, time.Date(2024, 12, 1, 23, 59, 59, 999_000_000, time.UTC).Equal(EvaluationEndDate(now, ModeNext)))
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeCurrent, mode)

	mode, err = ParseMode("next")
	require.NoError(t, err)
	assert.Equal(t, ModeNext, mode)

	_, err = ParseMode("later")
	assert.True(t, errors.Is(err, customError.ErrInvalidMode))
}
