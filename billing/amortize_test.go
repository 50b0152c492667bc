package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/credit-engine/billing"
)

// =============================================================================
// FIXED INSTALLMENT TESTS
// =============================================================================

func dec(s string) decimal.Decimal {
	return billing.MustParseDecimal(s)
}

func TestMonthlyPayment_TwelveMonthLoan(t *testing.T) {
	// GIVEN: 12,000 at 12% effective annual over 12 months
	// WHEN: Computing the fixed installment
	// THEN: r = 1.12^(1/12)-1 ~ 0.0094888, payment = 112000*r ~ 1062.74

	payment, err := billing.MonthlyPayment(dec("12000"), dec("12"), 12)
	require.NoError(t, err)
	assert.True(t, payment.Equal(dec("1062.74")),
		"expected 1062.74, got %s", payment)
}

func TestMonthlyPayment_ZeroRate_EvenSplit(t *testing.T) {
	// GIVEN: A zero-interest credit
	// WHEN: Computing the installment
	// THEN: The principal splits evenly, P/n

	payment, err := billing.MonthlyPayment(dec("12000"), decimal.Zero, 12)
	require.NoError(t, err)
	assert.True(t, payment.Equal(dec("1000")), "expected 1000, got %s", payment)
}

func TestMonthlyPayment_PositiveRate_ExceedsEvenSplit(t *testing.T) {
	// For any positive rate the installment must carry a finance charge,
	// so it always exceeds the even split P/n.

	cases := []struct {
		principal string
		rate      string
		term      int
	}{
		{"12000", "12", 12},
		{"5000", "24.5", 6},
		{"250000", "8.75", 240},
		{"1000", "0.5", 3},
	}

	for _, tc := range cases {
		payment, err := billing.MonthlyPayment(dec(tc.principal), dec(tc.rate), tc.term)
		require.NoError(t, err)

		evenSplit := dec(tc.principal).DivRound(decimal.NewFromInt(int64(tc.term)), 2)
		assert.True(t, payment.GreaterThan(evenSplit),
			"P=%s r=%s n=%d: payment %s should exceed even split %s",
			tc.principal, tc.rate, tc.term, payment, evenSplit)
	}
}

func TestMonthlyPayment_SingleInstallment(t *testing.T) {
	// A one-month term repays the principal plus one month of interest.

	payment, err := billing.MonthlyPayment(dec("1000"), dec("12"), 1)
	require.NoError(t, err)
	assert.True(t, payment.GreaterThan(dec("1000")))
	assert.True(t, payment.LessThan(dec("1010")))
}

func TestMonthlyPayment_InvalidInputs(t *testing.T) {
	cases := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		term      int
	}{
		{"zero term", dec("1000"), dec("12"), 0},
		{"negative term", dec("1000"), dec("12"), -3},
		{"negative rate", dec("1000"), dec("-1"), 12},
		{"zero principal", decimal.Zero, dec("12"), 12},
		{"negative principal", dec("-500"), dec("12"), 12},
		{"rate beyond float range", dec("1000"), dec("1e310"), 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := billing.MonthlyPayment(tc.principal, tc.rate, tc.term)
			require.Error(t, err)

			var calcErr *billing.CalculationError
			assert.ErrorAs(t, err, &calcErr)
			assert.ErrorIs(t, err, billing.ErrCalculation)
			assert.True(t, billing.IsValidation(err))
		})
	}
}
