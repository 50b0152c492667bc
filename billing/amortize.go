/*
amortize.go - Fixed installment calculation

PURPOSE:
  Turns a principal / annual-rate / term triple into the fixed monthly
  payment that fully retires the principal plus finance charge over the
  term.

FORMULA:
  r = (1 + annualRatePct/100)^(1/12) - 1   monthly equivalent of an
                                           annual effective rate (TEA),
                                           not the nominal rate / 12
  payment = P * r * (1+r)^n / ((1+r)^n - 1)

  Rounded to 2 decimal places, half-up. A zero rate degenerates to P/n.

ROUNDING RESIDUE:
  Rounding the installment can leave a residual penny against the
  theoretical principal across the full schedule. The engine does not
  reconcile this at schedule completion.

SEE ALSO:
  - schedule.go: materializes the installment into obligations
*/
package billing

import (
	"math"

	"github.com/shopspring/decimal"
)

// MonthlyPayment computes the fixed monthly installment for a credit.
// principal must be positive, annualRatePct non-negative, and
// termMonths at least 1; anything else is a CalculationError. The
// result is rounded to 2 decimals, half-up, and is never NaN or Inf.
func MonthlyPayment(principal, annualRatePct decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if termMonths <= 0 {
		return decimal.Zero, &CalculationError{Reason: "term must be at least one month"}
	}
	if annualRatePct.IsNegative() {
		return decimal.Zero, &CalculationError{Reason: "interest rate must not be negative"}
	}
	if !principal.IsPositive() {
		return decimal.Zero, &CalculationError{Reason: "principal must be positive"}
	}

	months := decimal.NewFromInt(int64(termMonths))

	// Zero rate: the closed-form formula divides by zero, but the
	// payment degenerates to an even principal split.
	if annualRatePct.IsZero() {
		return principal.DivRound(months, 2), nil
	}

	// The fractional exponent runs through float64; a rate too large to
	// represent there would overflow to +Inf and cannot be priced.
	annual, _ := annualRatePct.Float64()
	monthly := math.Pow(1+annual/100, 1.0/12) - 1
	if math.IsNaN(monthly) || math.IsInf(monthly, 0) {
		return decimal.Zero, &CalculationError{Reason: "interest rate is out of range"}
	}
	monthlyRate := decimal.NewFromFloat(monthly)

	ratePowMonths := monthlyRate.Add(decimal.NewFromInt(1)).Pow(months)

	payment := principal.
		Mul(monthlyRate).
		Mul(ratePowMonths).
		DivRound(ratePowMonths.Sub(decimal.NewFromInt(1)), 2)

	return payment, nil
}
