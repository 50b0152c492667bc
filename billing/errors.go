/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Product packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Validation errors  - malformed input, rejected before any mutation
  2. Domain conflicts   - business-rule violations (payment mismatch,
                          insufficient credit, deletion with debt)
  3. Not-found          - expected, non-fatal outcomes callers branch on
  4. Infrastructure     - store or collaborator failures

USAGE:
  if errors.Is(err, billing.ErrNoOutstandingDebt) {
      // normal outcome: nothing is due for this account
  }

SEE ALSO:
  - bill.go:    returns ErrNoOutstandingDebt
  - payment.go: returns PaymentMismatchError
  - loan/, card/: wrap these with product context
*/
package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoOutstandingDebt is returned when no open obligation falls
	// before the payment cutoff. This is an expected outcome, not a
	// systemic failure.
	ErrNoOutstandingDebt = errors.New("no outstanding debt")

	// ErrPaymentMismatch is returned when an offered payment differs
	// from the aggregated bill total. No obligation is mutated.
	ErrPaymentMismatch = errors.New("payment amount differs from current debt")

	// ErrInsufficientCredit is returned when a card charge exceeds the
	// currently available credit.
	ErrInsufficientCredit = errors.New("insufficient available credit")

	// ErrOutstandingBalance is returned when deleting an account that
	// still carries debt.
	ErrOutstandingBalance = errors.New("account has an outstanding balance")

	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrObligationNotFound is returned when a referenced obligation doesn't exist.
	ErrObligationNotFound = errors.New("obligation not found")

	// ErrCalculation is returned when amortization inputs are outside
	// the formula's domain (zero term, negative rate).
	ErrCalculation = errors.New("installment calculation failed")

	// ErrInvalidInput is returned for malformed requests (missing rate
	// or term, non-positive amounts). Rejected before any mutation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBusinessRule is returned for customer-classification rule
	// violations during account creation.
	ErrBusinessRule = errors.New("business rule violation")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PaymentMismatchError reports the exact-match reconciliation failure.
type PaymentMismatchError struct {
	AccountID AccountID
	Offered   decimal.Decimal
	Expected  decimal.Decimal
}

func (e *PaymentMismatchError) Error() string {
	return fmt.Sprintf("payment mismatch for %s: offered %s, debt is %s",
		e.AccountID, e.Offered.StringFixed(2), e.Expected.StringFixed(2))
}

func (e *PaymentMismatchError) Unwrap() error { return ErrPaymentMismatch }

// InsufficientCreditError reports a charge that exceeds availability.
type InsufficientCreditError struct {
	AccountID AccountID
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("insufficient credit on %s: available %s, requested %s",
		e.AccountID, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientCreditError) Unwrap() error { return ErrInsufficientCredit }

// CalculationError reports amortization inputs outside the formula's domain.
type CalculationError struct {
	Reason string
}

func (e *CalculationError) Error() string {
	return "installment calculation failed: " + e.Reason
}

func (e *CalculationError) Unwrap() error { return ErrCalculation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record or an
// empty bill. Callers branch on these rather than treating them as failures.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrObligationNotFound) ||
		errors.Is(err, ErrNoOutstandingDebt)
}

// IsConflict returns true for business-rule violations that must reach
// the caller as a distinct outcome, never silently coerced.
func IsConflict(err error) bool {
	return errors.Is(err, ErrPaymentMismatch) ||
		errors.Is(err, ErrInsufficientCredit) ||
		errors.Is(err, ErrOutstandingBalance) ||
		errors.Is(err, ErrBusinessRule)
}

// IsValidation returns true if the error is due to malformed input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrCalculation)
}
