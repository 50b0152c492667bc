package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE - Schedule, accrual, billing and reconciliation over a store
// =============================================================================

// DefaultLateRate is the annual late-payment interest rate applied to
// overdue obligations: 12% per year, accrued daily at rate/365.
var DefaultLateRate = MustParseDecimal("0.12")

// Engine runs the billing lifecycle over persisted obligations:
// schedule generation, overdue accrual, bill aggregation and payment
// reconciliation. It is product-agnostic; the loan and card services
// own account state and call into it.
type Engine struct {
	Obligations ObligationStore

	// LateRate is the annual late-payment rate as a fraction (0.12 =
	// 12%/yr). Defaults to DefaultLateRate.
	LateRate decimal.Decimal
}

// NewEngine creates an engine with the default late-payment rate.
func NewEngine(store ObligationStore) *Engine {
	return &Engine{Obligations: store, LateRate: DefaultLateRate}
}

// HasOverdueDebt reports whether the account currently has at least one
// obligation in OVERDUE status.
func (e *Engine) HasOverdueDebt(ctx context.Context, accountID AccountID) (bool, error) {
	n, err := e.Obligations.CountByStatus(ctx, accountID, StatusOverdue)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MustParseDecimal parses a decimal literal, panicking on malformed
// input. Use only for compile-time constants.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("billing: bad decimal literal: " + s)
	}
	return d
}
