/*
accrual.go - Late-payment interest on overdue obligations

PURPOSE:
  Computes day-count interest on obligations past their due date and
  applies it to stored state. Split into a pure calculation and a
  separate persistence step so the math is testable in isolation:

    ComputeInterest(ob, asOf, rate)  pure, no side effects
    Engine.Refresh(ctx, ob, asOf)    applies and persists the accrual

IDEMPOTENCE:
  Interest is recomputed from the original due date to asOf on every
  call, never accumulated on top of a prior accrual. Repeated refreshes
  on the same day converge to the same value; refreshes on later days
  increase monotonically with days overdue.

SEE ALSO:
  - bill.go: refreshes every obligation before aggregating a bill
*/
package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

var daysPerYear = decimal.NewFromInt(365)

// Accrual is the result of a late-interest computation.
type Accrual struct {
	DaysOverdue int64
	Interest    decimal.Decimal
}

// ComputeInterest calculates late-payment interest for an obligation as
// of the given date. Pure: the obligation is not modified.
//
// An obligation accrues nothing until asOf is strictly after its due
// date, and a PAID obligation never accrues. Otherwise:
//
//	daysOverdue = whole days from due date to asOf
//	interest    = base amount * (lateAnnualRate / 365) * daysOverdue
//
// rounded to 2 decimals, half-up, so the resulting bill total is
// expressible as an exact payment amount.
func ComputeInterest(ob Obligation, asOf Date, lateAnnualRate decimal.Decimal) Accrual {
	if ob.Status == StatusPaid || !asOf.After(ob.DueDate) {
		return Accrual{Interest: decimal.Zero}
	}

	days := DaysBetween(ob.DueDate, asOf)
	dailyRate := lateAnnualRate.Div(daysPerYear)

	interest := ob.Amount.
		Mul(dailyRate).
		Mul(decimal.NewFromInt(days)).
		Round(2)

	return Accrual{DaysOverdue: days, Interest: interest}
}

// Refresh recomputes the obligation's late interest as of the given
// date and persists the result. Not-overdue obligations are returned
// unchanged with zero interest. An overdue obligation transitions to
// OVERDUE (idempotent if already there) and carries the recomputed
// interest and day count.
func (e *Engine) Refresh(ctx context.Context, ob Obligation, asOf Date) (Obligation, error) {
	accrual := ComputeInterest(ob, asOf, e.LateRate)
	if accrual.DaysOverdue == 0 {
		return ob, nil
	}

	ob.Status = StatusOverdue
	ob.Interest = accrual.Interest
	ob.DaysOverdue = accrual.DaysOverdue
	ob.UpdatedAt = time.Now().UTC()

	if err := e.Obligations.UpdateObligation(ctx, ob); err != nil {
		return ob, err
	}
	return ob, nil
}
