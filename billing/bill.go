/*
bill.go - Aggregation of currently-due obligations

PURPOSE:
  Collects everything an account owes up to its next payment date into
  one payable bill. Refreshes late interest on each included obligation
  first, so the bill is always current to the aggregation date.

CUTOFF RULE:
  The applicable payment date is the account's payment day in the
  current month. If asOf has already passed it, the cutoff rolls to
  next month's payment day, so a bill always covers "everything due up
  to and including the next payment date".

SEE ALSO:
  - accrual.go:  the per-obligation refresh applied here
  - payment.go:  re-derives the bill at payment time
*/
package billing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentCutoff returns the applicable payment date for a billing
// cycle: the payment day in asOf's month, rolled one month forward
// when asOf is already past it. The day is clamped to month length.
func PaymentCutoff(paymentDay int, asOf Date) Date {
	due := asOf.WithDay(paymentDay)
	if asOf.After(due) {
		due = due.AddMonths(1)
	}
	return due
}

// CurrentBill aggregates all open obligations due strictly before the
// next payment cutoff into a single payable bill. Late interest is
// refreshed (and persisted) on every included obligation first.
//
// Returns ErrNoOutstandingDebt when nothing falls before the cutoff;
// this is a normal outcome for an account with nothing due.
func (e *Engine) CurrentBill(
	ctx context.Context,
	accountID AccountID,
	paymentDay int,
	asOf Date,
) (*Bill, error) {
	if paymentDay < 1 || paymentDay > 31 {
		return nil, fmt.Errorf("%w: payment day must be between 1 and 31", ErrInvalidInput)
	}

	cutoff := PaymentCutoff(paymentDay, asOf)

	obs, err := e.Obligations.FindOpenDueBefore(ctx, accountID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("loading due obligations for %s: %w", accountID, err)
	}
	if len(obs) == 0 {
		return nil, ErrNoOutstandingDebt
	}

	principal := decimal.Zero
	interest := decimal.Zero

	for i := range obs {
		refreshed, err := e.Refresh(ctx, obs[i], asOf)
		if err != nil {
			return nil, fmt.Errorf("refreshing obligation %s: %w", obs[i].ID, err)
		}
		obs[i] = refreshed

		principal = principal.Add(refreshed.Amount)
		interest = interest.Add(refreshed.Interest)
	}

	return &Bill{
		AccountID:   accountID,
		Obligations: obs,
		Principal:   principal,
		Interest:    interest,
		Total:       principal.Add(interest),
		Cutoff:      cutoff,
	}, nil
}
