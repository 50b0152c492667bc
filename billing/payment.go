/*
payment.go - Exact-match payment reconciliation

PURPOSE:
  Validates an offered payment against the aggregated bill and, only on
  an exact match, marks every included obligation PAID.

POLICY:
  The offered amount must equal the bill total exactly. No tolerance,
  no partial payments, no overpayment credit. The bill is re-derived at
  payment time, so a late payer pays interest current to the payment
  moment, not to when the bill was displayed.

  On a mismatch no obligation's status changes; the caller receives a
  PaymentMismatchError carrying both amounts.

SEE ALSO:
  - bill.go: the aggregation being reconciled against
*/
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Pay reconciles an offered payment against the account's current bill.
// The bill is recomputed as of asOf, interest included. offered must
// equal the bill total exactly; otherwise a PaymentMismatchError is
// returned and no obligation status is mutated. On a match every
// obligation in the bill becomes PAID and the settled bill is returned.
func (e *Engine) Pay(
	ctx context.Context,
	accountID AccountID,
	paymentDay int,
	offered decimal.Decimal,
	asOf Date,
) (*Bill, error) {
	bill, err := e.CurrentBill(ctx, accountID, paymentDay, asOf)
	if err != nil {
		return nil, err
	}

	if !offered.Equal(bill.Total) {
		return nil, &PaymentMismatchError{
			AccountID: accountID,
			Offered:   offered,
			Expected:  bill.Total,
		}
	}

	// Settlement goes through UpdateBatch so a store failure cannot
	// leave the bill half paid.
	now := time.Now().UTC()
	for i := range bill.Obligations {
		bill.Obligations[i].Status = StatusPaid
		bill.Obligations[i].UpdatedAt = now
	}
	if err := e.Obligations.UpdateBatch(ctx, bill.Obligations); err != nil {
		return nil, fmt.Errorf("settling bill for %s: %w", accountID, err)
	}

	return bill, nil
}
