/*
schedule.go - Obligation batch generation

PURPOSE:
  Expands a credit into its ordered sequence of dated obligations. Two
  cadences exist:

  Loan:  term obligations due on the anniversary of the anchor date,
         one per month starting one month after the anchor.
  Card:  count obligations due on the card's billing day of each of the
         next count months, starting next month.

ATOMICITY:
  The full batch is persisted through ObligationStore.CreateBatch;
  callers never observe a partially written schedule.

SEE ALSO:
  - amortize.go: computes the per-installment amount fed in here
*/
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateLoanSchedule materializes a loan's repayment plan: term
// obligations numbered 1..term, each for the fixed installment amount,
// due one month apart starting one month after the anchor date (the
// account creation date). All start PENDING.
func (e *Engine) GenerateLoanSchedule(
	ctx context.Context,
	accountID AccountID,
	installment decimal.Decimal,
	term int,
	anchor Date,
) error {
	if accountID == "" {
		return fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	if term <= 0 {
		return fmt.Errorf("%w: term must be at least one month", ErrInvalidInput)
	}
	if !installment.IsPositive() {
		return fmt.Errorf("%w: installment amount must be positive", ErrInvalidInput)
	}

	now := time.Now().UTC()
	obs := make([]Obligation, term)
	for i := 0; i < term; i++ {
		obs[i] = Obligation{
			ID:        ObligationID(uuid.NewString()),
			AccountID: accountID,
			Number:    i + 1,
			Amount:    installment,
			Interest:  decimal.Zero,
			DueDate:   anchor.AddMonths(i + 1),
			Status:    StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	return e.Obligations.CreateBatch(ctx, obs)
}

// GenerateChargeSchedule materializes a card purchase's installment
// plan: count obligations for the per-installment amount, due on the
// card's billing day of each of the next count months starting the
// month after asOf. The day is clamped to the target month's length.
func (e *Engine) GenerateChargeSchedule(
	ctx context.Context,
	accountID AccountID,
	perInstallment decimal.Decimal,
	count int,
	billingDay int,
	asOf Date,
) error {
	if accountID == "" {
		return fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	if count <= 0 {
		return fmt.Errorf("%w: installment count must be at least one", ErrInvalidInput)
	}
	if billingDay < 1 || billingDay > 31 {
		return fmt.Errorf("%w: billing day must be between 1 and 31", ErrInvalidInput)
	}
	if !perInstallment.IsPositive() {
		return fmt.Errorf("%w: installment amount must be positive", ErrInvalidInput)
	}

	now := time.Now().UTC()
	obs := make([]Obligation, count)
	for i := 0; i < count; i++ {
		obs[i] = Obligation{
			ID:        ObligationID(uuid.NewString()),
			AccountID: accountID,
			Number:    i + 1,
			Amount:    perInstallment,
			Interest:  decimal.Zero,
			DueDate:   asOf.AddMonths(i + 1).WithDay(billingDay),
			Status:    StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	return e.Obligations.CreateBatch(ctx, obs)
}
