package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/credit-engine/billing"
	"github.com/warp/credit-engine/billing/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestEngine() (*billing.Engine, *store.Memory) {
	mem := store.NewMemory()
	return billing.NewEngine(mem), mem
}

// =============================================================================
// SCHEDULE GENERATION
// =============================================================================

func TestGenerateLoanSchedule_TwelveInstallments(t *testing.T) {
	// GIVEN: A 12-month loan anchored on Jan 15 with installment 1062.74
	// WHEN: Generating the schedule
	// THEN: 12 PENDING obligations, numbered 1..12, due monthly from Feb 15

	ctx := context.Background()
	engine, mem := newTestEngine()
	anchor := billing.NewDate(2025, time.January, 15)

	err := engine.GenerateLoanSchedule(ctx, "loan-1", dec("1062.74"), 12, anchor)
	require.NoError(t, err)

	obs, err := mem.ListByAccount(ctx, "loan-1")
	require.NoError(t, err)
	require.Len(t, obs, 12)

	total := decimal.Zero
	for i, ob := range obs {
		assert.Equal(t, i+1, ob.Number)
		assert.Equal(t, billing.StatusPending, ob.Status)
		assert.Equal(t, anchor.AddMonths(i+1).String(), ob.DueDate.String())
		assert.True(t, ob.Interest.IsZero())
		total = total.Add(ob.Amount)
	}
	assert.True(t, total.Equal(dec("12752.88")), "12 x 1062.74, got %s", total)
}

func TestGenerateLoanSchedule_MonthEndAnchorClamps(t *testing.T) {
	ctx := context.Background()
	engine, mem := newTestEngine()

	err := engine.GenerateLoanSchedule(ctx, "loan-1", dec("100"), 3,
		billing.NewDate(2025, time.January, 31))
	require.NoError(t, err)

	obs, err := mem.ListByAccount(ctx, "loan-1")
	require.NoError(t, err)
	require.Len(t, obs, 3)

	assert.Equal(t, "2025-02-28", obs[0].DueDate.String())
	assert.Equal(t, "2025-03-31", obs[1].DueDate.String())
	assert.Equal(t, "2025-04-30", obs[2].DueDate.String())
}

func TestGenerateChargeSchedule_DueOnBillingDay(t *testing.T) {
	// GIVEN: A card with billing day 31, charged on Jan 10
	// THEN: Installments land on the clamped 31st of the next months

	ctx := context.Background()
	engine, mem := newTestEngine()

	err := engine.GenerateChargeSchedule(ctx, "card-1", dec("200"), 3, 31,
		billing.NewDate(2025, time.January, 10))
	require.NoError(t, err)

	obs, err := mem.ListByAccount(ctx, "card-1")
	require.NoError(t, err)
	require.Len(t, obs, 3)

	assert.Equal(t, "2025-02-28", obs[0].DueDate.String())
	assert.Equal(t, "2025-03-31", obs[1].DueDate.String())
	assert.Equal(t, "2025-04-30", obs[2].DueDate.String())
}

func TestGenerateSchedule_Validation(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine()
	anchor := billing.NewDate(2025, time.January, 15)

	err := engine.GenerateLoanSchedule(ctx, "", dec("100"), 12, anchor)
	assert.ErrorIs(t, err, billing.ErrInvalidInput)

	err = engine.GenerateLoanSchedule(ctx, "loan-1", dec("100"), 0, anchor)
	assert.ErrorIs(t, err, billing.ErrInvalidInput)

	err = engine.GenerateLoanSchedule(ctx, "loan-1", decimal.Zero, 12, anchor)
	assert.ErrorIs(t, err, billing.ErrInvalidInput)

	err = engine.GenerateChargeSchedule(ctx, "card-1", dec("100"), 3, 42, anchor)
	assert.ErrorIs(t, err, billing.ErrInvalidInput)
}

// =============================================================================
// BILL AGGREGATION
// =============================================================================

// seedSchedule writes a two-installment schedule due March 10 and
// April 10, 500 each.
func seedSchedule(t *testing.T, engine *billing.Engine) {
	t.Helper()
	err := engine.GenerateLoanSchedule(context.Background(), "acc-1", dec("500"), 2,
		billing.NewDate(2025, time.February, 10))
	require.NoError(t, err)
}

func TestCurrentBill_IncludesOnlyDueBeforeCutoff(t *testing.T) {
	// GIVEN: Installments due Mar 10 and Apr 10, payment day 20
	// WHEN: Billing as of Mar 15 (cutoff Mar 20)
	// THEN: Only the March installment is included, with 5 days interest

	ctx := context.Background()
	engine, _ := newTestEngine()
	seedSchedule(t, engine)

	bill, err := engine.CurrentBill(ctx, "acc-1", 20, billing.NewDate(2025, time.March, 15))
	require.NoError(t, err)

	require.Len(t, bill.Obligations, 1)
	assert.Equal(t, 1, bill.Obligations[0].Number)
	assert.Equal(t, billing.StatusOverdue, bill.Obligations[0].Status)
	assert.Equal(t, int64(5), bill.Obligations[0].DaysOverdue)

	// 500 * (0.12/365) * 5 = 0.82
	assert.True(t, bill.Principal.Equal(dec("500")))
	assert.True(t, bill.Interest.Equal(dec("0.82")), "got %s", bill.Interest)
	assert.True(t, bill.Total.Equal(dec("500.82")))
	assert.Equal(t, "2025-03-20", bill.Cutoff.String())
}

func TestCurrentBill_CutoffRollsToNextMonth(t *testing.T) {
	// Past the payment day, the cutoff rolls forward and both
	// installments fall into the bill.

	ctx := context.Background()
	engine, _ := newTestEngine()
	seedSchedule(t, engine)

	bill, err := engine.CurrentBill(ctx, "acc-1", 5, billing.NewDate(2025, time.April, 12))
	require.NoError(t, err)

	assert.Equal(t, "2025-05-05", bill.Cutoff.String())
	assert.Len(t, bill.Obligations, 2)
	assert.True(t, bill.Principal.Equal(dec("1000")))
}

func TestCurrentBill_NothingDue(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine()
	seedSchedule(t, engine)

	// Cutoff Feb 20, first installment due Mar 10
	_, err := engine.CurrentBill(ctx, "acc-1", 20, billing.NewDate(2025, time.February, 15))
	assert.ErrorIs(t, err, billing.ErrNoOutstandingDebt)
	assert.True(t, billing.IsNotFound(err))

	// Unknown account behaves the same: no obligations, nothing due
	_, err = engine.CurrentBill(ctx, "ghost", 20, billing.NewDate(2025, time.March, 15))
	assert.ErrorIs(t, err, billing.ErrNoOutstandingDebt)
}

func TestCurrentBill_InvalidPaymentDay(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine()

	_, err := engine.CurrentBill(ctx, "acc-1", 0, billing.NewDate(2025, time.March, 15))
	assert.ErrorIs(t, err, billing.ErrInvalidInput)

	_, err = engine.CurrentBill(ctx, "acc-1", 32, billing.NewDate(2025, time.March, 15))
	assert.ErrorIs(t, err, billing.ErrInvalidInput)
}

// =============================================================================
// PAYMENT RECONCILIATION
// =============================================================================

func TestPay_ExactMatch_SettlesBill(t *testing.T) {
	// GIVEN: A bill of 500.82 (500 principal + 0.82 late interest)
	// WHEN: Paying exactly 500.82
	// THEN: The included installment becomes PAID; the later one stays

	ctx := context.Background()
	engine, mem := newTestEngine()
	seedSchedule(t, engine)
	asOf := billing.NewDate(2025, time.March, 15)

	bill, err := engine.Pay(ctx, "acc-1", 20, dec("500.82"), asOf)
	require.NoError(t, err)
	require.Len(t, bill.Obligations, 1)
	assert.Equal(t, billing.StatusPaid, bill.Obligations[0].Status)

	stored, err := mem.ListByAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, stored[0].Status)
	assert.Equal(t, billing.StatusPending, stored[1].Status)

	// The settled installment never reappears on a later bill
	_, err = engine.CurrentBill(ctx, "acc-1", 20, asOf)
	assert.ErrorIs(t, err, billing.ErrNoOutstandingDebt)
}

func TestPay_Mismatch_NoStatusMutation(t *testing.T) {
	// GIVEN: A bill of 500.82
	// WHEN: Offering 500 (ignoring the late interest)
	// THEN: PaymentMismatchError with both amounts; nothing settles

	ctx := context.Background()
	engine, mem := newTestEngine()
	seedSchedule(t, engine)
	asOf := billing.NewDate(2025, time.March, 15)

	_, err := engine.Pay(ctx, "acc-1", 20, dec("500"), asOf)
	require.Error(t, err)

	var mismatch *billing.PaymentMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, mismatch.Offered.Equal(dec("500")))
	assert.True(t, mismatch.Expected.Equal(dec("500.82")))
	assert.ErrorIs(t, err, billing.ErrPaymentMismatch)
	assert.True(t, billing.IsConflict(err))

	stored, err := mem.ListByAccount(ctx, "acc-1")
	require.NoError(t, err)
	for _, ob := range stored {
		assert.NotEqual(t, billing.StatusPaid, ob.Status)
	}
}

func TestPay_Overpayment_AlsoRejected(t *testing.T) {
	// Exact match means exact: overpaying is a mismatch too.

	ctx := context.Background()
	engine, _ := newTestEngine()
	seedSchedule(t, engine)

	_, err := engine.Pay(ctx, "acc-1", 20, dec("600"), billing.NewDate(2025, time.March, 15))
	assert.ErrorIs(t, err, billing.ErrPaymentMismatch)
}

func TestUpdateBatch_AllOrNothing(t *testing.T) {
	// GIVEN: A settlement batch containing an unknown obligation
	// WHEN: Applying it
	// THEN: The batch is rejected and no obligation changes status

	ctx := context.Background()
	engine, mem := newTestEngine()
	seedSchedule(t, engine)

	obs, err := mem.ListByAccount(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, obs, 2)

	for i := range obs {
		obs[i].Status = billing.StatusPaid
	}
	obs = append(obs, billing.Obligation{ID: "ghost", AccountID: "acc-1", Status: billing.StatusPaid})

	err = mem.UpdateBatch(ctx, obs)
	assert.ErrorIs(t, err, billing.ErrObligationNotFound)

	stored, err := mem.ListByAccount(ctx, "acc-1")
	require.NoError(t, err)
	for _, ob := range stored {
		assert.Equal(t, billing.StatusPending, ob.Status)
	}
}

// =============================================================================
// OVERDUE DEBT CHECK
// =============================================================================

func TestHasOverdueDebt(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine()
	seedSchedule(t, engine)

	// Nothing refreshed yet: all PENDING
	overdue, err := engine.HasOverdueDebt(ctx, "acc-1")
	require.NoError(t, err)
	assert.False(t, overdue)

	// Billing past the due date flips the first installment to OVERDUE
	_, err = engine.CurrentBill(ctx, "acc-1", 20, billing.NewDate(2025, time.March, 15))
	require.NoError(t, err)

	overdue, err = engine.HasOverdueDebt(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, overdue)

	// Settling the bill clears it
	_, err = engine.Pay(ctx, "acc-1", 20, dec("500.82"), billing.NewDate(2025, time.March, 15))
	require.NoError(t, err)

	overdue, err = engine.HasOverdueDebt(ctx, "acc-1")
	require.NoError(t, err)
	assert.False(t, overdue)
}
