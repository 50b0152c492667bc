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
// TEST HELPERS
// =============================================================================

func overdueObligation(amount string, due billing.Date) billing.Obligation {
	return billing.Obligation{
		ID:        "ob-1",
		AccountID: "acc-1",
		Number:    1,
		Amount:    dec(amount),
		Interest:  decimal.Zero,
		DueDate:   due,
		Status:    billing.StatusPending,
	}
}

// =============================================================================
// PURE INTEREST COMPUTATION
// =============================================================================

func TestComputeInterest_TenDaysOverdue(t *testing.T) {
	// GIVEN: 1000 base, due March 1, checked March 11 at 12%/yr
	// THEN: 1000 * (0.12/365) * 10 = 3.2877 -> 3.29

	ob := overdueObligation("1000", billing.NewDate(2025, time.March, 1))
	asOf := billing.NewDate(2025, time.March, 11)

	accrual := billing.ComputeInterest(ob, asOf, dec("0.12"))

	assert.Equal(t, int64(10), accrual.DaysOverdue)
	assert.True(t, accrual.Interest.Equal(dec("3.29")),
		"expected 3.29, got %s", accrual.Interest)
}

func TestComputeInterest_NotYetDue_Zero(t *testing.T) {
	ob := overdueObligation("1000", billing.NewDate(2025, time.March, 1))

	// Before the due date
	accrual := billing.ComputeInterest(ob, billing.NewDate(2025, time.February, 20), dec("0.12"))
	assert.Zero(t, accrual.DaysOverdue)
	assert.True(t, accrual.Interest.IsZero())

	// Exactly on the due date: not yet overdue
	accrual = billing.ComputeInterest(ob, billing.NewDate(2025, time.March, 1), dec("0.12"))
	assert.Zero(t, accrual.DaysOverdue)
	assert.True(t, accrual.Interest.IsZero())
}

func TestComputeInterest_PaidNeverAccrues(t *testing.T) {
	ob := overdueObligation("1000", billing.NewDate(2025, time.March, 1))
	ob.Status = billing.StatusPaid

	accrual := billing.ComputeInterest(ob, billing.NewDate(2025, time.June, 1), dec("0.12"))
	assert.True(t, accrual.Interest.IsZero())
}

func TestComputeInterest_IdempotentAndMonotonic(t *testing.T) {
	// Interest is derived from the due date, never accumulated: the same
	// asOf always yields the same value, and a later asOf never less.

	ob := overdueObligation("2500", billing.NewDate(2025, time.January, 15))
	rate := dec("0.12")

	day5 := billing.NewDate(2025, time.January, 20)
	first := billing.ComputeInterest(ob, day5, rate)
	second := billing.ComputeInterest(ob, day5, rate)
	assert.True(t, first.Interest.Equal(second.Interest), "same day must converge")

	day30 := billing.NewDate(2025, time.February, 14)
	later := billing.ComputeInterest(ob, day30, rate)
	assert.True(t, later.Interest.GreaterThan(first.Interest),
		"more days overdue must accrue more interest")
}

// =============================================================================
// PERSISTED REFRESH
// =============================================================================

func TestRefresh_MarksOverdueAndPersists(t *testing.T) {
	// GIVEN: A pending obligation ten days past due
	// WHEN: Refreshing it
	// THEN: Status becomes OVERDUE with interest, and the store agrees

	ctx := context.Background()
	mem := store.NewMemory()
	engine := billing.NewEngine(mem)

	ob := overdueObligation("1000", billing.NewDate(2025, time.March, 1))
	require.NoError(t, mem.CreateBatch(ctx, []billing.Obligation{ob}))

	refreshed, err := engine.Refresh(ctx, ob, billing.NewDate(2025, time.March, 11))
	require.NoError(t, err)

	assert.Equal(t, billing.StatusOverdue, refreshed.Status)
	assert.Equal(t, int64(10), refreshed.DaysOverdue)
	assert.True(t, refreshed.Interest.Equal(dec("3.29")))

	stored, err := mem.ListByAccount(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, billing.StatusOverdue, stored[0].Status)
	assert.True(t, stored[0].Interest.Equal(dec("3.29")))
}

func TestRefresh_NotOverdue_Unchanged(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	engine := billing.NewEngine(mem)

	ob := overdueObligation("1000", billing.NewDate(2025, time.March, 1))
	require.NoError(t, mem.CreateBatch(ctx, []billing.Obligation{ob}))

	refreshed, err := engine.Refresh(ctx, ob, billing.NewDate(2025, time.February, 20))
	require.NoError(t, err)

	assert.Equal(t, billing.StatusPending, refreshed.Status)
	assert.True(t, refreshed.Interest.IsZero())
}
