package card_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/credit-engine/billing"
	"github.com/warp/credit-engine/billing/store"
	"github.com/warp/credit-engine/card"
	"github.com/warp/credit-engine/customer"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(s string) decimal.Decimal {
	return billing.MustParseDecimal(s)
}

func newTestService() (*card.Service, *store.Memory) {
	mem := store.NewMemory()
	engine := billing.NewEngine(mem)
	customers := customer.NewStatic(
		customer.Customer{ID: "cust-1", Type: customer.Personal},
	)
	return card.NewService(mem, engine, customers), mem
}

func issueCard(t *testing.T, svc *card.Service, limit string) billing.AccountID {
	t.Helper()
	account, err := svc.Create(context.Background(), card.CreateRequest{
		CustomerID:   "cust-1",
		CreditLimit:  dec(limit),
		InterestRate: dec("24"),
		PaymentDay:   20,
	})
	require.NoError(t, err)
	return account.ID
}

// =============================================================================
// ISSUANCE
// =============================================================================

func TestCreate_FullLimitAvailable(t *testing.T) {
	svc, _ := newTestService()

	account, err := svc.Create(context.Background(), card.CreateRequest{
		CustomerID:   "cust-1",
		CreditLimit:  dec("5000"),
		InterestRate: dec("24"),
		PaymentDay:   20,
	})
	require.NoError(t, err)

	assert.Equal(t, billing.CardActive, account.Status)
	assert.Equal(t, billing.ProductPersonal, account.Type)
	assert.True(t, account.AvailableCredit.Equal(dec("5000")))
	assert.False(t, account.Outstanding())
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{4}$`), account.CardNumber)
}

func TestCreate_UnknownCustomer(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), card.CreateRequest{
		CustomerID:   "nobody",
		CreditLimit:  dec("5000"),
		InterestRate: dec("24"),
		PaymentDay:   20,
	})
	assert.ErrorIs(t, err, customer.ErrNotFound)
}

// =============================================================================
// CHARGES
// =============================================================================

func TestCharge_ExceedsAvailable_Rejected(t *testing.T) {
	// GIVEN: A card with a 5,000 limit
	// WHEN: Charging 6,000
	// THEN: InsufficientCreditError; available credit untouched

	ctx := context.Background()
	svc, _ := newTestService()
	id := issueCard(t, svc, "5000")

	_, err := svc.Charge(ctx, id, card.ChargeRequest{
		Amount:       dec("6000"),
		Installments: 1,
	}, billing.NewDate(2025, time.March, 1))
	require.Error(t, err)

	var insufficient *billing.InsufficientCreditError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Available.Equal(dec("5000")))
	assert.True(t, insufficient.Requested.Equal(dec("6000")))
	assert.ErrorIs(t, err, billing.ErrInsufficientCredit)

	account, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, account.AvailableCredit.Equal(dec("5000")))
}

func TestCharge_SingleInstallment(t *testing.T) {
	// A single-installment purchase falls due in full on the next
	// billing day, with no financing markup.

	ctx := context.Background()
	svc, mem := newTestService()
	id := issueCard(t, svc, "5000")

	account, err := svc.Charge(ctx, id, card.ChargeRequest{
		Amount:       dec("1200"),
		Installments: 1,
	}, billing.NewDate(2025, time.March, 1))
	require.NoError(t, err)
	assert.True(t, account.AvailableCredit.Equal(dec("3800")))
	assert.True(t, account.Outstanding())

	obs, err := mem.ListByAccount(ctx, id)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.True(t, obs[0].Amount.Equal(dec("1200")))
	assert.Equal(t, "2025-04-20", obs[0].DueDate.String())
}

func TestCharge_MultiInstallment_AmortizedAtCardRate(t *testing.T) {
	// GIVEN: A 3,000 purchase in 3 installments at the card's 24% rate
	// THEN: Each installment exceeds the even split 1,000; the full
	//       purchase amount is debited from available credit up front

	ctx := context.Background()
	svc, mem := newTestService()
	id := issueCard(t, svc, "5000")

	account, err := svc.Charge(ctx, id, card.ChargeRequest{
		Amount:       dec("3000"),
		Installments: 3,
	}, billing.NewDate(2025, time.March, 1))
	require.NoError(t, err)
	assert.True(t, account.AvailableCredit.Equal(dec("2000")))

	obs, err := mem.ListByAccount(ctx, id)
	require.NoError(t, err)
	require.Len(t, obs, 3)

	expected, err := billing.MonthlyPayment(dec("3000"), dec("24"), 3)
	require.NoError(t, err)
	for i, ob := range obs {
		assert.True(t, ob.Amount.Equal(expected), "installment %d: got %s", i+1, ob.Amount)
		assert.True(t, ob.Amount.GreaterThan(dec("1000")))
	}

	// Due on the billing day of the next three months
	assert.Equal(t, "2025-04-20", obs[0].DueDate.String())
	assert.Equal(t, "2025-05-20", obs[1].DueDate.String())
	assert.Equal(t, "2025-06-20", obs[2].DueDate.String())
}

func TestCharge_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	id := issueCard(t, svc, "5000")

	_, err := svc.Charge(ctx, id, card.ChargeRequest{Amount: decimal.Zero, Installments: 1},
		billing.NewDate(2025, time.March, 1))
	assert.ErrorIs(t, err, billing.ErrInvalidInput)

	_, err = svc.Charge(ctx, id, card.ChargeRequest{Amount: dec("100"), Installments: 0},
		billing.NewDate(2025, time.March, 1))
	assert.ErrorIs(t, err, billing.ErrInvalidInput)
}

func TestCharge_Concurrent_RespectsLimit(t *testing.T) {
	// GIVEN: A card with a 5,000 limit
	// WHEN: Two 3,000 charges race
	// THEN: Exactly one lands; the other is rejected for insufficient
	//       credit, never overdrawing the limit

	ctx := context.Background()
	svc, _ := newTestService()
	id := issueCard(t, svc, "5000")
	asOf := billing.NewDate(2025, time.March, 1)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Charge(ctx, id, card.ChargeRequest{
				Amount:       dec("3000"),
				Installments: 1,
			}, asOf)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var landed, rejected int
	for err := range errs {
		switch {
		case err == nil:
			landed++
		case errors.Is(err, billing.ErrInsufficientCredit):
			rejected++
		default:
			t.Fatalf("unexpected charge error: %v", err)
		}
	}
	assert.Equal(t, 1, landed)
	assert.Equal(t, 1, rejected)

	account, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, account.AvailableCredit.Equal(dec("2000")), "got %s", account.AvailableCredit)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestPay_RestoresAvailableCredit(t *testing.T) {
	// GIVEN: A 1,200 single-installment charge due Apr 20
	// WHEN: Paying the exact bill on Apr 25 (5 days late)
	// THEN: Available credit is restored, capped at the limit

	ctx := context.Background()
	svc, _ := newTestService()
	id := issueCard(t, svc, "5000")

	_, err := svc.Charge(ctx, id, card.ChargeRequest{
		Amount:       dec("1200"),
		Installments: 1,
	}, billing.NewDate(2025, time.March, 1))
	require.NoError(t, err)

	// 1200 * (0.12/365) * 5 = 1.97
	asOf := billing.NewDate(2025, time.April, 25)
	bill, err := svc.CurrentBill(ctx, id, asOf)
	require.NoError(t, err)
	assert.True(t, bill.Total.Equal(dec("1201.97")), "got %s", bill.Total)

	_, err = svc.Pay(ctx, id, dec("1201.97"), asOf)
	require.NoError(t, err)

	account, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, account.AvailableCredit.Equal(dec("5000")),
		"restored and capped at limit, got %s", account.AvailableCredit)
	assert.False(t, account.Outstanding())
}

func TestPay_Mismatch_CreditUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	id := issueCard(t, svc, "5000")

	_, err := svc.Charge(ctx, id, card.ChargeRequest{
		Amount:       dec("1200"),
		Installments: 1,
	}, billing.NewDate(2025, time.March, 1))
	require.NoError(t, err)

	_, err = svc.Pay(ctx, id, dec("1200"), billing.NewDate(2025, time.April, 25))
	assert.ErrorIs(t, err, billing.ErrPaymentMismatch)

	account, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, account.AvailableCredit.Equal(dec("3800")))
}

// =============================================================================
// INSTALLMENT LISTING AND DELETION
// =============================================================================

func TestInstallmentsByStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	id := issueCard(t, svc, "5000")

	_, err := svc.Charge(ctx, id, card.ChargeRequest{
		Amount:       dec("3000"),
		Installments: 3,
	}, billing.NewDate(2025, time.March, 1))
	require.NoError(t, err)

	pending, err := svc.InstallmentsByStatus(ctx, id, billing.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	paid, err := svc.InstallmentsByStatus(ctx, id, billing.StatusPaid)
	require.NoError(t, err)
	assert.Empty(t, paid)
}

func TestDelete_BlockedWhileCreditConsumed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	id := issueCard(t, svc, "5000")

	_, err := svc.Charge(ctx, id, card.ChargeRequest{
		Amount:       dec("100"),
		Installments: 1,
	}, billing.NewDate(2025, time.March, 1))
	require.NoError(t, err)

	err = svc.Delete(ctx, id)
	assert.ErrorIs(t, err, billing.ErrOutstandingBalance)
}

func TestDelete_UnusedCard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	id := issueCard(t, svc, "5000")

	require.NoError(t, svc.Delete(ctx, id))

	_, err := svc.Get(ctx, id)
	assert.ErrorIs(t, err, billing.ErrAccountNotFound)
}
