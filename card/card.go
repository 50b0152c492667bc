/*
Package card manages revolving credit card accounts.

PURPOSE:
  The card service owns the card account lifecycle: issuance with
  customer classification checks, purchase charges (single or
  multi-installment), bill inquiry, payment application restoring
  available credit, and cancellation guarded by consumed credit.

BUSINESS RULES:
  1. Product type matches the customer's segment.
  2. A charge is rejected up front when the full purchase amount
     exceeds the available credit; nothing is mutated.
  3. Multi-installment purchases are priced through the amortization
     formula at the card's rate, so the customer pays interest for
     deferring. The full purchase amount is debited from available
     credit at charge time.
  4. Reconciled payments restore available credit by the amount paid,
     capped at the credit limit.
  5. A card cannot be deleted while credit is consumed.

SEE ALSO:
  - billing/:  the product-agnostic engine
  - customer/: the classification lookup
*/
package card

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/credit-engine/billing"
	"github.com/warp/credit-engine/customer"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service implements the credit-card product on top of the billing engine.
type Service struct {
	Cards     billing.CardStore
	Engine    *billing.Engine
	Customers customer.Directory
	Locks     *billing.AccountLocks
}

func NewService(cards billing.CardStore, engine *billing.Engine, customers customer.Directory) *Service {
	return &Service{
		Cards:     cards,
		Engine:    engine,
		Customers: customers,
		Locks:     billing.NewAccountLocks(),
	}
}

// CreateRequest carries the caller-supplied card parameters.
type CreateRequest struct {
	CustomerID   string
	CreditLimit  decimal.Decimal
	InterestRate decimal.Decimal
	PaymentDay   int
}

// Create validates the request against the customer's classification
// and issues a card with the full limit available.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*billing.CardAccount, error) {
	if req.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", billing.ErrInvalidInput)
	}
	if !req.CreditLimit.IsPositive() {
		return nil, fmt.Errorf("%w: credit limit must be positive", billing.ErrInvalidInput)
	}
	if req.InterestRate.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate cannot be negative", billing.ErrInvalidInput)
	}
	if req.PaymentDay < 1 || req.PaymentDay > 31 {
		return nil, fmt.Errorf("%w: payment day must be between 1 and 31", billing.ErrInvalidInput)
	}

	cust, err := s.Customers.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("resolving customer %s: %w", req.CustomerID, err)
	}

	var productType billing.ProductType
	switch cust.Type {
	case customer.Business:
		productType = billing.ProductBusiness
	case customer.Personal:
		productType = billing.ProductPersonal
	default:
		return nil, fmt.Errorf("%w: unknown customer classification %q", billing.ErrBusinessRule, cust.Type)
	}

	now := time.Now().UTC()
	account := billing.CardAccount{
		ID:              billing.AccountID(uuid.NewString()),
		CustomerID:      req.CustomerID,
		CardNumber:      generateCardNumber(),
		Type:            productType,
		CreditLimit:     req.CreditLimit,
		AvailableCredit: req.CreditLimit,
		InterestRate:    req.InterestRate,
		Status:          billing.CardActive,
		PaymentDay:      req.PaymentDay,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.Cards.CreateCard(ctx, account); err != nil {
		return nil, fmt.Errorf("persisting card: %w", err)
	}

	log.Printf("[CardService] Issued card %s (%s) for customer %s, limit %s",
		account.ID, account.CardNumber, req.CustomerID, req.CreditLimit.StringFixed(2))
	return &account, nil
}

// generateCardNumber produces a display number in XXXX-XXXX-XXXX-XXXX
// form. Not a PAN; uniqueness is carried by the account id.
func generateCardNumber() string {
	return fmt.Sprintf("%04d-%04d-%04d-%04d",
		rand.Intn(10000), rand.Intn(10000), rand.Intn(10000), rand.Intn(10000))
}

// Get returns a card account by id.
func (s *Service) Get(ctx context.Context, id billing.AccountID) (*billing.CardAccount, error) {
	return s.Cards.GetCard(ctx, id)
}

// ListByCustomer returns all of a customer's cards.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]billing.CardAccount, error) {
	return s.Cards.FindCardsByCustomer(ctx, customerID)
}

// ChargeRequest is one purchase against a card. Installments of 1 means
// the full amount falls due on the next billing day; more than 1
// spreads an amortized amount over that many monthly cycles.
type ChargeRequest struct {
	Amount       decimal.Decimal
	Installments int
}

// Charge applies a purchase to the card: verifies availability against
// the full amount, materializes the installment schedule, and debits
// the full purchase amount from available credit.
func (s *Service) Charge(ctx context.Context, id billing.AccountID, req ChargeRequest, asOf billing.Date) (*billing.CardAccount, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: charge amount must be positive", billing.ErrInvalidInput)
	}
	if req.Installments <= 0 {
		return nil, fmt.Errorf("%w: installment count must be at least one", billing.ErrInvalidInput)
	}

	release := s.Locks.Acquire(id)
	defer release()

	account, err := s.Cards.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.Status != billing.CardActive {
		return nil, fmt.Errorf("%w: card %s is %s", billing.ErrBusinessRule, id, account.Status)
	}
	if req.Amount.GreaterThan(account.AvailableCredit) {
		return nil, &billing.InsufficientCreditError{
			AccountID: id,
			Available: account.AvailableCredit,
			Requested: req.Amount,
		}
	}

	perInstallment := req.Amount
	if req.Installments > 1 {
		perInstallment, err = billing.MonthlyPayment(req.Amount, account.InterestRate, req.Installments)
		if err != nil {
			return nil, err
		}
	}

	if err := s.Engine.GenerateChargeSchedule(ctx, id, perInstallment, req.Installments, account.PaymentDay, asOf); err != nil {
		return nil, fmt.Errorf("generating installments for %s: %w", id, err)
	}

	account.AvailableCredit = account.AvailableCredit.Sub(req.Amount)
	account.UpdatedAt = time.Now().UTC()
	if err := s.Cards.UpdateCard(ctx, *account); err != nil {
		return nil, fmt.Errorf("updating card %s after charge: %w", id, err)
	}

	log.Printf("[CardService] Charge of %s in %d installment(s) on card %s, available %s",
		req.Amount.StringFixed(2), req.Installments, id, account.AvailableCredit.StringFixed(2))
	return account, nil
}

// CurrentBill aggregates everything due on the card as of asOf.
func (s *Service) CurrentBill(ctx context.Context, id billing.AccountID, asOf billing.Date) (*billing.Bill, error) {
	account, err := s.Cards.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}

	release := s.Locks.Acquire(id)
	defer release()

	return s.Engine.CurrentBill(ctx, id, account.PaymentDay, asOf)
}

// HasOverdueDebt reports whether any installment is currently overdue.
func (s *Service) HasOverdueDebt(ctx context.Context, id billing.AccountID) (bool, error) {
	if _, err := s.Cards.GetCard(ctx, id); err != nil {
		return false, err
	}
	return s.Engine.HasOverdueDebt(ctx, id)
}

// InstallmentsByStatus lists the card's installments in one status.
func (s *Service) InstallmentsByStatus(ctx context.Context, id billing.AccountID, status billing.ObligationStatus) ([]billing.Obligation, error) {
	if _, err := s.Cards.GetCard(ctx, id); err != nil {
		return nil, err
	}
	return s.Engine.Obligations.FindByStatus(ctx, id, status)
}

// Pay reconciles an exact-match payment against the card's current bill
// and restores available credit by the amount paid, capped at the
// credit limit.
func (s *Service) Pay(ctx context.Context, id billing.AccountID, offered decimal.Decimal, asOf billing.Date) (*billing.Bill, error) {
	release := s.Locks.Acquire(id)
	defer release()

	account, err := s.Cards.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}

	bill, err := s.Engine.Pay(ctx, id, account.PaymentDay, offered, asOf)
	if err != nil {
		return nil, err
	}

	account.AvailableCredit = account.AvailableCredit.Add(bill.Total)
	if account.AvailableCredit.GreaterThan(account.CreditLimit) {
		account.AvailableCredit = account.CreditLimit
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.Cards.UpdateCard(ctx, *account); err != nil {
		return nil, fmt.Errorf("updating card %s after payment: %w", id, err)
	}

	log.Printf("[CardService] Payment of %s applied to card %s, available %s",
		offered.StringFixed(2), id, account.AvailableCredit.StringFixed(2))
	return bill, nil
}

// Delete removes a card account. Blocked while any credit is consumed.
func (s *Service) Delete(ctx context.Context, id billing.AccountID) error {
	release := s.Locks.Acquire(id)
	defer release()

	account, err := s.Cards.GetCard(ctx, id)
	if err != nil {
		return err
	}
	if account.Outstanding() {
		return fmt.Errorf("%w: card %s has consumed credit", billing.ErrOutstandingBalance, id)
	}
	return s.Cards.DeleteCard(ctx, id)
}
