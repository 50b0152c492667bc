/*
Package loan manages fixed-term amortized credit accounts.

PURPOSE:
  The loan service owns the term-loan account lifecycle: creation with
  customer classification checks, fixed-installment pricing, schedule
  materialization, bill inquiry, payment application with balance
  update, and deletion guarded by outstanding debt.

  All schedule and money math lives in the billing engine; this package
  adds the product rules around it.

BUSINESS RULES:
  1. Personal customers hold PERSONAL products only, and at most one
     loan with an outstanding balance.
  2. Business customers hold BUSINESS products only.
  3. Interest rate and term are mandatory; the installment is never
     supplied by the caller, always derived.
  4. A loan with a positive balance cannot be deleted.

SEE ALSO:
  - billing/:  the product-agnostic engine
  - customer/: the classification lookup
*/
package loan

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/credit-engine/billing"
	"github.com/warp/credit-engine/customer"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service implements the term-loan product on top of the billing engine.
type Service struct {
	Loans     billing.LoanStore
	Engine    *billing.Engine
	Customers customer.Directory
	Locks     *billing.AccountLocks
}

func NewService(loans billing.LoanStore, engine *billing.Engine, customers customer.Directory) *Service {
	return &Service{
		Loans:     loans,
		Engine:    engine,
		Customers: customers,
		Locks:     billing.NewAccountLocks(),
	}
}

// CreateRequest carries the caller-supplied loan parameters. The
// installment amount is always derived, never accepted.
type CreateRequest struct {
	CustomerID   string
	Amount       decimal.Decimal
	InterestRate decimal.Decimal
	Term         int
	PaymentDay   int
}

// Create validates the request against the customer's classification,
// prices the fixed monthly installment, persists the account and
// materializes its full repayment schedule.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*billing.LoanAccount, error) {
	if req.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", billing.ErrInvalidInput)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: loan amount must be positive", billing.ErrInvalidInput)
	}
	if req.InterestRate.IsZero() || req.InterestRate.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate is required", billing.ErrInvalidInput)
	}
	if req.Term <= 0 {
		return nil, fmt.Errorf("%w: term in months is required", billing.ErrInvalidInput)
	}
	if req.PaymentDay < 1 || req.PaymentDay > 31 {
		return nil, fmt.Errorf("%w: payment day must be between 1 and 31", billing.ErrInvalidInput)
	}

	cust, err := s.Customers.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("resolving customer %s: %w", req.CustomerID, err)
	}

	productType, err := s.checkEligibility(ctx, cust)
	if err != nil {
		return nil, err
	}

	installment, err := billing.MonthlyPayment(req.Amount, req.InterestRate, req.Term)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	today := billing.Today()
	account := billing.LoanAccount{
		ID:                billing.AccountID(uuid.NewString()),
		CustomerID:        req.CustomerID,
		Type:              productType,
		Amount:            req.Amount,
		Balance:           req.Amount,
		InterestRate:      req.InterestRate,
		Term:              req.Term,
		Status:            billing.LoanActive,
		PaymentDay:        req.PaymentDay,
		NextPaymentDate:   today.AddMonths(1),
		NextPaymentAmount: installment,
		NextInstallment:   1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.Loans.CreateLoan(ctx, account); err != nil {
		return nil, fmt.Errorf("persisting loan: %w", err)
	}

	if err := s.Engine.GenerateLoanSchedule(ctx, account.ID, installment, req.Term, today); err != nil {
		// Roll the account back; a loan must never exist without its
		// repayment schedule.
		if derr := s.Loans.DeleteLoan(ctx, account.ID); derr != nil {
			log.Printf("[LoanService] Failed to roll back loan %s after schedule error: %v", account.ID, derr)
		}
		return nil, fmt.Errorf("generating schedule for %s: %w", account.ID, err)
	}

	log.Printf("[LoanService] Created loan %s for customer %s: %s over %d months, installment %s",
		account.ID, req.CustomerID, req.Amount.StringFixed(2), req.Term, installment.StringFixed(2))
	return &account, nil
}

// checkEligibility enforces the classification rules: product type must
// match the customer's segment, and a personal customer may hold at
// most one loan with an outstanding balance.
func (s *Service) checkEligibility(ctx context.Context, cust *customer.Customer) (billing.ProductType, error) {
	switch cust.Type {
	case customer.Business:
		return billing.ProductBusiness, nil
	case customer.Personal:
		existing, err := s.Loans.FindLoansByCustomer(ctx, cust.ID)
		if err != nil {
			return "", fmt.Errorf("listing loans for %s: %w", cust.ID, err)
		}
		for _, l := range existing {
			if l.Outstanding() {
				return "", fmt.Errorf("%w: personal customer %s already has an outstanding loan",
					billing.ErrBusinessRule, cust.ID)
			}
		}
		return billing.ProductPersonal, nil
	default:
		return "", fmt.Errorf("%w: unknown customer classification %q", billing.ErrBusinessRule, cust.Type)
	}
}

// Get returns a loan account by id.
func (s *Service) Get(ctx context.Context, id billing.AccountID) (*billing.LoanAccount, error) {
	return s.Loans.GetLoan(ctx, id)
}

// ListByCustomer returns all of a customer's loans.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]billing.LoanAccount, error) {
	return s.Loans.FindLoansByCustomer(ctx, customerID)
}

// Schedule returns the loan's full obligation schedule.
func (s *Service) Schedule(ctx context.Context, id billing.AccountID) ([]billing.Obligation, error) {
	if _, err := s.Loans.GetLoan(ctx, id); err != nil {
		return nil, err
	}
	return s.Engine.Obligations.ListByAccount(ctx, id)
}

// CurrentBill aggregates everything due on the loan as of asOf.
func (s *Service) CurrentBill(ctx context.Context, id billing.AccountID, asOf billing.Date) (*billing.Bill, error) {
	account, err := s.Loans.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	release := s.Locks.Acquire(id)
	defer release()

	return s.Engine.CurrentBill(ctx, id, account.PaymentDay, asOf)
}

// HasOverdueDebt reports whether any installment is currently overdue.
func (s *Service) HasOverdueDebt(ctx context.Context, id billing.AccountID) (bool, error) {
	if _, err := s.Loans.GetLoan(ctx, id); err != nil {
		return false, err
	}
	return s.Engine.HasOverdueDebt(ctx, id)
}

// Pay reconciles an exact-match payment against the loan's current bill
// and applies it to the account: the balance drops by the settled
// principal, the next-due pointer advances one cycle per settled
// installment, and a fully repaid loan moves to PAID.
func (s *Service) Pay(ctx context.Context, id billing.AccountID, offered decimal.Decimal, asOf billing.Date) (*billing.Bill, error) {
	release := s.Locks.Acquire(id)
	defer release()

	account, err := s.Loans.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	bill, err := s.Engine.Pay(ctx, id, account.PaymentDay, offered, asOf)
	if err != nil {
		return nil, err
	}

	account.Balance = account.Balance.Sub(bill.Principal)
	if account.Balance.IsNegative() {
		account.Balance = decimal.Zero
	}

	settled := len(bill.Obligations)
	account.NextInstallment += settled
	account.NextPaymentDate = account.NextPaymentDate.AddMonths(settled)

	if !account.Outstanding() {
		account.Status = billing.LoanPaid
		account.NextPaymentAmount = decimal.Zero
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.Loans.UpdateLoan(ctx, *account); err != nil {
		return nil, fmt.Errorf("updating loan %s after payment: %w", id, err)
	}

	log.Printf("[LoanService] Payment of %s applied to loan %s: %d installment(s) settled, balance %s",
		offered.StringFixed(2), id, settled, account.Balance.StringFixed(2))
	return bill, nil
}

// Delete removes a loan account. Blocked while the balance is
// outstanding.
func (s *Service) Delete(ctx context.Context, id billing.AccountID) error {
	release := s.Locks.Acquire(id)
	defer release()

	account, err := s.Loans.GetLoan(ctx, id)
	if err != nil {
		return err
	}
	if account.Outstanding() {
		return fmt.Errorf("%w: loan %s has balance %s",
			billing.ErrOutstandingBalance, id, account.Balance.StringFixed(2))
	}
	return s.Loans.DeleteLoan(ctx, id)
}
