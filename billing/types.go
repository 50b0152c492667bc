/*
Package billing provides the core payment schedule and billing engine.

PURPOSE:
  This package contains the product-agnostic types and algorithms for
  amortized repayment tracking. Whether the credit is a term loan or a
  revolving card purchase, the same engine handles installment math,
  schedule generation, late-interest accrual, bill aggregation, and
  payment reconciliation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Obligation: one dated installment with its own status lifecycle
  - LoanAccount / CardAccount: the two credit products
  - Bill: the aggregation of everything currently due for an account
  - Status enums: PENDING -> OVERDUE -> PAID (PAID is terminal)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all money, never float64
  2. Monotonic status: an obligation never regresses; PAID is absorbing
  3. Derived interest: late interest is recomputed from the due date on
     every refresh, never accumulated on top of a prior accrual

SEE ALSO:
  - amortize.go: Fixed installment calculation
  - schedule.go: Obligation batch generation
  - accrual.go:  Late-interest computation and application
  - bill.go:     Aggregation of due obligations
  - payment.go:  Exact-match payment reconciliation
*/
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AccountID string
type ObligationID string

// =============================================================================
// PRODUCT AND STATUS ENUMS
// =============================================================================

// ProductType classifies a credit product by customer segment.
type ProductType string

const (
	ProductPersonal ProductType = "PERSONAL"
	ProductBusiness ProductType = "BUSINESS"
)

// LoanStatus is the lifecycle of a term loan account.
type LoanStatus string

const (
	LoanActive    LoanStatus = "ACTIVE"
	LoanPaid      LoanStatus = "PAID"
	LoanDefaulted LoanStatus = "DEFAULTED"
)

// CardStatus is the lifecycle of a credit card account.
type CardStatus string

const (
	CardActive    CardStatus = "ACTIVE"
	CardBlocked   CardStatus = "BLOCKED"
	CardCancelled CardStatus = "CANCELLED"
)

// ObligationStatus is the lifecycle of a single installment.
// Transitions are monotonic: PENDING -> OVERDUE -> PAID. An overdue
// obligation has its interest recomputed on every refresh, but the
// discrete status never reverts to PENDING, and PAID is terminal.
type ObligationStatus string

const (
	StatusPending ObligationStatus = "PENDING"
	StatusOverdue ObligationStatus = "OVERDUE"
	StatusPaid    ObligationStatus = "PAID"
)

// =============================================================================
// OBLIGATION - One scheduled installment
// =============================================================================

// Obligation is a single dated repayment owed against an account: one
// loan installment or one card charge installment. Obligations are
// created in a batch by the schedule generator and mutated in place by
// accrual (interest, days overdue, OVERDUE status) and by payment
// reconciliation (PAID status). They are never deleted individually.
type Obligation struct {
	ID        ObligationID
	AccountID AccountID

	// Number is the 1-based sequence within the schedule.
	Number int

	// Amount is the base installment amount, fixed at generation time.
	Amount decimal.Decimal

	// Interest is the late-payment interest accrued so far. Zero until
	// the obligation passes its due date; recomputed on every refresh.
	Interest decimal.Decimal

	DueDate     Date
	DaysOverdue int64
	Status      ObligationStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the obligation still awaits payment.
func (o Obligation) Open() bool { return o.Status != StatusPaid }

// =============================================================================
// ACCOUNTS - The two credit products
// =============================================================================

// LoanAccount is a fixed-term amortized credit. The full principal is
// disbursed at creation and repaid in equal monthly installments.
type LoanAccount struct {
	ID         AccountID
	CustomerID string
	Type       ProductType

	// Amount is the original principal; Balance is what remains owed.
	// Balance never exceeds Amount and only decreases.
	Amount  decimal.Decimal
	Balance decimal.Decimal

	// InterestRate is the annual effective rate in percent.
	InterestRate decimal.Decimal
	Term         int

	Status     LoanStatus
	PaymentDay int

	// Next-due pointer, advanced one cycle per reconciled payment.
	NextPaymentDate    Date
	NextPaymentAmount  decimal.Decimal
	NextInstallment    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Outstanding reports whether the loan still carries debt.
func (l LoanAccount) Outstanding() bool { return l.Balance.IsPositive() }

// CardAccount is a revolving credit line. Charges consume available
// credit; reconciled payments restore it, capped at the limit.
type CardAccount struct {
	ID         AccountID
	CustomerID string
	CardNumber string
	Type       ProductType

	CreditLimit     decimal.Decimal
	AvailableCredit decimal.Decimal

	// InterestRate is the annual effective rate in percent, used to
	// price multi-installment purchases.
	InterestRate decimal.Decimal

	Status     CardStatus
	PaymentDay int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Outstanding reports whether any credit is currently consumed.
func (c CardAccount) Outstanding() bool {
	return !c.AvailableCredit.Equal(c.CreditLimit)
}

// =============================================================================
// BILL - Everything due at or before the next payment date
// =============================================================================

// Bill is the aggregation of all open obligations due before the next
// payment cutoff, with late interest refreshed as of the aggregation
// date. Total is what an exact-match payment must offer.
type Bill struct {
	AccountID   AccountID
	Obligations []Obligation

	// Principal is the sum of base amounts, Interest the sum of accrued
	// late interest. Total = Principal + Interest.
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Total     decimal.Decimal

	// Cutoff is the applicable payment date the bill covers up to.
	Cutoff Date
}

// TransactionType distinguishes the two balance-affecting operations.
type TransactionType string

const (
	TxPayment TransactionType = "PAYMENT"
	TxCharge  TransactionType = "CHARGE"
)
