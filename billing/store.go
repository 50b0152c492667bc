/*
store.go - Persistence interfaces for accounts, obligations and snapshots

PURPOSE:
  Defines the interface between the billing engine and the record
  store. The engine is written against these interfaces, not against
  any particular storage engine; implementations exist for SQLite and
  in-memory storage.

KEY INTERFACES:
  ObligationStore: Schedule persistence and due-date/status queries
  LoanStore:       Term loan account records
  CardStore:       Credit card account records
  SnapshotStore:   Daily balance history (append-only)

ATOMIC BATCHES:
  CreateBatch and UpdateBatch ensure all-or-nothing semantics. A
  12-installment loan schedule is either fully persisted or not at all,
  and a settled bill marks every included obligation or none; callers
  never observe a partial schedule or a half-settled bill.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go:  Production SQLite
  - billing/store/memory.go: In-memory for testing

SEE ALSO:
  - engine.go: Engine built on ObligationStore
  - loan/, card/: services built on the account stores
*/
package billing

import "context"

// =============================================================================
// OBLIGATION STORE
// =============================================================================

// ObligationStore persists installment schedules.
type ObligationStore interface {
	// CreateBatch persists a full schedule atomically. Either every
	// obligation is written or none are.
	CreateBatch(ctx context.Context, obs []Obligation) error

	// UpdateObligation persists accrual and status changes in place.
	UpdateObligation(ctx context.Context, ob Obligation) error

	// UpdateBatch persists a set of changes atomically. Either every
	// obligation is updated or none are.
	UpdateBatch(ctx context.Context, obs []Obligation) error

	// FindOpenDueBefore returns all non-PAID obligations for the
	// account with a due date strictly before the cutoff, ordered by
	// due date.
	FindOpenDueBefore(ctx context.Context, accountID AccountID, cutoff Date) ([]Obligation, error)

	// FindByStatus returns the account's obligations in the given status.
	FindByStatus(ctx context.Context, accountID AccountID, status ObligationStatus) ([]Obligation, error)

	// CountByStatus counts the account's obligations in the given status.
	CountByStatus(ctx context.Context, accountID AccountID, status ObligationStatus) (int64, error)

	// ListByAccount returns the account's full schedule ordered by number.
	ListByAccount(ctx context.Context, accountID AccountID) ([]Obligation, error)
}

// =============================================================================
// ACCOUNT STORES
// =============================================================================

// LoanStore persists term loan accounts.
type LoanStore interface {
	CreateLoan(ctx context.Context, loan LoanAccount) error

	// GetLoan returns the loan or ErrAccountNotFound.
	GetLoan(ctx context.Context, id AccountID) (*LoanAccount, error)

	UpdateLoan(ctx context.Context, loan LoanAccount) error
	DeleteLoan(ctx context.Context, id AccountID) error

	FindLoansByCustomer(ctx context.Context, customerID string) ([]LoanAccount, error)
	FindLoansByStatus(ctx context.Context, status LoanStatus) ([]LoanAccount, error)
}

// CardStore persists credit card accounts.
type CardStore interface {
	CreateCard(ctx context.Context, card CardAccount) error

	// GetCard returns the card or ErrAccountNotFound.
	GetCard(ctx context.Context, id AccountID) (*CardAccount, error)

	UpdateCard(ctx context.Context, card CardAccount) error
	DeleteCard(ctx context.Context, id AccountID) error

	FindCardsByCustomer(ctx context.Context, customerID string) ([]CardAccount, error)
	FindCardsByStatus(ctx context.Context, status CardStatus) ([]CardAccount, error)
}
