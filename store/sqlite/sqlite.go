/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces (ObligationStore, LoanStore,
  CardStore, SnapshotStore) using SQLite. In production, the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  obligations:    Installment schedules, mutated by accrual and payment
  credits:        Term loan accounts
  credit_cards:   Revolving card accounts
  daily_balances: Append-only point-in-time balance history

INDEXES:
  - idx_obligations_account_due:    bill aggregation (hot path)
  - idx_obligations_account_status: overdue checks and status listings
  - idx_daily_balances_account_date: history range queries

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/credit.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := billing.NewEngine(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - billing/store.go: Interface definitions
  - billing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/credit-engine/billing"
)

const tsLayout = time.RFC3339

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Installment schedules (loans and card purchases share one table)
	CREATE TABLE IF NOT EXISTS obligations (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		number INTEGER NOT NULL,
		amount TEXT NOT NULL,
		interest TEXT NOT NULL,
		due_date TEXT NOT NULL,
		days_overdue INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Bill aggregation (hot path): open obligations due before a cutoff
	CREATE INDEX IF NOT EXISTS idx_obligations_account_due
		ON obligations(account_id, due_date);
	CREATE INDEX IF NOT EXISTS idx_obligations_account_status
		ON obligations(account_id, status);

	-- Term loans
	CREATE TABLE IF NOT EXISTS credits (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		product_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		balance TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		term INTEGER NOT NULL,
		status TEXT NOT NULL,
		payment_day INTEGER NOT NULL,
		next_payment_date TEXT NOT NULL,
		next_payment_amount TEXT NOT NULL,
		next_installment INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_credits_customer
		ON credits(customer_id);
	CREATE INDEX IF NOT EXISTS idx_credits_status
		ON credits(status);

	-- Credit cards
	CREATE TABLE IF NOT EXISTS credit_cards (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		card_number TEXT NOT NULL,
		product_type TEXT NOT NULL,
		credit_limit TEXT NOT NULL,
		available_credit TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		status TEXT NOT NULL,
		payment_day INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_credit_cards_customer
		ON credit_cards(customer_id);
	CREATE INDEX IF NOT EXISTS idx_credit_cards_status
		ON credit_cards(status);

	-- Daily balance history (append-only)
	CREATE TABLE IF NOT EXISTS daily_balances (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		date TEXT NOT NULL,
		balance TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_daily_balances_account_date
		ON daily_balances(account_id, date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// OBLIGATION STORE (billing.ObligationStore interface)
// =============================================================================

// CreateBatch inserts a full schedule in one SQL transaction; callers
// never observe a partially written schedule.
func (s *Store) CreateBatch(ctx context.Context, obs []billing.Obligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	query := `
		INSERT INTO obligations
		(id, account_id, number, amount, interest, due_date, days_overdue, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, ob := range obs {
		_, err := sqlTx.ExecContext(ctx, query,
			ob.ID,
			ob.AccountID,
			ob.Number,
			ob.Amount.String(),
			ob.Interest.String(),
			ob.DueDate.String(),
			ob.DaysOverdue,
			ob.Status,
			ob.CreatedAt.UTC().Format(tsLayout),
			ob.UpdatedAt.UTC().Format(tsLayout),
		)
		if err != nil {
			return fmt.Errorf("failed to insert obligation %s: %w", ob.ID, err)
		}
	}

	return sqlTx.Commit()
}

const obligationUpdate = `
	UPDATE obligations
	SET interest = ?, days_overdue = ?, status = ?, updated_at = ?
	WHERE id = ?
`

// UpdateObligation persists an accrual refresh or payment settlement.
func (s *Store) UpdateObligation(ctx context.Context, ob billing.Obligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, obligationUpdate,
		ob.Interest.String(),
		ob.DaysOverdue,
		ob.Status,
		ob.UpdatedAt.UTC().Format(tsLayout),
		ob.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update obligation %s: %w", ob.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return billing.ErrObligationNotFound
	}
	return nil
}

// UpdateBatch applies a set of changes in one SQL transaction; a bill
// settlement marks every included obligation or none.
func (s *Store) UpdateBatch(ctx context.Context, obs []billing.Obligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, ob := range obs {
		res, err := sqlTx.ExecContext(ctx, obligationUpdate,
			ob.Interest.String(),
			ob.DaysOverdue,
			ob.Status,
			ob.UpdatedAt.UTC().Format(tsLayout),
			ob.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update obligation %s: %w", ob.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return billing.ErrObligationNotFound
		}
	}

	return sqlTx.Commit()
}

// FindOpenDueBefore returns unpaid obligations due strictly before the
// cutoff, ordered by due date.
func (s *Store) FindOpenDueBefore(ctx context.Context, accountID billing.AccountID, cutoff billing.Date) ([]billing.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, account_id, number, amount, interest, due_date, days_overdue, status, created_at, updated_at
		FROM obligations
		WHERE account_id = ? AND status != ? AND due_date < ?
		ORDER BY due_date ASC, number ASC
	`
	return s.queryObligations(ctx, query, accountID, billing.StatusPaid, cutoff.String())
}

// FindByStatus returns an account's obligations in one status, ordered
// by sequence number.
func (s *Store) FindByStatus(ctx context.Context, accountID billing.AccountID, status billing.ObligationStatus) ([]billing.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, account_id, number, amount, interest, due_date, days_overdue, status, created_at, updated_at
		FROM obligations
		WHERE account_id = ? AND status = ?
		ORDER BY number ASC
	`
	return s.queryObligations(ctx, query, accountID, status)
}

// CountByStatus counts an account's obligations in one status.
func (s *Store) CountByStatus(ctx context.Context, accountID billing.AccountID, status billing.ObligationStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM obligations WHERE account_id = ? AND status = ?",
		accountID, status,
	).Scan(&n)
	return n, err
}

// ListByAccount returns an account's full schedule in sequence order.
func (s *Store) ListByAccount(ctx context.Context, accountID billing.AccountID) ([]billing.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, account_id, number, amount, interest, due_date, days_overdue, status, created_at, updated_at
		FROM obligations
		WHERE account_id = ?
		ORDER BY number ASC
	`
	return s.queryObligations(ctx, query, accountID)
}

func (s *Store) queryObligations(ctx context.Context, query string, args ...any) ([]billing.Obligation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query obligations: %w", err)
	}
	defer rows.Close()

	var obs []billing.Obligation
	for rows.Next() {
		ob, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		obs = append(obs, ob)
	}
	return obs, rows.Err()
}

func scanObligation(rows *sql.Rows) (billing.Obligation, error) {
	var (
		ob        billing.Obligation
		amount    string
		interest  string
		dueDate   string
		createdAt string
		updatedAt string
	)

	err := rows.Scan(
		&ob.ID, &ob.AccountID, &ob.Number, &amount, &interest,
		&dueDate, &ob.DaysOverdue, &ob.Status, &createdAt, &updatedAt,
	)
	if err != nil {
		return ob, fmt.Errorf("failed to scan obligation: %w", err)
	}

	if ob.Amount, err = decimal.NewFromString(amount); err != nil {
		return ob, fmt.Errorf("bad amount for obligation %s: %w", ob.ID, err)
	}
	if ob.Interest, err = decimal.NewFromString(interest); err != nil {
		return ob, fmt.Errorf("bad interest for obligation %s: %w", ob.ID, err)
	}
	if ob.DueDate, err = billing.ParseDate(dueDate); err != nil {
		return ob, fmt.Errorf("bad due date for obligation %s: %w", ob.ID, err)
	}
	ob.CreatedAt, _ = time.Parse(tsLayout, createdAt)
	ob.UpdatedAt, _ = time.Parse(tsLayout, updatedAt)
	return ob, nil
}

// =============================================================================
// LOAN STORE (billing.LoanStore interface)
// =============================================================================

func (s *Store) CreateLoan(ctx context.Context, loan billing.LoanAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO credits
		(id, customer_id, product_type, amount, balance, interest_rate, term, status,
		 payment_day, next_payment_date, next_payment_amount, next_installment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		loan.ID,
		loan.CustomerID,
		loan.Type,
		loan.Amount.String(),
		loan.Balance.String(),
		loan.InterestRate.String(),
		loan.Term,
		loan.Status,
		loan.PaymentDay,
		loan.NextPaymentDate.String(),
		loan.NextPaymentAmount.String(),
		loan.NextInstallment,
		loan.CreatedAt.UTC().Format(tsLayout),
		loan.UpdatedAt.UTC().Format(tsLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert loan %s: %w", loan.ID, err)
	}
	return nil
}

func (s *Store) GetLoan(ctx context.Context, id billing.AccountID) (*billing.LoanAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loans, err := s.queryLoans(ctx, loanSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return nil, billing.ErrAccountNotFound
	}
	return &loans[0], nil
}

func (s *Store) UpdateLoan(ctx context.Context, loan billing.LoanAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE credits
		SET balance = ?, status = ?, next_payment_date = ?, next_payment_amount = ?,
		    next_installment = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		loan.Balance.String(),
		loan.Status,
		loan.NextPaymentDate.String(),
		loan.NextPaymentAmount.String(),
		loan.NextInstallment,
		loan.UpdatedAt.UTC().Format(tsLayout),
		loan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan %s: %w", loan.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return billing.ErrAccountNotFound
	}
	return nil
}

func (s *Store) DeleteLoan(ctx context.Context, id billing.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM credits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete loan %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return billing.ErrAccountNotFound
	}
	return nil
}

func (s *Store) FindLoansByCustomer(ctx context.Context, customerID string) ([]billing.LoanAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryLoans(ctx, loanSelect+" WHERE customer_id = ? ORDER BY id", customerID)
}

func (s *Store) FindLoansByStatus(ctx context.Context, status billing.LoanStatus) ([]billing.LoanAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryLoans(ctx, loanSelect+" WHERE status = ? ORDER BY id", status)
}

const loanSelect = `
	SELECT id, customer_id, product_type, amount, balance, interest_rate, term, status,
	       payment_day, next_payment_date, next_payment_amount, next_installment, created_at, updated_at
	FROM credits`

func (s *Store) queryLoans(ctx context.Context, query string, args ...any) ([]billing.LoanAccount, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var loans []billing.LoanAccount
	for rows.Next() {
		var (
			l               billing.LoanAccount
			amount          string
			balance         string
			rate            string
			nextDate        string
			nextAmount      string
			createdAt       string
			updatedAt       string
		)
		err := rows.Scan(
			&l.ID, &l.CustomerID, &l.Type, &amount, &balance, &rate, &l.Term, &l.Status,
			&l.PaymentDay, &nextDate, &nextAmount, &l.NextInstallment, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		if l.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad amount for loan %s: %w", l.ID, err)
		}
		if l.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("bad balance for loan %s: %w", l.ID, err)
		}
		if l.InterestRate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("bad rate for loan %s: %w", l.ID, err)
		}
		if l.NextPaymentDate, err = billing.ParseDate(nextDate); err != nil {
			return nil, fmt.Errorf("bad next payment date for loan %s: %w", l.ID, err)
		}
		if l.NextPaymentAmount, err = decimal.NewFromString(nextAmount); err != nil {
			return nil, fmt.Errorf("bad next payment amount for loan %s: %w", l.ID, err)
		}
		l.CreatedAt, _ = time.Parse(tsLayout, createdAt)
		l.UpdatedAt, _ = time.Parse(tsLayout, updatedAt)
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// =============================================================================
// CARD STORE (billing.CardStore interface)
// =============================================================================

func (s *Store) CreateCard(ctx context.Context, card billing.CardAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO credit_cards
		(id, customer_id, card_number, product_type, credit_limit, available_credit,
		 interest_rate, status, payment_day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		card.ID,
		card.CustomerID,
		card.CardNumber,
		card.Type,
		card.CreditLimit.String(),
		card.AvailableCredit.String(),
		card.InterestRate.String(),
		card.Status,
		card.PaymentDay,
		card.CreatedAt.UTC().Format(tsLayout),
		card.UpdatedAt.UTC().Format(tsLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
	}
	return nil
}

func (s *Store) GetCard(ctx context.Context, id billing.AccountID) (*billing.CardAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cards, err := s.queryCards(ctx, cardSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, billing.ErrAccountNotFound
	}
	return &cards[0], nil
}

func (s *Store) UpdateCard(ctx context.Context, card billing.CardAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE credit_cards
		SET available_credit = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		card.AvailableCredit.String(),
		card.Status,
		card.UpdatedAt.UTC().Format(tsLayout),
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update card %s: %w", card.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return billing.ErrAccountNotFound
	}
	return nil
}

func (s *Store) DeleteCard(ctx context.Context, id billing.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM credit_cards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return billing.ErrAccountNotFound
	}
	return nil
}

func (s *Store) FindCardsByCustomer(ctx context.Context, customerID string) ([]billing.CardAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCards(ctx, cardSelect+" WHERE customer_id = ? ORDER BY id", customerID)
}

func (s *Store) FindCardsByStatus(ctx context.Context, status billing.CardStatus) ([]billing.CardAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCards(ctx, cardSelect+" WHERE status = ? ORDER BY id", status)
}

const cardSelect = `
	SELECT id, customer_id, card_number, product_type, credit_limit, available_credit,
	       interest_rate, status, payment_day, created_at, updated_at
	FROM credit_cards`

func (s *Store) queryCards(ctx context.Context, query string, args ...any) ([]billing.CardAccount, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []billing.CardAccount
	for rows.Next() {
		var (
			c         billing.CardAccount
			limit     string
			available string
			rate      string
			createdAt string
			updatedAt string
		)
		err := rows.Scan(
			&c.ID, &c.CustomerID, &c.CardNumber, &c.Type, &limit, &available,
			&rate, &c.Status, &c.PaymentDay, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		if c.CreditLimit, err = decimal.NewFromString(limit); err != nil {
			return nil, fmt.Errorf("bad limit for card %s: %w", c.ID, err)
		}
		if c.AvailableCredit, err = decimal.NewFromString(available); err != nil {
			return nil, fmt.Errorf("bad available credit for card %s: %w", c.ID, err)
		}
		if c.InterestRate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("bad rate for card %s: %w", c.ID, err)
		}
		c.CreatedAt, _ = time.Parse(tsLayout, createdAt)
		c.UpdatedAt, _ = time.Parse(tsLayout, updatedAt)
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// =============================================================================
// SNAPSHOT STORE (billing.SnapshotStore interface)
// =============================================================================

// AppendBalance records one daily balance. History is never rewritten.
func (s *Store) AppendBalance(ctx context.Context, snapshot billing.DailyBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO daily_balances (id, account_id, date, balance) VALUES (?, ?, ?, ?)",
		snapshot.ID,
		snapshot.AccountID,
		snapshot.Date.String(),
		snapshot.Balance.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert balance snapshot: %w", err)
	}
	return nil
}

// BalanceHistory returns an account's snapshots in [from, to], ordered
// by date.
func (s *Store) BalanceHistory(ctx context.Context, accountID billing.AccountID, from, to billing.Date) ([]billing.DailyBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, account_id, date, balance
		FROM daily_balances
		WHERE account_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`
	rows, err := s.db.QueryContext(ctx, query, accountID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query balance history: %w", err)
	}
	defer rows.Close()

	var history []billing.DailyBalance
	for rows.Next() {
		var (
			snap    billing.DailyBalance
			date    string
			balance string
		)
		if err := rows.Scan(&snap.ID, &snap.AccountID, &date, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan balance snapshot: %w", err)
		}
		if snap.Date, err = billing.ParseDate(date); err != nil {
			return nil, fmt.Errorf("bad date for snapshot %s: %w", snap.ID, err)
		}
		if snap.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("bad balance for snapshot %s: %w", snap.ID, err)
		}
		history = append(history, snap)
	}
	return history, rows.Err()
}
