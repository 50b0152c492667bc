package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DAILY BALANCE SNAPSHOT - Point-in-time balance history
// =============================================================================

// DailyBalance is one point-in-time balance record for a credit
// product: the remaining balance for a loan, the available credit for
// a card. Recorded once per day by the snapshot job.
type DailyBalance struct {
	ID        string
	AccountID AccountID
	Date      Date
	Balance   decimal.Decimal
}

// SnapshotStore persists daily balance history. Append-only; history
// is never rewritten.
type SnapshotStore interface {
	// AppendBalance records one daily balance.
	AppendBalance(ctx context.Context, snapshot DailyBalance) error

	// BalanceHistory returns an account's snapshots in [from, to],
	// ordered by date.
	BalanceHistory(ctx context.Context, accountID AccountID, from, to Date) ([]DailyBalance, error)
}
