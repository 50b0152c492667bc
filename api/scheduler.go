/*
scheduler.go - Daily balance snapshot recorder

PURPOSE:
  Periodically records a point-in-time balance for every active account:
  the remaining balance for loans, the available credit for cards. The
  history backs the balance-over-time endpoints and month-average
  reporting downstream.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Each sweep is per-account fire-and-forget: one failed account is
    logged and skipped, the sweep continues
  - History is append-only; a sweep never rewrites prior days

USAGE:
  recorder := NewBalanceRecorder(loanStore, cardStore, snapshots)
  recorder.Start()
  // ... later
  recorder.Stop()

SEE ALSO:
  - billing/snapshot.go: the SnapshotStore being appended to
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/credit-engine/billing"
)

// BalanceRecorder appends one balance snapshot per active account per
// sweep.
type BalanceRecorder struct {
	Loans     billing.LoanStore
	Cards     billing.CardStore
	Snapshots billing.SnapshotStore
	Interval  time.Duration
	Enabled   bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewBalanceRecorder creates a recorder sweeping once per day.
func NewBalanceRecorder(loans billing.LoanStore, cards billing.CardStore, snapshots billing.SnapshotStore) *BalanceRecorder {
	return &BalanceRecorder{
		Loans:     loans,
		Cards:     cards,
		Snapshots: snapshots,
		Interval:  24 * time.Hour,
		Enabled:   true,
		stop:      make(chan bool),
	}
}

// Start begins the recorder.
func (br *BalanceRecorder) Start() {
	br.mu.Lock()
	defer br.mu.Unlock()

	if !br.Enabled {
		log.Println("[BalanceRecorder] Disabled, not starting")
		return
	}

	br.ticker = time.NewTicker(br.Interval)
	br.wg.Add(1)

	go br.run()

	log.Printf("[BalanceRecorder] Started with interval: %v", br.Interval)
}

// Stop stops the recorder.
func (br *BalanceRecorder) Stop() {
	br.mu.Lock()
	defer br.mu.Unlock()

	if br.ticker != nil {
		br.ticker.Stop()
		close(br.stop)
		br.wg.Wait()
		log.Println("[BalanceRecorder] Stopped")
	}
}

func (br *BalanceRecorder) run() {
	defer br.wg.Done()

	// Run immediately on start
	br.sweep()

	for {
		select {
		case <-br.ticker.C:
			br.sweep()
		case <-br.stop:
			return
		}
	}
}

// sweep records today's balance for every active loan and card.
func (br *BalanceRecorder) sweep() {
	ctx := context.Background()
	today := billing.Today()

	recorded := 0

	loans, err := br.Loans.FindLoansByStatus(ctx, billing.LoanActive)
	if err != nil {
		log.Printf("[BalanceRecorder] Error listing active loans: %v", err)
	} else {
		for _, l := range loans {
			snap := billing.DailyBalance{
				ID:        uuid.NewString(),
				AccountID: l.ID,
				Date:      today,
				Balance:   l.Balance,
			}
			if err := br.Snapshots.AppendBalance(ctx, snap); err != nil {
				log.Printf("[BalanceRecorder] Error recording loan %s: %v", l.ID, err)
				continue
			}
			recorded++
		}
	}

	cards, err := br.Cards.FindCardsByStatus(ctx, billing.CardActive)
	if err != nil {
		log.Printf("[BalanceRecorder] Error listing active cards: %v", err)
	} else {
		for _, c := range cards {
			snap := billing.DailyBalance{
				ID:        uuid.NewString(),
				AccountID: c.ID,
				Date:      today,
				Balance:   c.AvailableCredit,
			}
			if err := br.Snapshots.AppendBalance(ctx, snap); err != nil {
				log.Printf("[BalanceRecorder] Error recording card %s: %v", c.ID, err)
				continue
			}
			recorded++
		}
	}

	if recorded > 0 {
		log.Printf("[BalanceRecorder] Recorded %d balance(s) for %s", recorded, today)
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (br *BalanceRecorder) RunNow() {
	br.sweep()
}
