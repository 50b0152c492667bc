// Package store provides in-memory implementations of the billing
// persistence interfaces, used in tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/credit-engine/billing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements ObligationStore, LoanStore, CardStore and
// SnapshotStore with map-backed storage guarded by a single RWMutex.
type Memory struct {
	mu          sync.RWMutex
	obligations map[billing.ObligationID]billing.Obligation
	loans       map[billing.AccountID]billing.LoanAccount
	cards       map[billing.AccountID]billing.CardAccount
	snapshots   map[billing.AccountID][]billing.DailyBalance
}

func NewMemory() *Memory {
	return &Memory{
		obligations: make(map[billing.ObligationID]billing.Obligation),
		loans:       make(map[billing.AccountID]billing.LoanAccount),
		cards:       make(map[billing.AccountID]billing.CardAccount),
		snapshots:   make(map[billing.AccountID][]billing.DailyBalance),
	}
}

// =============================================================================
// OBLIGATION STORE
// =============================================================================

// CreateBatch writes a full schedule atomically: the map is only
// touched after every obligation has been validated.
func (m *Memory) CreateBatch(_ context.Context, obs []billing.Obligation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ob := range obs {
		if _, exists := m.obligations[ob.ID]; exists {
			return billing.ErrInvalidInput
		}
	}
	for _, ob := range obs {
		m.obligations[ob.ID] = ob
	}
	return nil
}

func (m *Memory) UpdateObligation(_ context.Context, ob billing.Obligation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.obligations[ob.ID]; !exists {
		return billing.ErrObligationNotFound
	}
	m.obligations[ob.ID] = ob
	return nil
}

// UpdateBatch applies a set of changes atomically: the map is only
// touched after every obligation has been found.
func (m *Memory) UpdateBatch(_ context.Context, obs []billing.Obligation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ob := range obs {
		if _, exists := m.obligations[ob.ID]; !exists {
			return billing.ErrObligationNotFound
		}
	}
	for _, ob := range obs {
		m.obligations[ob.ID] = ob
	}
	return nil
}

func (m *Memory) FindOpenDueBefore(_ context.Context, accountID billing.AccountID, cutoff billing.Date) ([]billing.Obligation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []billing.Obligation
	for _, ob := range m.obligations {
		if ob.AccountID == accountID && ob.Status != billing.StatusPaid && ob.DueDate.Before(cutoff) {
			result = append(result, ob)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DueDate.Before(result[j].DueDate)
	})
	return result, nil
}

func (m *Memory) FindByStatus(_ context.Context, accountID billing.AccountID, status billing.ObligationStatus) ([]billing.Obligation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []billing.Obligation
	for _, ob := range m.obligations {
		if ob.AccountID == accountID && ob.Status == status {
			result = append(result, ob)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Number < result[j].Number
	})
	return result, nil
}

func (m *Memory) CountByStatus(_ context.Context, accountID billing.AccountID, status billing.ObligationStatus) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, ob := range m.obligations {
		if ob.AccountID == accountID && ob.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *Memory) ListByAccount(_ context.Context, accountID billing.AccountID) ([]billing.Obligation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []billing.Obligation
	for _, ob := range m.obligations {
		if ob.AccountID == accountID {
			result = append(result, ob)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Number < result[j].Number
	})
	return result, nil
}

// =============================================================================
// LOAN STORE
// =============================================================================

func (m *Memory) CreateLoan(_ context.Context, loan billing.LoanAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = loan
	return nil
}

func (m *Memory) GetLoan(_ context.Context, id billing.AccountID) (*billing.LoanAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	loan, ok := m.loans[id]
	if !ok {
		return nil, billing.ErrAccountNotFound
	}
	return &loan, nil
}

func (m *Memory) UpdateLoan(_ context.Context, loan billing.LoanAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.loans[loan.ID]; !ok {
		return billing.ErrAccountNotFound
	}
	m.loans[loan.ID] = loan
	return nil
}

func (m *Memory) DeleteLoan(_ context.Context, id billing.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.loans[id]; !ok {
		return billing.ErrAccountNotFound
	}
	delete(m.loans, id)
	return nil
}

func (m *Memory) FindLoansByCustomer(_ context.Context, customerID string) ([]billing.LoanAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []billing.LoanAccount
	for _, loan := range m.loans {
		if loan.CustomerID == customerID {
			result = append(result, loan)
		}
	}
	sortLoans(result)
	return result, nil
}

func (m *Memory) FindLoansByStatus(_ context.Context, status billing.LoanStatus) ([]billing.LoanAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []billing.LoanAccount
	for _, loan := range m.loans {
		if loan.Status == status {
			result = append(result, loan)
		}
	}
	sortLoans(result)
	return result, nil
}

func sortLoans(loans []billing.LoanAccount) {
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
}

// =============================================================================
// CARD STORE
// =============================================================================

func (m *Memory) CreateCard(_ context.Context, card billing.CardAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[card.ID] = card
	return nil
}

func (m *Memory) GetCard(_ context.Context, id billing.AccountID) (*billing.CardAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	card, ok := m.cards[id]
	if !ok {
		return nil, billing.ErrAccountNotFound
	}
	return &card, nil
}

func (m *Memory) UpdateCard(_ context.Context, card billing.CardAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cards[card.ID]; !ok {
		return billing.ErrAccountNotFound
	}
	m.cards[card.ID] = card
	return nil
}

func (m *Memory) DeleteCard(_ context.Context, id billing.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cards[id]; !ok {
		return billing.ErrAccountNotFound
	}
	delete(m.cards, id)
	return nil
}

func (m *Memory) FindCardsByCustomer(_ context.Context, customerID string) ([]billing.CardAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []billing.CardAccount
	for _, card := range m.cards {
		if card.CustomerID == customerID {
			result = append(result, card)
		}
	}
	sortCards(result)
	return result, nil
}

func (m *Memory) FindCardsByStatus(_ context.Context, status billing.CardStatus) ([]billing.CardAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []billing.CardAccount
	for _, card := range m.cards {
		if card.Status == status {
			result = append(result, card)
		}
	}
	sortCards(result)
	return result, nil
}

func sortCards(cards []billing.CardAccount) {
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
}

// =============================================================================
// SNAPSHOT STORE
// =============================================================================

func (m *Memory) AppendBalance(_ context.Context, snapshot billing.DailyBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.AccountID] = append(m.snapshots[snapshot.AccountID], snapshot)
	return nil
}

func (m *Memory) BalanceHistory(_ context.Context, accountID billing.AccountID, from, to billing.Date) ([]billing.DailyBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []billing.DailyBalance
	for _, s := range m.snapshots[accountID] {
		if from.BeforeOrEqual(s.Date) && s.Date.BeforeOrEqual(to) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}
