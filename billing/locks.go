/*
locks.go - Per-account serialization

PURPOSE:
  Schedule generation, bill aggregation, payment reconciliation and
  balance updates for a single account must be mutually exclusive:
  two concurrent payments must not both observe the same pre-payment
  bill and both succeed, and a charge must not interleave with a
  balance read it invalidates.

  AccountLocks is the serialization point: a mutex registry keyed by
  account id. The product services acquire the account's lock around
  each logical operation. Different accounts proceed in parallel.

USAGE:
  release := locks.Acquire(accountID)
  defer release()
*/
package billing

import "sync"

// AccountLocks serializes operations per account id.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[AccountID]*sync.Mutex
}

// NewAccountLocks creates an empty lock registry.
func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[AccountID]*sync.Mutex)}
}

// Acquire locks the account's mutex, creating it on first use, and
// returns the release function. Locks are never removed; the registry
// grows with the number of distinct accounts touched by the process.
func (al *AccountLocks) Acquire(id AccountID) func() {
	al.mu.Lock()
	m, ok := al.locks[id]
	if !ok {
		m = &sync.Mutex{}
		al.locks[id] = m
	}
	al.mu.Unlock()

	m.Lock()
	return m.Unlock
}
