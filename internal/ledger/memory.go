package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dompet-pay/dompet_pay/internal/account"
)

// MemoryStore is a concurrency-safe in-memory backend implementing both the
// ledger Store and the account Repository over one shared state. Sharing the
// state is what makes the atomic commit pair and the cascade delete possible
// without a database. Used in unit tests and when running without Postgres.
type MemoryStore struct {
	mu           sync.RWMutex
	accounts     map[string]account.Account
	transactions map[string][]Transaction
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[string]account.Account),
		transactions: make(map[string][]Transaction),
	}
}

// LoadAccount returns the current account state.
func (s *MemoryStore) LoadAccount(ctx context.Context, id string) (account.Account, error) {
	return s.Get(ctx, id)
}

// Commit atomically appends the transaction and swaps in the new balance,
// failing with ErrBalanceConflict when the stored balance moved since it was
// read.
func (s *MemoryStore) Commit(_ context.Context, txn Transaction, newBalance, priorBalance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[txn.AccountID]
	if !ok {
		return account.ErrNotFound
	}
	if !acc.Balance.Equal(priorBalance) {
		return ErrBalanceConflict
	}

	acc.Balance = newBalance
	acc.UpdatedAt = txn.UpdatedAt
	s.accounts[txn.AccountID] = acc
	s.transactions[txn.AccountID] = append(s.transactions[txn.AccountID], txn)
	return nil
}

// Create inserts a new account.
func (s *MemoryStore) Create(_ context.Context, acc account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[acc.ID]; exists {
		return account.ErrDuplicateIdentity
	}
	s.accounts[acc.ID] = acc
	return nil
}

// Get fetches an account by identifier.
func (s *MemoryStore) Get(_ context.Context, id string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return acc, nil
}

// UpdateProfile stores the account's identity fields without touching the balance.
func (s *MemoryStore) UpdateProfile(_ context.Context, acc account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.accounts[acc.ID]
	if !ok {
		return account.ErrNotFound
	}
	stored.FullName = acc.FullName
	stored.Email = acc.Email
	stored.Phone = acc.Phone
	stored.UpdatedAt = acc.UpdatedAt
	s.accounts[acc.ID] = stored
	return nil
}

// Delete removes the account and all transactions recorded against it.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return account.ErrNotFound
	}
	delete(s.accounts, id)
	delete(s.transactions, id)
	return nil
}

// EmailTaken reports whether another account already uses the email.
func (s *MemoryStore) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.accounts {
		if acc.Email == email && acc.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// PhoneTaken reports whether another account already uses the phone number.
func (s *MemoryStore) PhoneTaken(_ context.Context, phone, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.accounts {
		if acc.Phone == phone && acc.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}
