package ledger

import "github.com/shopspring/decimal"

// SeedBalance is a test helper that sets an account balance directly,
// bypassing the engine, when using the in-memory store.
func SeedBalance(s Store, accountID string, balance decimal.Decimal) {
	if mem, ok := s.(*MemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		acc, exists := mem.accounts[accountID]
		if !exists {
			return
		}
		acc.Balance = balance
		mem.accounts[accountID] = acc
	}
}

// TransactionsFor returns the transactions recorded for an account when using
// the in-memory store. Useful for asserting write counts in tests.
func TransactionsFor(s Store, accountID string) []Transaction {
	mem, ok := s.(*MemoryStore)
	if !ok {
		return nil
	}
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	out := make([]Transaction, len(mem.transactions[accountID]))
	copy(out, mem.transactions[accountID])
	return out
}
