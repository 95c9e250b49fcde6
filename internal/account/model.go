package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a wallet owner together with the balance attached to them.
// The balance only ever changes through the ledger engine.
type Account struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile carries the mutable identity fields of an account.
type Profile struct {
	FullName string
	Email    string
	Phone    string
}
