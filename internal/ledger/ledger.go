package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dompet-pay/dompet_pay/internal/account"
)

var (
	// ErrInsufficientBalance occurs when a bill payment would drive the
	// account balance below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount indicates a non-positive transaction amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidCategory indicates an unknown transaction category.
	ErrInvalidCategory = errors.New("unknown transaction category")

	// ErrBalanceConflict indicates the stored balance moved between read and
	// commit. The engine recomputes and retries on this error.
	ErrBalanceConflict = errors.New("balance changed concurrently")
)

// Category identifies the kind of balance mutation a transaction applies.
type Category string

const (
	// CategoryTopUp credits the account balance.
	CategoryTopUp Category = "TOPUP"
	// CategoryRefund credits the account balance, symmetric with top-up.
	CategoryRefund Category = "REFUND"
	// CategoryBillPayment debits the account balance, guarded by the
	// non-negative balance invariant.
	CategoryBillPayment Category = "BILLPAYMENT"
)

func (c Category) valid() bool {
	switch c {
	case CategoryTopUp, CategoryRefund, CategoryBillPayment:
		return true
	default:
		return false
	}
}

// Transaction is an immutable record of one balance-changing event. It is
// created exclusively by a successful apply and never mutated afterwards.
type Transaction struct {
	ID        string
	AccountID string
	Category  Category
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Result captures the outcome of applying a transaction.
type Result struct {
	TransactionID string
	Category      Category
	Amount        decimal.Decimal
	Balance       decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Store is the durable backend the engine commits against. Commit persists
// the transaction record and the new balance as one atomic unit, and fails
// with ErrBalanceConflict when the stored balance no longer equals
// priorBalance.
type Store interface {
	LoadAccount(ctx context.Context, id string) (account.Account, error)
	Commit(ctx context.Context, txn Transaction, newBalance, priorBalance decimal.Decimal) error
}
