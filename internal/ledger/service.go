package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dompet-pay/dompet_pay/internal/notification"
)

// Service is the ledger engine. It applies transactions against account
// balances and enforces the non-negative balance invariant before any
// durable write.
type Service struct {
	store    Store
	notifier notification.Notifier
}

// NewService builds a ledger engine backed by the given store.
func NewService(store Store, notifier notification.Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// Apply runs one transaction against an account: load the current balance,
// compute the new balance per category rule, validate the invariant, then
// commit the transaction record and the balance update as one atomic unit.
// Failures leave both stores untouched.
//
// Same-account concurrency is handled optimistically: Commit performs a
// compare-and-swap on the stored balance and Apply recomputes on conflict,
// so two conflicting debits can never both pass the invariant check.
func (s *Service) Apply(ctx context.Context, accountID string, category Category, amount decimal.Decimal) (Result, error) {
	if !category.valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidCategory, string(category))
	}
	if amount.Sign() <= 0 {
		return Result{}, ErrInvalidAmount
	}

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		acc, err := s.store.LoadAccount(ctx, accountID)
		if err != nil {
			return Result{}, err
		}

		var newBalance decimal.Decimal
		switch category {
		case CategoryTopUp, CategoryRefund:
			newBalance = acc.Balance.Add(amount)
		case CategoryBillPayment:
			newBalance = acc.Balance.Sub(amount)
			if newBalance.IsNegative() {
				return Result{}, ErrInsufficientBalance
			}
		}

		now := time.Now().UTC()
		txn := Transaction{
			ID:        uuid.New().String(),
			AccountID: acc.ID,
			Category:  category,
			Amount:    amount,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := s.store.Commit(ctx, txn, newBalance, acc.Balance); err != nil {
			if errors.Is(err, ErrBalanceConflict) {
				// Another writer moved the balance; recompute from scratch.
				continue
			}
			return Result{}, err
		}

		if s.notifier != nil {
			_ = s.notifier.Send(ctx, notification.Message{
				Kind:        notification.KindTransaction,
				Destination: acc.ID,
				Body:        fmt.Sprintf("%s of %s processed, balance is now %s", category, amount, newBalance),
			})
		}

		return Result{
			TransactionID: txn.ID,
			Category:      category,
			Amount:        amount,
			Balance:       newBalance,
			CreatedAt:     txn.CreatedAt,
			UpdatedAt:     txn.UpdatedAt,
		}, nil
	}
}
