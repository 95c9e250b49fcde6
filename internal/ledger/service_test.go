package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dompet-pay/dompet_pay/internal/account"
	"github.com/dompet-pay/dompet_pay/internal/notification"
)

type testNotifier struct {
	mu   sync.Mutex
	last notification.Message
	sent int
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = msg
	n.sent++
	return nil
}

func newTestAccount(t *testing.T, store *MemoryStore) account.Account {
	t.Helper()
	now := time.Now().UTC()
	acc := account.Account{
		ID:        uuid.NewString(),
		FullName:  "Dwi Putra",
		Email:     uuid.NewString() + "@example.com",
		Phone:     "+62" + uuid.NewString()[:8],
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Create(context.Background(), acc); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return acc
}

func TestApplyTopUpAndRefundCredit(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()
	acc := newTestAccount(t, store)

	res, err := svc.Apply(ctx, acc.ID, CategoryTopUp, decimal.RequireFromString("100.50"))
	if err != nil {
		t.Fatalf("top up: %v", err)
	}
	if !res.Balance.Equal(decimal.RequireFromString("100.50")) {
		t.Fatalf("expected balance 100.50, got %s", res.Balance)
	}

	res, err = svc.Apply(ctx, acc.ID, CategoryRefund, decimal.RequireFromString("49.50"))
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if !res.Balance.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected balance 150, got %s", res.Balance)
	}

	txns := TransactionsFor(store, acc.ID)
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	if txns[0].Category != CategoryTopUp || txns[1].Category != CategoryRefund {
		t.Fatalf("unexpected categories: %s, %s", txns[0].Category, txns[1].Category)
	}
	if !txns[0].Amount.Equal(decimal.RequireFromString("100.50")) {
		t.Fatalf("expected recorded amount 100.50, got %s", txns[0].Amount)
	}
}

func TestApplyBillPaymentDebits(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)
	acc := newTestAccount(t, store)
	SeedBalance(store, acc.ID, decimal.NewFromInt(100))

	res, err := svc.Apply(context.Background(), acc.ID, CategoryBillPayment, decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("bill payment: %v", err)
	}
	if !res.Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected balance 60, got %s", res.Balance)
	}
}

func TestApplyBillPaymentInsufficientBalance(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)
	acc := newTestAccount(t, store)
	SeedBalance(store, acc.ID, decimal.NewFromInt(100))

	if _, err := svc.Apply(context.Background(), acc.ID, CategoryBillPayment, decimal.NewFromInt(180)); err != ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	stored, err := store.Get(context.Background(), acc.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !stored.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance must stay 100, got %s", stored.Balance)
	}
	if txns := TransactionsFor(store, acc.ID); len(txns) != 0 {
		t.Fatalf("expected no transactions, got %d", len(txns))
	}
}

func TestApplyBillPaymentExactBalance(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)
	acc := newTestAccount(t, store)
	SeedBalance(store, acc.ID, decimal.RequireFromString("75.25"))

	res, err := svc.Apply(context.Background(), acc.ID, CategoryBillPayment, decimal.RequireFromString("75.25"))
	if err != nil {
		t.Fatalf("bill payment at exact balance: %v", err)
	}
	if !res.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", res.Balance)
	}
}

func TestApplyAccountNotFound(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)

	missing := uuid.NewString()
	if _, err := svc.Apply(context.Background(), missing, CategoryTopUp, decimal.NewFromInt(10)); err != account.ErrNotFound {
		t.Fatalf("expected account not found, got %v", err)
	}
	if txns := TransactionsFor(store, missing); len(txns) != 0 {
		t.Fatalf("expected no transactions for missing account, got %d", len(txns))
	}
}

func TestApplyRejectsInvalidInput(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)
	acc := newTestAccount(t, store)

	ctx := context.Background()
	if _, err := svc.Apply(ctx, acc.ID, CategoryTopUp, decimal.Zero); err != ErrInvalidAmount {
		t.Fatalf("expected invalid amount for zero, got %v", err)
	}
	if _, err := svc.Apply(ctx, acc.ID, CategoryTopUp, decimal.NewFromInt(-5)); err != ErrInvalidAmount {
		t.Fatalf("expected invalid amount for negative, got %v", err)
	}
	if _, err := svc.Apply(ctx, acc.ID, Category("CHARGEBACK"), decimal.NewFromInt(5)); err == nil {
		t.Fatal("expected invalid category error")
	}
	if txns := TransactionsFor(store, acc.ID); len(txns) != 0 {
		t.Fatalf("expected no transactions after rejected input, got %d", len(txns))
	}
}

func TestApplyNoDeduplication(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)
	acc := newTestAccount(t, store)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := svc.Apply(ctx, acc.ID, CategoryTopUp, decimal.NewFromInt(25)); err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}

	if txns := TransactionsFor(store, acc.ID); len(txns) != 2 {
		t.Fatalf("identical calls must record two transactions, got %d", len(txns))
	}
	stored, _ := store.Get(ctx, acc.ID)
	if !stored.Balance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected balance 50, got %s", stored.Balance)
	}
}

func TestApplyConcurrentBillPayments(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)
	acc := newTestAccount(t, store)
	SeedBalance(store, acc.ID, decimal.NewFromInt(100))

	const workers = 10
	amount := decimal.NewFromInt(30)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Apply(context.Background(), acc.ID, CategoryBillPayment, amount); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// 100 covers at most three debits of 30.
	if succeeded > 3 {
		t.Fatalf("more debits succeeded than the balance covers: %d", succeeded)
	}

	stored, err := store.Get(context.Background(), acc.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	expected := decimal.NewFromInt(100).Sub(amount.Mul(decimal.NewFromInt(int64(succeeded))))
	if !stored.Balance.Equal(expected) {
		t.Fatalf("expected balance %s, got %s", expected, stored.Balance)
	}
	if stored.Balance.IsNegative() {
		t.Fatalf("balance went negative: %s", stored.Balance)
	}
	if txns := TransactionsFor(store, acc.ID); len(txns) != succeeded {
		t.Fatalf("expected %d transactions, got %d", succeeded, len(txns))
	}
}

func TestApplyScenario(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)
	acc := newTestAccount(t, store)
	SeedBalance(store, acc.ID, decimal.RequireFromString("1000.00"))

	ctx := context.Background()

	res, err := svc.Apply(ctx, acc.ID, CategoryTopUp, decimal.RequireFromString("100.00"))
	if err != nil {
		t.Fatalf("top up: %v", err)
	}
	if !res.Balance.Equal(decimal.RequireFromString("1100.00")) {
		t.Fatalf("expected balance 1100.00, got %s", res.Balance)
	}

	if _, err := svc.Apply(ctx, acc.ID, CategoryBillPayment, decimal.RequireFromString("1200.00")); err != ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	stored, _ := store.Get(ctx, acc.ID)
	if !stored.Balance.Equal(decimal.RequireFromString("1100.00")) {
		t.Fatalf("balance must stay 1100.00, got %s", stored.Balance)
	}

	res, err = svc.Apply(ctx, acc.ID, CategoryBillPayment, decimal.RequireFromString("1100.00"))
	if err != nil {
		t.Fatalf("final bill payment: %v", err)
	}
	if !res.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", res.Balance)
	}
}

func TestApplySendsNotification(t *testing.T) {
	store := NewMemoryStore()
	notifier := &testNotifier{}
	svc := NewService(store, notifier)
	acc := newTestAccount(t, store)

	if _, err := svc.Apply(context.Background(), acc.ID, CategoryTopUp, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if notifier.sent != 1 || notifier.last.Kind != notification.KindTransaction {
		t.Fatalf("expected one transaction notification, got %d of kind %q", notifier.sent, notifier.last.Kind)
	}
	if notifier.last.Destination != acc.ID {
		t.Fatalf("expected notification for account %s, got %s", acc.ID, notifier.last.Destination)
	}
}
