package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dompet-pay/dompet_pay/internal/account"
)

// PostgresStore persists transactions and balance updates in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// LoadAccount fetches the current account state.
func (s *PostgresStore) LoadAccount(ctx context.Context, id string) (account.Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return account.Account{}, account.ErrNotFound
	}

	row := s.db.QueryRow(ctx, `SELECT id, full_name, email, phone, balance::text, created_at, updated_at
        FROM accounts WHERE id = $1`, accountID)

	var (
		idVal                uuid.UUID
		balance              string
		createdAt, updatedAt time.Time
		acc                  account.Account
	)
	if err := row.Scan(&idVal, &acc.FullName, &acc.Email, &acc.Phone, &balance, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, err
	}
	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return account.Account{}, err
	}
	acc.ID = idVal.String()
	acc.Balance = parsed
	acc.CreatedAt = createdAt.UTC()
	acc.UpdatedAt = updatedAt.UTC()
	return acc, nil
}

// Commit writes the transaction record and the new balance inside one
// database transaction. The balance update is conditional on the previously
// observed balance, so a concurrent writer surfaces as ErrBalanceConflict
// instead of a lost update.
func (s *PostgresStore) Commit(ctx context.Context, txn Transaction, newBalance, priorBalance decimal.Decimal) error {
	accountID, err := uuid.Parse(txn.AccountID)
	if err != nil {
		return account.ErrNotFound
	}
	txnID, err := uuid.Parse(txn.ID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	cmd, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1::numeric, updated_at = $2
        WHERE id = $3 AND balance = $4::numeric`,
		newBalance.String(), txn.UpdatedAt.UTC(), accountID, priorBalance.String())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return account.ErrNotFound
		}
		return ErrBalanceConflict
	}

	if _, err := tx.Exec(ctx, `INSERT INTO transactions (id, account_id, category, amount, created_at, updated_at)
        VALUES ($1, $2, $3, $4::numeric, $5, $6)`,
		txnID, accountID, string(txn.Category), txn.Amount.String(), txn.CreatedAt.UTC(), txn.UpdatedAt.UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
