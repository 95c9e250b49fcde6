package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, acc Account) error
	Get(ctx context.Context, id string) (Account, error)
	UpdateProfile(ctx context.Context, acc Account) error
	Delete(ctx context.Context, id string) error
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	PhoneTaken(ctx context.Context, phone, excludeID string) (bool, error)
}

const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account.
func (r *PostgresRepository) Create(ctx context.Context, acc Account) error {
	accountID, err := uuid.Parse(acc.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO accounts (id, full_name, email, phone, balance, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)`,
		accountID, acc.FullName, acc.Email, acc.Phone, acc.Balance.String(), acc.CreatedAt.UTC(), acc.UpdatedAt.UTC())
	if isUniqueViolation(err) {
		return ErrDuplicateIdentity
	}
	return err
}

// Get fetches an account by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, full_name, email, phone, balance::text, created_at, updated_at
        FROM accounts WHERE id = $1`, accountID)
	return scanAccount(row)
}

// UpdateProfile stores the account's identity fields, leaving the balance untouched.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, acc Account) error {
	accountID, err := uuid.Parse(acc.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET full_name = $1, email = $2, phone = $3, updated_at = $4
        WHERE id = $5`, acc.FullName, acc.Email, acc.Phone, acc.UpdatedAt.UTC(), accountID)
	if isUniqueViolation(err) {
		return ErrDuplicateIdentity
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the account and all of its transactions. Orphaned
// transactions must never survive an account deletion.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE account_id = $1`, accountID); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// EmailTaken reports whether another account already uses the email.
func (r *PostgresRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return r.identityTaken(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1 AND id <> $2)`, email, excludeID)
}

// PhoneTaken reports whether another account already uses the phone number.
func (r *PostgresRepository) PhoneTaken(ctx context.Context, phone, excludeID string) (bool, error) {
	return r.identityTaken(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE phone = $1 AND id <> $2)`, phone, excludeID)
}

func (r *PostgresRepository) identityTaken(ctx context.Context, query, value, excludeID string) (bool, error) {
	exclude := uuid.Nil
	if excludeID != "" {
		parsed, err := uuid.Parse(excludeID)
		if err != nil {
			return false, ErrNotFound
		}
		exclude = parsed
	}
	var taken bool
	if err := r.db.QueryRow(ctx, query, value, exclude).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		id                   uuid.UUID
		balance              string
		createdAt, updatedAt time.Time
		acc                  Account
	)
	if err := row.Scan(&id, &acc.FullName, &acc.Email, &acc.Phone, &balance, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return Account{}, err
	}
	acc.ID = id.String()
	acc.Balance = parsed
	acc.CreatedAt = createdAt.UTC()
	acc.UpdatedAt = updatedAt.UTC()
	return acc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
