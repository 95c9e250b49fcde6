package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service manages the account lifecycle. Balances are read-only here; only
// the ledger engine mutates them.
type Service struct {
	repo Repository
}

// NewService creates a new account service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new account with a zero balance. Email and phone must be
// unique across all accounts.
func (s *Service) Create(ctx context.Context, profile Profile) (Account, error) {
	profile = normalize(profile)
	if err := validate(profile); err != nil {
		return Account{}, err
	}

	if err := s.ensureUnique(ctx, profile, ""); err != nil {
		return Account{}, err
	}

	now := time.Now().UTC()
	acc := Account{
		ID:        uuid.New().String(),
		FullName:  profile.FullName,
		Email:     profile.Email,
		Phone:     profile.Phone,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		return Account{}, err
	}

	return acc, nil
}

// Get fetches an account by identifier.
func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	return s.repo.Get(ctx, id)
}

// Edit updates the identity fields of an existing account. The balance and
// transaction history are never touched.
func (s *Service) Edit(ctx context.Context, id string, profile Profile) (Account, error) {
	profile = normalize(profile)
	if err := validate(profile); err != nil {
		return Account{}, err
	}

	acc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Account{}, err
	}

	if err := s.ensureUnique(ctx, profile, acc.ID); err != nil {
		return Account{}, err
	}

	acc.FullName = profile.FullName
	acc.Email = profile.Email
	acc.Phone = profile.Phone
	acc.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateProfile(ctx, acc); err != nil {
		return Account{}, err
	}

	return acc, nil
}

// Delete removes the account and cascades deletion of its transactions.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ensureUnique(ctx context.Context, profile Profile, excludeID string) error {
	emailTaken, err := s.repo.EmailTaken(ctx, profile.Email, excludeID)
	if err != nil {
		return err
	}
	phoneTaken, err := s.repo.PhoneTaken(ctx, profile.Phone, excludeID)
	if err != nil {
		return err
	}
	if emailTaken || phoneTaken {
		return ErrDuplicateIdentity
	}
	return nil
}

func normalize(profile Profile) Profile {
	profile.FullName = strings.TrimSpace(profile.FullName)
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))
	profile.Phone = strings.TrimSpace(profile.Phone)
	return profile
}

func validate(profile Profile) error {
	if profile.FullName == "" {
		return fmt.Errorf("%w: full name is required", ErrInvalidProfile)
	}
	if profile.Email == "" || !strings.Contains(profile.Email, "@") {
		return fmt.Errorf("%w: email must be on the form name@example.com", ErrInvalidProfile)
	}
	if profile.Phone == "" {
		return fmt.Errorf("%w: phone number is required", ErrInvalidProfile)
	}
	return nil
}
