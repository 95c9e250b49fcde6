package account

import "errors"

var (
	// ErrNotFound indicates the referenced account does not exist.
	ErrNotFound = errors.New("account not found")

	// ErrDuplicateIdentity indicates the email or phone number is already
	// registered to another account.
	ErrDuplicateIdentity = errors.New("email or phone number already in use")

	// ErrInvalidProfile indicates missing or malformed identity fields.
	ErrInvalidProfile = errors.New("invalid profile")
)
