package keybackend

import "errors"

var (
	// ErrKeyNotFound is returned when a URL names an access key the store does not hold.
	ErrKeyNotFound = errors.New("access key not found")

	// ErrNoSigningKey is returned when the store cannot pick a key to sign new URLs with.
	ErrNoSigningKey = errors.New("no signing key configured")

	// ErrConflictingKey is returned when one keys file lists an access key twice
	// with different secrets.
	ErrConflictingKey = errors.New("conflicting secrets for access key")
)
