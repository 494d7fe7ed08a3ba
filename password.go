package urilaga

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordScheme selects how stored passwords are compared.
type PasswordScheme string

const (
	// PasswordPlain compares the stored value to the supplied password with
	// plain string equality. This matches the existing user table, which holds
	// plaintext passwords.
	PasswordPlain PasswordScheme = "plain"
	// PasswordBcrypt treats the stored value as a bcrypt hash.
	PasswordBcrypt PasswordScheme = "bcrypt"
)

const bcryptCost = 12

func (s PasswordScheme) IsValid() bool {
	switch s {
	case PasswordPlain, PasswordBcrypt:
		return true
	default:
		return false
	}
}

func ParsePasswordScheme(s string) (PasswordScheme, error) {
	scheme := PasswordScheme(s)
	if !scheme.IsValid() {
		return "", fmt.Errorf("invalid password scheme: %s (valid schemes: plain, bcrypt)", s)
	}
	return scheme, nil
}

// Compare reports whether password matches stored. It returns
// ErrInvalidCredential on mismatch and ErrInternal when the stored value is
// unusable for the scheme.
func (s PasswordScheme) Compare(stored, password string) error {
	switch s {
	case PasswordBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
		if err == nil {
			return nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredential
		}
		return fmt.Errorf("compare password: %w: %w", ErrInternal, err)
	default:
		if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1 {
			return nil
		}
		return ErrInvalidCredential
	}
}

// Hash returns the value to store for password under the scheme.
func (s PasswordScheme) Hash(password string) (string, error) {
	if s != PasswordBcrypt {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
