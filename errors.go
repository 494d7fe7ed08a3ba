package urilaga

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when caller input is incomplete or malformed
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when inserting a row whose key is taken
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCredential is returned when a password does not match
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrStorage is returned when an object cannot be written to the object store
	ErrStorage = errors.New("storage error")
	// ErrSign is returned when a signed URL cannot be issued for a stored object
	ErrSign = errors.New("sign url error")
	// ErrPersistence is returned when a metadata record cannot be inserted
	ErrPersistence = errors.New("persistence error")
	// ErrQuery is returned when a metadata lookup fails
	ErrQuery = errors.New("query error")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrUnauthorized is returned when a presigned signature is missing or invalid
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTooLarge is returned when an upload exceeds the configured size limit
	ErrTooLarge = errors.New("payload too large")
)

// ErrIncompleteMetadata is returned when an upload lacks judul, rating, tanggal or by.
var ErrIncompleteMetadata = fmt.Errorf("incomplete metadata: %w", ErrValidation)
