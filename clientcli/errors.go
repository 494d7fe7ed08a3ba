package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileName     = errors.New("invalid profile name")
)

// Errors for configuration validation.
var (
	ErrConfigRequired   = errors.New("config is required")
	ErrUsernameRequired = errors.New("username is required")
	ErrInvalidEndpoint  = errors.New("invalid endpoint")
)

// Errors for input validation.
var (
	ErrEmptyPath    = errors.New("path is required")
	ErrEmptyURL     = errors.New("url is required")
	ErrMissingField = errors.New("missing required field")
)
