package gateway

import "errors"

var (
	// ErrMissingCredential means no secret was found in any carrier.
	ErrMissingCredential = errors.New("API key missing")

	// ErrInvalidCredential covers unknown, disabled, and expired keys.
	// They are indistinguishable to the caller so key lifecycle
	// information never leaks.
	ErrInvalidCredential = errors.New("invalid API key")

	// ErrQuotaExceeded means the key hit its daily limit.
	ErrQuotaExceeded = errors.New("API key has reached its daily limit")
)
