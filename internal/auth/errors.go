package auth

import "errors"

// Domain errors returned by the lifecycle engine. The API boundary maps
// each of these to an HTTP status and the response envelope; anything else
// is treated as internal and never surfaced verbatim.
var (
	// ErrEmailExists means an agency account with that email already exists.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials covers unknown email, wrong role and password
	// mismatch. Callers must not be able to tell which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotVerified means the credentials were correct but the account
	// has not completed email verification.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrTokenInvalidOrExpired covers wrong, expired and already-consumed
	// verification or reset tokens uniformly.
	ErrTokenInvalidOrExpired = errors.New("invalid or expired token")
)
