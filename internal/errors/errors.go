// Package errors defines the domain error vocabulary shared by every
// bounded context. Use cases return these sentinels (usually wrapped) and
// the HTTP layer maps them to status codes.
package errors

import (
	"errors"
	"fmt"
)

// Sentinels shared across all bounded contexts.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a collision with existing data, such as a
	// duplicate registration.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates input that fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or bad credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the identity is blocklisted or not allow-listed.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates the identity exceeded its request quota.
	ErrRateLimited = errors.New("rate limited")

	// ErrRequiresVerification indicates a soft denial pending stronger
	// authentication (e.g., an untrusted device attempting a protected action).
	ErrRequiresVerification = errors.New("requires additional verification")

	// ErrTokenInvalid indicates a capability token that was never issued.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired indicates a capability token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// New creates an error with the given message. Re-exported so callers only
// import this package.
func New(message string) error {
	return errors.New(message)
}

// Wrap adds context to err while keeping the sentinel reachable through
// errors.Is. Returns nil when err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is re-exports errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As re-exports errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
