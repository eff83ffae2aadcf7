// Package usecase implements the keyed capability token service: signed,
// time-limited grants tracked in an in-process index.
package usecase

import (
	"context"
	"time"

	tokenDomain "github.com/maisonhub/sentinel/internal/token/domain"
)

// TokenService is the capability token surface used by the handlers.
type TokenService interface {
	// Issue mints a token authorizing subject to perform action on target.
	// A non-positive ttl falls back to the configured default.
	Issue(ctx context.Context, subjectID, action, targetID string, ttl time.Duration) (string, error)

	// Verify resolves a token to its grant. Unknown tokens return
	// ErrGrantInvalid; expired tokens are evicted and return ErrGrantExpired.
	Verify(ctx context.Context, token string) (*tokenDomain.Grant, error)

	// Revoke evicts a token before its expiry. Unknown tokens return
	// ErrGrantInvalid.
	Revoke(ctx context.Context, token string) error

	// Sweep evicts expired tokens and returns how many were removed. Expiry
	// is otherwise lazy, so the index only shrinks on Verify or here.
	Sweep(now time.Time) int
}
