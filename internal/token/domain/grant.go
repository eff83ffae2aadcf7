// Package domain defines the capability grant model. A grant authorizes one
// subject to perform one action on one target until it expires.
package domain

import (
	"time"

	apperrors "github.com/maisonhub/sentinel/internal/errors"
)

// Domain errors for capability token operations.
var (
	// ErrGrantInvalid indicates a token that was never issued or was revoked.
	ErrGrantInvalid = apperrors.Wrap(apperrors.ErrTokenInvalid, "capability grant")

	// ErrGrantExpired indicates a token past its expiry.
	ErrGrantExpired = apperrors.Wrap(apperrors.ErrTokenExpired, "capability grant")
)

// Grant is the claim set a capability token is minted over.
type Grant struct {
	SubjectID string
	Action    string
	TargetID  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the grant is past its expiry at the given instant.
// A grant expires exactly at ExpiresAt.
func (g *Grant) Expired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}
