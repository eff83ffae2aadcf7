// Package usecase implements the access pipeline: the single decision
// function composing the allow-list, blocklist, rate limiter, content checks
// and anomaly detection, plus the admin operations on the blocklist.
package usecase

import (
	"context"

	firewallDomain "github.com/maisonhub/sentinel/internal/firewall/domain"
)

// Pipeline is the access decision surface invoked once per inbound unit of
// work.
type Pipeline interface {
	// CheckRequest runs the checks in order and returns the verdict. It
	// never returns an error: an unexpected internal failure produces a
	// denial, not a fault.
	CheckRequest(ctx context.Context, req *firewallDomain.Request) firewallDomain.Verdict
}

// BlocklistAdmin exposes explicit blocklist mutations for operators.
type BlocklistAdmin interface {
	// BlockIdentity adds the identity to the blocklist.
	BlockIdentity(ctx context.Context, identity string) error

	// UnblockIdentity removes the identity. Returns ErrNotFound when the
	// identity was not blocked.
	UnblockIdentity(ctx context.Context, identity string) error
}
