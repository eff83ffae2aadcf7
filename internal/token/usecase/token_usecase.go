package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jellydator/validation"

	"github.com/maisonhub/sentinel/internal/clock"
	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
	eventUseCase "github.com/maisonhub/sentinel/internal/event/usecase"
	tokenDomain "github.com/maisonhub/sentinel/internal/token/domain"
	tokenService "github.com/maisonhub/sentinel/internal/token/service"

	apperrors "github.com/maisonhub/sentinel/internal/errors"
	apprules "github.com/maisonhub/sentinel/internal/validation"
)

// tokenUseCase implements TokenService. The active-token index is the single
// source of truth for verification: a token not present in the index is
// invalid no matter how it was produced. Lookup and eviction happen under
// one lock acquisition so concurrent verifiers cannot both act on a token
// that is being evicted.
type tokenUseCase struct {
	signer     tokenService.Signer
	clock      clock.Clock
	defaultTTL time.Duration
	recorder   eventUseCase.Recorder
	logger     *slog.Logger

	mu    sync.Mutex
	index map[string]*tokenDomain.Grant
}

// NewTokenUseCase creates the capability token service.
func NewTokenUseCase(
	signer tokenService.Signer,
	clk clock.Clock,
	defaultTTL time.Duration,
	recorder eventUseCase.Recorder,
	logger *slog.Logger,
) TokenService {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &tokenUseCase{
		signer:     signer,
		clock:      clk,
		defaultTTL: defaultTTL,
		recorder:   recorder,
		logger:     logger,
		index:      make(map[string]*tokenDomain.Grant),
	}
}

// Issue mints and indexes a token for the grant.
func (u *tokenUseCase) Issue(_ context.Context, subjectID, action, targetID string, ttl time.Duration) (string, error) {
	if err := validation.Validate(subjectID, validation.Required, apprules.Identity); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "subject id: "+err.Error())
	}
	if err := validation.Validate(action, validation.Required, apprules.ActionName); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "action: "+err.Error())
	}
	if ttl <= 0 {
		ttl = u.defaultTTL
	}

	now := u.clock.Now()
	grant := &tokenDomain.Grant{
		SubjectID: subjectID,
		Action:    action,
		TargetID:  targetID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	token, err := u.signer.Sign(grant)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to issue token")
	}

	u.mu.Lock()
	u.index[token] = grant
	u.mu.Unlock()

	u.recorder.Record(
		eventDomain.NewSecurityEvent(eventDomain.EventTokenIssued, eventDomain.SeverityInfo, now).
			WithSubject(subjectID).
			WithDetails(map[string]any{
				"action":     action,
				"target_id":  targetID,
				"expires_at": grant.ExpiresAt,
			}),
	)
	return token, nil
}

// Verify resolves the token against the index. Expiry is checked lazily at
// lookup time and expired entries are evicted in the same critical section.
func (u *tokenUseCase) Verify(_ context.Context, token string) (*tokenDomain.Grant, error) {
	now := u.clock.Now()

	u.mu.Lock()
	grant, ok := u.index[token]
	if ok && grant.Expired(now) {
		delete(u.index, token)
	}
	u.mu.Unlock()

	if !ok {
		u.recordVerifyFailure("", "unknown token", now)
		return nil, tokenDomain.ErrGrantInvalid
	}
	if grant.Expired(now) {
		u.recordVerifyFailure(grant.SubjectID, "expired token", now)
		return nil, tokenDomain.ErrGrantExpired
	}

	copied := *grant
	return &copied, nil
}

// Revoke evicts the token immediately.
func (u *tokenUseCase) Revoke(_ context.Context, token string) error {
	u.mu.Lock()
	_, ok := u.index[token]
	delete(u.index, token)
	u.mu.Unlock()

	if !ok {
		return tokenDomain.ErrGrantInvalid
	}
	return nil
}

// Sweep evicts every expired token.
func (u *tokenUseCase) Sweep(now time.Time) int {
	u.mu.Lock()
	defer u.mu.Unlock()

	removed := 0
	for token, grant := range u.index {
		if grant.Expired(now) {
			delete(u.index, token)
			removed++
		}
	}
	if removed > 0 {
		u.logger.Debug("token sweep completed", slog.Int("removed", removed))
	}
	return removed
}

func (u *tokenUseCase) recordVerifyFailure(subjectID, reason string, now time.Time) {
	event := eventDomain.NewSecurityEvent(eventDomain.EventTokenVerifyFailed, eventDomain.SeverityWarning, now).
		WithDetails(map[string]any{"reason": reason})
	if subjectID != "" {
		event = event.WithSubject(subjectID)
	}
	u.recorder.Record(event)
}
