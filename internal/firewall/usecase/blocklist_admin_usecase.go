package usecase

import (
	"context"
	"log/slog"

	"github.com/jellydator/validation"

	"github.com/maisonhub/sentinel/internal/clock"
	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
	eventUseCase "github.com/maisonhub/sentinel/internal/event/usecase"
	firewallService "github.com/maisonhub/sentinel/internal/firewall/service"

	apperrors "github.com/maisonhub/sentinel/internal/errors"
	apprules "github.com/maisonhub/sentinel/internal/validation"
)

// blocklistAdmin implements BlocklistAdmin. Explicit blocklist mutations are
// operator actions and leave their own audit trail.
type blocklistAdmin struct {
	blocklist *firewallService.Blocklist
	recorder  eventUseCase.Recorder
	clock     clock.Clock
	logger    *slog.Logger
}

// NewBlocklistAdmin creates the admin surface over the blocklist.
func NewBlocklistAdmin(
	blocklist *firewallService.Blocklist,
	recorder eventUseCase.Recorder,
	clk clock.Clock,
	logger *slog.Logger,
) BlocklistAdmin {
	return &blocklistAdmin{
		blocklist: blocklist,
		recorder:  recorder,
		clock:     clk,
		logger:    logger,
	}
}

func validateIdentity(identity string) error {
	if err := validation.Validate(identity, validation.Required, apprules.Identity); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "identity: "+err.Error())
	}
	return nil
}

// BlockIdentity adds the identity to the blocklist.
func (a *blocklistAdmin) BlockIdentity(_ context.Context, identity string) error {
	if err := validateIdentity(identity); err != nil {
		return err
	}

	if a.blocklist.Block(identity) {
		a.recorder.Record(
			eventDomain.NewSecurityEvent(eventDomain.EventIdentityBlocked, eventDomain.SeverityWarning, a.clock.Now()).
				WithDetails(map[string]any{"client_identity": identity, "source": "admin"}),
		)
		a.logger.Info("identity blocked", slog.String("client_identity", identity))
	}
	return nil
}

// UnblockIdentity removes the identity from the blocklist.
func (a *blocklistAdmin) UnblockIdentity(_ context.Context, identity string) error {
	if err := validateIdentity(identity); err != nil {
		return err
	}

	if !a.blocklist.Unblock(identity) {
		return apperrors.Wrap(apperrors.ErrNotFound, "identity not blocked")
	}

	a.recorder.Record(
		eventDomain.NewSecurityEvent(eventDomain.EventIdentityUnblocked, eventDomain.SeverityInfo, a.clock.Now()).
			WithDetails(map[string]any{"client_identity": identity, "source": "admin"}),
	)
	a.logger.Info("identity unblocked", slog.String("client_identity", identity))
	return nil
}
