package usecase

import (
	"context"
	"log/slog"

	"github.com/maisonhub/sentinel/internal/anomaly"
	"github.com/maisonhub/sentinel/internal/clock"
	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
	eventUseCase "github.com/maisonhub/sentinel/internal/event/usecase"
	"github.com/maisonhub/sentinel/internal/filter"
	firewallDomain "github.com/maisonhub/sentinel/internal/firewall/domain"
	firewallService "github.com/maisonhub/sentinel/internal/firewall/service"
)

// PipelineConfig carries the pipeline's policy knobs.
type PipelineConfig struct {
	// AllowedIdentities is the optional allow-list. When non-empty, any
	// client identity absent from it is denied before further checks.
	AllowedIdentities []string

	ContentFilterEnabled        bool
	BlocklistEnforcementEnabled bool

	// TOTPProtectedActions are the actions that trigger the trust and
	// anomaly check.
	TOTPProtectedActions []string
}

// accessPipeline implements Pipeline as a fixed sequence of checks. Each
// terminal outcome records exactly one security event before returning.
type accessPipeline struct {
	limiter   *firewallService.RateLimiter
	blocklist *firewallService.Blocklist
	inspector *firewallService.Inspector
	filter    *filter.Filter
	detector  anomaly.Detector
	recorder  eventUseCase.Recorder
	clock     clock.Clock
	logger    *slog.Logger

	allowedIdentities    map[string]struct{}
	contentFilterEnabled bool
	blocklistEnforced    bool
	protectedActions     map[string]struct{}
}

// NewAccessPipeline creates the pipeline.
func NewAccessPipeline(
	limiter *firewallService.RateLimiter,
	blocklist *firewallService.Blocklist,
	inspector *firewallService.Inspector,
	contentFilter *filter.Filter,
	detector anomaly.Detector,
	recorder eventUseCase.Recorder,
	clk clock.Clock,
	cfg PipelineConfig,
	logger *slog.Logger,
) Pipeline {
	allowed := make(map[string]struct{}, len(cfg.AllowedIdentities))
	for _, identity := range cfg.AllowedIdentities {
		allowed[identity] = struct{}{}
	}
	protected := make(map[string]struct{}, len(cfg.TOTPProtectedActions))
	for _, action := range cfg.TOTPProtectedActions {
		protected[action] = struct{}{}
	}

	return &accessPipeline{
		limiter:              limiter,
		blocklist:            blocklist,
		inspector:            inspector,
		filter:               contentFilter,
		detector:             detector,
		recorder:             recorder,
		clock:                clk,
		logger:               logger,
		allowedIdentities:    allowed,
		contentFilterEnabled: cfg.ContentFilterEnabled,
		blocklistEnforced:    cfg.BlocklistEnforcementEnabled,
		protectedActions:     protected,
	}
}

// CheckRequest runs the state machine. Denials are normal return values; a
// panic in any check fails closed.
func (p *accessPipeline) CheckRequest(ctx context.Context, req *firewallDomain.Request) (verdict firewallDomain.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("access check panicked",
				slog.String("client_identity", req.ClientIdentity),
				slog.Any("panic", r),
			)
			verdict = firewallDomain.Deny(403, firewallDomain.ReasonForbidden)
			p.record(req, eventDomain.EventAccessDenied, eventDomain.SeverityError, map[string]any{
				"reason": "internal error",
			})
		}
	}()

	if len(p.allowedIdentities) > 0 {
		if _, ok := p.allowedIdentities[req.ClientIdentity]; !ok {
			p.record(req, eventDomain.EventAccessDenied, eventDomain.SeverityWarning, map[string]any{
				"reason": firewallDomain.ReasonNotAllowed,
			})
			return firewallDomain.Deny(403, firewallDomain.ReasonNotAllowed)
		}
	}

	if p.blocklistEnforced && p.blocklist.IsBlocked(req.ClientIdentity) {
		p.record(req, eventDomain.EventAccessDenied, eventDomain.SeverityWarning, map[string]any{
			"reason": firewallDomain.ReasonForbidden,
		})
		return firewallDomain.Deny(403, firewallDomain.ReasonForbidden)
	}

	if !p.limiter.Admit(req.ClientIdentity) {
		// A rate violation is escalated to a standing block, not just one
		// rejected request.
		p.blocklist.Block(req.ClientIdentity)
		p.record(req, eventDomain.EventRateLimitExceeded, eventDomain.SeverityError, map[string]any{
			"reason":    firewallDomain.ReasonRateLimited,
			"escalated": true,
		})
		return firewallDomain.Deny(429, firewallDomain.ReasonRateLimited)
	}

	if req.PayloadCarrying() {
		if verdict, denied := p.contentCheck(req); denied {
			return verdict
		}
	}

	if p.isProtected(req.Action) {
		if p.detector.IsSuspicious(ctx, req.SubjectID, req.Action, req.ClientIP, req.DeviceID) {
			p.record(req, eventDomain.EventAccessDenied, eventDomain.SeverityWarning, map[string]any{
				"reason": firewallDomain.ReasonRequiresVerification,
			})
			return firewallDomain.DenyForVerification()
		}
	}

	p.record(req, eventDomain.EventAccessAllowed, eventDomain.SeverityInfo, map[string]any{
		"action": req.Action,
	})
	return firewallDomain.Allow()
}

// contentCheck applies the shape inspector and the content filter. A hostile
// shape blocks the identity outright; an unsafe classification denies the
// request without escalation.
func (p *accessPipeline) contentCheck(req *firewallDomain.Request) (firewallDomain.Verdict, bool) {
	if p.inspector.Malformed(req.Path, req.ContentType, req.Payload) {
		p.blocklist.Block(req.ClientIdentity)
		p.record(req, eventDomain.EventContentBlocked, eventDomain.SeverityError, map[string]any{
			"reason":    firewallDomain.ReasonSuspiciousRequest,
			"escalated": true,
		})
		return firewallDomain.Deny(400, firewallDomain.ReasonSuspiciousRequest), true
	}

	if !p.contentFilterEnabled {
		return firewallDomain.Verdict{}, false
	}

	classification := p.filter.Classify(req.Payload)
	if classification.IsSafe {
		return firewallDomain.Verdict{}, false
	}

	reason := classification.Reason
	if classification.Severity == filter.SeverityCritical {
		// Never echo which critical rule matched.
		reason = firewallDomain.ReasonSuspiciousRequest
	}
	p.record(req, eventDomain.EventContentBlocked, classificationSeverity(classification.Severity), map[string]any{
		"reason":   reason,
		"severity": string(classification.Severity),
	})
	return firewallDomain.Deny(400, reason), true
}

func (p *accessPipeline) isProtected(action string) bool {
	_, ok := p.protectedActions[action]
	return ok
}

func (p *accessPipeline) record(req *firewallDomain.Request, eventType string, severity eventDomain.Severity, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	if req.Action != "" {
		details["action"] = req.Action
	}
	details["client_identity"] = req.ClientIdentity

	p.recorder.Record(
		eventDomain.NewSecurityEvent(eventType, severity, p.clock.Now()).
			WithSubject(req.SubjectID).
			WithClient(req.ClientIP, req.UserAgent).
			WithDevice(req.DeviceID).
			WithDetails(details),
	)
}

// classificationSeverity maps a content verdict grade to an event severity.
func classificationSeverity(s filter.Severity) eventDomain.Severity {
	switch s {
	case filter.SeverityCritical:
		return eventDomain.SeverityCritical
	case filter.SeverityHigh:
		return eventDomain.SeverityError
	default:
		return eventDomain.SeverityWarning
	}
}
