// Package anomaly implements the heuristic anomaly detector. It is a fixed
// rule set over recent security events and device trust, not a learned
// model; thresholds come from configuration.
package anomaly

import (
	"context"
	"log/slog"
	"time"

	deviceUseCase "github.com/maisonhub/sentinel/internal/device/usecase"
	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
	eventUseCase "github.com/maisonhub/sentinel/internal/event/usecase"

	"github.com/maisonhub/sentinel/internal/clock"
)

// Detector decides whether an action attempt looks suspicious.
type Detector interface {
	// IsSuspicious applies the detection rules in order. clientIP and
	// deviceID may be empty. A positive verdict records its own evidence
	// event before returning.
	IsSuspicious(ctx context.Context, subjectID, action, clientIP, deviceID string) bool
}

// detector implements Detector.
type detector struct {
	recorder         eventUseCase.Recorder
	registry         deviceUseCase.Registry
	clock            clock.Clock
	eventThreshold   int
	window           time.Duration
	protectedActions map[string]struct{}
	logger           *slog.Logger
}

// NewDetector creates the anomaly detector. eventThreshold is the number of
// warning-or-worse events in the window above which a subject is flagged;
// protectedActions lists the actions requiring a trusted device.
func NewDetector(
	recorder eventUseCase.Recorder,
	registry deviceUseCase.Registry,
	clk clock.Clock,
	eventThreshold int,
	window time.Duration,
	protectedActions []string,
	logger *slog.Logger,
) Detector {
	protected := make(map[string]struct{}, len(protectedActions))
	for _, action := range protectedActions {
		protected[action] = struct{}{}
	}
	return &detector{
		recorder:         recorder,
		registry:         registry,
		clock:            clk,
		eventThreshold:   eventThreshold,
		window:           window,
		protectedActions: protected,
		logger:           logger,
	}
}

// IsSuspicious checks the subject's recent evidence trail, then device trust
// for protected actions.
func (d *detector) IsSuspicious(ctx context.Context, subjectID, action, clientIP, deviceID string) bool {
	now := d.clock.Now()

	if d.recentEvidenceExceedsThreshold(ctx, subjectID, now) {
		d.recorder.Record(
			eventDomain.NewSecurityEvent(eventDomain.EventSuspiciousActivity, eventDomain.SeverityCritical, now).
				WithSubject(subjectID).
				WithClient(clientIP, "").
				WithDetails(map[string]any{
					"action":    action,
					"threshold": d.eventThreshold,
					"window":    d.window.String(),
				}),
		)
		return true
	}

	if deviceID != "" && d.isProtected(action) && !d.deviceTrusted(ctx, subjectID, deviceID) {
		d.recorder.Record(
			eventDomain.NewSecurityEvent(eventDomain.EventUntrustedDevice, eventDomain.SeverityWarning, now).
				WithSubject(subjectID).
				WithClient(clientIP, "").
				WithDevice(deviceID).
				WithDetails(map[string]any{"action": action}),
		)
		return true
	}

	return false
}

func (d *detector) isProtected(action string) bool {
	_, ok := d.protectedActions[action]
	return ok
}

func (d *detector) recentEvidenceExceedsThreshold(ctx context.Context, subjectID string, now time.Time) bool {
	if subjectID == "" {
		return false
	}

	since := now.Add(-d.window)
	events, err := d.recorder.Recent(ctx, subjectID, since, eventDomain.EvidenceSeverities())
	if err != nil {
		// The evidence store is in-process; a read failure is logged and the
		// rule treated as not triggered rather than flagging everyone.
		d.logger.Warn("failed to query recent events",
			slog.String("subject_id", subjectID),
			slog.Any("error", err),
		)
		return false
	}
	return len(events) > d.eventThreshold
}

// deviceTrusted treats a registry failure as untrusted: when in doubt the
// caller is pushed to stronger verification, never waved through.
func (d *detector) deviceTrusted(ctx context.Context, subjectID, deviceID string) bool {
	trusted, err := d.registry.IsTrusted(ctx, subjectID, deviceID)
	if err != nil {
		d.logger.Warn("failed to check device trust",
			slog.String("subject_id", subjectID),
			slog.String("device_id", deviceID),
			slog.Any("error", err),
		)
		return false
	}
	return trusted
}
