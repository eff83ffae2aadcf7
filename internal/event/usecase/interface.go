// Package usecase implements the security event log: best-effort recording
// that never blocks or fails the security decision that triggered it, and
// recency queries used by the anomaly detector.
package usecase

import (
	"context"
	"time"

	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
)

// EventRepository defines security event persistence operations.
type EventRepository interface {
	Create(ctx context.Context, event *eventDomain.SecurityEvent) error
	ListRecent(
		ctx context.Context,
		subjectID string,
		since time.Time,
		severities []eventDomain.Severity,
		limit int,
	) ([]*eventDomain.SecurityEvent, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AlertFunc is invoked off the decision path for every critical event. It
// runs on the writer goroutine, so implementations should hand off quickly.
type AlertFunc func(event *eventDomain.SecurityEvent)

// Recorder is the security event log surface used by the pipeline.
type Recorder interface {
	// Record appends an event. Best-effort: persistence failures are logged
	// and never propagated to the caller.
	Record(event *eventDomain.SecurityEvent)

	// Recent returns events for the subject since the given instant, newest
	// first, filtered by severity (empty = all).
	Recent(
		ctx context.Context,
		subjectID string,
		since time.Time,
		severities []eventDomain.Severity,
	) ([]*eventDomain.SecurityEvent, error)

	// Start runs the asynchronous writer until the context is cancelled.
	Start(ctx context.Context) error
}
