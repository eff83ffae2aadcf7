package usecase

import (
	"context"
	"log/slog"
	"time"

	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
)

// eventLogUseCase implements Recorder. The primary repository (in-memory) is
// written synchronously under its own lock; the optional durable repository
// is written by a background goroutine fed through a bounded queue, so a slow
// or unreachable store can never delay an allow/deny decision.
type eventLogUseCase struct {
	primary EventRepository
	durable EventRepository
	alert   AlertFunc
	queue   chan *eventDomain.SecurityEvent
	logger  *slog.Logger
}

// NewEventLogUseCase creates the security event log. durable and alert may be
// nil. bufferSize bounds the asynchronous writer's queue; when the queue is
// full, events are dropped from the durable mirror (the primary copy is
// always kept) rather than blocking the caller.
func NewEventLogUseCase(
	primary EventRepository,
	durable EventRepository,
	alert AlertFunc,
	bufferSize int,
	logger *slog.Logger,
) Recorder {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &eventLogUseCase{
		primary: primary,
		durable: durable,
		alert:   alert,
		queue:   make(chan *eventDomain.SecurityEvent, bufferSize),
		logger:  logger,
	}
}

// Record appends the event to the primary repository and enqueues it for the
// asynchronous writer. A failure at any point is logged and swallowed: audit
// unavailability must never turn into a pipeline error.
func (u *eventLogUseCase) Record(event *eventDomain.SecurityEvent) {
	if event == nil {
		return
	}

	if err := u.primary.Create(context.Background(), event); err != nil {
		u.logger.Warn("failed to record security event",
			slog.String("event_type", event.EventType),
			slog.Any("error", err),
		)
	}

	if u.durable == nil && u.alert == nil {
		return
	}

	select {
	case u.queue <- event:
	default:
		u.logger.Debug("security event queue full, dropping durable copy",
			slog.String("event_type", event.EventType),
		)
	}
}

// Recent reads from the primary repository.
func (u *eventLogUseCase) Recent(
	ctx context.Context,
	subjectID string,
	since time.Time,
	severities []eventDomain.Severity,
) ([]*eventDomain.SecurityEvent, error) {
	return u.primary.ListRecent(ctx, subjectID, since, severities, 0)
}

// Start consumes the queue until the context is cancelled, mirroring events
// to the durable store and invoking the alert hook for critical entries.
func (u *eventLogUseCase) Start(ctx context.Context) error {
	u.logger.Info("starting security event writer")

	for {
		select {
		case <-ctx.Done():
			u.logger.Info("stopping security event writer")
			return ctx.Err()
		case event := <-u.queue:
			u.process(ctx, event)
		}
	}
}

// process handles one dequeued event.
func (u *eventLogUseCase) process(ctx context.Context, event *eventDomain.SecurityEvent) {
	if u.durable != nil {
		if err := u.durable.Create(ctx, event); err != nil {
			u.logger.Warn("failed to persist security event",
				slog.String("event_type", event.EventType),
				slog.Any("error", err),
			)
		}
	}

	if u.alert != nil && event.Severity == eventDomain.SeverityCritical {
		u.alert(event)
	}
}
