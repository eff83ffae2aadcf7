// Package usecase implements the trusted device registry. Trust checks read
// from an in-process store so the access pipeline never waits on the
// database; registration and deactivation also write through to the durable
// store when one is configured.
package usecase

import (
	"context"

	"github.com/maisonhub/sentinel/internal/device/domain"
)

// DeviceRepository defines trusted device persistence operations.
type DeviceRepository interface {
	Upsert(ctx context.Context, device *domain.TrustedDevice) error
	Get(ctx context.Context, subjectID, deviceID string) (*domain.TrustedDevice, error)
	ListBySubject(ctx context.Context, subjectID string) ([]*domain.TrustedDevice, error)
	ListAll(ctx context.Context) ([]*domain.TrustedDevice, error)
}

// Registry is the trusted device surface used by the handlers and the
// anomaly detector.
type Registry interface {
	// Register records the (subject, device) pair as trusted. Registering an
	// already known pair refreshes its metadata and reactivates it.
	Register(ctx context.Context, subjectID, deviceID, displayName, deviceKind string) (*domain.TrustedDevice, error)

	// IsTrusted reports whether the pair is registered and active. A positive
	// check refreshes the device's last-seen timestamp.
	IsTrusted(ctx context.Context, subjectID, deviceID string) (bool, error)

	// Deactivate soft-deletes the pair. Returns ErrDeviceNotFound when the
	// pair was never registered.
	Deactivate(ctx context.Context, subjectID, deviceID string) error

	// ListBySubject returns every registered device for the subject.
	ListBySubject(ctx context.Context, subjectID string) ([]*domain.TrustedDevice, error)

	// WarmUp loads the durable store into the in-process one. Called once at
	// startup; a no-op when no durable store is configured.
	WarmUp(ctx context.Context) error
}
