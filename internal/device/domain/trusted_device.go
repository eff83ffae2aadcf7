// Package domain defines the trusted device model. A device is only ever
// trusted after an explicit registration; there is no implicit trust
// bootstrap. Deactivation is a soft delete so the audit trail stays intact.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/maisonhub/sentinel/internal/errors"
)

// Domain errors for trusted device operations.
var (
	// ErrDeviceNotFound indicates no record exists for a (subject, device) pair.
	// Absence is a normal "not trusted" outcome for lookups, not a failure.
	ErrDeviceNotFound = apperrors.Wrap(apperrors.ErrNotFound, "trusted device not found")
)

// TrustedDevice is a recognized (subject, device) pair. The pair is unique;
// registration is an upsert.
type TrustedDevice struct {
	ID          uuid.UUID
	SubjectID   string
	DeviceID    string
	DisplayName string
	DeviceKind  string
	IsActive    bool
	LastSeenAt  time.Time
	CreatedAt   time.Time
}

// NewTrustedDevice creates an active device record for the given pair.
func NewTrustedDevice(subjectID, deviceID, displayName, deviceKind string, now time.Time) *TrustedDevice {
	return &TrustedDevice{
		ID:          uuid.Must(uuid.NewV7()),
		SubjectID:   subjectID,
		DeviceID:    deviceID,
		DisplayName: displayName,
		DeviceKind:  deviceKind,
		IsActive:    true,
		LastSeenAt:  now,
		CreatedAt:   now,
	}
}

// Touch updates the last-seen timestamp.
func (d *TrustedDevice) Touch(now time.Time) {
	d.LastSeenAt = now
}

// Deactivate soft-deletes the device. The record is retained for audit
// continuity.
func (d *TrustedDevice) Deactivate() {
	d.IsActive = false
}
