// Package domain defines the security event model used as both audit trail
// and evidence source for anomaly detection.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Severity classifies how serious a security event is.
type Severity string

// Supported severities, ordered from least to most serious.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// IsValid reports whether the severity is one of the supported values.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

// Evidence severities are the ones the anomaly detector counts as signal.
func EvidenceSeverities() []Severity {
	return []Severity{SeverityWarning, SeverityError, SeverityCritical}
}

// Event types recorded by the pipeline and its collaborators.
const (
	EventAccessAllowed      = "access_allowed"
	EventAccessDenied       = "access_denied"
	EventRateLimitExceeded  = "rate_limit_exceeded"
	EventIdentityBlocked    = "identity_blocked"
	EventIdentityUnblocked  = "identity_unblocked"
	EventContentBlocked     = "content_blocked"
	EventSuspiciousActivity = "suspicious_activity_detected"
	EventUntrustedDevice    = "untrusted_device_action"
	EventTokenIssued        = "token_issued"
	EventTokenVerifyFailed  = "token_verification_failed"
	EventDeviceRegistered   = "device_registered"
	EventDeviceDeactivated  = "device_deactivated"
)

// SecurityEvent is a single append-only entry in the security trail.
// Events are never mutated or deleted by the core; retention is an
// external-store concern.
type SecurityEvent struct {
	ID        uuid.UUID
	SubjectID *string
	EventType string
	Severity  Severity
	Details   map[string]any
	ClientIP  *string
	UserAgent *string
	DeviceID  *string
	CreatedAt time.Time
}

// NewSecurityEvent creates an event with a fresh ID and the given timestamp.
func NewSecurityEvent(eventType string, severity Severity, createdAt time.Time) *SecurityEvent {
	return &SecurityEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Severity:  severity,
		CreatedAt: createdAt,
	}
}

// WithSubject sets the subject the event concerns.
func (e *SecurityEvent) WithSubject(subjectID string) *SecurityEvent {
	if subjectID != "" {
		e.SubjectID = &subjectID
	}
	return e
}

// WithClient sets connection metadata.
func (e *SecurityEvent) WithClient(clientIP, userAgent string) *SecurityEvent {
	if clientIP != "" {
		e.ClientIP = &clientIP
	}
	if userAgent != "" {
		e.UserAgent = &userAgent
	}
	return e
}

// WithDevice sets the device the event concerns.
func (e *SecurityEvent) WithDevice(deviceID string) *SecurityEvent {
	if deviceID != "" {
		e.DeviceID = &deviceID
	}
	return e
}

// WithDetails attaches structured details to the event.
func (e *SecurityEvent) WithDetails(details map[string]any) *SecurityEvent {
	e.Details = details
	return e
}
