package dto

import (
	"time"

	deviceDomain "github.com/maisonhub/sentinel/internal/device/domain"
)

// DeviceResponse represents a trusted device in API responses.
type DeviceResponse struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subject_id"`
	DeviceID    string    `json:"device_id"`
	DisplayName string    `json:"display_name,omitempty"`
	DeviceKind  string    `json:"device_kind,omitempty"`
	IsActive    bool      `json:"is_active"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// MapDeviceToResponse converts a domain device to its response form.
func MapDeviceToResponse(device *deviceDomain.TrustedDevice) DeviceResponse {
	return DeviceResponse{
		ID:          device.ID.String(),
		SubjectID:   device.SubjectID,
		DeviceID:    device.DeviceID,
		DisplayName: device.DisplayName,
		DeviceKind:  device.DeviceKind,
		IsActive:    device.IsActive,
		LastSeenAt:  device.LastSeenAt,
		CreatedAt:   device.CreatedAt,
	}
}

// ListDevicesResponse wraps a subject's devices.
type ListDevicesResponse struct {
	Data []DeviceResponse `json:"data"`
}

// MapDevicesToListResponse converts a slice of devices to a list response.
func MapDevicesToListResponse(devices []*deviceDomain.TrustedDevice) ListDevicesResponse {
	data := make([]DeviceResponse, 0, len(devices))
	for _, device := range devices {
		data = append(data, MapDeviceToResponse(device))
	}
	return ListDevicesResponse{Data: data}
}
