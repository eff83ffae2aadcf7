// Package dto provides data transfer objects for trusted device endpoints.
package dto

import (
	"github.com/jellydator/validation"

	apprules "github.com/maisonhub/sentinel/internal/validation"
)

// RegisterDeviceRequest is the payload for registering a trusted device.
type RegisterDeviceRequest struct {
	SubjectID   string `json:"subject_id"`
	DeviceID    string `json:"device_id"`
	DisplayName string `json:"display_name"`
	DeviceKind  string `json:"device_kind"`
}

// Validate checks the register request.
func (r RegisterDeviceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SubjectID, validation.Required, apprules.Identity),
		validation.Field(&r.DeviceID, validation.Required, apprules.Identity),
		validation.Field(&r.DisplayName, validation.Length(0, 120)),
		validation.Field(&r.DeviceKind, validation.Length(0, 40)),
	)
}

// DeviceRefRequest identifies a (subject, device) pair.
type DeviceRefRequest struct {
	SubjectID string `json:"subject_id"`
	DeviceID  string `json:"device_id"`
}

// Validate checks the pair.
func (r DeviceRefRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SubjectID, validation.Required, apprules.Identity),
		validation.Field(&r.DeviceID, validation.Required, apprules.Identity),
	)
}
