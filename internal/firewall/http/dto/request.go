// Package dto provides data transfer objects for access check and admin
// endpoints.
package dto

import (
	"github.com/jellydator/validation"

	apprules "github.com/maisonhub/sentinel/internal/validation"
)

// AccessCheckRequest is the payload for an explicit access decision.
type AccessCheckRequest struct {
	SubjectID string `json:"subject_id"`
	Action    string `json:"action"`
	TargetID  string `json:"target_id"`
	Payload   string `json:"payload"`
	DeviceID  string `json:"device_id"`
}

// Validate checks the access check request.
func (r AccessCheckRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SubjectID, apprules.Identity),
		validation.Field(&r.Action, validation.Required, apprules.ActionName),
		validation.Field(&r.TargetID, apprules.Identity),
		validation.Field(&r.Payload, validation.Length(0, 10000)),
		validation.Field(&r.DeviceID, apprules.Identity),
	)
}

// IdentityRequest identifies a client for admin blocklist operations.
type IdentityRequest struct {
	Identity string `json:"identity"`
}

// Validate checks the identity.
func (r IdentityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identity, validation.Required, apprules.Identity),
	)
}
