// Package dto provides data transfer objects for capability token endpoints.
package dto

import (
	"github.com/jellydator/validation"

	apprules "github.com/maisonhub/sentinel/internal/validation"
)

// IssueTokenRequest is the payload for issuing a capability token.
type IssueTokenRequest struct {
	SubjectID  string `json:"subject_id"`
	Action     string `json:"action"`
	TargetID   string `json:"target_id"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// Validate checks the issue request.
func (r IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SubjectID, validation.Required, apprules.Identity),
		validation.Field(&r.Action, validation.Required, apprules.ActionName),
		validation.Field(&r.TargetID, apprules.Identity),
		validation.Field(&r.TTLSeconds, validation.Min(0)),
	)
}

// VerifyTokenRequest is the payload for verifying or revoking a token.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// Validate checks the verify request.
func (r VerifyTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required, validation.Length(1, 128)),
	)
}
