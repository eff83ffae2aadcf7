package dto

import (
	firewallDomain "github.com/maisonhub/sentinel/internal/firewall/domain"
)

// VerdictResponse is the access decision as returned to the edge caller.
type VerdictResponse struct {
	Allowed                        bool   `json:"allowed"`
	StatusCode                     int    `json:"status_code"`
	Reason                         string `json:"reason,omitempty"`
	RequiresAdditionalVerification bool   `json:"requires_additional_verification"`
}

// MapVerdictToResponse converts a domain verdict to its response form.
func MapVerdictToResponse(verdict firewallDomain.Verdict) VerdictResponse {
	return VerdictResponse{
		Allowed:                        verdict.Allowed,
		StatusCode:                     verdict.StatusCode,
		Reason:                         verdict.Reason,
		RequiresAdditionalVerification: verdict.RequiresAdditionalVerification,
	}
}
