package dto

import (
	"time"

	tokenDomain "github.com/maisonhub/sentinel/internal/token/domain"
)

// IssueTokenResponse carries the minted token.
type IssueTokenResponse struct {
	Token string `json:"token"`
}

// VerifyTokenResponse describes a successfully verified token.
type VerifyTokenResponse struct {
	Valid     bool      `json:"valid"`
	SubjectID string    `json:"subject_id"`
	Action    string    `json:"action"`
	TargetID  string    `json:"target_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapGrantToVerifyResponse converts a grant to the verify response.
func MapGrantToVerifyResponse(grant *tokenDomain.Grant) VerifyTokenResponse {
	return VerifyTokenResponse{
		Valid:     true,
		SubjectID: grant.SubjectID,
		Action:    grant.Action,
		TargetID:  grant.TargetID,
		ExpiresAt: grant.ExpiresAt,
	}
}
