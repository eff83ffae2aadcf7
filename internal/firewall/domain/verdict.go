// Package domain defines the access pipeline's inbound unit of work and its
// outcome.
package domain

// Denial reasons. Short and non-revealing: the specific rule that matched a
// critical content check is never echoed back to the caller.
const (
	ReasonNotAllowed           = "not allowed"
	ReasonForbidden            = "forbidden"
	ReasonRateLimited          = "rate limited"
	ReasonSuspiciousRequest    = "suspicious request"
	ReasonRequiresVerification = "requires additional verification"
)

// Request is one inbound unit of work, supplied by the edge layer.
type Request struct {
	// ClientIdentity is derived from connection metadata (usually the IP)
	// and keys the rate limiter and blocklist.
	ClientIdentity string

	// SubjectID comes from an authenticated session. Empty for
	// unauthenticated traffic.
	SubjectID string

	Action   string
	TargetID string

	// Payload is the optional free-text body. A non-empty payload makes the
	// request payload-carrying and subject to the content check.
	Payload string

	DeviceID    string
	ClientIP    string
	UserAgent   string
	Path        string
	ContentType string
}

// PayloadCarrying reports whether the content check applies.
func (r *Request) PayloadCarrying() bool {
	return r.Payload != ""
}

// Verdict is the pipeline's decision for one request.
type Verdict struct {
	Allowed    bool
	StatusCode int
	Reason     string

	// RequiresAdditionalVerification marks a soft deny: the caller should
	// be pushed to stronger authentication rather than turned away.
	RequiresAdditionalVerification bool
}

// Allow builds the approved verdict.
func Allow() Verdict {
	return Verdict{Allowed: true, StatusCode: 200}
}

// Deny builds a denial with the given status and reason.
func Deny(statusCode int, reason string) Verdict {
	return Verdict{StatusCode: statusCode, Reason: reason}
}

// DenyForVerification builds the soft denial asking for stronger auth.
func DenyForVerification() Verdict {
	return Verdict{
		StatusCode:                     403,
		Reason:                         ReasonRequiresVerification,
		RequiresAdditionalVerification: true,
	}
}
