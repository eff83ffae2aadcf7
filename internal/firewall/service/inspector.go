package service

import (
	"regexp"
	"strings"
)

var (
	scriptMarkerRe = regexp.MustCompile(`(?i)(<script\b|javascript:|\bon(?:error|load|click)\s*=)`)
	sqlMarkerRe    = regexp.MustCompile(`(?i)('\s*(or|and)\s+'?\d|union\s+select|;\s*(drop|delete|truncate)\s|--\s*$|\bexec\s*\()`)
)

// allowedContentTypes for payload-carrying API calls. Empty content type is
// accepted for body-less requests.
var allowedContentTypes = map[string]struct{}{
	"application/json":                  {},
	"application/x-www-form-urlencoded": {},
	"text/plain":                        {},
}

// Inspector applies structural heuristics to a request: path traversal
// sequences, script and SQL injection markers, and content-type allowance.
// It looks at request shape only; free-text semantics belong to the content
// filter.
type Inspector struct{}

// NewInspector creates an Inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// Malformed reports whether the request shape looks hostile.
func (i *Inspector) Malformed(path, contentType, payload string) bool {
	if containsPathTraversal(path) {
		return true
	}
	if contentType != "" && !contentTypeAllowed(contentType) {
		return true
	}
	if payload != "" {
		if scriptMarkerRe.MatchString(payload) || sqlMarkerRe.MatchString(payload) {
			return true
		}
	}
	return scriptMarkerRe.MatchString(path)
}

func containsPathTraversal(path string) bool {
	lowered := strings.ToLower(path)
	return strings.Contains(lowered, "../") ||
		strings.Contains(lowered, "..\\") ||
		strings.Contains(lowered, "%2e%2e")
}

func contentTypeAllowed(contentType string) bool {
	// Strip parameters such as "; charset=utf-8".
	base := contentType
	if idx := strings.Index(base, ";"); idx >= 0 {
		base = base[:idx]
	}
	base = strings.ToLower(strings.TrimSpace(base))

	_, ok := allowedContentTypes[base]
	return ok
}
