// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/maisonhub/sentinel/internal/errors"
)

var (
	// identityRegex matches client identities (IPv4/IPv6 literals or opaque
	// identity strings derived from connection metadata).
	identityRegex = regexp.MustCompile(`^[a-zA-Z0-9.:_\-]+$`)

	// actionRegex matches action names (snake_case identifiers).
	actionRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Identity validates a client identity string (no whitespace, no control
// characters, limited punctuation).
var Identity = validation.NewStringRuleWithError(
	func(s string) bool {
		return identityRegex.MatchString(s)
	},
	validation.NewError("validation_identity", "must be a valid client identity"),
)

// ActionName validates an action name (lowercase snake_case identifier).
var ActionName = validation.NewStringRuleWithError(
	func(s string) bool {
		return actionRegex.MatchString(s)
	},
	validation.NewError("validation_action_name", "must be a snake_case action name"),
)
