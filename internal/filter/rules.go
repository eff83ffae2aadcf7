// Package filter provides content classification and redaction for free-text
// payloads. The filter is pure and stateless: rules are compiled once at
// construction and every method is safe for concurrent use.
package filter

import (
	"encoding/json"
	"os"
	"regexp"

	"github.com/jellydator/validation"

	apperrors "github.com/maisonhub/sentinel/internal/errors"
)

// Rules is the declarative rule set the filter is built from. A custom set
// can be loaded from a JSON file; DefaultRules is compiled in.
type Rules struct {
	Version            int      `json:"version"`
	ForbiddenTerms     []string `json:"forbidden_terms"`
	SuspiciousPatterns []string `json:"suspicious_patterns"`
	MaxMessageLength   int      `json:"max_message_length"`
	MaxIdenticalRun    int      `json:"max_identical_run"`
	SecretLabels       []string `json:"secret_labels"`
}

// Validate checks structural soundness of a rule set, including that every
// suspicious pattern compiles.
func (r Rules) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Version, validation.Required, validation.Min(1)),
		validation.Field(&r.ForbiddenTerms, validation.Each(validation.Required)),
		validation.Field(&r.SuspiciousPatterns, validation.Each(validation.Required)),
		validation.Field(&r.MaxMessageLength, validation.Required, validation.Min(1)),
		validation.Field(&r.MaxIdenticalRun, validation.Required, validation.Min(2)),
		validation.Field(&r.SecretLabels, validation.Each(validation.Required)),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}

	for _, pattern := range r.SuspiciousPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidInput, "pattern "+pattern+": "+err.Error())
		}
	}
	return nil
}

// DefaultRules returns the compiled-in rule set.
func DefaultRules() Rules {
	return Rules{
		Version: 1,
		ForbiddenTerms: []string{
			"connard", "salope", "enculé", "encule", "nique ta", "fils de pute",
			"fdp", "pute", "batard", "bâtard",
			"fuck you", "motherfucker", "bitch",
		},
		SuspiciousPatterns: []string{
			`(?i)(donne|donnez|envoie|envoyez|transmets)[a-zéè-]*\s+(moi\s+)?(le|la|ton|ta|votre|vos)\s+(mot\s+de\s+passe|code\s+pin|code\s+secret|clé)`,
			`(?i)(what\s+is|what's|give\s+me|send\s+me)\s+(the|your|my)?\s*(password|pin\s+code|secret\s+key)`,
			`(?i)(mot\s+de\s+passe|password)\s+(admin|root|administrateur|maître|master)`,
			`(?i)(supprime[rz]?|efface[rz]?|delete|drop)\s+(tout|toutes?\s+les|all|\*)`,
			`(?i)(désactive[rz]?|desactive[rz]?|disable)\s+(l'alarme|l'alarm|la\s+surveillance|les\s+caméras|les\s+cameras|the\s+alarm|all\s+cameras)`,
			`(?i)(;|--|\|\|)\s*(drop|truncate|shutdown)\b`,
		},
		MaxMessageLength: 2000,
		MaxIdenticalRun:  11,
		SecretLabels: []string{
			"mot de passe", "password", "passwd", "pwd", "secret",
			"token", "jeton", "clé api", "cle api", "api key", "apikey",
			"code pin", "pin",
		},
	}
}

// LoadRules reads and validates a rule set from a JSON file.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, apperrors.Wrap(err, "failed to read filter rules")
	}

	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return Rules{}, apperrors.Wrap(err, "failed to parse filter rules")
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}
