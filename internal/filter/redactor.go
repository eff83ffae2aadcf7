package filter

import (
	"regexp"
	"strings"
)

// Redaction placeholders. Fixed tokens so downstream consumers can tell
// which category was masked.
const (
	PlaceholderEmail  = "[email masqué]"
	PlaceholderPhone  = "[téléphone masqué]"
	PlaceholderCard   = "[carte masquée]"
	PlaceholderSecret = "[secret masqué]"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// French national format, with or without the +33 prefix.
	phonePattern = regexp.MustCompile(`(?:\+33|0033|0)\s?[1-9](?:[\s.\-]?\d{2}){4}`)

	cardPattern = regexp.MustCompile(`\b\d{4}[ \-]?\d{4}[ \-]?\d{4}[ \-]?\d{4}\b`)
)

// compileSecretPairPattern builds a pattern matching `label: value` pairs for
// the configured secret vocabulary.
func compileSecretPairPattern(labels []string) *regexp.Regexp {
	quoted := make([]string, 0, len(labels))
	for _, label := range labels {
		quoted = append(quoted, regexp.QuoteMeta(label))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b\s*[:=]\s*\S+`)
}

// Redact replaces sensitive substrings with category placeholders. The
// surrounding text is left untouched and the operation is idempotent.
func (f *Filter) Redact(text string) string {
	// Secret pairs go first so their values are consumed whole instead of
	// being partially rewritten by the shape-based patterns below.
	redacted := f.secretPairRe.ReplaceAllString(text, PlaceholderSecret)
	redacted = f.cardRe.ReplaceAllString(redacted, PlaceholderCard)
	redacted = f.phoneRe.ReplaceAllString(redacted, PlaceholderPhone)
	redacted = f.emailRe.ReplaceAllString(redacted, PlaceholderEmail)
	return redacted
}

// ContainsSensitive reports whether any redaction trigger matches the text.
func (f *Filter) ContainsSensitive(text string) bool {
	return f.secretPairRe.MatchString(text) ||
		f.cardRe.MatchString(text) ||
		f.phoneRe.MatchString(text) ||
		f.emailRe.MatchString(text)
}
