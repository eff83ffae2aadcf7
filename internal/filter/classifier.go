package filter

import (
	"regexp"
	"strings"
)

// Severity grades a classification outcome.
type Severity string

// Classification severities, from least to most serious.
const (
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Classification reasons.
const (
	ReasonInappropriateContent = "inappropriate content"
	ReasonSuspiciousRequest    = "suspicious request"
	ReasonMessageTooLong       = "message too long"
	ReasonSuspiciousMessage    = "suspicious message"
)

// Verdict is the outcome of classifying a text payload.
type Verdict struct {
	IsSafe   bool
	Severity Severity
	Reason   string
}

func safeVerdict() Verdict {
	return Verdict{IsSafe: true}
}

// Filter classifies and redacts free-text payloads according to a compiled
// rule set.
type Filter struct {
	forbiddenTerms   []string
	suspicious       []*regexp.Regexp
	maxMessageLength int
	maxIdenticalRun  int
	secretPairRe     *regexp.Regexp
	cardRe           *regexp.Regexp
	phoneRe          *regexp.Regexp
	emailRe          *regexp.Regexp
}

// New builds a Filter from the given rule set. Rules must have been
// validated; an invalid pattern returns an error here as well.
func New(rules Rules) (*Filter, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	suspicious := make([]*regexp.Regexp, 0, len(rules.SuspiciousPatterns))
	for _, pattern := range rules.SuspiciousPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		suspicious = append(suspicious, re)
	}

	terms := make([]string, 0, len(rules.ForbiddenTerms))
	for _, term := range rules.ForbiddenTerms {
		terms = append(terms, strings.ToLower(term))
	}

	return &Filter{
		forbiddenTerms:   terms,
		suspicious:       suspicious,
		maxMessageLength: rules.MaxMessageLength,
		maxIdenticalRun:  rules.MaxIdenticalRun,
		secretPairRe:     compileSecretPairPattern(rules.SecretLabels),
		cardRe:           cardPattern,
		phoneRe:          phonePattern,
		emailRe:          emailPattern,
	}, nil
}

// MustNew builds a Filter from the compiled-in defaults.
func MustNew() *Filter {
	f, err := New(DefaultRules())
	if err != nil {
		panic(err)
	}
	return f
}

// Classify grades the text against the rule set. Rules are checked in a
// fixed order and the first match wins.
func (f *Filter) Classify(text string) Verdict {
	lowered := strings.ToLower(text)
	for _, term := range f.forbiddenTerms {
		if strings.Contains(lowered, term) {
			return Verdict{Severity: SeverityHigh, Reason: ReasonInappropriateContent}
		}
	}

	for _, re := range f.suspicious {
		if re.MatchString(text) {
			return Verdict{Severity: SeverityCritical, Reason: ReasonSuspiciousRequest}
		}
	}

	if len(text) > f.maxMessageLength {
		return Verdict{Severity: SeverityMedium, Reason: ReasonMessageTooLong}
	}

	if longestRun(text) >= f.maxIdenticalRun {
		return Verdict{Severity: SeverityMedium, Reason: ReasonSuspiciousMessage}
	}

	return safeVerdict()
}

// longestRun returns the length of the longest run of identical consecutive
// runes.
func longestRun(text string) int {
	var prev rune
	run, longest := 0, 0
	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
