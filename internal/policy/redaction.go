package policy

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
)

// RedactPII masks phone numbers and email addresses.
func RedactPII(input string) (redacted string, changed bool) {
	out := input

	next := emailPattern.ReplaceAllString(out, "[REDACTED_EMAIL]")
	changed = changed || next != out
	out = next

	next = phonePattern.ReplaceAllString(out, "[REDACTED_PHONE]")
	changed = changed || next != out
	out = next

	return out, changed
}

// Redactor applies caller redaction to log output when enabled. The zero
// value logs everything verbatim.
type Redactor struct {
	Enabled bool
}

// Text masks PII inside free text such as a serialized session config.
func (r Redactor) Text(s string) string {
	if !r.Enabled {
		return s
	}
	out, _ := RedactPII(s)
	return out
}

// Caller masks a caller number down to its last four characters.
func (r Redactor) Caller(number string) string {
	if !r.Enabled {
		return number
	}
	number = strings.TrimSpace(number)
	runes := []rune(number)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
