// Package validation collects form validation failures as a field-to-message
// map instead of raising them one at a time, so handlers can re-render a
// form with every problem annotated.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "This field is required."
	}
}

// Length enforces an inclusive rune-count range, skipping empty values so
// Required stays the only source of "missing" messages.
func Length(field, value string, minLen, maxLen int, v Violations) {
	if strings.TrimSpace(value) == "" {
		return
	}
	n := utf8.RuneCountInString(value)
	if n < minLen || n > maxLen {
		v[field] = fmt.Sprintf("Must be between %d and %d characters.", minLen, maxLen)
	}
}

func Email(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v[field] = "Invalid email address."
	}
}

func EqualTo(field, value, other, otherName string, v Violations) {
	if value != other {
		v[field] = "Field must be equal to " + otherName + "."
	}
}
