// Package validation checks submitted form fields and collects per-field
// messages for re-rendering the form.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Rule returns a user-facing message when v is invalid and "" otherwise.
type Rule func(v string) string

// NotBlank rejects empty or whitespace-only values.
func NotBlank(label string) Rule {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return label + " is required."
		}
		return ""
	}
}

// Present rejects only the empty string. Whitespace counts as content, which
// is what password fields need.
func Present(label string) Rule {
	return func(v string) string {
		if v == "" {
			return label + " is required."
		}
		return ""
	}
}

// MaxLen caps the trimmed value at n runes.
func MaxLen(label string, n int) Rule {
	return func(v string) string {
		if utf8.RuneCountInString(strings.TrimSpace(v)) > n {
			return fmt.Sprintf("%s cannot exceed %d characters.", label, n)
		}
		return ""
	}
}

// Email accepts a single bare address such as "desk@example.org". Blank
// values pass so NotBlank owns the required message.
func Email() Rule {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Address != v || addr.Name != "" {
			return "Enter a valid email address."
		}
		return ""
	}
}

// Equals requires the value to match other, e.g. a password confirmation.
func Equals(other, message string) Rule {
	return func(v string) string {
		if v != other {
			return message
		}
		return ""
	}
}

// Form accumulates the first failing rule's message per field.
type Form struct {
	errs map[string]string
}

// NewForm returns an empty Form.
func NewForm() *Form {
	return &Form{errs: map[string]string{}}
}

// Field runs rules against value in order and records the first failure.
func (f *Form) Field(name, value string, rules ...Rule) *Form {
	if _, seen := f.errs[name]; seen {
		return f
	}
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			f.errs[name] = msg
			return f
		}
	}
	return f
}

// Valid reports whether every field passed.
func (f *Form) Valid() bool { return len(f.errs) == 0 }

// Errors returns the field messages keyed by field name.
func (f *Form) Errors() map[string]string { return f.errs }
