// Package validator provides a custom Validator type for accumulating
// field-level validation errors, plus the sanitizers applied to form input
// before it reaches the data layer.
package validator

import (
	"regexp"
	"slices"
	"unicode"
	"unicode/utf8"
)

// AlphanumericRX matches strings made only of ASCII letters and digits.
var AlphanumericRX = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// FieldError is one failed field together with its message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator holds a map of field names to their validation error messages.
// A Validator with an empty Errors map is considered valid. The order in which
// fields first failed is kept so errors can be reported in form order.
type Validator struct {
	Errors map[string]string
	order  []string
}

// New creates and returns a fresh, empty Validator.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the Errors map contains no entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records key as failing with the given message.
// If key already has an error it is not overwritten, so the first
// failure for a field is always the one that is reported.
func (v *Validator) AddError(key, message string) {
	if v.Errors == nil {
		v.Errors = make(map[string]string)
	}
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
		v.order = append(v.order, key)
	}
}

// Check adds an error for key with message only when ok is false.
// Use this as a single-line guard:
//
//	v.Check(NotBlank(title), "title", "must be provided")
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// FieldErrors returns the recorded errors in the order the fields failed.
func (v *Validator) FieldErrors() []FieldError {
	out := make([]FieldError, 0, len(v.order))
	for _, key := range v.order {
		out = append(out, FieldError{Field: key, Message: v.Errors[key]})
	}
	return out
}

// NotBlank returns true if value is not the empty string.
func NotBlank(value string) bool {
	return value != ""
}

// MinChars returns true if value contains at least n characters.
func MinChars(value string, n int) bool {
	return utf8.RuneCountInString(value) >= n
}

// MaxChars returns true if value contains no more than n characters.
func MaxChars(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

// IsAlphanumeric reports whether value only holds letters and digits.
// Letters outside ASCII are accepted so names like "Brontë" pass.
func IsAlphanumeric(value string) bool {
	if Matches(value, AlphanumericRX) {
		return true
	}
	if value == "" {
		return false
	}
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// In returns true if value is present in the list slice.
func In(value string, list ...string) bool {
	return slices.Contains(list, value)
}

// Matches returns true if value matches the provided compiled regexp.
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}
