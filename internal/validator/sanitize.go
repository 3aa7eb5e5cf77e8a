package validator

import (
	"html"
	"strings"
	"time"
)

// markupEscaper replaces the characters that are significant in HTML markup.
var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
	"`", "&#96;",
)

// dateLayouts lists the ISO-8601 shapes accepted for date fields, most
// specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// Trim strips leading and trailing white space.
func Trim(value string) string {
	return strings.TrimSpace(value)
}

// Escape replaces markup-significant characters with HTML entities.
func Escape(value string) string {
	return markupEscaper.Replace(value)
}

// Unescape reverses Escape. Templates use it so stored values are not
// escaped a second time on output.
func Unescape(value string) string {
	return html.UnescapeString(value)
}

// Clean trims and then escapes value, the treatment every free-text field gets.
func Clean(value string) string {
	return Escape(Trim(value))
}

// ParseDate parses an optional ISO-8601 date. An empty (or all white space)
// value yields ok == true and a nil time. Anything else that is not a valid
// ISO-8601 date yields ok == false.
func ParseDate(value string) (t *time.Time, ok bool) {
	value = Trim(value)
	if value == "" {
		return nil, true
	}
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			parsed = parsed.UTC()
			return &parsed, true
		}
	}
	return nil, false
}
