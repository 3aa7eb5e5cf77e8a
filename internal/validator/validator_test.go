package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorKeepsFirstErrorPerField(t *testing.T) {
	v := New()
	v.Check(false, "name", "first")
	v.Check(false, "name", "second")
	v.Check(true, "title", "never")
	v.AddError("isbn", "missing")

	assert.False(t, v.Valid())
	assert.Equal(t, []FieldError{
		{Field: "name", Message: "first"},
		{Field: "isbn", Message: "missing"},
	}, v.FieldErrors())
}

func TestValidatorZeroValue(t *testing.T) {
	var v Validator
	assert.True(t, v.Valid())
	v.AddError("x", "y")
	assert.Equal(t, "y", v.Errors["x"])
}

func TestChars(t *testing.T) {
	assert.True(t, MinChars("Brontë", 6))
	assert.False(t, MinChars("ab", 3))
	assert.True(t, MaxChars("abc", 3))
	assert.False(t, MaxChars("abcd", 3))
	assert.False(t, NotBlank(""))
}

func TestIsAlphanumeric(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"Asimov", true},
		{"R2D2", true},
		{"Brontë", true},
		{"", false},
		{"Le Guin", false},
		{"O'Brien", false},
		{"<script>", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAlphanumeric(tt.value))
		})
	}
}

func TestIn(t *testing.T) {
	assert.True(t, In("b", "a", "b"))
	assert.False(t, In("c", "a", "b"))
}

func TestEscapeRoundTrip(t *testing.T) {
	raw := `<a href="/x">Tom & Jerry's` + "`" + `</a>`
	escaped := Escape(raw)

	assert.Equal(t, "&lt;a href=&quot;&#x2F;x&quot;&gt;Tom &amp; Jerry&#x27;s&#96;&lt;&#x2F;a&gt;", escaped)
	assert.NotContains(t, escaped, "<")
	assert.Equal(t, raw, Unescape(escaped))
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Fantasy &amp; Magic", Clean("  Fantasy & Magic \n"))
}

func TestParseDate(t *testing.T) {
	t.Run("empty is accepted", func(t *testing.T) {
		for _, value := range []string{"", "   "} {
			got, ok := ParseDate(value)
			assert.True(t, ok)
			assert.Nil(t, got)
		}
	})

	t.Run("iso shapes", func(t *testing.T) {
		want := time.Date(1973, time.June, 6, 0, 0, 0, 0, time.UTC)
		for _, value := range []string{"1973-06-06", "1973-06-06T00:00", "1973-06-06T00:00:00", "1973-06-06T00:00:00Z", "1973-06-06T02:00:00+02:00"} {
			got, ok := ParseDate(value)
			require.True(t, ok, value)
			assert.True(t, want.Equal(*got), value)
		}
	})

	t.Run("rejects non dates", func(t *testing.T) {
		for _, value := range []string{"not-a-date", "06/06/1973", "1973-13-01"} {
			got, ok := ParseDate(value)
			assert.False(t, ok, value)
			assert.Nil(t, got)
		}
	})
}
