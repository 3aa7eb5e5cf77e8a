package data

import (
	"net/url"
	"time"

	"github.com/aoideee/locallibrary/internal/validator"
)

// Date formats used by the virtual fields.
const (
	displayDate = "Jan 2, 2006"
	formDate    = time.DateOnly
)

// Author is a person credited with one or more books.
type Author struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"first_name"`
	FamilyName  string     `json:"family_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Name is "Family, First", or empty when either part is missing.
func (a *Author) Name() string {
	if a.FirstName == "" || a.FamilyName == "" {
		return ""
	}
	return a.FamilyName + ", " + a.FirstName
}

// Lifespan renders the birth and death dates, leaving unknown ends blank.
func (a *Author) Lifespan() string {
	return a.DateOfBirthFormatted() + " - " + a.DateOfDeathFormatted()
}

// URL is the canonical path of the author's detail page.
func (a *Author) URL() string {
	return "/catalog/author/" + a.ID
}

func (a *Author) DateOfBirthFormatted() string { return formatDate(a.DateOfBirth, displayDate) }
func (a *Author) DateOfDeathFormatted() string { return formatDate(a.DateOfDeath, displayDate) }

// DateOfBirthISO and DateOfDeathISO are the values used to pre-fill date inputs.
func (a *Author) DateOfBirthISO() string { return formatDate(a.DateOfBirth, formDate) }
func (a *Author) DateOfDeathISO() string { return formatDate(a.DateOfDeath, formDate) }

func formatDate(t *time.Time, layout string) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// AuthorInput holds the values submitted through the author form.
// Date fields stay as submitted so they can be re-rendered; the parsed values
// are kept alongside once ValidateAuthor has run.
type AuthorInput struct {
	FirstName   string
	FamilyName  string
	DateOfBirth string
	DateOfDeath string

	dateOfBirth *time.Time
	dateOfDeath *time.Time
}

// NewAuthorInput trims the author form fields. Names are escaped once the
// alphanumeric rule has been checked.
func NewAuthorInput(form url.Values) *AuthorInput {
	return &AuthorInput{
		FirstName:   validator.Trim(form.Get("first_name")),
		FamilyName:  validator.Trim(form.Get("family_name")),
		DateOfBirth: validator.Trim(form.Get("date_of_birth")),
		DateOfDeath: validator.Trim(form.Get("date_of_death")),
	}
}

// ValidateAuthor checks the author form and parses its dates.
func ValidateAuthor(v *validator.Validator, in *AuthorInput) {
	v.Check(validator.NotBlank(in.FirstName), "first_name", "First name must be specified.")
	v.Check(validator.MaxChars(in.FirstName, 100), "first_name", "First name must not be more than 100 characters long.")
	v.Check(validator.IsAlphanumeric(in.FirstName), "first_name", "First name has non-alphanumeric characters.")
	in.FirstName = validator.Escape(in.FirstName)

	v.Check(validator.NotBlank(in.FamilyName), "family_name", "Family name must be specified.")
	v.Check(validator.MaxChars(in.FamilyName, 100), "family_name", "Family name must not be more than 100 characters long.")
	v.Check(validator.IsAlphanumeric(in.FamilyName), "family_name", "Family name has non-alphanumeric characters.")
	in.FamilyName = validator.Escape(in.FamilyName)

	var ok bool
	in.dateOfBirth, ok = validator.ParseDate(in.DateOfBirth)
	v.Check(ok, "date_of_birth", "Invalid date of birth")
	in.dateOfDeath, ok = validator.ParseDate(in.DateOfDeath)
	v.Check(ok, "date_of_death", "Invalid date of death")
}

// Apply copies the validated input onto a, replacing every editable field.
func (in *AuthorInput) Apply(a *Author) {
	a.FirstName = in.FirstName
	a.FamilyName = in.FamilyName
	a.DateOfBirth = in.dateOfBirth
	a.DateOfDeath = in.dateOfDeath
}

// AuthorInputFrom pre-fills the form from a stored author.
func AuthorInputFrom(a *Author) *AuthorInput {
	return &AuthorInput{
		FirstName:   a.FirstName,
		FamilyName:  a.FamilyName,
		DateOfBirth: a.DateOfBirthISO(),
		DateOfDeath: a.DateOfDeathISO(),
		dateOfBirth: a.DateOfBirth,
		dateOfDeath: a.DateOfDeath,
	}
}
