package data

import (
	"net/url"
	"time"

	"github.com/aoideee/locallibrary/internal/validator"
)

// Genre is a category books can be filed under. Names are unique when
// compared case-insensitively.
type Genre struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// URL is the canonical path of the genre's detail page.
func (g *Genre) URL() string {
	return "/catalog/genre/" + g.ID
}

// GenreInput holds the value submitted through the genre form.
type GenreInput struct {
	Name string `json:"name"`
}

// NewGenreInput trims the genre form. The name is escaped by ValidateGenre
// once its length has been checked.
func NewGenreInput(form url.Values) *GenreInput {
	return &GenreInput{Name: validator.Trim(form.Get("name"))}
}

// ValidateGenre checks the length of the name as typed, then escapes it.
func ValidateGenre(v *validator.Validator, in *GenreInput) {
	v.Check(validator.MinChars(in.Name, 3), "name", "Genre name must contain at least 3 characters")
	v.Check(validator.MaxChars(in.Name, 100), "name", "Genre name must not be more than 100 characters long")
	in.Name = validator.Escape(in.Name)
}

// Apply copies the input onto g.
func (in *GenreInput) Apply(g *Genre) {
	g.Name = in.Name
}
