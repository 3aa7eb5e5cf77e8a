// Package data provides the catalog's entity types, their form inputs and
// validation rules, the store interfaces every backend implements, and the
// PostgreSQL implementation of those stores.
package data

import (
	"net/url"
	"slices"
	"time"

	"github.com/aoideee/locallibrary/internal/validator"
)

// Book represents a single title in the catalog.
// AuthorID and GenreIDs are the stored references; Author and Genres are
// only filled in when a caller populates them.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	AuthorID  string    `json:"author_id"`
	Summary   string    `json:"summary"`
	ISBN      string    `json:"isbn"`
	GenreIDs  []string  `json:"genre_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author *Author  `json:"author,omitempty"`
	Genres []*Genre `json:"genres,omitempty"`
}

// URL is the canonical path of the book's detail page.
func (b *Book) URL() string {
	return "/catalog/book/" + b.ID
}

// HasGenre reports whether the book is tagged with the genre id.
func (b *Book) HasGenre(id string) bool {
	return slices.Contains(b.GenreIDs, id)
}

// BookInput holds the sanitized values submitted through the book form.
// It is re-rendered as-is when validation fails.
type BookInput struct {
	Title   string
	Author  string
	Summary string
	ISBN    string
	Genres  []string
}

// NewBookInput trims and escapes the book form fields.
func NewBookInput(form url.Values) *BookInput {
	in := &BookInput{
		Title:   validator.Clean(form.Get("title")),
		Author:  validator.Clean(form.Get("author")),
		Summary: validator.Clean(form.Get("summary")),
		ISBN:    validator.Clean(form.Get("isbn")),
		Genres:  []string{},
	}
	for _, g := range form["genre"] {
		if g = validator.Clean(g); g != "" && !slices.Contains(in.Genres, g) {
			in.Genres = append(in.Genres, g)
		}
	}
	return in
}

// ValidateBook checks the book form. Reference resolution happens later,
// against the store.
func ValidateBook(v *validator.Validator, in *BookInput) {
	v.Check(validator.NotBlank(in.Title), "title", "Title must not be empty.")
	v.Check(validator.NotBlank(in.Author), "author", "Author must not be empty.")
	v.Check(validator.NotBlank(in.Summary), "summary", "Summary must not be empty.")
	v.Check(validator.NotBlank(in.ISBN), "isbn", "ISBN must not be empty")
}

// Apply copies the input onto b, replacing every editable field.
func (in *BookInput) Apply(b *Book) {
	b.Title = in.Title
	b.AuthorID = in.Author
	b.Summary = in.Summary
	b.ISBN = in.ISBN
	b.GenreIDs = slices.Clone(in.Genres)
	b.Author = nil
	b.Genres = nil
}

// HasGenre reports whether the submitted form ticked the genre id.
func (in *BookInput) HasGenre(id string) bool {
	return slices.Contains(in.Genres, id)
}

// BookInputFrom pre-fills the form from a stored book.
func BookInputFrom(b *Book) *BookInput {
	return &BookInput{
		Title:   b.Title,
		Author:  b.AuthorID,
		Summary: b.Summary,
		ISBN:    b.ISBN,
		Genres:  slices.Clone(b.GenreIDs),
	}
}
