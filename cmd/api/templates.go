// cmd/api/templates.go
// This file parses the embedded page templates once at startup and defines
// the data every page is rendered with.
package main

import (
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/aoideee/locallibrary/internal/catalog"
	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/validator"
	"github.com/aoideee/locallibrary/ui"
)

// templateData is the single value handed to every page template. Each page
// only reads the fields it needs.
type templateData struct {
	CurrentYear int
	Title       string
	Errors      []validator.FieldError
	Metadata    data.Metadata
	Summary     catalog.Summary

	Genre     *data.Genre
	Genres    []*data.Genre
	Author    *data.Author
	Authors   []*data.Author
	Book      *data.Book
	Books     []*data.Book
	Instance  *data.BookInstance
	Instances []*data.BookInstance
	Statuses  []data.Status

	GenreForm    *data.GenreInput
	AuthorForm   *data.AuthorInput
	BookForm     *data.BookInput
	InstanceForm *data.BookInstanceInput

	// Error page
	Message string
	Status  int
}

// newTemplateData returns the fields shared by every page.
func (app *applicationDependencies) newTemplateData(_ *http.Request) *templateData {
	return &templateData{CurrentYear: time.Now().Year()}
}

// functions are available to every template. Stored text is already
// escaped, so text unescapes it once and lets html/template escape it again.
var functions = template.FuncMap{
	"text": validator.Unescape,
	"add":  func(a, b int) int { return a + b },
	"sub":  func(a, b int) int { return a - b },
}

// newTemplateCache parses base.tmpl, every partial, and one page per entry.
func newTemplateCache() (map[string]*template.Template, error) {
	cache := map[string]*template.Template{}

	pages, err := fs.Glob(ui.Files, "html/pages/*.tmpl")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		name := filepath.Base(page)

		patterns := []string{
			"html/base.tmpl",
			"html/partials/*.tmpl",
			page,
		}

		ts, err := template.New(name).Funcs(functions).ParseFS(ui.Files, patterns...)
		if err != nil {
			return nil, err
		}

		cache[name] = ts
	}

	return cache, nil
}
