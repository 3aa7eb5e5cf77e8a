// cmd/api/handlers_genre.go
// Page handlers for the genre pages.
package main

import (
	"errors"
	"net/http"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/metrics"
	"github.com/aoideee/locallibrary/internal/validator"
)

const genreList = "/catalog/genres"

// genreListHandler handles GET /catalog/genres.
func (app *applicationDependencies) genreListHandler(r *http.Request) (response, error) {
	f, err := app.readFilters(r.URL.Query(), "name", 0, sortable("name", "created_at")...)
	if err != nil {
		return response{}, err
	}

	genres, meta, err := app.catalog.Models().Genres.GetAll(r.Context(), f)
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Genres = genres
	td.Metadata = meta
	return page("genre_list.tmpl", td), nil
}

// genreDetailHandler handles GET /catalog/genre/:id.
func (app *applicationDependencies) genreDetailHandler(r *http.Request) (response, error) {
	detail, err := app.catalog.GenreDetail(r.Context(), app.readIDParam(r))
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Genre = detail.Genre
	td.Books = detail.Books
	return page("genre_detail.tmpl", td), nil
}

// genreCreateFormHandler handles GET /catalog/genres/create.
func (app *applicationDependencies) genreCreateFormHandler(r *http.Request) (response, error) {
	td := app.newTemplateData(r)
	td.Title = "Create Genre"
	td.GenreForm = &data.GenreInput{}
	return page("genre_form.tmpl", td), nil
}

// genreCreateHandler handles POST /catalog/genres/create. Submitting a name
// that already exists (ignoring case) leads to the existing genre.
func (app *applicationDependencies) genreCreateHandler(r *http.Request) (response, error) {
	form, err := app.readForm(r)
	if err != nil {
		return response{}, err
	}

	input := data.NewGenreInput(form)
	v := validator.New()
	if data.ValidateGenre(v, input); !v.Valid() {
		td := app.newTemplateData(r)
		td.Title = "Create Genre"
		td.GenreForm = input
		return invalid("genre_form.tmpl", td, v), nil
	}

	genre := &data.Genre{}
	input.Apply(genre)

	result, created, err := app.catalog.CreateGenre(r.Context(), genre)
	if err != nil {
		return response{}, err
	}
	if !created {
		metrics.RecordDuplicate("genre")
	}
	return redirect(result.URL()), nil
}

// genreUpdateFormHandler handles GET /catalog/genre/:id/update.
func (app *applicationDependencies) genreUpdateFormHandler(r *http.Request) (response, error) {
	genre, err := app.catalog.Models().Genres.Get(r.Context(), app.readIDParam(r))
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Title = "Update Genre"
	td.GenreForm = &data.GenreInput{Name: genre.Name}
	return page("genre_form.tmpl", td), nil
}

// genreUpdateHandler handles POST /catalog/genre/:id/update.
func (app *applicationDependencies) genreUpdateHandler(r *http.Request) (response, error) {
	genre, err := app.catalog.Models().Genres.Get(r.Context(), app.readIDParam(r))
	if err != nil {
		return response{}, err
	}

	form, err := app.readForm(r)
	if err != nil {
		return response{}, err
	}

	input := data.NewGenreInput(form)
	v := validator.New()
	if data.ValidateGenre(v, input); !v.Valid() {
		td := app.newTemplateData(r)
		td.Title = "Update Genre"
		td.GenreForm = input
		return invalid("genre_form.tmpl", td, v), nil
	}

	input.Apply(genre)
	result, updated, err := app.catalog.UpdateGenre(r.Context(), genre)
	if err != nil {
		return response{}, err
	}
	if !updated {
		metrics.RecordDuplicate("genre")
	}
	return redirect(result.URL()), nil
}

// genreDeleteFormHandler handles GET /catalog/genre/:id/delete. A genre that
// no longer exists sends the browser back to the list.
func (app *applicationDependencies) genreDeleteFormHandler(r *http.Request) (response, error) {
	detail, err := app.catalog.GenreDetail(r.Context(), app.readIDParam(r))
	if errors.Is(err, data.ErrRecordNotFound) {
		return redirect(genreList), nil
	}
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Genre = detail.Genre
	td.Books = detail.Books
	return page("genre_delete.tmpl", td), nil
}

// genreDeleteHandler handles POST /catalog/genre/:id/delete. The genre is
// only removed when no book is filed under it; otherwise the delete page is
// shown again with those books.
func (app *applicationDependencies) genreDeleteHandler(r *http.Request) (response, error) {
	form, err := app.readForm(r)
	if err != nil {
		return response{}, err
	}
	id := app.readString(form, "genreid", app.readIDParam(r))

	res, err := app.catalog.DeleteGenre(r.Context(), id)
	if errors.Is(err, data.ErrRecordNotFound) {
		metrics.RecordDeletion("genre", "missing")
		return redirect(genreList), nil
	}
	if err != nil {
		return response{}, err
	}

	if res.Blocked() {
		metrics.RecordDeletion("genre", "blocked")
		td := app.newTemplateData(r)
		td.Genre = res.Target
		td.Books = res.Dependents
		return page("genre_delete.tmpl", td), nil
	}

	metrics.RecordDeletion("genre", "deleted")
	return redirect(genreList), nil
}
