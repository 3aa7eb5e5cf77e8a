// cmd/api/handlers_api.go
// This file contains the JSON handlers served under /v1. They read through
// the same catalog service as the HTML pages.
package main

import (
	"net/http"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/metrics"
	"github.com/aoideee/locallibrary/internal/validator"
)

// defaultAPIPageSize applies when the client sends no ?page_size.
const defaultAPIPageSize = 20

// healthcheckHandler handles GET /v1/healthcheck.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	env := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.environment,
			"store":       app.config.store,
			"version":     appVersion,
		},
	}
	if err := app.writeJSON(w, http.StatusOK, env, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// writeList answers a list endpoint with the records under key plus the
// pagination metadata.
func (app *applicationDependencies) writeList(w http.ResponseWriter, r *http.Request, key string, records any, meta data.Metadata, err error) {
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if err := app.writeJSON(w, http.StatusOK, envelope{key: records, "metadata": meta}, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// writeRecord answers a show endpoint with env.
func (app *applicationDependencies) writeRecord(w http.ResponseWriter, r *http.Request, env envelope, err error) {
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if err := app.writeJSON(w, http.StatusOK, env, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listGenresAPIHandler handles GET /v1/genres.
func (app *applicationDependencies) listGenresAPIHandler(w http.ResponseWriter, r *http.Request) {
	f, err := app.readFilters(r.URL.Query(), "name", defaultAPIPageSize, sortable("name", "created_at")...)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	genres, meta, err := app.catalog.Models().Genres.GetAll(r.Context(), f)
	app.writeList(w, r, "genres", genres, meta, err)
}

// showGenreAPIHandler handles GET /v1/genres/:id.
func (app *applicationDependencies) showGenreAPIHandler(w http.ResponseWriter, r *http.Request) {
	detail, err := app.catalog.GenreDetail(r.Context(), app.readIDParam(r))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeRecord(w, r, envelope{"genre": detail.Genre, "books": detail.Books}, nil)
}

// createGenreAPIHandler handles POST /v1/genres. Posting a name that already
// exists (ignoring case) answers 200 with the existing genre instead of 201.
func (app *applicationDependencies) createGenreAPIHandler(w http.ResponseWriter, r *http.Request) {
	var input data.GenreInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	input.Name = validator.Trim(input.Name)

	v := validator.New()
	if data.ValidateGenre(v, &input); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	genre := &data.Genre{}
	input.Apply(genre)

	result, created, err := app.catalog.CreateGenre(r.Context(), genre)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !created {
		metrics.RecordDuplicate("genre")
		status = http.StatusOK
	}

	headers := make(http.Header)
	headers.Set("Location", "/v1/genres/"+result.ID)

	if err := app.writeJSON(w, status, envelope{"genre": result}, headers); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listAuthorsAPIHandler handles GET /v1/authors.
func (app *applicationDependencies) listAuthorsAPIHandler(w http.ResponseWriter, r *http.Request) {
	f, err := app.readFilters(r.URL.Query(), "family_name", defaultAPIPageSize, sortable("family_name", "first_name", "date_of_birth", "created_at")...)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	authors, meta, err := app.catalog.Models().Authors.GetAll(r.Context(), f)
	app.writeList(w, r, "authors", authors, meta, err)
}

// showAuthorAPIHandler handles GET /v1/authors/:id.
func (app *applicationDependencies) showAuthorAPIHandler(w http.ResponseWriter, r *http.Request) {
	detail, err := app.catalog.AuthorDetail(r.Context(), app.readIDParam(r))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeRecord(w, r, envelope{"author": detail.Author, "books": detail.Books}, nil)
}

// listBooksAPIHandler handles GET /v1/books.
func (app *applicationDependencies) listBooksAPIHandler(w http.ResponseWriter, r *http.Request) {
	f, err := app.readFilters(r.URL.Query(), "title", defaultAPIPageSize, sortable("title", "isbn", "created_at")...)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	books, meta, err := app.catalog.ListBooks(r.Context(), f)
	app.writeList(w, r, "books", books, meta, err)
}

// showBookAPIHandler handles GET /v1/books/:id.
func (app *applicationDependencies) showBookAPIHandler(w http.ResponseWriter, r *http.Request) {
	detail, err := app.catalog.BookDetail(r.Context(), app.readIDParam(r))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeRecord(w, r, envelope{"book": detail.Book, "instances": detail.Instances}, nil)
}

// listInstancesAPIHandler handles GET /v1/bookinstances.
func (app *applicationDependencies) listInstancesAPIHandler(w http.ResponseWriter, r *http.Request) {
	f, err := app.readFilters(r.URL.Query(), "due_back", defaultAPIPageSize, sortable("due_back", "imprint", "status", "created_at")...)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	instances, meta, err := app.catalog.ListBookInstances(r.Context(), f)
	app.writeList(w, r, "bookinstances", instances, meta, err)
}

// showInstanceAPIHandler handles GET /v1/bookinstances/:id.
func (app *applicationDependencies) showInstanceAPIHandler(w http.ResponseWriter, r *http.Request) {
	instance, err := app.catalog.BookInstance(r.Context(), app.readIDParam(r))
	app.writeRecord(w, r, envelope{"bookinstance": instance}, err)
}
