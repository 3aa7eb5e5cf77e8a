// cmd/api/handlers_author.go
// Page handlers for the author pages.
package main

import (
	"errors"
	"net/http"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/metrics"
	"github.com/aoideee/locallibrary/internal/validator"
)

const authorList = "/catalog/authors"

// authorListHandler handles GET /catalog/authors.
func (app *applicationDependencies) authorListHandler(r *http.Request) (response, error) {
	f, err := app.readFilters(r.URL.Query(), "family_name", 0, sortable("family_name", "first_name", "date_of_birth", "created_at")...)
	if err != nil {
		return response{}, err
	}

	authors, meta, err := app.catalog.Models().Authors.GetAll(r.Context(), f)
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Authors = authors
	td.Metadata = meta
	return page("author_list.tmpl", td), nil
}

// authorDetailHandler handles GET /catalog/author/:id.
func (app *applicationDependencies) authorDetailHandler(r *http.Request) (response, error) {
	detail, err := app.catalog.AuthorDetail(r.Context(), app.readIDParam(r))
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Author = detail.Author
	td.Books = detail.Books
	return page("author_detail.tmpl", td), nil
}

func (app *applicationDependencies) authorForm(r *http.Request, title string, input *data.AuthorInput) *templateData {
	td := app.newTemplateData(r)
	td.Title = title
	td.AuthorForm = input
	return td
}

// authorCreateFormHandler handles GET /catalog/authors/create.
func (app *applicationDependencies) authorCreateFormHandler(r *http.Request) (response, error) {
	return page("author_form.tmpl", app.authorForm(r, "Create Author", &data.AuthorInput{})), nil
}

// authorCreateHandler handles POST /catalog/authors/create.
func (app *applicationDependencies) authorCreateHandler(r *http.Request) (response, error) {
	form, err := app.readForm(r)
	if err != nil {
		return response{}, err
	}

	input := data.NewAuthorInput(form)
	v := validator.New()
	if data.ValidateAuthor(v, input); !v.Valid() {
		return invalid("author_form.tmpl", app.authorForm(r, "Create Author", input), v), nil
	}

	author := &data.Author{}
	input.Apply(author)
	if err := app.catalog.CreateAuthor(r.Context(), author); err != nil {
		return response{}, err
	}
	return redirect(author.URL()), nil
}

// authorUpdateFormHandler handles GET /catalog/author/:id/update.
func (app *applicationDependencies) authorUpdateFormHandler(r *http.Request) (response, error) {
	author, err := app.catalog.Models().Authors.Get(r.Context(), app.readIDParam(r))
	if err != nil {
		return response{}, err
	}
	return page("author_form.tmpl", app.authorForm(r, "Update Author", data.AuthorInputFrom(author))), nil
}

// authorUpdateHandler handles POST /catalog/author/:id/update.
func (app *applicationDependencies) authorUpdateHandler(r *http.Request) (response, error) {
	author, err := app.catalog.Models().Authors.Get(r.Context(), app.readIDParam(r))
	if err != nil {
		return response{}, err
	}

	form, err := app.readForm(r)
	if err != nil {
		return response{}, err
	}

	input := data.NewAuthorInput(form)
	v := validator.New()
	if data.ValidateAuthor(v, input); !v.Valid() {
		return invalid("author_form.tmpl", app.authorForm(r, "Update Author", input), v), nil
	}

	input.Apply(author)
	if err := app.catalog.UpdateAuthor(r.Context(), author); err != nil {
		return response{}, err
	}
	return redirect(author.URL()), nil
}

// authorDeleteFormHandler handles GET /catalog/author/:id/delete.
func (app *applicationDependencies) authorDeleteFormHandler(r *http.Request) (response, error) {
	detail, err := app.catalog.AuthorDetail(r.Context(), app.readIDParam(r))
	if errors.Is(err, data.ErrRecordNotFound) {
		return redirect(authorList), nil
	}
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Author = detail.Author
	td.Books = detail.Books
	return page("author_delete.tmpl", td), nil
}

// authorDeleteHandler handles POST /catalog/author/:id/delete. Authors with
// books are kept and the blocking books are listed.
func (app *applicationDependencies) authorDeleteHandler(r *http.Request) (response, error) {
	form, err := app.readForm(r)
	if err != nil {
		return response{}, err
	}
	id := app.readString(form, "authorid", app.readIDParam(r))

	res, err := app.catalog.DeleteAuthor(r.Context(), id)
	if errors.Is(err, data.ErrRecordNotFound) {
		metrics.RecordDeletion("author", "missing")
		return redirect(authorList), nil
	}
	if err != nil {
		return response{}, err
	}

	if res.Blocked() {
		metrics.RecordDeletion("author", "blocked")
		td := app.newTemplateData(r)
		td.Author = res.Target
		td.Books = res.Dependents
		return page("author_delete.tmpl", td), nil
	}

	metrics.RecordDeletion("author", "deleted")
	return redirect(authorList), nil
}
