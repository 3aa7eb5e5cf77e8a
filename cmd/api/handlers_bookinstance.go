// cmd/api/handlers_bookinstance.go
// Page handlers for the book instance (copy) pages.
package main

import (
	"errors"
	"net/http"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/metrics"
	"github.com/aoideee/locallibrary/internal/validator"
)

const instanceList = "/catalog/bookinstances"

// instanceListHandler handles GET /catalog/bookinstances.
func (app *applicationDependencies) instanceListHandler(r *http.Request) (response, error) {
	f, err := app.readFilters(r.URL.Query(), "due_back", 0, sortable("due_back", "imprint", "status", "created_at")...)
	if err != nil {
		return response{}, err
	}

	instances, meta, err := app.catalog.ListBookInstances(r.Context(), f)
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Instances = instances
	td.Metadata = meta
	return page("bookinstance_list.tmpl", td), nil
}

// instanceDetailHandler handles GET /catalog/bookinstance/:id.
func (app *applicationDependencies) instanceDetailHandler(r *http.Request) (response, error) {
	instance, err := app.catalog.BookInstance(r.Context(), app.readIDParam(r))
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Instance = instance
	return page("bookinstance_detail.tmpl", td), nil
}

// instanceForm loads the book picklist around input.
func (app *applicationDependencies) instanceForm(r *http.Request, title string, input *data.BookInstanceInput) (*templateData, error) {
	books, err := app.catalog.InstanceFormBooks(r.Context())
	if err != nil {
		return nil, err
	}

	td := app.newTemplateData(r)
	td.Title = title
	td.Books = books
	td.Statuses = data.Statuses
	td.InstanceForm = input
	return td, nil
}

// instanceCreateFormHandler handles GET /catalog/bookinstances/create.
func (app *applicationDependencies) instanceCreateFormHandler(r *http.Request) (response, error) {
	td, err := app.instanceForm(r, "Create BookInstance", &data.BookInstanceInput{})
	if err != nil {
		return response{}, err
	}
	return page("bookinstance_form.tmpl", td), nil
}

// readInstance parses and validates the instance form and checks that the
// book it names exists.
func (app *applicationDependencies) readInstance(r *http.Request) (*data.BookInstanceInput, *validator.Validator, error) {
	form, err := app.readForm(r)
	if err != nil {
		return nil, nil, err
	}

	input := data.NewBookInstanceInput(form)
	v := validator.New()
	data.ValidateBookInstance(v, input)
	if err := app.catalog.CheckInstanceReferences(r.Context(), v, input); err != nil {
		return nil, nil, err
	}
	return input, v, nil
}

// instanceCreateHandler handles POST /catalog/bookinstances/create.
func (app *applicationDependencies) instanceCreateHandler(r *http.Request) (response, error) {
	input, v, err := app.readInstance(r)
	if err != nil {
		return response{}, err
	}
	if !v.Valid() {
		td, err := app.instanceForm(r, "Create BookInstance", input)
		if err != nil {
			return response{}, err
		}
		return invalid("bookinstance_form.tmpl", td, v), nil
	}

	instance := &data.BookInstance{}
	input.Apply(instance, app.now())
	if err := app.catalog.CreateBookInstance(r.Context(), instance); err != nil {
		return response{}, err
	}
	return redirect(instance.URL()), nil
}

// instanceUpdateFormHandler handles GET /catalog/bookinstance/:id/update.
func (app *applicationDependencies) instanceUpdateFormHandler(r *http.Request) (response, error) {
	instance, err := app.catalog.Models().BookInstances.Get(r.Context(), app.readIDParam(r))
	if err != nil {
		return response{}, err
	}

	td, err := app.instanceForm(r, "Update BookInstance", data.BookInstanceInputFrom(instance))
	if err != nil {
		return response{}, err
	}
	return page("bookinstance_form.tmpl", td), nil
}

// instanceUpdateHandler handles POST /catalog/bookinstance/:id/update.
func (app *applicationDependencies) instanceUpdateHandler(r *http.Request) (response, error) {
	instance, err := app.catalog.Models().BookInstances.Get(r.Context(), app.readIDParam(r))
	if err != nil {
		return response{}, err
	}

	input, v, err := app.readInstance(r)
	if err != nil {
		return response{}, err
	}
	if !v.Valid() {
		td, err := app.instanceForm(r, "Update BookInstance", input)
		if err != nil {
			return response{}, err
		}
		return invalid("bookinstance_form.tmpl", td, v), nil
	}

	input.Apply(instance, app.now())
	if err := app.catalog.UpdateBookInstance(r.Context(), instance); err != nil {
		return response{}, err
	}
	return redirect(instance.URL()), nil
}

// instanceDeleteFormHandler handles GET /catalog/bookinstance/:id/delete.
func (app *applicationDependencies) instanceDeleteFormHandler(r *http.Request) (response, error) {
	instance, err := app.catalog.BookInstance(r.Context(), app.readIDParam(r))
	if errors.Is(err, data.ErrRecordNotFound) {
		return redirect(instanceList), nil
	}
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Instance = instance
	return page("bookinstance_delete.tmpl", td), nil
}

// instanceDeleteHandler handles POST /catalog/bookinstance/:id/delete.
func (app *applicationDependencies) instanceDeleteHandler(r *http.Request) (response, error) {
	form, err := app.readForm(r)
	if err != nil {
		return response{}, err
	}
	id := app.readString(form, "bookinstanceid", app.readIDParam(r))

	err = app.catalog.DeleteBookInstance(r.Context(), id)
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		metrics.RecordDeletion("bookinstance", "missing")
	case err != nil:
		return response{}, err
	default:
		metrics.RecordDeletion("bookinstance", "deleted")
	}
	return redirect(instanceList), nil
}
