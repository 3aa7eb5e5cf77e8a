// cmd/api/handlers_book.go
// Page handlers for the book pages.
package main

import (
	"errors"
	"net/http"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/metrics"
	"github.com/aoideee/locallibrary/internal/validator"
)

const bookList = "/catalog/books"

// bookListHandler handles GET /catalog/books.
func (app *applicationDependencies) bookListHandler(r *http.Request) (response, error) {
	f, err := app.readFilters(r.URL.Query(), "title", 0, sortable("title", "isbn", "created_at")...)
	if err != nil {
		return response{}, err
	}

	books, meta, err := app.catalog.ListBooks(r.Context(), f)
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Books = books
	td.Metadata = meta
	return page("book_list.tmpl", td), nil
}

// bookDetailHandler handles GET /catalog/book/:id.
func (app *applicationDependencies) bookDetailHandler(r *http.Request) (response, error) {
	detail, err := app.catalog.BookDetail(r.Context(), app.readIDParam(r))
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Book = detail.Book
	td.Instances = detail.Instances
	return page("book_detail.tmpl", td), nil
}

// bookForm loads the author and genre picklists around input.
func (app *applicationDependencies) bookForm(r *http.Request, title string, input *data.BookInput) (*templateData, error) {
	opts, err := app.catalog.BookFormOptions(r.Context())
	if err != nil {
		return nil, err
	}

	td := app.newTemplateData(r)
	td.Title = title
	td.Authors = opts.Authors
	td.Genres = opts.Genres
	td.BookForm = input
	return td, nil
}

// bookCreateFormHandler handles GET /catalog/books/create.
func (app *applicationDependencies) bookCreateFormHandler(r *http.Request) (response, error) {
	td, err := app.bookForm(r, "Create Book", &data.BookInput{})
	if err != nil {
		return response{}, err
	}
	return page("book_form.tmpl", td), nil
}

// readBook parses and validates the book form, resolving the author and
// genres it names. The returned validator carries any field errors.
func (app *applicationDependencies) readBook(r *http.Request) (*data.BookInput, *validator.Validator, error) {
	form, err := app.readForm(r)
	if err != nil {
		return nil, nil, err
	}

	input := data.NewBookInput(form)
	v := validator.New()
	data.ValidateBook(v, input)
	if err := app.catalog.CheckBookReferences(r.Context(), v, input); err != nil {
		return nil, nil, err
	}
	return input, v, nil
}

// bookCreateHandler handles POST /catalog/books/create. A book whose ISBN is
// already catalogued leads to the existing book.
func (app *applicationDependencies) bookCreateHandler(r *http.Request) (response, error) {
	input, v, err := app.readBook(r)
	if err != nil {
		return response{}, err
	}
	if !v.Valid() {
		td, err := app.bookForm(r, "Create Book", input)
		if err != nil {
			return response{}, err
		}
		return invalid("book_form.tmpl", td, v), nil
	}

	book := &data.Book{}
	input.Apply(book)

	result, created, err := app.catalog.CreateBook(r.Context(), book)
	if err != nil {
		return response{}, err
	}
	if !created {
		metrics.RecordDuplicate("book")
	}
	return redirect(result.URL()), nil
}

// bookUpdateFormHandler handles GET /catalog/book/:id/update.
func (app *applicationDependencies) bookUpdateFormHandler(r *http.Request) (response, error) {
	book, err := app.catalog.Models().Books.Get(r.Context(), app.readIDParam(r))
	if err != nil {
		return response{}, err
	}

	td, err := app.bookForm(r, "Update Book", data.BookInputFrom(book))
	if err != nil {
		return response{}, err
	}
	return page("book_form.tmpl", td), nil
}

// bookUpdateHandler handles POST /catalog/book/:id/update.
func (app *applicationDependencies) bookUpdateHandler(r *http.Request) (response, error) {
	book, err := app.catalog.Models().Books.Get(r.Context(), app.readIDParam(r))
	if err != nil {
		return response{}, err
	}

	input, v, err := app.readBook(r)
	if err != nil {
		return response{}, err
	}
	if !v.Valid() {
		td, err := app.bookForm(r, "Update Book", input)
		if err != nil {
			return response{}, err
		}
		return invalid("book_form.tmpl", td, v), nil
	}

	input.Apply(book)
	result, updated, err := app.catalog.UpdateBook(r.Context(), book)
	if err != nil {
		return response{}, err
	}
	if !updated {
		metrics.RecordDuplicate("book")
	}
	return redirect(result.URL()), nil
}

// bookDeleteFormHandler handles GET /catalog/book/:id/delete.
func (app *applicationDependencies) bookDeleteFormHandler(r *http.Request) (response, error) {
	detail, err := app.catalog.BookDetail(r.Context(), app.readIDParam(r))
	if errors.Is(err, data.ErrRecordNotFound) {
		return redirect(bookList), nil
	}
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Book = detail.Book
	td.Instances = detail.Instances
	return page("book_delete.tmpl", td), nil
}

// bookDeleteHandler handles POST /catalog/book/:id/delete. A book with
// copies on record is kept and the copies are listed.
func (app *applicationDependencies) bookDeleteHandler(r *http.Request) (response, error) {
	form, err := app.readForm(r)
	if err != nil {
		return response{}, err
	}
	id := app.readString(form, "bookid", app.readIDParam(r))

	res, err := app.catalog.DeleteBook(r.Context(), id)
	if errors.Is(err, data.ErrRecordNotFound) {
		metrics.RecordDeletion("book", "missing")
		return redirect(bookList), nil
	}
	if err != nil {
		return response{}, err
	}

	if res.Blocked() {
		metrics.RecordDeletion("book", "blocked")
		if err := app.catalog.PopulateBooks(r.Context(), res.Target); err != nil {
			return response{}, err
		}
		td := app.newTemplateData(r)
		td.Book = res.Target
		td.Instances = res.Dependents
		return page("book_delete.tmpl", td), nil
	}

	metrics.RecordDeletion("book", "deleted")
	return redirect(bookList), nil
}
