// cmd/api/helpers.go
// This file contains general-purpose helper functions for the application.
// Error-response helpers live in errors.go; only non-error utilities are here.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/validator"
)

// envelope is the top-level JSON wrapper type used for all API responses.
// Every response body is a JSON object with at least one named key,
// e.g. {"book": {...}} or {"books": [...], "metadata": {...}}.
type envelope map[string]any

// response is what a page handler decides to do with a request. The handle
// adapter turns it into either a rendered page or a redirect.
type response struct {
	status   int           // HTTP status for rendered pages (default 200)
	page     string        // Template file name, e.g. "genre_list.tmpl"
	data     *templateData // Values handed to the template
	redirect string        // When set, answer with 303 See Other to this URL
}

// pageHandler is a handler that returns its outcome instead of writing it.
type pageHandler func(r *http.Request) (response, error)

// page renders name with status 200.
func page(name string, data *templateData) response {
	return response{status: http.StatusOK, page: name, data: data}
}

// invalid re-renders name with status 422 and the validator's field errors.
func invalid(name string, data *templateData, v *validator.Validator) response {
	data.Errors = v.FieldErrors()
	return response{status: http.StatusUnprocessableEntity, page: name, data: data}
}

// redirect answers with 303 See Other so the browser follows with a GET.
func redirect(to string) response {
	return response{redirect: to}
}

// handle adapts a pageHandler to http.HandlerFunc. Every page handler goes
// through here, so render, redirect and error handling live in one place.
func (app *applicationDependencies) handle(h pageHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h(r)
		if err != nil {
			app.handleError(w, r, err)
			return
		}

		if res.redirect != "" {
			http.Redirect(w, r, res.redirect, http.StatusSeeOther)
			return
		}

		status := res.status
		if status == 0 {
			status = http.StatusOK
		}
		app.render(w, r, status, res.page, res.data)
	}
}

// render executes the named page into a buffer first, so a template error
// turns into a clean 500 rather than a half-written page.
func (app *applicationDependencies) render(w http.ResponseWriter, r *http.Request, status int, page string, data *templateData) {
	ts, ok := app.templateCache[page]
	if !ok {
		app.serverErrorResponse(w, r, fmt.Errorf("the template %s does not exist", page))
		return
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// readIDParam returns the ":id" URL parameter added by httprouter. Ids are
// opaque; a malformed one simply fails to match any record.
func (app *applicationDependencies) readIDParam(r *http.Request) string {
	params := httprouter.ParamsFromContext(r.Context())
	return params.ByName("id")
}

// readForm parses the request body. A body that cannot be parsed is a client error.
func (app *applicationDependencies) readForm(r *http.Request) (url.Values, error) {
	if err := r.ParseForm(); err != nil {
		return nil, newStatusError(http.StatusBadRequest, err)
	}
	return r.PostForm, nil
}

// readFilters reads ?page, ?page_size and ?sort. defaultPageSize of 0 lists
// everything on one page.
func (app *applicationDependencies) readFilters(qs url.Values, defaultSort string, defaultPageSize int, safeList ...string) (data.Filters, error) {
	f := data.Filters{
		Page:         app.readInt(qs, "page", 1),
		PageSize:     app.readInt(qs, "page_size", defaultPageSize),
		Sort:         app.readString(qs, "sort", defaultSort),
		SortSafeList: safeList,
	}

	v := validator.New()
	data.ValidateFilters(v, f)
	if !v.Valid() {
		return data.Filters{}, &filterError{v.Errors}
	}
	return f, nil
}

// filterError carries query-string validation failures.
type filterError struct {
	errors map[string]string
}

func (e *filterError) Error() string {
	return fmt.Sprintf("invalid query parameters: %v", e.errors)
}

// sortable expands field names into the ascending and descending sort values.
func sortable(fields ...string) []string {
	out := make([]string, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f, "-"+f)
	}
	return out
}

// readString reads a string query parameter from qs, returning defaultValue
// if the key is absent or empty.
func (app *applicationDependencies) readString(qs url.Values, key, defaultValue string) string {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	return s
}

// readInt reads an integer query parameter from qs, returning defaultValue if
// the key is absent or cannot be parsed as an integer.
func (app *applicationDependencies) readInt(qs url.Values, key string, defaultValue int) int {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}

// writeJSON marshals data to indented JSON, applies any custom headers,
// sets Content-Type to "application/json", writes the status code, and
// streams the body to the client.
func (app *applicationDependencies) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// readJSON decodes a single JSON value from the request body into dst.
// It enforces a 1 MB size limit, rejects unknown fields, and ensures the
// body contains exactly one JSON value (no trailing data).
func (app *applicationDependencies) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}
