// cmd/api/errors.go
// This file contains all error-response helpers for the application.
// Browser requests get the HTML error page; requests under /v1 get a JSON
// envelope.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aoideee/locallibrary/internal/data"
)

// statusError is an error that knows which HTTP status it should produce.
type statusError struct {
	status int
	err    error
}

func newStatusError(status int, err error) error {
	return &statusError{status: status, err: err}
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

// isAPI reports whether the request targets the JSON API.
func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/v1/")
}

// logError logs an internal error at ERROR level with the request method and URL for context.
func (app *applicationDependencies) logError(r *http.Request, err error) {
	app.logger.Error(err.Error(),
		slog.String("request_method", r.Method),
		slog.String("request_url", r.URL.String()),
		slog.String("request_id", requestIDFromContext(r.Context())),
	)
}

// handleError picks the response for an error returned by a handler.
func (app *applicationDependencies) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		se *statusError
		fe *filterError
	)
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.As(err, &fe):
		if isAPI(r) {
			app.failedValidationResponse(w, r, fe.errors)
			return
		}
		app.errorResponse(w, r, http.StatusBadRequest, "invalid query parameters")
	case errors.As(err, &se):
		if se.status >= http.StatusInternalServerError {
			app.logError(r, err)
		}
		app.errorResponse(w, r, se.status, http.StatusText(se.status))
	default:
		app.serverErrorResponse(w, r, err)
	}
}

// errorResponse sends message with the given status code, as JSON for the
// API and as the error page otherwise. It is the low-level building block
// used by all the specific error helpers below.
func (app *applicationDependencies) errorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	if isAPI(r) {
		if err := app.writeJSON(w, status, envelope{"error": message}, nil); err != nil {
			app.logError(r, err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	msg, ok := message.(string)
	if !ok {
		msg = http.StatusText(status)
	}

	ts, ok := app.templateCache["error.tmpl"]
	if !ok {
		http.Error(w, msg, status)
		return
	}
	td := app.newTemplateData(r)
	td.Message = msg
	td.Status = status

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := ts.ExecuteTemplate(w, "base", td); err != nil {
		app.logError(r, err)
	}
}

// serverErrorResponse logs a 500-level error and sends a generic message to the client.
// We never expose internal error details to the client.
func (app *applicationDependencies) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

// notFoundResponse sends a 404 Not Found error.
func (app *applicationDependencies) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

// methodNotAllowedResponse sends a 405 Method Not Allowed error.
func (app *applicationDependencies) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := "the " + r.Method + " method is not supported for this resource"
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

// badRequestResponse sends a 400 Bad Request error with the error message from the caller.
func (app *applicationDependencies) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// failedValidationResponse sends a 422 Unprocessable Entity response containing
// the field-level validation errors collected by a Validator.
func (app *applicationDependencies) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

// rateLimitExceededResponse sends a 429 Too Many Requests error.
func (app *applicationDependencies) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}
