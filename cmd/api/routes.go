// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/aoideee/locallibrary/internal/metrics"
	"github.com/aoideee/locallibrary/ui"
)

// routes registers all HTTP endpoints and returns the configured router
// wrapped in the middleware chain.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → requestID → logRequest → metrics → secureHeaders → rateLimit → router
//
// Create pages live under the plural collection path so they never collide
// with the ":id" segment of the singular detail paths.
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.Handler(http.MethodGet, "/static/*filepath", http.FileServerFS(ui.Files))
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())

	router.HandlerFunc(http.MethodGet, "/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/catalog", http.StatusSeeOther)
	})
	router.HandlerFunc(http.MethodGet, "/catalog", app.handle(app.homeHandler))

	// Genres
	router.HandlerFunc(http.MethodGet, "/catalog/genres", app.handle(app.genreListHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/genres/create", app.handle(app.genreCreateFormHandler))
	router.HandlerFunc(http.MethodPost, "/catalog/genres/create", app.handle(app.genreCreateHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/genre/:id", app.handle(app.genreDetailHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/genre/:id/update", app.handle(app.genreUpdateFormHandler))
	router.HandlerFunc(http.MethodPost, "/catalog/genre/:id/update", app.handle(app.genreUpdateHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/genre/:id/delete", app.handle(app.genreDeleteFormHandler))
	router.HandlerFunc(http.MethodPost, "/catalog/genre/:id/delete", app.handle(app.genreDeleteHandler))

	// Authors
	router.HandlerFunc(http.MethodGet, "/catalog/authors", app.handle(app.authorListHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/authors/create", app.handle(app.authorCreateFormHandler))
	router.HandlerFunc(http.MethodPost, "/catalog/authors/create", app.handle(app.authorCreateHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/author/:id", app.handle(app.authorDetailHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/author/:id/update", app.handle(app.authorUpdateFormHandler))
	router.HandlerFunc(http.MethodPost, "/catalog/author/:id/update", app.handle(app.authorUpdateHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/author/:id/delete", app.handle(app.authorDeleteFormHandler))
	router.HandlerFunc(http.MethodPost, "/catalog/author/:id/delete", app.handle(app.authorDeleteHandler))

	// Books
	router.HandlerFunc(http.MethodGet, "/catalog/books", app.handle(app.bookListHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/books/create", app.handle(app.bookCreateFormHandler))
	router.HandlerFunc(http.MethodPost, "/catalog/books/create", app.handle(app.bookCreateHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/book/:id", app.handle(app.bookDetailHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/book/:id/update", app.handle(app.bookUpdateFormHandler))
	router.HandlerFunc(http.MethodPost, "/catalog/book/:id/update", app.handle(app.bookUpdateHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/book/:id/delete", app.handle(app.bookDeleteFormHandler))
	router.HandlerFunc(http.MethodPost, "/catalog/book/:id/delete", app.handle(app.bookDeleteHandler))

	// Book instances
	router.HandlerFunc(http.MethodGet, "/catalog/bookinstances", app.handle(app.instanceListHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/bookinstances/create", app.handle(app.instanceCreateFormHandler))
	router.HandlerFunc(http.MethodPost, "/catalog/bookinstances/create", app.handle(app.instanceCreateHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/bookinstance/:id", app.handle(app.instanceDetailHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/bookinstance/:id/update", app.handle(app.instanceUpdateFormHandler))
	router.HandlerFunc(http.MethodPost, "/catalog/bookinstance/:id/update", app.handle(app.instanceUpdateHandler))
	router.HandlerFunc(http.MethodGet, "/catalog/bookinstance/:id/delete", app.handle(app.instanceDeleteFormHandler))
	router.HandlerFunc(http.MethodPost, "/catalog/bookinstance/:id/delete", app.handle(app.instanceDeleteHandler))

	// JSON API
	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)
	router.HandlerFunc(http.MethodGet, "/v1/genres", app.listGenresAPIHandler)
	router.HandlerFunc(http.MethodPost, "/v1/genres", app.createGenreAPIHandler)
	router.HandlerFunc(http.MethodGet, "/v1/genres/:id", app.showGenreAPIHandler)
	router.HandlerFunc(http.MethodGet, "/v1/authors", app.listAuthorsAPIHandler)
	router.HandlerFunc(http.MethodGet, "/v1/authors/:id", app.showAuthorAPIHandler)
	router.HandlerFunc(http.MethodGet, "/v1/books", app.listBooksAPIHandler)
	router.HandlerFunc(http.MethodGet, "/v1/books/:id", app.showBookAPIHandler)
	router.HandlerFunc(http.MethodGet, "/v1/bookinstances", app.listInstancesAPIHandler)
	router.HandlerFunc(http.MethodGet, "/v1/bookinstances/:id", app.showInstanceAPIHandler)

	return app.recoverPanic(app.requestID(app.logRequest(metrics.InstrumentHandler(app.secureHeaders(app.rateLimit(router))))))
}
