package main

import (
	"net/http"
)

// homeHandler handles GET /catalog and shows the record counts.
func (app *applicationDependencies) homeHandler(r *http.Request) (response, error) {
	summary, err := app.catalog.Summary(r.Context())
	if err != nil {
		return response{}, err
	}

	td := app.newTemplateData(r)
	td.Summary = summary
	return page("home.tmpl", td), nil
}
