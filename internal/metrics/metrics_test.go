package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/", "/"},
		{"", "/"},
		{"/catalog/books", "/catalog/books"},
		{"/catalog/genre/fantasy", "/catalog/genre/fantasy"},
		{"/static/css/main.css", "/static"},
		{"/catalog/book/65f1c0ffee0123456789abcd", "/catalog/book/:id"},
		{"/catalog/author/3f2504e0-4f89-11d3-9a0c-0305e82c3301/delete", "/catalog/author/:id/delete"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalPath(tt.in), tt.in)
	}
}

func TestInstrumentHandler(t *testing.T) {
	h := InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/catalog/genre/:id", "418"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/genre/65f1c0ffee0123456789abcd", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/catalog/genre/:id", "418")))
}

func TestCatalogCounters(t *testing.T) {
	before := testutil.ToFloat64(deletions.WithLabelValues("author", "blocked"))
	RecordDeletion("author", "blocked")
	assert.Equal(t, before+1, testutil.ToFloat64(deletions.WithLabelValues("author", "blocked")))

	before = testutil.ToFloat64(duplicates.WithLabelValues("genre"))
	RecordDuplicate("genre")
	assert.Equal(t, before+1, testutil.ToFloat64(duplicates.WithLabelValues("genre")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordDuplicate("book")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `locallibrary_catalog_duplicate_submissions_total{entity="book"}`))
}
