package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aoideee/locallibrary/internal/catalog"
	"github.com/aoideee/locallibrary/internal/memstore"
)

// fixedNow is the clock used by test applications.
var fixedNow = time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC)

func newTestApplication(t *testing.T) (*applicationDependencies, *memstore.Store) {
	t.Helper()

	cache, err := newTemplateCache()
	require.NoError(t, err)

	store := memstore.New()
	app := &applicationDependencies{
		config:        serverConfig{environment: "testing", store: "memory"},
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		catalog:       catalog.New(store.Models()),
		templateCache: cache,
		now:           func() time.Time { return fixedNow },
	}
	return app, store
}

type testServer struct {
	*httptest.Server
}

// newTestServer starts the full handler chain. Redirects are returned to the
// test instead of being followed.
func newTestServer(t *testing.T, h http.Handler) *testServer {
	t.Helper()
	ts := httptest.NewServer(h)
	ts.Client().CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	t.Cleanup(ts.Close)
	return &testServer{ts}
}

func (ts *testServer) do(t *testing.T, req *http.Request) (int, http.Header, string) {
	t.Helper()
	rs, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer rs.Body.Close()

	body, err := io.ReadAll(rs.Body)
	require.NoError(t, err)
	return rs.StatusCode, rs.Header, string(body)
}

func (ts *testServer) get(t *testing.T, path string) (int, http.Header, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	return ts.do(t, req)
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values) (int, http.Header, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(t, req)
}

func (ts *testServer) postJSON(t *testing.T, path, body string) (int, http.Header, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return ts.do(t, req)
}

// create submits a create form and returns the id from the redirect target.
func (ts *testServer) create(t *testing.T, path, detailPrefix string, form url.Values) string {
	t.Helper()
	code, header, body := ts.postForm(t, path, form)
	require.Equal(t, http.StatusSeeOther, code, body)
	location := header.Get("Location")
	require.True(t, strings.HasPrefix(location, detailPrefix), location)
	return strings.TrimPrefix(location, detailPrefix)
}
