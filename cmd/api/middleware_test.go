package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVisitors(t *testing.T) {
	vs := newVisitors(1, 2)
	now := fixedNow

	assert.True(t, vs.allow("10.0.0.1", now))
	assert.True(t, vs.allow("10.0.0.1", now))
	assert.False(t, vs.allow("10.0.0.1", now))

	// Buckets are per address.
	assert.True(t, vs.allow("10.0.0.2", now))

	// One token per second refills the bucket.
	assert.True(t, vs.allow("10.0.0.1", now.Add(time.Second)))

	assert.Equal(t, 0, vs.sweep(now.Add(visitorTTL)))
	assert.Equal(t, 1, vs.sweep(now.Add(visitorTTL+time.Nanosecond)))
	assert.Equal(t, 1, vs.sweep(now.Add(time.Hour)))
	assert.Empty(t, vs.buckets)
}

func TestRequestIDIsReused(t *testing.T) {
	app, _ := newTestApplication(t)

	var seen string
	h := app.requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	r.Header.Set("X-Request-ID", "abc-123")
	h.ServeHTTP(rr, r)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
}

func TestRecoverPanic(t *testing.T) {
	app, _ := newTestApplication(t)
	h := app.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/healthcheck", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
}
