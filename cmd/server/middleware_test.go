package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myrjola/wendler/internal/metrics"
	"github.com/myrjola/wendler/internal/testhelpers"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func Test_application_recoverPanic(t *testing.T) {
	m, reg := metrics.NewTestManagerAndRegistry()
	app := &application{ //nolint:exhaustruct // this is a test
		logger:   testhelpers.NewLogger(testhelpers.NewWriter(t)),
		metrics:  m,
		registry: reg,
	}
	handler := app.observeRequest(app.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("barbell dropped")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/overview", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Error != http.StatusText(http.StatusInternalServerError) {
		t.Errorf("error = %q, want the status text without panic details", body.Error)
	}
	if got := testutil.ToFloat64(m.CounterPanics); got != 1 {
		t.Errorf("panics = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CounterRequests.WithLabelValues(http.MethodGet, "500")); got != 1 {
		t.Errorf("requests{GET,500} = %v, want 1", got)
	}
}

func Test_application_notFound(t *testing.T) {
	m, reg := metrics.NewTestManagerAndRegistry()
	app := &application{ //nolint:exhaustruct // this is a test
		logger:   testhelpers.NewLogger(io.Discard),
		metrics:  m,
		registry: reg,
	}

	rec := httptest.NewRecorder()
	app.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}
