// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/nextpage/internal/logging"
	"github.com/tomtom215/nextpage/internal/metrics"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{"generated when absent", "", false},
		{"upstream id reused", "proxy-123", true},
		{"oversized id replaced", strings.Repeat("x", maxRequestIDLen+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ctxID, corrID string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = logging.RequestIDFromContext(r.Context())
				corrID = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			header := rec.Header().Get(RequestIDHeader)
			if header == "" {
				t.Fatal("response should carry X-Request-ID")
			}
			if header != ctxID {
				t.Errorf("header %q != context %q", header, ctxID)
			}
			if (header == tt.incoming) != tt.wantSame {
				t.Errorf("header = %q, incoming %q, wantSame %v", header, tt.incoming, tt.wantSame)
			}
			if len(corrID) != 8 {
				t.Errorf("correlation id = %q, want 8 characters", corrID)
			}
		})
	}
}

func TestRequestID_Unique(t *testing.T) {
	t.Parallel()

	handler := RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get(RequestIDHeader)
		if seen[id] {
			t.Fatalf("duplicate request id %q", id)
		}
		seen[id] = true
	}
}

func TestPrometheusMetrics_RoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/books/{title}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	r.Get("/implicit", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	tests := []struct {
		path    string
		pattern string
		status  string
	}{
		{"/books/dune", "/books/{title}", "200"},
		{"/books/emma", "/books/{title}", "200"},
		{"/boom", "/boom", "500"},
		{"/implicit", "/implicit", "200"},
		{"/nowhere", unmatchedRoute, "404"},
	}

	for _, tt := range tests {
		counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, tt.pattern, tt.status)
		before := testutil.ToFloat64(counter)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

		if got := testutil.ToFloat64(counter) - before; got != 1 {
			t.Errorf("%s: api_requests_total{endpoint=%q,status_code=%q} delta = %v, want 1",
				tt.path, tt.pattern, tt.status, got)
		}
	}

	if got := testutil.ToFloat64(metrics.APIActiveRequests); got != 0 {
		t.Errorf("active requests = %v after all requests finished, want 0", got)
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&buf))
	t.Cleanup(func() { logging.SetLogger(prev) })

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(time.Hour))
	r.Get("/fail", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(RequestIDHeader, "log-test")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	checks := map[string]any{
		"level":      "warn",
		"message":    "http request",
		"method":     "GET",
		"route":      "/fail",
		"status":     float64(503),
		"request_id": "log-test",
		"slow":       false,
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("log[%s] = %v, want %v", k, entry[k], want)
		}
	}
}

func TestAccessLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		slow   bool
		want   string
	}{
		{200, false, "debug"},
		{200, true, "warn"},
		{404, false, "info"},
		{500, false, "warn"},
	}
	for _, tt := range tests {
		if got := accessLevel(tt.status, tt.slow).String(); got != tt.want {
			t.Errorf("accessLevel(%d, %v) = %s, want %s", tt.status, tt.slow, got, tt.want)
		}
	}
}
