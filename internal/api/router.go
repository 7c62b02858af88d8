// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/nextpage/internal/middleware"
)

// slowRequestThreshold promotes access log lines to warn.
const slowRequestThreshold = time.Second

// NewRouter registers every route on a chi router.
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(middleware.RequestID)
	r.Use(withRequestStart)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(middleware.AccessLog(slowRequestThreshold))
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed", nil)
	})

	// Health endpoints are not rate limited so probes never see 429.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())

		r.Get("/books", h.Books)
		r.Get("/books/genres", h.Genres)

		r.Get("/recommendations/similar", h.Similar)
		r.Get("/recommendations/status", h.RecommendStatus)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/attributes", h.Attributes)
			r.Get("/top-voted", h.TopVoted)
			r.Get("/top-rated", h.TopRated)
			r.Get("/top-authors", h.TopAuthors)
			r.Get("/page-lengths", h.PageLengths)
			r.Get("/formats", h.Formats)
			r.Get("/describe", h.Describe)
			r.Get("/correlation", h.Correlation)
			r.Get("/scatter", h.Scatter)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
