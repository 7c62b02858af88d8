// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/nextpage/internal/logging"
)

// AccessLog logs one line per request through the context logger. Requests
// slower than slowThreshold, and 5xx responses, are logged at warn; 4xx at
// info; everything else at debug. A zero threshold disables slow detection.
func AccessLog(slowThreshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			status := statusOf(ww)
			slow := slowThreshold > 0 && duration > slowThreshold

			logger := logging.Ctx(r.Context())
			event := logger.WithLevel(accessLevel(status, slow))
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Str("remote_addr", r.RemoteAddr).
				Dur("duration", duration).
				Bool("slow", slow).
				Msg("http request")
		})
	}
}

func accessLevel(status int, slow bool) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError || slow:
		return zerolog.WarnLevel
	case status >= http.StatusBadRequest:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
