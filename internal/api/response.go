// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package api

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/nextpage/internal/logging"
	"github.com/tomtom215/nextpage/internal/recommend"
)

// Error codes returned in APIError.Code.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidK          = "INVALID_K"
	CodeUnknownAttribute  = "UNKNOWN_ATTRIBUTE"
	CodeAnalyticsDisabled = "ANALYTICS_DISABLED"
	CodeNotReady          = "NOT_READY"
	CodeTimeout           = "TIMEOUT"
	CodeRateLimited       = "RATE_LIMITED"
	CodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	CodeInternal          = "INTERNAL_ERROR"
)

// APIResponse is the envelope of every JSON response.
//
//	{
//	  "success": true,
//	  "data": {...},
//	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
//	}
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    Meta      `json:"meta"`
}

// APIError describes a failed request.
type APIError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Meta carries per-request diagnostics.
type Meta struct {
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMS int64     `json:"duration_ms"`
}

type startKey struct{}

// withRequestStart records when the request entered the router so Meta can
// report the full handling time.
func withRequestStart(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), startKey{}, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newMeta(r *http.Request) Meta {
	now := time.Now()
	m := Meta{
		RequestID: logging.RequestIDFromContext(r.Context()),
		Timestamp: now,
	}
	if start, ok := r.Context().Value(startKey{}).(time.Time); ok {
		m.DurationMS = now.Sub(start).Milliseconds()
	}
	return m
}

// respondSuccess writes data in a success envelope with an ETag and short
// public caching, since the catalog never changes at runtime. A request whose
// If-None-Match names the current tag gets 304 with no body.
func respondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	tag, err := etagOf(data)
	if err != nil {
		logging.Err(err).Msg("Failed to compute ETag")
	}
	if tag != "" {
		h := w.Header()
		h.Set("ETag", tag)
		h.Set("Cache-Control", "public, max-age=60")
		if etagMatches(r.Header.Get("If-None-Match"), tag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Success: true,
		Data:    data,
		Meta:    newMeta(r),
	})
}

// respondError writes an error envelope. err, when set, is logged but never
// sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	respondErrorWithData(w, r, status, code, message, err, nil)
}

// respondErrorWithData is respondError with a data payload for clients that
// render a result either way.
func respondErrorWithData(w http.ResponseWriter, r *http.Request, status int, code, message string, err error, data any) {
	meta := newMeta(r)
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.
			Str("code", code).
			Int("status", status).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &APIResponse{
		Success: false,
		Data:    data,
		Error: &APIError{
			Code:      code,
			Message:   message,
			RequestID: meta.RequestID,
		},
		Meta: meta,
	})
}

// respondValidationError writes a 400 for a failed request struct.
func respondValidationError(w http.ResponseWriter, r *http.Request, apiErr *APIError) {
	meta := newMeta(r)
	apiErr.RequestID = meta.RequestID
	respondJSON(w, http.StatusBadRequest, &APIResponse{
		Success: false,
		Error:   apiErr,
		Meta:    meta,
	})
}

// respondJSON encodes response with goccy/go-json. Error responses are never
// cached.
func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	if status != http.StatusOK {
		h.Set("Cache-Control", "no-store")
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// similarTag is the part of a recommendation response that identifies its
// content. Metadata carries the request id, timestamp and latency.
type similarTag struct {
	Query   string                     `json:"query"`
	Title   string                     `json:"title"`
	K       int                        `json:"k"`
	BuiltAt time.Time                  `json:"built_at"`
	Items   []recommend.Recommendation `json:"items"`
}

// etagOf returns a weak ETag over the FNV-1a hash of data's JSON encoding.
// The envelope meta is never part of it.
func etagOf(data any) (string, error) {
	if resp, ok := data.(*recommend.Response); ok {
		data = similarTag{
			Query:   resp.Query,
			Title:   resp.Title,
			K:       resp.Metadata.K,
			BuiltAt: resp.Metadata.BuiltAt,
			Items:   resp.Items,
		}
	}
	body, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode etag payload: %w", err)
	}
	h := fnv.New64a()
	_, _ = h.Write(body)
	return `W/"` + strconv.FormatUint(h.Sum64(), 16) + `"`, nil
}

// etagMatches reports whether an If-None-Match value names tag, using weak
// comparison.
func etagMatches(header, tag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(tag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}

// sanitizeLogValue escapes control characters so request data cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
