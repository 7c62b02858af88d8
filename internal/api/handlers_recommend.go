// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/nextpage/internal/logging"
	"github.com/tomtom215/nextpage/internal/recommend"
)

// SimilarNotFound is the data payload of a 404 so clients can render an
// empty list without special casing the error.
type SimilarNotFound struct {
	Query string                     `json:"query"`
	Items []recommend.Recommendation `json:"items"`
}

// Similar handles GET /api/v1/recommendations/similar?title=&k=.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	req := SimilarRequest{
		Title: q.String("title"),
		K:     q.Int("k"),
	}
	if !bind(w, r, q, &req) {
		return
	}

	ctx, cancel := h.queryContext(r)
	defer cancel()

	resp, err := h.engine.Similar(ctx, recommend.Request{
		Title:     req.Title,
		K:         req.K,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	switch {
	case err == nil:
		respondSuccess(w, r, resp)
	case errors.Is(err, recommend.ErrNotFound):
		respondErrorWithData(w, r, http.StatusNotFound, CodeNotFound,
			"No book titled "+sanitizeLogValue(req.Title)+" in the catalog", nil,
			SimilarNotFound{Query: req.Title, Items: []recommend.Recommendation{}})
	case errors.Is(err, recommend.ErrInvalidK):
		respondError(w, r, http.StatusBadRequest, CodeInvalidK, "k must not be negative", nil)
	default:
		respondQueryError(w, r, err)
	}
}

// RecommendStatus handles GET /api/v1/recommendations/status.
func (h *Handler) RecommendStatus(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.engine.Status())
}
