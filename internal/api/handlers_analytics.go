// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/nextpage/internal/analytics"
)

// analyticsQuery is the shape shared by every analytics handler: parse and
// validate, then run fn against the store.
func (h *Handler) analyticsQuery(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, s *analytics.Store) (any, error)) {
	if h.store == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeAnalyticsDisabled, "Analytics is disabled", nil)
		return
	}

	ctx, cancel := h.queryContext(r)
	defer cancel()

	data, err := fn(ctx, h.store)
	switch {
	case err == nil:
		respondSuccess(w, r, data)
	case errors.Is(err, analytics.ErrUnknownAttribute):
		respondError(w, r, http.StatusBadRequest, CodeUnknownAttribute, err.Error(), nil)
	default:
		respondQueryError(w, r, err)
	}
}

func (h *Handler) bindTopN(w http.ResponseWriter, r *http.Request) (TopNRequest, bool) {
	q := newQueryParams(r)
	req := TopNRequest{Limit: q.Int("limit")}
	return req, bind(w, r, q, &req)
}

// TopVoted handles GET /api/v1/analytics/top-voted.
func (h *Handler) TopVoted(w http.ResponseWriter, r *http.Request) {
	req, ok := h.bindTopN(w, r)
	if !ok {
		return
	}
	h.analyticsQuery(w, r, func(ctx context.Context, s *analytics.Store) (any, error) {
		return s.TopByVoters(ctx, req.Limit)
	})
}

// TopRated handles GET /api/v1/analytics/top-rated.
func (h *Handler) TopRated(w http.ResponseWriter, r *http.Request) {
	req, ok := h.bindTopN(w, r)
	if !ok {
		return
	}
	h.analyticsQuery(w, r, func(ctx context.Context, s *analytics.Store) (any, error) {
		return s.TopRated(ctx, req.Limit)
	})
}

// TopAuthors handles GET /api/v1/analytics/top-authors.
func (h *Handler) TopAuthors(w http.ResponseWriter, r *http.Request) {
	req, ok := h.bindTopN(w, r)
	if !ok {
		return
	}
	h.analyticsQuery(w, r, func(ctx context.Context, s *analytics.Store) (any, error) {
		return s.TopAuthorsByAverage(ctx, req.Limit)
	})
}

// PageLengths handles GET /api/v1/analytics/page-lengths?bins=.
func (h *Handler) PageLengths(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	req := HistogramRequest{Bins: q.Int("bins")}
	if !bind(w, r, q, &req) {
		return
	}
	h.analyticsQuery(w, r, func(ctx context.Context, s *analytics.Store) (any, error) {
		return s.PageLengthHistogram(ctx, req.Bins)
	})
}

// Formats handles GET /api/v1/analytics/formats?min_percent=.
func (h *Handler) Formats(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	req := FormatsRequest{MinPercent: q.Float("min_percent")}
	if !bind(w, r, q, &req) {
		return
	}
	h.analyticsQuery(w, r, func(ctx context.Context, s *analytics.Store) (any, error) {
		return s.FormatDistribution(ctx, req.MinPercent)
	})
}

// Describe handles GET /api/v1/analytics/describe?attribute=.
func (h *Handler) Describe(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	req := DescribeRequest{Attribute: q.String("attribute")}
	if !bind(w, r, q, &req) {
		return
	}
	h.analyticsQuery(w, r, func(ctx context.Context, s *analytics.Store) (any, error) {
		return s.Describe(ctx, req.Attribute)
	})
}

func (h *Handler) bindPair(w http.ResponseWriter, r *http.Request) (PairRequest, bool) {
	q := newQueryParams(r)
	req := PairRequest{
		X:     q.String("x"),
		Y:     q.String("y"),
		Limit: q.Int("limit"),
	}
	return req, bind(w, r, q, &req)
}

// Correlation handles GET /api/v1/analytics/correlation?x=&y=.
func (h *Handler) Correlation(w http.ResponseWriter, r *http.Request) {
	req, ok := h.bindPair(w, r)
	if !ok {
		return
	}
	h.analyticsQuery(w, r, func(ctx context.Context, s *analytics.Store) (any, error) {
		return s.Correlation(ctx, req.X, req.Y)
	})
}

// Scatter handles GET /api/v1/analytics/scatter?x=&y=&limit=.
func (h *Handler) Scatter(w http.ResponseWriter, r *http.Request) {
	req, ok := h.bindPair(w, r)
	if !ok {
		return
	}
	h.analyticsQuery(w, r, func(ctx context.Context, s *analytics.Store) (any, error) {
		return s.Scatter(ctx, req.X, req.Y, req.Limit)
	})
}

// Attributes handles GET /api/v1/analytics/attributes.
func (h *Handler) Attributes(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]any{"attributes": analytics.Attributes})
}
