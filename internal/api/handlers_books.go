// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package api

import (
	"net/http"

	"github.com/tomtom215/nextpage/internal/catalog"
)

// BooksPage is one page of filtered books.
type BooksPage struct {
	Books  []catalog.Book `json:"books"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// Books handles GET /api/v1/books.
func (h *Handler) Books(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	req := BooksRequest{
		Title:     q.String("title"),
		MinRating: q.Float("min_rating"),
		MaxPages:  q.Int("max_pages"),
		Genre:     q.String("genre"),
		Limit:     q.Int("limit"),
		Offset:    q.Int("offset"),
	}
	if !bind(w, r, q, &req) {
		return
	}

	limit := req.Limit
	switch {
	case limit == 0:
		limit = h.cfg.DefaultPageSize
	case limit > h.cfg.MaxPageSize:
		limit = h.cfg.MaxPageSize
	}

	result := h.catalog.Filter(catalog.Filter{
		Title:     req.Title,
		MinRating: req.MinRating,
		MaxPages:  req.MaxPages,
		Genre:     req.Genre,
		Limit:     limit,
		Offset:    req.Offset,
	})

	respondSuccess(w, r, BooksPage{
		Books:  result.Books,
		Total:  result.Total,
		Limit:  limit,
		Offset: req.Offset,
	})
}

// Genres handles GET /api/v1/books/genres.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	genres := h.catalog.Genres()
	respondSuccess(w, r, map[string]any{
		"genres": genres,
		"count":  len(genres),
	})
}
