// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package api

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/nextpage/internal/validation"
)

// BooksRequest filters the catalog.
type BooksRequest struct {
	Title     string  `query:"title" validate:"max=500"`
	MinRating float64 `query:"min_rating" validate:"gte=0"`
	MaxPages  int     `query:"max_pages" validate:"min=0"`
	Genre     string  `query:"genre" validate:"max=200"`
	Limit     int     `query:"limit" validate:"min=0,max=1000"`
	Offset    int     `query:"offset" validate:"min=0"`
}

// SimilarRequest asks for titles like Title. K is range checked by the
// engine so a negative value reports INVALID_K.
type SimilarRequest struct {
	Title string `query:"title" validate:"notblank,max=500"`
	K     int    `query:"k"`
}

// TopNRequest sizes a ranked listing. 0 selects the default.
type TopNRequest struct {
	Limit int `query:"limit" validate:"min=0,max=1000"`
}

// HistogramRequest sets the bin count. 0 selects the default.
type HistogramRequest struct {
	Bins int `query:"bins" validate:"min=0,max=500"`
}

// FormatsRequest sets the merge threshold in percent. 0 selects the default.
type FormatsRequest struct {
	MinPercent float64 `query:"min_percent" validate:"gte=0,lte=100"`
}

// DescribeRequest names one numeric attribute. The oneof list matches
// analytics.Attributes.
type DescribeRequest struct {
	Attribute string `query:"attribute" validate:"required,oneof=rating_score num_ratings current_readers want_to_read price num_pages"`
}

// PairRequest names two numeric attributes.
type PairRequest struct {
	X     string `query:"x" validate:"required,oneof=rating_score num_ratings current_readers want_to_read price num_pages"`
	Y     string `query:"y" validate:"required,oneof=rating_score num_ratings current_readers want_to_read price num_pages"`
	Limit int    `query:"limit" validate:"min=0,max=10000"`
}

// queryParams reads typed query parameters, keeping the first parse failure.
type queryParams struct {
	values url.Values
	err    *APIError
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{values: r.URL.Query()}
}

func (q *queryParams) String(key string) string {
	return strings.TrimSpace(q.values.Get(key))
}

// Int returns 0 for an absent parameter.
func (q *queryParams) Int(key string) int {
	raw := q.String(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(key, "an integer")
		return 0
	}
	return v
}

// Float returns 0 for an absent parameter. NaN and infinities are rejected.
func (q *queryParams) Float(key string) float64 {
	raw := q.String(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		q.fail(key, "a number")
		return 0
	}
	return v
}

func (q *queryParams) fail(key, want string) {
	if q.err != nil {
		return
	}
	q.err = &APIError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("%s must be %s", key, want),
		Details: map[string]any{"field": key, "tag": "type"},
	}
}

// Err returns the first parse failure.
func (q *queryParams) Err() *APIError {
	return q.err
}

// validateRequest runs the struct rules and converts a failure to an APIError.
func validateRequest(v any) *APIError {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return nil
	}
	apiErr := verr.ToAPIError()
	return &APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// bind finishes parsing: a parse error wins over struct rules. It writes the
// 400 response and returns false when the request is unusable.
func bind(w http.ResponseWriter, r *http.Request, q *queryParams, req any) bool {
	if apiErr := q.Err(); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return false
	}
	if apiErr := validateRequest(req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return false
	}
	return true
}
