// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// ctxCheckInterval is how many rows are scored between context checks.
const ctxCheckInterval = 4096

// Recommendation is one similar title with its cosine similarity to the query.
type Recommendation struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// ResolveK applies the session limits to a requested result count: 0 means
// the default, negative values are rejected and anything above the maximum
// is capped.
func (s *Session) ResolveK(k int) (int, error) {
	switch {
	case k < 0:
		return 0, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	case k == 0:
		return s.defaultK, nil
	case k > s.maxK:
		return s.maxK, nil
	default:
		return k, nil
	}
}

// Recommend returns up to k titles most similar to title, best first.
//
// The query row itself is never returned. Equal scores keep row order, so
// the same input always produces the same list. ErrNotFound is returned when
// no title matches ignoring case.
func (s *Session) Recommend(ctx context.Context, title string, k int) ([]Recommendation, error) {
	k, err := s.ResolveK(k)
	if err != nil {
		return nil, err
	}

	queryIdx, ok := s.lookupIndex(title)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	query := &s.matrix.rows[queryIdx]

	rows := s.matrix.rows
	results := make([]Recommendation, 0, len(rows)-1)
	for i := range rows {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if i == queryIdx {
			continue
		}
		results = append(results, Recommendation{
			Title: rows[i].item.Title,
			Score: cosine(query, &rows[i]),
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// cosine returns the cosine similarity of two rows, or 0 when either has a
// zero norm. All features are non-negative so the result lies in [0, 1].
func cosine(a, b *row) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}
	dot := float64(intersectCount(a.genreCols, b.genreCols)) + a.item.RatingScore*b.item.RatingScore
	return math.Min(1, dot/(a.norm*b.norm))
}

// intersectCount counts common elements of two ascending slices.
func intersectCount(a, b []int) int {
	n, i, j := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			n++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return n
}
