// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package catalog

import (
	"sort"
	"strings"
)

// Filter selects books. Zero values disable a criterion.
type Filter struct {
	// Title matches books whose title contains it, ignoring case.
	Title string

	// MinRating keeps books rated at least this much. Unrated books are
	// dropped when it is set.
	MinRating float64

	// MaxPages keeps books with at most this many pages. Books without a page
	// count are dropped when it is set.
	MaxPages int

	// Genre matches books with any genre containing it, ignoring case.
	Genre string

	Limit  int
	Offset int
}

// FilterResult is one page of matching books.
type FilterResult struct {
	Books []Book `json:"books"`
	Total int    `json:"total"` // matches before Limit and Offset
}

// Filter returns matching books ordered by rating, highest first. Books with
// equal ratings keep catalog order and unrated books come last.
func (c *Catalog) Filter(f Filter) FilterResult {
	title := strings.ToLower(strings.TrimSpace(f.Title))
	genre := strings.ToLower(strings.TrimSpace(f.Genre))

	matches := make([]Book, 0)
	for _, b := range c.books {
		if title != "" && !strings.Contains(strings.ToLower(b.Title), title) {
			continue
		}
		if f.MinRating > 0 && (b.Rating == nil || *b.Rating < f.MinRating) {
			continue
		}
		if f.MaxPages > 0 && (b.NumPages == nil || *b.NumPages > f.MaxPages) {
			continue
		}
		if genre != "" && !hasGenreLike(b.Genres, genre) {
			continue
		}
		matches = append(matches, b)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		ri, rj := matches[i].Rating, matches[j].Rating
		switch {
		case ri == nil:
			return false
		case rj == nil:
			return true
		default:
			return *ri > *rj
		}
	})

	total := len(matches)
	if f.Offset > 0 {
		if f.Offset >= len(matches) {
			matches = matches[:0]
		} else {
			matches = matches[f.Offset:]
		}
	}
	if f.Limit > 0 && len(matches) > f.Limit {
		matches = matches[:f.Limit]
	}

	return FilterResult{Books: matches, Total: total}
}

func hasGenreLike(genres []string, needle string) bool {
	for _, g := range genres {
		if strings.Contains(strings.ToLower(g), needle) {
			return true
		}
	}
	return false
}
