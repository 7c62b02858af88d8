// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"
)

// Defaults for zero or negative query arguments.
const (
	DefaultTopVoters     = 20
	DefaultTopRated      = 10
	DefaultHistogramBins = 30
	DefaultMinPercent    = 3.0
	DefaultTopAuthors    = 20
	DefaultScatterLimit  = 1000
)

// OthersLabel names the bucket that small formats are merged into.
const OthersLabel = "Others"

// RankedBook is one row of a top-N listing.
type RankedBook struct {
	Title       string   `json:"title"`
	Authors     string   `json:"authors,omitempty"`
	RatingScore *float64 `json:"rating_score"`
	NumRatings  *int64   `json:"num_ratings"`
}

// HistogramBin counts values in [Lower, Upper). The last bin includes Upper.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int64   `json:"count"`
}

// FormatShare is one slice of the format distribution.
type FormatShare struct {
	Format  string  `json:"format"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

// AuthorAverage is an author's mean rating over their rated books.
type AuthorAverage struct {
	Authors       string  `json:"authors"`
	AverageRating float64 `json:"average_rating"`
	Books         int64   `json:"books"`
}

func scanRanked(rows *sql.Rows) (RankedBook, error) {
	var (
		b       RankedBook
		authors sql.NullString
		rating  sql.NullFloat64
		votes   sql.NullInt64
	)
	if err := rows.Scan(&b.Title, &authors, &rating, &votes); err != nil {
		return b, err
	}
	b.Authors = authors.String
	if rating.Valid {
		b.RatingScore = &rating.Float64
	}
	if votes.Valid {
		b.NumRatings = &votes.Int64
	}
	return b, nil
}

// TopByVoters returns the n books with the most ratings, ties broken by
// rating and then catalog order.
func (s *Store) TopByVoters(ctx context.Context, n int) (result []RankedBook, err error) {
	if n <= 0 {
		n = DefaultTopVoters
	}
	start := time.Now()
	defer func() { s.observe("top_voted", start, err) }()

	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	const query = `
	SELECT title, authors, rating_score, num_ratings
	FROM books
	WHERE num_ratings IS NOT NULL
	ORDER BY num_ratings DESC, rating_score DESC NULLS LAST, id
	LIMIT ?`

	result, err = queryAndScan(ctx, s.conn, query, []any{n}, scanRanked)
	if err != nil {
		return nil, fmt.Errorf("failed to query top voted books: %w", err)
	}
	return result, nil
}

// TopRated returns the n highest rated books, ties broken by title.
func (s *Store) TopRated(ctx context.Context, n int) (result []RankedBook, err error) {
	if n <= 0 {
		n = DefaultTopRated
	}
	start := time.Now()
	defer func() { s.observe("top_rated", start, err) }()

	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	const query = `
	SELECT title, authors, rating_score, num_ratings
	FROM books
	WHERE rating_score IS NOT NULL
	ORDER BY rating_score DESC, title
	LIMIT ?`

	result, err = queryAndScan(ctx, s.conn, query, []any{n}, scanRanked)
	if err != nil {
		return nil, fmt.Errorf("failed to query top rated books: %w", err)
	}
	return result, nil
}

// PageLengthHistogram splits the page count range into bins of equal width.
// Books without a page count are ignored. When every book has the same
// length a single bin is returned; with no page counts the result is empty.
func (s *Store) PageLengthHistogram(ctx context.Context, bins int) (result []HistogramBin, err error) {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	start := time.Now()
	defer func() { s.observe("page_lengths", start, err) }()

	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	var (
		count  int64
		lo, hi sql.NullFloat64
	)
	err = s.conn.QueryRowContext(ctx, `
	SELECT COUNT(num_pages), CAST(MIN(num_pages) AS DOUBLE), CAST(MAX(num_pages) AS DOUBLE)
	FROM books`).Scan(&count, &lo, &hi)
	if err != nil {
		return nil, fmt.Errorf("failed to query page range: %w", err)
	}

	result = make([]HistogramBin, 0, bins)
	if count == 0 {
		return result, nil
	}
	if lo.Float64 == hi.Float64 {
		return append(result, HistogramBin{Lower: lo.Float64, Upper: hi.Float64, Count: count}), nil
	}

	width := (hi.Float64 - lo.Float64) / float64(bins)
	for i := 0; i < bins; i++ {
		result = append(result, HistogramBin{
			Lower: lo.Float64 + float64(i)*width,
			Upper: lo.Float64 + float64(i+1)*width,
		})
	}
	result[bins-1].Upper = hi.Float64

	const query = `
	SELECT LEAST(CAST(FLOOR((num_pages - ?) / ?) AS BIGINT), ?) AS bin, COUNT(*)
	FROM books
	WHERE num_pages IS NOT NULL
	GROUP BY bin
	ORDER BY bin`

	type binCount struct {
		bin   int64
		count int64
	}
	counts, err := queryAndScan(ctx, s.conn, query, []any{lo.Float64, width, bins - 1},
		func(rows *sql.Rows) (binCount, error) {
			var bc binCount
			err := rows.Scan(&bc.bin, &bc.count)
			return bc, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query page histogram: %w", err)
	}
	for _, bc := range counts {
		if bc.bin >= 0 && bc.bin < int64(bins) {
			result[bc.bin].Count += bc.count
		}
	}
	return result, nil
}

// FormatDistribution counts books per format. Formats below minPercent of
// the total are merged into a trailing OthersLabel entry. Books without a
// format are not counted.
func (s *Store) FormatDistribution(ctx context.Context, minPercent float64) (result []FormatShare, err error) {
	if minPercent <= 0 || math.IsNaN(minPercent) {
		minPercent = DefaultMinPercent
	}
	start := time.Now()
	defer func() { s.observe("formats", start, err) }()

	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	const query = `
	SELECT format, COUNT(*) AS n
	FROM books
	WHERE format IS NOT NULL
	GROUP BY format
	ORDER BY n DESC, format`

	all, err := queryAndScan(ctx, s.conn, query, nil, func(rows *sql.Rows) (FormatShare, error) {
		var f FormatShare
		err := rows.Scan(&f.Format, &f.Count)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query format distribution: %w", err)
	}

	return mergeSmallShares(all, minPercent), nil
}

// mergeSmallShares fills in percentages and folds shares under minPercent
// into OthersLabel. Input must be ordered by count descending.
func mergeSmallShares(shares []FormatShare, minPercent float64) []FormatShare {
	var total int64
	for _, f := range shares {
		total += f.Count
	}

	result := make([]FormatShare, 0, len(shares))
	if total == 0 {
		return result
	}

	var others int64
	for _, f := range shares {
		f.Percent = float64(f.Count) / float64(total) * 100
		if f.Percent < minPercent {
			others += f.Count
			continue
		}
		result = append(result, f)
	}
	if others > 0 {
		result = append(result, FormatShare{
			Format:  OthersLabel,
			Count:   others,
			Percent: float64(others) / float64(total) * 100,
		})
	}
	return result
}

// TopAuthorsByAverage returns the n authors with the highest mean rating.
func (s *Store) TopAuthorsByAverage(ctx context.Context, n int) (result []AuthorAverage, err error) {
	if n <= 0 {
		n = DefaultTopAuthors
	}
	start := time.Now()
	defer func() { s.observe("top_authors", start, err) }()

	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	const query = `
	SELECT authors, AVG(rating_score) AS avg_rating, COUNT(*) AS n
	FROM books
	WHERE authors IS NOT NULL AND rating_score IS NOT NULL
	GROUP BY authors
	ORDER BY avg_rating DESC, authors
	LIMIT ?`

	result, err = queryAndScan(ctx, s.conn, query, []any{n}, func(rows *sql.Rows) (AuthorAverage, error) {
		var a AuthorAverage
		err := rows.Scan(&a.Authors, &a.AverageRating, &a.Books)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query top authors: %w", err)
	}
	return result, nil
}
