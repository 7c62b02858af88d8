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

// attributeColumns whitelists the numeric attributes. Column names are
// interpolated into SQL, so only these keys are ever accepted.
var attributeColumns = map[string]string{
	"rating_score":    "rating_score",
	"num_ratings":     "num_ratings",
	"current_readers": "current_readers",
	"want_to_read":    "want_to_read",
	"price":           "price",
	"num_pages":       "num_pages",
}

// Attributes lists the accepted attribute names in display order.
var Attributes = []string{
	"rating_score", "num_ratings", "current_readers", "want_to_read", "price", "num_pages",
}

func column(attribute string) (string, error) {
	col, ok := attributeColumns[attribute]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAttribute, attribute)
	}
	return col, nil
}

// Summary is the descriptive statistics of one attribute over the books that
// have a value for it. Std is the sample standard deviation and the
// quartiles are linearly interpolated. Everything but Count is nil when
// there are no values, and Std is nil with a single value.
type Summary struct {
	Attribute string   `json:"attribute"`
	Count     int64    `json:"count"`
	Mean      *float64 `json:"mean"`
	Std       *float64 `json:"std"`
	Min       *float64 `json:"min"`
	P25       *float64 `json:"p25"`
	P50       *float64 `json:"p50"`
	P75       *float64 `json:"p75"`
	Max       *float64 `json:"max"`
}

// Correlation is the Pearson coefficient of two attributes over books that
// have both. Coefficient is nil when it is undefined, such as with fewer than
// two pairs or a constant attribute.
type Correlation struct {
	X           string   `json:"x"`
	Y           string   `json:"y"`
	Pairs       int64    `json:"pairs"`
	Coefficient *float64 `json:"coefficient"`
}

// Point is one book in a scatter plot.
type Point struct {
	Title string  `json:"title"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// Describe summarizes attribute.
func (s *Store) Describe(ctx context.Context, attribute string) (result *Summary, err error) {
	col, err := column(attribute)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { s.observe("describe", start, err) }()

	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
	SELECT
		COUNT(v),
		AVG(v),
		STDDEV_SAMP(v),
		MIN(v),
		QUANTILE_CONT(v, 0.25),
		QUANTILE_CONT(v, 0.50),
		QUANTILE_CONT(v, 0.75),
		MAX(v)
	FROM (SELECT CAST(%s AS DOUBLE) AS v FROM books)`, col)

	var count int64
	var mean, std, minV, p25, p50, p75, maxV sql.NullFloat64
	err = s.conn.QueryRowContext(ctx, query).Scan(&count, &mean, &std, &minV, &p25, &p50, &p75, &maxV)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", attribute, err)
	}

	return &Summary{
		Attribute: attribute,
		Count:     count,
		Mean:      floatPtr(mean),
		Std:       floatPtr(std),
		Min:       floatPtr(minV),
		P25:       floatPtr(p25),
		P50:       floatPtr(p50),
		P75:       floatPtr(p75),
		Max:       floatPtr(maxV),
	}, nil
}

// Correlation returns the Pearson correlation of x and y.
func (s *Store) Correlation(ctx context.Context, x, y string) (result *Correlation, err error) {
	colX, err := column(x)
	if err != nil {
		return nil, err
	}
	colY, err := column(y)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { s.observe("correlation", start, err) }()

	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
	SELECT COUNT(*), CORR(CAST(%[1]s AS DOUBLE), CAST(%[2]s AS DOUBLE))
	FROM books
	WHERE %[1]s IS NOT NULL AND %[2]s IS NOT NULL`, colX, colY)

	var (
		pairs int64
		coef  sql.NullFloat64
	)
	if err = s.conn.QueryRowContext(ctx, query).Scan(&pairs, &coef); err != nil {
		return nil, fmt.Errorf("failed to correlate %s and %s: %w", x, y, err)
	}

	c := &Correlation{X: x, Y: y, Pairs: pairs, Coefficient: floatPtr(coef)}
	// DuckDB reports NaN rather than NULL for a zero-variance input.
	if c.Coefficient != nil && math.IsNaN(*c.Coefficient) {
		c.Coefficient = nil
	}
	return c, nil
}

// Scatter returns up to limit books that have both x and y, in catalog order.
func (s *Store) Scatter(ctx context.Context, x, y string, limit int) (result []Point, err error) {
	colX, err := column(x)
	if err != nil {
		return nil, err
	}
	colY, err := column(y)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultScatterLimit
	}
	start := time.Now()
	defer func() { s.observe("scatter", start, err) }()

	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
	SELECT title, CAST(%[1]s AS DOUBLE), CAST(%[2]s AS DOUBLE)
	FROM books
	WHERE %[1]s IS NOT NULL AND %[2]s IS NOT NULL
	ORDER BY id
	LIMIT ?`, colX, colY)

	result, err = queryAndScan(ctx, s.conn, query, []any{limit}, func(rows *sql.Rows) (Point, error) {
		var p Point
		err := rows.Scan(&p.Title, &p.X, &p.Y)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query scatter %s/%s: %w", x, y, err)
	}
	return result, nil
}
