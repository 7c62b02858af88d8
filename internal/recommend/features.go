// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/nextpage/internal/catalog"
)

// MissingRatingPolicy decides what happens to a title with no usable rating.
type MissingRatingPolicy string

const (
	// MissingRatingZero keeps the title with a rating feature of 0.
	MissingRatingZero MissingRatingPolicy = "zero"

	// MissingRatingExclude leaves the title out of the matrix entirely.
	MissingRatingExclude MissingRatingPolicy = "exclude"
)

// Defaults applied by Build for zero-valued options.
const (
	DefaultRatingScale = 5.0
	DefaultK           = 10
	DefaultMaxK        = 100
)

// RatingColumn is the name of the trailing column in Columns.
const RatingColumn = "rating_score"

// BuildOptions configures Build. The zero value uses the defaults above.
type BuildOptions struct {
	RatingScale   float64
	MissingRating MissingRatingPolicy
	DefaultK      int
	MaxK          int
}

func (o BuildOptions) withDefaults() (BuildOptions, error) {
	if o.RatingScale == 0 {
		o.RatingScale = DefaultRatingScale
	}
	if o.MissingRating == "" {
		o.MissingRating = MissingRatingZero
	}
	if o.DefaultK == 0 {
		o.DefaultK = DefaultK
	}
	if o.MaxK == 0 {
		o.MaxK = DefaultMaxK
	}

	switch {
	case o.RatingScale < 0 || math.IsNaN(o.RatingScale) || math.IsInf(o.RatingScale, 0):
		return o, fmt.Errorf("%w: rating scale %v", ErrInvalidOptions, o.RatingScale)
	case o.MissingRating != MissingRatingZero && o.MissingRating != MissingRatingExclude:
		return o, fmt.Errorf("%w: missing rating policy %q", ErrInvalidOptions, o.MissingRating)
	case o.MaxK < 1:
		return o, fmt.Errorf("%w: max k %d", ErrInvalidOptions, o.MaxK)
	case o.DefaultK < 1 || o.DefaultK > o.MaxK:
		return o, fmt.Errorf("%w: default k %d outside 1..%d", ErrInvalidOptions, o.DefaultK, o.MaxK)
	}
	return o, nil
}

// Item is one title in the feature matrix.
type Item struct {
	Title string `json:"title"`

	// Genres is the deduplicated label set in vocabulary order.
	Genres []string `json:"genres"`

	// RatingScore is the mean usable rating divided by the rating scale,
	// clamped to [0, 1]. It is 0 when HasRating is false.
	RatingScore float64 `json:"rating_score"`
	HasRating   bool    `json:"has_rating"`
}

// row stores binary genre columns sparsely as sorted column indices.
type row struct {
	item      Item
	genreCols []int
	norm      float64
}

// FeatureMatrix holds one vector per title. Column order and row order are
// fixed at construction.
type FeatureMatrix struct {
	vocabulary []string
	rows       []row
}

// Len returns the number of rows.
func (m *FeatureMatrix) Len() int {
	return len(m.rows)
}

// Vocabulary returns the genre labels in column order.
func (m *FeatureMatrix) Vocabulary() []string {
	return m.vocabulary
}

// Columns returns every column name: the vocabulary followed by RatingColumn.
func (m *FeatureMatrix) Columns() []string {
	cols := make([]string, 0, len(m.vocabulary)+1)
	cols = append(cols, m.vocabulary...)
	return append(cols, RatingColumn)
}

// Item returns the title and features stored in row i.
func (m *FeatureMatrix) Item(i int) Item {
	return m.rows[i].item
}

// Vector materializes row i as a dense vector over Columns.
func (m *FeatureMatrix) Vector(i int) []float64 {
	r := &m.rows[i]
	v := make([]float64, len(m.vocabulary)+1)
	for _, c := range r.genreCols {
		v[c] = 1
	}
	v[len(m.vocabulary)] = r.item.RatingScore
	return v
}

// BuildStats describes what Build did with its input.
type BuildStats struct {
	Records     int           `json:"records"`
	EmptyTitles int           `json:"empty_titles"`
	Items       int           `json:"items"`
	Unrated     int           `json:"unrated"`
	Excluded    int           `json:"excluded"`
	Vocabulary  int           `json:"vocabulary"`
	Duration    time.Duration `json:"duration_ns"`
}

// Session is a built feature matrix ready to answer queries. It is immutable
// and safe for concurrent use.
type Session struct {
	matrix   *FeatureMatrix
	index    map[string]int // catalog.TitleKey -> row
	defaultK int
	maxK     int
	stats    BuildStats
	builtAt  time.Time
}

type aggregate struct {
	genres map[string]struct{}
	sum    float64
	count  int
}

// Build groups records by exact title and constructs the feature matrix.
//
// Genre sets are unioned across a title's records. The rating feature is
// the mean of the title's usable ratings (records with HasRating) divided by
// the rating scale; titles with none follow opts.MissingRating. Records with
// a blank title are skipped. Rows are ordered by title in byte order and the
// vocabulary is sorted the same way.
func Build(records []catalog.Record, opts BuildOptions) (*Session, error) {
	start := time.Now()

	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	stats := BuildStats{Records: len(records)}
	byTitle := make(map[string]*aggregate)

	for i := range records {
		rec := &records[i]
		if strings.TrimSpace(rec.Title) == "" {
			stats.EmptyTitles++
			continue
		}

		agg, ok := byTitle[rec.Title]
		if !ok {
			agg = &aggregate{genres: make(map[string]struct{})}
			byTitle[rec.Title] = agg
		}
		for _, g := range rec.Genres {
			agg.genres[g] = struct{}{}
		}
		if rec.HasRating && !math.IsNaN(rec.Rating) && !math.IsInf(rec.Rating, 0) {
			agg.sum += rec.Rating
			agg.count++
		}
	}

	titles := make([]string, 0, len(byTitle))
	for title, agg := range byTitle {
		if agg.count == 0 && opts.MissingRating == MissingRatingExclude {
			stats.Excluded++
			continue
		}
		titles = append(titles, title)
	}
	sort.Strings(titles)

	// Only labels of surviving titles become columns.
	vocab := make(map[string]struct{})
	for _, title := range titles {
		for g := range byTitle[title].genres {
			vocab[g] = struct{}{}
		}
	}
	vocabulary := make([]string, 0, len(vocab))
	for g := range vocab {
		vocabulary = append(vocabulary, g)
	}
	sort.Strings(vocabulary)

	column := make(map[string]int, len(vocabulary))
	for i, g := range vocabulary {
		column[g] = i
	}

	matrix := &FeatureMatrix{
		vocabulary: vocabulary,
		rows:       make([]row, 0, len(titles)),
	}
	index := make(map[string]int, len(titles))

	for _, title := range titles {
		agg := byTitle[title]

		cols := make([]int, 0, len(agg.genres))
		for g := range agg.genres {
			cols = append(cols, column[g])
		}
		sort.Ints(cols)

		genres := make([]string, len(cols))
		for i, c := range cols {
			genres[i] = vocabulary[c]
		}

		item := Item{Title: title, Genres: genres}
		if agg.count > 0 {
			item.RatingScore = clamp01(agg.sum / float64(agg.count) / opts.RatingScale)
			item.HasRating = true
		} else {
			stats.Unrated++
		}

		r := row{
			item:      item,
			genreCols: cols,
			norm:      math.Sqrt(float64(len(cols)) + item.RatingScore*item.RatingScore),
		}

		key := catalog.TitleKey(title)
		if _, taken := index[key]; !taken {
			index[key] = len(matrix.rows)
		}
		matrix.rows = append(matrix.rows, r)
	}

	if len(matrix.rows) == 0 {
		return nil, ErrEmptyCatalog
	}

	stats.Items = len(matrix.rows)
	stats.Vocabulary = len(vocabulary)
	stats.Duration = time.Since(start)

	return &Session{
		matrix:   matrix,
		index:    index,
		defaultK: opts.DefaultK,
		maxK:     opts.MaxK,
		stats:    stats,
		builtAt:  time.Now(),
	}, nil
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Matrix returns the feature matrix backing the session.
func (s *Session) Matrix() *FeatureMatrix {
	return s.matrix
}

// Stats returns construction statistics.
func (s *Session) Stats() BuildStats {
	return s.stats
}

// BuiltAt returns when construction finished.
func (s *Session) BuiltAt() time.Time {
	return s.builtAt
}

// Limits returns the default and maximum result counts.
func (s *Session) Limits() (defaultK, maxK int) {
	return s.defaultK, s.maxK
}

// Lookup finds a title ignoring case. When titles differ only by case the
// first in row order wins.
func (s *Session) Lookup(title string) (Item, bool) {
	idx, ok := s.lookupIndex(title)
	if !ok {
		return Item{}, false
	}
	return s.matrix.rows[idx].item, true
}

func (s *Session) lookupIndex(title string) (int, bool) {
	idx, ok := s.index[catalog.TitleKey(title)]
	return idx, ok
}
