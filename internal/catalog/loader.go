// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/nextpage/internal/logging"
)

var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyFile is returned when the input has no header row.
	ErrEmptyFile = errors.New("catalog file is empty")
)

// Column names recognized in the header. Matching is case-insensitive.
const (
	ColTitle          = "title"
	ColAuthors        = "authors"
	ColGenres         = "genres"
	ColRating         = "rating_score"
	ColNumRatings     = "num_ratings"
	ColNumPages       = "num_pages"
	ColFormat         = "format"
	ColCurrentReaders = "current_readers"
	ColWantToRead     = "want_to_read"
	ColPrice          = "price"
)

var requiredColumns = []string{ColTitle, ColGenres, ColRating}

// ctxCheckInterval is how many rows are read between context checks.
const ctxCheckInterval = 1000

// LoadStats summarizes a CSV read.
type LoadStats struct {
	Rows        int           `json:"rows"`         // data rows read, including skipped ones
	Records     int           `json:"records"`      // rows turned into records
	Skipped     int           `json:"skipped"`      // malformed rows (wrong field count, bad quoting)
	NoRating    int           `json:"no_rating"`    // records without a usable rating
	EmptyGenres int           `json:"empty_genres"` // records whose genres field yielded no labels
	Duration    time.Duration `json:"duration_ns"`
}

// LoadFile opens path and reads it with ReadCSV.
func LoadFile(ctx context.Context, path string) ([]Record, LoadStats, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	records, stats, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, stats, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return records, stats, nil
}

// ReadCSV parses a header-driven CSV of book metadata.
//
// The header must contain title, genres and rating_score; other known columns
// are optional and unknown columns are ignored. Rows with the wrong number of
// fields or broken quoting are skipped and counted rather than failing the
// load. Unparseable numeric cells leave the corresponding presence flag false.
func ReadCSV(ctx context.Context, r io.Reader) ([]Record, LoadStats, error) {
	start := time.Now()
	logger := logging.WithComponent("catalog")

	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = 0

	var stats LoadStats

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, ErrEmptyFile
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	cols := indexHeader(header)
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var records []Record
	for {
		if stats.Rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++

		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.Skipped++
				logger.Debug().Int("line", parseErr.Line).Err(parseErr.Err).Msg("skipping malformed row")
				continue
			}
			return nil, stats, fmt.Errorf("read row %d: %w", stats.Rows, err)
		}

		line, _ := reader.FieldPos(0)
		rec := parseRow(row, cols, line)
		if !rec.HasRating {
			stats.NoRating++
		}
		if len(rec.Genres) == 0 {
			stats.EmptyGenres++
		}
		records = append(records, rec)
	}

	stats.Records = len(records)
	stats.Duration = time.Since(start)

	logger.Info().
		Int("rows", stats.Rows).
		Int("records", stats.Records).
		Int("skipped", stats.Skipped).
		Int("no_rating", stats.NoRating).
		Dur("duration", stats.Duration).
		Msg("catalog read")

	return records, stats, nil
}

// indexHeader maps lower-cased, trimmed column names to their position.
// The first occurrence of a repeated name wins.
func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func parseRow(row []string, cols map[string]int, line int) Record {
	field := func(name string) string {
		if i, ok := cols[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	rec := Record{
		Line:    line,
		Title:   field(ColTitle),
		Authors: field(ColAuthors),
		Genres:  ParseGenres(field(ColGenres)),
		Format:  field(ColFormat),
	}
	rec.Rating, rec.HasRating = parseFloat(field(ColRating))
	rec.NumRatings, rec.HasNumRatings = parseCount(field(ColNumRatings))
	rec.CurrentReaders, rec.HasCurrentReaders = parseCount(field(ColCurrentReaders))
	rec.WantToRead, rec.HasWantToRead = parseCount(field(ColWantToRead))
	rec.Price, rec.HasPrice = parseFloat(field(ColPrice))

	if pages, ok := parseCount(field(ColNumPages)); ok && pages <= math.MaxInt32 {
		rec.NumPages, rec.HasPages = int(pages), true
	}
	return rec
}

// parseFloat accepts finite numbers only. NaN and infinities are unusable.
func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseCount accepts non-negative whole numbers, including float text such as
// "336.0" and thousands separators such as "1,204".
func parseCount(s string) (int64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	v, ok := parseFloat(s)
	if !ok || v < 0 || v != math.Trunc(v) || v >= math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}
