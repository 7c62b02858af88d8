// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

// Package analytics answers aggregate questions about the catalog with an
// in-memory DuckDB database.
//
// New copies the deduplicated books into a single `books` table once at
// startup; every query afterwards is read-only, so a Store is safe for
// concurrent use.
package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/nextpage/internal/catalog"
	"github.com/tomtom215/nextpage/internal/logging"
	"github.com/tomtom215/nextpage/internal/metrics"
)

// ErrUnknownAttribute is returned for an attribute outside the numeric whitelist.
var ErrUnknownAttribute = errors.New("unknown attribute")

// defaultQueryTimeout applies when the caller's context has no deadline.
const defaultQueryTimeout = 30 * time.Second

// Config tunes the embedded database.
type Config struct {
	// MaxMemory is a DuckDB memory limit such as "512MB". Empty leaves the
	// DuckDB default.
	MaxMemory string

	// Threads is the DuckDB worker count. 0 uses runtime.NumCPU.
	Threads int

	// QueryTimeout bounds queries whose context has no deadline.
	QueryTimeout time.Duration
}

// Store is the DuckDB-backed analytics view of the catalog.
type Store struct {
	conn    *sql.DB
	timeout time.Duration
	rows    int
	logger  zerolog.Logger
}

const createBooksTable = `
CREATE TABLE books (
	id              INTEGER PRIMARY KEY,
	title           VARCHAR NOT NULL,
	authors         VARCHAR,
	format          VARCHAR,
	rating_score    DOUBLE,
	num_ratings     BIGINT,
	current_readers BIGINT,
	want_to_read    BIGINT,
	price           DOUBLE,
	num_pages       INTEGER
)`

const insertBook = `
INSERT INTO books (id, title, authors, format, rating_score, num_ratings,
	current_readers, want_to_read, price, num_pages)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// New opens an in-memory database and loads books into it.
func New(ctx context.Context, books []catalog.Book, cfg Config) (*Store, error) {
	start := time.Now()

	conn, err := sql.Open("duckdb", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics database: %w", err)
	}

	s := &Store{
		conn:    conn,
		timeout: cfg.QueryTimeout,
		logger:  logging.WithComponent("analytics"),
	}
	if s.timeout <= 0 {
		s.timeout = defaultQueryTimeout
	}

	if err := s.load(ctx, books); err != nil {
		closeQuietly(conn)
		return nil, err
	}

	s.logger.Info().
		Int("books", s.rows).
		Dur("duration", time.Since(start)).
		Msg("analytics store loaded")

	return s, nil
}

func dsn(cfg Config) string {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	params := url.Values{}
	params.Set("threads", strconv.Itoa(threads))
	if cfg.MaxMemory != "" {
		params.Set("max_memory", cfg.MaxMemory)
	}
	// No extensions are needed and autoloading can hang without network access.
	params.Set("autoinstall_known_extensions", "false")
	params.Set("autoload_known_extensions", "false")

	return ":memory:?" + params.Encode()
}

func (s *Store) load(ctx context.Context, books []catalog.Book) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	if _, err := s.conn.ExecContext(ctx, createBooksTable); err != nil {
		return fmt.Errorf("failed to create books table: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin load transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertBook)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range books {
		b := &books[i]
		if _, err := stmt.ExecContext(ctx,
			i,
			b.Title,
			nullString(b.Authors),
			nullString(b.Format),
			nullable(b.Rating),
			nullable(b.NumRatings),
			nullable(b.CurrentReaders),
			nullable(b.WantToRead),
			nullable(b.Price),
			nullable(b.NumPages),
		); err != nil {
			return fmt.Errorf("failed to insert book %q: %w", b.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit books: %w", err)
	}
	s.rows = len(books)
	return nil
}

// nullable turns a nil pointer into SQL NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// nullString stores blank text as NULL.
func nullString(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

// Len returns the number of loaded books.
func (s *Store) Len() int {
	return s.rows
}

// Ping checks that the database still answers.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()
	return s.conn.PingContext(ctx)
}

// Close releases the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// ensureContext adds the store timeout when ctx has no deadline.
func (s *Store) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

type scanFunc[T any] func(*sql.Rows) (T, error)

// queryAndScan runs query and scans every row with scan. The result is never
// nil so it encodes as an empty JSON array.
func queryAndScan[T any](ctx context.Context, db *sql.DB, query string, args []any, scan scanFunc[T]) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// observe records duration and outcome of a named query.
func (s *Store) observe(name string, start time.Time, err error) {
	d := time.Since(start)
	metrics.RecordAnalyticsQuery(name, d, err)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", name).Dur("duration", d).Msg("analytics query failed")
	}
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
