// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

/*
Package api serves the catalog, recommendations and analytics over HTTP.

Every response uses the APIResponse envelope. Query parameters are parsed
into request structs and checked with the validation package before a
handler touches the catalog, so handlers only map domain errors to status
codes:

	recommend.ErrNotFound          404 NOT_FOUND (data.items is [])
	recommend.ErrInvalidK          400 INVALID_K
	analytics.ErrUnknownAttribute  400 UNKNOWN_ATTRIBUTE
	context deadline               504 TIMEOUT
	anything else                  500 INTERNAL_ERROR

Routes are registered by NewRouter.
*/
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/nextpage/internal/analytics"
	"github.com/tomtom215/nextpage/internal/catalog"
	"github.com/tomtom215/nextpage/internal/recommend"
)

// Defaults for HandlerConfig zero values.
const (
	defaultPageSize     = 20
	defaultMaxPageSize  = 100
	defaultQueryTimeout = 10 * time.Second
)

// HandlerConfig tunes request handling.
type HandlerConfig struct {
	DefaultPageSize int
	MaxPageSize     int

	// QueryTimeout bounds recommendation and analytics work per request.
	QueryTimeout time.Duration

	// Version is reported by the health endpoints.
	Version string
}

// Handler holds the read-only services behind the API. Store may be nil when
// analytics is disabled.
type Handler struct {
	catalog *catalog.Catalog
	engine  *recommend.Engine
	store   *analytics.Store
	cfg     HandlerConfig
	started time.Time
}

// NewHandler wires the handler. catalog and engine are required.
func NewHandler(cat *catalog.Catalog, engine *recommend.Engine, store *analytics.Store, cfg HandlerConfig) (*Handler, error) {
	if cat == nil {
		return nil, errors.New("api: catalog is required")
	}
	if engine == nil {
		return nil, errors.New("api: recommendation engine is required")
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = defaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = defaultMaxPageSize
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = cfg.MaxPageSize
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = defaultQueryTimeout
	}

	return &Handler{
		catalog: cat,
		engine:  engine,
		store:   store,
		cfg:     cfg,
		started: time.Now(),
	}, nil
}

func (h *Handler) queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.cfg.QueryTimeout)
}

// respondQueryError maps infrastructure failures shared by all handlers.
func respondQueryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, CodeTimeout, "Query timed out", err)
	case errors.Is(err, context.Canceled):
		// The client went away; nobody reads this.
		respondError(w, r, http.StatusServiceUnavailable, CodeTimeout, "Request cancelled", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Internal server error", err)
	}
}
