// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tomtom215/nextpage/internal/analytics"
	"github.com/tomtom215/nextpage/internal/api"
	"github.com/tomtom215/nextpage/internal/catalog"
	"github.com/tomtom215/nextpage/internal/config"
	"github.com/tomtom215/nextpage/internal/logging"
	"github.com/tomtom215/nextpage/internal/metrics"
	"github.com/tomtom215/nextpage/internal/recommend"
)

// app is everything built from the catalog before the server starts.
type app struct {
	catalog *catalog.Catalog
	engine  *recommend.Engine
	store   *analytics.Store // nil when analytics is disabled
	router  http.Handler
}

// newApp loads the catalog and builds the recommender, the analytics store
// and the router.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	records, stats, err := catalog.LoadFile(ctx, cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	cat := catalog.New(records)
	metrics.RecordCatalogLoad(stats.Records, stats.Skipped, cat.Len(), stats.Duration)

	logging.Info().
		Int("rows", stats.Rows).
		Int("records", stats.Records).
		Int("skipped", stats.Skipped).
		Int("no_rating", stats.NoRating).
		Int("books", cat.Len()).
		Int("genres", len(cat.Genres())).
		Dur("duration", stats.Duration).
		Msg("Catalog loaded")

	session, err := recommend.Build(records, recommend.BuildOptions{
		RatingScale:   cfg.Catalog.RatingScale,
		MissingRating: recommend.MissingRatingPolicy(cfg.Catalog.MissingRating),
		DefaultK:      cfg.Recommend.DefaultK,
		MaxK:          cfg.Recommend.MaxK,
	})
	if err != nil {
		return nil, fmt.Errorf("build feature matrix: %w", err)
	}

	engine, err := recommend.NewEngine(session, recommend.EngineConfig{
		CacheSize: cfg.Recommend.CacheSize,
		CacheTTL:  cfg.Recommend.CacheTTL,
	}, logging.WithComponent("recommend"))
	if err != nil {
		return nil, err
	}

	a := &app{catalog: cat, engine: engine}

	if cfg.Analytics.Enabled {
		a.store, err = analytics.New(ctx, cat.Books(), analytics.Config{
			MaxMemory:    cfg.Analytics.MaxMemory,
			Threads:      cfg.Analytics.Threads,
			QueryTimeout: cfg.Recommend.QueryTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("open analytics store: %w", err)
		}
		logging.Info().Int("books", a.store.Len()).Msg("Analytics store ready")
	} else {
		logging.Info().Msg("Analytics disabled")
	}

	handler, err := api.NewHandler(cat, engine, a.store, api.HandlerConfig{
		DefaultPageSize: cfg.API.DefaultPageSize,
		MaxPageSize:     cfg.API.MaxPageSize,
		QueryTimeout:    cfg.Recommend.QueryTimeout,
		Version:         version,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.router = api.NewRouter(handler, api.NewChiMiddleware(api.NewChiMiddlewareConfig(cfg.Security)))

	return a, nil
}

// reload applies the settings that can change without a restart. Only the
// log level is live; the response cache is dropped so operators can flush it
// with the same signal.
func (a *app) reload(cfg *config.Config) {
	prev := logging.GetLevel()
	logging.SetLevelString(cfg.Logging.Level)
	dropped := a.engine.ResetCache()

	logging.Info().
		Str("previous_level", prev.String()).
		Str("level", logging.GetLevel().String()).
		Int("cache_dropped", dropped).
		Msg("Configuration reloaded")
}

// Close releases the analytics store.
func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		logging.Err(err).Msg("Error closing analytics store")
	}
}
