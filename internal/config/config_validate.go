// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks that required configuration is present and within range.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCatalog() error {
	if strings.TrimSpace(c.Catalog.Path) == "" {
		return fmt.Errorf("%w: CATALOG_PATH is required", ErrInvalidConfig)
	}
	if c.Catalog.RatingScale <= 0 {
		return fmt.Errorf("%w: CATALOG_RATING_SCALE must be positive, got %v", ErrInvalidConfig, c.Catalog.RatingScale)
	}
	switch c.Catalog.MissingRating {
	case MissingRatingZero, MissingRatingExclude:
	default:
		return fmt.Errorf("%w: CATALOG_MISSING_RATING must be %q or %q, got %q",
			ErrInvalidConfig, MissingRatingZero, MissingRatingExclude, c.Catalog.MissingRating)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxK < 1 {
		return fmt.Errorf("%w: RECOMMEND_MAX_K must be at least 1, got %d", ErrInvalidConfig, r.MaxK)
	}
	if r.DefaultK < 1 || r.DefaultK > r.MaxK {
		return fmt.Errorf("%w: RECOMMEND_DEFAULT_K must be between 1 and %d, got %d", ErrInvalidConfig, r.MaxK, r.DefaultK)
	}
	if r.CacheSize < 0 {
		return fmt.Errorf("%w: RECOMMEND_CACHE_SIZE must not be negative, got %d", ErrInvalidConfig, r.CacheSize)
	}
	if r.CacheSize > 0 && r.CacheTTL <= 0 {
		return fmt.Errorf("%w: RECOMMEND_CACHE_TTL must be positive when the cache is enabled", ErrInvalidConfig)
	}
	if r.QueryTimeout <= 0 {
		return fmt.Errorf("%w: RECOMMEND_QUERY_TIMEOUT must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: HTTP_PORT must be between 1 and 65535, got %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: HTTP_SHUTDOWN_TIMEOUT must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.MaxPageSize < 1 {
		return fmt.Errorf("%w: API_MAX_PAGE_SIZE must be at least 1, got %d", ErrInvalidConfig, c.API.MaxPageSize)
	}
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("%w: API_DEFAULT_PAGE_SIZE must be between 1 and %d, got %d",
			ErrInvalidConfig, c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("%w: RATE_LIMIT_REQUESTS must be at least 1, got %d", ErrInvalidConfig, c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT_WINDOW must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("%w: LOG_LEVEL %q is not a known level", ErrInvalidConfig, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: LOG_FORMAT must be json or console, got %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}
