// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

// Package config loads NextPage configuration with Koanf v2.
//
// Sources are layered, later layers winning:
//  1. Defaults: built-in values for every setting
//  2. Config File: optional YAML file (CONFIG_PATH, config.yaml, /etc/nextpage/config.yaml)
//  3. Environment Variables: the mapped names in envTransformFunc
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// CatalogConfig controls how the book CSV is read and turned into features.
type CatalogConfig struct {
	// Path to the CSV export. Required.
	Path string `koanf:"path"`

	// RatingScale is the maximum raw rating; ratings are divided by it.
	RatingScale float64 `koanf:"rating_scale"`

	// MissingRating decides what happens to a title with no usable rating:
	// "zero" keeps it with a rating feature of 0, "exclude" drops it from the
	// feature matrix.
	MissingRating string `koanf:"missing_rating"`
}

// RecommendConfig holds recommendation query settings.
type RecommendConfig struct {
	DefaultK     int           `koanf:"default_k"`
	MaxK         int           `koanf:"max_k"`
	CacheSize    int           `koanf:"cache_size"` // 0 disables the response cache
	CacheTTL     time.Duration `koanf:"cache_ttl"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// AnalyticsConfig configures the in-memory DuckDB analytics store.
type AnalyticsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = DuckDB default
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// APIConfig holds pagination limits for list endpoints.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config for the values that come from configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Missing rating policies.
const (
	MissingRatingZero    = "zero"
	MissingRatingExclude = "exclude"
)

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
