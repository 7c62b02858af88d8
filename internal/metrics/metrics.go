// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

/*
Package metrics defines the Prometheus collectors exported on /metrics.

Collectors are registered with the default registry through promauto at
package load. Callers use the Record* helpers rather than touching the
collectors directly so label sets stay consistent:

	metrics.RecordRecommendation(metrics.OutcomeOK, time.Since(start), len(items))

# Available Metrics

API: api_requests_total, api_request_duration_seconds, api_active_requests.

Recommendations: recommend_requests_total, recommend_duration_seconds,
recommend_results, recommend_cache_hits_total, recommend_cache_misses_total.

Catalog: catalog_records, catalog_rows_skipped, catalog_books,
catalog_load_duration_seconds, feature_matrix_items, feature_matrix_columns.

Analytics: analytics_query_duration_seconds, analytics_query_errors_total.
*/
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of similar-title queries by outcome",
		},
		[]string{"outcome"}, // "ok", "not_found", "invalid", "cancelled", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Duration of similar-title queries in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	RecommendResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_results",
			Help:    "Number of recommendations returned per query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of recommendation responses served from cache",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// Catalog Metrics
	CatalogRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_records",
			Help: "Number of CSV rows parsed into records at the last load",
		},
	)

	CatalogRowsSkipped = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_rows_skipped",
			Help: "Number of malformed CSV rows skipped at the last load",
		},
	)

	CatalogBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_books",
			Help: "Number of distinct titles in the catalog",
		},
	)

	CatalogLoadDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_load_duration_seconds",
			Help: "Time taken by the last catalog load in seconds",
		},
	)

	FeatureMatrixItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feature_matrix_items",
			Help: "Number of rows in the similarity feature matrix",
		},
	)

	FeatureMatrixColumns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feature_matrix_columns",
			Help: "Number of columns in the similarity feature matrix (genres plus rating)",
		},
	)

	// Analytics Metrics
	AnalyticsQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_query_duration_seconds",
			Help:    "Duration of DuckDB analytics queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	AnalyticsQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_query_errors_total",
			Help: "Total number of failed DuckDB analytics queries",
		},
		[]string{"query"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// Recommendation outcomes used as the recommend_requests_total label.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeInvalid   = "invalid"
	OutcomeCancelled = "cancelled"
	OutcomeError     = "error"
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records one similar-title query. Latency and result
// counts are only observed for successful queries.
func RecordRecommendation(outcome string, duration time.Duration, results int) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		RecommendDuration.Observe(duration.Seconds())
		RecommendResults.Observe(float64(results))
	}
}

// RecordRecommendCache counts a response cache lookup.
func RecordRecommendCache(hit bool) {
	if hit {
		RecommendCacheHits.Inc()
	} else {
		RecommendCacheMisses.Inc()
	}
}

// RecordCatalogLoad publishes the result of a catalog load.
func RecordCatalogLoad(records, skipped, books int, duration time.Duration) {
	CatalogRecords.Set(float64(records))
	CatalogRowsSkipped.Set(float64(skipped))
	CatalogBooks.Set(float64(books))
	CatalogLoadDuration.Set(duration.Seconds())
}

// RecordFeatureMatrix publishes the shape of the built feature matrix.
func RecordFeatureMatrix(items, columns int) {
	FeatureMatrixItems.Set(float64(items))
	FeatureMatrixColumns.Set(float64(columns))
}

// RecordAnalyticsQuery records an analytics query metric.
func RecordAnalyticsQuery(query string, duration time.Duration, err error) {
	AnalyticsQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		AnalyticsQueryErrors.WithLabelValues(query).Inc()
	}
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
