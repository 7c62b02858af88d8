// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package recommend

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/nextpage/internal/cache"
	"github.com/tomtom215/nextpage/internal/catalog"
	"github.com/tomtom215/nextpage/internal/logging"
	"github.com/tomtom215/nextpage/internal/metrics"
)

// EngineConfig configures the response cache in front of a Session.
type EngineConfig struct {
	// CacheSize is the maximum number of cached responses. 0 disables caching.
	CacheSize int

	// CacheTTL is how long a cached response is served.
	CacheTTL time.Duration
}

// Request is a similar-title query.
type Request struct {
	Title     string
	K         int
	RequestID string
}

// Response is the result of a similar-title query.
type Response struct {
	// Query is the title as requested.
	Query string `json:"query"`

	// Title is the matched catalog title.
	Title string `json:"title"`

	Items    []Recommendation `json:"items"`
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID string    `json:"request_id"`
	K         int       `json:"k"`
	LatencyMS int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	BuiltAt   time.Time `json:"built_at"`
	Timestamp time.Time `json:"timestamp"`
}

// Status summarizes the engine for the status endpoint.
type Status struct {
	Items           int          `json:"items"`
	Vocabulary      int          `json:"vocabulary"`
	Unrated         int          `json:"unrated"`
	Excluded        int          `json:"excluded"`
	BuiltAt         time.Time    `json:"built_at"`
	BuildDurationMS int64        `json:"build_duration_ms"`
	DefaultK        int          `json:"default_k"`
	MaxK            int          `json:"max_k"`
	Requests        int64        `json:"requests"`
	NotFound        int64        `json:"not_found"`
	Errors          int64        `json:"errors"`
	Cache           *cache.Stats `json:"cache,omitempty"`
}

// cachedResult is what the response cache stores.
type cachedResult struct {
	title string
	items []Recommendation
}

// Engine serves similar-title queries from a Session. It is safe for
// concurrent use.
type Engine struct {
	session *Session
	cache   *cache.LRUCache[cachedResult]
	logger  zerolog.Logger

	requestCount  atomic.Int64
	notFoundCount atomic.Int64
	errorCount    atomic.Int64
}

// NewEngine wraps session.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(session *Session, cfg EngineConfig, logger zerolog.Logger) (*Engine, error) {
	if session == nil {
		return nil, errors.New("recommend: nil session")
	}

	e := &Engine{
		session: session,
		logger:  logger.With().Str("component", "recommend").Logger(),
	}
	if cfg.CacheSize > 0 {
		e.cache = cache.NewLRUCache[cachedResult](cfg.CacheSize, cfg.CacheTTL)
	}

	stats := session.Stats()
	metrics.RecordFeatureMatrix(stats.Items, stats.Vocabulary+1)
	e.logger.Info().
		Int("items", stats.Items).
		Int("vocabulary", stats.Vocabulary).
		Int("unrated", stats.Unrated).
		Int("excluded", stats.Excluded).
		Int("cache_size", cfg.CacheSize).
		Msg("recommendation engine ready")

	return e, nil
}

// Session returns the underlying session.
func (e *Engine) Session() *Session {
	return e.session
}

// Similar answers req, serving from the cache when possible. Errors are
// those of Session.Recommend.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Similar(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepareRequest(ctx, req)
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("title", req.Title).
		Int("k", req.K).
		Logger()

	k, err := e.session.ResolveK(req.K)
	if err != nil {
		e.errorCount.Add(1)
		metrics.RecordRecommendation(metrics.OutcomeInvalid, time.Since(start), 0)
		return nil, err
	}

	key := cacheKey(req.Title, k)
	if e.cache != nil {
		if hit, ok := e.cache.Get(key); ok {
			metrics.RecordRecommendCache(true)
			resp := e.buildResponse(req, hit.title, hit.items, k, start, true)
			metrics.RecordRecommendation(metrics.OutcomeOK, time.Since(start), len(resp.Items))
			logger.Debug().Int("returned", len(resp.Items)).Msg("recommendation served from cache")
			return resp, nil
		}
		metrics.RecordRecommendCache(false)
	}

	items, err := e.session.Recommend(ctx, req.Title, k)
	if err != nil {
		metrics.RecordRecommendation(outcomeFor(err), time.Since(start), 0)
		if errors.Is(err, ErrNotFound) {
			e.notFoundCount.Add(1)
			logger.Debug().Msg("title not in catalog")
		} else {
			e.errorCount.Add(1)
			logger.Warn().Err(err).Msg("recommendation failed")
		}
		return nil, err
	}

	matched, _ := e.session.Lookup(req.Title)
	if e.cache != nil {
		e.cache.Add(key, cachedResult{title: matched.Title, items: items})
	}

	resp := e.buildResponse(req, matched.Title, items, k, start, false)
	metrics.RecordRecommendation(metrics.OutcomeOK, time.Since(start), len(items))
	logger.Debug().
		Int("returned", len(items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest fills in the request ID from the context or a new UUID.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(ctx context.Context, req Request) Request {
	if req.RequestID == "" {
		req.RequestID = logging.RequestIDFromContext(ctx)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	return req
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponse(req Request, title string, items []Recommendation, k int, start time.Time, cacheHit bool) *Response {
	// Cached slices are shared; hand out a copy.
	out := make([]Recommendation, len(items))
	copy(out, items)

	return &Response{
		Query: req.Title,
		Title: title,
		Items: out,
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			K:         k,
			LatencyMS: time.Since(start).Milliseconds(),
			CacheHit:  cacheHit,
			BuiltAt:   e.session.BuiltAt(),
			Timestamp: time.Now(),
		},
	}
}

// Status returns engine statistics.
func (e *Engine) Status() Status {
	stats := e.session.Stats()
	defaultK, maxK := e.session.Limits()

	s := Status{
		Items:           stats.Items,
		Vocabulary:      stats.Vocabulary,
		Unrated:         stats.Unrated,
		Excluded:        stats.Excluded,
		BuiltAt:         e.session.BuiltAt(),
		BuildDurationMS: stats.Duration.Milliseconds(),
		DefaultK:        defaultK,
		MaxK:            maxK,
		Requests:        e.requestCount.Load(),
		NotFound:        e.notFoundCount.Load(),
		Errors:          e.errorCount.Load(),
	}
	if e.cache != nil {
		cs := e.cache.Stats()
		s.Cache = &cs
	}
	return s
}

// CleanupCache drops expired cache entries and returns how many were removed.
func (e *Engine) CleanupCache() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.CleanupExpired()
}

// ResetCache drops every cached response and returns how many were held.
func (e *Engine) ResetCache() int {
	if e.cache == nil {
		return 0
	}
	n := e.cache.Len()
	e.cache.Clear()
	return n
}

func cacheKey(title string, k int) string {
	return catalog.TitleKey(title) + "|" + strconv.Itoa(k)
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrInvalidK):
		return metrics.OutcomeInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeError
	}
}
