// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultCleanupInterval = time.Minute

// CacheCleaner drops expired entries and reports how many were removed.
// *recommend.Engine satisfies it.
type CacheCleaner interface {
	CleanupCache() int
}

// CacheMaintenanceService periodically purges expired recommendation
// responses so idle entries do not hold memory until they are evicted.
type CacheMaintenanceService struct {
	cleaner  CacheCleaner
	interval time.Duration
	logger   zerolog.Logger
}

// NewCacheMaintenanceService creates the service. A non-positive interval
// selects one minute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheMaintenanceService(cleaner CacheCleaner, interval time.Duration, logger zerolog.Logger) *CacheMaintenanceService {
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	return &CacheMaintenanceService{
		cleaner:  cleaner,
		interval: interval,
		logger:   logger.With().Str("service", "recommend-cache").Logger(),
	}
}

// Serve implements suture.Service.
func (s *CacheMaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug().Dur("interval", s.interval).Msg("cache maintenance running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := s.cleaner.CleanupCache(); removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("expired cache entries purged")
			}
		}
	}
}

// String names the service in supervisor events.
func (s *CacheMaintenanceService) String() string {
	return "recommend-cache"
}
