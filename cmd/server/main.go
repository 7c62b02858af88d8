// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/tomtom215/nextpage/internal/config"
	"github.com/tomtom215/nextpage/internal/logging"
	"github.com/tomtom215/nextpage/internal/metrics"
	"github.com/tomtom215/nextpage/internal/supervisor"
	"github.com/tomtom215/nextpage/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	metrics.SetAppInfo(version, runtime.Version())

	logging.Info().
		Str("version", version).
		Str("catalog", cfg.Catalog.Path).
		Str("environment", cfg.Server.Environment).
		Bool("analytics", cfg.Analytics.Enabled).
		Msg("Starting NextPage")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go watchReload(ctx, hup, a)

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	tree.AddDataService(services.NewCacheMaintenanceService(
		a.engine, cfg.Recommend.CacheTTL, logging.WithComponent("supervisor")))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(logging.NewSlogHandler(), slog.LevelWarn),
	}
	tree.AddAPIService(services.NewHTTPServerService(
		server, cfg.Server.ShutdownTimeout, logging.WithComponent("supervisor")))

	logging.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Err(err).Msg("Supervisor tree stopped unexpectedly")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	logging.Info().Msg("NextPage stopped")
}

// watchReload re-reads the configuration on every SIGHUP until ctx is done.
func watchReload(ctx context.Context, hup <-chan os.Signal, a *app) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			cfg, err := config.Load()
			if err != nil {
				logging.Err(err).Msg("Reload failed, keeping current configuration")
				continue
			}
			a.reload(cfg)
		}
	}
}
