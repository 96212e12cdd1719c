// Copyright (c) 2026 Tabulaire. All rights reserved.

// Command api is the entry point for the Tabulaire HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Initialize error reporting (optional).
//  4. Connect to Redis (optional directory cache).
//  5. Wire the downstream client, directory, and data service.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/taibuivan/tabulaire/internal/api"
	"github.com/taibuivan/tabulaire/internal/pgrest"
	"github.com/taibuivan/tabulaire/internal/platform/config"
	"github.com/taibuivan/tabulaire/internal/platform/constants"
	redisstore "github.com/taibuivan/tabulaire/internal/platform/redis"
	"github.com/taibuivan/tabulaire/internal/resource"
	"github.com/taibuivan/tabulaire/internal/swagger"
	"github.com/taibuivan/tabulaire/internal/tabular"
)

func main() {
	root := &cobra.Command{
		Use:   "tabulaire-api",
		Short: "Read-only query gateway for tabular open-data resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", constants.AppName, constants.AppVersion)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() error {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ServerPort),
		slog.String("downstream", cfg.Downstream()),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Error Reporting ────────────────────────────────────────────────
	if cfg.SentryDSN != "" {
		sentryEnv := cfg.SentryEnv
		if sentryEnv == "" {
			sentryEnv = cfg.Environment
		}
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: sentryEnv,
			Release:     constants.AppName + "@" + constants.AppVersion,
		})
		must(log, err, "initialize sentry")
		defer sentry.Flush(2 * time.Second)
		log.Info("sentry_enabled", slog.String("environment", sentryEnv))
	}

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var cache *resource.Cache
	var checkCache func(ctx context.Context) error
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		cache = resource.NewCache(rdb, cfg.CacheTTL)
		checkCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	client := pgrest.NewClient(cfg.Downstream(), cfg.DownstreamTimeout, log)
	directory := resource.NewDirectory(client, cache, cfg.AggregationOverlay())

	service := tabular.NewService(client, directory, tabular.Options{
		PublicBaseURL:   cfg.PublicBaseURL(),
		PageSizeDefault: cfg.PageSizeDefault,
		PageSizeMax:     cfg.PageSizeMax,
		BatchSize:       cfg.BatchSize,
	}, log)

	swaggerGenerator := swagger.NewGenerator(cfg.PublicBaseURL())
	tabularHandler := tabular.NewHandler(service, swaggerGenerator)

	healthHandler := api.NewHealthHandler(api.HealthDependencies{
		CheckDownstream: client.Ping,
		CheckCache: checkCache,
	}, log)

	// ── 6. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, api.Handlers{
		Health:  healthHandler,
		Tabular: tabularHandler,
	})

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		return err
	}

	log.Info("server stopped cleanly")
	return nil
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
