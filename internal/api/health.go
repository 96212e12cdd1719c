// Copyright (c) 2026 Tabulaire. All rights reserved.

// Package api contains the health check handler.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/tabulaire/internal/platform/constants"
	"github.com/taibuivan/tabulaire/internal/platform/respond"
)

// HealthDependencies holds the injectable dependency checkers for /health.
type HealthDependencies struct {
	// CheckDownstream pings the downstream table service.
	CheckDownstream func(ctx context.Context) error

	// CheckCache pings the Redis client. nil when caching is disabled.
	CheckCache func(ctx context.Context) error
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
	startedAt    time.Time
}

// NewHealthHandler creates the /health http.HandlerFunc.
func NewHealthHandler(deps HealthDependencies, logger *slog.Logger) http.HandlerFunc {
	handler := &healthHandler{dependencies: deps, logger: logger, startedAt: time.Now()}
	return handler.health
}

// health handles GET /health: process liveness plus dependency reachability.
func (handler *healthHandler) health(writer http.ResponseWriter, request *http.Request) {
	type checkResult struct {
		Name  string `json:"name"`
		IsOK  bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	results := make([]checkResult, 0, 2)
	isSystemReady := true

	// Check the downstream table service
	if handler.dependencies.CheckDownstream != nil {
		result := checkResult{Name: "table_service", IsOK: true}
		if err := handler.dependencies.CheckDownstream(request.Context()); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.Error("health_check_failed", slog.String("dependency", "table_service"), slog.Any("error", err))
		}
		results = append(results, result)
	}

	// Check Redis
	if handler.dependencies.CheckCache != nil {
		result := checkResult{Name: "redis", IsOK: true}
		if err := handler.dependencies.CheckCache(request.Context()); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.Error("health_check_failed", slog.String("dependency", "redis"), slog.Any("error", err))
		}
		results = append(results, result)
	}

	responseStatus := "ok"
	httpStatus := http.StatusOK
	if !isSystemReady {
		responseStatus = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, map[string]any{
		"status":         responseStatus,
		"version":        constants.AppVersion,
		"uptime_seconds": int64(time.Since(handler.startedAt).Seconds()),
		"checks":         results,
	})
}
