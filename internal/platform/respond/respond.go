// Copyright (c) 2026 Tabulaire. All rights reserved.

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// It ensures that every error across the entire application follows the
// strict `{"errors": [...]}` envelope, so API consumers can parse failures
// robustly regardless of which layer produced them.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/taibuivan/tabulaire/internal/platform/apperr"
	"github.com/taibuivan/tabulaire/internal/platform/ctxutil"
)

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Errors []*apperr.AppError `json:"errors"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with the payload as-is.
//
// Data pages define their own envelope (data/links/meta), so unlike a CRUD
// API there is no generic success wrapper here.
func OK(writer http.ResponseWriter, payload interface{}) {
	JSON(writer, http.StatusOK, payload)
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		// Unexpected internal error: log full details but hide them from the client.
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues, and forward
	// them to the error reporter when one is configured.
	if appError.HTTPStatus >= 500 {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
		captureError(appError)
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{Errors: []*apperr.AppError{appError}})
}

// captureError reports a server-side failure to Sentry, tagged with the
// resource involved. No-op when the SDK was not initialized.
func captureError(appError *apperr.AppError) {
	if sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("code", appError.Code)
		if appError.ResourceID != "" {
			scope.SetTag("resource_id", appError.ResourceID)
		}
		cause := appError.Cause
		if cause == nil {
			cause = appError
		}
		sentry.CaptureException(cause)
	})
}
