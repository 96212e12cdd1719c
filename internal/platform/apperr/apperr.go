// Copyright (c) 2026 Tabulaire. All rights reserved.

/*
Package apperr defines the centralized error handling framework for Tabulaire.

It provides a rich error type that bridges the gap between low-level parse,
directory, and downstream-transport errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing a machine-readable Code and a client-safe message.
  - Context: Optional resource/column/operator fields naming the offending input.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeResourceNotFound      = "resource_not_found"
	CodeResourceGone          = "resource_gone"
	CodeProfileNotFound       = "profile_not_found"
	CodeInvalidParameter      = "invalid_parameter"
	CodeInvalidValue          = "invalid_value"
	CodeAggregationNotAllowed = "aggregation_not_allowed"
	CodeColumnNotAllowed      = "column_not_allowed"
	CodeDownstreamUnavailable = "downstream_unavailable"
	CodeDownstreamTimeout     = "downstream_timeout"
	CodeInternal              = "internal"
)

// AppError is the canonical error type for the Tabulaire API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and optional fields naming the resource or query clause at fault.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking downstream URLs or response bodies.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "resource_not_found").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"message"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`

	// ResourceID names the resource involved, when known.
	ResourceID string `json:"resource_id,omitempty"`
	// DatasetID is included on resource_gone responses when the directory knows it.
	DatasetID string `json:"dataset_id,omitempty"`
	// Column and Operator name the offending query clause for 400-class errors.
	Column   string `json:"column,omitempty"`
	Operator string `json:"operator,omitempty"`
	// Value is the offending literal for invalid_value errors.
	Value string `json:"value,omitempty"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Resource Resolution Errors

// ResourceNotFound creates a 404 [AppError] for an unknown resource id.
func ResourceNotFound(resourceID string) *AppError {
	return &AppError{
		Code:       CodeResourceNotFound,
		Message:    fmt.Sprintf("Resource %q not found", resourceID),
		HTTPStatus: http.StatusNotFound,
		ResourceID: resourceID,
	}
}

// ResourceGone creates a 410 [AppError] for a resource deleted by its producer.
// datasetID may be empty when the directory does not know the parent dataset.
func ResourceGone(resourceID, datasetID, deletedAt string) *AppError {
	message := fmt.Sprintf("Resource %q has been permanently deleted by its producer", resourceID)
	if deletedAt != "" {
		message = fmt.Sprintf("Resource %q has been permanently deleted on %s by its producer", resourceID, deletedAt)
	}
	return &AppError{
		Code:       CodeResourceGone,
		Message:    message,
		HTTPStatus: http.StatusGone,
		ResourceID: resourceID,
		DatasetID:  datasetID,
	}
}

// ProfileNotFound creates a 404 [AppError] distinct from resource_not_found:
// the resource exists but has no stored inference profile.
func ProfileNotFound(resourceID string) *AppError {
	return &AppError{
		Code:       CodeProfileNotFound,
		Message:    fmt.Sprintf("No profile stored for resource %q", resourceID),
		HTTPStatus: http.StatusNotFound,
		ResourceID: resourceID,
	}
}

// # Query Errors (4xx)

// InvalidParameter creates a 400 [AppError] naming the column and operator of
// a malformed query clause.
func InvalidParameter(column, operator, message string) *AppError {
	return &AppError{
		Code:       CodeInvalidParameter,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Column:     column,
		Operator:   operator,
	}
}

// InvalidValue creates a 400 [AppError] naming the column, operator, and
// offending value of a type-incompatible query clause.
func InvalidValue(column, operator, value, message string) *AppError {
	return &AppError{
		Code:       CodeInvalidValue,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Column:     column,
		Operator:   operator,
		Value:      value,
	}
}

// AggregationNotAllowed creates a 403 [AppError] for aggregation clauses on a
// resource outside the aggregation whitelist.
func AggregationNotAllowed(resourceID string) *AppError {
	return &AppError{
		Code:       CodeAggregationNotAllowed,
		Message:    fmt.Sprintf("Aggregation parameters are not allowed for resource %q", resourceID),
		HTTPStatus: http.StatusForbidden,
		ResourceID: resourceID,
	}
}

// ColumnNotAllowed creates a 403 [AppError] for a clause on a column outside
// the indexed-columns whitelist of a restricted resource.
func ColumnNotAllowed(column string) *AppError {
	return &AppError{
		Code:       CodeColumnNotAllowed,
		Message:    fmt.Sprintf("Column %q is not among the allowed columns", column),
		HTTPStatus: http.StatusForbidden,
		Column:     column,
	}
}

// # Downstream Errors (5xx)

// DownstreamUnavailable creates a 502 [AppError] for transport failures or
// server-side errors on the downstream table service. The cause is kept
// opaque to the client.
func DownstreamUnavailable(cause error) *AppError {
	return &AppError{
		Code:       CodeDownstreamUnavailable,
		Message:    "The table service is unavailable",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// DownstreamTimeout creates a 504 [AppError] for a downstream request that
// exceeded its deadline.
func DownstreamTimeout(cause error) *AppError {
	return &AppError{
		Code:       CodeDownstreamTimeout,
		Message:    "The table service did not answer in time",
		HTTPStatus: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
