// Copyright (c) 2026 Tabulaire. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Downstream Protocol: header names of the PostgREST windowing contract.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "tabulaire-api"
	AppVersion = "1.0.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the
	// response. Streaming CSV exports can run long, hence the generous bound.
	DefaultWriteTimeout = 10 * time.Minute

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID         = "X-Request-ID"
	HeaderXRealIP            = "X-Real-IP"
	HeaderXForwardedFor      = "X-Forwarded-For"
	HeaderOrigin             = "Origin"
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"

	// Downstream windowing contract (PostgREST).
	HeaderRange        = "Range"
	HeaderRangeUnit    = "Range-Unit"
	HeaderContentRange = "Content-Range"
	HeaderPrefer       = "Prefer"
)

// # Content Types

const (
	ContentTypeJSON = "application/json; charset=utf-8"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeYAML = "application/yaml; charset=utf-8"
)

// # Downstream Protocol Values

const (
	// RangeUnitRows selects row-based windowing on the downstream service.
	RangeUnitRows = "rows"

	// PreferCountExact asks the downstream service for an exact total in
	// the Content-Range response header.
	PreferCountExact = "count=exact"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldLinks   = "links"
	FieldErrors  = "errors"
	FieldCode    = "code"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldVersion = "version"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixResource = "resource:ref:"
	RedisPrefixProfile  = "resource:profile:"
)
