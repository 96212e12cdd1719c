// Copyright (c) 2026 Tabulaire. All rights reserved.

/*
Package pgrest is the HTTP client for the downstream table service.

It speaks the service's dialect: filter query strings produced by the query
compiler, row windows through Range headers, and exact totals through the
Content-Range response header. The client never interprets rows; it returns
them as ordered JSON objects for the gateway layers above to shape.

Architecture:

  - Client: one pooled HTTP client per process, bound to the service base URL.
  - Rows: windowed reads of table data with an optional exact total.
  - Lookup: point reads against the directory tables.
  - GroupCount: the group-cardinality probe behind aggregated totals.
*/
package pgrest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/tabulaire/internal/platform/apperr"
	"github.com/taibuivan/tabulaire/internal/platform/constants"
)

// Client talks to the downstream table service.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient builds a client for the given base endpoint, such as
// "http://postgrest:3000". The timeout bounds every individual request.
func NewClient(base string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		base:    strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

// Window is the zero-based inclusive row window of one request.
type Window struct {
	First int
	Last  int
}

// RowsResult is one page of table rows. Total is nil when the downstream did
// not report an exact total.
type RowsResult struct {
	Rows  []map[string]any
	Total *int64
}

// Rows fetches one window of rows from a table, applying the compiled filter
// query. When countExact is set the request asks for the exact total row
// count, surfaced through Total.
func (c *Client) Rows(ctx context.Context, table, rawQuery string, window Window, countExact bool) (*RowsResult, error) {
	request, err := c.newRequest(ctx, table, rawQuery)
	if err != nil {
		return nil, err
	}

	request.Header.Set(constants.HeaderRangeUnit, constants.RangeUnitRows)
	request.Header.Set(constants.HeaderRange, fmt.Sprintf("%d-%d", window.First, window.Last))
	if countExact {
		request.Header.Set(constants.HeaderPrefer, constants.PreferCountExact)
	}

	response, err := c.do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	rows, err := decodeRows(response.Body)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("decoding downstream rows: %w", err))
	}

	return &RowsResult{
		Rows:  rows,
		Total: ParseContentRange(response.Header.Get(constants.HeaderContentRange)),
	}, nil
}

// GroupCount runs the aggregation total probe: a zero-width window over the
// grouped select, reading the number of groups from Content-Range. It returns
// nil when the downstream does not report a usable total.
func (c *Client) GroupCount(ctx context.Context, table, rawQuery string) (*int64, error) {
	request, err := c.newRequest(ctx, table, rawQuery)
	if err != nil {
		return nil, err
	}

	request.Header.Set(constants.HeaderRangeUnit, constants.RangeUnitRows)
	request.Header.Set(constants.HeaderRange, "0-0")
	request.Header.Set(constants.HeaderPrefer, constants.PreferCountExact)

	response, err := c.do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	// Drain so the connection returns to the pool.
	_, _ = io.Copy(io.Discard, response.Body)

	return ParseContentRange(response.Header.Get(constants.HeaderContentRange)), nil
}

// Lookup fetches at most one row from a directory table. It returns nil
// without error when the filter matches nothing.
func (c *Client) Lookup(ctx context.Context, table, rawQuery string) (map[string]any, error) {
	request, err := c.newRequest(ctx, table, rawQuery)
	if err != nil {
		return nil, err
	}

	request.Header.Set(constants.HeaderRangeUnit, constants.RangeUnitRows)
	request.Header.Set(constants.HeaderRange, "0-0")

	response, err := c.do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	rows, err := decodeRows(response.Body)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("decoding downstream lookup: %w", err))
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Ping checks that the downstream service answers at all, for health checks.
func (c *Client) Ping(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/", nil)
	if err != nil {
		return apperr.Internal(err)
	}

	response, err := c.http.Do(request)
	if err != nil {
		return mapTransportError(err)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode >= 500 {
		return apperr.DownstreamUnavailable(fmt.Errorf("downstream status %d", response.StatusCode))
	}
	return nil
}

// # Request Plumbing

func (c *Client) newRequest(ctx context.Context, table, rawQuery string) (*http.Request, error) {
	target := c.base + "/" + table
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("building downstream request: %w", err))
	}
	return request, nil
}

// do executes the request and maps transport and status failures onto the
// gateway error taxonomy. Any 2xx status is a success; the downstream uses
// 206 Partial Content for windowed reads.
func (c *Client) do(request *http.Request) (*http.Response, error) {
	started := time.Now()

	response, err := c.http.Do(request)
	if err != nil {
		return nil, mapTransportError(err)
	}

	c.logger.DebugContext(request.Context(), "downstream_request",
		slog.String("url", request.URL.String()),
		slog.Int("status", response.StatusCode),
		slog.Int64("latency_ms", time.Since(started).Milliseconds()),
	)

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return response, nil
	}

	body, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
	response.Body.Close()

	if response.StatusCode >= 500 {
		return nil, apperr.DownstreamUnavailable(
			fmt.Errorf("downstream status %d: %s", response.StatusCode, strings.TrimSpace(string(body))))
	}
	return nil, apperr.Internal(
		fmt.Errorf("downstream rejected request with status %d: %s", response.StatusCode, strings.TrimSpace(string(body))))
}

func mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.DownstreamTimeout(err)
	}
	var urlErr interface{ Timeout() bool }
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return apperr.DownstreamTimeout(err)
	}
	return apperr.DownstreamUnavailable(err)
}

// decodeRows parses a JSON array of objects, keeping numbers as
// [json.Number] so that integer values survive the trip without turning into
// floats.
func decodeRows(reader io.Reader) ([]map[string]any, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber()

	var rows []map[string]any
	if err := decoder.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ParseContentRange extracts the total from a "first-last/total" header
// value. A missing header, a "*" total, or any malformed value yields nil;
// an unknown total is never an error.
func ParseContentRange(header string) *int64 {
	if header == "" {
		return nil
	}

	_, totalPart, found := strings.Cut(header, "/")
	if !found || totalPart == "*" {
		return nil
	}

	total, err := strconv.ParseInt(totalPart, 10, 64)
	if err != nil || total < 0 {
		return nil
	}
	return &total
}
