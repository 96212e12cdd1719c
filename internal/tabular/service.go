// Copyright (c) 2026 Tabulaire. All rights reserved.

/*
Package tabular is the data-query domain of the gateway: it turns one
incoming request into resolved resource metadata, a validated query plan,
one or two downstream reads, and a paged response envelope.

Architecture:

  - service.go: orchestration — resolve, parse, gate, compile, execute.
  - links.go: absolute navigation links preserving the original query.
  - stream.go: full-result CSV and JSON exports, paged downstream.
  - http.go: chi handlers on top of the service.
*/
package tabular

import (
	"context"
	"log/slog"

	"github.com/taibuivan/tabulaire/internal/pgrest"
	"github.com/taibuivan/tabulaire/internal/platform/apperr"
	"github.com/taibuivan/tabulaire/internal/query"
	"github.com/taibuivan/tabulaire/internal/resource"
	"github.com/taibuivan/tabulaire/pkg/pagination"
)

// rowsClient is the slice of the table-service client the service needs.
type rowsClient interface {
	Rows(ctx context.Context, table, rawQuery string, window pgrest.Window, countExact bool) (*pgrest.RowsResult, error)
	GroupCount(ctx context.Context, table, rawQuery string) (*int64, error)
}

// directory resolves resource identifiers and profiles.
type directory interface {
	Resolve(ctx context.Context, resourceID string) (*resource.Ref, error)
	Profile(ctx context.Context, ref *resource.Ref) (*resource.Profile, error)
	AggregationExceptions(ctx context.Context) ([]string, error)
}

// Options carries the process-wide tuning of the service.
type Options struct {
	// PublicBaseURL is the absolute origin used in navigation links, such as
	// "https://tabular.example.org".
	PublicBaseURL string
	// PageSizeDefault and PageSizeMax bound the page window.
	PageSizeDefault int
	PageSizeMax     int
	// BatchSize is the downstream window used by the streaming exports.
	BatchSize int
}

// Service answers data queries against resolved resources.
type Service struct {
	client    rowsClient
	directory directory
	options   Options
	logger    *slog.Logger
}

// NewService wires the data-query service.
func NewService(client rowsClient, directory directory, options Options, logger *slog.Logger) *Service {
	return &Service{
		client:    client,
		directory: directory,
		options:   options,
		logger:    logger,
	}
}

// Page is the JSON envelope of one data query.
type Page struct {
	Data  []map[string]any `json:"data"`
	Links Links            `json:"links"`
	Meta  pagination.Meta  `json:"meta"`
}

// Query runs one data query: resolve the resource, validate the raw query
// against its profile, execute the compiled request, and assemble the paged
// envelope.
func (s *Service) Query(ctx context.Context, resourceID, rawQuery string) (*Page, error) {
	ref, _, plan, err := s.prepare(ctx, resourceID, rawQuery)
	if err != nil {
		return nil, err
	}

	compiled := query.Compile(plan)
	window := pgrest.Window{First: compiled.Offset, Last: compiled.Offset + compiled.Limit - 1}

	// The downstream total of an aggregated read counts source rows, not
	// groups, so it is never requested for aggregated plans.
	countExact := !plan.Aggregated()

	result, err := s.client.Rows(ctx, ref.TableName, compiled.RawQuery, window, countExact)
	if err != nil {
		return nil, err
	}

	total := result.Total
	if plan.Aggregated() {
		total, err = s.aggregatedTotal(ctx, ref, plan)
		if err != nil {
			return nil, err
		}
	}

	params := pagination.Params{Page: plan.Page, PageSize: plan.PageSize}
	meta := pagination.NewMeta(params, total)

	rows := result.Rows
	if rows == nil {
		rows = []map[string]any{}
	}

	return &Page{
		Data:  rows,
		Links: s.buildLinks(resourceID, rawQuery, meta, len(rows)),
		Meta:  meta,
	}, nil
}

// aggregatedTotal computes the total of an aggregated query. Grouped plans
// need a second downstream read counting the groups; plans that aggregate the
// whole table collapse to a single row.
func (s *Service) aggregatedTotal(ctx context.Context, ref *resource.Ref, plan *query.Plan) (*int64, error) {
	if len(plan.GroupBy) == 0 {
		one := int64(1)
		return &one, nil
	}
	return s.client.GroupCount(ctx, ref.TableName, query.GroupCountQuery(plan))
}

// prepare resolves the resource, loads its profile, and parses the raw query
// into a validated plan. Aggregation is gated on the resource's whitelist
// flag.
func (s *Service) prepare(ctx context.Context, resourceID, rawQuery string) (*resource.Ref, *resource.Profile, *query.Plan, error) {
	ref, err := s.directory.Resolve(ctx, resourceID)
	if err != nil {
		return nil, nil, nil, err
	}

	profile, err := s.directory.Profile(ctx, ref)
	if err != nil {
		return nil, nil, nil, err
	}

	pairs, err := query.ParsePairs(rawQuery)
	if err != nil {
		return nil, nil, nil, apperr.InvalidParameter("", "", err.Error())
	}

	plan, err := query.Parse(pairs, profile.Types, query.Options{
		PageSizeDefault: s.options.PageSizeDefault,
		PageSizeMax:     s.options.PageSizeMax,
		AllowedColumns:  ref.IndexedColumns,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	if plan.Aggregated() && !ref.AggregationAllowed {
		return nil, nil, nil, apperr.AggregationNotAllowed(resourceID)
	}
	return ref, profile, plan, nil
}

// Meta returns the resolved resource reference for the metadata endpoint.
func (s *Service) Meta(ctx context.Context, resourceID string) (*resource.Ref, error) {
	return s.directory.Resolve(ctx, resourceID)
}

// Profile returns the stored profile document of a resource.
func (s *Service) Profile(ctx context.Context, resourceID string) (*resource.Profile, error) {
	ref, err := s.directory.Resolve(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	return s.directory.Profile(ctx, ref)
}

// AggregationExceptions lists the resources allowed to aggregate.
func (s *Service) AggregationExceptions(ctx context.Context) ([]string, error) {
	return s.directory.AggregationExceptions(ctx)
}
