// Copyright (c) 2026 Tabulaire. All rights reserved.

package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/google/uuid"

	"github.com/taibuivan/tabulaire/internal/pgrest"
	"github.com/taibuivan/tabulaire/internal/platform/apperr"
)

// lookupClient is the slice of the table-service client the directory needs.
type lookupClient interface {
	Lookup(ctx context.Context, table, rawQuery string) (map[string]any, error)
	Rows(ctx context.Context, table, rawQuery string, window pgrest.Window, countExact bool) (*pgrest.RowsResult, error)
}

// Directory resolves resource identifiers against the downstream directory
// tables.
type Directory struct {
	client lookupClient
	cache  *Cache

	// aggregationOverlay force-enables aggregation for configured resources,
	// on top of the exceptions directory.
	aggregationOverlay map[string]bool
}

// NewDirectory builds a directory on top of the table-service client. cache
// may be nil to disable caching.
func NewDirectory(client lookupClient, cache *Cache, aggregationOverlay map[string]bool) *Directory {
	return &Directory{
		client:             client,
		cache:              cache,
		aggregationOverlay: aggregationOverlay,
	}
}

// Resolve maps a resource identifier onto its table reference.
//
// A deleted resource always resolves to Gone, regardless of whatever else the
// directory knows about it; Gone carries the dataset identifier when the
// directory has one. A missing row in either directory table is NotFound.
func (d *Directory) Resolve(ctx context.Context, resourceID string) (*Ref, error) {
	if _, err := uuid.Parse(resourceID); err != nil {
		return nil, apperr.ResourceNotFound(resourceID)
	}

	if ref := d.cache.GetRef(ctx, resourceID); ref != nil {
		return ref, nil
	}

	// 1. Per-resource state first: deletion must win over everything else
	row, err := d.client.Lookup(ctx, "resources", directoryQuery(resourceID,
		"resource_id,dataset_id,created_at,url,deleted_at"))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ResourceNotFound(resourceID)
	}
	if deletedAt := stringField(row, "deleted_at"); deletedAt != "" {
		return nil, apperr.ResourceGone(resourceID, stringField(row, "dataset_id"), deletedAt)
	}

	// 2. Concrete table mapping
	tableRow, err := d.client.Lookup(ctx, "tables_index", directoryQuery(resourceID, "parsing_table"))
	if err != nil {
		return nil, err
	}
	tableName := stringField(tableRow, "parsing_table")
	if tableName == "" {
		return nil, apperr.ResourceNotFound(resourceID)
	}

	ref := &Ref{
		ResourceID: resourceID,
		TableName:  tableName,
		DatasetID:  stringField(row, "dataset_id"),
		CreatedAt:  stringField(row, "created_at"),
		URL:        stringField(row, "url"),
	}

	// 3. Aggregation whitelist and indexed-column restrictions
	if err := d.applyExceptions(ctx, ref); err != nil {
		return nil, err
	}
	if d.aggregationOverlay[resourceID] {
		ref.AggregationAllowed = true
	}

	d.cache.SetRef(ctx, ref)
	return ref, nil
}

// Profile fetches the typed column profile of a resolved resource. A
// resource can exist without a profile; that case is profile_not_found, kept
// distinct from resource_not_found.
func (d *Directory) Profile(ctx context.Context, ref *Ref) (*Profile, error) {
	if profile := d.cache.GetProfile(ctx, ref.ResourceID); profile != nil {
		return profile, nil
	}

	row, err := d.client.Lookup(ctx, "tables_index", directoryQuery(ref.ResourceID, "csv_detective"))
	if err != nil {
		return nil, err
	}
	if row == nil || row["csv_detective"] == nil {
		return nil, apperr.ProfileNotFound(ref.ResourceID)
	}

	raw, err := json.Marshal(row["csv_detective"])
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("re-encoding profile document: %w", err))
	}
	profile, err := newProfile(raw)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("parsing profile document: %w", err))
	}

	d.cache.SetProfile(ctx, ref.ResourceID, profile)
	return profile, nil
}

// applyExceptions reads the aggregation whitelist row for the resource. A
// row's presence enables aggregation; its table_indexes object, when
// non-empty, restricts queries to the listed columns.
func (d *Directory) applyExceptions(ctx context.Context, ref *Ref) error {
	row, err := d.client.Lookup(ctx, "resources_exceptions",
		"select=table_indexes&resource_id=eq."+url.QueryEscape(ref.ResourceID))
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}

	ref.AggregationAllowed = true
	if indexes, ok := row["table_indexes"].(map[string]any); ok && len(indexes) > 0 {
		ref.IndexedColumns = make(map[string]bool, len(indexes))
		for column := range indexes {
			ref.IndexedColumns[column] = true
		}
	}
	return nil
}

// AggregationExceptions lists every resource with aggregation enabled: the
// exceptions directory contents merged with the configured overlay, sorted
// for stable output.
func (d *Directory) AggregationExceptions(ctx context.Context) ([]string, error) {
	merged := make(map[string]bool, len(d.aggregationOverlay))
	for id := range d.aggregationOverlay {
		merged[id] = true
	}

	result, err := d.client.Rows(ctx, "resources_exceptions",
		"select=resource_id&order=resource_id.asc",
		pgrest.Window{First: 0, Last: exceptionsPageLimit - 1}, false)
	if err != nil {
		return nil, err
	}
	for _, row := range result.Rows {
		if id := stringField(row, "resource_id"); id != "" {
			merged[id] = true
		}
	}

	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// exceptionsPageLimit bounds the directory read behind the listing endpoint.
const exceptionsPageLimit = 10000

// directoryQuery builds the point-lookup query for a directory table. The
// newest row wins when ingestion left more than one.
func directoryQuery(resourceID, selectColumns string) string {
	return fmt.Sprintf("select=%s&resource_id=eq.%s&order=created_at.desc",
		url.QueryEscape(selectColumns), url.QueryEscape(resourceID))
}

func stringField(row map[string]any, key string) string {
	if row == nil {
		return ""
	}
	value, _ := row[key].(string)
	return value
}
