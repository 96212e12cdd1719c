// Copyright (c) 2026 Tabulaire. All rights reserved.

package resource_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tabulaire/internal/pgrest"
	"github.com/taibuivan/tabulaire/internal/platform/apperr"
	"github.com/taibuivan/tabulaire/internal/query"
	"github.com/taibuivan/tabulaire/internal/resource"
)

const (
	knownResourceID   = "aaaaaaaa-1111-2222-3333-444444444444"
	deletedResourceID = "bbbbbbbb-1111-2222-3333-444444444444"
)

// fakeClient answers directory lookups from canned rows keyed by table name.
type fakeClient struct {
	rows    map[string]map[string]any
	listing []map[string]any
	queries []string
}

func (f *fakeClient) Lookup(ctx context.Context, table, rawQuery string) (map[string]any, error) {
	f.queries = append(f.queries, table+"?"+rawQuery)
	return f.rows[table], nil
}

func (f *fakeClient) Rows(ctx context.Context, table, rawQuery string, window pgrest.Window, countExact bool) (*pgrest.RowsResult, error) {
	return &pgrest.RowsResult{Rows: f.listing}, nil
}

/*
TestDirectory_Resolve verifies the happy path: both lookups answer and the
reference carries the table name and metadata.
*/
func TestDirectory_Resolve(t *testing.T) {
	client := &fakeClient{rows: map[string]map[string]any{
		"resources": {
			"resource_id": knownResourceID,
			"dataset_id":  "dataset-1",
			"created_at":  "2026-01-01T00:00:00Z",
			"url":         "https://example.org/file.csv",
		},
		"tables_index": {"parsing_table": "table_xyz"},
	}}
	directory := resource.NewDirectory(client, nil, nil)

	ref, err := directory.Resolve(context.Background(), knownResourceID)
	require.NoError(t, err)
	assert.Equal(t, "table_xyz", ref.TableName)
	assert.Equal(t, "dataset-1", ref.DatasetID)
	assert.False(t, ref.AggregationAllowed)
	assert.Nil(t, ref.IndexedColumns)
}

/*
TestDirectory_ResolveNotFound verifies the missing-row cases, including
identifiers that are not UUIDs at all.
*/
func TestDirectory_ResolveNotFound(t *testing.T) {
	directory := resource.NewDirectory(&fakeClient{rows: map[string]map[string]any{}}, nil, nil)

	// Unknown but well-formed identifier
	_, err := directory.Resolve(context.Background(), knownResourceID)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeResourceNotFound, appError.Code)
	assert.Equal(t, http.StatusNotFound, appError.HTTPStatus)

	// Not a UUID: rejected without touching the directory
	_, err = directory.Resolve(context.Background(), "not-a-uuid")
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeResourceNotFound, appError.Code)

	// Directory row exists but the table mapping is missing
	client := &fakeClient{rows: map[string]map[string]any{
		"resources": {"resource_id": knownResourceID},
	}}
	directory = resource.NewDirectory(client, nil, nil)
	_, err = directory.Resolve(context.Background(), knownResourceID)
	assert.Equal(t, apperr.CodeResourceNotFound, apperr.As(err).Code)
}

/*
TestDirectory_ResolveGone verifies deletion precedence: a deleted row wins
even though the table mapping still exists, and the verdict carries the
dataset identifier.
*/
func TestDirectory_ResolveGone(t *testing.T) {
	client := &fakeClient{rows: map[string]map[string]any{
		"resources": {
			"resource_id": deletedResourceID,
			"dataset_id":  "dataset-9",
			"deleted_at":  "2025-12-01T10:00:00Z",
		},
		"tables_index": {"parsing_table": "table_zombie"},
	}}
	directory := resource.NewDirectory(client, nil, nil)

	_, err := directory.Resolve(context.Background(), deletedResourceID)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeResourceGone, appError.Code)
	assert.Equal(t, http.StatusGone, appError.HTTPStatus)
	assert.Equal(t, "dataset-9", appError.DatasetID)
	assert.Contains(t, appError.Message, "2025-12-01")

	// The tables_index lookup never ran
	for _, q := range client.queries {
		assert.False(t, strings.HasPrefix(q, "tables_index?"))
	}
}

/*
TestDirectory_Exceptions verifies the aggregation whitelist and the
indexed-column restriction derived from the exceptions directory.
*/
func TestDirectory_Exceptions(t *testing.T) {
	client := &fakeClient{rows: map[string]map[string]any{
		"resources":    {"resource_id": knownResourceID},
		"tables_index": {"parsing_table": "table_xyz"},
		"resources_exceptions": {
			"table_indexes": map[string]any{"name": "btree", "score": "btree"},
		},
	}}
	directory := resource.NewDirectory(client, nil, nil)

	ref, err := directory.Resolve(context.Background(), knownResourceID)
	require.NoError(t, err)
	assert.True(t, ref.AggregationAllowed)
	assert.Equal(t, map[string]bool{"name": true, "score": true}, ref.IndexedColumns)
}

/*
TestDirectory_AggregationOverlay verifies that the configured overlay
enables aggregation without an exceptions row.
*/
func TestDirectory_AggregationOverlay(t *testing.T) {
	client := &fakeClient{rows: map[string]map[string]any{
		"resources":    {"resource_id": knownResourceID},
		"tables_index": {"parsing_table": "table_xyz"},
	}}
	directory := resource.NewDirectory(client, nil, map[string]bool{knownResourceID: true})

	ref, err := directory.Resolve(context.Background(), knownResourceID)
	require.NoError(t, err)
	assert.True(t, ref.AggregationAllowed)
}

/*
TestDirectory_Profile verifies profile loading, type normalization, and the
profile_not_found case.
*/
func TestDirectory_Profile(t *testing.T) {
	client := &fakeClient{rows: map[string]map[string]any{
		"resources":    {"resource_id": knownResourceID},
		"tables_index": {"parsing_table": "table_xyz"},
	}}
	directory := resource.NewDirectory(client, nil, nil)

	ref, err := directory.Resolve(context.Background(), knownResourceID)
	require.NoError(t, err)

	// No stored document: profile_not_found, distinct from resource_not_found
	_, err = directory.Profile(context.Background(), ref)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeProfileNotFound, appError.Code)

	// Stored document: header order kept, unknown types degrade to string
	client.rows["tables_index"]["csv_detective"] = map[string]any{
		"header": []any{"name", "score", "weird"},
		"columns": map[string]any{
			"name":  map[string]any{"python_type": "string"},
			"score": map[string]any{"python_type": "float"},
			"weird": map[string]any{"python_type": "geopoint"},
		},
	}

	profile, err := directory.Profile(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "score", "weird"}, profile.Header)
	assert.Equal(t, query.TypeFloat, profile.Types["score"])
	assert.Equal(t, query.TypeString, profile.Types["weird"])
	assert.NotEmpty(t, profile.Raw)
}

/*
TestDirectory_AggregationExceptions verifies the merged listing.
*/
func TestDirectory_AggregationExceptions(t *testing.T) {
	client := &fakeClient{
		rows: map[string]map[string]any{},
		listing: []map[string]any{
			{"resource_id": "id-b"},
			{"resource_id": "id-c"},
		},
	}
	directory := resource.NewDirectory(client, nil, map[string]bool{"id-a": true, "id-c": true})

	ids, err := directory.AggregationExceptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"id-a", "id-b", "id-c"}, ids)
}
