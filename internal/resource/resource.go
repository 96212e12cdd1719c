// Copyright (c) 2026 Tabulaire. All rights reserved.

/*
Package resource resolves opaque resource identifiers into concrete table
references and typed column profiles.

The directory lives downstream: a `resources` table carries per-resource
state (deletion, dataset linkage), `tables_index` maps onto the parsing
table and stores the inferred profile, and `resources_exceptions` whitelists
aggregation-capable resources along with their indexed columns. The package
reads all three through the shared table-service client and optionally caches
the results in Redis.

Architecture:

  - resource.go: the resolved reference and profile value types.
  - directory.go: lookups, deletion precedence, exceptions overlay.
  - cache.go: optional Redis read-through with TTL.
*/
package resource

import (
	"encoding/json"
	"sort"

	"github.com/taibuivan/tabulaire/internal/query"
)

// Ref is a fully resolved resource reference.
type Ref struct {
	ResourceID string `json:"resource_id"`
	TableName  string `json:"-"`
	DatasetID  string `json:"dataset_id,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	URL        string `json:"url,omitempty"`

	// AggregationAllowed is true when the resource appears in the exceptions
	// directory or in the configured overlay.
	AggregationAllowed bool `json:"aggregation_allowed"`

	// IndexedColumns restricts usable columns when the exceptions directory
	// lists explicit indexes. nil means every profile column is usable.
	IndexedColumns map[string]bool `json:"-"`
}

// Profile is the typed column inventory of one resource.
type Profile struct {
	// Header holds the column names in file order.
	Header []string
	// Types maps every column onto its semantic type.
	Types map[string]query.SemanticType
	// Raw is the profile document exactly as stored, served verbatim on the
	// profile endpoint.
	Raw json.RawMessage
}

// profileDocument is the stored shape of the inference output.
type profileDocument struct {
	Header  []string                 `json:"header"`
	Columns map[string]profileColumn `json:"columns"`
}

type profileColumn struct {
	PythonType string `json:"python_type"`
	Format     string `json:"format"`
	Score      any    `json:"score"`
}

// newProfile builds a [Profile] from the stored document, degrading unknown
// column types to string.
func newProfile(raw json.RawMessage) (*Profile, error) {
	var document profileDocument
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, err
	}

	types := make(map[string]query.SemanticType, len(document.Columns))
	for name, column := range document.Columns {
		types[name] = query.NormalizeType(column.PythonType)
	}

	header := document.Header
	if len(header) == 0 {
		// Old documents may lack the header list; fall back to the column
		// map in name order.
		for name := range document.Columns {
			header = append(header, name)
		}
		sort.Strings(header)
	}

	return &Profile{Header: header, Types: types, Raw: raw}, nil
}
