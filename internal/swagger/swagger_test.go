// Copyright (c) 2026 Tabulaire. All rights reserved.

package swagger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tabulaire/internal/query"
	"github.com/taibuivan/tabulaire/internal/resource"
	"github.com/taibuivan/tabulaire/internal/swagger"
)

const testResourceID = "aaaaaaaa-1111-2222-3333-444444444444"

func testProfile() *resource.Profile {
	return &resource.Profile{
		Header: []string{"name", "score"},
		Types: map[string]query.SemanticType{
			"name":  query.TypeString,
			"score": query.TypeFloat,
		},
	}
}

func parameterNames(t *testing.T, generator *swagger.Generator, ref *resource.Ref) []string {
	t.Helper()
	document, err := generator.Generate(ref, testProfile())
	require.NoError(t, err)

	path := document.Paths.Find("/api/resources/" + testResourceID + "/data")
	require.NotNil(t, path)

	names := make([]string, 0, len(path.Get.Parameters))
	for _, parameter := range path.Get.Parameters {
		names = append(names, parameter.Value.Name)
	}
	return names
}

/*
TestGenerate_Parameters verifies the per-column operator parameters: typed
operators only where legal, paging parameters always present.
*/
func TestGenerate_Parameters(t *testing.T) {
	generator := swagger.NewGenerator("https://tabular.example.org")
	ref := &resource.Ref{ResourceID: testResourceID}

	names := parameterNames(t, generator, ref)

	assert.Contains(t, names, "page")
	assert.Contains(t, names, "page_size")
	assert.Contains(t, names, "columns")

	// contains is string-only
	assert.Contains(t, names, "name__contains")
	assert.NotContains(t, names, "score__contains")

	// ordering comparisons need comparable types
	assert.Contains(t, names, "score__less")
	assert.NotContains(t, names, "name__less")

	// aggregation is off without the whitelist flag
	assert.NotContains(t, names, "score__avg")
	assert.NotContains(t, names, "name__groupby")
}

/*
TestGenerate_Aggregators verifies that whitelisted resources expose the
aggregation operators.
*/
func TestGenerate_Aggregators(t *testing.T) {
	generator := swagger.NewGenerator("https://tabular.example.org")
	ref := &resource.Ref{ResourceID: testResourceID, AggregationAllowed: true}

	names := parameterNames(t, generator, ref)
	assert.Contains(t, names, "score__avg")
	assert.Contains(t, names, "score__sum")
	assert.Contains(t, names, "name__groupby")
	assert.Contains(t, names, "name__count")
	assert.NotContains(t, names, "name__sum")
}

/*
TestGenerate_IndexedColumns verifies that restricted resources only expose
their indexed columns.
*/
func TestGenerate_IndexedColumns(t *testing.T) {
	generator := swagger.NewGenerator("https://tabular.example.org")
	ref := &resource.Ref{
		ResourceID:     testResourceID,
		IndexedColumns: map[string]bool{"name": true},
	}

	names := parameterNames(t, generator, ref)
	assert.Contains(t, names, "name__exact")
	assert.NotContains(t, names, "score__exact")
}

/*
TestRenderYAML verifies the YAML rendering of a generated document.
*/
func TestRenderYAML(t *testing.T) {
	generator := swagger.NewGenerator("https://tabular.example.org")
	document, err := generator.Generate(&resource.Ref{ResourceID: testResourceID}, testProfile())
	require.NoError(t, err)

	payload, err := swagger.RenderYAML(document)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "openapi")
	assert.Contains(t, string(payload), "name__exact")
}
