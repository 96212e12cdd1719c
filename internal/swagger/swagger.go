// Copyright (c) 2026 Tabulaire. All rights reserved.

/*
Package swagger generates a per-resource OpenAPI document.

Every resource gets its own contract: one query parameter per legal
column/operator combination, typed by the column's inferred semantic type
and laid out in profile order. Aggregation operators only appear for
resources allowed to aggregate, and restricted resources only expose their
indexed columns.
*/
package swagger

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-yaml"

	"github.com/taibuivan/tabulaire/internal/platform/constants"
	"github.com/taibuivan/tabulaire/internal/query"
	"github.com/taibuivan/tabulaire/internal/resource"
)

// Generator builds per-resource OpenAPI documents.
type Generator struct {
	publicBaseURL string
}

// NewGenerator builds a generator advertising the given public origin in the
// document's server list.
func NewGenerator(publicBaseURL string) *Generator {
	return &Generator{publicBaseURL: publicBaseURL}
}

// operatorDescriptions drives the per-operator parameter documentation.
var operatorDescriptions = map[query.Suffix]string{
	query.SuffixExact:           "Exact match in column: %s",
	query.SuffixDiffers:         "Differs from value in column: %s",
	query.SuffixContains:        "String contains (case-insensitive) in column: %s",
	query.SuffixIn:              "Value in comma-separated list, column: %s",
	query.SuffixLess:            "Less than or equal in column: %s",
	query.SuffixGreater:         "Greater than or equal in column: %s",
	query.SuffixStrictlyLess:    "Strictly less than in column: %s",
	query.SuffixStrictlyGreater: "Strictly greater than in column: %s",
	query.SuffixSort:            "Sort by column: %s (value must be asc or desc)",
	query.SuffixGroupBy:         "Group results by column: %s",
	query.SuffixCount:           "Count values in column: %s",
	query.SuffixSum:             "Sum values in column: %s",
	query.SuffixAvg:             "Average values in column: %s",
	query.SuffixMin:             "Minimum value in column: %s",
	query.SuffixMax:             "Maximum value in column: %s",
}

// Generate builds the OpenAPI document of one resource.
func (g *Generator) Generate(ref *resource.Ref, profile *resource.Profile) (*openapi3.T, error) {
	dataPath := fmt.Sprintf("/api/resources/%s/data", ref.ResourceID)

	document := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Resource data API",
			Version:     constants.AppVersion,
			Description: fmt.Sprintf("Query API for resource %s", ref.ResourceID),
		},
		Servers: openapi3.Servers{
			&openapi3.Server{URL: g.publicBaseURL},
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath(dataPath, &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary:     "Query resource rows",
					OperationID: "getResourceData",
					Parameters:  g.dataParameters(ref, profile),
					Responses:   dataResponses(),
				},
			}),
			openapi3.WithPath(dataPath+"/csv", &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary:     "Export resource rows as CSV",
					OperationID: "getResourceDataCSV",
					Parameters:  g.dataParameters(ref, profile),
					Responses:   exportResponses("text/csv"),
				},
			}),
			openapi3.WithPath(dataPath+"/json", &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary:     "Export resource rows as a flat JSON array",
					OperationID: "getResourceDataJSON",
					Parameters:  g.dataParameters(ref, profile),
					Responses:   exportResponses("application/json"),
				},
			}),
			openapi3.WithPath(fmt.Sprintf("/api/resources/%s/profile", ref.ResourceID), &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary:     "Resource profile",
					OperationID: "getResourceProfile",
					Responses:   profileResponses(),
				},
			}),
		),
	}

	return document, nil
}

// dataParameters lists the query parameters of the data endpoints: paging,
// projection, then one entry per legal column/operator combination, columns
// in profile order.
func (g *Generator) dataParameters(ref *resource.Ref, profile *resource.Profile) openapi3.Parameters {
	parameters := openapi3.Parameters{
		queryParameter("page", "Page number", openapi3.NewInt64Schema()),
		queryParameter("page_size", "Number of rows per page", openapi3.NewInt64Schema()),
		queryParameter("columns", "Columns to keep in the result (comma-separated)", openapi3.NewStringSchema()),
	}

	for _, column := range profile.Header {
		semanticType, known := profile.Types[column]
		if !known {
			continue
		}
		if ref.IndexedColumns != nil && !ref.IndexedColumns[column] {
			continue
		}

		for _, suffix := range query.Suffixes() {
			if query.IsAggregator(suffix) && !ref.AggregationAllowed {
				continue
			}
			if !query.Legal(semanticType, suffix) {
				continue
			}

			parameter := queryParameter(
				fmt.Sprintf("%s__%s", column, suffix),
				fmt.Sprintf(operatorDescriptions[suffix], column),
				operatorSchema(semanticType, suffix),
			)
			if query.IsAggregator(suffix) {
				parameter.Value.AllowEmptyValue = true
			}
			parameters = append(parameters, parameter)
		}
	}
	return parameters
}

// operatorSchema types the parameter value after the column's semantic type.
// Aggregators and sort take fixed token values and stay strings.
func operatorSchema(semanticType query.SemanticType, suffix query.Suffix) *openapi3.Schema {
	if suffix == query.SuffixSort || query.IsAggregator(suffix) || suffix == query.SuffixIn {
		return openapi3.NewStringSchema()
	}

	switch semanticType {
	case query.TypeInt:
		return openapi3.NewInt64Schema()
	case query.TypeFloat:
		return openapi3.NewFloat64Schema()
	case query.TypeBool:
		return openapi3.NewBoolSchema()
	case query.TypeDate:
		return openapi3.NewStringSchema().WithFormat("date")
	case query.TypeDateTime:
		return openapi3.NewDateTimeSchema()
	default:
		return openapi3.NewStringSchema()
	}
}

func queryParameter(name, description string, schema *openapi3.Schema) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			Name:        name,
			In:          openapi3.ParameterInQuery,
			Description: description,
			Required:    false,
			Schema:      openapi3.NewSchemaRef("", schema),
		},
	}
}

func dataResponses() *openapi3.Responses {
	pageSchema := openapi3.NewObjectSchema().
		WithProperty("data", openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema())).
		WithProperty("links", openapi3.NewObjectSchema()).
		WithProperty("meta", openapi3.NewObjectSchema())

	return openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("One page of rows with navigation links").
				WithJSONSchema(pageSchema),
		}),
		openapi3.WithStatus(400, errorResponse("Invalid query parameter or value")),
		openapi3.WithStatus(404, errorResponse("Unknown resource")),
	)
}

func exportResponses(contentType string) *openapi3.Responses {
	return openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription(fmt.Sprintf("Full result set streamed as %s", contentType)),
		}),
		openapi3.WithStatus(400, errorResponse("Invalid query parameter or value")),
		openapi3.WithStatus(404, errorResponse("Unknown resource")),
	)
}

func profileResponses() *openapi3.Responses {
	return openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("The stored profile document").
				WithJSONSchema(openapi3.NewObjectSchema()),
		}),
		openapi3.WithStatus(404, errorResponse("Unknown resource or missing profile")),
	)
}

func errorResponse(description string) *openapi3.ResponseRef {
	errorSchema := openapi3.NewObjectSchema().
		WithProperty("errors", openapi3.NewArraySchema().WithItems(
			openapi3.NewObjectSchema().
				WithProperty("code", openapi3.NewStringSchema()).
				WithProperty("message", openapi3.NewStringSchema()),
		))

	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription(description).
			WithJSONSchema(errorSchema),
	}
}

// RenderYAML serializes the document as YAML, honoring the json struct tags
// of the OpenAPI types.
func RenderYAML(document *openapi3.T) ([]byte, error) {
	return yaml.MarshalWithOptions(document, yaml.UseJSONMarshaler())
}
