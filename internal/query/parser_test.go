// Copyright (c) 2026 Tabulaire. All rights reserved.

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tabulaire/internal/platform/apperr"
	"github.com/taibuivan/tabulaire/internal/query"
)

// testTypes is a profile covering every semantic type.
var testTypes = map[string]query.SemanticType{
	"name":    query.TypeString,
	"count":   query.TypeInt,
	"score":   query.TypeFloat,
	"active":  query.TypeBool,
	"birth":   query.TypeDate,
	"seen_at": query.TypeDateTime,
	"extra":   query.TypeJSON,
}

var testOptions = query.Options{PageSizeDefault: 20, PageSizeMax: 50}

func parseQuery(t *testing.T, rawQuery string) (*query.Plan, error) {
	t.Helper()
	pairs, err := query.ParsePairs(rawQuery)
	require.NoError(t, err)
	return query.Parse(pairs, testTypes, testOptions)
}

/*
TestParse_Filters verifies that every filter operator lands in the plan with
its column, operator, and literal intact.
*/
func TestParse_Filters(t *testing.T) {
	plan, err := parseQuery(t, "score__greater=0.9&count__exact=13&name__contains=abc")
	require.NoError(t, err)

	require.Len(t, plan.Filters, 3)
	assert.Equal(t, query.Filter{Column: "score", Op: query.OpGreater, Value: "0.9"}, plan.Filters[0])
	assert.Equal(t, query.Filter{Column: "count", Op: query.OpExact, Value: "13"}, plan.Filters[1])
	assert.Equal(t, query.Filter{Column: "name", Op: query.OpContains, Value: "abc"}, plan.Filters[2])

	// Defaults apply when paging keys are absent
	assert.Equal(t, 1, plan.Page)
	assert.Equal(t, 20, plan.PageSize)
}

/*
TestParse_InList verifies comma-splitting and per-element type checking of
the in operator.
*/
func TestParse_InList(t *testing.T) {
	plan, err := parseQuery(t, "count__in=1,2,3")
	require.NoError(t, err)
	require.Len(t, plan.Filters, 1)
	assert.Equal(t, []string{"1", "2", "3"}, plan.Filters[0].Values)

	// One bad element poisons the whole list
	_, err = parseQuery(t, "count__in=1,two,3")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeInvalidValue, appError.Code)
	assert.Equal(t, "two", appError.Value)
}

/*
TestParse_OperatorLegality verifies the operator/type matrix: contains is
string-only, ordering comparisons need comparable types, sum and avg need
numeric ones.
*/
func TestParse_OperatorLegality(t *testing.T) {
	cases := []struct {
		name     string
		rawQuery string
		legal    bool
	}{
		{"contains on string", "name__contains=x", true},
		{"contains on int", "count__contains=1", false},
		{"contains on json", "extra__contains=x", false},
		{"less on int", "count__less=5", true},
		{"less on date", "birth__less=1996", true},
		{"less on bool", "active__less=true", false},
		{"less on string", "name__less=abc", false},
		{"strictly_greater on datetime", "seen_at__strictly_greater=2020-01-01", true},
		{"sum on float", "score__sum", true},
		{"sum on string", "name__sum", false},
		{"avg on int", "count__avg", true},
		{"avg on date", "birth__avg", false},
		{"min on string", "name__min", true},
		{"max on json", "extra__max", true},
		{"count on bool", "active__count", true},
		{"exact on json", "extra__exact=x", true},
		{"differs on bool", "active__differs=true", true},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := parseQuery(t, testCase.rawQuery)
			if testCase.legal {
				assert.NoError(t, err)
			} else {
				appError := apperr.As(err)
				require.NotNil(t, appError)
				assert.Equal(t, apperr.CodeInvalidParameter, appError.Code)
			}
		})
	}
}

/*
TestParse_ScalarTyping verifies that literals must parse into the column's
semantic type, including the permissive year-only date form.
*/
func TestParse_ScalarTyping(t *testing.T) {
	// Bare year on a date column
	_, err := parseQuery(t, "birth__less=1996")
	assert.NoError(t, err)

	// Full date forms
	_, err = parseQuery(t, "birth__exact=1996-05-12")
	assert.NoError(t, err)

	// Garbage on a date column
	_, err = parseQuery(t, "birth__less=yesterday")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeInvalidValue, appError.Code)
	assert.Equal(t, "birth", appError.Column)

	// Non-numeric literal on an int column
	_, err = parseQuery(t, "count__exact=abc")
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeInvalidValue, appError.Code)

	// Bool column accepts the strconv forms
	_, err = parseQuery(t, "active__exact=true")
	assert.NoError(t, err)
	_, err = parseQuery(t, "active__exact=maybe")
	assert.Error(t, err)
}

/*
TestParse_UnknownColumnAndOperator verifies the invalid_parameter cases.
*/
func TestParse_UnknownColumnAndOperator(t *testing.T) {
	// Unknown column
	_, err := parseQuery(t, "ghost__exact=1")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeInvalidParameter, appError.Code)
	assert.Equal(t, "ghost", appError.Column)

	// Unknown operator on a known column
	_, err = parseQuery(t, "name__like=x")
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeInvalidParameter, appError.Code)

	// Keys without the separator are silently ignored
	plan, err := parseQuery(t, "utm_source=portal&name__exact=a")
	require.NoError(t, err)
	assert.Len(t, plan.Filters, 1)
}

/*
TestParse_Paging verifies the page and page_size bounds.
*/
func TestParse_Paging(t *testing.T) {
	plan, err := parseQuery(t, "page=3&page_size=30")
	require.NoError(t, err)
	assert.Equal(t, 3, plan.Page)
	assert.Equal(t, 30, plan.PageSize)

	_, err = parseQuery(t, "page=0")
	assert.Error(t, err)

	_, err = parseQuery(t, "page=abc")
	assert.Error(t, err)

	_, err = parseQuery(t, "page_size=51")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeInvalidValue, appError.Code)

	_, err = parseQuery(t, "page_size=0")
	assert.Error(t, err)
}

/*
TestParse_Projection verifies the columns reserved key.
*/
func TestParse_Projection(t *testing.T) {
	plan, err := parseQuery(t, "columns=name,score")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "score"}, plan.Projection)

	// The row identifier is always projectable
	plan, err = parseQuery(t, "columns=__id,name")
	require.NoError(t, err)
	assert.Equal(t, []string{"__id", "name"}, plan.Projection)

	// Unknown columns are rejected
	_, err = parseQuery(t, "columns=name,ghost")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeInvalidParameter, appError.Code)
}

/*
TestParse_Sort verifies sort parsing and its direction tokens.
*/
func TestParse_Sort(t *testing.T) {
	plan, err := parseQuery(t, "score__sort=desc&name__sort=asc")
	require.NoError(t, err)
	require.Len(t, plan.Sorts, 2)
	assert.True(t, plan.Sorts[0].Descending)
	assert.False(t, plan.Sorts[1].Descending)

	_, err = parseQuery(t, "score__sort=down")
	assert.Error(t, err)
}

/*
TestParse_Aggregation verifies grouping, aggregate collection, and the
cross-clause invariants of aggregated plans.
*/
func TestParse_Aggregation(t *testing.T) {
	plan, err := parseQuery(t, "count__groupby&score__avg")
	require.NoError(t, err)
	assert.Equal(t, []string{"count"}, plan.GroupBy)
	require.Len(t, plan.Aggregates, 1)
	assert.Equal(t, "score__avg", plan.Aggregates[0].ResultColumn())
	assert.True(t, plan.Aggregated())

	// Aggregator keys must be bare, even with an empty value after the sign
	_, err = parseQuery(t, "score__avg=1")
	assert.Error(t, err)
	_, err = parseQuery(t, "score__avg=")
	assert.Error(t, err)
	_, err = parseQuery(t, "count__groupby=name")
	assert.Error(t, err)
	_, err = parseQuery(t, "count__groupby=")
	assert.Error(t, err)

	// Sort cannot be combined with aggregation
	_, err = parseQuery(t, "count__groupby&score__avg&name__sort=asc")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeInvalidParameter, appError.Code)

	// An explicit projection must match the aggregation output
	_, err = parseQuery(t, "count__groupby&score__avg&columns=count,score__avg")
	assert.NoError(t, err)
	_, err = parseQuery(t, "count__groupby&score__avg&columns=count")
	assert.Error(t, err)

	// Repeating a column cannot stand in for a missing output column
	_, err = parseQuery(t, "count__groupby&score__avg&columns=count,count")
	assert.Error(t, err)
}

/*
TestParse_IndexedColumns verifies the whitelist of restricted resources.
*/
func TestParse_IndexedColumns(t *testing.T) {
	restricted := query.Options{
		PageSizeDefault: 20,
		PageSizeMax:     50,
		AllowedColumns:  map[string]bool{"name": true},
	}

	pairs, err := query.ParsePairs("name__exact=a")
	require.NoError(t, err)
	_, err = query.Parse(pairs, testTypes, restricted)
	assert.NoError(t, err)

	pairs, err = query.ParsePairs("score__greater=1")
	require.NoError(t, err)
	_, err = query.Parse(pairs, testTypes, restricted)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeColumnNotAllowed, appError.Code)
	assert.Equal(t, "score", appError.Column)
}
