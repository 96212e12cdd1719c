// Copyright (c) 2026 Tabulaire. All rights reserved.

package query

import (
	"strings"
)

// Compiled is the downstream realization of a [Plan]: the raw query string of
// the table request plus the row window to ask for.
type Compiled struct {
	// RawQuery is the ready-to-send query string, already escaped.
	RawQuery string
	// Offset and Limit define the zero-based row window of the page.
	Offset int
	Limit  int
	// CountExact asks the downstream for the exact total row count.
	CountExact bool
}

// opPrefixes maps plan operators onto the downstream filter prefixes.
var opPrefixes = map[FilterOp]string{
	OpExact:           "eq.",
	OpDiffers:         "neq.",
	OpLess:            "lte.",
	OpGreater:         "gte.",
	OpStrictlyLess:    "lt.",
	OpStrictlyGreater: "gt.",
}

// Compile lowers a validated plan into the downstream wire syntax.
//
// Filters keep their request order. Plans without explicit ordering and
// without aggregation are pinned to the row identifier so that paging is
// stable across requests.
func Compile(plan *Plan) Compiled {
	var segments []string

	// 1. Filter predicates, one segment per filter
	for _, filter := range plan.Filters {
		segments = append(segments, compileFilter(filter))
	}

	// 2. Output shape: aggregation select or explicit projection
	if plan.Aggregated() {
		segments = append(segments, "select="+compileAggregationSelect(plan))
	} else if len(plan.Projection) > 0 {
		quoted := make([]string, len(plan.Projection))
		for i, column := range plan.Projection {
			quoted[i] = QuoteColumn(column)
		}
		segments = append(segments, "select="+escapeValue(strings.Join(quoted, ",")))
	}

	// 3. Ordering
	if len(plan.Sorts) > 0 {
		terms := make([]string, len(plan.Sorts))
		for i, sort := range plan.Sorts {
			direction := ".asc"
			if sort.Descending {
				direction = ".desc"
			}
			terms[i] = QuoteColumn(sort.Column) + direction
		}
		segments = append(segments, "order="+escapeValue(strings.Join(terms, ",")))
	} else if !plan.Aggregated() {
		segments = append(segments, "order=__id.asc")
	}

	return Compiled{
		RawQuery:   strings.Join(segments, "&"),
		Offset:     (plan.Page - 1) * plan.PageSize,
		Limit:      plan.PageSize,
		CountExact: true,
	}
}

// GroupCountQuery builds the probe request that counts the number of groups
// an aggregated plan produces: same filters, grouped select, single count
// alias. The caller reads the group count from the response's Content-Range.
func GroupCountQuery(plan *Plan) string {
	var segments []string
	for _, filter := range plan.Filters {
		segments = append(segments, compileFilter(filter))
	}

	parts := make([]string, 0, len(plan.GroupBy)+1)
	for _, column := range plan.GroupBy {
		parts = append(parts, QuoteColumn(column))
	}
	parts = append(parts, `"__count":count()`)
	segments = append(segments, "select="+escapeValue(strings.Join(parts, ",")))

	return strings.Join(segments, "&")
}

func compileFilter(filter Filter) string {
	key := escapeValue(QuoteColumn(filter.Column))
	switch filter.Op {
	case OpIn:
		quoted := make([]string, len(filter.Values))
		for i, value := range filter.Values {
			quoted[i] = `"` + value + `"`
		}
		return key + "=" + escapeValue("in.("+strings.Join(quoted, ",")+")")
	case OpContains:
		return key + "=" + escapeValue("ilike.*"+filter.Value+"*")
	default:
		return key + "=" + escapeValue(opPrefixes[filter.Op]+filter.Value)
	}
}

// compileAggregationSelect renders the select list of an aggregated plan:
// group-by columns first, then one alias per aggregate function.
func compileAggregationSelect(plan *Plan) string {
	parts := make([]string, 0, len(plan.GroupBy)+len(plan.Aggregates))
	for _, column := range plan.GroupBy {
		parts = append(parts, QuoteColumn(column))
	}
	for _, agg := range plan.Aggregates {
		alias := QuoteColumn(agg.ResultColumn())
		parts = append(parts, alias+":"+QuoteColumn(agg.Column)+"."+string(agg.Fn)+"()")
	}
	return escapeValue(strings.Join(parts, ","))
}

// QuoteColumn wraps a column identifier in double quotes, escaping embedded
// quotes, so that names with dots, spaces, or reserved words survive the
// downstream parser.
func QuoteColumn(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}

// escaper percent-encodes only the bytes that would break the query string
// itself. The downstream syntax characters (dots, parentheses, commas,
// colons, asterisks) must pass through unencoded.
var escaper = strings.NewReplacer(
	"%", "%25",
	" ", "%20",
	"&", "%26",
	"#", "%23",
	"+", "%2B",
	"=", "%3D",
	`"`, "%22",
)

func escapeValue(value string) string {
	return escaper.Replace(value)
}
