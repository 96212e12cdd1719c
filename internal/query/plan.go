// Copyright (c) 2026 Tabulaire. All rights reserved.

package query

// FilterOp is a normalized filter operator inside a [Plan].
type FilterOp string

const (
	OpExact           FilterOp = "exact"
	OpDiffers         FilterOp = "differs"
	OpContains        FilterOp = "contains"
	OpIn              FilterOp = "in"
	OpLess            FilterOp = "less"
	OpGreater         FilterOp = "greater"
	OpStrictlyLess    FilterOp = "strictly_less"
	OpStrictlyGreater FilterOp = "strictly_greater"
)

// AggFn is an aggregate function inside a [Plan].
type AggFn string

const (
	AggCount AggFn = "count"
	AggSum   AggFn = "sum"
	AggAvg   AggFn = "avg"
	AggMin   AggFn = "min"
	AggMax   AggFn = "max"
)

// Filter is one predicate on one column. Values is set for [OpIn], Value for
// every other operator. Values are kept as their original string literals;
// the parser has already checked they parse into the column's semantic type.
type Filter struct {
	Column string
	Op     FilterOp
	Value  string
	Values []string
}

// Sort is one ordering term.
type Sort struct {
	Column     string
	Descending bool
}

// Aggregate is one aggregate function application.
type Aggregate struct {
	Column string
	Fn     AggFn
}

// ResultColumn is the name of the aggregated column in the result rows.
func (a Aggregate) ResultColumn() string {
	return a.Column + "__" + string(a.Fn)
}

// Plan is the normalized, validated form of one data query. It is an owned,
// immutable value: the parser builds it, the compiler reads it.
type Plan struct {
	Filters    []Filter
	Sorts      []Sort
	Projection []string
	GroupBy    []string
	Aggregates []Aggregate

	Page     int
	PageSize int
}

// Aggregated reports whether the plan rewrites the row set through grouping
// or aggregate functions.
func (p *Plan) Aggregated() bool {
	return len(p.GroupBy) > 0 || len(p.Aggregates) > 0
}

// AggregationProjection returns the effective output columns of an aggregated
// plan: the group-by columns followed by the aggregate result columns.
func (p *Plan) AggregationProjection() []string {
	out := make([]string, 0, len(p.GroupBy)+len(p.Aggregates))
	out = append(out, p.GroupBy...)
	for _, agg := range p.Aggregates {
		out = append(out, agg.ResultColumn())
	}
	return out
}

// OutputColumns returns the column names a result row will carry, in order,
// or nil when the downstream decides (no projection, no aggregation).
func (p *Plan) OutputColumns() []string {
	if p.Aggregated() {
		return p.AggregationProjection()
	}
	if len(p.Projection) > 0 {
		return p.Projection
	}
	return nil
}
