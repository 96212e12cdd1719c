// Copyright (c) 2026 Tabulaire. All rights reserved.

/*
Package query implements the suffix-operator DSL of the gateway: parsing the
flat query-string multimap into a validated [Plan], and compiling that plan
into the downstream table service's wire syntax.

Architecture:

  - operators.go: the static operator table — every suffix with its kind and
    allowed semantic types. No runtime reflection; legality is a map lookup.
  - pairs.go: order-preserving query-string scanning.
  - parser.go: multimap → Plan, validated against the resource profile.
  - compiler.go: Plan → PostgREST filter/order/select syntax + row window.
*/
package query

// SemanticType is the inferred type of a profile column. It governs which
// operators are legal on the column.
type SemanticType string

const (
	TypeString   SemanticType = "string"
	TypeInt      SemanticType = "int"
	TypeFloat    SemanticType = "float"
	TypeBool     SemanticType = "bool"
	TypeDate     SemanticType = "date"
	TypeDateTime SemanticType = "datetime"
	TypeJSON     SemanticType = "json"
)

// NormalizeType maps a profile-declared type onto a known [SemanticType].
// Unknown declarations degrade to string, which only permits the universal
// operators.
func NormalizeType(raw string) SemanticType {
	switch t := SemanticType(raw); t {
	case TypeString, TypeInt, TypeFloat, TypeBool, TypeDate, TypeDateTime, TypeJSON:
		return t
	default:
		return TypeString
	}
}

// Suffix is a DSL token appended after "__" to a column name in a
// query-string key.
type Suffix string

const (
	SuffixSort Suffix = "sort"

	SuffixExact           Suffix = "exact"
	SuffixDiffers         Suffix = "differs"
	SuffixContains        Suffix = "contains"
	SuffixIn              Suffix = "in"
	SuffixLess            Suffix = "less"
	SuffixGreater         Suffix = "greater"
	SuffixStrictlyLess    Suffix = "strictly_less"
	SuffixStrictlyGreater Suffix = "strictly_greater"

	SuffixGroupBy Suffix = "groupby"
	SuffixCount   Suffix = "count"
	SuffixSum     Suffix = "sum"
	SuffixAvg     Suffix = "avg"
	SuffixMin     Suffix = "min"
	SuffixMax     Suffix = "max"
)

var (
	comparableTypes = []SemanticType{TypeInt, TypeFloat, TypeDate, TypeDateTime}
	numericTypes    = []SemanticType{TypeInt, TypeFloat}
)

// allowedTypes lists, per suffix, the semantic types the operator accepts.
// A nil entry means the operator is legal on every type.
var allowedTypes = map[Suffix][]SemanticType{
	SuffixSort:            nil,
	SuffixExact:           nil,
	SuffixDiffers:         nil,
	SuffixContains:        {TypeString},
	SuffixIn:              nil,
	SuffixLess:            comparableTypes,
	SuffixGreater:         comparableTypes,
	SuffixStrictlyLess:    comparableTypes,
	SuffixStrictlyGreater: comparableTypes,
	SuffixGroupBy:         nil,
	SuffixCount:           nil,
	SuffixSum:             numericTypes,
	SuffixAvg:             numericTypes,
	SuffixMin:             nil,
	SuffixMax:             nil,
}

// filterOps maps filter suffixes onto the plan-level operator.
var filterOps = map[Suffix]FilterOp{
	SuffixExact:           OpExact,
	SuffixDiffers:         OpDiffers,
	SuffixContains:        OpContains,
	SuffixIn:              OpIn,
	SuffixLess:            OpLess,
	SuffixGreater:         OpGreater,
	SuffixStrictlyLess:    OpStrictlyLess,
	SuffixStrictlyGreater: OpStrictlyGreater,
}

// aggFns maps aggregation suffixes onto the plan-level aggregate function.
var aggFns = map[Suffix]AggFn{
	SuffixCount: AggCount,
	SuffixSum:   AggSum,
	SuffixAvg:   AggAvg,
	SuffixMin:   AggMin,
	SuffixMax:   AggMax,
}

// Known reports whether the suffix belongs to the operator table.
func Known(suffix Suffix) bool {
	_, ok := allowedTypes[suffix]
	return ok
}

// Legal reports whether the operator may be applied to a column of the given
// semantic type.
func Legal(semanticType SemanticType, suffix Suffix) bool {
	allowed, ok := allowedTypes[suffix]
	if !ok {
		return false
	}
	if allowed == nil {
		return true
	}
	for _, t := range allowed {
		if t == semanticType {
			return true
		}
	}
	return false
}

// Suffixes returns the full operator table in a stable order, for consumers
// that enumerate operators per column (the swagger generator).
func Suffixes() []Suffix {
	return []Suffix{
		SuffixExact, SuffixDiffers, SuffixContains, SuffixIn,
		SuffixLess, SuffixGreater, SuffixStrictlyLess, SuffixStrictlyGreater,
		SuffixSort,
		SuffixGroupBy, SuffixCount, SuffixAvg, SuffixMin, SuffixMax, SuffixSum,
	}
}

// IsAggregator reports whether the suffix is a grouping or aggregate operator.
func IsAggregator(suffix Suffix) bool {
	if suffix == SuffixGroupBy {
		return true
	}
	_, ok := aggFns[suffix]
	return ok
}
