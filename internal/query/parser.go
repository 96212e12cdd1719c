// Copyright (c) 2026 Tabulaire. All rights reserved.

package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/tabulaire/internal/platform/apperr"
)

// Reserved query keys, processed outside the operator table.
const (
	keyPage     = "page"
	keyPageSize = "page_size"
	keyColumns  = "columns"
)

// Options bound the parser to the current resource and configuration.
type Options struct {
	// PageSizeDefault applies when the request carries no page_size.
	PageSizeDefault int
	// PageSizeMax caps page_size; larger requests are rejected.
	PageSizeMax int
	// AllowedColumns restricts clauses to an indexed-columns whitelist.
	// nil means every profile column is usable.
	AllowedColumns map[string]bool
}

// Parse turns the ordered query pairs into a validated [Plan].
//
// Every column referenced by any clause must exist in types (the profile's
// column → semantic-type map, case- and punctuation-sensitive), and every
// operator must be legal on its column's type. Violations surface as
// [apperr.AppError] values with the invalid_parameter / invalid_value codes.
func Parse(pairs []Pair, types map[string]SemanticType, opts Options) (*Plan, error) {
	plan := &Plan{
		Page:     1,
		PageSize: opts.PageSizeDefault,
	}

	for _, pair := range pairs {
		switch pair.Key {
		case keyPage:
			page, err := strconv.Atoi(pair.Value)
			if err != nil || page < 1 {
				return nil, apperr.InvalidValue("", keyPage, pair.Value, "page must be a positive integer")
			}
			plan.Page = page

		case keyPageSize:
			size, err := strconv.Atoi(pair.Value)
			if err != nil || size < 1 {
				return nil, apperr.InvalidValue("", keyPageSize, pair.Value, "page_size must be a positive integer")
			}
			if size > opts.PageSizeMax {
				return nil, apperr.InvalidValue("", keyPageSize, pair.Value,
					fmt.Sprintf("page size exceeds allowed maximum: %d", opts.PageSizeMax))
			}
			plan.PageSize = size

		case keyColumns:
			projection, err := parseProjection(pair.Value, types)
			if err != nil {
				return nil, err
			}
			plan.Projection = append(plan.Projection, projection...)

		default:
			if err := parseClause(plan, pair, types, opts); err != nil {
				return nil, err
			}
		}
	}

	if err := checkAggregation(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// parseClause interprets one `<column>__<suffix>` key. Keys without the
// separator are ignored: they are the reserved extension surface.
func parseClause(plan *Plan, pair Pair, types map[string]SemanticType, opts Options) error {
	idx := strings.LastIndex(pair.Key, "__")
	if idx <= 0 {
		return nil
	}
	column := pair.Key[:idx]
	suffix := Suffix(strings.ToLower(pair.Key[idx+2:]))

	if !Known(suffix) {
		return apperr.InvalidParameter(column, string(suffix),
			fmt.Sprintf("unknown operator %q on column %q", suffix, column))
	}

	semanticType, exists := types[column]
	if !exists {
		return apperr.InvalidParameter(column, string(suffix),
			fmt.Sprintf("unknown column %q", column))
	}
	if opts.AllowedColumns != nil && !opts.AllowedColumns[column] {
		return apperr.ColumnNotAllowed(column)
	}
	if !Legal(semanticType, suffix) {
		return apperr.InvalidParameter(column, string(suffix),
			fmt.Sprintf("operator %q is not allowed on column %q of type %q", suffix, column, semanticType))
	}

	switch {
	case suffix == SuffixSort:
		descending, err := parseDirection(column, pair.Value)
		if err != nil {
			return err
		}
		plan.Sorts = append(plan.Sorts, Sort{Column: column, Descending: descending})

	case suffix == SuffixGroupBy:
		if pair.HasValue {
			return apperr.InvalidValue(column, string(suffix), pair.Value, "groupby takes no value")
		}
		plan.GroupBy = append(plan.GroupBy, column)

	case IsAggregator(suffix):
		if pair.HasValue {
			return apperr.InvalidValue(column, string(suffix), pair.Value,
				fmt.Sprintf("%s takes no value", suffix))
		}
		plan.Aggregates = append(plan.Aggregates, Aggregate{Column: column, Fn: aggFns[suffix]})

	case suffix == SuffixIn:
		values := strings.Split(pair.Value, ",")
		for _, value := range values {
			if err := checkScalar(semanticType, column, suffix, value); err != nil {
				return err
			}
		}
		plan.Filters = append(plan.Filters, Filter{Column: column, Op: OpIn, Values: values})

	default:
		if err := checkScalar(semanticType, column, suffix, pair.Value); err != nil {
			return err
		}
		plan.Filters = append(plan.Filters, Filter{Column: column, Op: filterOps[suffix], Value: pair.Value})
	}
	return nil
}

// parseProjection validates a comma-separated `columns=` list against the profile.
func parseProjection(raw string, types map[string]SemanticType) ([]string, error) {
	var projection []string
	for _, column := range strings.Split(raw, ",") {
		if column == "" {
			return nil, apperr.InvalidValue("", keyColumns, raw, "empty column name in projection")
		}
		if column == "*" {
			// Wildcard projection is the same as no projection.
			return nil, nil
		}
		if _, exists := types[column]; !exists && column != "__id" {
			return nil, apperr.InvalidParameter(column, keyColumns,
				fmt.Sprintf("unknown column %q in projection", column))
		}
		projection = append(projection, column)
	}
	return projection, nil
}

func parseDirection(column, value string) (descending bool, err error) {
	switch value {
	case "asc":
		return false, nil
	case "desc":
		return true, nil
	default:
		return false, apperr.InvalidValue(column, string(SuffixSort), value, "sort direction must be asc or desc")
	}
}

// checkAggregation enforces the cross-clause invariants of aggregated plans.
func checkAggregation(plan *Plan) error {
	if !plan.Aggregated() {
		return nil
	}

	if len(plan.Sorts) > 0 {
		return apperr.InvalidParameter(plan.Sorts[0].Column, string(SuffixSort),
			"sort cannot be combined with aggregation")
	}

	// An explicit projection must match the derived aggregation output.
	// Compared as sets so repeated columns cannot stand in for missing ones.
	if len(plan.Projection) > 0 {
		derived := make(map[string]bool)
		for _, column := range plan.AggregationProjection() {
			derived[column] = true
		}
		supplied := make(map[string]bool)
		for _, column := range plan.Projection {
			if !derived[column] {
				return apperr.InvalidParameter(column, keyColumns,
					fmt.Sprintf("column %q is not part of the aggregation output", column))
			}
			supplied[column] = true
		}
		if len(supplied) != len(derived) {
			return apperr.InvalidParameter("", keyColumns,
				"columns must match the aggregation output columns")
		}
		// The derived order is authoritative.
		plan.Projection = nil
	}
	return nil
}

// # Scalar Validation

// Accepted layouts for date and datetime literals. Bare years and
// year-month prefixes are accepted the way the downstream service accepts
// them on range predicates.
var (
	dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

	datetimeLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"2006-01",
		"2006",
	}
)

// checkScalar verifies that the literal parses into the column's semantic
// type. The literal itself is forwarded downstream unchanged.
func checkScalar(semanticType SemanticType, column string, suffix Suffix, value string) error {
	var err error
	switch semanticType {
	case TypeInt:
		_, err = strconv.ParseInt(value, 10, 64)
	case TypeFloat:
		_, err = strconv.ParseFloat(value, 64)
	case TypeBool:
		_, err = strconv.ParseBool(value)
	case TypeDate:
		err = checkTimeLayouts(value, dateLayouts)
	case TypeDateTime:
		err = checkTimeLayouts(value, datetimeLayouts)
	default:
		// string and json accept any literal
		return nil
	}

	if err != nil {
		return apperr.InvalidValue(column, string(suffix), value,
			fmt.Sprintf("value %q is not a valid %s for column %q", value, semanticType, column))
	}
	return nil
}

func checkTimeLayouts(value string, layouts []string) error {
	for _, layout := range layouts {
		if _, err := time.Parse(layout, value); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no matching time layout for %q", value)
}
