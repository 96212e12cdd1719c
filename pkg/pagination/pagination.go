// Copyright (c) 2026 Tabulaire. All rights reserved.

// Package pagination provides shared types and helpers for paged API
// responses.
//
// # Overview
//
// It standardizes how page-based navigation maps onto row windows and how
// the resulting metadata is delivered in the API response envelope. Totals
// are optional: a downstream service may decline to count, and the envelope
// carries null rather than a guess.
package pagination

// Params holds a validated page and page size.
type Params struct {
	Page     int
	PageSize int
}

// Offset returns the zero-based index of the first row of the page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// LastRow returns the zero-based index of the last row of the page,
// inclusive, as row-window headers expect it.
func (p Params) LastRow() int {
	return p.Offset() + p.PageSize - 1
}

// Meta is the pagination metadata included in paged responses. Total is nil
// when the row count is unknown.
type Meta struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    *int64 `json:"total"`
}

// NewMeta constructs pagination metadata for a response.
func NewMeta(params Params, total *int64) Meta {
	return Meta{
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
	}
}

// HasNext reports whether another page exists after the current one.
//
// With a known total the answer is exact. With an unknown total a full page
// is taken as evidence of more rows; the worst case is one empty final page.
func (m Meta) HasNext(rowsOnPage int) bool {
	if m.Total != nil {
		return int64(m.Page)*int64(m.PageSize) < *m.Total
	}
	return rowsOnPage == m.PageSize && rowsOnPage > 0
}

// HasPrev reports whether a previous page exists.
func (m Meta) HasPrev() bool {
	return m.Page > 1
}
