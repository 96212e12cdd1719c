// Copyright (c) 2026 Tabulaire. All rights reserved.

package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/tabulaire/pkg/pagination"
)

func ptr(v int64) *int64 { return &v }

/*
TestParams_Offset verifies the page-to-offset arithmetic.
*/
func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 20, pagination.Params{Page: 2, PageSize: 20}.Offset())
	assert.Equal(t, 60, pagination.Params{Page: 3, PageSize: 30}.Offset())
	assert.Equal(t, 89, pagination.Params{Page: 3, PageSize: 30}.LastRow())
}

/*
TestMeta_HasNext verifies next-page detection with known and unknown totals.
*/
func TestMeta_HasNext(t *testing.T) {
	// Known total: exact arithmetic
	meta := pagination.NewMeta(pagination.Params{Page: 2, PageSize: 30}, ptr(61))
	assert.True(t, meta.HasNext(30))

	meta = pagination.NewMeta(pagination.Params{Page: 2, PageSize: 30}, ptr(60))
	assert.False(t, meta.HasNext(30))

	// Unknown total: a full page implies more
	meta = pagination.NewMeta(pagination.Params{Page: 1, PageSize: 20}, nil)
	assert.True(t, meta.HasNext(20))
	assert.False(t, meta.HasNext(19))
	assert.False(t, meta.HasNext(0))
}

/*
TestMeta_HasPrev verifies previous-page detection.
*/
func TestMeta_HasPrev(t *testing.T) {
	assert.False(t, pagination.NewMeta(pagination.Params{Page: 1, PageSize: 20}, nil).HasPrev())
	assert.True(t, pagination.NewMeta(pagination.Params{Page: 2, PageSize: 20}, nil).HasPrev())
}
