// Copyright (c) 2026 Tabulaire. All rights reserved.

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tabulaire/internal/query"
)

/*
TestParsePairs verifies order preservation, duplicate keys, bare keys, and
percent decoding.
*/
func TestParsePairs(t *testing.T) {
	pairs, err := query.ParsePairs("b__exact=2&a__exact=1&a__exact=3&flag__count&name__contains=a%20b")
	require.NoError(t, err)
	require.Len(t, pairs, 5)

	// Wire order survives, duplicates included
	assert.Equal(t, "b__exact", pairs[0].Key)
	assert.Equal(t, "a__exact", pairs[1].Key)
	assert.Equal(t, "a__exact", pairs[2].Key)
	assert.Equal(t, "3", pairs[2].Value)

	// Bare keys are distinguishable from empty values
	assert.False(t, pairs[3].HasValue)
	assert.Empty(t, pairs[3].Value)

	// Percent decoding applies to values
	assert.Equal(t, "a b", pairs[4].Value)
}

/*
TestParsePairs_Malformed verifies the failure mode of broken escapes.
*/
func TestParsePairs_Malformed(t *testing.T) {
	_, err := query.ParsePairs("name__exact=%zz")
	assert.Error(t, err)

	// Empty segments are skipped, not errors
	pairs, err := query.ParsePairs("&&a__exact=1&")
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}
