// Copyright (c) 2026 Tabulaire. All rights reserved.

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tabulaire/internal/platform/config"
)

/*
TestLoad_Defaults verifies default values with only the required endpoint set.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_ENDPOINT", "http://postgrest:3000")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8005, cfg.ServerPort)
	assert.Equal(t, 20, cfg.PageSizeDefault)
	assert.Equal(t, 50, cfg.PageSizeMax)
	assert.Equal(t, 5000, cfg.BatchSize)
	assert.Equal(t, "http", cfg.Scheme)
	assert.Equal(t, "http://postgrest:3000", cfg.Downstream())
	assert.Equal(t, "http://localhost:8005", cfg.PublicBaseURL())
}

/*
TestLoad_EndpointFallback verifies the alternate endpoint key and the scheme
prefix guarantee.
*/
func TestLoad_EndpointFallback(t *testing.T) {
	t.Setenv("PGREST_ENDPOINT", "postgrest:3000/")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://postgrest:3000", cfg.Downstream())
}

/*
TestLoad_Validation verifies the startup invariants.
*/
func TestLoad_Validation(t *testing.T) {
	t.Run("missing endpoint", func(t *testing.T) {
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("bad scheme", func(t *testing.T) {
		t.Setenv("DB_ENDPOINT", "http://postgrest:3000")
		t.Setenv("SCHEME", "gopher")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("page size bounds", func(t *testing.T) {
		t.Setenv("DB_ENDPOINT", "http://postgrest:3000")
		t.Setenv("PAGE_SIZE_DEFAULT", "100")
		t.Setenv("PAGE_SIZE_MAX", "50")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("bad aggregation uuid", func(t *testing.T) {
		t.Setenv("DB_ENDPOINT", "http://postgrest:3000")
		t.Setenv("ALLOW_AGGREGATION", "not-a-uuid")
		_, err := config.Load()
		assert.Error(t, err)
	})
}

/*
TestAggregationOverlay verifies the whitelist set construction.
*/
func TestAggregationOverlay(t *testing.T) {
	t.Setenv("DB_ENDPOINT", "http://postgrest:3000")
	t.Setenv("ALLOW_AGGREGATION",
		"aaaaaaaa-1111-2222-3333-444444444444,bbbbbbbb-1111-2222-3333-444444444444")

	cfg, err := config.Load()
	require.NoError(t, err)

	overlay := cfg.AggregationOverlay()
	assert.Len(t, overlay, 2)
	assert.True(t, overlay["aaaaaaaa-1111-2222-3333-444444444444"])
}
