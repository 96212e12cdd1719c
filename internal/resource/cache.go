// Copyright (c) 2026 Tabulaire. All rights reserved.

package resource

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/tabulaire/internal/platform/constants"
	"github.com/taibuivan/tabulaire/internal/platform/ctxutil"
)

// Cache is a Redis read-through cache for directory lookups. The zero value
// and a nil pointer are both valid and disable caching, so the directory can
// run without Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client. client may be nil to disable caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

// cachedProfile is the stored form of a [Profile]; the type map is rebuilt
// from the raw document on load.
type cachedProfile struct {
	Header []string        `json:"header"`
	Raw    json.RawMessage `json:"raw"`
}

// GetRef returns the cached reference for the resource, or nil on any miss
// or error. Cache failures never fail the request.
func (c *Cache) GetRef(ctx context.Context, resourceID string) *Ref {
	if c == nil {
		return nil
	}

	payload, err := c.client.Get(ctx, constants.RedisPrefixResource+resourceID).Bytes()
	if err != nil {
		if err != redis.Nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "cache_read_failed", slog.Any("error", err))
		}
		return nil
	}

	var ref Ref
	if err := json.Unmarshal(payload, &ref); err != nil {
		return nil
	}
	return &ref
}

// SetRef stores a resolved reference, best effort.
func (c *Cache) SetRef(ctx context.Context, ref *Ref) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(ref)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, constants.RedisPrefixResource+ref.ResourceID, payload, c.ttl).Err(); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "cache_write_failed", slog.Any("error", err))
	}
}

// GetProfile returns the cached profile for the resource, or nil on a miss.
func (c *Cache) GetProfile(ctx context.Context, resourceID string) *Profile {
	if c == nil {
		return nil
	}

	payload, err := c.client.Get(ctx, constants.RedisPrefixProfile+resourceID).Bytes()
	if err != nil {
		if err != redis.Nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "cache_read_failed", slog.Any("error", err))
		}
		return nil
	}

	var stored cachedProfile
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil
	}
	profile, err := newProfile(stored.Raw)
	if err != nil {
		return nil
	}
	return profile
}

// SetProfile stores a profile, best effort.
func (c *Cache) SetProfile(ctx context.Context, resourceID string, profile *Profile) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(cachedProfile{Header: profile.Header, Raw: profile.Raw})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, constants.RedisPrefixProfile+resourceID, payload, c.ttl).Err(); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "cache_write_failed", slog.Any("error", err))
	}
}
