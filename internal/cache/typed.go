// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// TypedCache provides type-safe caching over a Cacher, storing values as JSON.
// A nil *TypedCache is valid and caches nothing.
type TypedCache[T any] struct {
	cache Cacher
	ttl   time.Duration
}

// NewTypedCache creates a new TypedCache wrapping the given cache.
func NewTypedCache[T any](cache Cacher, ttl time.Duration) *TypedCache[T] {
	if cache == nil {
		return nil
	}
	return &TypedCache[T]{cache: cache, ttl: ttl}
}

// Get retrieves a value. Misses, backend errors and undecodable entries all
// report false.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T
	if c == nil {
		return value, false
	}
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false
	}
	return value, true
}

// Set stores a value with the default TTL.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value T) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, key, data, c.ttl)
}

// GetOrSet returns the cached value for key, or computes it with fn and
// stores it. A failing cache never fails the call.
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	value, err := fn(ctx)
	if err != nil {
		return value, err
	}

	if err := c.Set(ctx, key, value); err != nil {
		slog.Debug("cache set failed", "key", key, "error", err)
	}
	return value, nil
}

// Invalidate removes every entry whose key starts with prefix.
func (c *TypedCache[T]) Invalidate(ctx context.Context, prefix string) {
	if c == nil {
		return
	}
	if err := c.cache.DeleteByPrefix(ctx, prefix); err != nil {
		slog.Warn("cache invalidation failed", "prefix", prefix, "error", err)
	}
}
