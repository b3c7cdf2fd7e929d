// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// skipIfNoRedis skips the test if Redis is not configured.
func skipIfNoRedis(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NEWSROOM_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: NEWSROOM_TEST_REDIS_URL not set")
	}
	return url
}

func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	url := skipIfNoRedis(t)

	opts := DefaultRedisCacheOptions()
	opts.URL = url
	opts.Prefix = "newsroom-test:"
	cache, err := NewRedisCache(opts)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Clear(context.Background())
		_ = cache.Close()
	})
	return cache
}

func TestRedisCache_Basic(t *testing.T) {
	cache := newTestRedisCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := cache.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want %q", got, "v")
	}

	if err := cache.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete error = %v, want ErrCacheMiss", err)
	}
}

func TestRedisCache_DeleteByPrefix(t *testing.T) {
	cache := newTestRedisCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "articles:status", []byte("1"), time.Minute)
	_ = cache.Set(ctx, "publishers:all", []byte("1"), time.Minute)

	if err := cache.DeleteByPrefix(ctx, "articles:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	if _, err := cache.Get(ctx, "articles:status"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("articles:status should be gone, err = %v", err)
	}
	if _, err := cache.Get(ctx, "publishers:all"); err != nil {
		t.Errorf("publishers:all should remain, err = %v", err)
	}
}

func TestRedisCache_Ping(t *testing.T) {
	cache := newTestRedisCache(t)
	if err := cache.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestNewRedisCache_RequiresURL(t *testing.T) {
	if _, err := NewRedisCache(RedisCacheOptions{}); err == nil {
		t.Error("NewRedisCache without URL should fail")
	}
}
