// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter("test", 0.001, 2)
	h := rl.Middleware()(http.HandlerFunc(simpleOKHandler))

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		return executeRequest(h, req).Code
	}

	for i := range 2 {
		if code := send("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d Status = %d, want 200", i, code)
		}
	}
	if code := send("10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("over burst Status = %d, want 429", code)
	}
	if code := send("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("other client Status = %d, want 200", code)
	}
}

func TestLimiterCacheGetSameInstance(t *testing.T) {
	lc := newLimiterCache[string](1, 1)

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() { lc.get("k") })
	}
	wg.Wait()

	if lc.get("k") != lc.get("k") {
		t.Error("get() returned different limiters for the same key")
	}
	if n := lc.size(); n != 1 {
		t.Errorf("size() = %d, want 1", n)
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	for i := range 5 {
		lc.get(fmt.Sprintf("ip-%d", i))
	}

	if lc.clearIfExceeds(10) {
		t.Error("clearIfExceeds(10) = true, want false")
	}
	if !lc.clearIfExceeds(3) {
		t.Error("clearIfExceeds(3) = false, want true")
	}
	if n := lc.size(); n != 0 {
		t.Errorf("size() = %d, want 0", n)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.168.1.1:8080", "192.168.1.1"},
		{"[::1]:443", "::1"},
		{"203.0.113.9", "203.0.113.9"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}
