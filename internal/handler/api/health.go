// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/olegiv/newsroom/internal/cache"
	"github.com/olegiv/newsroom/internal/version"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status   string      `json:"status"`
	Version  string      `json:"version"`
	Database Check       `json:"database"`
	Cache    *CacheCheck `json:"cache,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency"`
}

// CacheCheck reports the aggregation cache. Stats are present when the
// backend keeps counters.
type CacheCheck struct {
	Check
	Stats *cache.Stats `json:"stats,omitempty"`
}

// pinger is implemented by caches backed by a remote server.
type pinger interface {
	Ping(ctx context.Context) error
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "Hello World!")
}

// Health handles GET /health. It answers 503 when the database is
// unreachable. An unreachable cache only marks the service degraded, since
// reads fall through to the database.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	db := h.checkDatabase(r)

	status := HealthStatus{Status: "healthy", Version: version.Version, Database: db}
	if h.cache != nil {
		status.Cache = h.checkCache(r)
		if status.Cache.Status != "healthy" {
			status.Status = "degraded"
		}
	}
	if db.Status != "healthy" {
		status.Status = "degraded"
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}

func (h *Handler) checkDatabase(r *http.Request) Check {
	start := time.Now()

	err := h.db.PingContext(r.Context())
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}

	return Check{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

func (h *Handler) checkCache(r *http.Request) *CacheCheck {
	start := time.Now()
	check := &CacheCheck{Check: Check{Status: "healthy"}}

	if p, ok := h.cache.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			check.Status = "unhealthy"
			check.Message = err.Error()
		}
	}
	check.Latency = time.Since(start).String()

	if sp, ok := h.cache.(cache.StatsProvider); ok {
		stats := sp.Stats()
		check.Stats = &stats
	}
	return check
}
