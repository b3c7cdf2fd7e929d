// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/newsroom/internal/config"
	"github.com/olegiv/newsroom/internal/handler/api"
)

// newRouter wraps the API routes with the request plumbing middleware.
func newRouter(apiRoutes http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Mount("/", apiRoutes)
	return r
}

// routerOptions maps the loaded configuration onto the API router options.
func routerOptions(cfg *config.Config) api.RouterOptions {
	opts := api.DefaultRouterOptions()
	opts.CORSOrigins = cfg.CORSOrigins
	opts.ProtectAdmin = cfg.ProtectAdminRoutes
	opts.RequestTimeout = cfg.RequestTimeout
	opts.RateLimit = cfg.RateLimit
	opts.RateBurst = cfg.RateBurst
	return opts
}
