// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/olegiv/newsroom/internal/middleware"
)

// RouterOptions configure the middleware around the API routes.
type RouterOptions struct {
	CORSOrigins []string
	// ProtectAdmin puts the moderation and user administration routes behind
	// a bearer token of a user whose stored role is admin.
	ProtectAdmin   bool
	RequestTimeout time.Duration
	// Per client IP limits for all routes and for POST /jwt.
	RateLimit      float64
	RateBurst      int
	TokenRateLimit float64
	TokenRateBurst int
}

// DefaultRouterOptions returns the options used when nothing is configured.
func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		CORSOrigins:    []string{"http://localhost:5173", "http://localhost:5174"},
		RequestTimeout: 30 * time.Second,
		RateLimit:      20,
		RateBurst:      40,
		TokenRateLimit: 5.0 / 60.0,
		TokenRateBurst: 5,
	}
}

// Routes builds the API router.
func (h *Handler) Routes(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if opts.RateLimit > 0 {
		r.Use(middleware.NewRateLimiter("api", opts.RateLimit, opts.RateBurst).Middleware())
	}
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	r.Use(render.SetContentType(render.ContentTypeJSON))

	guard := middleware.BearerAuth(h.tokens)
	viewer := middleware.OptionalBearer(h.tokens)

	adminOnly := []func(http.Handler) http.Handler{viewer}
	if opts.ProtectAdmin {
		adminOnly = []func(http.Handler) http.Handler{guard, middleware.RequireAdmin(h.users.IsAdmin)}
	}

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	// Auth
	tokenRoute := r.With()
	if opts.TokenRateLimit > 0 {
		tokenRoute = r.With(middleware.NewRateLimiter("token", opts.TokenRateLimit, opts.TokenRateBurst).Middleware())
	}
	tokenRoute.Post("/jwt", h.IssueToken)
	r.With(guard, middleware.RequireOwnEmail("email")).Put("/update-password/{email}", h.UpdatePassword)

	// Users
	r.Post("/users", h.CreateUser)
	r.Get("/user/{email}", h.GetUser)
	r.Get("/usersCount", h.UsersCount)
	r.Put("/update-payment", h.UpdatePayment)
	r.Put("/update-user-premium/{email}", h.CancelPremium)
	r.Put("/update-user/{email}", h.UpdateUser)
	r.Get("/admin/{email}", h.AdminByEmail)

	// Articles
	r.Post("/articles", h.CreateArticle)
	r.Get("/allAuthors", h.AllAuthors)
	r.With(guard, middleware.RequireOwnEmail("email")).Get("/my-articles/{email}", h.MyArticles)
	// Premium descriptions are withheld from readers without access.
	r.Group(func(r chi.Router) {
		r.Use(viewer)

		r.Get("/articles", h.ListArticles)
		r.Get("/premiumArticles", h.PremiumArticles)
		r.Get("/top-articles", h.TopArticles)
		r.Get("/getRecentQueries", h.SearchArticles)
		r.Get("/getAuthorQueries", h.AuthorQueries)
		r.Get("/details/{id}", h.ArticleDetails)
		r.Get("/article-writing/{email}", h.ArticlesByWriter)
	})
	r.Delete("/delete-article/{id}", h.DeleteArticle)
	r.Put("/update-article/{id}", h.UpdateArticle)
	r.Put("/news/{id}", h.RecordView)
	r.Get("/articles-publisher", h.ArticlesByPublisher)
	r.Get("/articles-status-count", h.ArticlesStatusCount)

	// Publishers
	r.Get("/publishers", h.ListPublishers)

	// Payments
	r.Post("/create-payment-intent", h.CreatePaymentIntent)

	// Moderation and user administration
	r.Group(func(r chi.Router) {
		r.Use(adminOnly...)

		r.Get("/users", h.ListUsers)
		r.Get("/admin-users", h.AdminUsers)
		r.Put("/update-user-role/{id}", h.MakeAdmin)
		r.Get("/admin-all-articles", h.AdminArticles)
		r.Put("/update-article-premium/{id}", h.PromoteArticle)
		r.Put("/approve-article/{id}", h.ApproveArticle)
		r.Put("/reason-decline/{id}", h.DeclineArticle)
		r.Post("/publishers", h.CreatePublisher)
	})

	return r
}
