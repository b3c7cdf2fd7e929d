// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/docgen"
	"github.com/joho/godotenv"

	"github.com/olegiv/newsroom/internal/auth"
	"github.com/olegiv/newsroom/internal/cache"
	"github.com/olegiv/newsroom/internal/config"
	"github.com/olegiv/newsroom/internal/handler/api"
	"github.com/olegiv/newsroom/internal/payment"
	"github.com/olegiv/newsroom/internal/scheduler"
	"github.com/olegiv/newsroom/internal/service"
	"github.com/olegiv/newsroom/internal/store"
	"github.com/olegiv/newsroom/internal/version"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	showRoutes := flag.Bool("routes", false, "Print the route table as markdown and exit")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "newsroom - news publishing API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSROOM_TOKEN_SECRET          Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSROOM_DB_PATH               SQLite database path (default: ./data/newsroom.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSROOM_SERVER_PORT           Server port (default: 5000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSROOM_ENV                   Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSROOM_STRIPE_SECRET_KEY     Stripe secret key (optional, enables payments)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSROOM_REDIS_URL             Redis URL for shared caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSROOM_PROTECT_ADMIN_ROUTES  Require an admin token on moderation routes (default: false)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSROOM_ADMIN_EMAIL           Admin account created at startup (optional)\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Println(version.Get().String())
		os.Exit(0)
	}

	if *showRoutes {
		_, _ = fmt.Println(routesDoc())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// routesDoc renders the route table without opening the database.
func routesDoc() string {
	h := api.NewHandler(api.Deps{})
	r := newRouter(h.Routes(api.DefaultRouterOptions()))
	return docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
		ProjectPath: "github.com/olegiv/newsroom",
		Intro:       "Routes served by the newsroom API.",
	})
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	slog.Info("starting newsroom", "version", version.Version, "commit", version.GitCommit)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	ctx := context.Background()
	if err := store.SeedAdmin(ctx, db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	slog.Info("database ready")

	cacher, backend := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheDuration(),
	})
	defer func() { _ = cacher.Close() }()
	slog.Info("cache initialized", "backend", backend)

	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	users := service.NewUserService(db, tokens)

	var payments payment.IntentCreator = payment.Disabled{}
	if cfg.PaymentsEnabled() {
		payments = payment.NewStripeGateway(cfg.StripeSecretKey)
		slog.Info("stripe payments enabled")
	} else {
		slog.Warn("NEWSROOM_STRIPE_SECRET_KEY not set, payment intents disabled")
	}

	sched := scheduler.New(users, cfg.PremiumSweep, cfg.PremiumPeriod, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	h := api.NewHandler(api.Deps{
		DB:         db,
		Tokens:     tokens,
		Users:      users,
		Articles:   service.NewArticleService(db, cacher, cfg.CacheDuration()),
		Publishers: service.NewPublisherService(db, cacher, cfg.CacheDuration()),
		Payments:   payments,
		Cache:      cacher,
	})
	if !cfg.ProtectAdminRoutes {
		slog.Warn("admin routes are public; set NEWSROOM_PROTECT_ADMIN_ROUTES=true to require an admin token")
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           newRouter(h.Routes(routerOptions(cfg))),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
