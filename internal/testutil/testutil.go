// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the newsroom packages.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/newsroom/internal/model"
	"github.com/olegiv/newsroom/internal/store"
)

// TestSecret is a token secret long enough to pass configuration checks.
const TestSecret = "test-secret-test-secret-test-secret"

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "newsroom-test.db")

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// CreateUser inserts a user and returns its id.
func CreateUser(t *testing.T, db *sql.DB, email string) string {
	t.Helper()
	res, err := store.New(db).InsertUser(context.Background(), store.InsertUserParams{
		Email: email,
		Name:  email,
	})
	if err != nil {
		t.Fatalf("InsertUser(%s): %v", email, err)
	}
	return res.InsertedID
}

// CreateAdmin inserts a user with the admin role and returns its id.
func CreateAdmin(t *testing.T, db *sql.DB, email string) string {
	t.Helper()
	id := CreateUser(t, db, email)
	if _, err := store.New(db).SetUserRole(context.Background(), id, model.RoleAdmin); err != nil {
		t.Fatalf("SetUserRole(%s): %v", email, err)
	}
	return id
}

// CreatePremiumUser inserts a user with a premium window opened now.
func CreatePremiumUser(t *testing.T, db *sql.DB, email string) {
	t.Helper()
	if _, err := store.New(db).UpsertPremiumTaken(context.Background(), email, time.Now()); err != nil {
		t.Fatalf("UpsertPremiumTaken(%s): %v", email, err)
	}
}
