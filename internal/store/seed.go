// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/newsroom/internal/auth"
	"github.com/olegiv/newsroom/internal/model"
)

// DefaultAdminName is the display name given to a seeded admin.
const DefaultAdminName = "Administrator"

// SeedAdmin makes sure an admin account with the given credentials exists.
// An existing user with that email is promoted; its password is left alone.
// Seeding is skipped when email is empty.
func SeedAdmin(ctx context.Context, db *sql.DB, email, password string) error {
	if email == "" {
		return nil
	}
	queries := New(db)

	existing, err := queries.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			slog.Info("admin user already exists, skipping seed", "email", email)
			return nil
		}
		if _, err := queries.SetUserRole(ctx, existing.ID, model.RoleAdmin); err != nil {
			return fmt.Errorf("promoting admin user: %w", err)
		}
		slog.Info("promoted existing user to admin", "email", email)
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("checking for admin user: %w", err)
	}

	if err := auth.ValidatePassword(password); err != nil {
		return fmt.Errorf("admin password: %w", err)
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	res, err := queries.InsertUser(ctx, InsertUserParams{
		Email:        email,
		Name:         DefaultAdminName,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}
	if _, err := queries.SetUserRole(ctx, res.InsertedID, model.RoleAdmin); err != nil {
		return fmt.Errorf("promoting admin user: %w", err)
	}

	slog.Info("created admin user", "id", res.InsertedID, "email", email)
	return nil
}
