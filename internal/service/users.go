// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/newsroom/internal/auth"
	"github.com/olegiv/newsroom/internal/model"
	"github.com/olegiv/newsroom/internal/store"
)

// RegisterInput is a sign-up request. Password is optional: users that
// sign in through the front end's identity provider have none until they
// set one.
type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Photo    string `json:"photo"`
	Password string `json:"password,omitempty"`
}

// ProfileUpdate is a partial profile edit. Nil fields are left untouched.
type ProfileUpdate struct {
	Name  *string `json:"name"`
	Photo *string `json:"photo"`
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users      []model.User `json:"users"`
	TotalPages int          `json:"totalPages"`
}

// UserService manages accounts, roles, passwords and premium windows.
type UserService struct {
	queries *store.Queries
	tokens  *auth.TokenManager
	now     func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, tokens *auth.TokenManager) *UserService {
	return &UserService{
		queries: store.New(db),
		tokens:  tokens,
		now:     time.Now,
	}
}

// Register creates a user. It returns ErrUserExists if the email is taken;
// the check is made by the storage unique index, not a prior lookup.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (store.InsertResult, error) {
	email, err := requireEmail(in.Email)
	if err != nil {
		return store.InsertResult{}, err
	}

	var hash string
	if in.Password != "" {
		if err := auth.ValidatePassword(in.Password); err != nil {
			return store.InsertResult{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if hash, err = auth.HashPassword(in.Password); err != nil {
			return store.InsertResult{}, fmt.Errorf("hashing password: %w", err)
		}
	}

	res, err := s.queries.InsertUser(ctx, store.InsertUserParams{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Photo:        strings.TrimSpace(in.Photo),
		PasswordHash: hash,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return store.InsertResult{}, ErrUserExists
	}
	if err != nil {
		return store.InsertResult{}, fmt.Errorf("inserting user: %w", err)
	}

	slog.Info("user registered", "id", res.InsertedID, "email", email)
	return res, nil
}

// IssueToken exchanges credentials for a signed token. Unknown users, users
// without a password and wrong passwords are indistinguishable to the caller.
func (s *UserService) IssueToken(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", validationError("email and password are required")
	}

	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return "", fmt.Errorf("getting user: %w", err)
	}
	if !user.HasPassword() {
		return "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Warn("stored password hash is unreadable", "email", email, "error", err)
		return "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if !ok {
		return "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if _, err := s.queries.SetPasswordHash(ctx, email, hash); err != nil {
				slog.Warn("password rehash failed", "email", email, "error", err)
			}
		}
	}

	token, err := s.tokens.Issue(auth.Principal{Email: user.Email, Role: user.Role})
	if err != nil {
		return "", err
	}
	return token, nil
}

// SetPassword replaces a user's password.
func (s *UserService) SetPassword(ctx context.Context, email, password string) (store.UpdateResult, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return store.UpdateResult{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("hashing password: %w", err)
	}
	res, err := s.queries.SetPasswordHash(ctx, email, hash)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("updating password: %w", err)
	}
	return res, nil
}

// Get returns the user with the given email, or nil if there is none.
func (s *UserService) Get(ctx context.Context, email string) (*model.User, error) {
	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &user, nil
}

// List returns all users in registration order.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Page returns one page of users for the dashboard. Pages past the end are
// empty.
func (s *UserService) Page(ctx context.Context, p model.Pagination) (UserPage, error) {
	total, err := s.queries.CountUsers(ctx)
	if err != nil {
		return UserPage{}, fmt.Errorf("counting users: %w", err)
	}
	if p.PastEnd(total) {
		return UserPage{Users: []model.User{}, TotalPages: p.TotalPages(total)}, nil
	}
	users, err := s.queries.ListUsersPage(ctx, store.ListUsersPageParams{Limit: p.Limit, Offset: p.Offset()})
	if err != nil {
		return UserPage{}, fmt.Errorf("listing users: %w", err)
	}
	return UserPage{Users: users, TotalPages: p.TotalPages(total)}, nil
}

// Counts returns the number of users and of premium users.
func (s *UserService) Counts(ctx context.Context) (model.UserCounts, error) {
	total, err := s.queries.CountUsers(ctx)
	if err != nil {
		return model.UserCounts{}, fmt.Errorf("counting users: %w", err)
	}
	premium, err := s.queries.CountPremiumUsers(ctx)
	if err != nil {
		return model.UserCounts{}, fmt.Errorf("counting premium users: %w", err)
	}
	return model.UserCounts{TotalUsers: total, PremiumUserCount: premium}, nil
}

// RecordPayment opens a premium window for email starting at at, or now
// when at is nil. A user record is created if none exists.
func (s *UserService) RecordPayment(ctx context.Context, email string, at *time.Time) (store.UpdateResult, error) {
	email, err := requireEmail(email)
	if err != nil {
		return store.UpdateResult{}, err
	}
	start := s.now()
	if at != nil {
		start = *at
	}

	res, err := s.queries.UpsertPremiumTaken(ctx, email, start)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("recording payment: %w", err)
	}
	slog.Info("premium window opened", "email", email, "at", start.UTC())
	return res, nil
}

// CancelPremium closes a user's premium window.
func (s *UserService) CancelPremium(ctx context.Context, email string) (store.UpdateResult, error) {
	res, err := s.queries.ClearPremium(ctx, email)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("clearing premium: %w", err)
	}
	return res, nil
}

// ExpirePremium closes every premium window older than period and returns
// how many were closed.
func (s *UserService) ExpirePremium(ctx context.Context, period time.Duration) (int64, error) {
	n, err := s.queries.ExpirePremium(ctx, s.now().Add(-period))
	if err != nil {
		return 0, fmt.Errorf("expiring premium: %w", err)
	}
	return n, nil
}

// UpdateProfile merges name and photo into a user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, email string, in ProfileUpdate) (store.UpdateResult, error) {
	res, err := s.queries.UpdateUserProfile(ctx, store.UpdateUserProfileParams{
		Email: email,
		Name:  trimmed(in.Name),
		Photo: trimmed(in.Photo),
	})
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("updating profile: %w", err)
	}
	return res, nil
}

// MakeAdmin grants the admin role to the user with the given id.
func (s *UserService) MakeAdmin(ctx context.Context, id string) (store.UpdateResult, error) {
	if err := checkID(id); err != nil {
		return store.UpdateResult{}, err
	}
	res, err := s.queries.SetUserRole(ctx, id, model.RoleAdmin)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("setting role: %w", err)
	}
	if res.ModifiedCount > 0 {
		slog.Info("user promoted to admin", "id", id)
	}
	return res, nil
}

// Admins returns the admin users with the given email: one or none.
func (s *UserService) Admins(ctx context.Context, email string) ([]model.User, error) {
	users, err := s.queries.ListAdminsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("listing admins: %w", err)
	}
	return users, nil
}

// IsAdmin reports whether the user with the given email currently has the
// admin role.
func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	admins, err := s.Admins(ctx, email)
	if err != nil {
		return false, err
	}
	return len(admins) > 0, nil
}
