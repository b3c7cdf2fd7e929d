// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/olegiv/newsroom/internal/model"
)

const userColumns = `id, email, name, photo, role, premium_taken, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u       model.User
		premium sql.NullTime
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Photo,
		&u.Role,
		&premium,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	u.PremiumTaken = nullTime(premium)
	return u, err
}

func (q *Queries) listUsers(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// InsertUserParams holds the fields of a new user.
type InsertUserParams struct {
	Email        string
	Name         string
	Photo        string
	PasswordHash string
}

const insertUser = `
INSERT INTO users (id, email, name, photo, password_hash, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(email) DO NOTHING
`

// InsertUser creates a user. It returns ErrDuplicate when a user with the same
// email already exists; the unique index makes this safe under concurrency.
func (q *Queries) InsertUser(ctx context.Context, arg InsertUserParams) (InsertResult, error) {
	id := newID()
	res, err := q.db.ExecContext(ctx, insertUser,
		id,
		arg.Email,
		arg.Name,
		arg.Photo,
		arg.PasswordHash,
		q.now(),
	)
	if err != nil {
		return InsertResult{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return InsertResult{}, err
	}
	if n == 0 {
		return InsertResult{}, ErrDuplicate
	}
	return InsertResult{Acknowledged: true, InsertedID: id}, nil
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

// GetUserByEmail returns the user with the given email or sql.ErrNoRows.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY rowid`

// ListUsers returns all users in registration order.
func (q *Queries) ListUsers(ctx context.Context) ([]model.User, error) {
	return q.listUsers(ctx, listUsers)
}

const listUsersPage = `SELECT ` + userColumns + ` FROM users ORDER BY rowid LIMIT ? OFFSET ?`

// ListUsersPageParams selects one page of users.
type ListUsersPageParams struct {
	Limit  int
	Offset int
}

// ListUsersPage returns one page of users in registration order.
func (q *Queries) ListUsersPage(ctx context.Context, arg ListUsersPageParams) ([]model.User, error) {
	return q.listUsers(ctx, listUsersPage, arg.Limit, arg.Offset)
}

const listAdminsByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ? AND role = 'admin' ORDER BY rowid`

// ListAdminsByEmail returns the admin users with the given email: one record
// or none.
func (q *Queries) ListAdminsByEmail(ctx context.Context, email string) ([]model.User, error) {
	return q.listUsers(ctx, listAdminsByEmail, email)
}

// CountUsers returns the number of registered users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountPremiumUsers returns the number of users with an open premium window.
func (q *Queries) CountPremiumUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE premium_taken IS NOT NULL`).Scan(&n)
	return n, err
}

const upsertPremiumTaken = `
INSERT INTO users (id, email, premium_taken, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(email) DO UPDATE SET premium_taken = excluded.premium_taken
WHERE premium_taken IS NULL OR premium_taken <> excluded.premium_taken
RETURNING id
`

// UpsertPremiumTaken opens the premium window of the user with the given
// email, creating a bare user record when none exists. The insert and the
// update are one statement: the returned id tells which of the two happened,
// and no returned row means the window was already open at that time.
func (q *Queries) UpsertPremiumTaken(ctx context.Context, email string, at time.Time) (UpdateResult, error) {
	candidate := newID()

	var id string
	err := q.db.QueryRowContext(ctx, upsertPremiumTaken, candidate, email, at.UTC(), q.now()).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return UpdateResult{Acknowledged: true, MatchedCount: 1}, nil
	}
	if err != nil {
		return UpdateResult{}, err
	}

	if id == candidate {
		return UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &id}, nil
	}
	return UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

const clearPremium = `UPDATE users SET premium_taken = NULL WHERE email = ? AND premium_taken IS NOT NULL`

// ClearPremium closes the premium window of a user.
func (q *Queries) ClearPremium(ctx context.Context, email string) (UpdateResult, error) {
	return q.guardedUpdate(ctx, "users", "email", email, clearPremium, email)
}

const expirePremium = `UPDATE users SET premium_taken = NULL WHERE premium_taken IS NOT NULL AND premium_taken < ?`

// ExpirePremium closes every premium window opened before cutoff and returns
// the number of users affected.
func (q *Queries) ExpirePremium(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, expirePremium, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateUserProfileParams holds a partial profile update. Nil fields are left
// untouched.
type UpdateUserProfileParams struct {
	Email string
	Name  *string
	Photo *string
}

const updateUserProfile = `
UPDATE users SET
    name = COALESCE(?, name),
    photo = COALESCE(?, photo)
WHERE email = ?
  AND (name <> COALESCE(?, name) OR photo <> COALESCE(?, photo))
`

// UpdateUserProfile merges the given fields into the user's profile.
func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (UpdateResult, error) {
	name := nullableString(arg.Name)
	photo := nullableString(arg.Photo)
	return q.guardedUpdate(ctx, "users", "email", arg.Email, updateUserProfile,
		name, photo, arg.Email, name, photo)
}

const setUserRole = `UPDATE users SET role = ? WHERE id = ? AND role <> ?`

// SetUserRole sets the role of the user with the given id.
func (q *Queries) SetUserRole(ctx context.Context, id, role string) (UpdateResult, error) {
	return q.guardedUpdate(ctx, "users", "id", id, setUserRole, role, id, role)
}

const setPasswordHash = `UPDATE users SET password_hash = ? WHERE email = ? AND password_hash <> ?`

// SetPasswordHash stores a new password hash for the user.
func (q *Queries) SetPasswordHash(ctx context.Context, email, hash string) (UpdateResult, error) {
	return q.guardedUpdate(ctx, "users", "email", email, setPasswordHash, hash, email, hash)
}

// nullableString turns an optional value into a SQL parameter that is NULL
// when absent.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
