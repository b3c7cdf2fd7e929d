// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicate is returned when an insert hits a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the application's SQL against a DBTX.
type Queries struct {
	db  DBTX
	now func() time.Time
}

// New creates a Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// InsertResult describes a single-record insert.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult describes a keyed update. A key that matches nothing yields
// MatchedCount == 0 and no error.
type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}

// DeleteResult describes a keyed delete.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// newID generates a record id.
func newID() string {
	return uuid.NewString()
}

// guardedUpdate executes an UPDATE whose WHERE clause only matches rows that
// would actually change. When nothing changed it probes whether the key
// exists at all, so callers can tell "unchanged" from "not found".
func (q *Queries) guardedUpdate(ctx context.Context, table, keyColumn, key, query string, args ...any) (UpdateResult, error) {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return UpdateResult{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return UpdateResult{}, err
	}
	if n > 0 {
		return UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
	}

	found, err := q.exists(ctx, table, keyColumn, key)
	if err != nil {
		return UpdateResult{}, err
	}
	result := UpdateResult{Acknowledged: true}
	if found {
		result.MatchedCount = 1
	}
	return result, nil
}

// exists reports whether a row with column = value exists in table.
// table and column are always package constants, never caller input.
func (q *Queries) exists(ctx context.Context, table, column, value string) (bool, error) {
	var one int
	err := q.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? LIMIT 1", table, column), value,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// nullTime converts a nullable column to a pointer.
func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// nullString converts a nullable column to a pointer.
func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
