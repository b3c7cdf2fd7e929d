// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/olegiv/newsroom/internal/model"
)

// InsertPublisherParams holds the fields of a new publisher.
type InsertPublisherParams struct {
	Name string
	Slug string
	Logo string
}

const insertPublisher = `INSERT INTO publishers (id, name, slug, logo, created_at) VALUES (?, ?, ?, ?, ?)`

// InsertPublisher appends a publisher to the catalogue.
func (q *Queries) InsertPublisher(ctx context.Context, arg InsertPublisherParams) (InsertResult, error) {
	id := newID()
	if _, err := q.db.ExecContext(ctx, insertPublisher, id, arg.Name, arg.Slug, arg.Logo, q.now()); err != nil {
		return InsertResult{}, err
	}
	return InsertResult{Acknowledged: true, InsertedID: id}, nil
}

const listPublishers = `SELECT id, name, slug, logo, created_at FROM publishers ORDER BY rowid`

// ListPublishers returns the catalogue in insertion order.
func (q *Queries) ListPublishers(ctx context.Context) ([]model.Publisher, error) {
	rows, err := q.db.QueryContext(ctx, listPublishers)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []model.Publisher{}
	for rows.Next() {
		var p model.Publisher
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Logo, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
