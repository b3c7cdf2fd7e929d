// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/newsroom/internal/cache"
	"github.com/olegiv/newsroom/internal/model"
	"github.com/olegiv/newsroom/internal/store"
	"github.com/olegiv/newsroom/internal/util"
)

const (
	publishersCachePrefix = "publishers:"
	cacheKeyPublishers    = publishersCachePrefix + "all"
)

// PublisherInput is a new catalogue entry.
type PublisherInput struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// PublisherService manages the append-only publisher catalogue.
type PublisherService struct {
	queries *store.Queries
	cached  *cache.TypedCache[[]model.Publisher]
}

// NewPublisherService creates a new PublisherService.
// If c is nil, the catalogue is read from the database on every call.
func NewPublisherService(db *sql.DB, c cache.Cacher, ttl time.Duration) *PublisherService {
	return &PublisherService{
		queries: store.New(db),
		cached:  cache.NewTypedCache[[]model.Publisher](c, ttl),
	}
}

// Create adds a publisher.
func (s *PublisherService) Create(ctx context.Context, in PublisherInput) (store.InsertResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return store.InsertResult{}, validationError("publisher name is required")
	}

	res, err := s.queries.InsertPublisher(ctx, store.InsertPublisherParams{
		Name: name,
		Slug: util.SlugifyOr(name, "publisher"),
		Logo: strings.TrimSpace(in.Logo),
	})
	if err != nil {
		return store.InsertResult{}, fmt.Errorf("inserting publisher: %w", err)
	}

	s.cached.Invalidate(ctx, publishersCachePrefix)
	return res, nil
}

// List returns the catalogue in insertion order.
func (s *PublisherService) List(ctx context.Context) ([]model.Publisher, error) {
	publishers, err := s.cached.GetOrSet(ctx, cacheKeyPublishers, s.queries.ListPublishers)
	if err != nil {
		return nil, fmt.Errorf("listing publishers: %w", err)
	}
	return publishers, nil
}
