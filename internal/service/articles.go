// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/newsroom/internal/auth"
	"github.com/olegiv/newsroom/internal/cache"
	"github.com/olegiv/newsroom/internal/model"
	"github.com/olegiv/newsroom/internal/store"
	"github.com/olegiv/newsroom/internal/util"
)

// TopArticlesLimit is the size of the most-viewed listing.
const TopArticlesLimit = 6

// Cache keys of the article aggregations. All share articlesCachePrefix so a
// single write invalidates them together.
const (
	articlesCachePrefix = "articles:"
	cacheKeyByPublisher = articlesCachePrefix + "by-publisher"
	cacheKeyByStatus    = articlesCachePrefix + "by-status"
)

// Article input limits.
const (
	MaxArticleTitleLength   = 300
	MaxArticleTags          = 20
	MaxArticleDescriptionKB = 256
)

// ArticleInput is a new article as submitted by its author.
type ArticleInput struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	AuthorName  string   `json:"authorName"`
	AuthorPhoto string   `json:"authorPhoto"`
	Publisher   string   `json:"publisher"`
	Tags        []string `json:"tags"`
	Photo       string   `json:"photo"`
	Description string   `json:"description"`
}

// ArticleUpdate is a partial edit. Nil fields are left untouched.
type ArticleUpdate struct {
	Title       *string  `json:"title"`
	Publisher   *string  `json:"publisher"`
	Tags        []string `json:"tags"`
	Photo       *string  `json:"photo"`
	Description *string  `json:"description"`
}

// ArticlePage is one page of the admin article listing.
type ArticlePage struct {
	Articles   []model.Article `json:"articles"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
}

// ArticleService runs the article lifecycle: submission, moderation,
// premium promotion, view counting, search and the dashboard aggregations.
type ArticleService struct {
	queries    *store.Queries
	policy     *bluemonday.Policy
	aggregates *cache.TypedCache[[]model.GroupCount]
}

// NewArticleService creates a new ArticleService.
// If c is nil, aggregations are computed on every call.
func NewArticleService(db *sql.DB, c cache.Cacher, ttl time.Duration) *ArticleService {
	return &ArticleService{
		queries:    store.New(db),
		policy:     bluemonday.UGCPolicy(),
		aggregates: cache.NewTypedCache[[]model.GroupCount](c, ttl),
	}
}

// Create stores a new pending article. The description is sanitized and the
// slug derived from the title; lifecycle fields cannot be set by the caller.
func (s *ArticleService) Create(ctx context.Context, in ArticleInput) (store.InsertResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return store.InsertResult{}, validationError("title is required")
	}
	if len([]rune(title)) > MaxArticleTitleLength {
		return store.InsertResult{}, validationError("title exceeds %d characters", MaxArticleTitleLength)
	}
	author, err := requireEmail(in.Author)
	if err != nil {
		return store.InsertResult{}, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return store.InsertResult{}, err
	}
	description, err := s.sanitize(in.Description)
	if err != nil {
		return store.InsertResult{}, err
	}

	res, err := s.queries.InsertArticle(ctx, store.InsertArticleParams{
		Title:       title,
		Slug:        util.SlugifyOr(title, "article"),
		Author:      author,
		AuthorName:  strings.TrimSpace(in.AuthorName),
		AuthorPhoto: strings.TrimSpace(in.AuthorPhoto),
		Publisher:   strings.TrimSpace(in.Publisher),
		Tags:        tags,
		Photo:       strings.TrimSpace(in.Photo),
		Description: description,
	})
	if err != nil {
		return store.InsertResult{}, fmt.Errorf("inserting article: %w", err)
	}

	s.invalidate(ctx)
	slog.Info("article submitted", "id", res.InsertedID, "author", author)
	return res, nil
}

// Listings take the viewer (nil when anonymous). Premium articles the viewer
// may not read are returned locked, without their description.

// ListApproved returns all publicly listed articles.
func (s *ArticleService) ListApproved(ctx context.Context, viewer *auth.Principal) ([]model.Article, error) {
	return s.list(ctx, store.ArticleFilter{Status: model.StatusApproved}, viewer)
}

// ListPremium returns every premium article regardless of status.
func (s *ArticleService) ListPremium(ctx context.Context, viewer *auth.Principal) ([]model.Article, error) {
	return s.list(ctx, store.ArticleFilter{Premium: model.PremiumYes}, viewer)
}

// Top returns the most viewed approved articles.
func (s *ArticleService) Top(ctx context.Context, viewer *auth.Principal) ([]model.Article, error) {
	return s.list(ctx, store.ArticleFilter{
		Status:       model.StatusApproved,
		OrderByCount: true,
		Limit:        TopArticlesLimit,
	}, viewer)
}

// Search runs the public search over approved articles with at most one
// field filter.
func (s *ArticleService) Search(ctx context.Context, f model.SearchFilter, viewer *auth.Principal) ([]model.Article, error) {
	filter := store.ArticleFilter{Status: model.StatusApproved}
	switch f.Field {
	case model.SearchTitle:
		filter.TitleContains = f.Value
	case model.SearchPublisher:
		filter.PublisherContains = f.Value
	case model.SearchTag:
		filter.Tag = f.Value
	}
	return s.list(ctx, filter, viewer)
}

// SearchPremiumByAuthor lists approved premium articles whose author contains
// the given text. Blank or "all" lists them all.
func (s *ArticleService) SearchPremiumByAuthor(ctx context.Context, author string, viewer *auth.Principal) ([]model.Article, error) {
	return s.list(ctx, store.ArticleFilter{
		Status:         model.StatusApproved,
		Premium:        model.PremiumYes,
		AuthorContains: model.ResolveAuthorFilter(author),
	}, viewer)
}

// PremiumAuthors returns the author of each approved premium article.
func (s *ArticleService) PremiumAuthors(ctx context.Context) ([]string, error) {
	authors, err := s.queries.ListPremiumAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing premium authors: %w", err)
	}
	return authors, nil
}

// ByAuthor returns every article written by email, in any status.
func (s *ArticleService) ByAuthor(ctx context.Context, email string, viewer *auth.Principal) ([]model.Article, error) {
	return s.list(ctx, store.ArticleFilter{Author: email}, viewer)
}

// Detail returns one article, or nil if none has that id. Premium articles
// are served only to their author, admins and users with an open premium
// window; viewer is nil for anonymous requests.
func (s *ArticleService) Detail(ctx context.Context, id string, viewer *auth.Principal) (*model.Article, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	article, err := s.queries.GetArticle(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting article: %w", err)
	}

	if article.IsPremiumContent() {
		if err := s.authorizePremium(ctx, &article, viewer); err != nil {
			return nil, err
		}
	}
	return &article, nil
}

func (s *ArticleService) authorizePremium(ctx context.Context, article *model.Article, viewer *auth.Principal) error {
	if viewer == nil {
		return fmt.Errorf("%w: premium article requires sign-in", ErrUnauthorized)
	}
	if viewer.Email == article.Author {
		return nil
	}

	ok, err := s.hasPremiumAccess(ctx, viewer)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: premium article", ErrForbidden)
	}
	return nil
}

// hasPremiumAccess reports whether viewer may read every premium article:
// admins and users with an open premium window.
func (s *ArticleService) hasPremiumAccess(ctx context.Context, viewer *auth.Principal) (bool, error) {
	if viewer == nil {
		return false, nil
	}
	user, err := s.queries.GetUserByEmail(ctx, viewer.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("getting viewer: %w", err)
	}
	return user.IsAdmin() || user.HasPremium(), nil
}

// lockPremium locks the premium articles viewer may not read. The viewer is
// looked up at most once per listing.
func (s *ArticleService) lockPremium(ctx context.Context, articles []model.Article, viewer *auth.Principal) error {
	var granted *bool
	for i := range articles {
		a := &articles[i]
		if !a.IsPremiumContent() || (viewer != nil && viewer.Email == a.Author) {
			continue
		}
		if granted == nil {
			ok, err := s.hasPremiumAccess(ctx, viewer)
			if err != nil {
				return err
			}
			granted = &ok
		}
		if !*granted {
			a.Lock()
		}
	}
	return nil
}

// RecordView adds one view to an article. Unlike other keyed updates, an
// unknown id is an error.
func (s *ArticleService) RecordView(ctx context.Context, id string) (store.UpdateResult, error) {
	if err := checkID(id); err != nil {
		return store.UpdateResult{}, err
	}
	n, err := s.queries.IncrementArticleCount(ctx, id)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("incrementing view count: %w", err)
	}
	if n == 0 {
		return store.UpdateResult{}, fmt.Errorf("%w: article %s", ErrNotFound, id)
	}
	return store.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

// Update merges the given fields into an article.
func (s *ArticleService) Update(ctx context.Context, id string, in ArticleUpdate) (store.UpdateResult, error) {
	if err := checkID(id); err != nil {
		return store.UpdateResult{}, err
	}

	params := store.UpdateArticleParams{ID: id, Photo: trimmed(in.Photo), Publisher: trimmed(in.Publisher)}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return store.UpdateResult{}, validationError("title cannot be empty")
		}
		if len([]rune(title)) > MaxArticleTitleLength {
			return store.UpdateResult{}, validationError("title exceeds %d characters", MaxArticleTitleLength)
		}
		slug := util.SlugifyOr(title, "article")
		params.Title = &title
		params.Slug = &slug
	}
	if in.Tags != nil {
		tags, err := normalizeTags(in.Tags)
		if err != nil {
			return store.UpdateResult{}, err
		}
		params.Tags = tags
	}
	if in.Description != nil {
		description, err := s.sanitize(*in.Description)
		if err != nil {
			return store.UpdateResult{}, err
		}
		params.Description = &description
	}

	res, err := s.queries.UpdateArticle(ctx, params)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("updating article: %w", err)
	}
	if res.ModifiedCount > 0 {
		s.invalidate(ctx)
	}
	return res, nil
}

// Delete removes an article.
func (s *ArticleService) Delete(ctx context.Context, id string) (store.DeleteResult, error) {
	if err := checkID(id); err != nil {
		return store.DeleteResult{}, err
	}
	res, err := s.queries.DeleteArticle(ctx, id)
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("deleting article: %w", err)
	}
	if res.DeletedCount > 0 {
		s.invalidate(ctx)
		slog.Info("article deleted", "id", id)
	}
	return res, nil
}

// Approve publishes a pending article. Approving an approved article
// changes nothing and is not an error.
func (s *ArticleService) Approve(ctx context.Context, id string) (store.UpdateResult, error) {
	return s.transition(ctx, id, model.StatusApproved, nil)
}

// Decline rejects a pending or approved article with a reason.
func (s *ArticleService) Decline(ctx context.Context, id, reason string) (store.UpdateResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return store.UpdateResult{}, validationError("decline reason is required")
	}
	return s.transition(ctx, id, model.StatusDeclined, &reason)
}

// transition moves an article to target. The UPDATE only matches articles
// in a status that may move to target, so concurrent moderators cannot
// apply an illegal transition between a read and a write.
func (s *ArticleService) transition(ctx context.Context, id, target string, reason *string) (store.UpdateResult, error) {
	if err := checkID(id); err != nil {
		return store.UpdateResult{}, err
	}

	from := slices.DeleteFunc(slices.Clone(model.TransitionSources(target)), func(status string) bool {
		return status == target
	})

	n, err := s.queries.UpdateArticleStatus(ctx, store.UpdateArticleStatusParams{
		ID:            id,
		Status:        target,
		DeclineReason: reason,
		FromStatuses:  from,
	})
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("updating article status: %w", err)
	}
	if n > 0 {
		s.invalidate(ctx)
		slog.Info("article status changed", "id", id, "status", target)
		return store.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
	}

	current, err := s.queries.GetArticle(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.UpdateResult{Acknowledged: true}, nil
	}
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("getting article: %w", err)
	}
	if current.Status == target {
		return store.UpdateResult{Acknowledged: true, MatchedCount: 1}, nil
	}
	if model.CanTransition(current.Status, target) {
		// Another moderator moved it between the UPDATE and the read.
		return store.UpdateResult{}, fmt.Errorf("%w: article %s changed concurrently, now %s",
			ErrConflict, id, current.Status)
	}
	return store.UpdateResult{}, fmt.Errorf("%w: article %s cannot move from %s to %s",
		ErrConflict, id, current.Status, target)
}

// Promote marks an article as premium. There is no way back.
func (s *ArticleService) Promote(ctx context.Context, id string) (store.UpdateResult, error) {
	if err := checkID(id); err != nil {
		return store.UpdateResult{}, err
	}
	res, err := s.queries.SetArticlePremium(ctx, id, model.PremiumYes)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("promoting article: %w", err)
	}
	return res, nil
}

// CountByPublisher groups approved articles by publisher, largest first.
func (s *ArticleService) CountByPublisher(ctx context.Context) ([]model.GroupCount, error) {
	counts, err := s.aggregates.GetOrSet(ctx, cacheKeyByPublisher, s.queries.CountApprovedByPublisher)
	if err != nil {
		return nil, fmt.Errorf("counting articles by publisher: %w", err)
	}
	return counts, nil
}

// CountByStatus groups all articles by status, largest first.
func (s *ArticleService) CountByStatus(ctx context.Context) ([]model.GroupCount, error) {
	counts, err := s.aggregates.GetOrSet(ctx, cacheKeyByStatus, s.queries.CountArticlesByStatus)
	if err != nil {
		return nil, fmt.Errorf("counting articles by status: %w", err)
	}
	return counts, nil
}

// AdminPage returns one page of all articles for the dashboard. Pages past
// the end are empty.
func (s *ArticleService) AdminPage(ctx context.Context, p model.Pagination, viewer *auth.Principal) (ArticlePage, error) {
	total, err := s.queries.CountArticles(ctx, store.ArticleFilter{})
	if err != nil {
		return ArticlePage{}, fmt.Errorf("counting articles: %w", err)
	}
	page := ArticlePage{
		Articles:   []model.Article{},
		Total:      total,
		Page:       p.Page,
		TotalPages: p.TotalPages(total),
	}
	if p.PastEnd(total) {
		return page, nil
	}

	page.Articles, err = s.list(ctx, store.ArticleFilter{Limit: p.Limit, Offset: p.Offset()}, viewer)
	if err != nil {
		return ArticlePage{}, err
	}
	return page, nil
}

func (s *ArticleService) list(ctx context.Context, f store.ArticleFilter, viewer *auth.Principal) ([]model.Article, error) {
	articles, err := s.queries.ListArticles(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	if err := s.lockPremium(ctx, articles, viewer); err != nil {
		return nil, err
	}
	return articles, nil
}

func (s *ArticleService) sanitize(description string) (string, error) {
	if len(description) > MaxArticleDescriptionKB*1024 {
		return "", validationError("description exceeds %d KB", MaxArticleDescriptionKB)
	}
	return strings.TrimSpace(s.policy.Sanitize(description)), nil
}

func (s *ArticleService) invalidate(ctx context.Context) {
	s.aggregates.Invalidate(ctx, articlesCachePrefix)
}

// normalizeTags trims tags and drops blanks and duplicates, keeping order.
func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	if len(out) > MaxArticleTags {
		return nil, validationError("at most %d tags are allowed", MaxArticleTags)
	}
	return out, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
