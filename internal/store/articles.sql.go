// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olegiv/newsroom/internal/model"
)

const articleColumns = `id, title, slug, author, author_name, author_photo, publisher, tags,
    photo, description, status, decline_reason, is_premium, count, created_at`

func scanArticle(row interface{ Scan(...any) error }) (model.Article, error) {
	var (
		a      model.Article
		tags   string
		reason sql.NullString
	)
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Slug,
		&a.Author,
		&a.AuthorName,
		&a.AuthorPhoto,
		&a.Publisher,
		&tags,
		&a.Photo,
		&a.Description,
		&a.Status,
		&reason,
		&a.IsPremium,
		&a.Count,
		&a.CreatedAt,
	)
	if err != nil {
		return a, err
	}
	a.DeclineReason = nullString(reason)
	a.Tags = []string{}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
			return a, fmt.Errorf("decoding tags of article %s: %w", a.ID, err)
		}
	}
	return a, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// InsertArticleParams holds the fields of a new article. Lifecycle fields
// (status, premium flag, counter) always start at their initial values.
type InsertArticleParams struct {
	Title       string
	Slug        string
	Author      string
	AuthorName  string
	AuthorPhoto string
	Publisher   string
	Tags        []string
	Photo       string
	Description string
}

const insertArticle = `
INSERT INTO articles (
    id, title, slug, author, author_name, author_photo, publisher, tags,
    photo, description, status, decline_reason, is_premium, count, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', NULL, 'no', 0, ?)
`

// InsertArticle stores a new pending article.
func (q *Queries) InsertArticle(ctx context.Context, arg InsertArticleParams) (InsertResult, error) {
	tags, err := encodeTags(arg.Tags)
	if err != nil {
		return InsertResult{}, err
	}
	id := newID()
	_, err = q.db.ExecContext(ctx, insertArticle,
		id,
		arg.Title,
		arg.Slug,
		arg.Author,
		arg.AuthorName,
		arg.AuthorPhoto,
		arg.Publisher,
		tags,
		arg.Photo,
		arg.Description,
		q.now(),
	)
	if err != nil {
		return InsertResult{}, err
	}
	return InsertResult{Acknowledged: true, InsertedID: id}, nil
}

const getArticle = `SELECT ` + articleColumns + ` FROM articles WHERE id = ?`

// GetArticle returns the article with the given id or sql.ErrNoRows.
func (q *Queries) GetArticle(ctx context.Context, id string) (model.Article, error) {
	return scanArticle(q.db.QueryRowContext(ctx, getArticle, id))
}

// ArticleFilter narrows article scans. Zero-valued fields do not filter.
// Substring matches are case-insensitive and literal (no pattern syntax).
type ArticleFilter struct {
	Status            string
	Premium           string
	Author            string
	AuthorContains    string
	TitleContains     string
	PublisherContains string
	Tag               string
	OrderByCount      bool
	Limit             int
	Offset            int
}

func (f ArticleFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.Premium != "" {
		conds = append(conds, "is_premium = ?")
		args = append(args, f.Premium)
	}
	if f.Author != "" {
		conds = append(conds, "author = ?")
		args = append(args, f.Author)
	}
	if f.AuthorContains != "" {
		conds = append(conds, "instr(lower(author), lower(?)) > 0")
		args = append(args, f.AuthorContains)
	}
	if f.TitleContains != "" {
		conds = append(conds, "instr(lower(title), lower(?)) > 0")
		args = append(args, f.TitleContains)
	}
	if f.PublisherContains != "" {
		conds = append(conds, "instr(lower(publisher), lower(?)) > 0")
		args = append(args, f.PublisherContains)
	}
	if f.Tag != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM json_each(articles.tags) WHERE json_each.value = ?)")
		args = append(args, f.Tag)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListArticles returns the articles matching f in insertion order, or by
// view count descending when OrderByCount is set.
func (q *Queries) ListArticles(ctx context.Context, f ArticleFilter) ([]model.Article, error) {
	where, args := f.where()
	query := `SELECT ` + articleColumns + ` FROM articles` + where
	if f.OrderByCount {
		query += ` ORDER BY count DESC, rowid`
	} else {
		query += ` ORDER BY rowid`
	}
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []model.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// CountArticles returns the number of articles matching f. Limit, Offset and
// OrderByCount are ignored.
func (q *Queries) CountArticles(ctx context.Context, f ArticleFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`+where, args...).Scan(&n)
	return n, err
}

// UpdateArticleParams holds a partial article update. Nil fields are left
// untouched.
type UpdateArticleParams struct {
	ID          string
	Title       *string
	Slug        *string
	Publisher   *string
	Tags        []string
	Photo       *string
	Description *string
}

const updateArticle = `
UPDATE articles SET
    title = COALESCE(?1, title),
    slug = COALESCE(?2, slug),
    publisher = COALESCE(?3, publisher),
    tags = COALESCE(?4, tags),
    photo = COALESCE(?5, photo),
    description = COALESCE(?6, description)
WHERE id = ?7
  AND (title <> COALESCE(?1, title)
    OR slug <> COALESCE(?2, slug)
    OR publisher <> COALESCE(?3, publisher)
    OR tags <> COALESCE(?4, tags)
    OR photo <> COALESCE(?5, photo)
    OR description <> COALESCE(?6, description))
`

// UpdateArticle merges the given fields into the article.
func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) (UpdateResult, error) {
	var tags sql.NullString
	if arg.Tags != nil {
		encoded, err := encodeTags(arg.Tags)
		if err != nil {
			return UpdateResult{}, err
		}
		tags = sql.NullString{String: encoded, Valid: true}
	}
	return q.guardedUpdate(ctx, "articles", "id", arg.ID, updateArticle,
		nullableString(arg.Title),
		nullableString(arg.Slug),
		nullableString(arg.Publisher),
		tags,
		nullableString(arg.Photo),
		nullableString(arg.Description),
		arg.ID,
	)
}

// UpdateArticleStatusParams moves an article to Status, but only if it is
// currently in one of FromStatuses.
type UpdateArticleStatusParams struct {
	ID            string
	Status        string
	DeclineReason *string
	FromStatuses  []string
}

// UpdateArticleStatus applies a status transition and returns the number of
// rows changed. A DeclineReason of nil leaves the stored reason untouched.
func (q *Queries) UpdateArticleStatus(ctx context.Context, arg UpdateArticleStatusParams) (int64, error) {
	if len(arg.FromStatuses) == 0 {
		return 0, nil
	}
	query := `UPDATE articles SET status = ?, decline_reason = COALESCE(?, decline_reason)
WHERE id = ? AND status IN (` + placeholders(len(arg.FromStatuses)) + `)`

	args := []any{arg.Status, nullableString(arg.DeclineReason), arg.ID}
	for _, s := range arg.FromStatuses {
		args = append(args, s)
	}

	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const setArticlePremium = `UPDATE articles SET is_premium = ? WHERE id = ? AND is_premium <> ?`

// SetArticlePremium sets the premium flag of an article.
func (q *Queries) SetArticlePremium(ctx context.Context, id, premium string) (UpdateResult, error) {
	return q.guardedUpdate(ctx, "articles", "id", id, setArticlePremium, premium, id, premium)
}

const incrementArticleCount = `UPDATE articles SET count = count + 1 WHERE id = ?`

// IncrementArticleCount atomically adds one view to an article and returns
// the number of rows changed.
func (q *Queries) IncrementArticleCount(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, incrementArticleCount, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteArticle = `DELETE FROM articles WHERE id = ?`

// DeleteArticle removes an article.
func (q *Queries) DeleteArticle(ctx context.Context, id string) (DeleteResult, error) {
	res, err := q.db.ExecContext(ctx, deleteArticle, id)
	if err != nil {
		return DeleteResult{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func (q *Queries) groupCounts(ctx context.Context, query string, args ...any) ([]model.GroupCount, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []model.GroupCount{}
	for rows.Next() {
		var g model.GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countApprovedByPublisher = `
SELECT publisher, COUNT(*) AS n FROM articles
WHERE status = 'approved'
GROUP BY publisher
ORDER BY n DESC, MIN(rowid)
`

// CountApprovedByPublisher groups approved articles by publisher, largest
// group first. Ties keep the order in which each group first appeared.
func (q *Queries) CountApprovedByPublisher(ctx context.Context) ([]model.GroupCount, error) {
	return q.groupCounts(ctx, countApprovedByPublisher)
}

const countArticlesByStatus = `
SELECT status, COUNT(*) AS n FROM articles
GROUP BY status
ORDER BY n DESC, MIN(rowid)
`

// CountArticlesByStatus groups all articles by status, largest group first.
func (q *Queries) CountArticlesByStatus(ctx context.Context) ([]model.GroupCount, error) {
	return q.groupCounts(ctx, countArticlesByStatus)
}

const listPremiumAuthors = `
SELECT author FROM articles
WHERE status = 'approved' AND is_premium = 'yes'
ORDER BY rowid
`

// ListPremiumAuthors returns the author of every approved premium article,
// one entry per article.
func (q *Queries) ListPremiumAuthors(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listPremiumAuthors)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	authors := []string{}
	for rows.Next() {
		var author string
		if err := rows.Scan(&author); err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return authors, nil
}
