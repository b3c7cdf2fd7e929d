// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsroom/internal/auth"
	"github.com/olegiv/newsroom/internal/middleware"
	"github.com/olegiv/newsroom/internal/model"
	"github.com/olegiv/newsroom/internal/service"
)

// listArticles writes the result of a parameterless article listing, as seen
// by the optional bearer principal.
func listArticles(w http.ResponseWriter, r *http.Request, list func(context.Context, *auth.Principal) ([]model.Article, error)) {
	articles, err := list(r.Context(), middleware.GetPrincipal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, articles)
}

// CreateArticle handles POST /articles.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var in service.ArticleInput
	if !decodeJSON(w, r, &in) {
		return
	}

	res, err := h.articles.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// ListArticles handles GET /articles: approved articles only.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	listArticles(w, r, h.articles.ListApproved)
}

// PremiumArticles handles GET /premiumArticles.
func (h *Handler) PremiumArticles(w http.ResponseWriter, r *http.Request) {
	listArticles(w, r, h.articles.ListPremium)
}

// TopArticles handles GET /top-articles.
func (h *Handler) TopArticles(w http.ResponseWriter, r *http.Request) {
	listArticles(w, r, h.articles.Top)
}

// SearchArticles handles GET /getRecentQueries. Only the first non-blank of
// the title, publisher and tag parameters is applied.
func (h *Handler) SearchArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ResolveSearchFilter(
		q.Get("getRecentQueries"),
		q.Get("getPublishQuery"),
		q.Get("getTagQueries"),
	)

	articles, err := h.articles.Search(r.Context(), filter, middleware.GetPrincipal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, articles)
}

// AuthorQueries handles GET /getAuthorQueries?getAuthor=.
func (h *Handler) AuthorQueries(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.SearchPremiumByAuthor(r.Context(), r.URL.Query().Get("getAuthor"), middleware.GetPrincipal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, articles)
}

// AllAuthors handles GET /allAuthors.
func (h *Handler) AllAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.articles.PremiumAuthors(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, authors)
}

// ArticleDetails handles GET /details/{id}. An unknown id yields null.
func (h *Handler) ArticleDetails(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.Detail(r.Context(), chi.URLParam(r, "id"), middleware.GetPrincipal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, article)
}

// MyArticles handles GET /my-articles/{email} (owner only).
func (h *Handler) MyArticles(w http.ResponseWriter, r *http.Request) {
	h.articlesByAuthor(w, r)
}

// ArticlesByWriter handles GET /article-writing/{email}.
func (h *Handler) ArticlesByWriter(w http.ResponseWriter, r *http.Request) {
	h.articlesByAuthor(w, r)
}

func (h *Handler) articlesByAuthor(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	articles, err := h.articles.ByAuthor(r.Context(), email, middleware.GetPrincipal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, articles)
}

// DeleteArticle handles DELETE /delete-article/{id}.
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	res, err := h.articles.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// UpdateArticle handles PUT /update-article/{id}.
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var in service.ArticleUpdate
	if !decodeJSON(w, r, &in) {
		return
	}

	res, err := h.articles.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// RecordView handles PUT /news/{id}. Unknown ids are a 404 here, unlike the
// other keyed updates.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	res, err := h.articles.RecordView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// ArticlesByPublisher handles GET /articles-publisher.
func (h *Handler) ArticlesByPublisher(w http.ResponseWriter, r *http.Request) {
	counts, err := h.articles.CountByPublisher(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, counts)
}

// ArticlesStatusCount handles GET /articles-status-count.
func (h *Handler) ArticlesStatusCount(w http.ResponseWriter, r *http.Request) {
	counts, err := h.articles.CountByStatus(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, counts)
}

// AdminArticles handles GET /admin-all-articles?page=&limit=.
func (h *Handler) AdminArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := model.NewPagination(q.Get("page"), q.Get("limit"), model.DefaultArticlesPerPage)

	page, err := h.articles.AdminPage(r.Context(), p, middleware.GetPrincipal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, page)
}

// PromoteArticle handles PUT /update-article-premium/{id}.
func (h *Handler) PromoteArticle(w http.ResponseWriter, r *http.Request) {
	res, err := h.articles.Promote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// ApproveArticle handles PUT /approve-article/{id}.
func (h *Handler) ApproveArticle(w http.ResponseWriter, r *http.Request) {
	res, err := h.articles.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

type declineRequest struct {
	Reason string `json:"reason"`
}

// DeclineArticle handles PUT /reason-decline/{id}.
func (h *Handler) DeclineArticle(w http.ResponseWriter, r *http.Request) {
	var in declineRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	res, err := h.articles.Decline(r.Context(), chi.URLParam(r, "id"), in.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}
