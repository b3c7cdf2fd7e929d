// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON HTTP handlers of the newsroom service.
package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/olegiv/newsroom/internal/auth"
	"github.com/olegiv/newsroom/internal/cache"
	"github.com/olegiv/newsroom/internal/middleware"
	"github.com/olegiv/newsroom/internal/payment"
	"github.com/olegiv/newsroom/internal/service"
)

// Deps are the collaborators of the API handlers.
type Deps struct {
	DB         *sql.DB
	Tokens     *auth.TokenManager
	Users      *service.UserService
	Articles   *service.ArticleService
	Publishers *service.PublisherService
	Payments   payment.IntentCreator
	// Cache is only reported on by /health; the services hold their own
	// reference.
	Cache cache.Cacher
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db         *sql.DB
	tokens     *auth.TokenManager
	users      *service.UserService
	articles   *service.ArticleService
	publishers *service.PublisherService
	payments   payment.IntentCreator
	cache      cache.Cacher
}

// NewHandler creates a new API handler. A nil Payments disables the payment
// route.
func NewHandler(d Deps) *Handler {
	payments := d.Payments
	if payments == nil {
		payments = payment.Disabled{}
	}
	return &Handler{
		db:         d.DB,
		tokens:     d.Tokens,
		users:      d.Users,
		articles:   d.Articles,
		publishers: d.Publishers,
		payments:   payments,
		cache:      d.Cache,
	}
}

// ErrResponse renders an error as {"message": ...}.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	Message string `json:"message"`
}

// Render implements render.Renderer.
func (e *ErrResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// ErrInvalidRequest is the response for bodies that cannot be decoded.
func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		Message:        "invalid request body",
	}
}

// writeJSON writes v as a 200 JSON response.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	render.JSON(w, r, v)
}

// writeError writes an error response with the given status and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	_ = render.Render(w, r, &ErrResponse{HTTPStatusCode: status, Message: message})
}

// decodeJSON decodes the request body into v. On failure it writes a 400
// and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		slog.Debug("invalid request body", "path", r.URL.Path, "error", err)
		_ = render.Render(w, r, ErrInvalidRequest(err))
		return false
	}
	return true
}

// emailParam returns the decoded {email} route parameter, writing a 400 when
// it is not a valid escape sequence.
func emailParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, err := middleware.PathParam(r, "email")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid email in path")
		return "", false
	}
	return email, true
}

// writeServiceError translates errors returned by the service and payment
// packages into HTTP responses. Unknown errors are logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidID),
		errors.Is(err, payment.ErrInvalidPrice):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, payment.ErrProvider):
		status = http.StatusBadGateway
	case errors.Is(err, payment.ErrDisabled):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, r, status, "internal server error")
		return
	}
	writeError(w, r, status, err.Error())
}

