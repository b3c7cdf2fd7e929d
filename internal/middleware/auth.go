// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for bearer authentication,
// authorization, rate limiting and request deadlines.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsroom/internal/auth"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyPrincipal is the context key for the verified token principal.
const ContextKeyPrincipal ContextKey = "principal"

// MessageUnauthorized is the body message for every authentication failure.
const MessageUnauthorized = "unauthorized access"

// ErrorResponse is the JSON body written for middleware failures.
type ErrorResponse struct {
	Message string `json:"message"`
}

// WriteJSONError writes a {"message": ...} body with the given status.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Message: message})
}

// TokenVerifier verifies a raw bearer token.
type TokenVerifier interface {
	Verify(token string) (auth.Principal, error)
}

// AdminChecker reports whether the user with the given email is an admin.
type AdminChecker func(ctx context.Context, email string) (bool, error)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// verifyRequest returns the principal for a request carrying a valid token.
func verifyRequest(v TokenVerifier, r *http.Request) (*auth.Principal, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return nil, false
	}
	p, err := v.Verify(token)
	if err != nil {
		slog.Debug("bearer token rejected", "path", r.URL.Path, "error", err)
		return nil, false
	}
	return &p, true
}

// BearerAuth creates middleware that requires a valid bearer token.
// Missing, malformed, expired or forged tokens are rejected with 401.
func BearerAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := verifyRequest(v, r)
			if !ok {
				WriteJSONError(w, http.StatusUnauthorized, MessageUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyPrincipal, *p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalBearer creates middleware that loads the principal when a valid
// token is present. Requests without one continue anonymously.
func OptionalBearer(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := verifyRequest(v, r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyPrincipal, *p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal retrieves the verified principal from the request context.
// Returns nil if the request is anonymous.
func GetPrincipal(r *http.Request) *auth.Principal {
	p, ok := r.Context().Value(ContextKeyPrincipal).(auth.Principal)
	if !ok {
		return nil
	}
	return &p
}

// PathParam returns the named route parameter with percent-escapes decoded.
// chi matches against the raw path when the request carries one, so
// "/user/a%40b.com" yields "a%40b.com" from chi.URLParam.
func PathParam(r *http.Request, name string) (string, error) {
	return url.PathUnescape(chi.URLParam(r, name))
}

// RequireOwnEmail creates middleware that only lets a principal reach routes
// whose URL parameter matches its own email. Must run after BearerAuth.
func RequireOwnEmail(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r)
			email, err := PathParam(r, param)
			if p == nil || err != nil || p.Email != email {
				WriteJSONError(w, http.StatusUnauthorized, MessageUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin creates middleware that only lets admins through. The role is
// looked up on every request, so a token issued before a demotion stops
// working immediately. Must run after BearerAuth.
func RequireAdmin(isAdmin AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r)
			if p == nil {
				WriteJSONError(w, http.StatusUnauthorized, MessageUnauthorized)
				return
			}

			ok, err := isAdmin(r.Context(), p.Email)
			if err != nil {
				slog.Error("admin lookup failed", "email", p.Email, "error", err)
				WriteJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !ok {
				WriteJSONError(w, http.StatusForbidden, "forbidden access")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
