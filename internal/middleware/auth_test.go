// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsroom/internal/auth"
	"github.com/olegiv/newsroom/internal/testutil"
)

func simpleOKHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func executeRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func issue(t *testing.T, m *auth.TokenManager, email string) string {
	t.Helper()
	token, err := m.Issue(auth.Principal{Email: email})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return token
}

func TestBearerAuth(t *testing.T) {
	tokens := auth.NewTokenManager(testutil.TestSecret, time.Hour)
	other := auth.NewTokenManager("another-secret-another-secret-xx", time.Hour)
	expired := auth.NewTokenManager(testutil.TestSecret, time.Nanosecond)

	expiredToken := issue(t, expired, "a@example.com")
	time.Sleep(2 * time.Millisecond)

	var got *auth.Principal
	h := BearerAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetPrincipal(r)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + issue(t, tokens, "a@example.com"), http.StatusOK},
		{"lowercase scheme", "bearer " + issue(t, tokens, "a@example.com"), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"no separator", "Bearer", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + issue(t, other, "a@example.com"), http.StatusUnauthorized},
		{"expired", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := executeRequest(h, req)

			if rr.Code != tt.want {
				t.Errorf("Status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusOK {
				if got == nil || got.Email != "a@example.com" {
					t.Errorf("GetPrincipal() = %v, want a@example.com", got)
				}
				return
			}
			if body := rr.Body.String(); body != `{"message":"unauthorized access"}`+"\n" {
				t.Errorf("Body = %q", body)
			}
		})
	}
}

func TestOptionalBearer(t *testing.T) {
	tokens := auth.NewTokenManager(testutil.TestSecret, time.Hour)

	var got *auth.Principal
	h := OptionalBearer(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetPrincipal(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if rr := executeRequest(h, req); rr.Code != http.StatusOK {
		t.Errorf("anonymous Status = %d, want 200", rr.Code)
	}
	if got != nil {
		t.Errorf("anonymous GetPrincipal() = %v, want nil", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	if rr := executeRequest(h, req); rr.Code != http.StatusOK {
		t.Errorf("forged Status = %d, want 200", rr.Code)
	}
	if got != nil {
		t.Errorf("forged GetPrincipal() = %v, want nil", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, "p@example.com"))
	executeRequest(h, req)
	if got == nil || got.Email != "p@example.com" {
		t.Errorf("GetPrincipal() = %v, want p@example.com", got)
	}
}

func TestGetPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if p := GetPrincipal(req); p != nil {
		t.Errorf("GetPrincipal() = %v, want nil", p)
	}

	ctx := context.WithValue(req.Context(), ContextKeyPrincipal, auth.Principal{Email: "x@example.com", Role: "admin"})
	p := GetPrincipal(req.WithContext(ctx))
	if p == nil || p.Email != "x@example.com" || p.Role != "admin" {
		t.Errorf("GetPrincipal() = %v", p)
	}
}

func TestRequireOwnEmail(t *testing.T) {
	tokens := auth.NewTokenManager(testutil.TestSecret, time.Hour)

	r := chi.NewRouter()
	r.With(BearerAuth(tokens), RequireOwnEmail("email")).Get("/my-articles/{email}", simpleOKHandler)

	tests := []struct {
		name  string
		token string
		path  string
		want  int
	}{
		{"own email", issue(t, tokens, "me@example.com"), "/my-articles/me@example.com", http.StatusOK},
		{"someone else", issue(t, tokens, "me@example.com"), "/my-articles/you@example.com", http.StatusUnauthorized},
		{"no token", "", "/my-articles/me@example.com", http.StatusUnauthorized},
		{"escaped own email", issue(t, tokens, "me@example.com"), "/my-articles/me%40example.com", http.StatusOK},
		{"escaped other email", issue(t, tokens, "me@example.com"), "/my-articles/you%40example.com", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			if rr := executeRequest(r, req); rr.Code != tt.want {
				t.Errorf("Status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	check := func(_ context.Context, email string) (bool, error) {
		switch email {
		case "admin@example.com":
			return true, nil
		case "broken@example.com":
			return false, errors.New("db gone")
		}
		return false, nil
	}
	h := RequireAdmin(check)(http.HandlerFunc(simpleOKHandler))

	tests := []struct {
		name      string
		principal *auth.Principal
		want      int
	}{
		{"admin", &auth.Principal{Email: "admin@example.com"}, http.StatusOK},
		// The role claim is ignored; storage decides.
		{"claimed admin", &auth.Principal{Email: "user@example.com", Role: "admin"}, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
		{"lookup failure", &auth.Principal{Email: "broken@example.com"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/approve-article/x", nil)
			if tt.principal != nil {
				req = req.WithContext(context.WithValue(req.Context(), ContextKeyPrincipal, *tt.principal))
			}
			if rr := executeRequest(h, req); rr.Code != tt.want {
				t.Errorf("Status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}
