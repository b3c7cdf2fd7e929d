// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/newsroom/internal/auth"
	"github.com/olegiv/newsroom/internal/cache"
	"github.com/olegiv/newsroom/internal/service"
	"github.com/olegiv/newsroom/internal/testutil"
)

// fakePayments records the amount it was asked for.
type fakePayments struct {
	cents int64
	err   error
}

func (f *fakePayments) CreateIntent(_ context.Context, amountCents int64) (string, error) {
	f.cents = amountCents
	if f.err != nil {
		return "", f.err
	}
	return "pi_test_secret", nil
}

type testEnv struct {
	db       *sql.DB
	tokens   *auth.TokenManager
	payments *fakePayments
	router   http.Handler
}

// testOptions disables rate limiting so tests can fire many requests.
func testOptions() RouterOptions {
	opts := DefaultRouterOptions()
	opts.RateLimit = 0
	opts.TokenRateLimit = 0
	opts.RequestTimeout = 5 * time.Second
	return opts
}

func newTestEnv(t *testing.T, opts RouterOptions) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mem.Close() })

	tokens := auth.NewTokenManager(testutil.TestSecret, time.Hour)
	payments := &fakePayments{}

	h := NewHandler(Deps{
		DB:         db,
		Tokens:     tokens,
		Users:      service.NewUserService(db, tokens),
		Articles:   service.NewArticleService(db, mem, time.Minute),
		Publishers: service.NewPublisherService(db, mem, time.Minute),
		Payments:   payments,
		Cache:      mem,
	})

	return &testEnv{
		db:       db,
		tokens:   tokens,
		payments: payments,
		router:   h.Routes(opts),
	}
}

// do sends a request with an optional JSON body and bearer token.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) token(t *testing.T, email string) string {
	t.Helper()
	token, err := e.tokens.Issue(auth.Principal{Email: email})
	require.NoError(t, err)
	return token
}

// createArticle submits an article through the API and returns its id.
func (e *testEnv) createArticle(t *testing.T, title, author string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/articles", map[string]any{
		"title":       title,
		"author":      author,
		"publisher":   "Daily Planet",
		"tags":        []string{"news"},
		"description": "<p>body</p>",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res struct {
		InsertedID string `json:"insertedId"`
	}
	decode(t, rr, &res)
	require.NotEmpty(t, res.InsertedID)
	return res.InsertedID
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}
