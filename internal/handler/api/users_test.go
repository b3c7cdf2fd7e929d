// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/newsroom/internal/model"
	"github.com/olegiv/newsroom/internal/testutil"
)

func TestCreateUserDuplicate(t *testing.T) {
	env := newTestEnv(t, testOptions())
	body := map[string]string{"email": "a@example.com", "name": "A", "photo": "a.png"}

	rr := env.do(t, http.MethodPost, "/users", body, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"insertedId":"`)

	rr = env.do(t, http.MethodPost, "/users", body, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"user already exist","insertedId":null}`, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/users", nil, "")
	var users []model.User
	decode(t, rr, &users)
	assert.Len(t, users, 1)

	rr = env.do(t, http.MethodPost, "/users", map[string]string{"name": "no email"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t, testOptions())
	testutil.CreateUser(t, env.db, "a@example.com")

	rr := env.do(t, http.MethodGet, "/user/a@example.com", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var user model.User
	decode(t, rr, &user)
	assert.Equal(t, "a@example.com", user.Email)
	assert.NotContains(t, rr.Body.String(), "password")

	rr = env.do(t, http.MethodGet, "/user/ghost@example.com", nil, "")
	assert.JSONEq(t, `null`, rr.Body.String())
}

func TestIssueTokenWithPassword(t *testing.T) {
	env := newTestEnv(t, testOptions())

	rr := env.do(t, http.MethodPost, "/users", map[string]string{
		"email": "w@example.com", "password": "correct horse",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/jwt", map[string]string{"email": "w@example.com", "password": "correct horse"}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var tok TokenResponse
	decode(t, rr, &tok)
	p, err := env.tokens.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "w@example.com", p.Email)

	rr = env.do(t, http.MethodPost, "/jwt", map[string]string{"email": "w@example.com", "password": "wrong horse"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// An email alone no longer buys a token.
	rr = env.do(t, http.MethodPost, "/jwt", map[string]string{"email": "w@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdatePassword(t *testing.T) {
	env := newTestEnv(t, testOptions())
	testutil.CreateUser(t, env.db, "social@example.com")
	token := env.token(t, "social@example.com")

	rr := env.do(t, http.MethodPut, "/update-password/social@example.com", map[string]string{"password": "brand new pass"}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/jwt", map[string]string{"email": "social@example.com", "password": "brand new pass"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodPut, "/update-password/other@example.com", map[string]string{"password": "brand new pass"}, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminUsersPagination(t *testing.T) {
	env := newTestEnv(t, testOptions())
	for i := range 25 {
		testutil.CreateUser(t, env.db, fmt.Sprintf("u%02d@example.com", i))
	}

	tests := []struct {
		query   string
		wantLen int
	}{
		{"?page=1&limit=10", 10},
		{"?page=3&limit=10", 5},
		{"?page=4&limit=10", 0},
		{"?page=x&limit=y", 10},
		{"?page=1537228672809129303&limit=10", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, "/admin-users"+tt.query, nil, "")
			require.Equal(t, http.StatusOK, rr.Code)
			var page struct {
				Users      []model.User `json:"users"`
				TotalPages int          `json:"totalPages"`
			}
			decode(t, rr, &page)
			assert.Equal(t, 3, page.TotalPages)
			assert.Len(t, page.Users, tt.wantLen)
		})
	}
}

func TestPremiumPaymentFlow(t *testing.T) {
	env := newTestEnv(t, testOptions())
	testutil.CreateUser(t, env.db, "a@example.com")

	rr := env.do(t, http.MethodPut, "/update-payment", map[string]string{
		"email": "a@example.com", "time": "2026-05-01T12:00:00.000Z",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/user/a@example.com", nil, "")
	var user model.User
	decode(t, rr, &user)
	require.NotNil(t, user.PremiumTaken)
	assert.Equal(t, 2026, user.PremiumTaken.Year())

	// Unknown emails are created by the upsert.
	rr = env.do(t, http.MethodPut, "/update-payment", map[string]string{"email": "new@example.com"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"upsertedCount":1`)

	rr = env.do(t, http.MethodGet, "/usersCount", nil, "")
	assert.JSONEq(t, `{"totalUsers":2,"premiumUserCount":2}`, rr.Body.String())

	rr = env.do(t, http.MethodPut, "/update-user-premium/a@example.com", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/usersCount", nil, "")
	assert.JSONEq(t, `{"totalUsers":2,"premiumUserCount":1}`, rr.Body.String())

	rr = env.do(t, http.MethodPut, "/update-payment", map[string]string{"email": "a@example.com", "time": "yesterday"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateUserAndRole(t *testing.T) {
	env := newTestEnv(t, testOptions())
	id := testutil.CreateUser(t, env.db, "a@example.com")

	rr := env.do(t, http.MethodPut, "/update-user/a@example.com", map[string]string{"photo": "new.png"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"modifiedCount":1`)

	rr = env.do(t, http.MethodGet, "/admin/a@example.com", nil, "")
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = env.do(t, http.MethodPut, "/update-user-role/"+id, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/admin/a@example.com", nil, "")
	var admins []model.User
	decode(t, rr, &admins)
	require.Len(t, admins, 1)
	assert.Equal(t, model.RoleAdmin, admins[0].Role)
	assert.Equal(t, "new.png", admins[0].Photo)

	rr = env.do(t, http.MethodPut, "/update-user-role/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
