// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	token, err := m.Issue(Principal{Email: "writer@example.com", Role: "admin"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	p, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "writer@example.com", p.Email)
	assert.Equal(t, "admin", p.Role)
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	m := NewTokenManager(testSecret, 0)
	assert.Equal(t, DefaultTokenTTL, m.TTL())
}

func TestTokenManager_IssueRequiresEmail(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	_, err := m.Issue(Principal{Email: "  "})
	assert.Error(t, err)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.Issue(Principal{Email: "writer@example.com"})
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = m.Verify(token)
	require.NoError(t, err, "token should be valid before expiry")

	m.now = func() time.Time { return issued.Add(61 * time.Minute) }
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := NewTokenManager(testSecret, time.Hour)
	verifier := NewTokenManager("another-secret-another-secret-xx", time.Hour)

	token, err := issuer.Issue(Principal{Email: "writer@example.com"})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	claims := Claims{
		Email: "writer@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	tests := []struct {
		name   string
		method jwt.SigningMethod
		key    any
	}{
		{"HS512", jwt.SigningMethodHS512, []byte(testSecret)},
		{"none", jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(tt.method, claims).SignedString(tt.key)
			require.NoError(t, err)

			_, err = m.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenManager_Malformed(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	for _, token := range []string{"", "abc", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		_, err := m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestTokenManager_MissingExpiry(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "writer@example.com"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
