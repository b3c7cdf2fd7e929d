// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the body of a successful POST /jwt.
type TokenResponse struct {
	Token string `json:"token"`
}

// IssueToken handles POST /jwt.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeJSON(w, r, &in) {
		return
	}

	token, err := h.users.IssueToken(r.Context(), in.Email, in.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, TokenResponse{Token: token})
}

type passwordChange struct {
	Password string `json:"password"`
}

// UpdatePassword handles PUT /update-password/{email}. The route is guarded
// so only the account owner reaches it.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	var in passwordChange
	if !decodeJSON(w, r, &in) {
		return
	}

	res, err := h.users.SetPassword(r.Context(), email, in.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}
