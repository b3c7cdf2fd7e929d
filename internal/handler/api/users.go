// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsroom/internal/model"
	"github.com/olegiv/newsroom/internal/service"
)

// userExistsResponse is sent instead of an insert result when the email is
// already registered.
type userExistsResponse struct {
	Message    string  `json:"message"`
	InsertedID *string `json:"insertedId"`
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	res, err := h.users.Register(r.Context(), in)
	if errors.Is(err, service.ErrUserExists) {
		writeJSON(w, r, userExistsResponse{Message: service.ErrUserExists.Error()})
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// GetUser handles GET /user/{email}. An unknown email yields null.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	user, err := h.users.Get(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, user)
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, users)
}

// AdminUsers handles GET /admin-users?page=&limit=.
func (h *Handler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := model.NewPagination(q.Get("page"), q.Get("limit"), model.DefaultUsersPerPage)

	page, err := h.users.Page(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, page)
}

// UsersCount handles GET /usersCount.
func (h *Handler) UsersCount(w http.ResponseWriter, r *http.Request) {
	counts, err := h.users.Counts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, counts)
}

// paymentRecord is the body of PUT /update-payment. Time is RFC 3339; the
// server clock is used when it is absent.
type paymentRecord struct {
	Email string  `json:"email"`
	Time  *string `json:"time"`
}

// UpdatePayment handles PUT /update-payment.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var in paymentRecord
	if !decodeJSON(w, r, &in) {
		return
	}

	var at *time.Time
	if in.Time != nil && *in.Time != "" {
		t, err := time.Parse(time.RFC3339, *in.Time)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "time must be an RFC 3339 timestamp")
			return
		}
		at = &t
	}

	res, err := h.users.RecordPayment(r.Context(), in.Email, at)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// CancelPremium handles PUT /update-user-premium/{email}.
func (h *Handler) CancelPremium(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	res, err := h.users.CancelPremium(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// UpdateUser handles PUT /update-user/{email}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	var in service.ProfileUpdate
	if !decodeJSON(w, r, &in) {
		return
	}

	res, err := h.users.UpdateProfile(r.Context(), email, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// MakeAdmin handles PUT /update-user-role/{id}.
func (h *Handler) MakeAdmin(w http.ResponseWriter, r *http.Request) {
	res, err := h.users.MakeAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// AdminByEmail handles GET /admin/{email}: a list holding the user when it
// is an admin, empty otherwise.
func (h *Handler) AdminByEmail(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	admins, err := h.users.Admins(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, admins)
}
