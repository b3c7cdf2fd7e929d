// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/newsroom/internal/service"
)

// CreatePublisher handles POST /publishers.
func (h *Handler) CreatePublisher(w http.ResponseWriter, r *http.Request) {
	var in service.PublisherInput
	if !decodeJSON(w, r, &in) {
		return
	}

	res, err := h.publishers.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// ListPublishers handles GET /publishers.
func (h *Handler) ListPublishers(w http.ResponseWriter, r *http.Request) {
	publishers, err := h.publishers.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, publishers)
}
