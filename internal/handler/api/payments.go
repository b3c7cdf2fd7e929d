// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"

	"github.com/olegiv/newsroom/internal/payment"
)

// paymentIntentRequest accepts the price as a JSON number or numeric string.
type paymentIntentRequest struct {
	Price json.Number `json:"price"`
}

// PaymentIntentResponse is the body of a successful POST /create-payment-intent.
type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// CreatePaymentIntent handles POST /create-payment-intent.
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var in paymentIntentRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	cents, err := payment.ParsePrice(in.Price.String())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	secret, err := h.payments.CreateIntent(r.Context(), cents)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, PaymentIntentResponse{ClientSecret: secret})
}
