// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package payment creates card payment intents for premium subscriptions.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var (
	// ErrInvalidPrice is returned for prices that are not positive numbers.
	ErrInvalidPrice = errors.New("price must be a positive number")
	// ErrProvider wraps failures reported by the payment provider.
	ErrProvider = errors.New("payment provider error")
	// ErrDisabled is returned when no provider key is configured.
	ErrDisabled = errors.New("payments are not configured")
)

// IntentCreator creates a payment intent for an amount in cents and returns
// its client secret.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amountCents int64) (string, error)
}

// ParsePrice parses a decimal price in dollars and converts it to cents.
func ParsePrice(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidPrice
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return Cents(price)
}

// Cents converts a price in dollars to whole cents, rounding to nearest.
func Cents(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidPrice
	}
	cents := math.Round(price * 100)
	if cents < 1 || cents > math.MaxInt64/2 {
		return 0, ErrInvalidPrice
	}
	return int64(cents), nil
}

// intentAPI is the part of the Stripe client used here.
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeGateway creates USD card payment intents through Stripe.
type StripeGateway struct {
	intents intentAPI
}

// NewStripeGateway creates a gateway authenticated with the secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	sc := client.New(secretKey, nil)
	return &StripeGateway{intents: sc.PaymentIntents}
}

// CreateIntent implements IntentCreator.
func (g *StripeGateway) CreateIntent(ctx context.Context, amountCents int64) (string, error) {
	if amountCents <= 0 {
		return "", ErrInvalidPrice
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountCents),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := g.intents.New(params)
	if err != nil {
		slog.Error("payment intent creation failed", "amount", amountCents, "error", err)
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return pi.ClientSecret, nil
}

// Disabled is an IntentCreator used when no provider key is configured.
type Disabled struct{}

// CreateIntent always returns ErrDisabled.
func (Disabled) CreateIntent(context.Context, int64) (string, error) {
	return "", ErrDisabled
}

var (
	_ IntentCreator = (*StripeGateway)(nil)
	_ IntentCreator = Disabled{}
)
