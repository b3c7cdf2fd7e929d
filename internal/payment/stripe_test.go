// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package payment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stripe/stripe-go/v76"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIntents struct {
	got    *stripe.PaymentIntentParams
	secret string
	err    error
}

func (f *fakeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{ClientSecret: f.secret}, nil
}

func TestCents(t *testing.T) {
	tests := []struct {
		price   float64
		want    int64
		wantErr bool
	}{
		{9.99, 999, false},
		{0.1 + 0.2, 30, false},
		{1, 100, false},
		{0.004, 0, true},
		{0, 0, true},
		{-5, 0, true},
		{math.NaN(), 0, true},
		{math.Inf(1), 0, true},
	}
	for _, tt := range tests {
		got, err := Cents(tt.price)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidPrice, "price %v", tt.price)
			continue
		}
		require.NoError(t, err, "price %v", tt.price)
		assert.Equal(t, tt.want, got, "price %v", tt.price)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"5", 500, false},
		{" 12.50 ", 1250, false},
		{"", 0, true},
		{"abc", 0, true},
		{"NaN", 0, true},
		{"-1", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.raw)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidPrice, "raw %q", tt.raw)
			continue
		}
		require.NoError(t, err, "raw %q", tt.raw)
		assert.Equal(t, tt.want, got, "raw %q", tt.raw)
	}
}

func TestStripeGateway_CreateIntent(t *testing.T) {
	fake := &fakeIntents{secret: "pi_123_secret_456"}
	g := &StripeGateway{intents: fake}
	ctx := context.Background()

	secret, err := g.CreateIntent(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret_456", secret)

	require.NotNil(t, fake.got)
	assert.Equal(t, int64(999), *fake.got.Amount)
	assert.Equal(t, "usd", *fake.got.Currency)
	require.Len(t, fake.got.PaymentMethodTypes, 1)
	assert.Equal(t, "card", *fake.got.PaymentMethodTypes[0])
	assert.Equal(t, ctx, fake.got.Context)
}

func TestStripeGateway_ProviderError(t *testing.T) {
	g := &StripeGateway{intents: &fakeIntents{err: errors.New("card network down")}}

	_, err := g.CreateIntent(context.Background(), 500)
	assert.ErrorIs(t, err, ErrProvider)
}

func TestStripeGateway_RejectsNonPositiveAmount(t *testing.T) {
	fake := &fakeIntents{}
	g := &StripeGateway{intents: fake}

	_, err := g.CreateIntent(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.Nil(t, fake.got, "provider must not be called")
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.CreateIntent(context.Background(), 100)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewStripeGateway(t *testing.T) {
	g := NewStripeGateway("sk_test_dummy")
	assert.NotNil(t, g.intents)
}
