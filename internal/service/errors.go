// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the newsroom's business rules on top of the
// store: article moderation and search, user registration and premium
// windows, and the publisher catalogue.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors translated to HTTP status codes by the API layer.
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidID    = errors.New("invalid id")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	// ErrUserExists is reported by registration when the email is taken.
	ErrUserExists = errors.New("user already exist")
)

// validationError wraps ErrValidation with a field-specific message.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// checkID rejects ids that are not UUIDs before they reach storage.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// requireEmail trims an email and checks it looks like one.
func requireEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", validationError("email is required")
	}
	if !strings.Contains(email, "@") {
		return "", validationError("email %q is not valid", email)
	}
	return email, nil
}
