// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain records of the newsroom (users, articles,
// publishers) together with the rules that do not need storage: article
// status transitions, the public search filter chain and pagination maths.
package model

import "time"

// User roles. An empty role means a regular reader/writer.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a registered reader or writer.
type User struct {
	ID           string     `json:"_id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Photo        string     `json:"photo"`
	Role         string     `json:"role,omitempty"`
	PremiumTaken *time.Time `json:"premiumTaken"`
	PasswordHash string     `json:"-"` // Never expose in JSON
	CreatedAt    time.Time  `json:"createdAt"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasPremium returns true while the user's premium window is open.
func (u *User) HasPremium() bool {
	return u.PremiumTaken != nil
}

// HasPassword returns true if the user can obtain tokens with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// UserCounts is the dashboard summary of registered and premium users.
type UserCounts struct {
	TotalUsers       int64 `json:"totalUsers"`
	PremiumUserCount int64 `json:"premiumUserCount"`
}
