// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"slices"
	"time"
)

// Article statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// Premium flag values. The flag is stored as a string for wire compatibility
// with the web front end.
const (
	PremiumYes = "yes"
	PremiumNo  = "no"
)

// transitionSources lists, per target status, the statuses an article may
// move from. Approving an approved article is a no-op, not an error.
var transitionSources = map[string][]string{
	StatusApproved: {StatusPending, StatusApproved},
	StatusDeclined: {StatusPending, StatusApproved},
}

// Article represents a submitted news article.
type Article struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Author        string    `json:"author"`
	AuthorName    string    `json:"authorName,omitempty"`
	AuthorPhoto   string    `json:"authorPhoto,omitempty"`
	Publisher     string    `json:"publisher"`
	Tags          []string  `json:"tags"`
	Photo         string    `json:"photo"`
	Description   string    `json:"description"`
	// Locked is set on premium articles listed for a reader without
	// premium access; their description is withheld.
	Locked        bool      `json:"locked,omitempty"`
	Status        string    `json:"status"`
	DeclineReason *string   `json:"declineReason"`
	IsPremium     string    `json:"isPremium"`
	Count         int64     `json:"count"`
	CreatedAt     time.Time `json:"createdAt"`
}

// IsPremiumContent returns true if the article is restricted to subscribers.
func (a *Article) IsPremiumContent() bool {
	return a.IsPremium == PremiumYes
}

// Lock turns the article into a teaser: the description is dropped and
// Locked is set. Everything else stays for listing cards.
func (a *Article) Lock() {
	a.Description = ""
	a.Locked = true
}

// TransitionSources returns the statuses from which an article may move to
// target. It returns nil for targets that no operation can reach.
func TransitionSources(target string) []string {
	return transitionSources[target]
}

// CanTransition reports whether an article in status from may move to status to.
func CanTransition(from, to string) bool {
	return slices.Contains(transitionSources[to], from)
}

// GroupCount is one row of a grouping aggregation. The key is serialized as
// "_id" to match the shape the dashboard charts consume.
type GroupCount struct {
	Key   string `json:"_id"`
	Count int64  `json:"count"`
}
