// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusApproved, StatusApproved, true},
		{StatusDeclined, StatusApproved, false},
		{StatusPending, StatusDeclined, true},
		{StatusApproved, StatusDeclined, true},
		{StatusDeclined, StatusDeclined, false},
		{StatusApproved, StatusPending, false},
		{StatusDeclined, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTransitionSourcesUnknownTarget(t *testing.T) {
	if got := TransitionSources(StatusPending); got != nil {
		t.Errorf("TransitionSources(pending) = %v, want nil", got)
	}
}

func TestArticleFlags(t *testing.T) {
	a := &Article{Status: StatusApproved, IsPremium: PremiumYes}
	if !a.IsPremiumContent() {
		t.Error("IsPremiumContent() = false for premium article")
	}

	a = &Article{Status: StatusPending, IsPremium: PremiumNo}
	if a.IsPremiumContent() {
		t.Error("IsPremiumContent() = true for non-premium article")
	}
}

func TestArticleLock(t *testing.T) {
	a := &Article{Title: "Scoop", Description: "<p>the story</p>", IsPremium: PremiumYes}

	a.Lock()

	if a.Description != "" {
		t.Errorf("Description = %q, want empty", a.Description)
	}
	if !a.Locked {
		t.Error("Locked = false, want true")
	}
	if a.Title != "Scoop" {
		t.Errorf("Title = %q, want %q", a.Title, "Scoop")
	}
}
