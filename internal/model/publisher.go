// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Publisher is a named outlet articles are filed under.
type Publisher struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Logo      string    `json:"logo"`
	CreatedAt time.Time `json:"createdAt"`
}
