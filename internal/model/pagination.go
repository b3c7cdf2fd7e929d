// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"math"
	"strconv"
)

// Default page sizes of the admin listings.
const (
	DefaultUsersPerPage    = 10
	DefaultArticlesPerPage = 6
	MaxPageLimit           = 100
)

// Pagination is a 1-based page request.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination parses raw page and limit query values. Missing, unparsable
// or non-positive values fall back to page 1 and defaultLimit. The limit is
// capped at MaxPageLimit.
func NewPagination(pageStr, limitStr string, defaultLimit int) Pagination {
	p := Pagination{Page: 1, Limit: defaultLimit}
	if n, err := strconv.Atoi(pageStr); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
		p.Limit = min(n, MaxPageLimit)
	}
	return p
}

// Offset returns the number of records to skip. It saturates at
// math.MaxInt instead of wrapping for very large pages.
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// PastEnd reports whether the page lies beyond the last page of total
// records.
func (p Pagination) PastEnd(total int64) bool {
	return p.Page > p.TotalPages(total)
}

// TotalPages returns ceil(total/limit).
func (p Pagination) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
