// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "strings"

// FilterAll is the filter value the front end sends for "no filter".
const FilterAll = "all"

// SearchField identifies which single field a public search filters on.
type SearchField int

// Search fields in precedence order.
const (
	SearchNone SearchField = iota
	SearchTitle
	SearchPublisher
	SearchTag
)

// String returns the field name used in logs.
func (f SearchField) String() string {
	switch f {
	case SearchTitle:
		return "title"
	case SearchPublisher:
		return "publisher"
	case SearchTag:
		return "tag"
	default:
		return "none"
	}
}

// SearchFilter is the resolved public search: at most one field and its value.
type SearchFilter struct {
	Field SearchField
	Value string
}

// ResolveSearchFilter picks the filter to apply from the three optional query
// values. The first non-blank value in the order title, publisher, tag wins;
// the others are ignored. A winning value of "all" means no filter.
func ResolveSearchFilter(title, publisher, tag string) SearchFilter {
	candidates := []struct {
		field SearchField
		value string
	}{
		{SearchTitle, title},
		{SearchPublisher, publisher},
		{SearchTag, tag},
	}

	for _, c := range candidates {
		if strings.TrimSpace(c.value) == "" {
			continue
		}
		if c.value == FilterAll {
			return SearchFilter{Field: SearchNone}
		}
		return SearchFilter{Field: c.field, Value: c.value}
	}

	return SearchFilter{Field: SearchNone}
}

// ResolveAuthorFilter returns the author substring to match, or "" when the
// value is blank or "all".
func ResolveAuthorFilter(author string) string {
	if strings.TrimSpace(author) == "" || author == FilterAll {
		return ""
	}
	return author
}
