// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util holds small text helpers shared by the services.
package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength caps generated slugs. Longer slugs are cut at the last
// word boundary that fits.
const MaxSlugLength = 96

// stripMarks removes combining accents after canonical decomposition.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify turns a headline or publisher name into a lowercase,
// hyphen-separated ASCII slug. Letters outside ASCII that have no
// decomposed form are dropped, so the result may be empty.
func Slugify(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}

	return truncateSlug(b.String(), MaxSlugLength)
}

// SlugifyOr returns Slugify(s), or fallback when s yields no usable
// characters.
func SlugifyOr(s, fallback string) string {
	if slug := Slugify(s); slug != "" {
		return slug
	}
	return fallback
}

func truncateSlug(slug string, limit int) string {
	if len(slug) <= limit {
		return slug
	}
	cut := slug[:limit]
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		cut = cut[:i]
	}
	return cut
}
