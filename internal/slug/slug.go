// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"regexp"
	"strings"
)

// nonAlphanumeric matches any run of characters that isn't a lowercase
// letter or digit. Each run collapses to a single hyphen, so punctuation
// between words becomes a word boundary instead of disappearing.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// fallback is returned when the character filter leaves nothing, so a
// non-blank input never yields an empty slug.
const fallback = "untitled"

// Generate creates a URL-friendly slug from the given string.
// Example: "Smart Dairy! 2.0" → "smart-dairy-2-0"
func Generate(s string) string {
	trimmed := strings.TrimSpace(s)
	result := strings.ToLower(trimmed)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if result == "" && trimmed != "" {
		return fallback
	}
	return result
}
