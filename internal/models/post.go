// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Category is the editorial tag attached to a post.
type Category string

const (
	CategoryUpdate  Category = "update"
	CategoryProject Category = "project"
	CategoryEvent   Category = "event"
	CategoryNews    Category = "news"
)

// DefaultCategory is assigned to posts created without an explicit category.
const DefaultCategory = CategoryUpdate

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryUpdate, CategoryProject, CategoryEvent, CategoryNews:
		return true
	}
	return false
}

// ContentFormat identifies how a post body is authored. HTML bodies come
// from the rich-text editor and are served as-is; markdown bodies are
// rendered to HTML on the public read.
type ContentFormat string

const (
	FormatHTML     ContentFormat = "html"
	FormatMarkdown ContentFormat = "markdown"
)

// Validation limits for post fields.
const (
	MaxTitleLen   = 300
	MaxSlugLen    = 300
	MaxContentLen = 100_000
	MaxExcerptLen = 1_000
)

// Post is a blog/update article on the AgriRise site. Visibility on public
// surfaces is governed solely by IsPublished; PublishedAt is a sort and
// display field, never the authority.
type Post struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Excerpt       *string       `json:"excerpt,omitempty"`
	Content       string        `json:"content"`
	ContentFormat ContentFormat `json:"content_format"`
	Category      Category      `json:"category"`
	CoverImage    *string       `json:"cover_image,omitempty"`
	IsPublished   bool          `json:"is_published"`
	PublishedAt   *time.Time    `json:"published_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Validate checks the fields required before a post may be saved and
// returns the first problem found. It is the single validation path for
// every editor surface.
func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(p.Title) > MaxTitleLen {
		return fmt.Errorf("title is too long (max %d characters)", MaxTitleLen)
	}
	if strings.TrimSpace(p.Slug) == "" {
		return fmt.Errorf("slug is required")
	}
	if utf8.RuneCountInString(p.Slug) > MaxSlugLen {
		return fmt.Errorf("slug is too long (max %d characters)", MaxSlugLen)
	}
	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("content is required")
	}
	if utf8.RuneCountInString(p.Content) > MaxContentLen {
		return fmt.Errorf("content is too long (max %d characters)", MaxContentLen)
	}
	if p.Excerpt != nil && utf8.RuneCountInString(*p.Excerpt) > MaxExcerptLen {
		return fmt.Errorf("excerpt is too long (max %d characters)", MaxExcerptLen)
	}
	if !ValidCategory(p.Category) {
		return fmt.Errorf("unknown category %q", p.Category)
	}
	return nil
}
