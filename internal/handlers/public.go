// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"agririse/internal/cache"
	"agririse/internal/markdown"
	"agririse/internal/models"
	"agririse/internal/store"
)

// Public serves the visitor-facing feed. Responses are cached in Valkey
// and invalidated by the admin handlers on every save or delete.
type Public struct {
	posts     *store.PostStore
	images    *store.ImageStore
	postCache *cache.PostCache
}

// NewPublic creates the public handler group.
func NewPublic(posts *store.PostStore, images *store.ImageStore, postCache *cache.PostCache) *Public {
	return &Public{
		posts:     posts,
		images:    images,
		postCache: postCache,
	}
}

// postSummary is one feed entry. The full content stays out of the feed.
type postSummary struct {
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Excerpt     string          `json:"excerpt,omitempty"`
	Category    models.Category `json:"category"`
	CoverImage  string          `json:"cover_image,omitempty"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}

// postDetail is the full public shape of one post.
type postDetail struct {
	Title         string                `json:"title"`
	Slug          string                `json:"slug"`
	Excerpt       string                `json:"excerpt,omitempty"`
	Content       string                `json:"content"`
	ContentFormat models.ContentFormat  `json:"content_format"`
	ContentHTML   string                `json:"content_html,omitempty"`
	Category      models.Category       `json:"category"`
	CoverImage    string                `json:"cover_image,omitempty"`
	PublishedAt   *time.Time            `json:"published_at,omitempty"`
	Gallery       []models.GalleryImage `json:"gallery"`
}

// Index returns the published feed, newest first.
func (p *Public) Index(w http.ResponseWriter, r *http.Request) {
	if cached, ok := p.postCache.GetIndex(r.Context()); ok {
		writeCachedJSON(w, cached)
		return
	}

	posts, err := p.posts.ListPublished()
	if err != nil {
		slog.Error("list published posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	feed := make([]postSummary, 0, len(posts))
	for _, post := range posts {
		s := postSummary{
			Title:       post.Title,
			Slug:        post.Slug,
			Category:    post.Category,
			PublishedAt: post.PublishedAt,
		}
		if post.Excerpt != nil {
			s.Excerpt = *post.Excerpt
		}
		if post.CoverImage != nil {
			s.CoverImage = *post.CoverImage
		}
		feed = append(feed, s)
	}

	body, err := json.Marshal(feed)
	if err != nil {
		slog.Error("feed encode failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	p.postCache.SetIndex(r.Context(), body)
	writeCachedJSON(w, body)
}

// Show returns one published post by slug. Drafts and unknown slugs are
// indistinguishable to visitors. Markdown posts carry their rendered HTML
// alongside the source.
func (p *Public) Show(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if cached, ok := p.postCache.GetPost(r.Context(), slug); ok {
		writeCachedJSON(w, cached)
		return
	}

	post, err := p.posts.FindPublishedBySlug(slug)
	if err != nil {
		slog.Error("find post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	gallery, err := p.images.ListByPost(post.ID)
	if err != nil {
		slog.Error("list gallery failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if gallery == nil {
		gallery = []models.GalleryImage{}
	}

	detail := postDetail{
		Title:         post.Title,
		Slug:          post.Slug,
		Content:       post.Content,
		ContentFormat: post.ContentFormat,
		Category:      post.Category,
		PublishedAt:   post.PublishedAt,
		Gallery:       gallery,
	}
	if post.Excerpt != nil {
		detail.Excerpt = *post.Excerpt
	}
	if post.CoverImage != nil {
		detail.CoverImage = *post.CoverImage
	}
	if post.ContentFormat == models.FormatMarkdown {
		html, err := markdown.ToHTML(post.Content)
		if err != nil {
			slog.Error("markdown render failed", "slug", slug, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		detail.ContentHTML = html
	}

	body, err := json.Marshal(detail)
	if err != nil {
		slog.Error("post encode failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	p.postCache.SetPost(r.Context(), slug, body)
	writeCachedJSON(w, body)
}

// writeCachedJSON writes a pre-marshalled JSON body.
func writeCachedJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("response write failed", "error", err)
	}
}
