// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor implements the post editing workflow: an in-memory draft,
// pure gallery reordering, and the ordered save sequence that commits a
// draft through the repository and object store. It is a plain library
// driven by whatever transport or UI sits above it.
package editor

import (
	"time"

	"github.com/google/uuid"

	"agririse/internal/models"
)

// PendingFile is an image file staged in memory, not yet uploaded. It
// exists only for the lifetime of the editing session.
type PendingFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// GalleryEntry is one image in the draft gallery: either an already
// persisted models.GalleryImage or a pending file awaiting upload. A
// pending entry has no ID; a persisted entry always has both an ID and a
// durable ImageURL.
type GalleryEntry struct {
	ID           uuid.UUID // uuid.Nil until persisted
	ImageURL     string    // durable URL once persisted; empty or preview ref while pending
	Caption      string
	DisplayOrder int
	File         *PendingFile // non-nil only while pending

	// Loaded values, used at save time to detect caption/order edits on
	// persisted entries.
	loadedCaption string
	loadedOrder   int
}

// persisted reports whether the entry is backed by a repository row.
func (e *GalleryEntry) persisted() bool {
	return e.ID != uuid.Nil
}

// metaChanged reports whether a persisted entry needs its metadata row
// rewritten for the given final position.
func (e *GalleryEntry) metaChanged(finalOrder int) bool {
	return e.Caption != e.loadedCaption || finalOrder != e.loadedOrder
}

// Draft mirrors a post plus its gallery while it is being edited. It is
// never persisted as-is; Save commits it through the repository.
type Draft struct {
	ID            uuid.UUID // uuid.Nil until first save
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	ContentFormat models.ContentFormat
	Category      models.Category
	CoverURL      string       // current durable cover reference, if any
	CoverFile     *PendingFile // staged replacement, uploaded on save
	IsPublished   bool
	Gallery       []GalleryEntry

	publishedAt     *time.Time // loaded value; the save step stamps transitions
	createdAt       time.Time
	loadedPublished bool   // publish flag on record; Save stamps the false→true edge
	loadedCoverURL  string // cover object on record, cleaned up when replaced
	slugEdited      bool   // once the admin touches the slug, stop deriving it
}

// newDraft returns an empty draft with defaults applied.
func newDraft() *Draft {
	return &Draft{
		ContentFormat: models.FormatHTML,
		Category:      models.DefaultCategory,
	}
}

// draftFromPost builds a draft from a loaded post and its gallery.
func draftFromPost(p *models.Post, images []models.GalleryImage) *Draft {
	d := &Draft{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		ContentFormat:   p.ContentFormat,
		Category:        p.Category,
		IsPublished:     p.IsPublished,
		publishedAt:     p.PublishedAt,
		createdAt:       p.CreatedAt,
		loadedPublished: p.IsPublished,
		slugEdited:      true, // existing slugs are never silently rewritten
	}
	if p.Excerpt != nil {
		d.Excerpt = *p.Excerpt
	}
	if p.CoverImage != nil {
		d.CoverURL = *p.CoverImage
		d.loadedCoverURL = *p.CoverImage
	}
	for _, img := range images {
		d.Gallery = append(d.Gallery, GalleryEntry{
			ID:            img.ID,
			ImageURL:      img.ImageURL,
			Caption:       img.Caption,
			DisplayOrder:  img.DisplayOrder,
			loadedCaption: img.Caption,
			loadedOrder:   img.DisplayOrder,
		})
	}
	return d
}

// post materializes the draft's scalar fields as a models.Post. The
// publish timestamp is stamped by the save step, not here.
func (d *Draft) post() *models.Post {
	p := &models.Post{
		ID:            d.ID,
		Title:         d.Title,
		Slug:          d.Slug,
		Content:       d.Content,
		ContentFormat: d.ContentFormat,
		Category:      d.Category,
		IsPublished:   d.IsPublished,
		PublishedAt:   d.publishedAt,
		CreatedAt:     d.createdAt,
	}
	if d.Excerpt != "" {
		excerpt := d.Excerpt
		p.Excerpt = &excerpt
	}
	return p
}

// validate checks the draft against the canonical post validation and
// wraps the first problem as a ValidationError.
func (d *Draft) validate() error {
	if err := d.post().Validate(); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}
