// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"

	"github.com/google/uuid"

	"agririse/internal/models"
)

// Repository is the structured-store contract the workflow drives. It is
// satisfied by store.ContentRepository; tests substitute an in-memory fake.
type Repository interface {
	// GetPost returns the post or (nil, nil) when it does not exist.
	GetPost(id uuid.UUID) (*models.Post, error)

	// ListGalleryImages returns a post's images ordered by display_order
	// ascending.
	ListGalleryImages(postID uuid.UUID) ([]models.GalleryImage, error)

	// UpsertPost inserts the post when its ID is uuid.Nil, otherwise
	// updates it in place, and returns the persisted ID.
	UpsertPost(p *models.Post) (uuid.UUID, error)

	// InsertGalleryImage persists a new image row and returns its ID.
	InsertGalleryImage(img *models.GalleryImage) (uuid.UUID, error)

	// UpdateGalleryImageMeta persists caption/order edits for an
	// already-stored image without re-uploading.
	UpdateGalleryImageMeta(id uuid.UUID, caption string, displayOrder int) error

	// DeleteGalleryImage removes a single image row.
	DeleteGalleryImage(id uuid.UUID) error
}

// ObjectStore is the binary-store contract. Objects are always stored
// before any row references them.
type ObjectStore interface {
	// StoreObject uploads the blob under a collision-resistant key inside
	// dir and returns a durable public URL.
	StoreObject(ctx context.Context, data []byte, contentType, dir string) (string, error)

	// DeleteObject removes a previously stored object by its public URL.
	// Used for best-effort cleanup; failures leave an accepted orphan.
	DeleteObject(ctx context.Context, url string) error
}
