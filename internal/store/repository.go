// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"agririse/internal/models"
)

// ContentRepository bundles the post and image stores behind the method
// set the editor workflow drives. Handlers use the stores directly for
// list and delete operations.
type ContentRepository struct {
	Posts  *PostStore
	Images *ImageStore
}

// NewContentRepository creates the repository over one shared connection.
func NewContentRepository(db *sql.DB) *ContentRepository {
	return &ContentRepository{
		Posts:  NewPostStore(db),
		Images: NewImageStore(db),
	}
}

// GetPost returns the post or (nil, nil) when it does not exist.
func (r *ContentRepository) GetPost(id uuid.UUID) (*models.Post, error) {
	return r.Posts.FindByID(id)
}

// ListGalleryImages returns a post's images ordered by display position.
func (r *ContentRepository) ListGalleryImages(postID uuid.UUID) ([]models.GalleryImage, error) {
	return r.Images.ListByPost(postID)
}

// UpsertPost inserts the post when its ID is uuid.Nil, otherwise updates
// it in place, and returns the persisted ID.
func (r *ContentRepository) UpsertPost(p *models.Post) (uuid.UUID, error) {
	if p.ID == uuid.Nil {
		created, err := r.Posts.Create(p)
		if err != nil {
			return uuid.Nil, err
		}
		return created.ID, nil
	}
	if err := r.Posts.Update(p); err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// InsertGalleryImage persists a new image row and returns its ID.
func (r *ContentRepository) InsertGalleryImage(img *models.GalleryImage) (uuid.UUID, error) {
	if img.PostID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("insert gallery image: no post id")
	}
	return r.Images.Create(img)
}

// UpdateGalleryImageMeta persists caption/order edits for a stored image.
func (r *ContentRepository) UpdateGalleryImageMeta(id uuid.UUID, caption string, displayOrder int) error {
	return r.Images.UpdateMeta(id, caption, displayOrder)
}

// DeleteGalleryImage removes a single image row.
func (r *ContentRepository) DeleteGalleryImage(id uuid.UUID) error {
	return r.Images.Delete(id)
}
