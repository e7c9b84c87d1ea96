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

// ImageStore handles gallery image database operations. Captions are
// nullable in the schema; empty strings are stored as NULL and read back
// as empty strings.
type ImageStore struct {
	db *sql.DB
}

// NewImageStore creates a new ImageStore with the given database connection.
func NewImageStore(db *sql.DB) *ImageStore {
	return &ImageStore{db: db}
}

// ListByPost returns a post's gallery ordered by display position.
func (s *ImageStore) ListByPost(postID uuid.UUID) ([]models.GalleryImage, error) {
	rows, err := s.db.Query(`
		SELECT id, post_id, image_url, COALESCE(caption, ''), display_order, created_at
		FROM post_images
		WHERE post_id = $1
		ORDER BY display_order ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list gallery images: %w", err)
	}
	defer rows.Close()

	var images []models.GalleryImage
	for rows.Next() {
		var img models.GalleryImage
		if err := rows.Scan(
			&img.ID, &img.PostID, &img.ImageURL, &img.Caption,
			&img.DisplayOrder, &img.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan gallery image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// FindByID retrieves a single gallery image. Returns nil if not found.
func (s *ImageStore) FindByID(id uuid.UUID) (*models.GalleryImage, error) {
	img := &models.GalleryImage{}
	err := s.db.QueryRow(`
		SELECT id, post_id, image_url, COALESCE(caption, ''), display_order, created_at
		FROM post_images WHERE id = $1
	`, id).Scan(
		&img.ID, &img.PostID, &img.ImageURL, &img.Caption,
		&img.DisplayOrder, &img.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find gallery image: %w", err)
	}
	return img, nil
}

// Create inserts a new gallery image row and returns its generated ID.
func (s *ImageStore) Create(img *models.GalleryImage) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO post_images (post_id, image_url, caption, display_order)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING id
	`, img.PostID, img.ImageURL, img.Caption, img.DisplayOrder).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create gallery image: %w", err)
	}
	return id, nil
}

// UpdateMeta rewrites the caption and display position of an existing
// image. The stored object itself never changes here.
func (s *ImageStore) UpdateMeta(id uuid.UUID, caption string, displayOrder int) error {
	_, err := s.db.Exec(`
		UPDATE post_images SET caption = NULLIF($1, ''), display_order = $2
		WHERE id = $3
	`, caption, displayOrder, id)
	if err != nil {
		return fmt.Errorf("update gallery image: %w", err)
	}
	return nil
}

// Delete removes a single gallery image row.
func (s *ImageStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM post_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete gallery image: %w", err)
	}
	return nil
}

// DeleteByPost removes every gallery row of a post in one statement.
// Post deletion itself relies on the FK cascade; this is for clearing a
// gallery while keeping the post.
func (s *ImageStore) DeleteByPost(postID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM post_images WHERE post_id = $1`, postID)
	if err != nil {
		return fmt.Errorf("delete post gallery: %w", err)
	}
	return nil
}
