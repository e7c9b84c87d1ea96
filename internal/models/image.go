// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// GalleryImage is an ordered, captioned image attached to a post. It is
// owned exclusively by its parent post and removed with it (ON DELETE
// CASCADE). DisplayOrder is a dense, zero-based ranking within one post's
// gallery.
type GalleryImage struct {
	ID           uuid.UUID `json:"id"`
	PostID       uuid.UUID `json:"post_id"`
	ImageURL     string    `json:"image_url"`
	Caption      string    `json:"caption"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}
