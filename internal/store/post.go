// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store contains the database access layer. Each store wraps a
// table and exposes the queries the handlers and the editor workflow need.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"agririse/internal/models"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, slug, excerpt, content, content_format,
	       category, cover_image, is_published, published_at,
	       created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.ContentFormat,
		&p.Category, &p.CoverImage, &p.IsPublished, &p.PublishedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns every post, drafts included, newest first. Used by the
// admin dashboard.
func (s *PostStore) List() ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT ` + postColumns + `
		FROM posts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// ListPublished returns published posts ordered by publish date descending.
// Used for the public feed.
func (s *PostStore) ListPublished() ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT ` + postColumns + `
		FROM posts
		WHERE is_published = TRUE
		ORDER BY published_at DESC NULLS LAST
	`)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(`
		SELECT `+postColumns+`
		FROM posts WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindPublishedBySlug retrieves a published post by its slug. Returns nil
// if the slug is unknown or the post is a draft. Used for public reads.
func (s *PostStore) FindPublishedBySlug(slug string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(`
		SELECT `+postColumns+`
		FROM posts WHERE slug = $1 AND is_published = TRUE
	`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// Create inserts a new post and returns it with the generated ID and
// timestamps. The publish timestamp is written exactly as given; stamping
// publish transitions is the editor workflow's job.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	result, err := scanPost(s.db.QueryRow(`
		INSERT INTO posts (title, slug, excerpt, content, content_format,
		                   category, cover_image, is_published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+postColumns+`
	`, p.Title, p.Slug, p.Excerpt, p.Content, p.ContentFormat,
		p.Category, p.CoverImage, p.IsPublished, p.PublishedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update modifies an existing post.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, excerpt = $3, content = $4,
			content_format = $5, category = $6, cover_image = $7,
			is_published = $8, published_at = $9, updated_at = NOW()
		WHERE id = $10
	`, p.Title, p.Slug, p.Excerpt, p.Content,
		p.ContentFormat, p.Category, p.CoverImage,
		p.IsPublished, p.PublishedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID. Gallery rows go with it via the foreign
// key cascade.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// SlugExists reports whether another post already uses the slug. The
// excludeID carves out the post being edited so saving it under its own
// slug is not a conflict.
func (s *PostStore) SlugExists(slug string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1 AND id != $2)
	`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// Count returns the number of posts.
func (s *PostStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}
