// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agririse/internal/models"
	"agririse/internal/slug"
)

// State is the workflow lifecycle phase.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateSaving  State = "saving"
	StateSaved   State = "saved"
)

// Workflow orchestrates one editing session for one post: it collects
// edits into a draft and commits them in a fixed order — staged cover
// upload, post upsert, then per-entry gallery sync. Gallery entries are
// processed sequentially so a partial failure never leaves the ordering
// inconsistent.
type Workflow struct {
	repo    Repository
	objects ObjectStore
	state   State
	draft   *Draft
}

// New starts a session for a brand-new post. No network call is made; the
// workflow is immediately Ready with an empty draft.
func New(repo Repository, objects ObjectStore) *Workflow {
	return &Workflow{
		repo:    repo,
		objects: objects,
		state:   StateReady,
		draft:   newDraft(),
	}
}

// Load starts a session for an existing post, fetching it and its gallery.
// Returns ErrNotFound when the post does not exist, or a RepositoryError
// on a failed read; in both cases there is no session to continue.
func Load(repo Repository, objects ObjectStore, id uuid.UUID) (*Workflow, error) {
	w := &Workflow{repo: repo, objects: objects, state: StateLoading}

	post, err := repo.GetPost(id)
	if err != nil {
		return nil, &RepositoryError{Op: "load post", Err: err}
	}
	if post == nil {
		return nil, ErrNotFound
	}

	images, err := repo.ListGalleryImages(id)
	if err != nil {
		return nil, &RepositoryError{Op: "load gallery", Err: err}
	}

	w.draft = draftFromPost(post, images)
	w.state = StateReady
	return w, nil
}

// State returns the current lifecycle phase.
func (w *Workflow) State() State {
	return w.state
}

// Draft exposes the in-memory draft for rendering.
func (w *Workflow) Draft() *Draft {
	return w.draft
}

// editable gates the local mutators: edits are accepted only while Ready.
func (w *Workflow) editable() bool {
	return w.state == StateReady
}

// SetTitle updates the title and, until the slug has been edited directly,
// re-derives the slug from it.
func (w *Workflow) SetTitle(title string) {
	if !w.editable() {
		return
	}
	w.draft.Title = title
	if !w.draft.slugEdited {
		w.draft.Slug = slug.Generate(title)
	}
}

// SetSlug sets the slug directly and stops future derivation from the
// title.
func (w *Workflow) SetSlug(s string) {
	if !w.editable() {
		return
	}
	w.draft.Slug = s
	w.draft.slugEdited = true
}

// SetExcerpt updates the optional summary.
func (w *Workflow) SetExcerpt(excerpt string) {
	if !w.editable() {
		return
	}
	w.draft.Excerpt = excerpt
}

// SetContent replaces the body.
func (w *Workflow) SetContent(content string, format models.ContentFormat) {
	if !w.editable() {
		return
	}
	w.draft.Content = content
	w.draft.ContentFormat = format
}

// SetCategory updates the editorial tag.
func (w *Workflow) SetCategory(c models.Category) {
	if !w.editable() {
		return
	}
	w.draft.Category = c
}

// SetPublished toggles the publish flag. The publish timestamp is stamped
// during Save, where the false→true transition is observed.
func (w *Workflow) SetPublished(published bool) {
	if !w.editable() {
		return
	}
	w.draft.IsPublished = published
}

// StageCover stages a replacement cover file. The upload happens first in
// the save sequence; until then the draft keeps only the in-memory file.
func (w *Workflow) StageCover(f *PendingFile) {
	if !w.editable() {
		return
	}
	w.draft.CoverFile = f
}

// RemoveCover clears both the staged file and the current reference. The
// previously stored object, if any, is deleted best-effort on save.
func (w *Workflow) RemoveCover() {
	if !w.editable() {
		return
	}
	w.draft.CoverFile = nil
	w.draft.CoverURL = ""
}

// AddImage appends a pending gallery entry at the end of the gallery.
func (w *Workflow) AddImage(f *PendingFile, caption string) {
	if !w.editable() {
		return
	}
	w.draft.Gallery = append(w.draft.Gallery, GalleryEntry{
		Caption:      caption,
		DisplayOrder: len(w.draft.Gallery),
		File:         f,
	})
}

// SetCaption updates the caption of the entry at index.
func (w *Workflow) SetCaption(index int, caption string) {
	if !w.editable() || index < 0 || index >= len(w.draft.Gallery) {
		return
	}
	w.draft.Gallery[index].Caption = caption
}

// Move relocates the entry at from to position to and recomputes the
// dense display order. A self-drop is a no-op.
func (w *Workflow) Move(from, to int) {
	if !w.editable() {
		return
	}
	w.draft.Gallery = Reorder(w.draft.Gallery, from, to)
}

// RemoveImage deletes the entry at index. Persisted entries are removed
// from the repository immediately — the save step never re-derives
// deletions — and their stored object is cleaned up best-effort. Remaining
// entries are renumbered densely.
func (w *Workflow) RemoveImage(ctx context.Context, index int) error {
	if !w.editable() {
		return nil
	}
	if index < 0 || index >= len(w.draft.Gallery) {
		return nil
	}

	entry := w.draft.Gallery[index]
	if entry.persisted() {
		if err := w.repo.DeleteGalleryImage(entry.ID); err != nil {
			return &RepositoryError{Op: "delete gallery image", Err: err}
		}
		if err := w.objects.DeleteObject(ctx, entry.ImageURL); err != nil {
			slog.Warn("gallery object cleanup failed", "url", entry.ImageURL, "error", err)
		}
	}

	w.draft.Gallery = append(w.draft.Gallery[:index], w.draft.Gallery[index+1:]...)
	for i := range w.draft.Gallery {
		w.draft.Gallery[i].DisplayOrder = i
	}
	return nil
}

// Save commits the draft: staged cover upload, post upsert, then the
// gallery entries in final display order. On any recoverable failure the
// workflow returns to Ready with the draft intact so the admin can retry;
// on success it reaches Saved and returns the persisted post.
//
// A second Save while one is in flight is rejected with ErrSaveInProgress.
func (w *Workflow) Save(ctx context.Context) (*models.Post, error) {
	if w.state == StateSaving {
		return nil, ErrSaveInProgress
	}
	if w.state != StateReady {
		return nil, &ValidationError{Message: "no draft is being edited"}
	}
	if err := w.draft.validate(); err != nil {
		return nil, err
	}

	w.state = StateSaving

	// Step 1: staged cover upload. The post row must never reference an
	// object that was not successfully stored, so a failure here aborts
	// the whole save before any row is written.
	coverURL := w.draft.CoverURL
	if f := w.draft.CoverFile; f != nil {
		url, err := w.objects.StoreObject(ctx, f.Data, f.ContentType, "covers")
		if err != nil {
			w.state = StateReady
			return nil, &UploadError{Stage: "cover", Err: err}
		}
		coverURL = url
	}

	// Step 2: post upsert. The publish timestamp is stamped on every
	// false→true transition in the same write, so republishing gets a
	// fresh stamp; unpublishing leaves the previous value as "last time
	// this post went live".
	post := w.draft.post()
	if coverURL != "" {
		cover := coverURL
		post.CoverImage = &cover
	}
	if post.IsPublished && !w.draft.loadedPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	id, err := w.repo.UpsertPost(post)
	if err != nil {
		w.state = StateReady
		return nil, &RepositoryError{Op: "save post", Err: err}
	}
	post.ID = id

	// Step 3: gallery sync, sequential in final display order. Each
	// pending entry's upload completes before its row is written.
	for i := range w.draft.Gallery {
		entry := &w.draft.Gallery[i]
		entry.DisplayOrder = i

		switch {
		case entry.File != nil:
			url, err := w.objects.StoreObject(ctx, entry.File.Data, entry.File.ContentType, "gallery/"+id.String())
			if err != nil {
				w.state = StateReady
				return nil, &UploadError{Stage: "gallery", Err: err}
			}
			imgID, err := w.repo.InsertGalleryImage(&models.GalleryImage{
				PostID:       id,
				ImageURL:     url,
				Caption:      entry.Caption,
				DisplayOrder: i,
			})
			if err != nil {
				w.state = StateReady
				return nil, &RepositoryError{Op: "insert gallery image", Err: err}
			}
			entry.ID = imgID
			entry.ImageURL = url
			entry.File = nil
			entry.loadedCaption = entry.Caption
			entry.loadedOrder = i

		case entry.metaChanged(i):
			if err := w.repo.UpdateGalleryImageMeta(entry.ID, entry.Caption, i); err != nil {
				w.state = StateReady
				return nil, &RepositoryError{Op: "update gallery image", Err: err}
			}
			entry.loadedCaption = entry.Caption
			entry.loadedOrder = i
		}
	}

	// The save is committed; a replaced or removed cover's old object can
	// now be cleaned up. Failures leave an orphan, never a broken post.
	if old := w.draft.loadedCoverURL; old != "" && old != coverURL {
		if err := w.objects.DeleteObject(ctx, old); err != nil {
			slog.Warn("cover object cleanup failed", "url", old, "error", err)
		}
	}

	w.draft.ID = id
	w.draft.CoverURL = coverURL
	w.draft.CoverFile = nil
	w.draft.loadedCoverURL = coverURL
	w.draft.publishedAt = post.PublishedAt
	w.draft.loadedPublished = post.IsPublished
	w.state = StateSaved

	slog.Info("post saved",
		"post_id", id,
		"slug", post.Slug,
		"published", post.IsPublished,
		"gallery", len(w.draft.Gallery),
	)
	return post, nil
}
