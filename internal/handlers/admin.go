// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"agririse/internal/cache"
	"agririse/internal/editor"
	"agririse/internal/imaging"
	"agririse/internal/markdown"
	"agririse/internal/models"
	"agririse/internal/store"
)

// maxFormSize bounds a whole create/update request: cover plus gallery.
const maxFormSize = 128 << 20

// Admin groups the authenticated post management handlers. Every write
// funnels through the editor workflow so the save ordering and publish
// stamping rules hold no matter which endpoint triggered them.
type Admin struct {
	repo      *store.ContentRepository
	objects   editor.ObjectStore
	postCache *cache.PostCache
}

// NewAdmin creates the admin handler group. objects may be nil when object
// storage is not configured; requests carrying files are then rejected.
func NewAdmin(repo *store.ContentRepository, objects editor.ObjectStore, postCache *cache.PostCache) *Admin {
	return &Admin{
		repo:      repo,
		objects:   objects,
		postCache: postCache,
	}
}

// postView is the admin API shape of a post with its gallery.
type postView struct {
	*models.Post
	Gallery []models.GalleryImage `json:"gallery"`
}

// PostsList returns every post, drafts included, newest first. The total
// is exposed as a header so the dashboard can show counts without loading
// the body.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	posts, err := a.repo.Posts.List()
	if err != nil {
		slog.Error("list posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	total, err := a.repo.Posts.Count()
	if err != nil {
		slog.Error("count posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, posts)
}

// PostGet returns one post with its gallery, ordered by display position.
func (a *Admin) PostGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := a.repo.Posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	gallery, err := a.repo.Images.ListByPost(id)
	if err != nil {
		slog.Error("list gallery failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if gallery == nil {
		gallery = []models.GalleryImage{}
	}
	writeJSON(w, http.StatusOK, postView{Post: post, Gallery: gallery})
}

// PostCreate builds a fresh editing session from the multipart form and
// saves it.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	wf := editor.New(a.repo, a.objects)
	a.submit(w, r, wf, "")
}

// PostUpdate loads the existing post into an editing session, applies the
// form on top, and saves. Concurrent editors are not locked out; the last
// completed save wins.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	wf, err := editor.Load(a.repo, a.objects, id)
	if err != nil {
		writeEditorError(w, err)
		return
	}
	a.submit(w, r, wf, wf.Draft().Slug)
}

// submit applies the multipart form to the workflow, saves, and writes the
// persisted post. previousSlug is invalidated in the cache alongside the
// new slug when they differ.
func (a *Admin) submit(w http.ResponseWriter, r *http.Request, wf *editor.Workflow, previousSlug string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			writeError(w, http.StatusBadRequest, "expected multipart form data")
			return
		}
		writeError(w, http.StatusRequestEntityTooLarge, "request too large")
		return
	}

	if err := a.applyForm(r, wf); err != nil {
		writeEditorError(w, err)
		return
	}

	// Catch slug collisions before the save sequence starts so the admin
	// gets a clear message instead of a unique-index violation mid-save.
	if slug := wf.Draft().Slug; slug != "" {
		taken, err := a.repo.Posts.SlugExists(slug, wf.Draft().ID)
		if err != nil {
			slog.Error("slug check failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if taken {
			writeError(w, http.StatusConflict, "slug is already in use")
			return
		}
	}

	post, err := wf.Save(r.Context())
	if err != nil {
		writeEditorError(w, err)
		return
	}

	a.postCache.InvalidatePost(r.Context(), post.Slug)
	if previousSlug != "" && previousSlug != post.Slug {
		a.postCache.InvalidatePost(r.Context(), previousSlug)
	}

	gallery := make([]models.GalleryImage, 0, len(wf.Draft().Gallery))
	for _, e := range wf.Draft().Gallery {
		gallery = append(gallery, models.GalleryImage{
			ID:           e.ID,
			PostID:       post.ID,
			ImageURL:     e.ImageURL,
			Caption:      e.Caption,
			DisplayOrder: e.DisplayOrder,
		})
	}

	status := http.StatusOK
	if previousSlug == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, postView{Post: post, Gallery: gallery})
}

// galleryItem is one entry of the gallery manifest the frontend submits:
// the desired final gallery in display order. Persisted entries carry
// their ID; new entries name the multipart file field holding their bytes.
type galleryItem struct {
	ID      string `json:"id,omitempty"`
	Caption string `json:"caption"`
	File    string `json:"file,omitempty"`

	file *editor.PendingFile // resolved upload, set while applying
}

// applyForm copies the form fields into the workflow draft and reconciles
// the gallery against the submitted manifest. All failures are reported as
// editor errors so submit can map them uniformly.
func (a *Admin) applyForm(r *http.Request, wf *editor.Workflow) error {
	wf.SetTitle(r.FormValue("title"))
	if slug := r.FormValue("slug"); slug != "" && slug != wf.Draft().Slug {
		wf.SetSlug(slug)
	}
	wf.SetExcerpt(r.FormValue("excerpt"))

	format := models.ContentFormat(r.FormValue("content_format"))
	if format != models.FormatMarkdown {
		format = models.FormatHTML
	}
	wf.SetContent(r.FormValue("content"), format)

	if c := r.FormValue("category"); c != "" {
		wf.SetCategory(models.Category(c))
	}
	wf.SetPublished(r.FormValue("is_published") == "true")

	// Cover: an uploaded file replaces the current one; the remove flag
	// clears it. The actual upload happens first inside Save.
	if r.FormValue("remove_cover") == "true" {
		wf.RemoveCover()
	}
	if file, header, err := r.FormFile("cover"); err == nil {
		defer file.Close()
		pf, err := a.readImage(file, header)
		if err != nil {
			return err
		}
		cover, coverType, err := imaging.DownscaleCover(pf.Data, pf.ContentType, imaging.CoverMaxWidth)
		if err != nil {
			return &editor.ValidationError{Message: "cover image could not be processed"}
		}
		if cover != nil {
			pf.Data = cover
			pf.ContentType = coverType
		}
		wf.StageCover(pf)
	}

	manifest := r.FormValue("gallery")
	if manifest == "" {
		return nil
	}

	var items []galleryItem
	if err := json.Unmarshal([]byte(manifest), &items); err != nil {
		return &editor.ValidationError{Message: "invalid gallery manifest"}
	}
	return a.reconcileGallery(r, wf, items)
}

// reconcileGallery makes the draft gallery match the manifest: entries
// missing from the manifest are removed eagerly, new files are staged, and
// the remaining entries are moved into manifest order.
func (a *Admin) reconcileGallery(r *http.Request, wf *editor.Workflow, items []galleryItem) error {
	keep := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if item.ID != "" {
			id, err := uuid.Parse(item.ID)
			if err != nil {
				return &editor.ValidationError{Message: "invalid gallery image id"}
			}
			keep[id] = true
		}
	}

	// Remove dropped entries back to front so indexes stay valid.
	gallery := wf.Draft().Gallery
	for i := len(gallery) - 1; i >= 0; i-- {
		if gallery[i].ID != uuid.Nil && !keep[gallery[i].ID] {
			if err := wf.RemoveImage(r.Context(), i); err != nil {
				return err
			}
			gallery = wf.Draft().Gallery
		}
	}

	// Stage new files in manifest order; they append at the tail.
	for i := range items {
		if items[i].ID != "" {
			continue
		}
		if items[i].File == "" {
			return &editor.ValidationError{Message: "gallery entry has neither id nor file"}
		}
		file, header, err := r.FormFile(items[i].File)
		if err != nil {
			return &editor.ValidationError{Message: "gallery file " + items[i].File + " is missing"}
		}
		pf, rerr := a.readImage(file, header)
		file.Close()
		if rerr != nil {
			return rerr
		}
		items[i].file = pf
		wf.AddImage(pf, items[i].Caption)
	}

	// Move every entry into its manifest position, then set captions.
	for target := range items {
		current := findGalleryEntry(wf.Draft().Gallery, &items[target], target)
		if current < 0 {
			return &editor.ValidationError{Message: "unknown gallery image in manifest"}
		}
		if current != target {
			wf.Move(current, target)
		}
		wf.SetCaption(target, items[target].Caption)
	}
	return nil
}

// findGalleryEntry locates the draft index of a manifest item at or after
// from. Persisted entries match by ID, staged entries by their file.
func findGalleryEntry(gallery []editor.GalleryEntry, item *galleryItem, from int) int {
	for i := from; i < len(gallery); i++ {
		if item.ID != "" {
			if gallery[i].ID != uuid.Nil && gallery[i].ID.String() == item.ID {
				return i
			}
			continue
		}
		if gallery[i].File != nil && gallery[i].File == item.file {
			return i
		}
	}
	return -1
}

// readImage pulls an uploaded file into memory and validates it as a post
// image. Returns editor errors so callers map failures uniformly.
func (a *Admin) readImage(file multipart.File, header *multipart.FileHeader) (*editor.PendingFile, error) {
	if a.objects == nil {
		return nil, &editor.ValidationError{Message: "object storage is not configured"}
	}
	if header.Size > imaging.MaxUploadSize {
		return nil, &editor.ValidationError{Message: "image exceeds the 20 MB limit"}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &editor.ValidationError{Message: "could not read uploaded file"}
	}
	contentType, err := imaging.Validate(data, header.Filename)
	if err != nil {
		return nil, &editor.ValidationError{Message: err.Error()}
	}
	return &editor.PendingFile{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// PostDelete removes a post, its gallery rows, and all stored objects.
// Object cleanup is best-effort; an unreachable bucket leaves orphans but
// never a half-deleted post.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := a.repo.Posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	// Collect object URLs before the rows cascade away.
	gallery, err := a.repo.Images.ListByPost(id)
	if err != nil {
		slog.Error("list gallery failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := a.repo.Posts.Delete(id); err != nil {
		slog.Error("delete post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if a.objects != nil {
		ctx := r.Context()
		if post.CoverImage != nil {
			if err := a.objects.DeleteObject(ctx, *post.CoverImage); err != nil {
				slog.Warn("cover object cleanup failed", "url", *post.CoverImage, "error", err)
			}
		}
		for _, img := range gallery {
			if err := a.objects.DeleteObject(ctx, img.ImageURL); err != nil {
				slog.Warn("gallery object cleanup failed", "url", img.ImageURL, "error", err)
			}
		}
	}

	a.postCache.InvalidatePost(r.Context(), post.Slug)
	slog.Info("post deleted", "post_id", id, "slug", post.Slug)
	w.WriteHeader(http.StatusNoContent)
}

// GalleryImageDelete removes a single gallery image immediately, without
// waiting for the next save, and renumbers the remaining images densely.
func (a *Admin) GalleryImageDelete(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	wf, err := editor.Load(a.repo, a.objects, postID)
	if err != nil {
		writeEditorError(w, err)
		return
	}

	index := -1
	before := make(map[uuid.UUID]int, len(wf.Draft().Gallery))
	for i, e := range wf.Draft().Gallery {
		before[e.ID] = e.DisplayOrder
		if e.ID == imageID {
			index = i
		}
	}
	if index < 0 {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}

	if err := wf.RemoveImage(r.Context(), index); err != nil {
		writeEditorError(w, err)
		return
	}

	// Persist the dense renumbering of the survivors.
	for i, e := range wf.Draft().Gallery {
		if before[e.ID] == i {
			continue
		}
		if err := a.repo.Images.UpdateMeta(e.ID, e.Caption, i); err != nil {
			slog.Error("renumber gallery failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	a.postCache.InvalidatePost(r.Context(), wf.Draft().Slug)
	w.WriteHeader(http.StatusNoContent)
}

// CacheClear drops every cached public response. Useful after edits made
// directly in the database or a schema migration that changes rendering.
func (a *Admin) CacheClear(w http.ResponseWriter, r *http.Request) {
	a.postCache.InvalidateAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// previewRequest is the JSON body for Preview.
type previewRequest struct {
	Content string `json:"content"`
}

// Preview renders Markdown to HTML for the editor's preview pane.
func (a *Admin) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	html, err := markdown.ToHTML(req.Content)
	if err != nil {
		slog.Error("markdown render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": html})
}
