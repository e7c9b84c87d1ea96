// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"agririse/internal/models"
)

// postResp mirrors the admin API post shape for decoding.
type postResp struct {
	models.Post
	Gallery []models.GalleryImage `json:"gallery"`
}

// createPost drives PostCreate with the given form and files and returns
// the decoded response.
func createPost(t *testing.T, env *testEnv, fields map[string]string, files map[string][]byte) postResp {
	t.Helper()

	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/posts", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	env.Admin.PostCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("PostCreate: got status %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp postResp
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp
}

func TestPostsList_Returns200(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
	rec := httptest.NewRecorder()
	env.Admin.PostsList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("PostsList: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("PostsList: Content-Type = %q, want application/json", ct)
	}
	if total := rec.Header().Get("X-Total-Count"); total == "" {
		t.Error("PostsList: X-Total-Count header missing")
	}
}

func TestPostCreate_DuplicateSlug_Returns409(t *testing.T) {
	env := newTestEnv(t)

	testSlug := "handler-dupe-" + uuid.New().String()[:8]
	t.Cleanup(func() { cleanPosts(t, env.DB, testSlug) })

	createPost(t, env, map[string]string{
		"title":   "Dupe Original",
		"slug":    testSlug,
		"content": "Body.",
	}, nil)

	body, contentType := multipartBody(t, map[string]string{
		"title":   "Dupe Copy",
		"slug":    testSlug,
		"content": "Body.",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/posts", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	env.Admin.PostCreate(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("PostCreate duplicate slug: got status %d, want %d: %s", rec.Code, http.StatusConflict, rec.Body.String())
	}
}

func TestCacheClear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.PostCache.SetPost(ctx, "cache-clear-probe", []byte(`{"slug":"cache-clear-probe"}`))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/cache/clear", nil)
	rec := httptest.NewRecorder()
	env.Admin.CacheClear(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("CacheClear: got status %d, want %d", rec.Code, http.StatusNoContent)
	}
	if _, ok := env.PostCache.GetPost(ctx, "cache-clear-probe"); ok {
		t.Error("cache should be empty after clearing")
	}
}

func TestPostCreate_ValidData(t *testing.T) {
	env := newTestEnv(t)

	testSlug := "handler-create-" + uuid.New().String()[:8]
	t.Cleanup(func() { cleanPosts(t, env.DB, testSlug) })

	resp := createPost(t, env, map[string]string{
		"title":          "Handler Create Test",
		"slug":           testSlug,
		"content":        "<p>Body.</p>",
		"content_format": "html",
		"category":       "update",
	}, nil)

	if resp.Slug != testSlug {
		t.Errorf("slug = %q, want %q", resp.Slug, testSlug)
	}
	if resp.ID == uuid.Nil {
		t.Error("expected a persisted post ID")
	}
	if resp.IsPublished {
		t.Error("post should be a draft by default")
	}
	if resp.PublishedAt != nil {
		t.Error("draft should not carry a publish timestamp")
	}
}

func TestPostCreate_MissingTitle_Returns400(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, map[string]string{
		"title":   "",
		"content": "Some body.",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/posts", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	env.Admin.PostCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("PostCreate missing title: got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "title") {
		t.Errorf("expected a title validation message, got: %s", rec.Body.String())
	}
}

func TestPostCreate_NotMultipart_Returns400(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/posts", strings.NewReader("title=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	env.Admin.PostCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("PostCreate urlencoded: got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPostGet_InvalidID_Returns400(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/posts/nope", nil)
	req = withChiURLParam(req, "id", "nope")

	rec := httptest.NewRecorder()
	env.Admin.PostGet(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("PostGet invalid id: got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPostGet_UnknownID_Returns404(t *testing.T) {
	env := newTestEnv(t)

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/posts/"+id, nil)
	req = withChiURLParam(req, "id", id)

	rec := httptest.NewRecorder()
	env.Admin.PostGet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("PostGet unknown id: got status %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPostUpdate_ChangesSlugAndPublishes(t *testing.T) {
	env := newTestEnv(t)

	oldSlug := "handler-update-" + uuid.New().String()[:8]
	newSlug := oldSlug + "-renamed"
	t.Cleanup(func() { cleanPosts(t, env.DB, oldSlug, newSlug) })

	created := createPost(t, env, map[string]string{
		"title":   "Update Test",
		"slug":    oldSlug,
		"content": "Original body.",
	}, nil)

	body, contentType := multipartBody(t, map[string]string{
		"title":        "Update Test",
		"slug":         newSlug,
		"content":      "Revised body.",
		"is_published": "true",
	}, nil)
	req := httptest.NewRequest(http.MethodPut, "/api/admin/posts/"+created.ID.String(), body)
	req.Header.Set("Content-Type", contentType)
	req = withChiURLParam(req, "id", created.ID.String())

	rec := httptest.NewRecorder()
	env.Admin.PostUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("PostUpdate: got status %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var updated postResp
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	if updated.Slug != newSlug {
		t.Errorf("slug = %q, want %q", updated.Slug, newSlug)
	}
	if !updated.IsPublished {
		t.Error("post should be published after the update")
	}
	if updated.PublishedAt == nil {
		t.Error("publishing should stamp the publish timestamp")
	}

	// The old slug no longer resolves for visitors.
	if post, _ := env.Repo.Posts.FindPublishedBySlug(oldSlug); post != nil {
		t.Errorf("old slug %q still resolves", oldSlug)
	}
}

func TestPostCreate_WithCoverAndGallery(t *testing.T) {
	env := newTestEnv(t)

	testSlug := "handler-gallery-" + uuid.New().String()[:8]
	t.Cleanup(func() { cleanPosts(t, env.DB, testSlug) })

	img := pngBytes(t, 32, 32)
	manifest := `[{"caption":"first","file":"gallery_0"},{"caption":"second","file":"gallery_1"}]`

	resp := createPost(t, env, map[string]string{
		"title":   "Gallery Test",
		"slug":    testSlug,
		"content": "Body.",
		"gallery": manifest,
	}, map[string][]byte{
		"cover":     img,
		"gallery_0": img,
		"gallery_1": img,
	})

	if resp.CoverImage == nil || !strings.Contains(*resp.CoverImage, "covers/") {
		t.Errorf("cover image = %v, want a covers/ object URL", resp.CoverImage)
	}
	if len(resp.Gallery) != 2 {
		t.Fatalf("gallery size = %d, want 2", len(resp.Gallery))
	}
	for i, want := range []string{"first", "second"} {
		if resp.Gallery[i].Caption != want {
			t.Errorf("gallery[%d].Caption = %q, want %q", i, resp.Gallery[i].Caption, want)
		}
		if resp.Gallery[i].DisplayOrder != i {
			t.Errorf("gallery[%d].DisplayOrder = %d, want %d", i, resp.Gallery[i].DisplayOrder, i)
		}
	}
	if env.Objects.uploads != 3 {
		t.Errorf("uploads = %d, want 3 (cover plus two gallery images)", env.Objects.uploads)
	}
}

func TestPostUpdate_ReordersGallery(t *testing.T) {
	env := newTestEnv(t)

	testSlug := "handler-reorder-" + uuid.New().String()[:8]
	t.Cleanup(func() { cleanPosts(t, env.DB, testSlug) })

	img := pngBytes(t, 32, 32)
	created := createPost(t, env, map[string]string{
		"title":   "Reorder Test",
		"slug":    testSlug,
		"content": "Body.",
		"gallery": `[{"caption":"a","file":"gallery_0"},{"caption":"b","file":"gallery_1"}]`,
	}, map[string][]byte{
		"gallery_0": img,
		"gallery_1": img,
	})

	// Swap the two entries and retitle the second.
	manifest := fmt.Sprintf(`[{"id":"%s","caption":"b"},{"id":"%s","caption":"a renamed"}]`,
		created.Gallery[1].ID, created.Gallery[0].ID)

	uploadsBefore := env.Objects.uploads
	body, contentType := multipartBody(t, map[string]string{
		"title":   "Reorder Test",
		"slug":    testSlug,
		"content": "Body.",
		"gallery": manifest,
	}, nil)
	req := httptest.NewRequest(http.MethodPut, "/api/admin/posts/"+created.ID.String(), body)
	req.Header.Set("Content-Type", contentType)
	req = withChiURLParam(req, "id", created.ID.String())

	rec := httptest.NewRecorder()
	env.Admin.PostUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("PostUpdate: got status %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var updated postResp
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	if len(updated.Gallery) != 2 {
		t.Fatalf("gallery size = %d, want 2", len(updated.Gallery))
	}
	if updated.Gallery[0].ID != created.Gallery[1].ID {
		t.Error("first entry should now be the previously second image")
	}
	if updated.Gallery[1].Caption != "a renamed" {
		t.Errorf("second caption = %q, want %q", updated.Gallery[1].Caption, "a renamed")
	}
	if env.Objects.uploads != uploadsBefore {
		t.Error("reordering must not re-upload persisted images")
	}
}

func TestPostUpdate_DropsGalleryEntry(t *testing.T) {
	env := newTestEnv(t)

	testSlug := "handler-drop-" + uuid.New().String()[:8]
	t.Cleanup(func() { cleanPosts(t, env.DB, testSlug) })

	img := pngBytes(t, 32, 32)
	created := createPost(t, env, map[string]string{
		"title":   "Drop Test",
		"slug":    testSlug,
		"content": "Body.",
		"gallery": `[{"caption":"keep","file":"gallery_0"},{"caption":"drop","file":"gallery_1"}]`,
	}, map[string][]byte{
		"gallery_0": img,
		"gallery_1": img,
	})

	droppedURL := created.Gallery[1].ImageURL
	manifest := fmt.Sprintf(`[{"id":"%s","caption":"keep"}]`, created.Gallery[0].ID)

	body, contentType := multipartBody(t, map[string]string{
		"title":   "Drop Test",
		"slug":    testSlug,
		"content": "Body.",
		"gallery": manifest,
	}, nil)
	req := httptest.NewRequest(http.MethodPut, "/api/admin/posts/"+created.ID.String(), body)
	req.Header.Set("Content-Type", contentType)
	req = withChiURLParam(req, "id", created.ID.String())

	rec := httptest.NewRecorder()
	env.Admin.PostUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("PostUpdate: got status %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var updated postResp
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	if len(updated.Gallery) != 1 {
		t.Fatalf("gallery size = %d, want 1", len(updated.Gallery))
	}

	found := false
	for _, url := range env.Objects.deleted {
		if url == droppedURL {
			found = true
		}
	}
	if !found {
		t.Errorf("dropped image object %q was not deleted", droppedURL)
	}
}

func TestGalleryImageDelete(t *testing.T) {
	env := newTestEnv(t)

	testSlug := "handler-imgdel-" + uuid.New().String()[:8]
	t.Cleanup(func() { cleanPosts(t, env.DB, testSlug) })

	img := pngBytes(t, 32, 32)
	created := createPost(t, env, map[string]string{
		"title":   "Image Delete Test",
		"slug":    testSlug,
		"content": "Body.",
		"gallery": `[{"caption":"one","file":"gallery_0"},{"caption":"two","file":"gallery_1"}]`,
	}, map[string][]byte{
		"gallery_0": img,
		"gallery_1": img,
	})

	first := created.Gallery[0]
	req := httptest.NewRequest(http.MethodDelete,
		"/api/admin/posts/"+created.ID.String()+"/images/"+first.ID.String(), nil)
	req = withChiURLParams(req, map[string]string{
		"id":      created.ID.String(),
		"imageID": first.ID.String(),
	})

	rec := httptest.NewRecorder()
	env.Admin.GalleryImageDelete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("GalleryImageDelete: got status %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	remaining, err := env.Repo.Images.ListByPost(created.ID)
	if err != nil {
		t.Fatalf("list gallery: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("remaining gallery size = %d, want 1", len(remaining))
	}
	if remaining[0].DisplayOrder != 0 {
		t.Errorf("survivor display order = %d, want 0", remaining[0].DisplayOrder)
	}

	found := false
	for _, url := range env.Objects.deleted {
		if url == first.ImageURL {
			found = true
		}
	}
	if !found {
		t.Errorf("removed image object %q was not deleted", first.ImageURL)
	}
}

func TestPostDelete_RemovesRowsAndObjects(t *testing.T) {
	env := newTestEnv(t)

	testSlug := "handler-delete-" + uuid.New().String()[:8]
	t.Cleanup(func() { cleanPosts(t, env.DB, testSlug) })

	img := pngBytes(t, 32, 32)
	created := createPost(t, env, map[string]string{
		"title":   "Delete Test",
		"slug":    testSlug,
		"content": "Body.",
		"gallery": `[{"caption":"g","file":"gallery_0"}]`,
	}, map[string][]byte{
		"cover":     img,
		"gallery_0": img,
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/posts/"+created.ID.String(), nil)
	req = withChiURLParam(req, "id", created.ID.String())

	rec := httptest.NewRecorder()
	env.Admin.PostDelete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("PostDelete: got status %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	post, err := env.Repo.Posts.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find post: %v", err)
	}
	if post != nil {
		t.Error("post row should be gone")
	}
	if len(env.Objects.deleted) != 2 {
		t.Errorf("deleted objects = %d, want 2 (cover plus gallery)", len(env.Objects.deleted))
	}
}

func TestPreview_RendersMarkdown(t *testing.T) {
	admin := &Admin{}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/preview",
		strings.NewReader(`{"content":"# Field Report\n\nYields are **up**."}`))
	rec := httptest.NewRecorder()
	admin.Preview(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Preview: got status %d, want %d", rec.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode preview response: %v", err)
	}
	if !strings.Contains(resp["html"], "<h1") {
		t.Errorf("html = %q, want a rendered heading", resp["html"])
	}
	if !strings.Contains(resp["html"], "<strong>up</strong>") {
		t.Errorf("html = %q, want rendered emphasis", resp["html"])
	}
}
