// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the JSON API: the public
// post feed and the authenticated admin surface that drives the editor
// workflow.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"agririse/internal/editor"
)

// writeJSON marshals payload with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeEditorError maps the editor workflow's typed failures onto HTTP
// statuses. Validation problems carry their message to the client;
// infrastructure failures are logged and reported generically.
func writeEditorError(w http.ResponseWriter, err error) {
	var verr *editor.ValidationError
	var uerr *editor.UploadError
	var rerr *editor.RepositoryError

	switch {
	case errors.Is(err, editor.ErrNotFound):
		writeError(w, http.StatusNotFound, "post not found")
	case errors.Is(err, editor.ErrSaveInProgress):
		writeError(w, http.StatusConflict, "a save is already in progress")
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &uerr):
		slog.Error("image upload failed", "stage", uerr.Stage, "error", uerr.Err)
		writeError(w, http.StatusBadGateway, "image upload failed")
	case errors.As(err, &rerr):
		slog.Error("post save failed", "op", rerr.Op, "error", rerr.Err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		slog.Error("unexpected editor error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
