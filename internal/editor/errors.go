// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a post requested for editing does not exist.
var ErrNotFound = errors.New("post not found")

// ErrSaveInProgress is returned when Save is called while a previous save
// is still running. Concurrent saves on one draft are blocked, not queued.
var ErrSaveInProgress = errors.New("save already in progress")

// ValidationError reports a required field missing or out of bounds. It is
// raised before any network call is made; the draft stays editable.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UploadError reports an object-store write failure for a cover or gallery
// file. The save sequence aborts at the failing step; earlier completed
// steps are not rolled back.
type UploadError struct {
	Stage string // "cover" or "gallery"
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s upload failed: %v", e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// RepositoryError reports a failed write against the structured store. The
// draft is retained so the admin can retry without re-entering data.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}
