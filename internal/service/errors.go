package service

import (
	"errors"
	"fmt"
)

// ErrAuthenticationRequired aborts a publish when no identity is active.
// The local draft is untouched, so nothing is lost by signing in again.
var ErrAuthenticationRequired = errors.New("authentication required")

// ErrDraftNotFound is returned when neither a local snapshot nor a remote
// article exists for a key.
var ErrDraftNotFound = errors.New("draft not found")

// DuplicateSlugError reports a slug collision detected before any write
type DuplicateSlugError struct {
	Slug string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("slug %q is already in use by another article", e.Slug)
}

// UploadError reports a failed image upload; the publish aborts before any
// row mutation.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("image upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// RemoteWriteError reports a failed remote store call with its underlying
// cause. The local draft is not cleared, so the user can retry.
type RemoteWriteError struct {
	Op  string // "insert", "update", "slug lookup", "categories"
	Err error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }
