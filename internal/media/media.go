// Package media wraps the remote object store that holds product images.
package media

import (
	"context"
	"fmt"
	"io"

	"shoply/internal/domain"
)

// UploadInput carries one image file destined for the remote store.
type UploadInput struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Folder      string // overrides the store's default folder when set
}

// Store is the contract the catalog depends on. Implementations hold no
// per-call state and are safe for concurrent use.
type Store interface {
	// Upload stores one image and returns its remote ID and retrievable URL.
	// On failure no ImageRef is produced, so callers never record a partial
	// reference.
	Upload(ctx context.Context, in UploadInput) (domain.ImageRef, error)

	// Destroy removes the object behind remoteID. An already-missing object
	// counts as success; any other failure is a *DeletionError.
	Destroy(ctx context.Context, remoteID string) error
}

// UploadError wraps a transport or remote-side upload rejection.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return fmt.Sprintf("media upload failed: %v", e.Err) }
func (e *UploadError) Unwrap() error { return e.Err }

// DeletionError wraps a destroy outcome other than ok/not-found.
type DeletionError struct {
	RemoteID string
	Err      error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("media destroy failed for %q: %v", e.RemoteID, e.Err)
}
func (e *DeletionError) Unwrap() error { return e.Err }
