package object

import (
	"context"
	"errors"
	"io"
)

// Folders used by the archive.
const (
	FolderUploads   = "uploads"
	FolderResponses = "responses"
)

// ErrInvalidKey is returned for names or folders that would escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// Store persists archived artifacts under a logical folder.
type Store interface {
	Put(ctx context.Context, folder, name, contentType string, r io.Reader) (storageKey string, err error)
}

// Counter reports how many objects a folder holds.
type Counter interface {
	Count(ctx context.Context, folder string) (int, error)
}
