package ports

import (
	"context"
	"io"
)

// StoredObject describes content written by an UploadStore.
type StoredObject struct {
	Path   string
	Size   int64
	Digest string
}

// UploadStore persists uploaded content.
// Put truncates and overwrites any existing object of the same name.
// Writes are not atomic: a failed write may leave a truncated file.
type UploadStore interface {
	Put(ctx context.Context, name string, r io.Reader) (StoredObject, error)
}
