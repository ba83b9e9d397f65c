package storage

import (
	"context"
	"io"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for certificate artifact storage.
// Admin uploads go through SaveObject; ObjectURL resolves the key to
// whatever the backend serves (a static path for local disk, a temporary
// presigned URL for S3).
type FileStorage interface {
	// SaveObject stores the object under objectKey, overwriting any
	// previous content.
	SaveObject(ctx context.Context, objectKey string, contentType string, body io.Reader) error

	// ObjectURL returns a URL from which the object can be downloaded.
	ObjectURL(ctx context.Context, objectKey string) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
