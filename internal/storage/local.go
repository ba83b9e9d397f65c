package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localStorage implements the FileStorage interface on the local
// filesystem. Objects land under dir and are served by the HTTP layer as
// static files below baseURL, reproducing the
// /uploads/certificates/<file> convention.
type localStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage creates a disk-backed storage rooted at dir. baseURL is
// the public path prefix the server mounts dir under.
func NewLocalStorage(dir, baseURL string) (FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create storage directory %s: %w", dir, err)
	}
	return &localStorage{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SaveObject writes the object to disk under its key.
func (s *localStorage) SaveObject(ctx context.Context, objectKey string, contentType string, body io.Reader) error {
	target, err := s.path(objectKey)
	if err != nil {
		return err
	}

	f, err := os.Create(target)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		os.Remove(target)
		return err
	}
	return nil
}

// ObjectURL maps the key onto the static path the server serves.
func (s *localStorage) ObjectURL(ctx context.Context, objectKey string) (string, error) {
	if _, err := s.path(objectKey); err != nil {
		return "", err
	}
	return s.baseURL + "/" + objectKey, nil
}

// DeleteObject removes the file; a missing file is not an error.
func (s *localStorage) DeleteObject(ctx context.Context, objectKey string) error {
	target, err := s.path(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// path resolves a key inside the storage directory and rejects keys that
// would escape it.
func (s *localStorage) path(objectKey string) (string, error) {
	clean := filepath.Clean(objectKey)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key %q", objectKey)
	}
	return filepath.Join(s.dir, clean), nil
}
