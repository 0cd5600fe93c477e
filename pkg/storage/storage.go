// Package storage abstracts the object store holding message
// attachments. Production deployments point BaseURL at the CDN in
// front of the bucket; the local implementation keeps development and
// tests self-contained.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore saves an uploaded object and returns its public URL.
type BlobStore interface {
	Save(ctx context.Context, key string, r io.Reader) (string, error)
}

// LocalStore is a filesystem-backed BlobStore.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a LocalStore rooted at dir.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save writes the object under key and returns its URL. Keys may carry
// path separators ("messages/<id>/<filename>"); parent directories are
// created as needed.
func (s *LocalStore) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	// Callers build keys from client input; refuse anything that
	// resolves outside the storage root.
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("object key %q escapes the storage root", key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create object %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}
