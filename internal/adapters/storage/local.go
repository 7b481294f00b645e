package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/prof-ramos/asof-site/internal/ports"
)

// LocalStore writes blobs under a root directory. The API serves them back
// under publicPrefix.
type LocalStore struct {
	root         string
	publicPrefix string
}

func NewLocalStore(root, publicPrefix string) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("local blob root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve blob root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	if publicPrefix == "" {
		publicPrefix = "/uploads"
	}
	return &LocalStore{root: abs, publicPrefix: strings.TrimRight(publicPrefix, "/")}, nil
}

// Root is the directory served under the public prefix.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (ports.BlobObject, error) {
	if err := ctx.Err(); err != nil {
		return ports.BlobObject{}, err
	}
	target, cleanKey, err := s.resolve(key)
	if err != nil {
		return ports.BlobObject{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return ports.BlobObject{}, fmt.Errorf("create blob dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return ports.BlobObject{}, fmt.Errorf("create temp blob: %w", err)
	}
	written, copyErr := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())
		return ports.BlobObject{}, fmt.Errorf("write blob: %w", errors.Join(copyErr, closeErr))
	}
	if size >= 0 && written != size {
		_ = os.Remove(tmp.Name())
		return ports.BlobObject{}, fmt.Errorf("write blob: wrote %d of %d bytes", written, size)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return ports.BlobObject{}, fmt.Errorf("commit blob: %w", err)
	}

	return ports.BlobObject{
		Key:         cleanKey,
		URL:         s.publicPrefix + "/" + cleanKey,
		ContentType: contentType,
		Size:        written,
	}, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	target, _, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) resolve(key string) (string, string, error) {
	cleanKey, err := cleanBlobKey(key)
	if err != nil {
		return "", "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleanKey)), cleanKey, nil
}

// cleanBlobKey rejects keys that would escape the store root.
func cleanBlobKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "\\") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != strings.TrimPrefix(key, "/") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return clean, nil
}
