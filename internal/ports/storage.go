package ports

import (
	"context"
	"io"
)

// BlobObject describes a stored blob.
type BlobObject struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// BlobStore keeps uploaded bytes. Keys are slash-separated relative paths.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (BlobObject, error)
	Delete(ctx context.Context, key string) error
}

// ImageInfo is the decoded geometry of an uploaded image.
type ImageInfo struct {
	Width  int
	Height int
}

// Thumbnailer decodes images and renders a scaled JPEG preview.
type Thumbnailer interface {
	Inspect(data []byte) (ImageInfo, error)
	Thumbnail(data []byte, maxWidth int) ([]byte, ImageInfo, error)
}
