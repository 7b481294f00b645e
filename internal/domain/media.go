package domain

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaFile is an uploaded asset kept in the blob store.
type MediaFile struct {
	MediaID      uuid.UUID
	FileName     string
	StorageKey   string
	URL          string
	MIMEType     string
	Size         int64
	Width        int
	Height       int
	ThumbnailKey string
	ThumbnailURL string
	AltText      string
	UploadedBy   uuid.UUID
	CreatedAt    time.Time
}

var allowedMediaTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// MediaExtension returns the canonical extension for an accepted MIME type.
func MediaExtension(mimeType string) (string, bool) {
	ext, ok := allowedMediaTypes[normalizeMIME(mimeType)]
	return ext, ok
}

// IsThumbnailable reports whether a thumbnail is generated for mimeType.
// Animated GIFs are thumbnailed from their first frame; the original is kept.
func IsThumbnailable(mimeType string) bool {
	switch normalizeMIME(mimeType) {
	case "image/jpeg", "image/png", "image/webp", "image/gif":
		return true
	default:
		return false
	}
}

func (m MediaFile) IsImage() bool {
	return strings.HasPrefix(m.MIMEType, "image/")
}

// CleanFileName keeps only the base name and drops characters that break headers.
func CleanFileName(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" {
		return "upload"
	}
	base = strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' {
			return -1
		}
		return r
	}, base)
	if len(base) > 255 {
		base = base[:255]
	}
	if base == "" {
		return "upload"
	}
	return base
}

func normalizeMIME(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

// MediaFilter narrows media listings.
type MediaFilter struct {
	MIMEPrefix string
	Page       int
	PageSize   int
}

func (f MediaFilter) Normalize() MediaFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 24
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	f.MIMEPrefix = strings.ToLower(strings.TrimSpace(f.MIMEPrefix))
	return f
}
