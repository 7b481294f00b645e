package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/domain"
)

const (
	sniffLength   = 512
	maxAltLength  = 300
	thumbnailMIME = "image/jpeg"
)

// UploadMedia stores an uploaded file and, for raster images, a JPEG thumbnail.
// The content type is sniffed from the bytes; the declared one is ignored.
func (s *Service) UploadMedia(ctx context.Context, actor Actor, body io.Reader, in UploadInput) (MediaView, error) {
	if err := requireActor(actor); err != nil {
		return MediaView{}, err
	}
	if in.Size > s.cfg.MaxUploadBytes {
		return MediaView{}, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrPayloadTooLarge, s.cfg.MaxUploadBytes)
	}
	alt := strings.TrimSpace(in.AltText)
	if utf8.RuneCountInString(alt) > maxAltLength {
		return MediaView{}, fmt.Errorf("%w: alt text must be <= %d characters", domain.ErrInvalidInput, maxAltLength)
	}
	data, err := io.ReadAll(io.LimitReader(body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return MediaView{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return MediaView{}, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrPayloadTooLarge, s.cfg.MaxUploadBytes)
	}
	if len(data) == 0 {
		return MediaView{}, fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}

	head := data
	if len(head) > sniffLength {
		head = head[:sniffLength]
	}
	mimeType := http.DetectContentType(head)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	ext, ok := domain.MediaExtension(mimeType)
	if !ok {
		return MediaView{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedMedia, mimeType)
	}

	now := s.nowFn()
	media := domain.MediaFile{
		MediaID:    uuid.New(),
		FileName:   domain.CleanFileName(in.FileName),
		MIMEType:   mimeType,
		Size:       int64(len(data)),
		AltText:    alt,
		UploadedBy: actor.UserID,
		CreatedAt:  now,
	}
	datePath := fmt.Sprintf("%04d/%02d/%s", now.Year(), int(now.Month()), media.MediaID)
	media.StorageKey = "media/" + datePath + ext

	var thumb []byte
	if media.IsImage() {
		info, err := s.thumbnailer.Inspect(data)
		if err != nil {
			return MediaView{}, fmt.Errorf("%w: image cannot be decoded", domain.ErrUnsupportedMedia)
		}
		media.Width, media.Height = info.Width, info.Height
		if domain.IsThumbnailable(mimeType) {
			thumb, _, err = s.thumbnailer.Thumbnail(data, s.cfg.ThumbnailWidth)
			if err != nil {
				s.logWarn(ctx, "upload_media", "thumbnail generation failed", err, "media_id", media.MediaID)
				thumb = nil
			}
		}
	}

	stored, err := s.blobs.Put(ctx, media.StorageKey, bytes.NewReader(data), media.Size, mimeType)
	if err != nil {
		return MediaView{}, fmt.Errorf("store media: %w", err)
	}
	media.URL = stored.URL

	if thumb != nil {
		key := "thumbs/" + datePath + ".jpg"
		obj, err := s.blobs.Put(ctx, key, bytes.NewReader(thumb), int64(len(thumb)), thumbnailMIME)
		if err != nil {
			s.logWarn(ctx, "upload_media", "thumbnail store failed", err, "media_id", media.MediaID)
		} else {
			media.ThumbnailKey = key
			media.ThumbnailURL = obj.URL
		}
	}

	if err := s.media.Create(ctx, media); err != nil {
		s.deleteBlobs(ctx, media)
		return MediaView{}, err
	}
	s.enqueueEvent(ctx, EventTypeMediaUploaded, media.MediaID.String(), map[string]any{
		"media_id":    media.MediaID,
		"url":         media.URL,
		"mime_type":   media.MIMEType,
		"size":        media.Size,
		"uploaded_by": media.UploadedBy,
	})
	s.logInfo(ctx, "upload_media", "media uploaded", "media_id", media.MediaID, "mime_type", mimeType, "size", media.Size)
	return toMediaView(media), nil
}

func (s *Service) ListMedia(ctx context.Context, actor Actor, filter domain.MediaFilter) (Page[MediaView], error) {
	if err := requireActor(actor); err != nil {
		return Page[MediaView]{}, err
	}
	filter = filter.Normalize()
	files, total, err := s.media.List(ctx, filter)
	if err != nil {
		return Page[MediaView]{}, err
	}
	items := make([]MediaView, 0, len(files))
	for _, f := range files {
		items = append(items, toMediaView(f))
	}
	return newPage(items, filter.Page, filter.PageSize, total), nil
}

func (s *Service) GetMedia(ctx context.Context, actor Actor, mediaID uuid.UUID) (MediaView, error) {
	if err := requireActor(actor); err != nil {
		return MediaView{}, err
	}
	media, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return MediaView{}, err
	}
	return toMediaView(media), nil
}

func (s *Service) UpdateMediaAlt(ctx context.Context, actor Actor, mediaID uuid.UUID, alt string) (MediaView, error) {
	if err := requireActor(actor); err != nil {
		return MediaView{}, err
	}
	alt = strings.TrimSpace(alt)
	if utf8.RuneCountInString(alt) > maxAltLength {
		return MediaView{}, fmt.Errorf("%w: alt text must be <= %d characters", domain.ErrInvalidInput, maxAltLength)
	}
	media, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return MediaView{}, err
	}
	if err := s.media.UpdateAlt(ctx, mediaID, alt); err != nil {
		return MediaView{}, err
	}
	media.AltText = alt
	return toMediaView(media), nil
}

// DeleteMedia removes the row first; blob cleanup failures are only logged.
func (s *Service) DeleteMedia(ctx context.Context, actor Actor, mediaID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	media, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return err
	}
	if err := s.media.Delete(ctx, mediaID); err != nil {
		return err
	}
	s.deleteBlobs(ctx, media)
	return nil
}

func (s *Service) deleteBlobs(ctx context.Context, media domain.MediaFile) {
	for _, key := range []string{media.StorageKey, media.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logWarn(ctx, "delete_media", "blob delete failed", err, "key", key)
		}
	}
}

func toMediaView(m domain.MediaFile) MediaView {
	return MediaView{
		MediaID:      m.MediaID,
		FileName:     m.FileName,
		URL:          m.URL,
		MIMEType:     m.MIMEType,
		Size:         m.Size,
		Width:        m.Width,
		Height:       m.Height,
		ThumbnailURL: m.ThumbnailURL,
		AltText:      m.AltText,
		UploadedBy:   m.UploadedBy,
		CreatedAt:    m.CreatedAt,
	}
}
