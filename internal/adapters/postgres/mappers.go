package postgres

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/prof-ramos/asof-site/internal/domain"
	"gorm.io/gorm"
)

func toDomainUser(row userModel) domain.User {
	return domain.User{
		UserID:           row.UserID,
		Email:            row.Email,
		Name:             row.Name,
		PasswordHash:     row.PasswordHash,
		Role:             domain.Role(row.Role),
		IsActive:         row.IsActive,
		FailedLoginCount: row.FailedLoginCount,
		LockedUntil:      row.LockedUntil,
		LastLoginAt:      row.LastLoginAt,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func toDomainSession(row sessionModel) domain.Session {
	return domain.Session{
		SessionID:      row.SessionID,
		UserID:         row.UserID,
		IPAddress:      derefString(row.IPAddress),
		UserAgent:      row.UserAgent,
		CreatedAt:      row.CreatedAt,
		LastActivityAt: row.LastActivityAt,
		ExpiresAt:      row.ExpiresAt,
		RevokedAt:      row.RevokedAt,
	}
}

func toPostModel(p domain.Post) postModel {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)
	return postModel{
		PostID:        p.PostID,
		Title:         p.Title,
		Slug:          p.Slug,
		Excerpt:       p.Excerpt,
		Content:       p.Content,
		CoverImageURL: p.CoverImageURL,
		Category:      p.Category,
		Tags:          string(raw),
		Status:        string(p.Status),
		Featured:      p.Featured,
		AuthorID:      p.AuthorID,
		PublishedAt:   p.PublishedAt,
		ScheduledFor:  p.ScheduledFor,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toDomainPost(row postModel) domain.Post {
	var tags []string
	if row.Tags != "" {
		_ = json.Unmarshal([]byte(row.Tags), &tags)
	}
	return domain.Post{
		PostID:        row.PostID,
		Title:         row.Title,
		Slug:          row.Slug,
		Excerpt:       row.Excerpt,
		Content:       row.Content,
		CoverImageURL: row.CoverImageURL,
		Category:      row.Category,
		Tags:          tags,
		Status:        domain.PostStatus(row.Status),
		Featured:      row.Featured,
		AuthorID:      row.AuthorID,
		PublishedAt:   row.PublishedAt,
		ScheduledFor:  row.ScheduledFor,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func toMediaModel(m domain.MediaFile) mediaModel {
	return mediaModel{
		MediaID:      m.MediaID,
		FileName:     m.FileName,
		StorageKey:   m.StorageKey,
		URL:          m.URL,
		MIMEType:     m.MIMEType,
		SizeBytes:    m.Size,
		Width:        m.Width,
		Height:       m.Height,
		ThumbnailKey: m.ThumbnailKey,
		ThumbnailURL: m.ThumbnailURL,
		AltText:      m.AltText,
		UploadedBy:   m.UploadedBy,
		CreatedAt:    m.CreatedAt,
	}
}

func toDomainMedia(row mediaModel) domain.MediaFile {
	return domain.MediaFile{
		MediaID:      row.MediaID,
		FileName:     row.FileName,
		StorageKey:   row.StorageKey,
		URL:          row.URL,
		MIMEType:     row.MIMEType,
		Size:         row.SizeBytes,
		Width:        row.Width,
		Height:       row.Height,
		ThumbnailKey: row.ThumbnailKey,
		ThumbnailURL: row.ThumbnailURL,
		AltText:      row.AltText,
		UploadedBy:   row.UploadedBy,
		CreatedAt:    row.CreatedAt,
	}
}

func toEventModel(e domain.Event) eventModel {
	return eventModel{
		EventID:     e.EventID,
		Title:       e.Title,
		Slug:        e.Slug,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		Published:   e.Published,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toDomainEvent(row eventModel) domain.Event {
	return domain.Event{
		EventID:     row.EventID,
		Title:       row.Title,
		Slug:        row.Slug,
		Description: row.Description,
		Location:    row.Location,
		StartsAt:    row.StartsAt,
		EndsAt:      row.EndsAt,
		Published:   row.Published,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func toDomainPage(row pageModel) domain.Page {
	return domain.Page{
		Slug:      row.Slug,
		Title:     row.Title,
		Content:   row.Content,
		UpdatedAt: row.UpdatedAt,
		UpdatedBy: row.UpdatedBy,
	}
}

func toDomainTransparency(row transparencyModel) domain.TransparencyDocument {
	return domain.TransparencyDocument{
		DocumentID:  row.DocumentID,
		Title:       row.Title,
		Category:    row.Category,
		Year:        row.Year,
		FileURL:     row.FileURL,
		MediaID:     row.MediaID,
		PublishedAt: row.PublishedAt,
		CreatedAt:   row.CreatedAt,
	}
}

func toDomainContact(row contactModel) domain.ContactMessage {
	return domain.ContactMessage{
		MessageID: row.MessageID,
		Name:      row.Name,
		Email:     row.Email,
		Phone:     row.Phone,
		Subject:   row.Subject,
		Message:   row.Message,
		IPAddress: derefString(row.IPAddress),
		Status:    domain.ContactStatus(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func nullableString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// mapNotFound turns gorm's missing-row error into the domain sentinel.
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// escapeLike escapes LIKE wildcards in user-supplied search terms.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
