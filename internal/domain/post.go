package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusReview    PostStatus = "review"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
)

const (
	maxTitleLength   = 200
	maxExcerptLength = 500
	maxTags          = 20
)

// ParsePostStatus accepts the four workflow states; empty means draft.
func ParsePostStatus(raw string) (PostStatus, error) {
	status := PostStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case "":
		return PostStatusDraft, nil
	case PostStatusDraft, PostStatusReview, PostStatusScheduled, PostStatusPublished:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown post status %q", ErrInvalidInput, raw)
	}
}

// Post is a news article managed from the backoffice.
type Post struct {
	PostID        uuid.UUID
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	CoverImageURL string
	Category      string
	Tags          []string
	Status        PostStatus
	Featured      bool
	AuthorID      uuid.UUID
	PublishedAt   *time.Time
	ScheduledFor  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ApplyStatus moves the post to status. Any state may move to any other;
// only scheduling needs a date in the future.
func (p *Post) ApplyStatus(status PostStatus, scheduledFor *time.Time, now time.Time) error {
	switch status {
	case PostStatusPublished:
		if p.PublishedAt == nil {
			at := now.UTC()
			p.PublishedAt = &at
		}
		p.ScheduledFor = nil
	case PostStatusScheduled:
		if scheduledFor == nil || !scheduledFor.After(now) {
			return fmt.Errorf("%w: scheduled_for must be in the future", ErrInvalidTransition)
		}
		at := scheduledFor.UTC()
		p.ScheduledFor = &at
		p.PublishedAt = nil
	case PostStatusDraft, PostStatusReview:
		// PublishedAt survives so a withdrawn post keeps its original date
		// when it is published again.
		p.ScheduledFor = nil
	default:
		return fmt.Errorf("%w: unknown post status %q", ErrInvalidInput, status)
	}
	p.Status = status
	p.UpdatedAt = now
	return nil
}

// IsVisible reports whether the public site may show the post at now.
func (p Post) IsVisible(now time.Time) bool {
	return p.Status == PostStatusPublished && p.PublishedAt != nil && !p.PublishedAt.After(now)
}

// IsDue reports whether a scheduled post should be published at now.
func (p Post) IsDue(now time.Time) bool {
	return p.Status == PostStatusScheduled && p.ScheduledFor != nil && !p.ScheduledFor.After(now)
}

// ValidatePost checks the editable fields. Content is sanitized by the
// application layer before it reaches here.
func ValidatePost(p Post) error {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return fmt.Errorf("%w: title must be <= %d characters", ErrInvalidInput, maxTitleLength)
	}
	if utf8.RuneCountInString(p.Excerpt) > maxExcerptLength {
		return fmt.Errorf("%w: excerpt must be <= %d characters", ErrInvalidInput, maxExcerptLength)
	}
	if !ValidSlug(p.Slug) {
		return fmt.Errorf("%w: invalid slug", ErrInvalidInput)
	}
	if len(p.Tags) > maxTags {
		return fmt.Errorf("%w: at most %d tags", ErrInvalidInput, maxTags)
	}
	return nil
}

// NormalizeTags lowercases, trims and de-duplicates tags keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// PostFilter narrows post listings.
type PostFilter struct {
	Status   PostStatus
	Category string
	Query    string
	Featured *bool
	Page     int
	PageSize int
	// PublishedBefore restricts to posts visible at that instant.
	PublishedBefore *time.Time
}

// Normalize clamps paging to sane bounds.
func (f PostFilter) Normalize() PostFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 12
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	f.Query = strings.TrimSpace(f.Query)
	return f
}

func (f PostFilter) Offset() int { return (f.Page - 1) * f.PageSize }
