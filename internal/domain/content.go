package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Event is an entry of the association's agenda.
type Event struct {
	EventID     uuid.UUID
	Title       string
	Slug        string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      *time.Time
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func ValidateEvent(e Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(e.Title) > maxTitleLength {
		return fmt.Errorf("%w: title must be <= %d characters", ErrInvalidInput, maxTitleLength)
	}
	if !ValidSlug(e.Slug) {
		return fmt.Errorf("%w: invalid slug", ErrInvalidInput)
	}
	if e.StartsAt.IsZero() {
		return fmt.Errorf("%w: starts_at is required", ErrInvalidInput)
	}
	if e.EndsAt != nil && e.EndsAt.Before(e.StartsAt) {
		return fmt.Errorf("%w: ends_at must not be before starts_at", ErrInvalidInput)
	}
	return nil
}

// EventWindow selects upcoming or past events relative to a reference time.
type EventWindow string

const (
	EventWindowUpcoming EventWindow = "upcoming"
	EventWindowPast     EventWindow = "past"
	EventWindowAll      EventWindow = "all"
)

func ParseEventWindow(raw string) EventWindow {
	switch EventWindow(strings.ToLower(strings.TrimSpace(raw))) {
	case EventWindowPast:
		return EventWindowPast
	case EventWindowAll:
		return EventWindowAll
	default:
		return EventWindowUpcoming
	}
}

// Page holds editable institutional text such as "about" or "statute".
type Page struct {
	Slug      string
	Title     string
	Content   string
	UpdatedAt time.Time
	UpdatedBy *uuid.UUID
}

func ValidatePage(p Page) error {
	if !ValidSlug(p.Slug) {
		return fmt.Errorf("%w: invalid slug", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return nil
}

// TransparencyDocument is a published report, balance sheet or minutes file.
type TransparencyDocument struct {
	DocumentID  uuid.UUID
	Title       string
	Category    string
	Year        int
	FileURL     string
	MediaID     *uuid.UUID
	PublishedAt time.Time
	CreatedAt   time.Time
}

func ValidateTransparencyDocument(d TransparencyDocument) error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(d.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if d.Year < 1900 || d.Year > 9999 {
		return fmt.Errorf("%w: invalid year", ErrInvalidInput)
	}
	if strings.TrimSpace(d.FileURL) == "" {
		return fmt.Errorf("%w: file_url is required", ErrInvalidInput)
	}
	return nil
}
