package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/domain"
)

type Config struct {
	TokenTTL             time.Duration
	SessionTTL           time.Duration
	FailedLoginThreshold int
	LockoutDuration      time.Duration
	LoginIPThreshold     int
	LoginIPWindow        time.Duration

	MaxUploadBytes int64
	ThumbnailWidth int
	PublicCacheTTL time.Duration
	DuePostsBatch  int
	ContactInbox   []string
	SiteName       string
}

func (c Config) withDefaults() Config {
	if c.TokenTTL <= 0 {
		c.TokenTTL = 12 * time.Hour
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 7 * 24 * time.Hour
	}
	if c.FailedLoginThreshold <= 0 {
		c.FailedLoginThreshold = 5
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = 15 * time.Minute
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 10 << 20
	}
	if c.ThumbnailWidth <= 0 {
		c.ThumbnailWidth = 480
	}
	if c.PublicCacheTTL <= 0 {
		c.PublicCacheTTL = 5 * time.Minute
	}
	if c.DuePostsBatch <= 0 {
		c.DuePostsBatch = 50
	}
	if c.SiteName == "" {
		c.SiteName = "ASOF"
	}
	return c
}

// Actor is the authenticated caller of an admin operation.
type Actor struct {
	UserID    uuid.UUID
	Email     string
	Role      domain.Role
	SessionID uuid.UUID
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	SessionID uuid.UUID `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn int64     `json:"expires_in"`
	User      UserView  `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserView struct {
	UserID      uuid.UUID  `json:"user_id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type PostInput struct {
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `json:"content"`
	CoverImageURL string     `json:"cover_image_url"`
	Category      string     `json:"category"`
	Tags          []string   `json:"tags"`
	Featured      bool       `json:"featured"`
	Status        string     `json:"status"`
	ScheduledFor  *time.Time `json:"scheduled_for"`
}

type StatusChangeRequest struct {
	Status       string     `json:"status"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

type PostView struct {
	PostID        uuid.UUID  `json:"post_id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `json:"content,omitempty"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	Category      string     `json:"category,omitempty"`
	Tags          []string   `json:"tags"`
	Status        string     `json:"status"`
	Featured      bool       `json:"featured"`
	AuthorID      uuid.UUID  `json:"author_id"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	ScheduledFor  *time.Time `json:"scheduled_for,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type PostListQuery struct {
	Status   string
	Category string
	Query    string
	Featured *bool
	Page     int
	PageSize int
}

// Page is a generic paginated envelope.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	HasMore  bool  `json:"has_more"`
}

func newPage[T any](items []T, page, pageSize int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasMore:  int64(page*pageSize) < total,
	}
}

type UploadInput struct {
	FileName     string
	DeclaredType string
	Size         int64
	AltText      string
}

type MediaView struct {
	MediaID      uuid.UUID `json:"media_id"`
	FileName     string    `json:"file_name"`
	URL          string    `json:"url"`
	MIMEType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	AltText      string    `json:"alt_text"`
	UploadedBy   uuid.UUID `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type EventInput struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Published   bool       `json:"published"`
}

type EventView struct {
	EventID     uuid.UUID  `json:"event_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Published   bool       `json:"published"`
}

type PageInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type PageView struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TransparencyInput struct {
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Year        int        `json:"year"`
	FileURL     string     `json:"file_url"`
	MediaID     *uuid.UUID `json:"media_id"`
	PublishedAt *time.Time `json:"published_at"`
}

type TransparencyView struct {
	DocumentID  uuid.UUID `json:"document_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Year        int       `json:"year"`
	FileURL     string    `json:"file_url"`
	PublishedAt time.Time `json:"published_at"`
}

type ContactRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Website   string `json:"website"`
	IPAddress string `json:"-"`
}

type ContactView struct {
	MessageID uuid.UUID `json:"message_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryView struct {
	Category string `json:"category"`
	Posts    int64  `json:"posts"`
}
