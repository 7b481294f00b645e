package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/domain"
)

// UserRepository persists backoffice accounts, including lockout state.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, int64, error)
	Count(ctx context.Context) (int64, error)
	UpdateLoginState(ctx context.Context, user domain.User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error
	SetActive(ctx context.Context, userID uuid.UUID, active bool, updatedAt time.Time) error
}

// SessionCreateParams captures metadata required to create a session record.
type SessionCreateParams struct {
	UserID         uuid.UUID
	IPAddress      string
	UserAgent      string
	ExpiresAt      time.Time
	LastActivityAt time.Time
}

// SessionRepository manages persistent session lifecycle.
type SessionRepository interface {
	Create(ctx context.Context, params SessionCreateParams) (domain.Session, error)
	GetByID(ctx context.Context, sessionID uuid.UUID) (domain.Session, error)
	TouchActivity(ctx context.Context, sessionID uuid.UUID, touchedAt time.Time) error
	RevokeByID(ctx context.Context, sessionID uuid.UUID, revokedAt time.Time) error
	RevokeAllByUser(ctx context.Context, userID uuid.UUID, except *uuid.UUID, revokedAt time.Time) ([]uuid.UUID, error)
}

// LoginAttemptRepository stores login outcomes for audit.
type LoginAttemptRepository interface {
	Insert(ctx context.Context, attempt domain.LoginAttempt) error
}

// PostRepository persists news posts.
type PostRepository interface {
	Create(ctx context.Context, post domain.Post) error
	Update(ctx context.Context, post domain.Post) error
	Delete(ctx context.Context, postID uuid.UUID) error
	GetByID(ctx context.Context, postID uuid.UUID) (domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (domain.Post, error)
	SlugExists(ctx context.Context, slug string, exclude *uuid.UUID) (bool, error)
	List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, int64, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Post, error)
	ListCategories(ctx context.Context, publishedBefore time.Time) ([]CategoryCount, error)
}

// CategoryCount is one row of the public category index.
type CategoryCount struct {
	Category string `json:"category"`
	Posts    int64  `json:"posts"`
}

// MediaRepository persists media metadata. Bytes live in the BlobStore.
type MediaRepository interface {
	Create(ctx context.Context, media domain.MediaFile) error
	GetByID(ctx context.Context, mediaID uuid.UUID) (domain.MediaFile, error)
	List(ctx context.Context, filter domain.MediaFilter) ([]domain.MediaFile, int64, error)
	UpdateAlt(ctx context.Context, mediaID uuid.UUID, alt string) error
	Delete(ctx context.Context, mediaID uuid.UUID) error
}

// EventRepository persists agenda events.
type EventRepository interface {
	Create(ctx context.Context, event domain.Event) error
	Update(ctx context.Context, event domain.Event) error
	Delete(ctx context.Context, eventID uuid.UUID) error
	GetByID(ctx context.Context, eventID uuid.UUID) (domain.Event, error)
	GetBySlug(ctx context.Context, slug string) (domain.Event, error)
	SlugExists(ctx context.Context, slug string, exclude *uuid.UUID) (bool, error)
	List(ctx context.Context, window domain.EventWindow, now time.Time, onlyPublished bool, limit, offset int) ([]domain.Event, int64, error)
}

// PageRepository persists institutional pages keyed by slug.
type PageRepository interface {
	Upsert(ctx context.Context, page domain.Page) error
	GetBySlug(ctx context.Context, slug string) (domain.Page, error)
	List(ctx context.Context) ([]domain.Page, error)
}

// TransparencyFilter narrows transparency listings.
type TransparencyFilter struct {
	Year     int
	Category string
}

// TransparencyRepository persists transparency documents.
type TransparencyRepository interface {
	Create(ctx context.Context, doc domain.TransparencyDocument) error
	Delete(ctx context.Context, documentID uuid.UUID) error
	List(ctx context.Context, filter TransparencyFilter) ([]domain.TransparencyDocument, error)
	Years(ctx context.Context) ([]int, error)
}

// ContactRepository persists contact form submissions.
type ContactRepository interface {
	Create(ctx context.Context, msg domain.ContactMessage) error
	GetByID(ctx context.Context, messageID uuid.UUID) (domain.ContactMessage, error)
	List(ctx context.Context, status domain.ContactStatus, limit, offset int) ([]domain.ContactMessage, int64, error)
	SetStatus(ctx context.Context, messageID uuid.UUID, status domain.ContactStatus, updatedAt time.Time) error
}

// OutboxEvent is the write-side event payload prior to storage.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry/error metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository controls the publish-retry workflow for domain events.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}
