package postgres

import (
	"time"

	"github.com/google/uuid"
)

type userModel struct {
	UserID           uuid.UUID  `gorm:"column:user_id;type:uuid;primaryKey"`
	Email            string     `gorm:"column:email"`
	Name             string     `gorm:"column:name"`
	PasswordHash     string     `gorm:"column:password_hash"`
	Role             string     `gorm:"column:role"`
	IsActive         bool       `gorm:"column:is_active"`
	FailedLoginCount int        `gorm:"column:failed_login_count"`
	LockedUntil      *time.Time `gorm:"column:locked_until"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type sessionModel struct {
	SessionID      uuid.UUID  `gorm:"column:session_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID  `gorm:"column:user_id"`
	IPAddress      *string    `gorm:"column:ip_address"`
	UserAgent      string     `gorm:"column:user_agent"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	LastActivityAt time.Time  `gorm:"column:last_activity_at"`
	ExpiresAt      time.Time  `gorm:"column:expires_at"`
	RevokedAt      *time.Time `gorm:"column:revoked_at"`
}

func (sessionModel) TableName() string { return "sessions" }

type loginAttemptModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	UserID        *uuid.UUID `gorm:"column:user_id"`
	Email         string     `gorm:"column:email"`
	AttemptAt     time.Time  `gorm:"column:attempt_at"`
	IPAddress     *string    `gorm:"column:ip_address"`
	UserAgent     string     `gorm:"column:user_agent"`
	Status        string     `gorm:"column:status"`
	FailureReason string     `gorm:"column:failure_reason"`
}

func (loginAttemptModel) TableName() string { return "login_attempts" }

type postModel struct {
	PostID        uuid.UUID  `gorm:"column:post_id;type:uuid;primaryKey"`
	Title         string     `gorm:"column:title"`
	Slug          string     `gorm:"column:slug"`
	Excerpt       string     `gorm:"column:excerpt"`
	Content       string     `gorm:"column:content"`
	CoverImageURL string     `gorm:"column:cover_image_url"`
	Category      string     `gorm:"column:category"`
	Tags          string     `gorm:"column:tags;type:jsonb"`
	Status        string     `gorm:"column:status"`
	Featured      bool       `gorm:"column:featured"`
	AuthorID      uuid.UUID  `gorm:"column:author_id"`
	PublishedAt   *time.Time `gorm:"column:published_at"`
	ScheduledFor  *time.Time `gorm:"column:scheduled_for"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (postModel) TableName() string { return "posts" }

type mediaModel struct {
	MediaID      uuid.UUID `gorm:"column:media_id;type:uuid;primaryKey"`
	FileName     string    `gorm:"column:file_name"`
	StorageKey   string    `gorm:"column:storage_key"`
	URL          string    `gorm:"column:url"`
	MIMEType     string    `gorm:"column:mime_type"`
	SizeBytes    int64     `gorm:"column:size_bytes"`
	Width        int       `gorm:"column:width"`
	Height       int       `gorm:"column:height"`
	ThumbnailKey string    `gorm:"column:thumbnail_key"`
	ThumbnailURL string    `gorm:"column:thumbnail_url"`
	AltText      string    `gorm:"column:alt_text"`
	UploadedBy   uuid.UUID `gorm:"column:uploaded_by"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (mediaModel) TableName() string { return "media_files" }

type eventModel struct {
	EventID     uuid.UUID  `gorm:"column:event_id;type:uuid;primaryKey"`
	Title       string     `gorm:"column:title"`
	Slug        string     `gorm:"column:slug"`
	Description string     `gorm:"column:description"`
	Location    string     `gorm:"column:location"`
	StartsAt    time.Time  `gorm:"column:starts_at"`
	EndsAt      *time.Time `gorm:"column:ends_at"`
	Published   bool       `gorm:"column:published"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (eventModel) TableName() string { return "events" }

type pageModel struct {
	Slug      string     `gorm:"column:slug;primaryKey"`
	Title     string     `gorm:"column:title"`
	Content   string     `gorm:"column:content"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
	UpdatedBy *uuid.UUID `gorm:"column:updated_by"`
}

func (pageModel) TableName() string { return "pages" }

type transparencyModel struct {
	DocumentID  uuid.UUID  `gorm:"column:document_id;type:uuid;primaryKey"`
	Title       string     `gorm:"column:title"`
	Category    string     `gorm:"column:category"`
	Year        int        `gorm:"column:year"`
	FileURL     string     `gorm:"column:file_url"`
	MediaID     *uuid.UUID `gorm:"column:media_id"`
	PublishedAt time.Time  `gorm:"column:published_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
}

func (transparencyModel) TableName() string { return "transparency_documents" }

type contactModel struct {
	MessageID uuid.UUID `gorm:"column:message_id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email"`
	Phone     string    `gorm:"column:phone"`
	Subject   string    `gorm:"column:subject"`
	Message   string    `gorm:"column:message"`
	IPAddress *string   `gorm:"column:ip_address"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (contactModel) TableName() string { return "contact_messages" }

type outboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "site_outbox" }
