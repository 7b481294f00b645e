package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

// ParseRole accepts the role names stored on user rows.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleEditor, "":
		return RoleEditor, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
}

// User is a backoffice account. Lockout state lives on the row itself.
type User struct {
	UserID           uuid.UUID
	Email            string
	Name             string
	PasswordHash     string
	Role             Role
	IsActive         bool
	FailedLoginCount int
	LockedUntil      *time.Time
	LastLoginAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsLocked reports whether a lockout window is still open at now.
func (u User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// RegisterFailure counts a bad password. Reaching threshold opens a lockout
// window and starts the counter over.
func (u *User) RegisterFailure(now time.Time, threshold int, window time.Duration) {
	if u.LockedUntil != nil && !u.LockedUntil.After(now) {
		u.LockedUntil = nil
	}
	u.FailedLoginCount++
	if threshold > 0 && u.FailedLoginCount >= threshold {
		until := now.Add(window).UTC()
		u.LockedUntil = &until
		u.FailedLoginCount = 0
	}
	u.UpdatedAt = now
}

// ResetFailures clears counter and lockout after a good login or an admin unlock.
func (u *User) ResetFailures() {
	u.FailedLoginCount = 0
	u.LockedUntil = nil
}

// Session is a persisted login. Revocation is checked on every request.
type Session struct {
	SessionID      uuid.UUID
	UserID         uuid.UUID
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
	LastActivityAt time.Time
	ExpiresAt      time.Time
	RevokedAt      *time.Time
}

// LoginAttempt records one authentication outcome for audit.
type LoginAttempt struct {
	ID            int64
	UserID        *uuid.UUID
	Email         string
	AttemptAt     time.Time
	IPAddress     string
	UserAgent     string
	Status        string
	FailureReason string
}

const (
	LoginStatusSuccess = "SUCCESS"
	LoginStatusFailed  = "FAILED"
)
