package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LockoutState is the current rate-limit envelope for a key.
type LockoutState struct {
	FailedCount int
	LockedUntil *time.Time
}

// LockoutStore holds short-lived counters used to throttle login attempts per IP.
// Per-account lockout is on the user row; this only guards against spraying.
type LockoutStore interface {
	Get(ctx context.Context, key string) (LockoutState, error)
	RecordFailure(ctx context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (LockoutState, error)
	Clear(ctx context.Context, key string) error
}

// SessionRevocationStore keeps revocation markers with token-aligned TTL.
type SessionRevocationStore interface {
	MarkRevoked(ctx context.Context, sessionID uuid.UUID, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// ContentCache caches rendered public payloads. A miss returns (nil, nil).
type ContentCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}
