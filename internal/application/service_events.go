package application

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/ports"
)

const (
	// EventTypePostPublished is emitted when a post becomes publicly visible.
	EventTypePostPublished = "post.published"
	// EventTypeMediaUploaded is emitted after a media file is stored.
	EventTypeMediaUploaded = "media.uploaded"
	// EventTypeContactSubmitted is emitted for every accepted contact form.
	EventTypeContactSubmitted = "contact.submitted"
	// EventTypeContactNotification is consumed by the worker's mailer and
	// never forwarded to the broker. It has its own outbox row so a broker
	// retry does not send the inbox email again.
	EventTypeContactNotification = "contact.notification"
	EventTypeUserLocked          = "user.locked"
)

// ContactSubmittedPayload is the outbox body of EventTypeContactSubmitted and
// EventTypeContactNotification. Inbox is only set on the notification.
type ContactSubmittedPayload struct {
	MessageID string   `json:"message_id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone,omitempty"`
	Subject   string   `json:"subject"`
	Message   string   `json:"message"`
	Inbox     []string `json:"inbox,omitempty"`
	SiteName  string   `json:"site_name"`
	CreatedAt string   `json:"created_at"`
}

// enqueueEvent writes an outbox row. Failures are logged; the write that
// triggered the event has already succeeded.
func (s *Service) enqueueEvent(ctx context.Context, eventType, partitionKey string, payload any) {
	if s.outbox == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logWarn(ctx, "enqueue_event", "marshal outbox payload failed", err, "event_type", eventType)
		return
	}
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      raw,
		OccurredAt:   s.nowFn(),
	}); err != nil {
		s.logWarn(ctx, "enqueue_event", "outbox enqueue failed", err, "event_type", eventType)
	}
}

func (s *Service) logWarn(ctx context.Context, operation, msg string, err error, fields ...any) {
	base := []any{
		"service", serviceName,
		"module", "application",
		"layer", "application",
		"operation", operation,
		"outcome", "warning",
	}
	if err != nil {
		base = append(base, "error", err)
	}
	slog.Default().WarnContext(ctx, msg, append(base, fields...)...)
}

func (s *Service) logInfo(ctx context.Context, operation, msg string, fields ...any) {
	base := []any{
		"service", serviceName,
		"module", "application",
		"layer", "application",
		"operation", operation,
		"outcome", "success",
	}
	slog.Default().InfoContext(ctx, msg, append(base, fields...)...)
}
