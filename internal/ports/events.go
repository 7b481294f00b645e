package ports

import "context"

// EventPublisher is the outbound domain-event publish port.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}

// MailMessage is a plain-text notification email.
type MailMessage struct {
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers notification emails.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
