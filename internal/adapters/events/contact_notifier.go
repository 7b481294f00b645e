package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prof-ramos/asof-site/internal/application"
	"github.com/prof-ramos/asof-site/internal/ports"
)

// ContactNotifier mails contact.notification events to the association inbox
// and forwards every other event to the next publisher.
type ContactNotifier struct {
	logger *slog.Logger
	mailer ports.Mailer
	next   ports.EventPublisher
}

func NewContactNotifier(logger *slog.Logger, mailer ports.Mailer, next ports.EventPublisher) *ContactNotifier {
	return &ContactNotifier{logger: logger, mailer: mailer, next: next}
}

func (n *ContactNotifier) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	if eventType == application.EventTypeContactNotification {
		return n.notify(ctx, payload)
	}
	if n.next == nil {
		return nil
	}
	return n.next.Publish(ctx, eventType, payload, partitionKey)
}

func (n *ContactNotifier) notify(ctx context.Context, payload []byte) error {
	var msg application.ContactSubmittedPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decode contact payload: %w", err)
	}
	if len(msg.Inbox) == 0 {
		n.logger.WarnContext(ctx, "contact inbox not configured; notification skipped",
			"module", "events.contact_notifier",
			"layer", "adapter",
			"operation", "notify_contact",
			"outcome", "skipped",
			"message_id", msg.MessageID,
		)
		return nil
	}

	if err := n.mailer.Send(ctx, contactMail(msg)); err != nil {
		return fmt.Errorf("send contact notification: %w", err)
	}
	n.logger.InfoContext(ctx, "contact notification sent",
		"module", "events.contact_notifier",
		"layer", "adapter",
		"operation", "notify_contact",
		"outcome", "success",
		"message_id", msg.MessageID,
	)
	return nil
}

func contactMail(msg application.ContactSubmittedPayload) ports.MailMessage {
	site := msg.SiteName
	if site == "" {
		site = "ASOF"
	}
	var body strings.Builder
	fmt.Fprintf(&body, "Nova mensagem recebida pelo formulário de contato.\n\n")
	fmt.Fprintf(&body, "Nome: %s\n", msg.Name)
	fmt.Fprintf(&body, "E-mail: %s\n", msg.Email)
	if msg.Phone != "" {
		fmt.Fprintf(&body, "Telefone: %s\n", msg.Phone)
	}
	fmt.Fprintf(&body, "Assunto: %s\n", msg.Subject)
	fmt.Fprintf(&body, "Recebida em: %s\n\n", msg.CreatedAt)
	body.WriteString(msg.Message)
	body.WriteString("\n")

	return ports.MailMessage{
		To:      msg.Inbox,
		ReplyTo: msg.Email,
		Subject: fmt.Sprintf("[%s] Contato: %s", site, msg.Subject),
		Body:    body.String(),
	}
}
