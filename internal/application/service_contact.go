package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/domain"
)

// SubmitContact stores a public contact form and queues the inbox notification.
// Submissions that fill the hidden "website" field are dropped without error.
func (s *Service) SubmitContact(ctx context.Context, req ContactRequest) error {
	if strings.TrimSpace(req.Website) != "" {
		s.logInfo(ctx, "submit_contact", "honeypot submission dropped", "ip_address", req.IPAddress)
		return nil
	}
	now := s.nowFn()
	msg := domain.ContactMessage{
		MessageID: uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   strings.TrimSpace(req.Message),
		IPAddress: req.IPAddress,
		Status:    domain.ContactStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.sanitizer != nil {
		msg.Subject = s.sanitizer.PlainText(msg.Subject)
		msg.Message = s.sanitizer.PlainText(msg.Message)
	}
	if err := domain.ValidateContact(msg); err != nil {
		return err
	}
	if err := s.contacts.Create(ctx, msg); err != nil {
		return err
	}
	payload := ContactSubmittedPayload{
		MessageID: msg.MessageID.String(),
		Name:      msg.Name,
		Email:     msg.Email,
		Phone:     msg.Phone,
		Subject:   msg.Subject,
		Message:   msg.Message,
		SiteName:  s.cfg.SiteName,
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
	}
	s.enqueueEvent(ctx, EventTypeContactSubmitted, payload.MessageID, payload)
	payload.Inbox = s.cfg.ContactInbox
	s.enqueueEvent(ctx, EventTypeContactNotification, payload.MessageID, payload)
	return nil
}

func (s *Service) ListContactMessages(ctx context.Context, actor Actor, status string, page, pageSize int) (Page[ContactView], error) {
	if err := requireActor(actor); err != nil {
		return Page[ContactView]{}, err
	}
	var filter domain.ContactStatus
	if strings.TrimSpace(status) != "" {
		parsed, err := domain.ParseContactStatus(status)
		if err != nil {
			return Page[ContactView]{}, err
		}
		filter = parsed
	}
	page, pageSize = normalizePaging(page, pageSize, 20)
	msgs, total, err := s.contacts.List(ctx, filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return Page[ContactView]{}, err
	}
	items := make([]ContactView, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, toContactView(m))
	}
	return newPage(items, page, pageSize, total), nil
}

func (s *Service) GetContactMessage(ctx context.Context, actor Actor, messageID uuid.UUID) (ContactView, error) {
	if err := requireActor(actor); err != nil {
		return ContactView{}, err
	}
	msg, err := s.contacts.GetByID(ctx, messageID)
	if err != nil {
		return ContactView{}, err
	}
	return toContactView(msg), nil
}

func (s *Service) SetContactStatus(ctx context.Context, actor Actor, messageID uuid.UUID, status string) (ContactView, error) {
	if err := requireActor(actor); err != nil {
		return ContactView{}, err
	}
	parsed, err := domain.ParseContactStatus(status)
	if err != nil {
		return ContactView{}, err
	}
	msg, err := s.contacts.GetByID(ctx, messageID)
	if err != nil {
		return ContactView{}, err
	}
	now := s.nowFn()
	if err := s.contacts.SetStatus(ctx, messageID, parsed, now); err != nil {
		return ContactView{}, err
	}
	msg.Status = parsed
	msg.UpdatedAt = now
	return toContactView(msg), nil
}

func toContactView(m domain.ContactMessage) ContactView {
	return ContactView{
		MessageID: m.MessageID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Subject:   m.Subject,
		Message:   m.Message,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
	}
}
