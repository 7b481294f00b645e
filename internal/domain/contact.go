package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusRead     ContactStatus = "read"
	ContactStatusArchived ContactStatus = "archived"
)

func ParseContactStatus(raw string) (ContactStatus, error) {
	status := ContactStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case ContactStatusNew, ContactStatusRead, ContactStatusArchived:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown contact status %q", ErrInvalidInput, raw)
	}
}

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	MessageID uuid.UUID
	Name      string
	Email     string
	Phone     string
	Subject   string
	Message   string
	IPAddress string
	Status    ContactStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	maxContactName    = 120
	maxContactSubject = 200
	minContactMessage = 10
	maxContactMessage = 5000
)

func ValidateContact(m ContactMessage) error {
	name := strings.TrimSpace(m.Name)
	if name == "" || utf8.RuneCountInString(name) > maxContactName {
		return fmt.Errorf("%w: name is required and must be <= %d characters", ErrInvalidInput, maxContactName)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(m.Email)); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if utf8.RuneCountInString(m.Subject) > maxContactSubject {
		return fmt.Errorf("%w: subject must be <= %d characters", ErrInvalidInput, maxContactSubject)
	}
	n := utf8.RuneCountInString(strings.TrimSpace(m.Message))
	if n < minContactMessage || n > maxContactMessage {
		return fmt.Errorf("%w: message must have between %d and %d characters", ErrInvalidInput, minContactMessage, maxContactMessage)
	}
	return nil
}
