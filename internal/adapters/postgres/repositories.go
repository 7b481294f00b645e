package postgres

import (
	"github.com/prof-ramos/asof-site/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Users         ports.UserRepository
	Sessions      ports.SessionRepository
	LoginAttempts ports.LoginAttemptRepository
	Posts         ports.PostRepository
	Media         ports.MediaRepository
	Events        ports.EventRepository
	Pages         ports.PageRepository
	Transparency  ports.TransparencyRepository
	Contacts      ports.ContactRepository
	Outbox        ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:         &userRepository{db: db},
		Sessions:      &sessionRepository{db: db},
		LoginAttempts: &loginAttemptRepository{db: db},
		Posts:         &postRepository{db: db},
		Media:         &mediaRepository{db: db},
		Events:        &eventRepository{db: db},
		Pages:         &pageRepository{db: db},
		Transparency:  &transparencyRepository{db: db},
		Contacts:      &contactRepository{db: db},
		Outbox:        &outboxRepository{db: db},
	}
}
