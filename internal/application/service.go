package application

import (
	"time"

	"github.com/prof-ramos/asof-site/internal/ports"
)

// Service holds every use-case of the site backend. HTTP and worker adapters
// depend only on it.
type Service struct {
	cfg           Config
	users         ports.UserRepository
	sessions      ports.SessionRepository
	loginAttempts ports.LoginAttemptRepository
	posts         ports.PostRepository
	media         ports.MediaRepository
	events        ports.EventRepository
	pages         ports.PageRepository
	transparency  ports.TransparencyRepository
	contacts      ports.ContactRepository
	outbox        ports.OutboxRepository
	lockouts      ports.LockoutStore
	revocations   ports.SessionRevocationStore
	cache         ports.ContentCache
	blobs         ports.BlobStore
	thumbnailer   ports.Thumbnailer
	sanitizer     ports.HTMLSanitizer
	hasher        ports.PasswordHasher
	tokenSigner   ports.TokenSigner
	nowFn         func() time.Time
}

type Dependencies struct {
	Config        Config
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
	Lockouts      ports.LockoutStore
	Revocations   ports.SessionRevocationStore
	Cache         ports.ContentCache
	Blobs         ports.BlobStore
	Thumbnailer   ports.Thumbnailer
	Sanitizer     ports.HTMLSanitizer
	Hasher        ports.PasswordHasher
	TokenSigner   ports.TokenSigner
	// Clock overrides time.Now; tests use it to pin lockout windows.
	Clock func() time.Time
}

func NewService(deps Dependencies) *Service {
	nowFn := deps.Clock
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	cfg := deps.Config.withDefaults()
	return &Service{
		cfg:           cfg,
		users:         deps.Users,
		sessions:      deps.Sessions,
		loginAttempts: deps.LoginAttempts,
		posts:         deps.Posts,
		media:         deps.Media,
		events:        deps.Events,
		pages:         deps.Pages,
		transparency:  deps.Transparency,
		contacts:      deps.Contacts,
		outbox:        deps.Outbox,
		lockouts:      deps.Lockouts,
		revocations:   deps.Revocations,
		cache:         deps.Cache,
		blobs:         deps.Blobs,
		thumbnailer:   deps.Thumbnailer,
		sanitizer:     deps.Sanitizer,
		hasher:        deps.Hasher,
		tokenSigner:   deps.TokenSigner,
		nowFn:         nowFn,
	}
}
