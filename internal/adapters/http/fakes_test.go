package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/prof-ramos/asof-site/internal/adapters/cache"
	"github.com/prof-ramos/asof-site/internal/adapters/imaging"
	"github.com/prof-ramos/asof-site/internal/adapters/observability"
	"github.com/prof-ramos/asof-site/internal/adapters/security"
	"github.com/prof-ramos/asof-site/internal/adapters/storage"
	"github.com/prof-ramos/asof-site/internal/application"
	"github.com/prof-ramos/asof-site/internal/domain"
	"github.com/prof-ramos/asof-site/internal/ports"
)

const (
	adminEmail    = "admin@asof.org.br"
	adminPassword = "Senha1234"
)

type testEnv struct {
	service  *application.Service
	handler  *Handler
	router   http.Handler
	metrics  *observability.Metrics
	uploads  string
	contacts *fakeContacts
	outbox   *fakeOutbox
	ready    error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithOptions(t, nil)
}

func newTestEnvWithOptions(t *testing.T, configure func(*Options)) *testEnv {
	t.Helper()
	slog.SetDefault(slog.New(slog.NewJSONHandler(io.Discard, nil)))

	srv := miniredis.RunT(t)
	rdb, err := cache.Connect(context.Background(), srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	signer, err := security.NewEphemeralJWTSigner("test")
	require.NoError(t, err)

	uploads := t.TempDir()
	blobs, err := storage.NewLocalStore(uploads, "/uploads")
	require.NoError(t, err)

	env := &testEnv{
		metrics:  observability.NewMetrics(),
		uploads:  uploads,
		contacts: &fakeContacts{byID: map[uuid.UUID]domain.ContactMessage{}},
		outbox:   &fakeOutbox{},
	}
	env.service = application.NewService(application.Dependencies{
		Config: application.Config{
			FailedLoginThreshold: 3,
			LockoutDuration:      15 * time.Minute,
			LoginIPThreshold:     100,
			LoginIPWindow:        time.Minute,
			MaxUploadBytes:       1 << 20,
			ThumbnailWidth:       64,
			ContactInbox:         []string{"secretaria@asof.org.br"},
		},
		Users:         &fakeUsers{byID: map[uuid.UUID]domain.User{}},
		Sessions:      &fakeSessions{byID: map[uuid.UUID]domain.Session{}},
		LoginAttempts: &fakeLoginAttempts{},
		Posts:         &fakePosts{},
		Media:         &fakeMedia{byID: map[uuid.UUID]domain.MediaFile{}},
		Contacts:      env.contacts,
		Outbox:        env.outbox,
		Lockouts:      cache.NewRedisLockoutStore(rdb),
		Revocations:   cache.NewRedisSessionRevocationStore(rdb),
		Cache:         cache.NewRedisContentCache(rdb),
		Blobs:         blobs,
		Thumbnailer:   imaging.NewThumbnailer(80),
		Sanitizer:     security.NewHTMLSanitizer(),
		Hasher:        security.NewBcryptHasher(bcrypt.MinCost),
		TokenSigner:   signer,
	})
	created, err := env.service.BootstrapAdmin(context.Background(), adminEmail, adminPassword, "")
	require.NoError(t, err)
	require.True(t, created)

	opts := Options{
		MaxUploadBytes: 1 << 20,
		UploadsDir:     uploads,
		ContactRate:    rate.Every(time.Hour),
		ContactBurst:   2,
		Ready:          func(context.Context) error { return env.ready },
	}
	if configure != nil {
		configure(&opts)
	}
	env.handler = NewHandler(env.service, env.metrics, opts)
	env.router = NewRouter(env.handler)
	return env
}

type fakeUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.User
}

func (f *fakeUsers) Create(_ context.Context, user domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return domain.User{}, domain.ErrConflict
		}
	}
	f.byID[user.UserID] = user
	return user, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, userID uuid.UUID) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(_ context.Context, limit, offset int) ([]domain.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeUsers) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), nil
}

func (f *fakeUsers) UpdateLoginState(_ context.Context, user domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[user.UserID]
	if !ok {
		return domain.ErrNotFound
	}
	u.FailedLoginCount = user.FailedLoginCount
	u.LockedUntil = user.LockedUntil
	u.LastLoginAt = user.LastLoginAt
	f.byID[user.UserID] = u
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.byID[userID]
	u.PasswordHash = passwordHash
	f.byID[userID] = u
	return nil
}

func (f *fakeUsers) SetActive(_ context.Context, userID uuid.UUID, active bool, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsActive = active
	f.byID[userID] = u
	return nil
}

type fakeSessions struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.Session
}

func (f *fakeSessions) Create(_ context.Context, params ports.SessionCreateParams) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := domain.Session{
		SessionID:      uuid.New(),
		UserID:         params.UserID,
		IPAddress:      params.IPAddress,
		UserAgent:      params.UserAgent,
		CreatedAt:      params.LastActivityAt,
		LastActivityAt: params.LastActivityAt,
		ExpiresAt:      params.ExpiresAt,
	}
	f.byID[s.SessionID] = s
	return s, nil
}

func (f *fakeSessions) GetByID(_ context.Context, sessionID uuid.UUID) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessions) TouchActivity(context.Context, uuid.UUID, time.Time) error { return nil }

func (f *fakeSessions) RevokeByID(_ context.Context, sessionID uuid.UUID, revokedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	s.RevokedAt = &revokedAt
	f.byID[sessionID] = s
	return nil
}

func (f *fakeSessions) RevokeAllByUser(_ context.Context, userID uuid.UUID, except *uuid.UUID, revokedAt time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for k, s := range f.byID {
		if s.UserID != userID || s.RevokedAt != nil || (except != nil && k == *except) {
			continue
		}
		s.RevokedAt = &revokedAt
		f.byID[k] = s
		ids = append(ids, k)
	}
	return ids, nil
}

type fakeLoginAttempts struct{}

func (fakeLoginAttempts) Insert(context.Context, domain.LoginAttempt) error { return nil }

type fakePosts struct {
	mu    sync.Mutex
	posts []domain.Post
}

func (f *fakePosts) Create(_ context.Context, post domain.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, post)
	return nil
}

func (f *fakePosts) Update(context.Context, domain.Post) error { return nil }

func (f *fakePosts) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakePosts) GetByID(context.Context, uuid.UUID) (domain.Post, error) {
	return domain.Post{}, domain.ErrNotFound
}

func (f *fakePosts) GetBySlug(_ context.Context, slug string) (domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return domain.Post{}, domain.ErrNotFound
}

func (f *fakePosts) SlugExists(_ context.Context, slug string, _ *uuid.UUID) (bool, error) {
	_, err := f.GetBySlug(context.Background(), slug)
	return err == nil, nil
}

func (f *fakePosts) List(_ context.Context, filter domain.PostFilter) ([]domain.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Post
	for _, p := range f.posts {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (f *fakePosts) ListDue(context.Context, time.Time, int) ([]domain.Post, error) { return nil, nil }

func (f *fakePosts) ListCategories(context.Context, time.Time) ([]ports.CategoryCount, error) {
	return nil, nil
}

type fakeMedia struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.MediaFile
}

func (f *fakeMedia) Create(_ context.Context, media domain.MediaFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[media.MediaID] = media
	return nil
}

func (f *fakeMedia) GetByID(_ context.Context, mediaID uuid.UUID) (domain.MediaFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[mediaID]
	if !ok {
		return domain.MediaFile{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeMedia) List(context.Context, domain.MediaFilter) ([]domain.MediaFile, int64, error) {
	return nil, 0, nil
}

func (f *fakeMedia) UpdateAlt(context.Context, uuid.UUID, string) error { return nil }

func (f *fakeMedia) Delete(_ context.Context, mediaID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, mediaID)
	return nil
}

type fakeContacts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.ContactMessage
}

func (f *fakeContacts) Create(_ context.Context, msg domain.ContactMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[msg.MessageID] = msg
	return nil
}

func (f *fakeContacts) GetByID(_ context.Context, id uuid.UUID) (domain.ContactMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return domain.ContactMessage{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeContacts) List(context.Context, domain.ContactStatus, int, int) ([]domain.ContactMessage, int64, error) {
	return nil, 0, nil
}

func (f *fakeContacts) SetStatus(context.Context, uuid.UUID, domain.ContactStatus, time.Time) error {
	return nil
}

func (f *fakeContacts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []ports.OutboxEvent
}

func (f *fakeOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) ClaimUnpublished(context.Context, int, string, time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkPublished(context.Context, uuid.UUID, string, time.Time) error { return nil }

func (f *fakeOutbox) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (f *fakeOutbox) MarkDeadLettered(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}
