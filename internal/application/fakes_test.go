package application_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/application"
	"github.com/prof-ramos/asof-site/internal/domain"
	"github.com/prof-ramos/asof-site/internal/ports"
)

type fixture struct {
	service      *application.Service
	clock        *fakeClock
	users        *fakeUsers
	sessions     *fakeSessions
	posts        *fakePosts
	media        *fakeMedia
	events       *fakeEvents
	pages        *fakePages
	transparency *fakeTransparency
	contacts     *fakeContacts
	outbox       *fakeOutbox
	lockouts     *fakeLockouts
	revocations  *fakeRevocations
	cache        *fakeCache
	blobs        *fakeBlobs
	thumbnailer  *fakeThumbnailer
}

func defaultTestConfig() application.Config {
	return application.Config{
		TokenTTL:             time.Hour,
		SessionTTL:           24 * time.Hour,
		FailedLoginThreshold: 3,
		LockoutDuration:      15 * time.Minute,
		LoginIPThreshold:     100,
		LoginIPWindow:        time.Minute,
		MaxUploadBytes:       1 << 20,
		ThumbnailWidth:       320,
		PublicCacheTTL:       time.Minute,
		DuePostsBatch:        10,
		ContactInbox:         []string{"contato@asof.org.br"},
		SiteName:             "ASOF",
	}
}

func newFixture() *fixture {
	return newFixtureWithConfig(defaultTestConfig())
}

func newFixtureWithConfig(cfg application.Config) *fixture {
	f := &fixture{
		clock:        &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)},
		users:        &fakeUsers{byID: map[uuid.UUID]domain.User{}},
		sessions:     &fakeSessions{byID: map[uuid.UUID]domain.Session{}},
		posts:        &fakePosts{byID: map[uuid.UUID]domain.Post{}},
		media:        &fakeMedia{byID: map[uuid.UUID]domain.MediaFile{}},
		events:       &fakeEvents{byID: map[uuid.UUID]domain.Event{}},
		pages:        &fakePages{bySlug: map[string]domain.Page{}},
		transparency: &fakeTransparency{byID: map[uuid.UUID]domain.TransparencyDocument{}},
		contacts:     &fakeContacts{byID: map[uuid.UUID]domain.ContactMessage{}},
		outbox:       &fakeOutbox{},
		lockouts:     &fakeLockouts{state: map[string]ports.LockoutState{}},
		revocations:  &fakeRevocations{revoked: map[uuid.UUID]bool{}},
		cache:        &fakeCache{items: map[string][]byte{}},
		blobs:        &fakeBlobs{objects: map[string][]byte{}},
		thumbnailer:  &fakeThumbnailer{info: ports.ImageInfo{Width: 1200, Height: 800}},
	}
	f.service = application.NewService(application.Dependencies{
		Config:        cfg,
		Users:         f.users,
		Sessions:      f.sessions,
		LoginAttempts: &fakeLoginAttempts{},
		Posts:         f.posts,
		Media:         f.media,
		Events:        f.events,
		Pages:         f.pages,
		Transparency:  f.transparency,
		Contacts:      f.contacts,
		Outbox:        f.outbox,
		Lockouts:      f.lockouts,
		Revocations:   f.revocations,
		Cache:         f.cache,
		Blobs:         f.blobs,
		Thumbnailer:   f.thumbnailer,
		Sanitizer:     fakeSanitizer{},
		Hasher:        &fakeHasher{},
		TokenSigner:   &fakeSigner{tokens: map[string]ports.AuthClaims{}},
		Clock:         f.clock.Now,
	})
	return f
}

// seedUser stores an active account whose password is "Senha123".
func (f *fixture) seedUser(email string, role domain.Role) domain.User {
	now := f.clock.Now()
	u := domain.User{
		UserID:       uuid.New(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: "hash:Senha123",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users.mu.Lock()
	f.users.byID[u.UserID] = u
	f.users.mu.Unlock()
	return u
}

func actorFor(u domain.User) application.Actor {
	return application.Actor{UserID: u.UserID, Email: u.Email, Role: u.Role, SessionID: uuid.New()}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
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
	u.UpdatedAt = user.UpdatedAt
	f.byID[user.UserID] = u
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = updatedAt
	f.byID[userID] = u
	return nil
}

func (f *fakeUsers) SetActive(_ context.Context, userID uuid.UUID, active bool, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsActive = active
	u.UpdatedAt = updatedAt
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

func (f *fakeSessions) TouchActivity(_ context.Context, sessionID uuid.UUID, touchedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.byID[sessionID]
	s.LastActivityAt = touchedAt
	f.byID[sessionID] = s
	return nil
}

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
		if s.UserID != userID || s.RevokedAt != nil {
			continue
		}
		if except != nil && k == *except {
			continue
		}
		s.RevokedAt = &revokedAt
		f.byID[k] = s
		ids = append(ids, k)
	}
	return ids, nil
}

type fakeLoginAttempts struct {
	mu       sync.Mutex
	attempts []domain.LoginAttempt
}

func (f *fakeLoginAttempts) Insert(_ context.Context, attempt domain.LoginAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, attempt)
	return nil
}

type fakePosts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.Post
}

func (f *fakePosts) Create(_ context.Context, post domain.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[post.PostID] = post
	return nil
}

func (f *fakePosts) Update(_ context.Context, post domain.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[post.PostID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[post.PostID] = post
	return nil
}

func (f *fakePosts) Delete(_ context.Context, postID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[postID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, postID)
	return nil
}

func (f *fakePosts) GetByID(_ context.Context, postID uuid.UUID) (domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[postID]
	if !ok {
		return domain.Post{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePosts) GetBySlug(_ context.Context, slug string) (domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.Slug == slug {
			return p, nil
		}
	}
	return domain.Post{}, domain.ErrNotFound
}

func (f *fakePosts) SlugExists(_ context.Context, slug string, exclude *uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.byID {
		if exclude != nil && id == *exclude {
			continue
		}
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePosts) List(_ context.Context, filter domain.PostFilter) ([]domain.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Post
	for _, p := range f.byID {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.PublishedBefore != nil && (p.PublishedAt == nil || p.PublishedAt.After(*filter.PublishedBefore)) {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, int64(len(out)), nil
}

func (f *fakePosts) ListDue(_ context.Context, now time.Time, limit int) ([]domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Post
	for _, p := range f.byID {
		if p.IsDue(now) && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePosts) ListCategories(_ context.Context, publishedBefore time.Time) ([]ports.CategoryCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int64{}
	for _, p := range f.byID {
		if p.IsVisible(publishedBefore) && p.Category != "" {
			counts[p.Category]++
		}
	}
	out := make([]ports.CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, ports.CategoryCount{Category: c, Posts: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
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

func (f *fakeMedia) List(_ context.Context, filter domain.MediaFilter) ([]domain.MediaFile, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.MediaFile
	for _, m := range f.byID {
		if strings.HasPrefix(m.MIMEType, filter.MIMEPrefix) {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeMedia) UpdateAlt(_ context.Context, mediaID uuid.UUID, alt string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[mediaID]
	if !ok {
		return domain.ErrNotFound
	}
	m.AltText = alt
	f.byID[mediaID] = m
	return nil
}

func (f *fakeMedia) Delete(_ context.Context, mediaID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, mediaID)
	return nil
}

type fakeEvents struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.Event
}

func (f *fakeEvents) Create(_ context.Context, event domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[event.EventID] = event
	return nil
}

func (f *fakeEvents) Update(_ context.Context, event domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[event.EventID] = event
	return nil
}

func (f *fakeEvents) Delete(_ context.Context, eventID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, eventID)
	return nil
}

func (f *fakeEvents) GetByID(_ context.Context, eventID uuid.UUID) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[eventID]
	if !ok {
		return domain.Event{}, domain.ErrNotFound
	}
	return e, nil
}

func (f *fakeEvents) GetBySlug(_ context.Context, slug string) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.byID {
		if e.Slug == slug {
			return e, nil
		}
	}
	return domain.Event{}, domain.ErrNotFound
}

func (f *fakeEvents) SlugExists(_ context.Context, slug string, exclude *uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, e := range f.byID {
		if exclude != nil && id == *exclude {
			continue
		}
		if e.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEvents) List(_ context.Context, window domain.EventWindow, now time.Time, onlyPublished bool, limit, offset int) ([]domain.Event, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Event
	for _, e := range f.byID {
		if onlyPublished && !e.Published {
			continue
		}
		switch window {
		case domain.EventWindowUpcoming:
			if e.StartsAt.Before(now) {
				continue
			}
		case domain.EventWindowPast:
			if !e.StartsAt.Before(now) {
				continue
			}
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, int64(len(out)), nil
}

type fakePages struct {
	mu     sync.Mutex
	bySlug map[string]domain.Page
}

func (f *fakePages) Upsert(_ context.Context, page domain.Page) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bySlug[page.Slug] = page
	return nil
}

func (f *fakePages) GetBySlug(_ context.Context, slug string) (domain.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.bySlug[slug]
	if !ok {
		return domain.Page{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePages) List(context.Context) ([]domain.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Page, 0, len(f.bySlug))
	for _, p := range f.bySlug {
		out = append(out, p)
	}
	return out, nil
}

type fakeTransparency struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.TransparencyDocument
}

func (f *fakeTransparency) Create(_ context.Context, doc domain.TransparencyDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[doc.DocumentID] = doc
	return nil
}

func (f *fakeTransparency) Delete(_ context.Context, documentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[documentID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, documentID)
	return nil
}

func (f *fakeTransparency) List(_ context.Context, filter ports.TransparencyFilter) ([]domain.TransparencyDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TransparencyDocument
	for _, d := range f.byID {
		if filter.Year != 0 && d.Year != filter.Year {
			continue
		}
		if filter.Category != "" && d.Category != filter.Category {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeTransparency) Years(context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[int]bool{}
	var out []int
	for _, d := range f.byID {
		if !seen[d.Year] {
			seen[d.Year] = true
			out = append(out, d.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
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

func (f *fakeContacts) GetByID(_ context.Context, messageID uuid.UUID) (domain.ContactMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[messageID]
	if !ok {
		return domain.ContactMessage{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeContacts) List(_ context.Context, status domain.ContactStatus, _, _ int) ([]domain.ContactMessage, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ContactMessage
	for _, m := range f.byID {
		if status == "" || m.Status == status {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeContacts) SetStatus(_ context.Context, messageID uuid.UUID, status domain.ContactStatus, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[messageID]
	if !ok {
		return domain.ErrNotFound
	}
	m.Status = status
	m.UpdatedAt = updatedAt
	f.byID[messageID] = m
	return nil
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

func (f *fakeOutbox) count(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

type fakeLockouts struct {
	mu    sync.Mutex
	state map[string]ports.LockoutState
	down  bool
}

func (f *fakeLockouts) Get(_ context.Context, key string) (ports.LockoutState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return ports.LockoutState{}, errors.New("redis down")
	}
	return f.state[key], nil
}

func (f *fakeLockouts) RecordFailure(_ context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (ports.LockoutState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return ports.LockoutState{}, errors.New("redis down")
	}
	st := f.state[key]
	st.FailedCount++
	if st.FailedCount >= threshold {
		lockUntil := now.Add(lockoutWindow)
		st.LockedUntil = &lockUntil
	}
	f.state[key] = st
	return st, nil
}

func (f *fakeLockouts) Clear(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.state, key)
	return nil
}

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[uuid.UUID]bool
}

func (f *fakeRevocations) MarkRevoked(_ context.Context, sessionID uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[sessionID] = true
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, sessionID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[sessionID], nil
}

type fakeCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[key], nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.items, k)
	}
	return nil
}

func (f *fakeCache) DeletePrefix(_ context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.items {
		if strings.HasPrefix(k, prefix) {
			delete(f.items, k)
		}
	}
	return nil
}

func (f *fakeCache) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeBlobs) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) (ports.BlobObject, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return ports.BlobObject{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return ports.BlobObject{Key: key, URL: "/uploads/" + key, ContentType: contentType, Size: int64(len(data))}, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobs) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

type fakeThumbnailer struct {
	info ports.ImageInfo
	fail bool
}

func (f *fakeThumbnailer) Inspect([]byte) (ports.ImageInfo, error) {
	if f.fail {
		return ports.ImageInfo{}, errors.New("decode failed")
	}
	return f.info, nil
}

func (f *fakeThumbnailer) Thumbnail(_ []byte, maxWidth int) ([]byte, ports.ImageInfo, error) {
	if f.fail {
		return nil, ports.ImageInfo{}, errors.New("decode failed")
	}
	return []byte("thumb"), ports.ImageInfo{Width: maxWidth, Height: maxWidth * f.info.Height / f.info.Width}, nil
}

type fakeSanitizer struct{}

func (fakeSanitizer) Sanitize(html string) string {
	return strings.ReplaceAll(html, "<script>alert(1)</script>", "")
}

func (fakeSanitizer) PlainText(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

type fakeHasher struct{}

func (f *fakeHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (f *fakeHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

type fakeSigner struct {
	mu     sync.Mutex
	tokens map[string]ports.AuthClaims
}

func (f *fakeSigner) Sign(claims ports.AuthClaims) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := uuid.NewString()
	f.tokens[token] = claims
	return token, nil
}

func (f *fakeSigner) ParseAndValidate(token string) (ports.AuthClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claims, ok := f.tokens[token]
	if !ok {
		return ports.AuthClaims{}, domain.ErrUnauthorized
	}
	return claims, nil
}
