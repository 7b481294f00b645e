package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/domain"
	"github.com/prof-ramos/asof-site/internal/ports"
)

func (s *Service) CreateEvent(ctx context.Context, actor Actor, in EventInput) (EventView, error) {
	if err := requireActor(actor); err != nil {
		return EventView{}, err
	}
	now := s.nowFn()
	event := domain.Event{
		EventID:   uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.applyEventInput(&event, in)
	slug, err := s.resolveEventSlug(ctx, in.Slug, event.Title, nil)
	if err != nil {
		return EventView{}, err
	}
	event.Slug = slug
	if err := domain.ValidateEvent(event); err != nil {
		return EventView{}, err
	}
	if err := s.events.Create(ctx, event); err != nil {
		return EventView{}, err
	}
	s.invalidateCache(ctx, cachePrefixEvents)
	return toEventView(event), nil
}

func (s *Service) UpdateEvent(ctx context.Context, actor Actor, eventID uuid.UUID, in EventInput) (EventView, error) {
	if err := requireActor(actor); err != nil {
		return EventView{}, err
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return EventView{}, err
	}
	s.applyEventInput(&event, in)
	if strings.TrimSpace(in.Slug) != "" && domain.Slugify(in.Slug) != event.Slug {
		slug, err := s.resolveEventSlug(ctx, in.Slug, event.Title, &event.EventID)
		if err != nil {
			return EventView{}, err
		}
		event.Slug = slug
	}
	event.UpdatedAt = s.nowFn()
	if err := domain.ValidateEvent(event); err != nil {
		return EventView{}, err
	}
	if err := s.events.Update(ctx, event); err != nil {
		return EventView{}, err
	}
	s.invalidateCache(ctx, cachePrefixEvents)
	return toEventView(event), nil
}

func (s *Service) DeleteEvent(ctx context.Context, actor Actor, eventID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return err
	}
	s.invalidateCache(ctx, cachePrefixEvents)
	return nil
}

// ListEvents is the backoffice agenda; unpublished events are included.
func (s *Service) ListEvents(ctx context.Context, actor Actor, window string, page, pageSize int) (Page[EventView], error) {
	if err := requireActor(actor); err != nil {
		return Page[EventView]{}, err
	}
	w := domain.EventWindowAll
	if strings.TrimSpace(window) != "" {
		w = domain.ParseEventWindow(window)
	}
	return s.listEvents(ctx, w, false, page, pageSize)
}

// ListPublicEvents lists published events. Upcoming events start at or after
// now and come soonest first; past events come most recent first.
func (s *Service) ListPublicEvents(ctx context.Context, window string, page, pageSize int) (Page[EventView], error) {
	w := domain.ParseEventWindow(window)
	page, pageSize = normalizePaging(page, pageSize, 12)
	key := fmt.Sprintf("%slist:%s:%d:%d", cachePrefixEvents, w, page, pageSize)
	var cached Page[EventView]
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}
	out, err := s.listEvents(ctx, w, true, page, pageSize)
	if err != nil {
		return Page[EventView]{}, err
	}
	s.writeCache(ctx, key, out)
	return out, nil
}

func (s *Service) listEvents(ctx context.Context, window domain.EventWindow, onlyPublished bool, page, pageSize int) (Page[EventView], error) {
	page, pageSize = normalizePaging(page, pageSize, 12)
	events, total, err := s.events.List(ctx, window, s.nowFn(), onlyPublished, pageSize, (page-1)*pageSize)
	if err != nil {
		return Page[EventView]{}, err
	}
	items := make([]EventView, 0, len(events))
	for _, e := range events {
		items = append(items, toEventView(e))
	}
	return newPage(items, page, pageSize, total), nil
}

func (s *Service) GetEvent(ctx context.Context, actor Actor, eventID uuid.UUID) (EventView, error) {
	if err := requireActor(actor); err != nil {
		return EventView{}, err
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return EventView{}, err
	}
	return toEventView(event), nil
}

func (s *Service) GetPublicEvent(ctx context.Context, slug string) (EventView, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !domain.ValidSlug(slug) {
		return EventView{}, domain.ErrNotFound
	}
	event, err := s.events.GetBySlug(ctx, slug)
	if err != nil {
		return EventView{}, err
	}
	if !event.Published {
		return EventView{}, domain.ErrNotFound
	}
	return toEventView(event), nil
}

func (s *Service) applyEventInput(event *domain.Event, in EventInput) {
	event.Title = strings.TrimSpace(in.Title)
	description := in.Description
	if s.sanitizer != nil {
		description = s.sanitizer.Sanitize(description)
	}
	event.Description = strings.TrimSpace(description)
	event.Location = strings.TrimSpace(in.Location)
	event.StartsAt = in.StartsAt.UTC()
	event.EndsAt = nil
	if in.EndsAt != nil {
		end := in.EndsAt.UTC()
		event.EndsAt = &end
	}
	event.Published = in.Published
}

func (s *Service) resolveEventSlug(ctx context.Context, explicit, title string, exclude *uuid.UUID) (string, error) {
	base := domain.Slugify(explicit)
	if base == "" {
		base = domain.Slugify(title)
	}
	return uniqueSlug(ctx, base, func(ctx context.Context, slug string) (bool, error) {
		return s.events.SlugExists(ctx, slug, exclude)
	})
}

func toEventView(e domain.Event) EventView {
	return EventView{
		EventID:     e.EventID,
		Title:       e.Title,
		Slug:        e.Slug,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		Published:   e.Published,
	}
}

// UpsertPage creates or replaces an institutional page such as "sobre".
func (s *Service) UpsertPage(ctx context.Context, actor Actor, slug string, in PageInput) (PageView, error) {
	if err := requireActor(actor); err != nil {
		return PageView{}, err
	}
	content := in.Content
	if s.sanitizer != nil {
		content = s.sanitizer.Sanitize(content)
	}
	updatedBy := actor.UserID
	page := domain.Page{
		Slug:      strings.ToLower(strings.TrimSpace(slug)),
		Title:     strings.TrimSpace(in.Title),
		Content:   strings.TrimSpace(content),
		UpdatedAt: s.nowFn(),
		UpdatedBy: &updatedBy,
	}
	if err := domain.ValidatePage(page); err != nil {
		return PageView{}, err
	}
	if err := s.pages.Upsert(ctx, page); err != nil {
		return PageView{}, err
	}
	s.invalidateCache(ctx, cachePrefixPages+page.Slug)
	return toPageView(page), nil
}

func (s *Service) GetPage(ctx context.Context, slug string) (PageView, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !domain.ValidSlug(slug) {
		return PageView{}, domain.ErrNotFound
	}
	key := cachePrefixPages + slug
	var cached PageView
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}
	page, err := s.pages.GetBySlug(ctx, slug)
	if err != nil {
		return PageView{}, err
	}
	view := toPageView(page)
	s.writeCache(ctx, key, view)
	return view, nil
}

func (s *Service) ListPages(ctx context.Context, actor Actor) ([]PageView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	pages, err := s.pages.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PageView, 0, len(pages))
	for _, p := range pages {
		out = append(out, toPageView(p))
	}
	return out, nil
}

func toPageView(p domain.Page) PageView {
	return PageView{Slug: p.Slug, Title: p.Title, Content: p.Content, UpdatedAt: p.UpdatedAt}
}

// CreateTransparencyDocument publishes a report. When MediaID is set and
// FileURL is empty, the media file URL is used.
func (s *Service) CreateTransparencyDocument(ctx context.Context, actor Actor, in TransparencyInput) (TransparencyView, error) {
	if err := requireActor(actor); err != nil {
		return TransparencyView{}, err
	}
	now := s.nowFn()
	doc := domain.TransparencyDocument{
		DocumentID:  uuid.New(),
		Title:       strings.TrimSpace(in.Title),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		Year:        in.Year,
		FileURL:     strings.TrimSpace(in.FileURL),
		MediaID:     in.MediaID,
		PublishedAt: now,
		CreatedAt:   now,
	}
	if in.PublishedAt != nil {
		doc.PublishedAt = in.PublishedAt.UTC()
	}
	if doc.MediaID != nil && doc.FileURL == "" {
		media, err := s.media.GetByID(ctx, *doc.MediaID)
		if err != nil {
			return TransparencyView{}, fmt.Errorf("%w: media_id does not exist", domain.ErrInvalidInput)
		}
		doc.FileURL = media.URL
	}
	if doc.Year == 0 {
		doc.Year = doc.PublishedAt.Year()
	}
	if err := domain.ValidateTransparencyDocument(doc); err != nil {
		return TransparencyView{}, err
	}
	if err := s.transparency.Create(ctx, doc); err != nil {
		return TransparencyView{}, err
	}
	s.invalidateCache(ctx, cachePrefixTransparency)
	return toTransparencyView(doc), nil
}

func (s *Service) DeleteTransparencyDocument(ctx context.Context, actor Actor, documentID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := s.transparency.Delete(ctx, documentID); err != nil {
		return err
	}
	s.invalidateCache(ctx, cachePrefixTransparency)
	return nil
}

func (s *Service) ListTransparencyDocuments(ctx context.Context, year int, category string) ([]TransparencyView, error) {
	filter := ports.TransparencyFilter{Year: year, Category: strings.ToLower(strings.TrimSpace(category))}
	key := fmt.Sprintf("%slist:%d:%s", cachePrefixTransparency, filter.Year, filter.Category)
	var cached []TransparencyView
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}
	docs, err := s.transparency.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]TransparencyView, 0, len(docs))
	for _, d := range docs {
		out = append(out, toTransparencyView(d))
	}
	s.writeCache(ctx, key, out)
	return out, nil
}

func (s *Service) ListTransparencyYears(ctx context.Context) ([]int, error) {
	years, err := s.transparency.Years(ctx)
	if err != nil {
		return nil, err
	}
	if years == nil {
		years = []int{}
	}
	return years, nil
}

func toTransparencyView(d domain.TransparencyDocument) TransparencyView {
	return TransparencyView{
		DocumentID:  d.DocumentID,
		Title:       d.Title,
		Category:    d.Category,
		Year:        d.Year,
		FileURL:     d.FileURL,
		PublishedAt: d.PublishedAt,
	}
}
