package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/domain"
)

const excerptLength = 200

// CreatePost stores a new post. Content is sanitized and the slug is derived
// from the title unless given.
func (s *Service) CreatePost(ctx context.Context, actor Actor, in PostInput) (PostView, error) {
	if err := requireActor(actor); err != nil {
		return PostView{}, err
	}
	status, err := domain.ParsePostStatus(in.Status)
	if err != nil {
		return PostView{}, err
	}
	now := s.nowFn()
	post := domain.Post{
		PostID:    uuid.New(),
		AuthorID:  actor.UserID,
		Status:    domain.PostStatusDraft,
		CreatedAt: now,
	}
	s.applyPostInput(&post, in)

	slug, err := s.resolvePostSlug(ctx, in.Slug, post.Title, nil)
	if err != nil {
		return PostView{}, err
	}
	post.Slug = slug
	if err := post.ApplyStatus(status, in.ScheduledFor, now); err != nil {
		return PostView{}, err
	}
	if err := domain.ValidatePost(post); err != nil {
		return PostView{}, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return PostView{}, err
	}
	s.afterPostWrite(ctx, post, false)
	return toPostView(post, true), nil
}

// UpdatePost replaces the editable fields. An empty Status keeps the current one.
func (s *Service) UpdatePost(ctx context.Context, actor Actor, postID uuid.UUID, in PostInput) (PostView, error) {
	if err := requireActor(actor); err != nil {
		return PostView{}, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return PostView{}, err
	}
	wasPublished := post.Status == domain.PostStatusPublished
	now := s.nowFn()
	s.applyPostInput(&post, in)

	if strings.TrimSpace(in.Slug) != "" && domain.Slugify(in.Slug) != post.Slug {
		slug, err := s.resolvePostSlug(ctx, in.Slug, post.Title, &post.PostID)
		if err != nil {
			return PostView{}, err
		}
		post.Slug = slug
	}
	if strings.TrimSpace(in.Status) != "" {
		status, err := domain.ParsePostStatus(in.Status)
		if err != nil {
			return PostView{}, err
		}
		if err := post.ApplyStatus(status, in.ScheduledFor, now); err != nil {
			return PostView{}, err
		}
	}
	post.UpdatedAt = now
	if err := domain.ValidatePost(post); err != nil {
		return PostView{}, err
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return PostView{}, err
	}
	s.afterPostWrite(ctx, post, wasPublished)
	return toPostView(post, true), nil
}

// SetPostStatus moves a post through draft, review, scheduled and published.
func (s *Service) SetPostStatus(ctx context.Context, actor Actor, postID uuid.UUID, req StatusChangeRequest) (PostView, error) {
	if err := requireActor(actor); err != nil {
		return PostView{}, err
	}
	if strings.TrimSpace(req.Status) == "" {
		return PostView{}, fmt.Errorf("%w: status is required", domain.ErrInvalidInput)
	}
	status, err := domain.ParsePostStatus(req.Status)
	if err != nil {
		return PostView{}, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return PostView{}, err
	}
	wasPublished := post.Status == domain.PostStatusPublished
	if err := post.ApplyStatus(status, req.ScheduledFor, s.nowFn()); err != nil {
		return PostView{}, err
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return PostView{}, err
	}
	s.afterPostWrite(ctx, post, wasPublished)
	return toPostView(post, true), nil
}

func (s *Service) DeletePost(ctx context.Context, actor Actor, postID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}
	s.invalidateCache(ctx, cachePrefixPosts)
	return nil
}

func (s *Service) GetPost(ctx context.Context, actor Actor, postID uuid.UUID) (PostView, error) {
	if err := requireActor(actor); err != nil {
		return PostView{}, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return PostView{}, err
	}
	return toPostView(post, true), nil
}

// ListPosts is the backoffice listing; every status is visible.
func (s *Service) ListPosts(ctx context.Context, actor Actor, q PostListQuery) (Page[PostView], error) {
	if err := requireActor(actor); err != nil {
		return Page[PostView]{}, err
	}
	filter := domain.PostFilter{
		Category: q.Category,
		Query:    q.Query,
		Featured: q.Featured,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if strings.TrimSpace(q.Status) != "" {
		status, err := domain.ParsePostStatus(q.Status)
		if err != nil {
			return Page[PostView]{}, err
		}
		filter.Status = status
	}
	return s.listPosts(ctx, filter.Normalize())
}

// ListPublishedPosts returns what the public news page shows.
func (s *Service) ListPublishedPosts(ctx context.Context, q PostListQuery) (Page[PostView], error) {
	now := s.nowFn()
	filter := domain.PostFilter{
		Status:          domain.PostStatusPublished,
		Category:        q.Category,
		Query:           q.Query,
		Featured:        q.Featured,
		Page:            q.Page,
		PageSize:        q.PageSize,
		PublishedBefore: &now,
	}.Normalize()

	featured := "any"
	if filter.Featured != nil {
		featured = fmt.Sprintf("%t", *filter.Featured)
	}
	key := fmt.Sprintf("%slist:%s:%s:%s:%d:%d", cachePrefixPosts, filter.Category, strings.ToLower(filter.Query), featured, filter.Page, filter.PageSize)
	var cached Page[PostView]
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}
	page, err := s.listPosts(ctx, filter)
	if err != nil {
		return Page[PostView]{}, err
	}
	s.writeCache(ctx, key, page)
	return page, nil
}

func (s *Service) listPosts(ctx context.Context, filter domain.PostFilter) (Page[PostView], error) {
	posts, total, err := s.posts.List(ctx, filter)
	if err != nil {
		return Page[PostView]{}, err
	}
	items := make([]PostView, 0, len(posts))
	for _, p := range posts {
		items = append(items, toPostView(p, false))
	}
	return newPage(items, filter.Page, filter.PageSize, total), nil
}

// GetPublishedPost returns a visible post by slug; hidden posts are not found.
func (s *Service) GetPublishedPost(ctx context.Context, slug string) (PostView, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !domain.ValidSlug(slug) {
		return PostView{}, domain.ErrNotFound
	}
	key := cachePrefixPosts + "slug:" + slug
	var cached PostView
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return PostView{}, err
	}
	if !post.IsVisible(s.nowFn()) {
		return PostView{}, domain.ErrNotFound
	}
	view := toPostView(post, true)
	s.writeCache(ctx, key, view)
	return view, nil
}

// ListCategories returns categories that have at least one visible post.
func (s *Service) ListCategories(ctx context.Context) ([]CategoryView, error) {
	key := cachePrefixPosts + "categories"
	var cached []CategoryView
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}
	rows, err := s.posts.ListCategories(ctx, s.nowFn())
	if err != nil {
		return nil, err
	}
	out := make([]CategoryView, 0, len(rows))
	for _, r := range rows {
		out = append(out, CategoryView{Category: r.Category, Posts: r.Posts})
	}
	s.writeCache(ctx, key, out)
	return out, nil
}

// PublishDuePosts publishes scheduled posts whose date has passed. It returns
// how many were published; a failing post is logged and skipped.
func (s *Service) PublishDuePosts(ctx context.Context) (int, error) {
	now := s.nowFn()
	due, err := s.posts.ListDue(ctx, now, s.cfg.DuePostsBatch)
	if err != nil {
		return 0, err
	}
	published := 0
	for _, post := range due {
		if !post.IsDue(now) {
			continue
		}
		scheduled := post.ScheduledFor
		if err := post.ApplyStatus(domain.PostStatusPublished, nil, now); err != nil {
			s.logWarn(ctx, "publish_due_posts", "apply status failed", err, "post_id", post.PostID)
			continue
		}
		// Publication date is the scheduled date, not the tick that noticed it.
		post.PublishedAt = scheduled
		if err := s.posts.Update(ctx, post); err != nil {
			s.logWarn(ctx, "publish_due_posts", "persist published post failed", err, "post_id", post.PostID)
			continue
		}
		s.enqueuePostPublished(ctx, post)
		published++
	}
	if published > 0 {
		s.invalidateCache(ctx, cachePrefixPosts)
		s.logInfo(ctx, "publish_due_posts", "scheduled posts published", "count", published)
	}
	return published, nil
}

func (s *Service) applyPostInput(post *domain.Post, in PostInput) {
	post.Title = strings.TrimSpace(in.Title)
	content := in.Content
	if s.sanitizer != nil {
		content = s.sanitizer.Sanitize(content)
	}
	post.Content = strings.TrimSpace(content)
	post.Excerpt = strings.TrimSpace(in.Excerpt)
	if s.sanitizer != nil && post.Excerpt != "" {
		post.Excerpt = s.sanitizer.PlainText(post.Excerpt)
	}
	if post.Excerpt == "" {
		text := post.Content
		if s.sanitizer != nil {
			text = s.sanitizer.PlainText(text)
		}
		post.Excerpt = truncateRunes(text, excerptLength)
	}
	post.CoverImageURL = strings.TrimSpace(in.CoverImageURL)
	post.Category = strings.ToLower(strings.TrimSpace(in.Category))
	post.Tags = domain.NormalizeTags(in.Tags)
	post.Featured = in.Featured
}

func (s *Service) resolvePostSlug(ctx context.Context, explicit, title string, exclude *uuid.UUID) (string, error) {
	base := domain.Slugify(explicit)
	if base == "" {
		base = domain.Slugify(title)
	}
	return uniqueSlug(ctx, base, func(ctx context.Context, slug string) (bool, error) {
		return s.posts.SlugExists(ctx, slug, exclude)
	})
}

func (s *Service) afterPostWrite(ctx context.Context, post domain.Post, wasPublished bool) {
	if post.Status == domain.PostStatusPublished && !wasPublished {
		s.enqueuePostPublished(ctx, post)
	}
	s.invalidateCache(ctx, cachePrefixPosts)
}

func (s *Service) enqueuePostPublished(ctx context.Context, post domain.Post) {
	s.enqueueEvent(ctx, EventTypePostPublished, post.PostID.String(), map[string]any{
		"post_id":      post.PostID,
		"slug":         post.Slug,
		"title":        post.Title,
		"category":     post.Category,
		"published_at": post.PublishedAt,
	})
}

func toPostView(p domain.Post, withContent bool) PostView {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	view := PostView{
		PostID:        p.PostID,
		Title:         p.Title,
		Slug:          p.Slug,
		Excerpt:       p.Excerpt,
		CoverImageURL: p.CoverImageURL,
		Category:      p.Category,
		Tags:          tags,
		Status:        string(p.Status),
		Featured:      p.Featured,
		AuthorID:      p.AuthorID,
		PublishedAt:   p.PublishedAt,
		ScheduledFor:  p.ScheduledFor,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if withContent {
		view.Content = p.Content
	}
	return view
}
