package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/domain"
	"github.com/prof-ramos/asof-site/internal/ports"
	"gorm.io/gorm"
)

type postRepository struct {
	db *gorm.DB
}

func (r *postRepository) Create(ctx context.Context, post domain.Post) error {
	rec := toPostModel(post)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, post domain.Post) error {
	rec := toPostModel(post)
	res := r.db.WithContext(ctx).
		Model(&postModel{}).
		Where("post_id = ?", post.PostID).
		Select("*").
		Omit("post_id", "author_id", "created_at").
		Updates(&rec)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return domain.ErrConflict
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, postID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&postModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, postID uuid.UUID) (domain.Post, error) {
	var rec postModel
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Take(&rec).Error; err != nil {
		return domain.Post{}, mapNotFound(err)
	}
	return toDomainPost(rec), nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	var rec postModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).Take(&rec).Error; err != nil {
		return domain.Post{}, mapNotFound(err)
	}
	return toDomainPost(rec), nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string, exclude *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&postModel{}).Where("slug = ?", slug)
	if exclude != nil {
		query = query.Where("post_id <> ?", *exclude)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns one page of posts. Published listings sort by publication
// date, backoffice listings by last update.
func (r *postRepository) List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&postModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Featured != nil {
		query = query.Where("featured = ?", *filter.Featured)
	}
	if filter.PublishedBefore != nil {
		query = query.Where("published_at IS NOT NULL AND published_at <= ?", *filter.PublishedBefore)
	}
	if filter.Query != "" {
		like := "%" + escapeLike(filter.Query) + "%"
		query = query.Where("(title ILIKE ? OR excerpt ILIKE ?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := "updated_at DESC"
	if filter.Status == domain.PostStatusPublished {
		order = "published_at DESC"
	}
	var rows []postModel
	if err := query.Order(order).Limit(filter.PageSize).Offset(filter.Offset()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Post, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainPost(row))
	}
	return out, total, nil
}

func (r *postRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Post, error) {
	var rows []postModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.PostStatusScheduled)).
		Where("scheduled_for <= ?", now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Post, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainPost(row))
	}
	return out, nil
}

func (r *postRepository) ListCategories(ctx context.Context, publishedBefore time.Time) ([]ports.CategoryCount, error) {
	var rows []ports.CategoryCount
	err := r.db.WithContext(ctx).
		Model(&postModel{}).
		Select("category, COUNT(*) AS posts").
		Where("status = ?", string(domain.PostStatusPublished)).
		Where("published_at <= ?", publishedBefore).
		Where("category <> ''").
		Group("category").
		Order("category ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
