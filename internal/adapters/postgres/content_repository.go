package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/domain"
	"github.com/prof-ramos/asof-site/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type eventRepository struct {
	db *gorm.DB
}

func (r *eventRepository) Create(ctx context.Context, event domain.Event) error {
	rec := toEventModel(event)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *eventRepository) Update(ctx context.Context, event domain.Event) error {
	rec := toEventModel(event)
	res := r.db.WithContext(ctx).
		Model(&eventModel{}).
		Where("event_id = ?", event.EventID).
		Select("*").
		Omit("event_id", "created_at").
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

func (r *eventRepository) Delete(ctx context.Context, eventID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&eventModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (domain.Event, error) {
	var rec eventModel
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Take(&rec).Error; err != nil {
		return domain.Event{}, mapNotFound(err)
	}
	return toDomainEvent(rec), nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (domain.Event, error) {
	var rec eventModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).Take(&rec).Error; err != nil {
		return domain.Event{}, mapNotFound(err)
	}
	return toDomainEvent(rec), nil
}

func (r *eventRepository) SlugExists(ctx context.Context, slug string, exclude *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&eventModel{}).Where("slug = ?", slug)
	if exclude != nil {
		query = query.Where("event_id <> ?", *exclude)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *eventRepository) List(ctx context.Context, window domain.EventWindow, now time.Time, onlyPublished bool, limit, offset int) ([]domain.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&eventModel{})
	if onlyPublished {
		query = query.Where("published = ?", true)
	}
	order := "starts_at DESC"
	switch window {
	case domain.EventWindowUpcoming:
		query = query.Where("starts_at >= ?", now)
		order = "starts_at ASC"
	case domain.EventWindowPast:
		query = query.Where("starts_at < ?", now)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []eventModel
	if err := query.Order(order).Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainEvent(row))
	}
	return out, total, nil
}

type pageRepository struct {
	db *gorm.DB
}

func (r *pageRepository) Upsert(ctx context.Context, page domain.Page) error {
	rec := pageModel{
		Slug:      page.Slug,
		Title:     page.Title,
		Content:   page.Content,
		UpdatedAt: page.UpdatedAt,
		UpdatedBy: page.UpdatedBy,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "content", "updated_at", "updated_by"}),
		}).
		Create(&rec).Error
}

func (r *pageRepository) GetBySlug(ctx context.Context, slug string) (domain.Page, error) {
	var rec pageModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).Take(&rec).Error; err != nil {
		return domain.Page{}, mapNotFound(err)
	}
	return toDomainPage(rec), nil
}

func (r *pageRepository) List(ctx context.Context) ([]domain.Page, error) {
	var rows []pageModel
	if err := r.db.WithContext(ctx).Order("slug ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Page, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainPage(row))
	}
	return out, nil
}

type transparencyRepository struct {
	db *gorm.DB
}

func (r *transparencyRepository) Create(ctx context.Context, doc domain.TransparencyDocument) error {
	rec := transparencyModel{
		DocumentID:  doc.DocumentID,
		Title:       doc.Title,
		Category:    doc.Category,
		Year:        doc.Year,
		FileURL:     doc.FileURL,
		MediaID:     doc.MediaID,
		PublishedAt: doc.PublishedAt,
		CreatedAt:   doc.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *transparencyRepository) Delete(ctx context.Context, documentID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&transparencyModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *transparencyRepository) List(ctx context.Context, filter ports.TransparencyFilter) ([]domain.TransparencyDocument, error) {
	query := r.db.WithContext(ctx).Model(&transparencyModel{})
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	var rows []transparencyModel
	if err := query.Order("year DESC, published_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.TransparencyDocument, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainTransparency(row))
	}
	return out, nil
}

func (r *transparencyRepository) Years(ctx context.Context) ([]int, error) {
	var years []int
	err := r.db.WithContext(ctx).
		Model(&transparencyModel{}).
		Distinct("year").
		Order("year DESC").
		Pluck("year", &years).Error
	return years, err
}
