package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/domain"
	"gorm.io/gorm"
)

type mediaRepository struct {
	db *gorm.DB
}

func (r *mediaRepository) Create(ctx context.Context, media domain.MediaFile) error {
	rec := toMediaModel(media)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *mediaRepository) GetByID(ctx context.Context, mediaID uuid.UUID) (domain.MediaFile, error) {
	var rec mediaModel
	if err := r.db.WithContext(ctx).Where("media_id = ?", mediaID).Take(&rec).Error; err != nil {
		return domain.MediaFile{}, mapNotFound(err)
	}
	return toDomainMedia(rec), nil
}

func (r *mediaRepository) List(ctx context.Context, filter domain.MediaFilter) ([]domain.MediaFile, int64, error) {
	query := r.db.WithContext(ctx).Model(&mediaModel{})
	if filter.MIMEPrefix != "" {
		query = query.Where("mime_type LIKE ?", escapeLike(filter.MIMEPrefix)+"%")
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []mediaModel
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Order("created_at DESC").Limit(filter.PageSize).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.MediaFile, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainMedia(row))
	}
	return out, total, nil
}

func (r *mediaRepository) UpdateAlt(ctx context.Context, mediaID uuid.UUID, alt string) error {
	res := r.db.WithContext(ctx).
		Model(&mediaModel{}).
		Where("media_id = ?", mediaID).
		Update("alt_text", alt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *mediaRepository) Delete(ctx context.Context, mediaID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("media_id = ?", mediaID).Delete(&mediaModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
