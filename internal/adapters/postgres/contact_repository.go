package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/domain"
	"gorm.io/gorm"
)

type contactRepository struct {
	db *gorm.DB
}

func (r *contactRepository) Create(ctx context.Context, msg domain.ContactMessage) error {
	rec := contactModel{
		MessageID: msg.MessageID,
		Name:      msg.Name,
		Email:     msg.Email,
		Phone:     msg.Phone,
		Subject:   msg.Subject,
		Message:   msg.Message,
		IPAddress: nullableString(msg.IPAddress),
		Status:    string(msg.Status),
		CreatedAt: msg.CreatedAt,
		UpdatedAt: msg.UpdatedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *contactRepository) GetByID(ctx context.Context, messageID uuid.UUID) (domain.ContactMessage, error) {
	var rec contactModel
	if err := r.db.WithContext(ctx).Where("message_id = ?", messageID).Take(&rec).Error; err != nil {
		return domain.ContactMessage{}, mapNotFound(err)
	}
	return toDomainContact(rec), nil
}

func (r *contactRepository) List(ctx context.Context, status domain.ContactStatus, limit, offset int) ([]domain.ContactMessage, int64, error) {
	query := r.db.WithContext(ctx).Model(&contactModel{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []contactModel
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.ContactMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainContact(row))
	}
	return out, total, nil
}

func (r *contactRepository) SetStatus(ctx context.Context, messageID uuid.UUID, status domain.ContactStatus, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&contactModel{}).
		Where("message_id = ?", messageID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
