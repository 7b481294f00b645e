package postgres

import (
	"context"

	"github.com/prof-ramos/asof-site/internal/domain"
	"gorm.io/gorm"
)

type loginAttemptRepository struct {
	db *gorm.DB
}

func (r *loginAttemptRepository) Insert(ctx context.Context, attempt domain.LoginAttempt) error {
	rec := loginAttemptModel{
		UserID:        attempt.UserID,
		Email:         attempt.Email,
		AttemptAt:     attempt.AttemptAt,
		IPAddress:     nullableString(attempt.IPAddress),
		UserAgent:     attempt.UserAgent,
		Status:        attempt.Status,
		FailureReason: attempt.FailureReason,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}
