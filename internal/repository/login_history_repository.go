package repository

import (
	"context"

	"certgo_backend/internal/model"

	"gorm.io/gorm"
)

type LoginHistoryRepository struct {
	DB *gorm.DB
}

func NewLoginHistoryRepository(db *gorm.DB) *LoginHistoryRepository {
	return &LoginHistoryRepository{DB: db}
}

func (r *LoginHistoryRepository) WithTx(tx *gorm.DB) *LoginHistoryRepository {
	return &LoginHistoryRepository{DB: tx}
}

// Append 只追加，不提供修改接口
func (r *LoginHistoryRepository) Append(ctx context.Context, entry *model.LoginHistory) error {
	return r.DB.WithContext(ctx).Create(entry).Error
}

func (r *LoginHistoryRepository) FindByUser(ctx context.Context, userID string, offset, limit int) ([]model.LoginHistory, error) {
	var entries []model.LoginHistory
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("login_time DESC").
		Scopes(paginate(offset, limit)).
		Find(&entries).Error
	return entries, err
}
