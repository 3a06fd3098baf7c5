package repository

import (
	"context"

	"certgo_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) Find(ctx context.Context, userID, contentID string) (*model.UserLearningProgress, error) {
	var progress model.UserLearningProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		First(&progress).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &progress, nil
}

func (r *ProgressRepository) Save(ctx context.Context, progress *model.UserLearningProgress) error {
	return r.DB.WithContext(ctx).Save(progress).Error
}

func (r *ProgressRepository) IncrementSummaryCount(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Model(&model.UserLearningProgress{}).
		Where("id = ?", id).
		Update("summary_count", gorm.Expr("summary_count + ?", 1)).
		Error
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.UserLearningProgress, error) {
	var progresses []model.UserLearningProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "last_viewed_at"}, Desc: true}).
		Scopes(paginate(offset, limit)).
		Find(&progresses).Error
	return progresses, err
}
