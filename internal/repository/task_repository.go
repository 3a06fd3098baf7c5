package repository

import (
	"context"
	"time"

	"certgo_backend/internal/model"

	"gorm.io/gorm"
)

type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: tx}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.ProcessingTask) error {
	return r.DB.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.ProcessingTask, error) {
	var task model.ProcessingTask
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

// FindPending 最早的待投递记录
func (r *TaskRepository) FindPending(ctx context.Context, limit int) ([]model.ProcessingTask, error) {
	var tasks []model.ProcessingTask
	err := r.DB.WithContext(ctx).
		Where("status = ?", model.TaskPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) MarkDispatched(ctx context.Context, id, handle string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.ProcessingTask{}).
		Where("id = ? AND status = ?", id, model.TaskPending).
		Updates(map[string]interface{}{
			"status":        model.TaskDispatched,
			"handle":        handle,
			"dispatched_at": at,
			"last_error":    nil,
		}).Error
}

func (r *TaskRepository) RecordError(ctx context.Context, id, msg string) error {
	return r.DB.WithContext(ctx).Model(&model.ProcessingTask{}).
		Where("id = ?", id).
		Update("last_error", msg).Error
}

func (r *TaskRepository) ListByContent(ctx context.Context, contentID string) ([]model.ProcessingTask, error) {
	var tasks []model.ProcessingTask
	err := r.DB.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) DeleteByContent(ctx context.Context, contentID string) error {
	return r.DB.WithContext(ctx).Where("content_id = ?", contentID).Delete(&model.ProcessingTask{}).Error
}
