package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"certgo_backend/internal/model"
	"certgo_backend/internal/repository"
	"certgo_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// swagger:model ProgressInput
type ProgressInput struct {
	ProgressPercentage int             `json:"progress_percentage"`
	ChatHistory        json.RawMessage `json:"chat_history" swaggertype:"object"`
}

type ProgressService struct {
	DB           *gorm.DB
	ProgressRepo *repository.ProgressRepository
	ContentRepo  *repository.ContentRepository
}

func NewProgressService(db *gorm.DB, progressRepo *repository.ProgressRepository, contentRepo *repository.ContentRepository) *ProgressService {
	return &ProgressService{
		DB:           db,
		ProgressRepo: progressRepo,
		ContentRepo:  contentRepo,
	}
}

// loadOrNew 必须在事务内调用
func (s *ProgressService) loadOrNew(ctx context.Context, tx *gorm.DB, userID, contentID string) (*model.UserLearningProgress, error) {
	if _, err := s.ContentRepo.WithTx(tx).FindByID(ctx, contentID); err != nil {
		return nil, err
	}
	progress, err := s.ProgressRepo.WithTx(tx).Find(ctx, userID, contentID)
	if errors.Is(err, util.ErrNotFound) {
		return &model.UserLearningProgress{UserID: userID, ContentID: contentID}, nil
	}
	return progress, err
}

// RecordProgress 按 (user, content) 写入或更新进度，百分比截断到 [0,100]
func (s *ProgressService) RecordProgress(ctx context.Context, user *model.User, contentID string, in ProgressInput) (*model.UserLearningProgress, error) {
	var progress *model.UserLearningProgress
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.loadOrNew(ctx, tx, user.ID, contentID)
		if err != nil {
			return err
		}
		p.ProgressPercentage = model.ClampPercentage(in.ProgressPercentage)
		p.LastViewedAt = time.Now()
		if len(in.ChatHistory) > 0 {
			p.ChatHistory = datatypes.JSON(in.ChatHistory)
		}
		if err := s.ProgressRepo.WithTx(tx).Save(ctx, p); err != nil {
			return err
		}
		progress = p
		return nil
	})
	return progress, err
}

func (s *ProgressService) IncrementSummaryCount(ctx context.Context, user *model.User, contentID string) (*model.UserLearningProgress, error) {
	var progress *model.UserLearningProgress
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.ProgressRepo.WithTx(tx)
		p, err := s.loadOrNew(ctx, tx, user.ID, contentID)
		if err != nil {
			return err
		}
		p.LastViewedAt = time.Now()
		if p.ID == "" {
			p.SummaryCount = 1
			if err := repo.Save(ctx, p); err != nil {
				return err
			}
			progress = p
			return nil
		}
		if err := repo.Save(ctx, p); err != nil {
			return err
		}
		if err := repo.IncrementSummaryCount(ctx, p.ID); err != nil {
			return err
		}
		progress, err = repo.Find(ctx, user.ID, contentID)
		return err
	})
	return progress, err
}

func (s *ProgressService) ListProgress(ctx context.Context, user *model.User, offset, limit int) ([]model.UserLearningProgress, error) {
	return s.ProgressRepo.ListByUser(ctx, user.ID, offset, limit)
}
