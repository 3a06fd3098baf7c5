package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"

	"certgo_backend/internal/model"
	"certgo_backend/internal/repository"
	"certgo_backend/internal/util"
	"certgo_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentInput 创建学习内容的请求体；处理状态由服务端决定
// swagger:model ContentInput
type ContentInput struct {
	CertificateID   *string           `json:"certificate_id"`
	Type            model.ContentType `json:"type" binding:"required"`
	SourceURL       string            `json:"source_url" binding:"required"`
	Title           string            `json:"title" binding:"required"`
	Description     *string           `json:"description"`
	DurationMinutes *int              `json:"duration_minutes"`
}

// QuizGenerationRequest 生成测验任务的参数
// swagger:model QuizGenerationRequest
type QuizGenerationRequest struct {
	Difficulty model.QuizDifficulty `json:"difficulty"`
	Count      int                  `json:"count"`
}

const (
	defaultQuizCount = 5
	maxQuizCount     = 50
)

type ContentService struct {
	DB          *gorm.DB
	ContentRepo *repository.ContentRepository
	CertRepo    *repository.CertificateRepository
	Tasks       *TaskService
	Storage     *StorageService
}

func NewContentService(db *gorm.DB, contentRepo *repository.ContentRepository, certRepo *repository.CertificateRepository, tasks *TaskService, storage *StorageService) *ContentService {
	return &ContentService{
		DB:          db,
		ContentRepo: contentRepo,
		CertRepo:    certRepo,
		Tasks:       tasks,
		Storage:     storage,
	}
}

// validateSourceURL 只接受带主机名的 http/https 地址
func validateSourceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid source_url: %v", util.ErrValidation, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: source_url scheme must be http or https", util.ErrValidation)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: source_url has no host", util.ErrValidation)
	}
	return nil
}

// CreateContent 新内容总是 PENDING，处理任务与内容在同一事务中写入发件箱
func (s *ContentService) CreateContent(ctx context.Context, in ContentInput) (*model.LearningContent, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown content type %q", util.ErrValidation, in.Type)
	}
	sourceURL := strings.TrimSpace(in.SourceURL)
	if sourceURL == "" || strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: source_url and title are required", util.ErrValidation)
	}
	if err := validateSourceURL(sourceURL); err != nil {
		return nil, err
	}

	content := &model.LearningContent{
		CertificateID:    in.CertificateID,
		Type:             in.Type,
		SourceURL:        sourceURL,
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		DurationMinutes:  in.DurationMinutes,
		ProcessingStatus: model.StatusPending,
	}

	var task *model.ProcessingTask
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contents := s.ContentRepo.WithTx(tx)
		exists, err := contents.ExistsBySourceURL(ctx, sourceURL)
		if err != nil {
			return err
		}
		if exists {
			return util.ErrDuplicateSourceURL
		}
		if in.CertificateID != nil {
			ok, err := s.CertRepo.WithTx(tx).Exists(ctx, *in.CertificateID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("certificate %s: %w", *in.CertificateID, util.ErrNotFound)
			}
		}
		if err := contents.Create(ctx, content); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrDuplicateSourceURL
			}
			return err
		}

		task, err = s.Tasks.Record(ctx, tx, model.TaskProcessContent, content.ID, ContentTaskPayload{ContentID: content.ID})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("learning content created",
		zap.String("content_id", content.ID),
		zap.String("task_id", task.ID),
	)
	return content, nil
}

func (s *ContentService) GetContent(ctx context.Context, id string) (*model.LearningContent, error) {
	return s.ContentRepo.FindWithSections(ctx, id)
}

func (s *ContentService) ListContents(ctx context.Context, offset, limit int) ([]model.LearningContent, error) {
	return s.ContentRepo.List(ctx, offset, limit)
}

func (s *ContentService) ListContentByCertificate(ctx context.Context, certificateID string, offset, limit int) ([]model.LearningContent, error) {
	return s.ContentRepo.ListByCertificate(ctx, certificateID, offset, limit)
}

func (s *ContentService) ListSections(ctx context.Context, contentID string) ([]model.ContentSection, error) {
	if _, err := s.ContentRepo.FindByID(ctx, contentID); err != nil {
		return nil, err
	}
	return s.ContentRepo.FindSections(ctx, contentID)
}

// UpdateProcessingStatus 未知 id 返回 nil, nil；rawText 仅在非空时覆盖
func (s *ContentService) UpdateProcessingStatus(ctx context.Context, id string, status model.ProcessingStatus, rawText *string) (*model.LearningContent, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown processing status %q", util.ErrValidation, status)
	}

	var content *model.LearningContent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contents := s.ContentRepo.WithTx(tx)
		found, err := contents.FindByID(ctx, id)
		if errors.Is(err, util.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		fields := map[string]interface{}{"processing_status": status}
		if rawText != nil && *rawText != "" {
			fields["raw_text_content"] = *rawText
		}
		if err := contents.UpdateStatus(ctx, found, fields); err != nil {
			return err
		}
		found.ProcessingStatus = status
		if v, ok := fields["raw_text_content"]; ok {
			text := v.(string)
			found.RawTextContent = &text
		}
		content = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if content == nil {
		logger.Log.Warn("processing status update for unknown content", zap.String("content_id", id))
	}
	return content, nil
}

// ReplaceSections 以新的分段整体替换原有分段
func (s *ContentService) ReplaceSections(ctx context.Context, contentID string, sections []model.ContentSection) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contents := s.ContentRepo.WithTx(tx)
		if _, err := contents.FindByID(ctx, contentID); err != nil {
			return err
		}
		return contents.ReplaceSections(ctx, contentID, sections)
	})
}

// DeleteContent 删除内容以及其分段、进度和发件箱记录；原始素材在提交后清理
func (s *ContentService) DeleteContent(ctx context.Context, contentID string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contents := s.ContentRepo.WithTx(tx)
		if _, err := contents.FindByID(ctx, contentID); err != nil {
			return err
		}
		if err := s.Tasks.TaskRepo.WithTx(tx).DeleteByContent(ctx, contentID); err != nil {
			return err
		}
		return contents.Delete(ctx, contentID)
	})
	if err != nil {
		return err
	}
	if s.Storage != nil {
		if err := s.Storage.DeleteRaw(ctx, contentID); err != nil {
			logger.Log.Warn("delete raw source", zap.String("content_id", contentID), zap.Error(err))
		}
	}
	return nil
}

// OpenRawSource 打开 worker 归档的原始抓取内容
func (s *ContentService) OpenRawSource(ctx context.Context, contentID string) (io.ReadCloser, error) {
	content, err := s.ContentRepo.FindByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if s.Storage == nil || content.ProcessingStatus == model.StatusPending {
		return nil, fmt.Errorf("raw source for %s: %w", contentID, util.ErrNotFound)
	}
	rc, err := s.Storage.OpenRaw(ctx, contentID)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("raw source for %s: %w", contentID, util.ErrNotFound)
	}
	return rc, err
}

// RequestQuizGeneration 为已处理完成的内容记录生成测验任务
func (s *ContentService) RequestQuizGeneration(ctx context.Context, contentID string, req QuizGenerationRequest) (*model.ProcessingTask, error) {
	if req.Difficulty == "" {
		req.Difficulty = model.DifficultyNormal
	}
	if !req.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", util.ErrValidation, req.Difficulty)
	}
	if req.Count <= 0 {
		req.Count = defaultQuizCount
	}
	if req.Count > maxQuizCount {
		req.Count = maxQuizCount
	}

	var task *model.ProcessingTask
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		content, err := s.ContentRepo.WithTx(tx).FindByID(ctx, contentID)
		if err != nil {
			return err
		}
		if content.ProcessingStatus != model.StatusCompleted {
			return util.ErrContentNotReady
		}
		task, err = s.Tasks.Record(ctx, tx, model.TaskGenerateQuizzes, contentID, QuizTaskPayload{
			ContentID:  contentID,
			Difficulty: req.Difficulty,
			Count:      req.Count,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}
