package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"certgo_backend/internal/model"
	"certgo_backend/internal/repository"
	"certgo_backend/pkg/logger"
	"certgo_backend/pkg/monitoring"
	"certgo_backend/pkg/queue"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContentTaskPayload process_content_task 的载荷
type ContentTaskPayload struct {
	ContentID string `json:"content_id"`
}

// QuizTaskPayload generate_quizzes_task 的载荷
type QuizTaskPayload struct {
	ContentID  string               `json:"content_id"`
	Difficulty model.QuizDifficulty `json:"difficulty"`
	Count      int                  `json:"count"`
}

// TaskService 发件箱：业务事务内记录任务，relay 定时投递到 broker
type TaskService struct {
	DB        *gorm.DB
	TaskRepo  *repository.TaskRepository
	Broker    queue.Broker
	BatchSize int
}

func NewTaskService(db *gorm.DB, taskRepo *repository.TaskRepository, broker queue.Broker, batchSize int) *TaskService {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &TaskService{
		DB:        db,
		TaskRepo:  taskRepo,
		Broker:    broker,
		BatchSize: batchSize,
	}
}

// Record 在调用方事务 tx 中写入待投递任务
func (s *TaskService) Record(ctx context.Context, tx *gorm.DB, name, contentID string, payload interface{}) (*model.ProcessingTask, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", name, err)
	}
	task := &model.ProcessingTask{
		TaskName:  name,
		ContentID: contentID,
		Payload:   datatypes.JSON(raw),
		Status:    model.TaskPending,
	}
	if err := s.TaskRepo.WithTx(tx).Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DispatchPending 投递一批待发送任务；broker 失败的记录保持 pending，下一轮重试
func (s *TaskService) DispatchPending(ctx context.Context) (int, error) {
	tasks, err := s.TaskRepo.FindPending(ctx, s.BatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, t := range tasks {
		handle, err := s.Broker.Enqueue(ctx, queue.Task{
			ID:        t.ID,
			Name:      t.TaskName,
			Payload:   json.RawMessage(t.Payload),
			CreatedAt: t.CreatedAt,
		})
		if err != nil {
			logger.Log.Warn("task dispatch failed",
				zap.String("task_id", t.ID),
				zap.String("task", t.TaskName),
				zap.Error(err),
			)
			if recErr := s.TaskRepo.RecordError(ctx, t.ID, err.Error()); recErr != nil {
				logger.Log.Error("record dispatch error", zap.String("task_id", t.ID), zap.Error(recErr))
			}
			continue
		}
		if err := s.TaskRepo.MarkDispatched(ctx, t.ID, handle, time.Now()); err != nil {
			logger.Log.Error("mark task dispatched", zap.String("task_id", t.ID), zap.Error(err))
			continue
		}
		monitoring.TasksEnqueued.WithLabelValues(t.TaskName).Inc()
		sent++
	}
	if sent > 0 {
		logger.Log.Debug("outbox relay", zap.Int("dispatched", sent), zap.Int("pending", len(tasks)))
	}
	return sent, nil
}

func (s *TaskService) ListForContent(ctx context.Context, contentID string) ([]model.ProcessingTask, error) {
	return s.TaskRepo.ListByContent(ctx, contentID)
}

// Schedule 把 relay 注册到 cron
func (s *TaskService) Schedule(c *cron.Cron, expr string) (cron.EntryID, error) {
	return c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.DispatchPending(ctx); err != nil {
			logger.Log.Error("outbox relay failed", zap.Error(err))
		}
	})
}
