package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"certgo_backend/internal/config"
	"certgo_backend/internal/model"
	"certgo_backend/internal/service"
	"certgo_backend/internal/util"
	"certgo_backend/pkg/logger"
	"certgo_backend/pkg/queue"

	"go.uber.org/zap"
)

const sectionTitleChars = 60

// Processor 内容处理与测验生成的任务处理器
type Processor struct {
	Contents     *service.ContentService
	Quizzes      *service.QuizService
	Storage      *service.StorageService
	Client       *http.Client
	SectionChars int
	MaxBodyBytes int64
}

func NewProcessor(contents *service.ContentService, quizzes *service.QuizService, storage *service.StorageService, cfg *config.WorkerConfig) *Processor {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Processor{
		Contents:     contents,
		Quizzes:      quizzes,
		Storage:      storage,
		Client:       newFetchClient(timeout, cfg.AllowPrivateNetworks),
		SectionChars: cfg.SectionChars,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}
}

func (p *Processor) Register(w *Worker) {
	w.Register(model.TaskProcessContent, p.ProcessContent)
	w.Register(model.TaskGenerateQuizzes, p.GenerateQuizzes)
}

// ProcessContent PENDING → PROCESSING → COMPLETED；任何一步出错置为 FAILED
func (p *Processor) ProcessContent(ctx context.Context, task *queue.Task) error {
	var payload service.ContentTaskPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	content, err := p.Contents.UpdateProcessingStatus(ctx, payload.ContentID, model.StatusProcessing, nil)
	if err != nil {
		return err
	}
	if content == nil {
		// 内容已被删除
		return nil
	}

	text, err := p.extract(ctx, content)
	if err != nil {
		p.fail(ctx, content.ID, err)
		return err
	}

	chunks := SplitSections(text, p.SectionChars)
	sections := make([]model.ContentSection, 0, len(chunks))
	for _, chunk := range chunks {
		sections = append(sections, model.ContentSection{
			SectionTitle: util.EmptyToNil(sectionTitle(chunk, sectionTitleChars)),
			SectionText:  chunk,
		})
	}
	if err := p.Contents.ReplaceSections(ctx, content.ID, sections); err != nil {
		p.fail(ctx, content.ID, err)
		return err
	}

	if _, err := p.Contents.UpdateProcessingStatus(ctx, content.ID, model.StatusCompleted, &text); err != nil {
		p.fail(ctx, content.ID, err)
		return err
	}
	logger.Log.Info("content processed",
		zap.String("content_id", content.ID),
		zap.Int("sections", len(sections)),
	)
	return nil
}

func (p *Processor) extract(ctx context.Context, content *model.LearningContent) (string, error) {
	body, contentType, err := p.fetch(ctx, content.SourceURL)
	if err != nil {
		return "", err
	}
	if p.Storage != nil {
		location, err := p.Storage.ArchiveRaw(ctx, content.ID, body, contentType)
		if err != nil {
			return "", fmt.Errorf("archive source: %w", err)
		}
		logger.Log.Debug("raw source archived", zap.String("content_id", content.ID), zap.String("location", location))
	}
	text := ExtractText(contentType, body)
	if text == "" {
		return "", fmt.Errorf("no text extracted from %s", content.SourceURL)
	}
	return text, nil
}

func (p *Processor) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetch source: unexpected status %d", resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if p.MaxBodyBytes > 0 {
		r = io.LimitReader(resp.Body, p.MaxBodyBytes)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read source: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (p *Processor) fail(ctx context.Context, contentID string, cause error) {
	if _, err := p.Contents.UpdateProcessingStatus(ctx, contentID, model.StatusFailed, nil); err != nil {
		logger.Log.Error("mark content failed", zap.String("content_id", contentID), zap.Error(err))
	}
	logger.Log.Warn("content processing failed", zap.String("content_id", contentID), zap.Error(cause))
}

// GenerateQuizzes 只处理 COMPLETED 内容，错误仅记录日志
func (p *Processor) GenerateQuizzes(ctx context.Context, task *queue.Task) error {
	var payload service.QuizTaskPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	content, err := p.Contents.GetContent(ctx, payload.ContentID)
	if err != nil {
		return err
	}
	if content.ProcessingStatus != model.StatusCompleted {
		return util.ErrContentNotReady
	}

	quizzes := BuildClozeQuizzes(content, payload.Difficulty, payload.Count)
	if len(quizzes) == 0 {
		logger.Log.Warn("no quizzes could be generated", zap.String("content_id", content.ID))
		return nil
	}
	if err := p.Quizzes.SaveGenerated(ctx, quizzes); err != nil {
		return err
	}
	logger.Log.Info("quizzes generated", zap.String("content_id", content.ID), zap.Int("count", len(quizzes)))
	return nil
}
