package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"certgo_backend/internal/model"
	"certgo_backend/internal/repository"
	"certgo_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// swagger:model QuizInput
type QuizInput struct {
	ContentID        *string              `json:"content_id"`
	CertificateID    *string              `json:"certificate_id"`
	QuestionText     string               `json:"question_text" binding:"required"`
	Options          []model.QuizOption   `json:"options"`
	CorrectAnswerID  string               `json:"correct_answer_id" binding:"required"`
	ExplanationText  *string              `json:"explanation_text"`
	Difficulty       model.QuizDifficulty `json:"difficulty"`
	QuestionType     model.QuestionType   `json:"question_type"`
	RelatedMaterials json.RawMessage      `json:"related_materials" swaggertype:"object"`
}

type QuizService struct {
	DB          *gorm.DB
	QuizRepo    *repository.QuizRepository
	ContentRepo *repository.ContentRepository
	CertRepo    *repository.CertificateRepository
}

func NewQuizService(db *gorm.DB, quizRepo *repository.QuizRepository, contentRepo *repository.ContentRepository, certRepo *repository.CertificateRepository) *QuizService {
	return &QuizService{
		DB:          db,
		QuizRepo:    quizRepo,
		ContentRepo: contentRepo,
		CertRepo:    certRepo,
	}
}

func validateQuiz(q *model.Quiz) error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return fmt.Errorf("%w: question_text is required", util.ErrValidation)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", util.ErrValidation, q.Difficulty)
	}
	if !q.QuestionType.Valid() {
		return fmt.Errorf("%w: unknown question_type %q", util.ErrValidation, q.QuestionType)
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		if o.ID == "" {
			return fmt.Errorf("%w: option id is required", util.ErrValidation)
		}
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("%w: duplicate option id %q", util.ErrValidation, o.ID)
		}
		seen[o.ID] = struct{}{}
	}
	// 只有主观题可以没有选项
	if q.QuestionType == model.QuestionSubjective && len(q.Options) == 0 {
		return nil
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: %s question needs at least two options", util.ErrValidation, q.QuestionType)
	}
	if !q.HasOption(q.CorrectAnswerID) {
		return fmt.Errorf("%w: correct_answer_id %q is not one of the options", util.ErrValidation, q.CorrectAnswerID)
	}
	return nil
}

func (s *QuizService) CreateQuiz(ctx context.Context, in QuizInput) (*model.Quiz, error) {
	quiz := &model.Quiz{
		ContentID:       in.ContentID,
		CertificateID:   in.CertificateID,
		QuestionText:    in.QuestionText,
		Options:         datatypes.JSONSlice[model.QuizOption](in.Options),
		CorrectAnswerID: in.CorrectAnswerID,
		ExplanationText: in.ExplanationText,
		Difficulty:      in.Difficulty,
		QuestionType:    in.QuestionType,
	}
	if quiz.Difficulty == "" {
		quiz.Difficulty = model.DifficultyNormal
	}
	if quiz.QuestionType == "" {
		quiz.QuestionType = model.QuestionMultiple
	}
	if len(in.RelatedMaterials) > 0 {
		quiz.RelatedMaterials = datatypes.JSON(in.RelatedMaterials)
	}
	if err := validateQuiz(quiz); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.ContentID != nil {
			if _, err := s.ContentRepo.WithTx(tx).FindByID(ctx, *in.ContentID); err != nil {
				return fmt.Errorf("content %s: %w", *in.ContentID, err)
			}
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
		return s.QuizRepo.WithTx(tx).Create(ctx, quiz)
	})
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

// SaveGenerated 在同一事务中写入一批自动生成的测验
func (s *QuizService) SaveGenerated(ctx context.Context, quizzes []model.Quiz) error {
	for i := range quizzes {
		quizzes[i].GeneratedByAI = true
		if err := validateQuiz(&quizzes[i]); err != nil {
			return err
		}
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.QuizRepo.WithTx(tx).CreateBatch(ctx, quizzes)
	})
}

func (s *QuizService) GetQuiz(ctx context.Context, id string) (*model.Quiz, error) {
	return s.QuizRepo.FindByID(ctx, id)
}

func (s *QuizService) ListQuizzesByContent(ctx context.Context, contentID string, offset, limit int) ([]model.Quiz, error) {
	return s.QuizRepo.ListByContent(ctx, contentID, offset, limit)
}

func (s *QuizService) ListQuizzesByCertificate(ctx context.Context, certificateID string, offset, limit int) ([]model.Quiz, error) {
	return s.QuizRepo.ListByCertificate(ctx, certificateID, offset, limit)
}

func (s *QuizService) DeleteQuiz(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quizzes := s.QuizRepo.WithTx(tx)
		if _, err := quizzes.FindByID(ctx, id); err != nil {
			return err
		}
		return quizzes.Delete(ctx, id)
	})
}
