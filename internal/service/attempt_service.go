package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"certgo_backend/internal/model"
	"certgo_backend/internal/repository"
	"certgo_backend/internal/util"
	"certgo_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// swagger:model AttemptInput
type AttemptInput struct {
	CertificateID  *string        `json:"certificate_id"`
	ExamType       model.ExamType `json:"exam_type" binding:"required"`
	TotalQuestions int            `json:"total_questions"`
}

// swagger:model AnswerInput
type AnswerInput struct {
	QuizID           string  `json:"quiz_id" binding:"required"`
	SelectedOptionID *string `json:"user_selected_option_id"`
	Bookmarked       bool    `json:"bookmarked"`
}

type AttemptService struct {
	DB          *gorm.DB
	AttemptRepo *repository.AttemptRepository
	QuizRepo    *repository.QuizRepository
	CertRepo    *repository.CertificateRepository
}

func NewAttemptService(db *gorm.DB, attemptRepo *repository.AttemptRepository, quizRepo *repository.QuizRepository, certRepo *repository.CertificateRepository) *AttemptService {
	return &AttemptService{
		DB:          db,
		AttemptRepo: attemptRepo,
		QuizRepo:    quizRepo,
		CertRepo:    certRepo,
	}
}

func (s *AttemptService) StartAttempt(ctx context.Context, user *model.User, in AttemptInput) (*model.UserQuizAttempt, error) {
	if !in.ExamType.Valid() {
		return nil, fmt.Errorf("%w: unknown exam_type %q", util.ErrValidation, in.ExamType)
	}
	if in.TotalQuestions < 0 {
		return nil, fmt.Errorf("%w: total_questions must not be negative", util.ErrValidation)
	}

	attempt := &model.UserQuizAttempt{
		UserID:         user.ID,
		CertificateID:  in.CertificateID,
		ExamType:       in.ExamType,
		StartTime:      time.Now(),
		TotalQuestions: in.TotalQuestions,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.CertificateID != nil {
			ok, err := s.CertRepo.WithTx(tx).Exists(ctx, *in.CertificateID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("certificate %s: %w", *in.CertificateID, util.ErrNotFound)
			}
		}
		return s.AttemptRepo.WithTx(tx).Create(ctx, attempt)
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

// SubmitAnswer 记录或覆盖某题的作答，正确性由服务端判定
func (s *AttemptService) SubmitAnswer(ctx context.Context, user *model.User, attemptID string, in AnswerInput) (*model.UserAnswer, error) {
	var answer *model.UserAnswer
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempts := s.AttemptRepo.WithTx(tx)
		attempt, err := attempts.FindForUser(ctx, user.ID, attemptID)
		if err != nil {
			return err
		}
		if attempt.Finished() {
			return util.ErrAttemptFinished
		}
		quiz, err := s.QuizRepo.WithTx(tx).FindByID(ctx, in.QuizID)
		if err != nil {
			return fmt.Errorf("quiz %s: %w", in.QuizID, err)
		}
		if in.SelectedOptionID != nil && len(quiz.Options) > 0 && !quiz.HasOption(*in.SelectedOptionID) {
			return fmt.Errorf("%w: option %q does not belong to quiz", util.ErrValidation, *in.SelectedOptionID)
		}

		answer, err = attempts.FindAnswer(ctx, attempt.ID, quiz.ID)
		if errors.Is(err, util.ErrNotFound) {
			// 新题目不能超过本次尝试的题量
			if attempt.TotalQuestions > 0 {
				answered, err := attempts.CountAnswers(ctx, attempt.ID)
				if err != nil {
					return err
				}
				if answered >= int64(attempt.TotalQuestions) {
					return fmt.Errorf("%w: attempt already has %d answers", util.ErrValidation, answered)
				}
			}
			answer = &model.UserAnswer{AttemptID: attempt.ID, QuizID: quiz.ID}
		} else if err != nil {
			return err
		}
		answer.UserSelectedOptionID = in.SelectedOptionID
		answer.IsCorrect = in.SelectedOptionID != nil && *in.SelectedOptionID == quiz.CorrectAnswerID
		answer.Bookmarked = in.Bookmarked
		answer.SubmittedAt = time.Now()
		return attempts.SaveAnswer(ctx, answer)
	})
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// Score 正确率百分比，四舍五入
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// FinishAttempt 结束尝试并计算得分；分母不小于已作答题数
func (s *AttemptService) FinishAttempt(ctx context.Context, user *model.User, attemptID string) (*model.UserQuizAttempt, error) {
	var attempt *model.UserQuizAttempt
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempts := s.AttemptRepo.WithTx(tx)
		found, err := attempts.FindWithAnswers(ctx, user.ID, attemptID)
		if err != nil {
			return err
		}
		if found.Finished() {
			return util.ErrAttemptFinished
		}
		correct, err := attempts.CountCorrect(ctx, found.ID)
		if err != nil {
			return err
		}

		end := time.Now()
		if end.Before(found.StartTime) {
			end = found.StartTime
		}
		taken := int(end.Sub(found.StartTime).Seconds())
		total := found.TotalQuestions
		if total < len(found.Answers) {
			total = len(found.Answers)
			found.TotalQuestions = total
		}
		correctCount := int(correct)
		score := Score(correctCount, total)

		found.EndTime = &end
		found.TimeTakenSeconds = &taken
		found.CorrectCount = &correctCount
		found.Score = &score
		if err := attempts.Save(ctx, found); err != nil {
			return err
		}
		attempt = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("attempt finished",
		zap.String("attempt_id", attempt.ID),
		zap.String("user_id", user.ID),
		zap.Int("score", *attempt.Score),
	)
	return attempt, nil
}

func (s *AttemptService) GetAttempt(ctx context.Context, user *model.User, attemptID string) (*model.UserQuizAttempt, error) {
	return s.AttemptRepo.FindWithAnswers(ctx, user.ID, attemptID)
}

func (s *AttemptService) ListAttempts(ctx context.Context, user *model.User, offset, limit int) ([]model.UserQuizAttempt, error) {
	return s.AttemptRepo.ListByUser(ctx, user.ID, offset, limit)
}

func (s *AttemptService) SetBookmark(ctx context.Context, user *model.User, answerID string, bookmarked bool) (*model.UserAnswer, error) {
	var answer *model.UserAnswer
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempts := s.AttemptRepo.WithTx(tx)
		found, err := attempts.FindAnswerForUser(ctx, user.ID, answerID)
		if err != nil {
			return err
		}
		found.Bookmarked = bookmarked
		if err := attempts.SaveAnswer(ctx, found); err != nil {
			return err
		}
		answer = found
		return nil
	})
	return answer, err
}
