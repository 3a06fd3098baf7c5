package repository

import (
	"context"

	"certgo_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) WithTx(tx *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: tx}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *model.UserQuizAttempt) error {
	return r.DB.WithContext(ctx).Omit("Answers").Create(attempt).Error
}

// FindForUser 只返回属于该用户的记录
func (r *AttemptRepository) FindForUser(ctx context.Context, userID, attemptID string) (*model.UserQuizAttempt, error) {
	var attempt model.UserQuizAttempt
	err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", attemptID, userID).
		First(&attempt).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &attempt, nil
}

func (r *AttemptRepository) FindWithAnswers(ctx context.Context, userID, attemptID string) (*model.UserQuizAttempt, error) {
	var attempt model.UserQuizAttempt
	err := r.DB.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("submitted_at ASC")
		}).
		Where("id = ? AND user_id = ?", attemptID, userID).
		First(&attempt).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &attempt, nil
}

func (r *AttemptRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.UserQuizAttempt, error) {
	var attempts []model.UserQuizAttempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Scopes(paginate(offset, limit)).
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) Save(ctx context.Context, attempt *model.UserQuizAttempt) error {
	return r.DB.WithContext(ctx).Omit("Answers").Save(attempt).Error
}

// FindAnswer 同一次尝试中某题的作答，不存在时返回 ErrNotFound
func (r *AttemptRepository) FindAnswer(ctx context.Context, attemptID, quizID string) (*model.UserAnswer, error) {
	var answer model.UserAnswer
	err := r.DB.WithContext(ctx).
		Where("attempt_id = ? AND quiz_id = ?", attemptID, quizID).
		First(&answer).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &answer, nil
}

func (r *AttemptRepository) FindAnswerForUser(ctx context.Context, userID, answerID string) (*model.UserAnswer, error) {
	var answer model.UserAnswer
	err := r.DB.WithContext(ctx).
		Joins("JOIN user_quiz_attempts ON user_quiz_attempts.id = user_answers.attempt_id").
		Where("user_answers.id = ? AND user_quiz_attempts.user_id = ?", answerID, userID).
		First(&answer).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &answer, nil
}

func (r *AttemptRepository) SaveAnswer(ctx context.Context, answer *model.UserAnswer) error {
	return r.DB.WithContext(ctx).Save(answer).Error
}

func (r *AttemptRepository) CountAnswers(ctx context.Context, attemptID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.UserAnswer{}).
		Where("attempt_id = ?", attemptID).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) CountCorrect(ctx context.Context, attemptID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.UserAnswer{}).
		Where("attempt_id = ? AND is_correct = ?", attemptID, true).
		Count(&count).Error
	return count, err
}
