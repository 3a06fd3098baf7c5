package repository

import (
	"context"

	"certgo_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) WithTx(tx *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: tx}
}

func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.DB.WithContext(ctx).Create(quiz).Error
}

func (r *QuizRepository) CreateBatch(ctx context.Context, quizzes []model.Quiz) error {
	if len(quizzes) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).CreateInBatches(quizzes, 50).Error
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&quiz).Error; err != nil {
		return nil, notFound(err)
	}
	return &quiz, nil
}

func (r *QuizRepository) ListByContent(ctx context.Context, contentID string, offset, limit int) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("created_at ASC").
		Scopes(paginate(offset, limit)).
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) ListByCertificate(ctx context.Context, certificateID string, offset, limit int) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.WithContext(ctx).
		Where("certificate_id = ?", certificateID).
		Order("created_at ASC").
		Scopes(paginate(offset, limit)).
		Find(&quizzes).Error
	return quizzes, err
}

// Delete 删除测验及引用它的作答
func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	db := r.DB.WithContext(ctx)
	if err := db.Where("quiz_id = ?", id).Delete(&model.UserAnswer{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Quiz{}).Error
}
