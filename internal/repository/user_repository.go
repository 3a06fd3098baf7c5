package repository

import (
	"context"
	"errors"

	"certgo_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// Updates 只写入给定列
func (r *UserRepository) Updates(ctx context.Context, user *model.User, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(user).Updates(fields).Error
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash).
		Error
}

// DeleteCascade 删除用户及其全部从属数据，需在事务中调用
func (r *UserRepository) DeleteCascade(ctx context.Context, userID string) error {
	db := r.DB.WithContext(ctx)

	attemptIDs := db.Model(&model.UserQuizAttempt{}).Select("id").Where("user_id = ?", userID)
	if err := db.Where("attempt_id IN (?)", attemptIDs).Delete(&model.UserAnswer{}).Error; err != nil {
		return err
	}

	for _, m := range []interface{}{
		&model.UserQuizAttempt{},
		&model.UserLearningProgress{},
		&model.UserSubscription{},
		&model.LoginHistory{},
	} {
		if err := db.Where("user_id = ?", userID).Delete(m).Error; err != nil {
			return err
		}
	}

	res := db.Where("id = ?", userID).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("user already deleted")
	}
	return nil
}
