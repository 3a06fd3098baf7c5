package service

import (
	"context"
	"fmt"

	"certgo_backend/internal/model"
	"certgo_backend/internal/repository"
	"certgo_backend/internal/util"
	"certgo_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProfileUpdate 为 nil 的字段保持不变
// swagger:model ProfileUpdate
type ProfileUpdate struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Language *string `json:"language"`
	Theme    *string `json:"theme"`
}

// swagger:model NotificationUpdate
type NotificationUpdate struct {
	EmailNotifications *bool `json:"email_notifications"`
	PushNotifications  *bool `json:"push_notifications"`
	MarketingEmails    *bool `json:"marketing_emails"`
}

// UserService 处理用户相关的业务逻辑
type UserService struct {
	DB          *gorm.DB
	UserRepo    *repository.UserRepository
	HistoryRepo *repository.LoginHistoryRepository
}

func NewUserService(db *gorm.DB, userRepo *repository.UserRepository, historyRepo *repository.LoginHistoryRepository) *UserService {
	return &UserService{
		DB:          db,
		UserRepo:    userRepo,
		HistoryRepo: historyRepo,
	}
}

// UpdateProfile 只写入非 nil 字段，重复应用同样的值结果不变
func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, upd ProfileUpdate) (*model.User, error) {
	fields := map[string]interface{}{}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Bio != nil {
		fields["bio"] = *upd.Bio
	}
	if upd.Language != nil {
		fields["language"] = *upd.Language
	}
	if upd.Theme != nil {
		fields["theme"] = *upd.Theme
	}
	return s.applyUpdates(ctx, user, fields)
}

func (s *UserService) UpdateNotificationPrefs(ctx context.Context, user *model.User, upd NotificationUpdate) (*model.User, error) {
	fields := map[string]interface{}{}
	if upd.EmailNotifications != nil {
		fields["email_notifications"] = *upd.EmailNotifications
	}
	if upd.PushNotifications != nil {
		fields["push_notifications"] = *upd.PushNotifications
	}
	if upd.MarketingEmails != nil {
		fields["marketing_emails"] = *upd.MarketingEmails
	}
	return s.applyUpdates(ctx, user, fields)
}

func (s *UserService) applyUpdates(ctx context.Context, user *model.User, fields map[string]interface{}) (*model.User, error) {
	if err := s.UserRepo.Updates(ctx, user, fields); err != nil {
		return nil, err
	}
	return s.UserRepo.FindByID(ctx, user.ID)
}

// ChangePassword 先校验当前密码，再校验两次输入一致
func (s *UserService) ChangePassword(ctx context.Context, user *model.User, current, newPassword, confirm string) error {
	if !util.VerifyPassword(current, user.PasswordHash) {
		return util.ErrWrongPassword
	}
	if newPassword != confirm {
		return util.ErrPasswordMismatch
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.UserRepo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

// Delete 不可恢复：同一事务内删除尝试、作答、进度、订阅、登录历史与用户本身
func (s *UserService) Delete(ctx context.Context, user *model.User) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.UserRepo.WithTx(tx).DeleteCascade(ctx, user.ID)
	})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", user.ID, err)
	}
	logger.Log.Info("user deleted", zap.String("user_id", user.ID))
	return nil
}

func (s *UserService) LoginHistory(ctx context.Context, user *model.User, offset, limit int) ([]model.LoginHistory, error) {
	return s.HistoryRepo.FindByUser(ctx, user.ID, offset, limit)
}
