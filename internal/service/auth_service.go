package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"certgo_backend/internal/config"
	"certgo_backend/internal/model"
	"certgo_backend/internal/repository"
	"certgo_backend/internal/util"
	"certgo_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthService struct {
	DB          *gorm.DB
	UserRepo    *repository.UserRepository
	HistoryRepo *repository.LoginHistoryRepository
	Cfg         *config.Config
}

func NewAuthService(db *gorm.DB, userRepo *repository.UserRepository, historyRepo *repository.LoginHistoryRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		DB:          db,
		UserRepo:    userRepo,
		HistoryRepo: historyRepo,
		Cfg:         cfg,
	}
}

// LoginMeta 登录请求的来源信息，写入登录历史
type LoginMeta struct {
	IPAddress  string
	DeviceInfo string
	Location   string
}

// Register 创建账号；邮箱已存在时返回 ErrDuplicateEmail 且不写入任何行
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	email = strings.TrimSpace(email)

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	role := model.Learner
	if s.Cfg.Auth.IsAdminEmail(email) {
		role = model.Admin
	}

	user := &model.User{
		Email:              email,
		PasswordHash:       hash,
		Name:               name,
		Language:           "ko",
		Theme:              "dark",
		EmailNotifications: true,
		PushNotifications:  true,
		Role:               role,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		exists, err := users.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return util.ErrDuplicateEmail
		}
		if err := users.Create(ctx, user); err != nil {
			// 并发注册时由唯一索引兜底
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrDuplicateEmail
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Authenticate 邮箱不存在或密码错误均返回 nil, nil，不区分原因
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.UserRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, util.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !util.VerifyPassword(password, user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}

// Login 校验凭据、记录登录历史并签发令牌
func (s *AuthService) Login(ctx context.Context, email, password string, meta LoginMeta) (string, *model.User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, util.ErrInvalidCredentials
	}

	entry := &model.LoginHistory{
		UserID:     user.ID,
		LoginTime:  time.Now(),
		IPAddress:  util.EmptyToNil(meta.IPAddress),
		DeviceInfo: util.EmptyToNil(truncate(meta.DeviceInfo, 255)),
		Location:   util.EmptyToNil(meta.Location),
	}
	if err := s.HistoryRepo.Append(ctx, entry); err != nil {
		return "", nil, fmt.Errorf("append login history: %w", err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) IssueToken(user *model.User) (string, error) {
	return util.GenerateJWT(user.Email, user.Role, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

// ResolveToken 令牌无效返回 ErrUnauthorized，用户不存在返回 ErrNotFound
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	email, err := util.ValidateToken(token, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUnauthorized, err)
	}
	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
