package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"certgo_backend/internal/model"
	"certgo_backend/internal/repository"
	"certgo_backend/internal/util"
	"certgo_backend/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const trialPeriod = 14 * 24 * time.Hour

// swagger:model PlanInput
type PlanInput struct {
	Name                  string          `json:"name" binding:"required"`
	PricePerMonth         *float64        `json:"price_per_month"`
	Features              json.RawMessage `json:"features" swaggertype:"object"`
	FastTestLimit         *int            `json:"fast_test_limit"`
	SlowTestLimit         *int            `json:"slow_test_limit"`
	SummaryChatLimitType  *string         `json:"summary_chat_limit_type"`
	SummaryChatLimitValue *int            `json:"summary_chat_limit_value"`
	IsActive              *bool           `json:"is_active"`
}

// swagger:model SubscribeInput
type SubscribeInput struct {
	PlanID string `json:"plan_id" binding:"required"`
	Trial  bool   `json:"trial"`
	Months int    `json:"months"`
}

type SubscriptionService struct {
	DB      *gorm.DB
	SubRepo *repository.SubscriptionRepository
}

func NewSubscriptionService(db *gorm.DB, subRepo *repository.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{DB: db, SubRepo: subRepo}
}

func (s *SubscriptionService) CreatePlan(ctx context.Context, in PlanInput) (*model.SubscriptionPlan, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", util.ErrValidation)
	}
	if in.PricePerMonth != nil && *in.PricePerMonth < 0 {
		return nil, fmt.Errorf("%w: price_per_month must not be negative", util.ErrValidation)
	}

	plan := &model.SubscriptionPlan{
		Name:                  name,
		PricePerMonth:         in.PricePerMonth,
		FastTestLimit:         in.FastTestLimit,
		SlowTestLimit:         in.SlowTestLimit,
		SummaryChatLimitType:  in.SummaryChatLimitType,
		SummaryChatLimitValue: in.SummaryChatLimitValue,
		IsActive:              in.IsActive == nil || *in.IsActive,
	}
	if len(in.Features) > 0 {
		plan.Features = datatypes.JSON(in.Features)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subs := s.SubRepo.WithTx(tx)
		exists, err := subs.PlanNameExists(ctx, name)
		if err != nil {
			return err
		}
		if exists {
			return util.ErrDuplicatePlan
		}
		if err := subs.CreatePlan(ctx, plan); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrDuplicatePlan
			}
			return err
		}
		// is_active 的列默认值为 true，显式写入 false
		if !plan.IsActive {
			return tx.WithContext(ctx).Model(plan).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *SubscriptionService) ListPlans(ctx context.Context, activeOnly bool) ([]model.SubscriptionPlan, error) {
	return s.SubRepo.ListPlans(ctx, activeOnly)
}

// Subscribe 开通新订阅，用户已有的有效订阅会被取消
func (s *SubscriptionService) Subscribe(ctx context.Context, user *model.User, in SubscribeInput) (*model.UserSubscription, error) {
	months := in.Months
	if months <= 0 {
		months = 1
	}

	var sub *model.UserSubscription
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subs := s.SubRepo.WithTx(tx)
		plan, err := subs.FindPlan(ctx, in.PlanID)
		if err != nil {
			return fmt.Errorf("plan %s: %w", in.PlanID, err)
		}
		if !plan.IsActive {
			return fmt.Errorf("%w: plan %q is not available", util.ErrValidation, plan.Name)
		}

		now := time.Now()
		if _, err := subs.CancelLive(ctx, user.ID, now); err != nil {
			return err
		}

		status := model.SubscriptionActive
		end := now.AddDate(0, months, 0)
		if in.Trial {
			status = model.SubscriptionTrial
			end = now.Add(trialPeriod)
		}
		credits := 0
		if plan.SummaryChatLimitValue != nil {
			credits = *plan.SummaryChatLimitValue
		}

		sub = &model.UserSubscription{
			UserID:           user.ID,
			PlanID:           plan.ID,
			StartDate:        now,
			EndDate:          &end,
			Status:           status,
			CreditsRemaining: credits,
		}
		if !in.Trial {
			sub.LastBillingDate = &now
		}
		if err := subs.Create(ctx, sub); err != nil {
			return err
		}
		sub.Plan = plan
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("subscription started",
		zap.String("user_id", user.ID),
		zap.String("plan_id", sub.PlanID),
		zap.String("status", string(sub.Status)),
	)
	return sub, nil
}

func (s *SubscriptionService) CurrentSubscription(ctx context.Context, user *model.User) (*model.UserSubscription, error) {
	return s.SubRepo.FindCurrent(ctx, user.ID)
}

// CancelSubscription 没有有效订阅时返回 ErrNotFound
func (s *SubscriptionService) CancelSubscription(ctx context.Context, user *model.User) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.SubRepo.WithTx(tx).CancelLive(ctx, user.ID, time.Now())
		if err != nil {
			return err
		}
		if n == 0 {
			return util.ErrNotFound
		}
		return nil
	})
}

func (s *SubscriptionService) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = s.SubRepo.WithTx(tx).ExpireDue(ctx, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Log.Info("subscriptions expired", zap.Int64("count", n))
	}
	return n, nil
}

func (s *SubscriptionService) Schedule(c *cron.Cron, expr string) (cron.EntryID, error) {
	return c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.ExpireDue(ctx, time.Now()); err != nil {
			logger.Log.Error("subscription expiry sweep failed", zap.Error(err))
		}
	})
}
