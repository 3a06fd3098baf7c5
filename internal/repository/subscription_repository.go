package repository

import (
	"context"
	"time"

	"certgo_backend/internal/model"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	DB *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

func (r *SubscriptionRepository) WithTx(tx *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: tx}
}

func (r *SubscriptionRepository) CreatePlan(ctx context.Context, plan *model.SubscriptionPlan) error {
	return r.DB.WithContext(ctx).Create(plan).Error
}

func (r *SubscriptionRepository) PlanNameExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.SubscriptionPlan{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *SubscriptionRepository) FindPlan(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, notFound(err)
	}
	return &plan, nil
}

func (r *SubscriptionRepository) ListPlans(ctx context.Context, activeOnly bool) ([]model.SubscriptionPlan, error) {
	var plans []model.SubscriptionPlan
	q := r.DB.WithContext(ctx).Order("price_per_month ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&plans).Error
	return plans, err
}

var liveStatuses = []model.SubscriptionStatus{model.SubscriptionActive, model.SubscriptionTrial}

// FindCurrent 当前有效（active 或 trial）的订阅
func (r *SubscriptionRepository) FindCurrent(ctx context.Context, userID string) (*model.UserSubscription, error) {
	var sub model.UserSubscription
	err := r.DB.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ? AND status IN ?", userID, liveStatuses).
		Order("start_date DESC").
		First(&sub).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &sub, nil
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *model.UserSubscription) error {
	return r.DB.WithContext(ctx).Omit("Plan").Create(sub).Error
}

// CancelLive 取消用户所有有效订阅
func (r *SubscriptionRepository) CancelLive(ctx context.Context, userID string, at time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.UserSubscription{}).
		Where("user_id = ? AND status IN ?", userID, liveStatuses).
		Updates(map[string]interface{}{
			"status":   model.SubscriptionCancelled,
			"end_date": at,
		})
	return res.RowsAffected, res.Error
}

// ExpireDue 将已过期的有效订阅标记为 expired
func (r *SubscriptionRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.UserSubscription{}).
		Where("status IN ? AND end_date IS NOT NULL AND end_date <= ?", liveStatuses, now).
		Update("status", model.SubscriptionExpired)
	return res.RowsAffected, res.Error
}
