package model

import (
	"time"

	"gorm.io/datatypes"
)

// swagger:model SubscriptionPlan
type SubscriptionPlan struct {
	UUIDBase
	Name                  string         `gorm:"size:191;uniqueIndex;not null" json:"name"`
	PricePerMonth         *float64       `gorm:"type:decimal(10,2)" json:"price_per_month"`
	Features              datatypes.JSON `json:"features,omitempty"`
	FastTestLimit         *int           `json:"fast_test_limit"`
	SlowTestLimit         *int           `json:"slow_test_limit"`
	SummaryChatLimitType  *string        `gorm:"size:20" json:"summary_chat_limit_type"`
	SummaryChatLimitValue *int           `json:"summary_chat_limit_value"`
	IsActive              bool           `gorm:"not null;default:true" json:"is_active"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionTrial     SubscriptionStatus = "trial"
)

// swagger:model UserSubscription
type UserSubscription struct {
	UUIDBase
	UserID           string             `gorm:"type:varchar(36);not null;index" json:"user_id"`
	PlanID           string             `gorm:"type:varchar(36);not null;index" json:"plan_id"`
	StartDate        time.Time          `gorm:"not null" json:"start_date"`
	EndDate          *time.Time         `json:"end_date"`
	Status           SubscriptionStatus `gorm:"size:20;not null;index" json:"status"`
	CreditsRemaining int                `gorm:"not null;default:0" json:"credits_remaining"`
	LastBillingDate  *time.Time         `json:"last_billing_date"`

	Plan *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}

// swagger:model LoginHistory
type LoginHistory struct {
	UUIDBase
	UserID     string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	LoginTime  time.Time `gorm:"not null;index" json:"login_time"`
	IPAddress  *string   `gorm:"size:64" json:"ip_address"`
	DeviceInfo *string   `gorm:"size:255" json:"device_info"`
	Location   *string   `gorm:"size:255" json:"location"`
}

func (LoginHistory) TableName() string {
	return "login_histories"
}
