package model

import (
	"time"

	"gorm.io/datatypes"
)

// swagger:model UserLearningProgress
type UserLearningProgress struct {
	UUIDBase
	UserID             string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_user_content" json:"user_id"`
	ContentID          string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_user_content" json:"content_id"`
	LastViewedAt       time.Time      `gorm:"not null" json:"last_viewed_at"`
	ProgressPercentage int            `gorm:"not null;default:0" json:"progress_percentage"`
	ChatHistory        datatypes.JSON `json:"chat_history,omitempty"`
	SummaryCount       int            `gorm:"not null;default:0" json:"summary_count"`
}

func (UserLearningProgress) TableName() string {
	return "user_learning_progresses"
}

// ClampPercentage 将进度限制在 [0,100]
func ClampPercentage(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
