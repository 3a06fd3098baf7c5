package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UUIDBase 所有实体的主键与时间戳。删除均为物理删除，不做软删除。
// swagger:model
type UUIDBase struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *UUIDBase) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

func GenerateUUID() string {
	return uuid.New().String()
}

// AllModels 参与 AutoMigrate 的模型，按外键依赖顺序排列
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Certificate{},
		&LearningContent{},
		&ContentSection{},
		&Quiz{},
		&UserQuizAttempt{},
		&UserAnswer{},
		&UserLearningProgress{},
		&SubscriptionPlan{},
		&UserSubscription{},
		&LoginHistory{},
		&ProcessingTask{},
	}
}
