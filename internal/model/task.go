package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TaskProcessContent  = "process_content_task"
	TaskGenerateQuizzes = "generate_quizzes_task"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskDispatched TaskStatus = "dispatched"
	TaskFailed     TaskStatus = "failed"
)

// ProcessingTask 发件箱记录：与内容在同一事务内写入，由 relay 投递到 broker
// swagger:model ProcessingTask
type ProcessingTask struct {
	UUIDBase
	TaskName     string         `gorm:"size:64;not null" json:"task_name"`
	ContentID    string         `gorm:"type:varchar(36);not null;index" json:"content_id"`
	Payload      datatypes.JSON `json:"payload"`
	Status       TaskStatus     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Handle       *string        `gorm:"size:64" json:"handle"`
	DispatchedAt *time.Time     `json:"dispatched_at"`
	LastError    *string        `gorm:"type:text" json:"last_error,omitempty"`
}

func (ProcessingTask) TableName() string {
	return "processing_tasks"
}
