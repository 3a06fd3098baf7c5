package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrEmpty 表示在等待时间内没有任务
var ErrEmpty = errors.New("queue: no task available")

// Task 投递到 broker 的消息
type Task struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Broker 负责任务投递。投递语义由具体实现决定，调用方按 best-effort 对待。
type Broker interface {
	Enqueue(ctx context.Context, task Task) (string, error)
	// Dequeue 最多阻塞 wait，无任务时返回 ErrEmpty
	Dequeue(ctx context.Context, wait time.Duration) (*Task, error)
	Close() error
}
