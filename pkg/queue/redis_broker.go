package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisBroker 基于 Redis list：生产者 LPUSH，消费者 BRPOP
type RedisBroker struct {
	rdb *redis.Client
	key string
}

func NewRedisBroker(rdb *redis.Client, name string) *RedisBroker {
	return &RedisBroker{rdb: rdb, key: "queue:" + name}
}

func (b *RedisBroker) Enqueue(ctx context.Context, task Task) (string, error) {
	raw, err := json.Marshal(task)
	if err != nil {
		return "", err
	}
	if err := b.rdb.LPush(ctx, b.key, raw).Err(); err != nil {
		return "", fmt.Errorf("redis lpush: %w", err)
	}
	return task.ID, nil
}

func (b *RedisBroker) Dequeue(ctx context.Context, wait time.Duration) (*Task, error) {
	res, err := b.rdb.BRPop(ctx, wait, b.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("redis brpop: %w", err)
	}
	// res[0] 为 key，res[1] 为值
	if len(res) != 2 {
		return nil, fmt.Errorf("redis brpop: unexpected reply %v", res)
	}
	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &task, nil
}

// Len 当前积压数量，供健康检查使用
func (b *RedisBroker) Len(ctx context.Context) (int64, error) {
	return b.rdb.LLen(ctx, b.key).Result()
}

func (b *RedisBroker) Close() error {
	return b.rdb.Close()
}
