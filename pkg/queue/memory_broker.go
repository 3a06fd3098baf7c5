package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrClosed = errors.New("queue: broker closed")

// MemoryBroker 进程内 broker，worker 与 API 同进程时使用
type MemoryBroker struct {
	ch     chan Task
	mu     sync.RWMutex
	closed bool
}

func NewMemoryBroker(capacity int) *MemoryBroker {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryBroker{ch: make(chan Task, capacity)}
}

func (b *MemoryBroker) Enqueue(ctx context.Context, task Task) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return "", ErrClosed
	}
	select {
	case b.ch <- task:
		return task.ID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (b *MemoryBroker) Dequeue(ctx context.Context, wait time.Duration) (*Task, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case task, ok := <-b.ch:
		if !ok {
			return nil, ErrClosed
		}
		return &task, nil
	case <-timer.C:
		return nil, ErrEmpty
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *MemoryBroker) Len() int {
	return len(b.ch)
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.ch)
	}
	return nil
}
