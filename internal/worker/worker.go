package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"certgo_backend/pkg/logger"
	"certgo_backend/pkg/monitoring"
	"certgo_backend/pkg/queue"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handler 处理一个任务；返回的错误只记录日志，不重试
type Handler func(ctx context.Context, task *queue.Task) error

type Worker struct {
	broker      queue.Broker
	handlers    map[string]Handler
	concurrency int
	pollWait    time.Duration
	log         *zap.Logger
}

func New(broker queue.Broker, concurrency int) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Worker{
		broker:      broker,
		handlers:    make(map[string]Handler),
		concurrency: concurrency,
		pollWait:    2 * time.Second,
		log:         logger.Named("worker"),
	}
}

func (w *Worker) Register(name string, h Handler) {
	w.handlers[name] = h
}

// Run 启动 concurrency 个消费循环，ctx 取消后返回
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("worker started", zap.Int("concurrency", w.concurrency))
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		g.Go(func() error {
			return w.loop(ctx)
		})
	}
	err := g.Wait()
	w.log.Info("worker stopped")
	if errors.Is(err, context.Canceled) || errors.Is(err, queue.ErrClosed) {
		return nil
	}
	return err
}

func (w *Worker) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		task, err := w.broker.Dequeue(ctx, w.pollWait)
		if errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, queue.ErrClosed) {
				return err
			}
			w.log.Warn("dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		w.Handle(ctx, task)
	}
}

// Handle 执行单个任务，handler panic 时按失败处理
func (w *Worker) Handle(ctx context.Context, task *queue.Task) {
	h, ok := w.handlers[task.Name]
	if !ok {
		w.log.Warn("no handler registered for task", zap.String("task", task.Name), zap.String("task_id", task.ID))
		monitoring.TasksProcessed.WithLabelValues(task.Name, "unknown").Inc()
		return
	}

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return h(ctx, task)
	}()

	fields := []zap.Field{
		zap.String("task", task.Name),
		zap.String("task_id", task.ID),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		monitoring.TasksProcessed.WithLabelValues(task.Name, "failed").Inc()
		w.log.Error("task failed", append(fields, zap.Error(err))...)
		return
	}
	monitoring.TasksProcessed.WithLabelValues(task.Name, "succeeded").Inc()
	w.log.Info("task done", fields...)
}
