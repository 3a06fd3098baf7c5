// 手动投递发件箱并执行一次订阅过期扫描
//
// 正常运行时两者由 API 进程内的 cron 定时执行（见 queue.relay_interval / queue.expiry_sweep）。
// 此脚本用于 API 停机期间排空积压任务，或批量导入内容之后立即投递。
//
// 用法: go run scripts/dispatch_outbox.go [-config ./configs]

package main

import (
	"context"
	"flag"
	"log"
	"time"

	"certgo_backend/internal/config"
	"certgo_backend/internal/repository"
	"certgo_backend/internal/service"
	"certgo_backend/pkg/database"
	"certgo_backend/pkg/logger"
	"certgo_backend/pkg/queue"
)

func main() {
	configPath := flag.String("config", "./configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Queue.Driver != "redis" {
		log.Fatalf("queue.driver=%s 时任务在 API 进程内投递，无需手动触发", cfg.Queue.Driver)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, false, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Redis 连接失败: %v", err)
	}
	broker := queue.NewRedisBroker(rdb, cfg.Queue.Name)
	defer broker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	tasks := service.NewTaskService(db, repository.NewTaskRepository(db), broker, cfg.Queue.RelayBatch)
	total := 0
	for {
		n, err := tasks.DispatchPending(ctx)
		if err != nil {
			log.Fatalf("投递失败: %v", err)
		}
		total += n
		// 本批没有成功投递的记录时停止，避免 broker 故障时空转
		if n == 0 {
			break
		}
	}
	log.Printf("已投递 %d 个任务", total)

	expired, err := service.NewSubscriptionService(db, repository.NewSubscriptionRepository(db)).ExpireDue(ctx, time.Now())
	if err != nil {
		log.Fatalf("订阅过期扫描失败: %v", err)
	}
	log.Printf("已过期 %d 个订阅", expired)
}
