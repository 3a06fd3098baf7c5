package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"certgo_backend/internal/config"
	"certgo_backend/internal/controller"
	"certgo_backend/internal/repository"
	"certgo_backend/internal/service"
	"certgo_backend/internal/worker"
	"certgo_backend/pkg/database"
	"certgo_backend/pkg/logger"
	"certgo_backend/pkg/monitoring"
	"certgo_backend/pkg/queue"
	"certgo_backend/pkg/security"
	"certgo_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Broker queue.Broker
	Worker *worker.Worker

	services *services
	cron     *cron.Cron
	tracer   *sdktrace.TracerProvider

	workerCancel context.CancelFunc
	workerDone   sync.WaitGroup
}

type repositories struct {
	user         *repository.UserRepository
	loginHistory *repository.LoginHistoryRepository
	certificate  *repository.CertificateRepository
	content      *repository.ContentRepository
	quiz         *repository.QuizRepository
	attempt      *repository.AttemptRepository
	progress     *repository.ProgressRepository
	subscription *repository.SubscriptionRepository
	task         *repository.TaskRepository
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	certificate  *service.CertificateService
	content      *service.ContentService
	task         *service.TaskService
	quiz         *service.QuizService
	attempt      *service.AttemptService
	progress     *service.ProgressService
	subscription *service.SubscriptionService
	storage      *service.StorageService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	certificate  *controller.CertificateController
	content      *controller.ContentController
	quiz         *controller.QuizController
	attempt      *controller.AttemptController
	progress     *controller.ProgressController
	subscription *controller.SubscriptionController
	health       *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		loginHistory: repository.NewLoginHistoryRepository(db),
		certificate:  repository.NewCertificateRepository(db),
		content:      repository.NewContentRepository(db),
		quiz:         repository.NewQuizRepository(db),
		attempt:      repository.NewAttemptRepository(db),
		progress:     repository.NewProgressRepository(db),
		subscription: repository.NewSubscriptionRepository(db),
		task:         repository.NewTaskRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, broker queue.Broker) *services {
	s := &services{}

	s.auth = service.NewAuthService(db, repos.user, repos.loginHistory, cfg)
	s.user = service.NewUserService(db, repos.user, repos.loginHistory)
	s.certificate = service.NewCertificateService(db, repos.certificate)
	s.task = service.NewTaskService(db, repos.task, broker, cfg.Queue.RelayBatch)
	s.storage = service.NewStorageService(&cfg.Storage)
	s.content = service.NewContentService(db, repos.content, repos.certificate, s.task, s.storage)
	s.quiz = service.NewQuizService(db, repos.quiz, repos.content, repos.certificate)
	s.attempt = service.NewAttemptService(db, repos.attempt, repos.quiz, repos.certificate)
	s.progress = service.NewProgressService(db, repos.progress, repos.content)
	s.subscription = service.NewSubscriptionService(db, repos.subscription)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user),
		certificate:  controller.NewCertificateController(s.certificate, s.content, s.quiz),
		content:      controller.NewContentController(s.content, s.quiz),
		quiz:         controller.NewQuizController(s.quiz),
		attempt:      controller.NewAttemptController(s.attempt),
		progress:     controller.NewProgressController(s.progress),
		subscription: controller.NewSubscriptionController(s.subscription),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// initWorker 内存队列模式或独立 worker 进程才需要
func (a *App) initWorker(cfg *config.Config) {
	if cfg.Queue.Driver != "memory" && !cfg.WorkerOnly {
		return
	}
	processor := worker.NewProcessor(a.services.content, a.services.quiz, a.services.storage, &cfg.Worker)
	a.Worker = worker.New(a.Broker, cfg.Worker.Concurrency)
	processor.Register(a.Worker)
}

// openBroker 按 queue.driver 选择 broker
func openBroker(cfg *config.Config) (queue.Broker, *redis.Client, error) {
	if cfg.Queue.Driver == "memory" {
		return queue.NewMemoryBroker(0), nil, nil
	}
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return queue.NewRedisBroker(rdb, cfg.Queue.Name), rdb, nil
}

// NewApp 初始化日志、数据库与队列并装配应用
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	broker, rdb, err := openBroker(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize queue", zap.Error(err))
	}

	app := New(cfg, db, rdb, broker)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

// New 用已打开的连接装配应用，不启动任何后台任务
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, broker queue.Broker) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Broker: broker,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, broker)
	controllers := app.initControllers(app.services, db, rdb)
	app.initWorker(cfg)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	return app
}

// Start 启动 cron（发件箱投递、订阅过期）以及进程内 worker
func (a *App) Start() error {
	a.cron = cron.New()
	if _, err := a.services.task.Schedule(a.cron, a.Config.Queue.RelayInterval); err != nil {
		return err
	}
	if _, err := a.services.subscription.Schedule(a.cron, a.Config.Queue.ExpirySweep); err != nil {
		return err
	}
	a.cron.Start()

	if a.Worker != nil {
		a.startWorker()
	}
	return nil
}

func (a *App) startWorker() {
	ctx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	a.workerDone.Add(1)
	go func() {
		defer a.workerDone.Done()
		if err := a.Worker.Run(ctx); err != nil {
			logger.Log.Error("worker exited", zap.Error(err))
		}
	}()
}

// Stop 停止后台任务并释放连接
func (a *App) Stop(ctx context.Context) {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	if a.workerCancel != nil {
		a.workerCancel()
		a.workerDone.Wait()
	}
	if a.Broker != nil {
		if err := a.Broker.Close(); err != nil {
			logger.Log.Warn("close broker", zap.Error(err))
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Log.Sync()
}

func waitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

func (a *App) Run() {
	if err := a.Start(); err != nil {
		logger.Log.Fatal("Failed to start background jobs", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	waitForSignal()
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	a.Stop(ctx)

	logger.Log.Info("Server exiting")
}

// RunWorker 独立 worker 进程：只消费队列，不提供 HTTP
func (a *App) RunWorker() {
	if a.Worker == nil {
		logger.Log.Fatal("worker is not configured")
	}
	a.startWorker()

	waitForSignal()
	logger.Log.Info("Shutting down worker...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	a.Stop(ctx)
}
