package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"certgo_backend/internal/config"
	"certgo_backend/internal/model"
	"certgo_backend/internal/repository"
	"certgo_backend/pkg/database"
	"certgo_backend/pkg/queue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-test-secret-test-secret"

// testEnv 每个测试独立的内存 sqlite 库与全部服务
type testEnv struct {
	db      *gorm.DB
	cfg     *config.Config
	broker  *queue.MemoryBroker
	storage *StorageService

	auth         *AuthService
	users        *UserService
	certs        *CertificateService
	tasks        *TaskService
	contents     *ContentService
	quizzes      *QuizService
	attempts     *AttemptService
	progress     *ProgressService
	subscription *SubscriptionService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitDB(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, false, true)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{
		JWT:  config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour},
		Auth: config.AuthConfig{AdminEmails: []string{"admin@x.com"}},
	}
	broker := queue.NewMemoryBroker(16)
	t.Cleanup(func() { broker.Close() })

	userRepo := repository.NewUserRepository(db)
	historyRepo := repository.NewLoginHistoryRepository(db)
	certRepo := repository.NewCertificateRepository(db)
	contentRepo := repository.NewContentRepository(db)
	quizRepo := repository.NewQuizRepository(db)

	env := &testEnv{db: db, cfg: cfg, broker: broker}
	env.auth = NewAuthService(db, userRepo, historyRepo, cfg)
	env.users = NewUserService(db, userRepo, historyRepo)
	env.certs = NewCertificateService(db, certRepo)
	env.tasks = NewTaskService(db, repository.NewTaskRepository(db), broker, 10)
	env.storage = NewStorageService(&config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
	env.contents = NewContentService(db, contentRepo, certRepo, env.tasks, env.storage)
	env.quizzes = NewQuizService(db, quizRepo, contentRepo, certRepo)
	env.attempts = NewAttemptService(db, repository.NewAttemptRepository(db), quizRepo, certRepo)
	env.progress = NewProgressService(db, repository.NewProgressRepository(db), contentRepo)
	env.subscription = NewSubscriptionService(db, repository.NewSubscriptionRepository(db))
	return env
}

func (e *testEnv) register(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), email, "pw", "A")
	require.NoError(t, err)
	return u
}

func (e *testEnv) content(t *testing.T, url string) *model.LearningContent {
	t.Helper()
	c, err := e.contents.CreateContent(context.Background(), ContentInput{
		Type:      model.ContentDocument,
		SourceURL: url,
		Title:     "Doc",
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) quiz(t *testing.T, contentID *string) *model.Quiz {
	t.Helper()
	q, err := e.quizzes.CreateQuiz(context.Background(), QuizInput{
		ContentID:    contentID,
		QuestionText: "2 + 2 = ?",
		Options: []model.QuizOption{
			{ID: "A", Text: "3"},
			{ID: "B", Text: "4"},
		},
		CorrectAnswerID: "B",
	})
	require.NoError(t, err)
	return q
}
