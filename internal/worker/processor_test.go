package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"certgo_backend/internal/config"
	"certgo_backend/internal/model"
	"certgo_backend/internal/repository"
	"certgo_backend/internal/service"
	"certgo_backend/internal/util"
	"certgo_backend/pkg/database"
	"certgo_backend/pkg/queue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const article = `<html><body>
<h1>Database basics</h1>
<p>A primary key uniquely identifies every row in a table.</p>
<p>Normalization reduces redundancy across relational schemas.</p>
<p>Indexes speed lookups but slow down writes considerably.</p>
</body></html>`

type fixture struct {
	db        *gorm.DB
	contents  *service.ContentService
	quizzes   *service.QuizService
	storage   *service.StorageService
	processor *Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.InitDB(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, false, true)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	contentRepo := repository.NewContentRepository(db)
	certRepo := repository.NewCertificateRepository(db)
	tasks := service.NewTaskService(db, repository.NewTaskRepository(db), queue.NewMemoryBroker(8), 10)
	storage := service.NewStorageService(&config.StorageConfig{Type: "local", LocalPath: t.TempDir()})

	f := &fixture{
		db:       db,
		contents: service.NewContentService(db, contentRepo, certRepo, tasks, storage),
		quizzes:  service.NewQuizService(db, repository.NewQuizRepository(db), contentRepo, certRepo),
		storage:  storage,
	}
	f.processor = NewProcessor(f.contents, f.quizzes, storage, &config.WorkerConfig{
		FetchTimeout:         5 * time.Second,
		SectionChars:         60,
		AllowPrivateNetworks: true,
	})
	return f
}

func (f *fixture) create(t *testing.T, url string) *model.LearningContent {
	t.Helper()
	c, err := f.contents.CreateContent(context.Background(), service.ContentInput{
		Type:      model.ContentDocument,
		SourceURL: url,
		Title:     "Database basics",
	})
	require.NoError(t, err)
	return c
}

func contentTask(t *testing.T, contentID string) *queue.Task {
	raw, err := json.Marshal(service.ContentTaskPayload{ContentID: contentID})
	require.NoError(t, err)
	return &queue.Task{ID: uuid.NewString(), Name: model.TaskProcessContent, Payload: raw}
}

func TestProcessContentCompletes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, article)
	}))
	defer srv.Close()

	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t, srv.URL+"/doc")

	require.NoError(t, f.processor.ProcessContent(ctx, contentTask(t, c.ID)))

	got, err := f.contents.GetContent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.ProcessingStatus)
	require.NotNil(t, got.RawTextContent)
	assert.Contains(t, *got.RawTextContent, "Normalization reduces redundancy")
	require.Len(t, got.Sections, 4)
	for i, s := range got.Sections {
		assert.Equal(t, i, s.OrderIndex)
		assert.LessOrEqual(t, len([]rune(s.SectionText)), 60)
	}
	require.NotNil(t, got.Sections[0].SectionTitle)
	assert.Equal(t, "Database basics", *got.Sections[0].SectionTitle)

	rc, err := f.storage.OpenRaw(ctx, c.ID)
	require.NoError(t, err)
	raw, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, article, string(raw))

	// 生成测验
	payload, err := json.Marshal(service.QuizTaskPayload{ContentID: c.ID, Difficulty: model.DifficultyEasy, Count: 2})
	require.NoError(t, err)
	require.NoError(t, f.processor.GenerateQuizzes(ctx, &queue.Task{Name: model.TaskGenerateQuizzes, Payload: payload}))

	quizzes, err := f.quizzes.ListQuizzesByContent(ctx, c.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, quizzes, 2)
	for _, q := range quizzes {
		assert.True(t, q.GeneratedByAI)
		assert.Equal(t, model.DifficultyEasy, q.Difficulty)
	}
}

func TestProcessContentFailsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t, srv.URL+"/missing")

	err := f.processor.ProcessContent(ctx, contentTask(t, c.ID))
	require.Error(t, err)

	got, err := f.contents.GetContent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, got.ProcessingStatus)
	assert.Empty(t, got.Sections)

	// 未完成的内容不能生成测验
	payload, _ := json.Marshal(service.QuizTaskPayload{ContentID: c.ID, Count: 1})
	err = f.processor.GenerateQuizzes(ctx, &queue.Task{Name: model.TaskGenerateQuizzes, Payload: payload})
	assert.ErrorIs(t, err, util.ErrContentNotReady)
}

func TestProcessContentUnknownIDIsNoop(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.processor.ProcessContent(context.Background(), contentTask(t, "deleted")))
}

func TestWorkerRunDispatchesToHandlers(t *testing.T) {
	broker := queue.NewMemoryBroker(4)
	w := New(broker, 2)
	w.pollWait = 20 * time.Millisecond

	done := make(chan string, 2)
	w.Register("ok", func(ctx context.Context, task *queue.Task) error {
		done <- task.ID
		return nil
	})
	w.Register("boom", func(ctx context.Context, task *queue.Task) error {
		defer func() { done <- task.ID }()
		panic("handler exploded")
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	_, err := broker.Enqueue(ctx, queue.Task{ID: "1", Name: "ok"})
	require.NoError(t, err)
	_, err = broker.Enqueue(ctx, queue.Task{ID: "2", Name: "boom"})
	require.NoError(t, err)
	_, err = broker.Enqueue(ctx, queue.Task{ID: "3", Name: "unregistered"})
	require.NoError(t, err)

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-done:
			got[id] = true
		case <-time.After(2 * time.Second):
			t.Fatal("task not handled")
		}
	}
	assert.Equal(t, map[string]bool{"1": true, "2": true}, got)

	assert.Eventually(t, func() bool { return broker.Len() == 0 }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestProcessContentRefusesPrivateAddresses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "internal secret")
	}))
	defer srv.Close()

	f := newFixture(t)
	ctx := context.Background()
	guarded := NewProcessor(f.contents, f.quizzes, f.storage, &config.WorkerConfig{FetchTimeout: time.Second})

	for _, url := range []string{
		"http://169.254.169.254/latest/meta-data/iam/",
		srv.URL + "/admin",
	} {
		c := f.create(t, url)
		err := guarded.ProcessContent(ctx, contentTask(t, c.ID))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not allowed")

		got, err := f.contents.GetContent(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusFailed, got.ProcessingStatus)
		assert.Nil(t, got.RawTextContent)

		_, err = f.storage.OpenRaw(ctx, c.ID)
		assert.Error(t, err)
	}
}

func TestBlockedIP(t *testing.T) {
	for _, addr := range []string{"127.0.0.1", "10.1.2.3", "192.168.0.1", "172.16.5.5", "169.254.169.254", "::1", "fe80::1", "0.0.0.0"} {
		assert.True(t, blockedIP(net.ParseIP(addr)), addr)
	}
	for _, addr := range []string{"93.184.216.34", "2606:2800:220:1::1"} {
		assert.False(t, blockedIP(net.ParseIP(addr)), addr)
	}
}

func TestProcessContentFailsWhenCompletionWriteFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, article)
	}))
	defer srv.Close()

	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t, srv.URL+"/doc")

	// 仅让 COMPLETED 状态的写入失败
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:reject_completed", func(tx *gorm.DB) {
		if fields, ok := tx.Statement.Dest.(map[string]interface{}); ok && fields["processing_status"] == model.StatusCompleted {
			tx.AddError(errors.New("disk full"))
		}
	}))

	err := f.processor.ProcessContent(ctx, contentTask(t, c.ID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	got, err := f.contents.GetContent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, got.ProcessingStatus)
}
