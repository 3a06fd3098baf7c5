package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"certgo_backend/internal/model"
	"certgo_backend/internal/util"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestFindByIDMapsRecordNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := NewUserRepository(db).FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, util.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDPassesThroughDriverErrors(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(boom)

	_, err := NewUserRepository(db).FindByID(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, util.ErrNotFound))
}

func TestFindPendingOrdersOldestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "task_name", "content_id", "status", "created_at"}).
		AddRow("t1", model.TaskProcessContent, "c1", model.TaskPending, now.Add(-time.Minute)).
		AddRow("t2", model.TaskGenerateQuizzes, "c1", model.TaskPending, now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "processing_tasks" WHERE status = $1 ORDER BY created_at ASC LIMIT`)).
		WillReturnRows(rows)

	tasks, err := NewTaskRepository(db).FindPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, model.TaskGenerateQuizzes, tasks[1].TaskName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkDispatchedOnlyTouchesPendingRows(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "processing_tasks" SET .*"status"=.* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewTaskRepository(db).MarkDispatched(context.Background(), "t1", "t1", time.Now())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
