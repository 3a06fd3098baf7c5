package service

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"strings"
	"testing"

	"certgo_backend/internal/model"
	"certgo_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContentPendingWithOutboxTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c := env.content(t, "https://example.com/a")
	assert.Equal(t, model.StatusPending, c.ProcessingStatus)

	tasks, err := env.tasks.ListForContent(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.TaskProcessContent, tasks[0].TaskName)
	assert.Equal(t, model.TaskPending, tasks[0].Status)

	var payload ContentTaskPayload
	require.NoError(t, json.Unmarshal(tasks[0].Payload, &payload))
	assert.Equal(t, c.ID, payload.ContentID)

	// 发件箱尚未投递时 broker 为空
	assert.Zero(t, env.broker.Len())
}

func TestCreateContentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.content(t, "https://example.com/a")

	_, err := env.contents.CreateContent(ctx, ContentInput{Type: model.ContentText, SourceURL: "https://example.com/a", Title: "dup"})
	assert.ErrorIs(t, err, util.ErrDuplicateSourceURL)

	_, err = env.contents.CreateContent(ctx, ContentInput{Type: "podcast", SourceURL: "https://example.com/b", Title: "x"})
	assert.ErrorIs(t, err, util.ErrValidation)

	for _, raw := range []string{"file:///etc/passwd", "gopher://example.com/x", "ftp://example.com/a.pdf", "http:///nohost", "example.com/doc"} {
		_, err = env.contents.CreateContent(ctx, ContentInput{Type: model.ContentText, SourceURL: raw, Title: "x"})
		assert.ErrorIs(t, err, util.ErrValidation, raw)
	}

	missing := "no-such-certificate"
	_, err = env.contents.CreateContent(ctx, ContentInput{Type: model.ContentText, SourceURL: "https://example.com/c", Title: "x", CertificateID: &missing})
	assert.ErrorIs(t, err, util.ErrNotFound)

	// 失败的创建不留下发件箱记录
	var tasks int64
	require.NoError(t, env.db.Model(&model.ProcessingTask{}).Count(&tasks).Error)
	assert.EqualValues(t, 1, tasks)
}

func TestUpdateProcessingStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.content(t, "https://example.com/a")

	got, err := env.contents.UpdateProcessingStatus(ctx, "unknown-id", model.StatusCompleted, nil)
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = env.contents.UpdateProcessingStatus(ctx, c.ID, "DONE", nil)
	assert.ErrorIs(t, err, util.ErrValidation)

	text := "body"
	got, err = env.contents.UpdateProcessingStatus(ctx, c.ID, model.StatusCompleted, &text)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.ProcessingStatus)

	empty := ""
	_, err = env.contents.UpdateProcessingStatus(ctx, c.ID, model.StatusProcessing, &empty)
	require.NoError(t, err)

	stored, err := env.contents.ContentRepo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, stored.ProcessingStatus)
	require.NotNil(t, stored.RawTextContent)
	assert.Equal(t, "body", *stored.RawTextContent)
}

func TestSectionsOrderedAndReplaced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.content(t, "https://example.com/a")

	_, err := env.contents.ListSections(ctx, "missing")
	assert.ErrorIs(t, err, util.ErrNotFound)

	require.NoError(t, env.contents.ReplaceSections(ctx, c.ID, []model.ContentSection{
		{SectionText: "one"}, {SectionText: "two"}, {SectionText: "three"},
	}))
	require.NoError(t, env.contents.ReplaceSections(ctx, c.ID, []model.ContentSection{
		{SectionText: "first"}, {SectionText: "second"},
	}))

	sections, err := env.contents.ListSections(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "first", sections[0].SectionText)
	assert.Equal(t, 1, sections[1].OrderIndex)

	full, err := env.contents.GetContent(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, full.Sections, 2)
	assert.Equal(t, "second", full.Sections[1].SectionText)
}

func TestContentByCertificate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cert, err := env.certs.CreateCertificate(ctx, CertificateInput{Name: "SQLD"})
	require.NoError(t, err)
	_, err = env.contents.CreateContent(ctx, ContentInput{Type: model.ContentVideo, SourceURL: "https://example.com/v", Title: "v", CertificateID: &cert.ID})
	require.NoError(t, err)
	env.content(t, "https://example.com/other")

	list, err := env.contents.ListContentByCertificate(ctx, cert.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	all, err := env.contents.ListContents(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	page, err := env.contents.ListContents(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestDeleteContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.content(t, "https://example.com/a")
	q := env.quiz(t, &c.ID)
	require.NoError(t, env.contents.ReplaceSections(ctx, c.ID, []model.ContentSection{{SectionText: "s"}}))

	require.NoError(t, env.contents.DeleteContent(ctx, c.ID))

	_, err := env.contents.GetContent(ctx, c.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	quiz, err := env.quizzes.GetQuiz(ctx, q.ID)
	require.NoError(t, err)
	assert.Nil(t, quiz.ContentID)

	tasks, err := env.tasks.ListForContent(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assert.ErrorIs(t, env.contents.DeleteContent(ctx, c.ID), util.ErrNotFound)
}

func TestRequestQuizGeneration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.content(t, "https://example.com/a")

	_, err := env.contents.RequestQuizGeneration(ctx, c.ID, QuizGenerationRequest{})
	assert.ErrorIs(t, err, util.ErrContentNotReady)

	_, err = env.contents.UpdateProcessingStatus(ctx, c.ID, model.StatusCompleted, nil)
	require.NoError(t, err)

	task, err := env.contents.RequestQuizGeneration(ctx, c.ID, QuizGenerationRequest{Count: 1000})
	require.NoError(t, err)
	assert.Equal(t, model.TaskGenerateQuizzes, task.TaskName)

	var payload QuizTaskPayload
	require.NoError(t, json.Unmarshal(task.Payload, &payload))
	assert.Equal(t, model.DifficultyNormal, payload.Difficulty)
	assert.Equal(t, maxQuizCount, payload.Count)

	_, err = env.contents.RequestQuizGeneration(ctx, c.ID, QuizGenerationRequest{Difficulty: "insane"})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestCreateCertificate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	level := 3
	cert, err := env.certs.CreateCertificate(ctx, CertificateInput{Name: "ADsP", DifficultyLevel: &level})
	require.NoError(t, err)

	_, err = env.certs.CreateCertificate(ctx, CertificateInput{Name: "ADsP"})
	assert.ErrorIs(t, err, util.ErrDuplicateCertificate)

	bad := 6
	_, err = env.certs.CreateCertificate(ctx, CertificateInput{Name: "X", DifficultyLevel: &bad})
	assert.ErrorIs(t, err, util.ErrValidation)

	got, err := env.certs.GetCertificate(ctx, cert.ID)
	require.NoError(t, err)
	assert.Equal(t, "ADsP", got.Name)

	_, err = env.certs.GetCertificate(ctx, "missing")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestRawSourceArchive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.content(t, "https://example.com/a")

	// PENDING 内容尚未抓取
	_, err := env.contents.OpenRawSource(ctx, c.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = env.contents.UpdateProcessingStatus(ctx, c.ID, model.StatusProcessing, nil)
	require.NoError(t, err)
	_, err = env.contents.OpenRawSource(ctx, c.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	location, err := env.storage.ArchiveRaw(ctx, c.ID, []byte("<p>hello</p>"), "text/html")
	require.NoError(t, err)
	assert.Contains(t, location, RawSourceKey(c.ID))

	rc, err := env.contents.OpenRawSource(ctx, c.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "<p>hello</p>", string(body))

	require.NoError(t, env.contents.DeleteContent(ctx, c.ID))
	_, err = env.storage.OpenRaw(ctx, c.ID)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLocalStorageKeysStayUnderRoot(t *testing.T) {
	root := t.TempDir()
	p := &LocalStorageProvider{Root: root}

	location, err := p.Put(context.Background(), "../../escape", strings.NewReader("x"), 1, "text/plain")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimPrefix(location, "file://"), root))
}
