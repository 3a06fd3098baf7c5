package worker

import (
	"strings"
	"testing"

	"certgo_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContent() *model.LearningContent {
	cert := "cert-1"
	c := &model.LearningContent{CertificateID: &cert, ProcessingStatus: model.StatusCompleted}
	c.ID = "content-1"
	c.Sections = []model.ContentSection{
		{SectionText: "Short one. A primary key uniquely identifies every row in a table."},
		{SectionText: "Normalization reduces redundancy across relational schemas."},
		{SectionText: "Too short."},
		{SectionText: "Indexes speed lookups but slow down writes considerably."},
	}
	return c
}

func TestBuildClozeQuizzes(t *testing.T) {
	quizzes := BuildClozeQuizzes(sampleContent(), "", 10)
	require.Len(t, quizzes, 3)

	first := quizzes[0]
	assert.Equal(t, "A primary key uniquely _____ every row in a table", first.QuestionText)
	assert.Equal(t, "A", first.CorrectAnswerID)
	assert.Equal(t, "identifies", first.Options[0].Text)
	assert.Equal(t, "Normalization", first.Options[1].Text)
	assert.Equal(t, model.DifficultyNormal, first.Difficulty)
	assert.Equal(t, model.QuestionMultiple, first.QuestionType)
	assert.True(t, first.GeneratedByAI)
	require.NotNil(t, first.ContentID)
	assert.Equal(t, "content-1", *first.ContentID)
	assert.Equal(t, "cert-1", *first.CertificateID)
	require.NotNil(t, first.ExplanationText)
	assert.Equal(t, "A primary key uniquely identifies every row in a table", *first.ExplanationText)

	// 正确选项位置轮换
	assert.Equal(t, "B", quizzes[1].CorrectAnswerID)
	assert.Equal(t, "C", quizzes[2].CorrectAnswerID)

	for _, q := range quizzes {
		assert.Len(t, q.Options, 4)
		assert.True(t, q.HasOption(q.CorrectAnswerID))
		assert.True(t, strings.Contains(q.QuestionText, clozeBlank))
		texts := map[string]bool{}
		for _, o := range q.Options {
			assert.False(t, texts[strings.ToLower(o.Text)], "duplicate option %q", o.Text)
			texts[strings.ToLower(o.Text)] = true
		}
	}
}

func TestBuildClozeQuizzesDeterministicAndCapped(t *testing.T) {
	a := BuildClozeQuizzes(sampleContent(), model.DifficultyHard, 2)
	b := BuildClozeQuizzes(sampleContent(), model.DifficultyHard, 2)
	require.Len(t, a, 2)
	assert.Equal(t, a, b)
	assert.Equal(t, model.DifficultyHard, a[0].Difficulty)
}

func TestBuildClozeQuizzesNeedsVocabulary(t *testing.T) {
	c := &model.LearningContent{Sections: []model.ContentSection{{SectionText: "tiny bits of text go by"}}}
	assert.Empty(t, BuildClozeQuizzes(c, model.DifficultyEasy, 5))
}
