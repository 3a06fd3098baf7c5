package model

import (
	"time"

	"gorm.io/datatypes"
)

type QuizDifficulty string

const (
	DifficultyEasy   QuizDifficulty = "easy"
	DifficultyNormal QuizDifficulty = "normal"
	DifficultyHard   QuizDifficulty = "hard"
)

func (d QuizDifficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyNormal || d == DifficultyHard
}

type QuestionType string

const (
	QuestionMultiple   QuestionType = "multiple"
	QuestionSubjective QuestionType = "subjective"
	QuestionBoth       QuestionType = "both"
)

func (q QuestionType) Valid() bool {
	return q == QuestionMultiple || q == QuestionSubjective || q == QuestionBoth
}

// QuizOption 选项，ID 形如 "A"、"B"
type QuizOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	ContentID        *string                         `gorm:"type:varchar(36);index" json:"content_id"`
	CertificateID    *string                         `gorm:"type:varchar(36);index" json:"certificate_id"`
	QuestionText     string                          `gorm:"type:text;not null" json:"question_text"`
	Options          datatypes.JSONSlice[QuizOption] `json:"options"`
	CorrectAnswerID  string                          `gorm:"size:20;not null" json:"-"`
	ExplanationText  *string                         `gorm:"type:text" json:"explanation_text"`
	Difficulty       QuizDifficulty                  `gorm:"size:20;not null" json:"difficulty"`
	QuestionType     QuestionType                    `gorm:"size:20;not null" json:"question_type"`
	RelatedMaterials datatypes.JSON                  `json:"related_materials,omitempty"`
	GeneratedByAI    bool                            `gorm:"not null;default:false" json:"generated_by_ai"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// HasOption reports whether id names one of the quiz options.
func (q *Quiz) HasOption(id string) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

type ExamType string

const (
	ExamFull        ExamType = "full"
	ExamSpreadsheet ExamType = "spreadsheet"
	ExamQuick       ExamType = "quick"
	ExamCustom      ExamType = "custom"
)

func (e ExamType) Valid() bool {
	switch e {
	case ExamFull, ExamSpreadsheet, ExamQuick, ExamCustom:
		return true
	}
	return false
}

// swagger:model UserQuizAttempt
type UserQuizAttempt struct {
	UUIDBase
	UserID           string     `gorm:"type:varchar(36);not null;index" json:"user_id"`
	CertificateID    *string    `gorm:"type:varchar(36);index" json:"certificate_id"`
	ExamType         ExamType   `gorm:"size:20;not null" json:"exam_type"`
	StartTime        time.Time  `gorm:"not null" json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
	TimeTakenSeconds *int       `json:"time_taken_seconds"`
	Score            *int       `json:"score"`
	TotalQuestions   int        `gorm:"not null" json:"total_questions"`
	CorrectCount     *int       `json:"correct_count"`

	Answers []UserAnswer `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (UserQuizAttempt) TableName() string {
	return "user_quiz_attempts"
}

func (a *UserQuizAttempt) Finished() bool {
	return a.EndTime != nil
}

// swagger:model UserAnswer
type UserAnswer struct {
	UUIDBase
	AttemptID            string    `gorm:"type:varchar(36);not null;index" json:"attempt_id"`
	QuizID               string    `gorm:"type:varchar(36);not null;index" json:"quiz_id"`
	UserSelectedOptionID *string   `gorm:"size:20" json:"user_selected_option_id"`
	IsCorrect            bool      `gorm:"not null" json:"is_correct"`
	Bookmarked           bool      `gorm:"not null;default:false" json:"bookmarked"`
	SubmittedAt          time.Time `gorm:"not null" json:"submitted_at"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}
