package model

type ContentType string

const (
	ContentVideo    ContentType = "video"
	ContentDocument ContentType = "document"
	ContentText     ContentType = "text"
	ContentQuizSet  ContentType = "quiz_set"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentVideo, ContentDocument, ContentText, ContentQuizSet:
		return true
	}
	return false
}

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "PENDING"
	StatusProcessing ProcessingStatus = "PROCESSING"
	StatusCompleted  ProcessingStatus = "COMPLETED"
	StatusFailed     ProcessingStatus = "FAILED"
)

func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// swagger:model LearningContent
type LearningContent struct {
	UUIDBase
	CertificateID        *string          `gorm:"type:varchar(36);index" json:"certificate_id"`
	Type                 ContentType      `gorm:"size:20;not null" json:"type"`
	SourceURL            string           `gorm:"size:512;uniqueIndex;not null" json:"source_url"`
	Title                string           `gorm:"size:255;not null" json:"title"`
	Description          *string          `gorm:"type:text" json:"description"`
	RawTextContent       *string          `gorm:"type:text" json:"-"`
	ProcessingStatus     ProcessingStatus `gorm:"size:20;not null;default:'PENDING';index" json:"processing_status"`
	DurationMinutes      *int             `json:"duration_minutes"`
	VectorCollectionName *string          `gorm:"size:100" json:"vector_collection_name"`

	Certificate *Certificate     `gorm:"foreignKey:CertificateID" json:"-"`
	Sections    []ContentSection `gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
}

func (LearningContent) TableName() string {
	return "learning_contents"
}

// swagger:model ContentSection
type ContentSection struct {
	UUIDBase
	ContentID      string  `gorm:"type:varchar(36);not null;index" json:"content_id"`
	SectionTitle   *string `gorm:"size:255" json:"section_title"`
	SectionText    string  `gorm:"type:text;not null" json:"section_text"`
	StartTimestamp *string `gorm:"size:20" json:"start_timestamp"`
	EndTimestamp   *string `gorm:"size:20" json:"end_timestamp"`
	OrderIndex     int     `gorm:"not null" json:"order_index"`
	VectorPointID  *string `gorm:"type:varchar(36)" json:"-"`
}

func (ContentSection) TableName() string {
	return "content_sections"
}
