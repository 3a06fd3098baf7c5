package model

// swagger:model Certificate
type Certificate struct {
	UUIDBase
	Name            string  `gorm:"size:191;uniqueIndex;not null" json:"name"`
	Description     *string `gorm:"type:text" json:"description"`
	DifficultyLevel *int    `json:"difficulty_level"`
	Category        *string `gorm:"size:100" json:"category"`
	IsPremium       bool    `gorm:"not null;default:false" json:"is_premium"`
}

func (Certificate) TableName() string {
	return "certificates"
}
