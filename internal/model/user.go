package model

type UserRole string

const (
	Learner UserRole = "learner"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	UUIDBase
	Email                string   `gorm:"size:191;uniqueIndex;not null" json:"email"`
	PasswordHash         string   `gorm:"size:100;not null" json:"-"`
	Name                 string   `gorm:"size:100;not null" json:"name"`
	Bio                  *string  `gorm:"type:text" json:"bio"`
	Language             string   `gorm:"size:10;not null;default:'ko'" json:"language"`
	Theme                string   `gorm:"size:20;not null;default:'dark'" json:"theme"`
	EmailNotifications   bool     `gorm:"not null;default:true" json:"email_notifications"`
	PushNotifications    bool     `gorm:"not null;default:true" json:"push_notifications"`
	MarketingEmails      bool     `gorm:"not null;default:false" json:"marketing_emails"`
	TwoFactorAuthEnabled bool     `gorm:"not null;default:false" json:"two_factor_auth_enabled"`
	Role                 UserRole `gorm:"size:20;not null;default:'learner'" json:"role"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == Admin
}
