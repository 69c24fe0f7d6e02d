package models

// User is a registered farmer account.
type User struct {
	BaseModel
	Username          string `gorm:"uniqueIndex" json:"username"`
	Email             string `gorm:"uniqueIndex" json:"email"`
	PasswordHash      string `json:"-"`
	PreferredLanguage string `gorm:"default:en" json:"preferred_language"`
	Location          string `json:"location"`
	IsEmailVerified   bool   `json:"is_email_verified"`
	Chats             []Chat `json:"chats,omitempty"`
}
