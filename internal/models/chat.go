package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultChatTitle is the sentinel title a chat keeps until its first
// exchange triggers auto-titling.
const DefaultChatTitle = "New Chat"

// Chat is a titled conversation owned by one user.
type Chat struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Title    string    `gorm:"default:'New Chat'" json:"title"`
	Messages []Message `gorm:"constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// Message is a single turn in a chat. The integer primary key doubles as the
// insertion-order tie-break when creation timestamps collide.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;index" json:"chat_id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"is_user"`
	CreatedAt time.Time `json:"created_at"`
}
