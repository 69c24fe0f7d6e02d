package models

import "time"

// EmailVerification keeps track of OTP codes sent during registration.
// Several rows may exist per email; only the most recent unverified one is
// eligible at verification time.
type EmailVerification struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"index" json:"email"`
	OTP       string    `json:"-"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// PasswordReset stores single-use password reset tokens.
type PasswordReset struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"index" json:"email"`
	Token     string    `gorm:"uniqueIndex" json:"-"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}
