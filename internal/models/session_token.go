package models

import "time"

// Token lifetime bounds in seconds.
const (
	MinTokenTTLSeconds     = 30
	MaxTokenTTLSeconds     = 300
	DefaultTokenTTLSeconds = 60
)

// SessionToken is a teacher-issued, single-use, short-lived secret that
// authorizes attendance marking for one class. It transitions unused → used
// exactly once, atomically with the attendance write it authorizes.
type SessionToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ClassID   string    `json:"class_id" gorm:"not null;index;size:255"`
	Token     string    `json:"token" gorm:"uniqueIndex;not null;size:128"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Used      bool      `json:"used" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Class Class `json:"class,omitempty" gorm:"foreignKey:ClassID"`
}

func (SessionToken) TableName() string {
	return "session_tokens"
}

func (t *SessionToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
