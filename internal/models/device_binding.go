package models

import "time"

// DeviceBinding associates a user with exactly one device. DeviceHash is a
// bcrypt hash of the device fingerprint; the raw fingerprint is never
// persisted. The unique index on UserID enforces at most one binding per
// user.
type DeviceBinding struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	UserID     string `json:"user_id" gorm:"uniqueIndex;not null;size:255"`
	DeviceHash string `json:"-" gorm:"not null;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (DeviceBinding) TableName() string {
	return "device_bindings"
}
