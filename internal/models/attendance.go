package models

import "time"

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusAbsent  AttendanceStatus = "ABSENT"
	StatusLate    AttendanceStatus = "LATE"
)

// Attendance is the authoritative per-user-per-class-per-day presence record.
// Date is truncated to day granularity; the composite unique index gives the
// upsert its natural key.
type Attendance struct {
	ID       uint             `json:"id" gorm:"primaryKey"`
	UserID   string           `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_attendance_user_class_date"`
	ClassID  string           `json:"class_id" gorm:"not null;size:255;uniqueIndex:idx_attendance_user_class_date"`
	Date     time.Time        `json:"date" gorm:"not null;uniqueIndex:idx_attendance_user_class_date"`
	Status   AttendanceStatus `json:"status" gorm:"not null;size:16;default:PRESENT"`
	MarkedBy string           `json:"marked_by" gorm:"not null;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Class Class `json:"class,omitempty" gorm:"foreignKey:ClassID"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// DayOf truncates a timestamp to day granularity in its location.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
