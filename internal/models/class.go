package models

import "time"

type Class struct {
	ID        string  `json:"id" gorm:"primaryKey;size:255"`
	Name      string  `json:"name" gorm:"not null;size:200"`
	Code      string  `json:"code" gorm:"uniqueIndex;not null;size:32"`
	Room      *string `json:"room" gorm:"size:64"`
	TeacherID string  `json:"teacher_id" gorm:"not null;index;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Teacher User `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
}

func (Class) TableName() string {
	return "classes"
}

// Schedule rows double as the enrollment predicate: a user with a schedule
// row for a class is enrolled in it. The verification pipeline consumes this
// read-only.
type Schedule struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UserID    string `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_schedule_user_class"`
	ClassID   string `json:"class_id" gorm:"not null;size:255;uniqueIndex:idx_schedule_user_class"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time" gorm:"size:8"`
	EndTime   string `json:"end_time" gorm:"size:8"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Class Class `json:"class,omitempty" gorm:"foreignKey:ClassID"`
}

func (Schedule) TableName() string {
	return "schedules"
}
