package validator

// RegisterRequest creates a new user account.
type RegisterRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Email        string  `json:"email" validate:"required,email,max=255"`
	Password     string  `json:"password" validate:"required,min=8,max=128"`
	Role         string  `json:"role" validate:"required,oneof=STUDENT TEACHER ADMIN"`
	EnrollmentNo *string `json:"enrollment_no" validate:"omitempty,max=64"`
}

// LoginRequest authenticates an existing account. Role is optional; when a
// client declares one it must match the stored role.
type LoginRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Role     *string `json:"role" validate:"omitempty,oneof=STUDENT TEACHER ADMIN"`
}

// MarkAttendanceRequest is the payload of an attendance marking attempt.
// Latitude and longitude are pointers so a missing location is
// distinguishable from coordinate (0, 0).
type MarkAttendanceRequest struct {
	ClassCode string   `json:"classCode" validate:"required,class_code"`
	Token     string   `json:"token" validate:"required,min=16,max=128"`
	Status    *string  `json:"status" validate:"omitempty,attendance_status"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// DeviceBindRequest declares the attributes of the device being bound.
type DeviceBindRequest struct {
	UserAgent         string `json:"userAgent" validate:"required,min=10,max=2000"`
	Platform          string `json:"platform" validate:"required,platform"`
	AdditionalEntropy string `json:"additionalEntropy" validate:"omitempty,max=512"`
}

type IssueTokenRequest struct {
	ClassID          string `json:"classId" validate:"required"`
	ExpiresInSeconds *int   `json:"expiresInSeconds" validate:"omitempty,token_ttl"`
}

type CreateClassRequest struct {
	Name string  `json:"name" validate:"required,min=2,max=200"`
	Code string  `json:"code" validate:"required,class_code"`
	Room *string `json:"room" validate:"omitempty,max=64"`
}

// CreateScheduleRequest enrolls a user into a class slot.
type CreateScheduleRequest struct {
	UserID    string `json:"userId" validate:"required"`
	ClassID   string `json:"classId" validate:"required"`
	DayOfWeek int    `json:"dayOfWeek" validate:"min=0,max=6"`
	StartTime string `json:"startTime" validate:"required,time_hhmm"`
	EndTime   string `json:"endTime" validate:"required,time_hhmm"`
}

// AuditCleanupRequest controls the retention window for log pruning.
type AuditCleanupRequest struct {
	RetentionDays *int `json:"retentionDays" validate:"omitempty,min=1,max=3650"`
}
