package services

import (
	"context"
	"io"
	"time"

	"github.com/Vasugoli/classTrack/internal/device"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type MarkAttendanceRequest = validator.MarkAttendanceRequest
type DeviceBindRequest = validator.DeviceBindRequest
type IssueTokenRequest = validator.IssueTokenRequest
type CreateClassRequest = validator.CreateClassRequest
type CreateScheduleRequest = validator.CreateScheduleRequest
type AuditCleanupRequest = validator.AuditCleanupRequest

type UserResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Role         models.UserRole `json:"role"`
	EnrollmentNo *string         `json:"enrollment_no,omitempty"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ClassID   string    `json:"class_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type DeviceBindingResponse struct {
	UserID  string    `json:"user_id"`
	BoundAt time.Time `json:"bound_at"`
}

type DeviceStatusResponse struct {
	Bound   bool       `json:"bound"`
	BoundAt *time.Time `json:"bound_at,omitempty"`
}

// RequestMeta carries the transport-level facts audit entries record.
type RequestMeta struct {
	IPAddress string
	DeviceID  string
	Location  *string
}

// MarkCommand is the fully verified input to the attendance write. The
// pipeline assembles it after the gates pass.
type MarkCommand struct {
	UserID    string
	ClassCode string
	Token     string
	Status    models.AttendanceStatus
	MarkedBy  string
}

type AuditLogPage struct {
	Entries []*models.AuditLog `json:"logs"`
	Total   int64              `json:"total"`
	Limit   int                `json:"limit"`
	Offset  int                `json:"offset"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest, meta RequestMeta) (*UserResponse, error)
	Login(ctx context.Context, req *LoginRequest, meta RequestMeta) (*LoginResponse, error)
	Logout(ctx context.Context, userID string, meta RequestMeta)
	GetUser(ctx context.Context, userID string) (*UserResponse, error)
}

type AttendanceService interface {
	// Mark performs the transactional attendance write: lock the session
	// token, validate it against the class, check enrollment, upsert the
	// day's record and consume the token, all atomically.
	Mark(ctx context.Context, cmd MarkCommand) (*models.Attendance, error)
	Today(ctx context.Context, userID string) ([]*models.Attendance, error)
	History(ctx context.Context, userID string, filters repositories.AttendanceFilters) ([]*models.Attendance, error)
	ByClass(ctx context.Context, classID, requesterID string, role models.UserRole, filters repositories.AttendanceFilters) ([]*models.Attendance, error)
}

type TokenService interface {
	Issue(ctx context.Context, req *IssueTokenRequest, issuerID string, role models.UserRole, meta RequestMeta) (*TokenResponse, error)
}

type DeviceService interface {
	Bind(ctx context.Context, userID string, req *DeviceBindRequest, meta RequestMeta) (*DeviceBindingResponse, error)
	Status(ctx context.Context, userID string) (*DeviceStatusResponse, error)
	// CheckBinding verifies the request's device against the stored binding.
	// Returns ErrDeviceNotBound or ErrDeviceMismatch on failure.
	CheckBinding(ctx context.Context, userID string, info device.Info, entropy string) error
	Unbind(ctx context.Context, targetUserID, actorID string, meta RequestMeta) error
	List(ctx context.Context) ([]*models.DeviceBinding, error)
}

type ClassService interface {
	Create(ctx context.Context, req *CreateClassRequest, teacherID string, role models.UserRole) (*models.Class, error)
	GetByCode(ctx context.Context, code string) (*models.Class, error)
	List(ctx context.Context, filters repositories.ClassFilters) ([]*models.Class, error)
	Enroll(ctx context.Context, req *CreateScheduleRequest, role models.UserRole) (*models.Schedule, error)
	SchedulesByUser(ctx context.Context, userID string) ([]*models.Schedule, error)
}

type AuditService interface {
	Logs(ctx context.Context, filters repositories.AuditLogFilters) (*AuditLogPage, error)
	Stats(ctx context.Context, window time.Duration) (*repositories.AuditStats, error)
	Actions() []models.AuditAction
	ExportCSV(ctx context.Context, filters repositories.AuditLogFilters, actorID string, meta RequestMeta, w io.Writer) error
	ExportXLSX(ctx context.Context, filters repositories.AuditLogFilters, actorID string, meta RequestMeta, w io.Writer) error
	Cleanup(ctx context.Context, req *AuditCleanupRequest, actorID string, meta RequestMeta) (int64, error)
}

// ServiceManager wires the services over shared dependencies.
type ServiceManager interface {
	Auth() AuthService
	Attendance() AttendanceService
	Token() TokenService
	Device() DeviceService
	Class() ClassService
	Audit() AuditService
}
