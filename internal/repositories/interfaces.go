package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Vasugoli/classTrack/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type AttendanceFilters struct {
	ClassID  *string    `json:"class_id"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

type AuditLogFilters struct {
	UserID    *string             `json:"user_id"`
	Action    *models.AuditAction `json:"action"`
	DateFrom  *time.Time          `json:"date_from"`
	DateTo    *time.Time          `json:"date_to"`
	IPAddress *string             `json:"ip_address"`
	DeviceID  *string             `json:"device_id"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
}

type ClassFilters struct {
	TeacherID *string `json:"teacher_id"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

// ===== STATISTICS STRUCTS =====

type ActionCount struct {
	Action models.AuditAction `json:"action"`
	Count  int64              `json:"count"`
}

type IPCount struct {
	IPAddress string `json:"ip_address"`
	Count     int64  `json:"count"`
}

type AuditStats struct {
	TotalLogs       int64         `json:"total_logs"`
	RecentLogs      int64         `json:"recent_logs"`
	UniqueUsers     int64         `json:"unique_active_users"`
	FailedAttempts  int64         `json:"failed_attempts"`
	ActionBreakdown []ActionCount `json:"action_breakdown"`
	TopIPAddresses  []IPCount     `json:"top_ip_addresses"`
}

// ===== ENTITY REPOSITORIES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type ClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
	GetByID(ctx context.Context, id string) (*models.Class, error)
	GetByCode(ctx context.Context, code string) (*models.Class, error)
	List(ctx context.Context, filters ClassFilters) ([]*models.Class, error)
}

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	Exists(ctx context.Context, userID, classID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Schedule, error)
}

type AttendanceRepository interface {
	// Upsert inserts or, when a row already exists for (user, class, day),
	// updates its status and marker. Returns the resulting row.
	Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error)
	ListForDay(ctx context.Context, userID string, day time.Time) ([]*models.Attendance, error)
	ListByUser(ctx context.Context, userID string, filters AttendanceFilters) ([]*models.Attendance, error)
	ListByClass(ctx context.Context, classID string, filters AttendanceFilters) ([]*models.Attendance, error)
}

type DeviceBindingRepository interface {
	Create(ctx context.Context, binding *models.DeviceBinding) error
	GetByUser(ctx context.Context, userID string) (*models.DeviceBinding, error)
	ExistsByUser(ctx context.Context, userID string) (bool, error)
	DeleteByUser(ctx context.Context, userID string) error
	List(ctx context.Context) ([]*models.DeviceBinding, error)
}

type SessionTokenRepository interface {
	Create(ctx context.Context, token *models.SessionToken) error
	// GetByTokenForUpdate locks the token row for the remainder of the
	// surrounding transaction; callers must run it via WithTransaction.
	GetByTokenForUpdate(ctx context.Context, token string) (*models.SessionToken, error)
	MarkUsed(ctx context.Context, id uint) error
	DeleteExpiredByClass(ctx context.Context, classID string, now time.Time) (int64, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filters AuditLogFilters) ([]*models.AuditLog, int64, error)
	Stats(ctx context.Context, from, to time.Time) (*AuditStats, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// IsNotFoundError reports whether err means the row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
