package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditLogin          AuditAction = "LOGIN"
	AuditLogout         AuditAction = "LOGOUT"
	AuditDeviceBind     AuditAction = "DEVICE_BIND"
	AuditDeviceBindFail AuditAction = "DEVICE_BIND_FAIL"
	AuditDeviceUnbind   AuditAction = "DEVICE_UNBIND"

	AuditAttendanceAttempt AuditAction = "ATTENDANCE_ATTEMPT"
	AuditAttendanceSuccess AuditAction = "ATTENDANCE_SUCCESS"
	AuditAttendanceFail    AuditAction = "ATTENDANCE_FAIL"

	AuditDeviceNotBound AuditAction = "DEVICE_NOT_BOUND"
	AuditDeviceMismatch AuditAction = "DEVICE_MISMATCH"
	AuditGeoViolation   AuditAction = "GEO_VIOLATION"

	AuditTokenIssued  AuditAction = "TOKEN_ISSUED"
	AuditTokenInvalid AuditAction = "TOKEN_INVALID"
	AuditTokenExpired AuditAction = "TOKEN_EXPIRED"
	AuditTokenUsed    AuditAction = "TOKEN_USED"

	AuditUnauthorizedAccess AuditAction = "UNAUTHORIZED_ACCESS"
	AuditSuspiciousActivity AuditAction = "SUSPICIOUS_ACTIVITY"

	AuditExport  AuditAction = "AUDIT_EXPORT"
	AuditCleanup AuditAction = "AUDIT_CLEANUP"
)

// AuditActions lists every recognized action, in a stable order, for the
// admin filter surface.
var AuditActions = []AuditAction{
	AuditLogin, AuditLogout,
	AuditDeviceBind, AuditDeviceBindFail, AuditDeviceUnbind,
	AuditAttendanceAttempt, AuditAttendanceSuccess, AuditAttendanceFail,
	AuditDeviceNotBound, AuditDeviceMismatch, AuditGeoViolation,
	AuditTokenIssued, AuditTokenInvalid, AuditTokenExpired, AuditTokenUsed,
	AuditUnauthorizedAccess, AuditSuspiciousActivity,
	AuditExport, AuditCleanup,
}

// FailureActions are the actions counted as security failures in stats.
var FailureActions = []AuditAction{
	AuditAttendanceFail, AuditDeviceBindFail, AuditDeviceNotBound,
	AuditDeviceMismatch, AuditGeoViolation, AuditTokenInvalid,
	AuditTokenExpired, AuditTokenUsed, AuditUnauthorizedAccess,
	AuditSuspiciousActivity,
}

// UnknownSubject is the sentinel user id recorded for security decisions
// taken before an identity is confirmed.
const UnknownSubject = "unknown"

// AuditLog is append-only. Rows are never updated; deletion happens only
// through the administrative retention cleanup.
type AuditLog struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    string         `json:"user_id" gorm:"not null;index;size:255"`
	Action    AuditAction    `json:"action" gorm:"not null;index;size:32"`
	IPAddress string         `json:"ip_address" gorm:"size:64"`
	DeviceID  string         `json:"device_id" gorm:"size:255"`
	Location  *string        `json:"location" gorm:"size:128"`
	Details   datatypes.JSON `json:"details" gorm:"type:jsonb"`
	Timestamp time.Time      `json:"timestamp" gorm:"not null;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
