package repositories

import "context"

// Repository aggregates the per-entity repositories behind one handle.
type Repository interface {
	User() UserRepository
	Class() ClassRepository
	Schedule() ScheduleRepository
	Attendance() AttendanceRepository
	DeviceBinding() DeviceBindingRepository
	SessionToken() SessionTokenRepository
	AuditLog() AuditLogRepository

	// WithTransaction runs fn against a Repository bound to a single
	// database transaction; fn returning an error rolls everything back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns the Repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
