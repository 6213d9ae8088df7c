package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Vasugoli/classTrack/internal/repositories"
)

// PostgresRepository implements the main Repository interface.
type PostgresRepository struct {
	db          *gorm.DB
	redisClient *redis.Client

	user          repositories.UserRepository
	class         repositories.ClassRepository
	schedule      repositories.ScheduleRepository
	attendance    repositories.AttendanceRepository
	deviceBinding repositories.DeviceBindingRepository
	sessionToken  repositories.SessionTokenRepository
	auditLog      repositories.AuditLogRepository
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

func NewPostgresRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgresRepository{
		db:          config.DB,
		redisClient: config.RedisClient,
	}

	repo.user = NewUserPostgres(config.DB)
	repo.class = NewClassPostgres(config.DB, config.RedisClient)
	repo.schedule = NewSchedulePostgres(config.DB)
	repo.attendance = NewAttendancePostgres(config.DB)
	repo.deviceBinding = NewDeviceBindingPostgres(config.DB)
	repo.sessionToken = NewSessionTokenPostgres(config.DB)
	repo.auditLog = NewAuditLogPostgres(config.DB, config.RedisClient)

	return repo
}

func (r *PostgresRepository) User() repositories.UserRepository { return r.user }

func (r *PostgresRepository) Class() repositories.ClassRepository { return r.class }

func (r *PostgresRepository) Schedule() repositories.ScheduleRepository { return r.schedule }

func (r *PostgresRepository) Attendance() repositories.AttendanceRepository { return r.attendance }

func (r *PostgresRepository) DeviceBinding() repositories.DeviceBindingRepository {
	return r.deviceBinding
}

func (r *PostgresRepository) SessionToken() repositories.SessionTokenRepository {
	return r.sessionToken
}

func (r *PostgresRepository) AuditLog() repositories.AuditLogRepository { return r.auditLog }

// WithTransaction executes fn against a Repository bound to one database
// transaction. The transaction's isolation closes the check-then-set race on
// session tokens: a locked token row stays locked until commit or rollback.
func (r *PostgresRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgresRepository{
			db:          tx,
			redisClient: r.redisClient,

			user:          NewUserPostgres(tx),
			class:         NewClassPostgres(tx, r.redisClient),
			schedule:      NewSchedulePostgres(tx),
			attendance:    NewAttendancePostgres(tx),
			deviceBinding: NewDeviceBindingPostgres(tx),
			sessionToken:  NewSessionTokenPostgres(tx),
			auditLog:      NewAuditLogPostgres(tx, r.redisClient),
		}
		return fn(txRepo)
	})
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// repositoryManager implements repositories.RepositoryManager.
type repositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &repositoryManager{config: config}
}

func (m *repositoryManager) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	m.repo = NewPostgresRepository(m.config)
	return nil
}

func (m *repositoryManager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *repositoryManager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repository manager not initialized")
	}
	return m.repo.Ping(ctx)
}

func (m *repositoryManager) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Close()
}
