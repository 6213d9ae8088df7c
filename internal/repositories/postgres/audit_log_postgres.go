package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Vasugoli/classTrack/internal/cache"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
)

const topIPLimit = 10

type AuditLogPostgres struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewAuditLogPostgres(db *gorm.DB, redisClient *redis.Client) repositories.AuditLogRepository {
	return &AuditLogPostgres{
		db:    db,
		cache: cache.NewCacheHelper(redisClient, cache.StatsCacheConfig.Prefix),
	}
}

func (a *AuditLogPostgres) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return a.db.WithContext(ctx).Create(entry).Error
}

// List returns a page of audit entries plus the total count matching the
// filters, newest first.
func (a *AuditLogPostgres) List(ctx context.Context, filters repositories.AuditLogFilters) ([]*models.AuditLog, int64, error) {
	query := applyAuditFilters(a.db.WithContext(ctx).Model(&models.AuditLog{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var entries []*models.AuditLog
	if err := query.Order("timestamp desc").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Stats aggregates the audit table for the admin dashboard. Results are
// cached briefly since the aggregation scans the whole window.
func (a *AuditLogPostgres) Stats(ctx context.Context, from, to time.Time) (*repositories.AuditStats, error) {
	stats := &repositories.AuditStats{}
	cacheKey := fmt.Sprintf("audit:%d:%d", from.Unix(), to.Unix())

	err := a.cache.CacheOrExecute(ctx, cacheKey, stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return a.computeStats(ctx, from, to)
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (a *AuditLogPostgres) computeStats(ctx context.Context, from, to time.Time) (*repositories.AuditStats, error) {
	stats := &repositories.AuditStats{}
	base := a.db.WithContext(ctx).Model(&models.AuditLog{})
	window := "timestamp >= ? AND timestamp <= ?"

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalLogs).Error; err != nil {
		return nil, err
	}

	if err := base.Session(&gorm.Session{}).
		Where(window, from, to).
		Count(&stats.RecentLogs).Error; err != nil {
		return nil, err
	}

	if err := base.Session(&gorm.Session{}).
		Where(window, from, to).
		Where("user_id <> ?", models.UnknownSubject).
		Distinct("user_id").
		Count(&stats.UniqueUsers).Error; err != nil {
		return nil, err
	}

	if err := base.Session(&gorm.Session{}).
		Where(window, from, to).
		Where("action IN ?", models.FailureActions).
		Count(&stats.FailedAttempts).Error; err != nil {
		return nil, err
	}

	if err := base.Session(&gorm.Session{}).
		Select("action, COUNT(*) as count").
		Where(window, from, to).
		Group("action").
		Order("count desc").
		Scan(&stats.ActionBreakdown).Error; err != nil {
		return nil, err
	}

	if err := base.Session(&gorm.Session{}).
		Select("ip_address, COUNT(*) as count").
		Where(window, from, to).
		Where("ip_address <> ''").
		Group("ip_address").
		Order("count desc").
		Limit(topIPLimit).
		Scan(&stats.TopIPAddresses).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (a *AuditLogPostgres) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := a.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}

func applyAuditFilters(query *gorm.DB, filters repositories.AuditLogFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}
	if filters.IPAddress != nil {
		query = query.Where("ip_address = ?", *filters.IPAddress)
	}
	if filters.DeviceID != nil {
		query = query.Where("device_id = ?", *filters.DeviceID)
	}
	if filters.DateFrom != nil {
		query = query.Where("timestamp >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("timestamp <= ?", *filters.DateTo)
	}
	return query
}
