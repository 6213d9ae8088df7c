package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Vasugoli/classTrack/internal/cache"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
)

type ClassPostgres struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewClassPostgres(db *gorm.DB, redisClient *redis.Client) repositories.ClassRepository {
	return &ClassPostgres{
		db:    db,
		cache: cache.NewCacheHelper(redisClient, cache.ClassCacheConfig.Prefix),
	}
}

func (c *ClassPostgres) Create(ctx context.Context, class *models.Class) error {
	if err := c.db.WithContext(ctx).Create(class).Error; err != nil {
		return err
	}
	_ = c.cache.Delete(ctx, fmt.Sprintf("code:%s", class.Code))
	return nil
}

func (c *ClassPostgres) GetByID(ctx context.Context, id string) (*models.Class, error) {
	var class models.Class
	if err := c.db.WithContext(ctx).First(&class, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

// GetByCode resolves a class by its human code. Every attendance mark goes
// through this lookup, so results are cached briefly.
func (c *ClassPostgres) GetByCode(ctx context.Context, code string) (*models.Class, error) {
	cacheKey := fmt.Sprintf("code:%s", code)
	var class models.Class

	err := c.cache.CacheOrExecute(ctx, cacheKey, &class, cache.ClassCacheConfig.TTL, func() (interface{}, error) {
		var dbClass models.Class
		if err := c.db.WithContext(ctx).First(&dbClass, "code = ?", code).Error; err != nil {
			return nil, err
		}
		return &dbClass, nil
	})
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (c *ClassPostgres) List(ctx context.Context, filters repositories.ClassFilters) ([]*models.Class, error) {
	var classes []*models.Class
	query := c.db.WithContext(ctx).Model(&models.Class{})

	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("name asc").Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}
