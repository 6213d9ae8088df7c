package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
)

type SchedulePostgres struct {
	db *gorm.DB
}

func NewSchedulePostgres(db *gorm.DB) repositories.ScheduleRepository {
	return &SchedulePostgres{db: db}
}

func (s *SchedulePostgres) Create(ctx context.Context, schedule *models.Schedule) error {
	return s.db.WithContext(ctx).Create(schedule).Error
}

func (s *SchedulePostgres) Exists(ctx context.Context, userID, classID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Schedule{}).
		Where("user_id = ? AND class_id = ?", userID, classID).
		Count(&count).Error
	return count > 0, err
}

func (s *SchedulePostgres) ListByUser(ctx context.Context, userID string) ([]*models.Schedule, error) {
	var schedules []*models.Schedule
	err := s.db.WithContext(ctx).
		Preload("Class").
		Where("user_id = ?", userID).
		Order("day_of_week asc, start_time asc").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}
