package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
)

type AttendancePostgres struct {
	db *gorm.DB
}

func NewAttendancePostgres(db *gorm.DB) repositories.AttendanceRepository {
	return &AttendancePostgres{db: db}
}

// Upsert inserts a record or, when one already exists for the same
// (user, class, day), overwrites its status and marker.
func (a *AttendancePostgres) Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error) {
	record.Date = models.DayOf(record.Date)

	err := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "class_id"},
				{Name: "date"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"status", "marked_by", "updated_at"}),
		}).
		Create(record).Error
	if err != nil {
		return nil, err
	}

	// Re-read by natural key so the caller always sees the persisted row,
	// including the ID of a pre-existing record the conflict path updated.
	var result models.Attendance
	err = a.db.WithContext(ctx).
		Where("user_id = ? AND class_id = ? AND date = ?", record.UserID, record.ClassID, record.Date).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *AttendancePostgres) ListForDay(ctx context.Context, userID string, day time.Time) ([]*models.Attendance, error) {
	var records []*models.Attendance
	err := a.db.WithContext(ctx).
		Preload("Class").
		Where("user_id = ? AND date = ?", userID, models.DayOf(day)).
		Order("created_at desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *AttendancePostgres) ListByUser(ctx context.Context, userID string, filters repositories.AttendanceFilters) ([]*models.Attendance, error) {
	query := a.db.WithContext(ctx).
		Preload("Class").
		Where("user_id = ?", userID)
	query = applyAttendanceFilters(query, filters)

	var records []*models.Attendance
	if err := query.Order("date desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (a *AttendancePostgres) ListByClass(ctx context.Context, classID string, filters repositories.AttendanceFilters) ([]*models.Attendance, error) {
	query := a.db.WithContext(ctx).
		Preload("User").
		Where("class_id = ?", classID)
	query = applyAttendanceFilters(query, filters)

	var records []*models.Attendance
	if err := query.Order("date desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func applyAttendanceFilters(query *gorm.DB, filters repositories.AttendanceFilters) *gorm.DB {
	if filters.ClassID != nil {
		query = query.Where("class_id = ?", *filters.ClassID)
	}
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", models.DayOf(*filters.DateFrom))
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", models.DayOf(*filters.DateTo))
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
