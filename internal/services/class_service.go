package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/utils"
)

type classService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewClassService(repo repositories.Repository, logger utils.Logger) ClassService {
	return &classService{repo: repo, logger: logger}
}

func (s *classService) Create(ctx context.Context, req *CreateClassRequest, teacherID string, role models.UserRole) (*models.Class, error) {
	if role != models.RoleTeacher && role != models.RoleAdmin {
		return nil, ErrRoleForbidden
	}

	if _, err := s.repo.Class().GetByCode(ctx, req.Code); err == nil {
		return nil, ErrClassExists
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("class lookup failed: %w", err)
	}

	class := &models.Class{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Code:      req.Code,
		Room:      req.Room,
		TeacherID: teacherID,
	}
	if err := s.repo.Class().Create(ctx, class); err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}

	s.logger.Info("class created", "class_id", class.ID, "code", class.Code)
	return class, nil
}

func (s *classService) GetByCode(ctx context.Context, code string) (*models.Class, error) {
	class, err := s.repo.Class().GetByCode(ctx, code)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("class lookup failed: %w", err)
	}
	return class, nil
}

func (s *classService) List(ctx context.Context, filters repositories.ClassFilters) ([]*models.Class, error) {
	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = 100
	}
	return s.repo.Class().List(ctx, filters)
}

// Enroll creates the schedule row that doubles as the enrollment record.
func (s *classService) Enroll(ctx context.Context, req *CreateScheduleRequest, role models.UserRole) (*models.Schedule, error) {
	if role != models.RoleTeacher && role != models.RoleAdmin {
		return nil, ErrRoleForbidden
	}

	if _, err := s.repo.User().GetByID(ctx, req.UserID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	if _, err := s.repo.Class().GetByID(ctx, req.ClassID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("class lookup failed: %w", err)
	}

	schedule := &models.Schedule{
		UserID:    req.UserID,
		ClassID:   req.ClassID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := s.repo.Schedule().Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	return schedule, nil
}

func (s *classService) SchedulesByUser(ctx context.Context, userID string) ([]*models.Schedule, error) {
	return s.repo.Schedule().ListByUser(ctx, userID)
}
