package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/utils"
)

type attendanceService struct {
	repo   repositories.Repository
	logger utils.Logger
	now    func() time.Time
}

func NewAttendanceService(repo repositories.Repository, logger utils.Logger) AttendanceService {
	return &attendanceService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Mark runs the verified attendance write. The token row is locked for the
// duration of the transaction, so two attempts racing on the same token
// serialize: the first consumes it, the second sees used=true and fails.
func (s *attendanceService) Mark(ctx context.Context, cmd MarkCommand) (*models.Attendance, error) {
	class, err := s.repo.Class().GetByCode(ctx, cmd.ClassCode)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to resolve class: %w", err)
	}

	status := cmd.Status
	if status == "" {
		status = models.StatusPresent
	}
	markedBy := cmd.MarkedBy
	if markedBy == "" {
		markedBy = cmd.UserID
	}

	var result *models.Attendance
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		token, err := tx.SessionToken().GetByTokenForUpdate(ctx, cmd.Token)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrTokenInvalid
			}
			return fmt.Errorf("failed to load session token: %w", err)
		}

		if token.ClassID != class.ID {
			return ErrTokenClassMismatch
		}
		if token.Used {
			return ErrTokenUsed
		}
		if token.Expired(s.now()) {
			return ErrTokenExpired
		}

		enrolled, err := tx.Schedule().Exists(ctx, cmd.UserID, class.ID)
		if err != nil {
			return fmt.Errorf("enrollment check failed: %w", err)
		}
		if !enrolled {
			return ErrNotEnrolled
		}

		record, err := tx.Attendance().Upsert(ctx, &models.Attendance{
			UserID:   cmd.UserID,
			ClassID:  class.ID,
			Date:     s.now(),
			Status:   status,
			MarkedBy: markedBy,
		})
		if err != nil {
			return fmt.Errorf("failed to write attendance: %w", err)
		}

		if err := tx.SessionToken().MarkUsed(ctx, token.ID); err != nil {
			return fmt.Errorf("failed to consume session token: %w", err)
		}

		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("attendance marked",
		"user_id", cmd.UserID, "class_id", class.ID, "status", result.Status)
	return result, nil
}

func (s *attendanceService) Today(ctx context.Context, userID string) ([]*models.Attendance, error) {
	return s.repo.Attendance().ListForDay(ctx, userID, s.now())
}

func (s *attendanceService) History(ctx context.Context, userID string, filters repositories.AttendanceFilters) ([]*models.Attendance, error) {
	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = 100
	}
	return s.repo.Attendance().ListByUser(ctx, userID, filters)
}

// ByClass is restricted to the class's own teacher, or an admin.
func (s *attendanceService) ByClass(ctx context.Context, classID, requesterID string, role models.UserRole, filters repositories.AttendanceFilters) ([]*models.Attendance, error) {
	class, err := s.repo.Class().GetByID(ctx, classID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to resolve class: %w", err)
	}

	if role != models.RoleAdmin && class.TeacherID != requesterID {
		return nil, ErrNotClassOwner
	}

	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = 100
	}
	return s.repo.Attendance().ListByClass(ctx, classID, filters)
}
