package services

import (
	"context"
	"fmt"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/device"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/utils"
)

type deviceService struct {
	repo     repositories.Repository
	recorder audit.Recorder
	logger   utils.Logger
}

func NewDeviceService(repo repositories.Repository, recorder audit.Recorder, logger utils.Logger) DeviceService {
	return &deviceService{
		repo:     repo,
		recorder: recorder,
		logger:   logger,
	}
}

// Bind stores a one-way hash of the device fingerprint against the user.
// A user can hold at most one binding; a second bind attempt conflicts.
func (s *deviceService) Bind(ctx context.Context, userID string, req *DeviceBindRequest, meta RequestMeta) (*DeviceBindingResponse, error) {
	userAgent := device.Sanitize(req.UserAgent)
	if !device.ValidInfo(userAgent, req.Platform) {
		s.auditBindFail(ctx, userID, meta, "invalid device attributes")
		return nil, ErrDeviceInfoMissing
	}

	exists, err := s.repo.DeviceBinding().ExistsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("binding lookup failed: %w", err)
	}
	if exists {
		s.auditBindFail(ctx, userID, meta, "already bound")
		return nil, ErrDeviceAlreadyBound
	}

	fingerprint := device.Fingerprint(userAgent, req.Platform, req.AdditionalEntropy)
	hash, err := device.BindHash(fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to hash fingerprint: %w", err)
	}

	binding := &models.DeviceBinding{
		UserID:     userID,
		DeviceHash: hash,
	}
	if err := s.repo.DeviceBinding().Create(ctx, binding); err != nil {
		s.auditBindFail(ctx, userID, meta, "storage failure")
		return nil, fmt.Errorf("failed to store binding: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:    userID,
		Action:    models.AuditDeviceBind,
		IPAddress: meta.IPAddress,
		DeviceID:  meta.DeviceID,
		Details:   map[string]interface{}{"platform": req.Platform},
	})
	s.logger.Info("device bound", "user_id", userID, "platform", req.Platform)

	return &DeviceBindingResponse{
		UserID:  binding.UserID,
		BoundAt: binding.CreatedAt,
	}, nil
}

func (s *deviceService) Status(ctx context.Context, userID string) (*DeviceStatusResponse, error) {
	binding, err := s.repo.DeviceBinding().GetByUser(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &DeviceStatusResponse{Bound: false}, nil
		}
		return nil, fmt.Errorf("binding lookup failed: %w", err)
	}
	boundAt := binding.CreatedAt
	return &DeviceStatusResponse{Bound: true, BoundAt: &boundAt}, nil
}

// CheckBinding verifies the declared device against the stored hash.
func (s *deviceService) CheckBinding(ctx context.Context, userID string, info device.Info, entropy string) error {
	binding, err := s.repo.DeviceBinding().GetByUser(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDeviceNotBound
		}
		return fmt.Errorf("binding lookup failed: %w", err)
	}

	fingerprint := device.Fingerprint(info.UserAgent, info.Platform, entropy)
	if !device.Verify(fingerprint, binding.DeviceHash) {
		return ErrDeviceMismatch
	}
	return nil
}

// Unbind removes a user's binding. Admin-only; the handler enforces the role.
func (s *deviceService) Unbind(ctx context.Context, targetUserID, actorID string, meta RequestMeta) error {
	exists, err := s.repo.DeviceBinding().ExistsByUser(ctx, targetUserID)
	if err != nil {
		return fmt.Errorf("binding lookup failed: %w", err)
	}
	if !exists {
		return ErrDeviceBindingAbsent
	}

	if err := s.repo.DeviceBinding().DeleteByUser(ctx, targetUserID); err != nil {
		return fmt.Errorf("failed to delete binding: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:    actorID,
		Action:    models.AuditDeviceUnbind,
		IPAddress: meta.IPAddress,
		DeviceID:  meta.DeviceID,
		Details:   map[string]interface{}{"target_user_id": targetUserID},
	})
	return nil
}

func (s *deviceService) List(ctx context.Context) ([]*models.DeviceBinding, error) {
	return s.repo.DeviceBinding().List(ctx)
}

func (s *deviceService) auditBindFail(ctx context.Context, userID string, meta RequestMeta, reason string) {
	s.recorder.Record(ctx, audit.Entry{
		UserID:    userID,
		Action:    models.AuditDeviceBindFail,
		IPAddress: meta.IPAddress,
		DeviceID:  meta.DeviceID,
		Details:   map[string]interface{}{"reason": reason},
	})
}
