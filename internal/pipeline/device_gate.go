package pipeline

import (
	"context"
	"errors"
	"net/http"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/device"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/services"
)

// DeviceGateStage blocks attempts from anything other than the user's bound
// device. Each failure mode gets its own audit action so the trail
// distinguishes "never bound" from "wrong device".
type DeviceGateStage struct {
	devices  services.DeviceService
	recorder audit.Recorder
}

func NewDeviceGateStage(devices services.DeviceService, recorder audit.Recorder) *DeviceGateStage {
	return &DeviceGateStage{devices: devices, recorder: recorder}
}

func (s *DeviceGateStage) Name() string { return "device-gate" }

func (s *DeviceGateStage) Run(ctx context.Context, pctx Context) (Context, *Failure) {
	userAgent := device.Sanitize(pctx.UserAgent)
	if !device.ValidInfo(userAgent, pctx.Platform) {
		s.audit(ctx, pctx, models.AuditAttendanceFail, map[string]interface{}{
			"reason": "device attributes missing or malformed",
		})
		return pctx, &Failure{
			Status:  http.StatusBadRequest,
			Code:    services.ErrDeviceInfoMissing.Code,
			Message: services.ErrDeviceInfoMissing.Message,
		}
	}

	pctx.Fingerprint = device.Fingerprint(userAgent, pctx.Platform, pctx.Entropy)

	err := s.devices.CheckBinding(ctx, pctx.UserID, device.Info{
		UserAgent: userAgent,
		Platform:  pctx.Platform,
	}, pctx.Entropy)
	if err == nil {
		return pctx, nil
	}

	switch {
	case errors.Is(err, services.ErrDeviceNotBound):
		s.audit(ctx, pctx, models.AuditDeviceNotBound, nil)
		return pctx, failureFrom(services.ErrDeviceNotBound)
	case errors.Is(err, services.ErrDeviceMismatch):
		s.audit(ctx, pctx, models.AuditDeviceMismatch, map[string]interface{}{
			"platform": pctx.Platform,
		})
		return pctx, failureFrom(services.ErrDeviceMismatch)
	default:
		return pctx, internalFailure()
	}
}

func (s *DeviceGateStage) audit(ctx context.Context, pctx Context, action models.AuditAction, details map[string]interface{}) {
	s.recorder.Record(ctx, audit.Entry{
		UserID:    pctx.UserID,
		Action:    action,
		IPAddress: pctx.IPAddress,
		DeviceID:  pctx.Fingerprint,
		Details:   details,
	})
}

func failureFrom(se *services.ServiceError) *Failure {
	return &Failure{
		Status:  se.Status,
		Code:    se.Code,
		Message: se.Message,
	}
}

func internalFailure() *Failure {
	return &Failure{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL",
		Message: "internal server error",
	}
}
