package pipeline

import (
	"context"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/services"
)

// CommitStage performs the transactional attendance write once every gate
// has passed, and records the terminal success or failure audit entry.
type CommitStage struct {
	attendance services.AttendanceService
	recorder   audit.Recorder
}

func NewCommitStage(attendance services.AttendanceService, recorder audit.Recorder) *CommitStage {
	return &CommitStage{attendance: attendance, recorder: recorder}
}

func (s *CommitStage) Name() string { return "commit" }

func (s *CommitStage) Run(ctx context.Context, pctx Context) (Context, *Failure) {
	status := models.StatusPresent
	if pctx.Request.Status != nil {
		status = models.AttendanceStatus(*pctx.Request.Status)
	}

	record, err := s.attendance.Mark(ctx, services.MarkCommand{
		UserID:    pctx.UserID,
		ClassCode: pctx.Request.ClassCode,
		Token:     pctx.Request.Token,
		Status:    status,
		MarkedBy:  pctx.UserID,
	})
	if err != nil {
		se, ok := services.AsServiceError(err)
		if !ok {
			s.audit(ctx, pctx, models.AuditAttendanceFail, map[string]interface{}{
				"reason": "internal error",
			})
			return pctx, internalFailure()
		}

		s.audit(ctx, pctx, auditActionFor(se), map[string]interface{}{
			"code":       se.Code,
			"class_code": pctx.Request.ClassCode,
		})
		return pctx, failureFrom(se)
	}

	pctx.Result = record
	s.audit(ctx, pctx, models.AuditAttendanceSuccess, map[string]interface{}{
		"class_id": record.ClassID,
		"status":   record.Status,
	})
	return pctx, nil
}

func (s *CommitStage) audit(ctx context.Context, pctx Context, action models.AuditAction, details map[string]interface{}) {
	s.recorder.Record(ctx, audit.Entry{
		UserID:    pctx.UserID,
		Action:    action,
		IPAddress: pctx.IPAddress,
		DeviceID:  pctx.Fingerprint,
		Location:  pctx.LocationString(),
		Details:   details,
	})
}

// auditActionFor picks the dedicated audit action for token failures;
// everything else records a generic attendance failure.
func auditActionFor(se *services.ServiceError) models.AuditAction {
	switch se {
	case services.ErrTokenInvalid, services.ErrTokenClassMismatch:
		return models.AuditTokenInvalid
	case services.ErrTokenExpired:
		return models.AuditTokenExpired
	case services.ErrTokenUsed:
		return models.AuditTokenUsed
	default:
		return models.AuditAttendanceFail
	}
}
