package pipeline

import (
	"context"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/models"
)

// AttemptStage records every attendance attempt before any gate runs, so the
// audit trail holds rejected attempts too. It never fails the pipeline.
type AttemptStage struct {
	recorder audit.Recorder
}

func NewAttemptStage(recorder audit.Recorder) *AttemptStage {
	return &AttemptStage{recorder: recorder}
}

func (s *AttemptStage) Name() string { return "audit-attempt" }

func (s *AttemptStage) Run(ctx context.Context, pctx Context) (Context, *Failure) {
	details := map[string]interface{}{
		"class_code":   pctx.Request.ClassCode,
		"has_location": pctx.Request.Latitude != nil && pctx.Request.Longitude != nil,
		"platform":     pctx.Platform,
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:    pctx.UserID,
		Action:    models.AuditAttendanceAttempt,
		IPAddress: pctx.IPAddress,
		Details:   details,
	})
	return pctx, nil
}
