package pipeline

import (
	"context"
	"math"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/geo"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/services"
)

// GeoGateStage rejects attempts whose coordinates are absent, malformed or
// outside the campus fence. Violations carry the measured distance in the
// audit trail.
type GeoGateStage struct {
	fence    geo.Fence
	recorder audit.Recorder
}

func NewGeoGateStage(fence geo.Fence, recorder audit.Recorder) *GeoGateStage {
	return &GeoGateStage{fence: fence, recorder: recorder}
}

func (s *GeoGateStage) Name() string { return "geo-gate" }

func (s *GeoGateStage) Run(ctx context.Context, pctx Context) (Context, *Failure) {
	req := pctx.Request
	if req.Latitude == nil || req.Longitude == nil {
		s.auditViolation(ctx, pctx, map[string]interface{}{
			"reason": "coordinates absent",
		})
		return pctx, failureFrom(services.ErrLocationRequired)
	}

	location := geo.Sanitize(*req.Latitude, *req.Longitude)
	if location == nil {
		s.auditViolation(ctx, pctx, map[string]interface{}{
			"reason": "coordinates malformed",
		})
		return pctx, failureFrom(services.ErrInvalidCoordinates)
	}
	pctx.Location = location

	if !s.fence.Contains(*location) {
		distance := s.fence.Distance(*location)
		s.auditViolation(ctx, pctx, map[string]interface{}{
			"distance_meters": math.Round(distance),
			"radius_meters":   s.fence.Radius,
		})
		return pctx, &Failure{
			Status:  services.ErrOutsideCampus.Status,
			Code:    services.ErrOutsideCampus.Code,
			Message: services.ErrOutsideCampus.Message,
			Details: map[string]interface{}{
				"distance_meters": math.Round(distance),
			},
		}
	}
	return pctx, nil
}

func (s *GeoGateStage) auditViolation(ctx context.Context, pctx Context, details map[string]interface{}) {
	s.recorder.Record(ctx, audit.Entry{
		UserID:    pctx.UserID,
		Action:    models.AuditGeoViolation,
		IPAddress: pctx.IPAddress,
		DeviceID:  pctx.Fingerprint,
		Location:  pctx.LocationString(),
		Details:   details,
	})
}
