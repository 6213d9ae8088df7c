// Package pipeline runs the attendance verification chain: an ordered list
// of stages that each inspect the request context and either enrich it or
// reject it. The chain is explicit so the verification order is visible in
// one place rather than scattered across middleware.
package pipeline

import (
	"context"

	"github.com/Vasugoli/classTrack/internal/geo"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/services"
	"github.com/Vasugoli/classTrack/internal/utils"
)

// Context is the request state threaded through the stages. Stages receive
// it by value and return an updated copy; earlier stages never observe a
// later stage's writes.
type Context struct {
	// transport facts
	IPAddress   string
	UserAgent   string
	Platform    string
	Entropy     string
	BearerToken string

	// request payload
	Request *services.MarkAttendanceRequest

	// identity, set by the authenticate stage
	UserID string
	Email  string
	Role   models.UserRole

	// derived device/location facts
	Fingerprint string
	Location    *geo.Location

	// advisory signals, set by the anomaly stage
	Suspicions []string

	// set by the commit stage
	Result *models.Attendance
}

// LocationString renders the sanitized coordinates for audit storage.
func (c Context) LocationString() *string {
	if c.Location == nil {
		return nil
	}
	s := utils.FormatCoordinates(c.Location.Latitude, c.Location.Longitude)
	return &s
}

// Meta projects the context's transport facts for service calls.
func (c Context) Meta() services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.IPAddress,
		DeviceID:  c.Fingerprint,
		Location:  c.LocationString(),
	}
}

// Failure is a terminal rejection from a stage. Code is the stable
// machine-readable value exposed to clients.
type Failure struct {
	Status  int
	Code    string
	Message string
	Details map[string]interface{}
}

// Stage is one verification step.
type Stage interface {
	Name() string
	Run(ctx context.Context, pctx Context) (Context, *Failure)
}

// Pipeline executes stages in order, stopping at the first failure.
type Pipeline struct {
	stages []Stage
	logger utils.Logger
}

func New(logger utils.Logger, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, logger: logger}
}

// Run folds the context through every stage. On failure it returns the
// context as of the failing stage so callers can still read identity and
// location for their response.
func (p *Pipeline) Run(ctx context.Context, pctx Context) (Context, *Failure) {
	for _, stage := range p.stages {
		next, failure := stage.Run(ctx, pctx)
		if failure != nil {
			p.logger.Info("verification rejected",
				"stage", stage.Name(),
				"code", failure.Code,
				"user_id", userOrUnknown(next.UserID),
			)
			return next, failure
		}
		pctx = next
	}
	return pctx, nil
}

func userOrUnknown(userID string) string {
	if userID == "" {
		return models.UnknownSubject
	}
	return userID
}
