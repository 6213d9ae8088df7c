package pipeline

import (
	"context"
	"net/http"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/auth"
	"github.com/Vasugoli/classTrack/internal/models"
)

// AuthenticateStage resolves the caller's identity from the bearer token.
// Rejections are audited against the unknown subject since no identity is
// confirmed yet.
type AuthenticateStage struct {
	jwt      *auth.Manager
	recorder audit.Recorder
}

func NewAuthenticateStage(jwtManager *auth.Manager, recorder audit.Recorder) *AuthenticateStage {
	return &AuthenticateStage{jwt: jwtManager, recorder: recorder}
}

func (s *AuthenticateStage) Name() string { return "authenticate" }

func (s *AuthenticateStage) Run(ctx context.Context, pctx Context) (Context, *Failure) {
	if pctx.BearerToken == "" {
		return pctx, s.reject(ctx, pctx, "no credentials presented")
	}

	claims, err := s.jwt.Parse(pctx.BearerToken)
	if err != nil {
		return pctx, s.reject(ctx, pctx, "token rejected")
	}

	pctx.UserID = claims.Subject
	pctx.Email = claims.Email
	pctx.Role = claims.Role
	return pctx, nil
}

func (s *AuthenticateStage) reject(ctx context.Context, pctx Context, reason string) *Failure {
	s.recorder.Record(ctx, audit.Entry{
		UserID:    models.UnknownSubject,
		Action:    models.AuditUnauthorizedAccess,
		IPAddress: pctx.IPAddress,
		Details:   map[string]interface{}{"reason": reason},
	})
	return &Failure{
		Status:  http.StatusUnauthorized,
		Code:    "AUTH_REQUIRED",
		Message: "authentication required",
	}
}
