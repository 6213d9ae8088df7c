package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/utils"
)

const tokenBytes = 32

type tokenService struct {
	repo     repositories.Repository
	recorder audit.Recorder
	logger   utils.Logger
	now      func() time.Time
}

func NewTokenService(repo repositories.Repository, recorder audit.Recorder, logger utils.Logger) TokenService {
	return &tokenService{
		repo:     repo,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Issue creates a single-use session token for a class. Teachers may only
// issue for their own classes; admins for any. Expired and consumed tokens
// for the class are purged opportunistically.
func (s *tokenService) Issue(ctx context.Context, req *IssueTokenRequest, issuerID string, role models.UserRole, meta RequestMeta) (*TokenResponse, error) {
	if role != models.RoleTeacher && role != models.RoleAdmin {
		return nil, ErrRoleForbidden
	}

	class, err := s.repo.Class().GetByID(ctx, req.ClassID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to resolve class: %w", err)
	}
	if role == models.RoleTeacher && class.TeacherID != issuerID {
		return nil, ErrNotClassOwner
	}

	ttl := models.DefaultTokenTTLSeconds
	if req.ExpiresInSeconds != nil {
		ttl = *req.ExpiresInSeconds
	}

	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	token := &models.SessionToken{
		ClassID:   class.ID,
		Token:     hex.EncodeToString(raw),
		ExpiresAt: s.now().Add(time.Duration(ttl) * time.Second),
	}
	if err := s.repo.SessionToken().Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	if purged, err := s.repo.SessionToken().DeleteExpiredByClass(ctx, class.ID, s.now()); err != nil {
		s.logger.Warn("token purge failed", "class_id", class.ID, "error", err)
	} else if purged > 0 {
		s.logger.Debug("purged stale tokens", "class_id", class.ID, "count", purged)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:    issuerID,
		Action:    models.AuditTokenIssued,
		IPAddress: meta.IPAddress,
		DeviceID:  meta.DeviceID,
		Details: map[string]interface{}{
			"class_id":   class.ID,
			"expires_at": token.ExpiresAt,
		},
	})

	return &TokenResponse{
		Token:     token.Token,
		ClassID:   class.ID,
		ExpiresAt: token.ExpiresAt,
	}, nil
}
