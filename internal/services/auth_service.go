package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/auth"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/utils"
)

const passwordHashCost = 10

type authService struct {
	repo     repositories.Repository
	jwt      *auth.Manager
	recorder audit.Recorder
	logger   utils.Logger
}

func NewAuthService(repo repositories.Repository, jwtManager *auth.Manager, recorder audit.Recorder, logger utils.Logger) AuthService {
	return &authService{
		repo:     repo,
		jwt:      jwtManager,
		recorder: recorder,
		logger:   logger,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest, meta RequestMeta) (*UserResponse, error) {
	exists, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("email lookup failed: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         models.UserRole(req.Role),
		Password:     string(hash),
		EnrollmentNo: req.EnrollmentNo,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return toUserResponse(user), nil
}

// Login checks credentials and issues a signed token. Failures are recorded
// as unauthorized access against the attempted email's account when it
// exists, or the unknown subject when it does not.
func (s *authService) Login(ctx context.Context, req *LoginRequest, meta RequestMeta) (*LoginResponse, error) {
	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.auditLoginFail(ctx, models.UnknownSubject, meta, "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		s.auditLoginFail(ctx, user.ID, meta, "wrong password")
		return nil, ErrInvalidCredentials
	}

	if req.Role != nil && models.UserRole(*req.Role) != user.Role {
		s.auditLoginFail(ctx, user.ID, meta, "role mismatch")
		return nil, ErrRoleMismatch
	}

	token, err := s.jwt.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:    user.ID,
		Action:    models.AuditLogin,
		IPAddress: meta.IPAddress,
		DeviceID:  meta.DeviceID,
	})

	return &LoginResponse{Token: token, User: toUserResponse(user)}, nil
}

func (s *authService) Logout(ctx context.Context, userID string, meta RequestMeta) {
	s.recorder.Record(ctx, audit.Entry{
		UserID:    userID,
		Action:    models.AuditLogout,
		IPAddress: meta.IPAddress,
		DeviceID:  meta.DeviceID,
	})
}

func (s *authService) GetUser(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	return toUserResponse(user), nil
}

func (s *authService) auditLoginFail(ctx context.Context, userID string, meta RequestMeta, reason string) {
	s.recorder.Record(ctx, audit.Entry{
		UserID:    userID,
		Action:    models.AuditUnauthorizedAccess,
		IPAddress: meta.IPAddress,
		DeviceID:  meta.DeviceID,
		Details:   map[string]interface{}{"reason": reason},
	})
}

func toUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		EnrollmentNo: user.EnrollmentNo,
	}
}
