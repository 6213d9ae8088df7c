package services

import (
	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/auth"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/utils"
)

type serviceManager struct {
	authService       AuthService
	attendanceService AttendanceService
	tokenService      TokenService
	deviceService     DeviceService
	classService      ClassService
	auditService      AuditService
}

// NewServiceManager wires every service over the shared repository, audit
// recorder and token manager.
func NewServiceManager(repo repositories.Repository, jwtManager *auth.Manager, recorder audit.Recorder, logger utils.Logger) ServiceManager {
	return &serviceManager{
		authService:       NewAuthService(repo, jwtManager, recorder, logger),
		attendanceService: NewAttendanceService(repo, logger),
		tokenService:      NewTokenService(repo, recorder, logger),
		deviceService:     NewDeviceService(repo, recorder, logger),
		classService:      NewClassService(repo, logger),
		auditService:      NewAuditService(repo, recorder, logger),
	}
}

func (m *serviceManager) Auth() AuthService             { return m.authService }
func (m *serviceManager) Attendance() AttendanceService { return m.attendanceService }
func (m *serviceManager) Token() TokenService           { return m.tokenService }
func (m *serviceManager) Device() DeviceService         { return m.deviceService }
func (m *serviceManager) Class() ClassService           { return m.classService }
func (m *serviceManager) Audit() AuditService           { return m.auditService }
