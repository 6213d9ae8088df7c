package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/auth"
	"github.com/Vasugoli/classTrack/internal/config"
	"github.com/Vasugoli/classTrack/internal/geo"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/pipeline"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/services"
	"github.com/Vasugoli/classTrack/internal/utils"
	"github.com/Vasugoli/classTrack/internal/validator"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	attendanceHandler *AttendanceHandler
	deviceHandler     *DeviceHandler
	classHandler      *ClassHandler
	auditHandler      *AuditHandler
	authMiddleware    *JWTAuthMiddleware
	repoManager       repositories.RepositoryManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	jwtManager *auth.Manager,
	recorder audit.Recorder,
	v *validator.Validator,
	logger utils.Logger,
	cfg *config.Config,
	repoManager repositories.RepositoryManager,
) *HandlerManager {
	fence := geo.NewFence(cfg.Geo)

	verification := pipeline.New(logger,
		pipeline.NewAuthenticateStage(jwtManager, recorder),
		pipeline.NewAttemptStage(recorder),
		pipeline.NewAnomalyStage(recorder, cfg.IsProduction()),
		pipeline.NewDeviceGateStage(serviceManager.Device(), recorder),
		pipeline.NewGeoGateStage(fence, recorder),
		pipeline.NewCommitStage(serviceManager.Attendance(), recorder),
	)

	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Auth(), v, logger, int(jwtManager.TTL()/time.Second), cfg.IsProduction()),
		attendanceHandler: NewAttendanceHandler(serviceManager.Attendance(), serviceManager.Token(), verification, v, logger),
		deviceHandler:     NewDeviceHandler(serviceManager.Device(), v, logger),
		classHandler:      NewClassHandler(serviceManager.Class(), v, logger),
		auditHandler:      NewAuditHandler(serviceManager.Audit(), v, logger),
		authMiddleware:    NewJWTAuthMiddleware(jwtManager, recorder),
		repoManager:       repoManager,
	}
}

// SetupRoutes mounts the API under /api.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", hm.authHandler.Register)
			authRoutes.POST("/login", hm.authHandler.Login)
			authRoutes.POST("/logout", hm.authMiddleware.AuthMiddleware(), hm.authHandler.Logout)
			authRoutes.GET("/me", hm.authMiddleware.AuthMiddleware(), hm.authHandler.Me)
		}

		attendance := api.Group("/attendance")
		{
			// mark handles its own authentication inside the pipeline
			attendance.POST("/mark", hm.attendanceHandler.Mark)

			attendance.POST("/token",
				hm.authMiddleware.AuthMiddleware(),
				hm.authMiddleware.RequireRole(models.RoleTeacher, models.RoleAdmin),
				hm.attendanceHandler.IssueToken)
			attendance.GET("/today", hm.authMiddleware.AuthMiddleware(), hm.attendanceHandler.Today)
			attendance.GET("/history", hm.authMiddleware.AuthMiddleware(), hm.attendanceHandler.History)
			attendance.GET("/class/:classId", hm.authMiddleware.AuthMiddleware(), hm.attendanceHandler.ByClass)
		}

		deviceRoutes := api.Group("/device")
		deviceRoutes.Use(hm.authMiddleware.AuthMiddleware())
		{
			deviceRoutes.POST("/bind", hm.deviceHandler.Bind)
			deviceRoutes.GET("/info", hm.deviceHandler.Info)
			deviceRoutes.POST("/validate", hm.deviceHandler.Validate)
			deviceRoutes.DELETE("/unbind",
				hm.authMiddleware.RequireRole(models.RoleAdmin),
				hm.deviceHandler.Unbind)
			deviceRoutes.GET("/list",
				hm.authMiddleware.RequireRole(models.RoleAdmin),
				hm.deviceHandler.List)
		}

		classRoutes := api.Group("/classes")
		classRoutes.Use(hm.authMiddleware.AuthMiddleware())
		{
			classRoutes.GET("", hm.classHandler.List)
			classRoutes.POST("",
				hm.authMiddleware.RequireRole(models.RoleTeacher, models.RoleAdmin),
				hm.classHandler.Create)
		}

		scheduleRoutes := api.Group("/schedule")
		scheduleRoutes.Use(hm.authMiddleware.AuthMiddleware())
		{
			scheduleRoutes.GET("", hm.classHandler.MySchedule)
			scheduleRoutes.POST("",
				hm.authMiddleware.RequireRole(models.RoleTeacher, models.RoleAdmin),
				hm.classHandler.Enroll)
		}

		auditRoutes := api.Group("/audit")
		auditRoutes.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRole(models.RoleAdmin))
		{
			auditRoutes.GET("/logs", hm.auditHandler.Logs)
			auditRoutes.GET("/user/:userId", hm.auditHandler.UserLogs)
			auditRoutes.GET("/stats", hm.auditHandler.Stats)
			auditRoutes.GET("/actions", hm.auditHandler.Actions)
			auditRoutes.GET("/export", hm.auditHandler.Export)
			auditRoutes.DELETE("/cleanup", hm.auditHandler.Cleanup)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.repoManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
