package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/services"
	"github.com/Vasugoli/classTrack/internal/utils"
	"github.com/Vasugoli/classTrack/internal/validator"
)

type ClassHandler struct {
	BaseHandler
	classService services.ClassService
	validator    *validator.Validator
}

func NewClassHandler(classService services.ClassService, v *validator.Validator, logger utils.Logger) *ClassHandler {
	return &ClassHandler{
		BaseHandler:  NewBaseHandler(logger),
		classService: classService,
		validator:    v,
	}
}

func (h *ClassHandler) Create(c *gin.Context) {
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.validationFailed(c, errs)
		return
	}

	class, err := h.classService.Create(c.Request.Context(), &req, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"class": class})
}

func (h *ClassHandler) List(c *gin.Context) {
	filters := repositories.ClassFilters{
		Limit:  queryInt(c, "limit", 100),
		Offset: queryInt(c, "offset", 0),
	}
	if teacherID := c.Query("teacherId"); teacherID != "" {
		filters.TeacherID = &teacherID
	}

	classes, err := h.classService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

// Enroll creates a schedule row, which doubles as class enrollment.
func (h *ClassHandler) Enroll(c *gin.Context) {
	_, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.validationFailed(c, errs)
		return
	}

	schedule, err := h.classService.Enroll(c.Request.Context(), &req, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"schedule": schedule})
}

func (h *ClassHandler) MySchedule(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	schedules, err := h.classService.SchedulesByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": schedules})
}
