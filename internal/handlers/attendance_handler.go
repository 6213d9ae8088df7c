package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Vasugoli/classTrack/internal/device"
	"github.com/Vasugoli/classTrack/internal/pipeline"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/services"
	"github.com/Vasugoli/classTrack/internal/utils"
	"github.com/Vasugoli/classTrack/internal/validator"
)

type AttendanceHandler struct {
	BaseHandler
	attendanceService services.AttendanceService
	tokenService      services.TokenService
	pipeline          *pipeline.Pipeline
	validator         *validator.Validator
}

func NewAttendanceHandler(
	attendanceService services.AttendanceService,
	tokenService services.TokenService,
	verification *pipeline.Pipeline,
	v *validator.Validator,
	logger utils.Logger,
) *AttendanceHandler {
	return &AttendanceHandler{
		BaseHandler:       NewBaseHandler(logger),
		attendanceService: attendanceService,
		tokenService:      tokenService,
		pipeline:          verification,
		validator:         v,
	}
}

// Mark runs the full verification pipeline. This route is mounted without
// the auth middleware: the pipeline's authenticate stage owns identity so
// that pre-auth rejections still land in the audit trail.
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req services.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.validationFailed(c, errs)
		return
	}

	info := c.GetHeader("X-Device-Platform")
	userAgent := c.GetHeader("User-Agent")
	if info == "" {
		info = derivePlatform(userAgent)
	}

	pctx := pipeline.Context{
		IPAddress:   utils.ClientIP(c.Request),
		UserAgent:   userAgent,
		Platform:    info,
		Entropy:     c.GetHeader("X-Device-Entropy"),
		BearerToken: ExtractToken(c),
		Request:     &req,
	}

	result, failure := h.pipeline.Run(c.Request.Context(), pctx)
	if failure != nil {
		c.JSON(failure.Status, ErrorResponse{
			Error:   failure.Message,
			Code:    failure.Code,
			Details: failure.Details,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"attendance": result.Result})
}

func (h *AttendanceHandler) IssueToken(c *gin.Context) {
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.validationFailed(c, errs)
		return
	}

	resp, err := h.tokenService.Issue(c.Request.Context(), &req, userID, role, h.requestMeta(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":     resp.Token,
		"classId":   resp.ClassID,
		"expiresAt": resp.ExpiresAt,
	})
}

func (h *AttendanceHandler) Today(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	records, err := h.attendanceService.Today(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": records})
}

func (h *AttendanceHandler) History(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	records, err := h.attendanceService.History(c.Request.Context(), userID, attendanceFiltersFromQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": records})
}

func (h *AttendanceHandler) ByClass(c *gin.Context) {
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	records, err := h.attendanceService.ByClass(c.Request.Context(), c.Param("classId"), userID, role, attendanceFiltersFromQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": records})
}

func attendanceFiltersFromQuery(c *gin.Context) repositories.AttendanceFilters {
	filters := repositories.AttendanceFilters{
		Limit:  queryInt(c, "limit", 100),
		Offset: queryInt(c, "offset", 0),
	}
	if from, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		filters.DateFrom = &from
	}
	if to, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		filters.DateTo = &to
	}
	return filters
}

// derivePlatform classifies the platform from the user agent when the
// client does not declare one explicitly.
func derivePlatform(userAgent string) string {
	return device.ExtractInfo(userAgent).Platform
}
