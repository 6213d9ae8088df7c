package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/services"
	"github.com/Vasugoli/classTrack/internal/utils"
	"github.com/Vasugoli/classTrack/internal/validator"
)

// AuditHandler is the admin surface over the audit trail. Every route here
// is mounted behind the admin role gate.
type AuditHandler struct {
	BaseHandler
	auditService services.AuditService
	validator    *validator.Validator
}

func NewAuditHandler(auditService services.AuditService, v *validator.Validator, logger utils.Logger) *AuditHandler {
	return &AuditHandler{
		BaseHandler:  NewBaseHandler(logger),
		auditService: auditService,
		validator:    v,
	}
}

func (h *AuditHandler) Logs(c *gin.Context) {
	page, err := h.auditService.Logs(c.Request.Context(), auditFiltersFromQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// UserLogs lists one user's trail; the path parameter overrides any userId
// query filter.
func (h *AuditHandler) UserLogs(c *gin.Context) {
	filters := auditFiltersFromQuery(c)
	userID := c.Param("userId")
	filters.UserID = &userID

	page, err := h.auditService.Logs(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AuditHandler) Stats(c *gin.Context) {
	window := time.Duration(queryInt(c, "hours", 24)) * time.Hour

	stats, err := h.auditService.Stats(c.Request.Context(), window)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *AuditHandler) Actions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"actions": h.auditService.Actions()})
}

// Export streams the filtered trail. ?format=xlsx selects a workbook;
// anything else falls back to CSV.
func (h *AuditHandler) Export(c *gin.Context) {
	actorID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	filters := auditFiltersFromQuery(c)
	meta := h.requestMeta(c)

	if c.Query("format") == "xlsx" {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="audit_logs.xlsx"`)
		if err := h.auditService.ExportXLSX(c.Request.Context(), filters, actorID, meta, c.Writer); err != nil {
			h.handleServiceError(c, err)
		}
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="audit_logs.csv"`)
	if err := h.auditService.ExportCSV(c.Request.Context(), filters, actorID, meta, c.Writer); err != nil {
		h.handleServiceError(c, err)
	}
}

func (h *AuditHandler) Cleanup(c *gin.Context) {
	actorID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.AuditCleanupRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badPayload(c, err)
			return
		}
		if errs := h.validator.Validate(&req); len(errs) > 0 {
			h.validationFailed(c, errs)
			return
		}
	}

	deleted, err := h.auditService.Cleanup(c.Request.Context(), &req, actorID, h.requestMeta(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func auditFiltersFromQuery(c *gin.Context) repositories.AuditLogFilters {
	filters := repositories.AuditLogFilters{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if userID := c.Query("userId"); userID != "" {
		filters.UserID = &userID
	}
	if action := c.Query("action"); action != "" {
		a := models.AuditAction(action)
		filters.Action = &a
	}
	if ip := c.Query("ip"); ip != "" {
		filters.IPAddress = &ip
	}
	if deviceID := c.Query("deviceId"); deviceID != "" {
		filters.DeviceID = &deviceID
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filters.DateFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filters.DateTo = &to
	}
	return filters
}
