package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/services"
	"github.com/Vasugoli/classTrack/internal/utils"
	"github.com/Vasugoli/classTrack/internal/validator"
)

// ErrorResponse is the uniform failure body. Code is the stable machine
// value clients branch on; Error is the human message.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c.Request.Context(), h.logger).Info(msg, args...)
}

// handleServiceError maps domain failures onto HTTP responses. Unknown
// errors become opaque 500s; the detail stays in the log.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var se *services.ServiceError
	if errors.As(err, &se) {
		c.JSON(se.Status, ErrorResponse{Error: se.Message, Code: se.Code})
		return
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION",
			Details: ve,
		})
		return
	}

	utils.FromContext(c.Request.Context(), h.logger).Error("request failed", "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  "INTERNAL",
	})
}

func (h *BaseHandler) validationFailed(c *gin.Context, errs validator.ValidationErrors) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation failed",
		Code:    "VALIDATION",
		Details: errs,
	})
}

func (h *BaseHandler) badPayload(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid request payload",
		Code:    "BAD_PAYLOAD",
		Details: err.Error(),
	})
}

// currentUser returns the authenticated identity the auth middleware stored.
func (h *BaseHandler) currentUser(c *gin.Context) (string, models.UserRole, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "authentication required",
			Code:  "AUTH_REQUIRED",
		})
		return "", "", false
	}
	role := models.UserRole(c.GetString("user_role"))
	return userID, role, true
}

// requestMeta collects the transport facts services record in audits.
func (h *BaseHandler) requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: utils.ClientIP(c.Request),
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
