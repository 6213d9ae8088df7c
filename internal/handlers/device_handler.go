package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Vasugoli/classTrack/internal/device"
	"github.com/Vasugoli/classTrack/internal/services"
	"github.com/Vasugoli/classTrack/internal/utils"
	"github.com/Vasugoli/classTrack/internal/validator"
)

type DeviceHandler struct {
	BaseHandler
	deviceService services.DeviceService
	validator     *validator.Validator
}

func NewDeviceHandler(deviceService services.DeviceService, v *validator.Validator, logger utils.Logger) *DeviceHandler {
	return &DeviceHandler{
		BaseHandler:   NewBaseHandler(logger),
		deviceService: deviceService,
		validator:     v,
	}
}

func (h *DeviceHandler) Bind(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.DeviceBindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.validationFailed(c, errs)
		return
	}

	binding, err := h.deviceService.Bind(c.Request.Context(), userID, &req, h.requestMeta(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"binding": binding})
}

func (h *DeviceHandler) Info(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	status, err := h.deviceService.Status(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"device": status})
}

// Validate checks whether the calling request's device matches the stored
// binding, without side effects.
func (h *DeviceHandler) Validate(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.DeviceBindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}

	info := device.Info{
		UserAgent: device.Sanitize(req.UserAgent),
		Platform:  req.Platform,
	}
	err := h.deviceService.CheckBinding(c.Request.Context(), userID, info, req.AdditionalEntropy)
	if err != nil {
		if se, ok := services.AsServiceError(err); ok {
			c.JSON(http.StatusOK, gin.H{"valid": false, "code": se.Code})
			return
		}
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// Unbind removes a user's binding. Admin only; the route enforces the role.
func (h *DeviceHandler) Unbind(c *gin.Context) {
	actorID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	targetUserID := c.Query("userId")
	if targetUserID == "" {
		targetUserID = actorID
	}

	if err := h.deviceService.Unbind(c.Request.Context(), targetUserID, actorID, h.requestMeta(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device unbound"})
}

func (h *DeviceHandler) List(c *gin.Context) {
	bindings, err := h.deviceService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bindings": bindings})
}
