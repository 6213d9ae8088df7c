package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Vasugoli/classTrack/internal/services"
	"github.com/Vasugoli/classTrack/internal/utils"
	"github.com/Vasugoli/classTrack/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	authService   services.AuthService
	validator     *validator.Validator
	cookieTTL     int
	secureCookies bool
}

func NewAuthHandler(authService services.AuthService, v *validator.Validator, logger utils.Logger, cookieTTLSeconds int, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:   NewBaseHandler(logger),
		authService:   authService,
		validator:     v,
		cookieTTL:     cookieTTLSeconds,
		secureCookies: secureCookies,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.validationFailed(c, errs)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req, h.requestMeta(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login sets the token as an httpOnly cookie and also returns it in the
// body for bearer-style clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.validationFailed(c, errs)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req, h.requestMeta(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, resp.Token, h.cookieTTL, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.authService.Logout(c.Request.Context(), userID, h.requestMeta(c))
	c.SetCookie(AuthCookieName, "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
