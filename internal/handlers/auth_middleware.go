package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/auth"
	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/utils"
)

// AuthCookieName is the httpOnly cookie the login handler sets. The
// Authorization header takes precedence when both are present.
const AuthCookieName = "token"

type JWTAuthMiddleware struct {
	jwt      *auth.Manager
	recorder audit.Recorder
}

func NewJWTAuthMiddleware(jwtManager *auth.Manager, recorder audit.Recorder) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{jwt: jwtManager, recorder: recorder}
}

// ExtractToken pulls the bearer token from the Authorization header or the
// auth cookie. Empty string means no credentials were presented.
func ExtractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie
	}
	return ""
}

// AuthMiddleware rejects requests without a valid token and stores the
// caller's identity in the gin context.
func (m *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			m.rejectUnauthenticated(c, "no credentials presented")
			return
		}

		claims, err := m.jwt.Parse(token)
		if err != nil {
			m.rejectUnauthenticated(c, "token rejected")
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("user_email", claims.Email)
		c.Set("user_role", string(claims.Role))
		c.Next()
	}
}

// RequireRole aborts with 403 unless the caller holds one of the roles.
func (m *JWTAuthMiddleware) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := models.UserRole(c.GetString("user_role"))
		for _, role := range roles {
			if current == role {
				c.Next()
				return
			}
		}

		m.recorder.Record(c.Request.Context(), audit.Entry{
			UserID:    c.GetString("user_id"),
			Action:    models.AuditUnauthorizedAccess,
			IPAddress: utils.ClientIP(c.Request),
			Details: map[string]interface{}{
				"path": c.Request.URL.Path,
				"role": string(current),
			},
		})
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Error: "insufficient role for this operation",
			Code:  "FORBIDDEN",
		})
	}
}

func (m *JWTAuthMiddleware) rejectUnauthenticated(c *gin.Context, reason string) {
	m.recorder.Record(c.Request.Context(), audit.Entry{
		UserID:    models.UnknownSubject,
		Action:    models.AuditUnauthorizedAccess,
		IPAddress: utils.ClientIP(c.Request),
		Details: map[string]interface{}{
			"path":   c.Request.URL.Path,
			"reason": reason,
		},
	})
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error: "authentication required",
		Code:  "AUTH_REQUIRED",
	})
}
