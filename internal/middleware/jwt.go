package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/internal/service"
	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
	"github.com/noah-isme/notice-suspension-api/pkg/response"
)

// Context keys set by JWT.
const (
	ContextUserKey   = "currentUser"
	ContextSourceKey = "requestSource"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token. The caller's role
// decides the request source stored under ContextSourceKey.
func JWT(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		if source := service.SourceForRole(claims.Role); source != "" {
			c.Set(ContextSourceKey, source)
		}
		c.Next()
	}
}
