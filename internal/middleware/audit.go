package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/pkg/logger"
)

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Audit records an audit entry for every successful request. The path
// parameter named by idParam, if any, becomes the resource id.
func Audit(repo auditWriter, log *zap.Logger, action, resource, idParam string) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if repo == nil || c.Writer.Status() >= 400 {
			return
		}

		var userID *string
		if value, ok := c.Get(ContextUserKey); ok {
			if claims, ok := value.(*models.JWTClaims); ok {
				userID = &claims.UserID
			}
		}
		var resourceID *string
		if idParam != "" {
			if id := c.Param(idParam); id != "" {
				resourceID = &id
			}
		}

		body, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		err := repo.CreateAuditLog(c.Request.Context(), &models.AuditLog{
			ID:         uuid.NewString(),
			UserID:     userID,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			NewValues:  body,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
			CreatedAt:  start,
		})
		if err != nil {
			logger.FromContext(c.Request.Context(), log).Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		}
	}
}
