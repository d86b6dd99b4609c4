package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/notice-suspension-api/internal/middleware"
	"github.com/noah-isme/notice-suspension-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func sourceFromContext(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextSourceKey)
	if !exists {
		return ""
	}
	source, _ := value.(string)
	return source
}
