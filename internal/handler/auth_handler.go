package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/notice-suspension-api/internal/models"
	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
	"github.com/noah-isme/notice-suspension-api/pkg/response"
)

type tokenIssuer interface {
	IssueToken(req models.TokenRequest) (*models.TokenResponse, error)
}

// AuthHandler issues service tokens. It is only routed outside production.
type AuthHandler struct {
	service tokenIssuer
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc tokenIssuer) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Token godoc
// @Summary Issue a service token
// @Description Development helper; not routed in production.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.TokenRequest true "Token payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req models.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid token payload"))
		return
	}
	res, err := h.service.IssueToken(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
