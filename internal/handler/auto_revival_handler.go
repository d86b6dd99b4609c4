package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/notice-suspension-api/internal/dto"
	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
	"github.com/noah-isme/notice-suspension-api/pkg/response"
)

type autoReviver interface {
	ReviveAfterPayment(ctx context.Context, noticeNo string) error
	ProcessExpiredTS(ctx context.Context) int
}

// AutoRevivalHandler exposes the internal triggers of the orchestrator.
type AutoRevivalHandler struct {
	service autoReviver
	now     func() time.Time
}

// NewAutoRevivalHandler builds a new handler.
func NewAutoRevivalHandler(service autoReviver) *AutoRevivalHandler {
	return &AutoRevivalHandler{service: service, now: time.Now}
}

// Payment godoc
// @Summary Revive every hold after payment
// @Description Queues the revival and returns immediately.
// @Tags AutoRevival
// @Produce json
// @Param noticeNo path string true "Notice number"
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /internal/payments/{noticeNo} [post]
func (h *AutoRevivalHandler) Payment(c *gin.Context) {
	noticeNo := strings.TrimSpace(c.Param("noticeNo"))
	if noticeNo == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrMissingField, "Notice Number is missing"))
		return
	}
	if err := h.service.ReviveAfterPayment(c.Request.Context(), noticeNo); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrSystem.Code, http.StatusServiceUnavailable, "payment revival queue unavailable"))
		return
	}
	response.JSON(c, http.StatusAccepted, dto.PaymentAccepted{NoticeNo: noticeNo, Queued: true, At: h.now().UTC()}, nil)
}

// Expired godoc
// @Summary Revive expired temporary suspensions
// @Tags AutoRevival
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /internal/auto-revival/expired [post]
func (h *AutoRevivalHandler) Expired(c *gin.Context) {
	revived := h.service.ProcessExpiredTS(c.Request.Context())
	response.JSON(c, http.StatusOK, dto.ExpiredRevivalResponse{RevivedCount: revived}, nil)
}
