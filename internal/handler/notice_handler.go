package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/notice-suspension-api/internal/dto"
	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/internal/service"
	"github.com/noah-isme/notice-suspension-api/pkg/response"
)

type historyReader interface {
	List(ctx context.Context, noticeNo string, query dto.SuspensionHistoryQuery) ([]models.SuspendedNotice, *models.Pagination, error)
	Export(ctx context.Context, noticeNo, format string) (*service.ExportResult, error)
}

// NoticeHandler serves the suspension history of a notice.
type NoticeHandler struct {
	history historyReader
}

// NewNoticeHandler builds a new handler.
func NewNoticeHandler(history historyReader) *NoticeHandler {
	return &NoticeHandler{history: history}
}

// History godoc
// @Summary List suspension events of a notice
// @Tags Notices
// @Produce json
// @Param noticeNo path string true "Notice number"
// @Param type query string false "TS or PS"
// @Param active query bool false "Only active events"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /notices/{noticeNo}/suspensions [get]
func (h *NoticeHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	active, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))
	query := dto.SuspensionHistoryQuery{
		Type:       models.SuspensionType(strings.ToUpper(c.Query("type"))),
		ActiveOnly: active,
		Page:       page,
		PageSize:   size,
	}

	events, pagination, err := h.history.List(c.Request.Context(), c.Param("noticeNo"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// Export godoc
// @Summary Export suspension history
// @Tags Notices
// @Produce text/csv
// @Produce application/pdf
// @Param noticeNo path string true "Notice number"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /notices/{noticeNo}/suspensions/export [get]
func (h *NoticeHandler) Export(c *gin.Context) {
	result, err := h.history.Export(c.Request.Context(), c.Param("noticeNo"), c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.Filename+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
