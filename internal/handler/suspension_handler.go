package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/notice-suspension-api/internal/dto"
	"github.com/noah-isme/notice-suspension-api/internal/models"
	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
	"github.com/noah-isme/notice-suspension-api/pkg/response"
)

type batchApplier interface {
	ApplyBatch(ctx context.Context, req dto.ApplySuspensionRequest, source string) dto.BatchResult
	CheckBatch(ctx context.Context, req dto.ApplySuspensionRequest, source string) dto.BatchResult
}

type batchReviver interface {
	ReviveBatch(ctx context.Context, req dto.ReviveSuspensionRequest) dto.BatchResult
}

type codeLister interface {
	Codes(ctx context.Context, t models.SuspensionType, source string) ([]dto.SuspensionCode, error)
}

// SuspensionHandler exposes apply, revive and code listing endpoints. Each
// portal route fixes the request source.
type SuspensionHandler struct {
	applier batchApplier
	reviver batchReviver
	codes   codeLister
}

// NewSuspensionHandler builds a new handler.
func NewSuspensionHandler(applier batchApplier, reviver batchReviver, codes codeLister) *SuspensionHandler {
	return &SuspensionHandler{applier: applier, reviver: reviver, codes: codes}
}

// Codes godoc
// @Summary List suspension codes
// @Description Active codes the source may apply. Source defaults to the caller's.
// @Tags Suspensions
// @Produce json
// @Param type query string false "TS or PS"
// @Param source query string false "OCMS, PLUS or BACKEND"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /suspension-codes [get]
func (h *SuspensionHandler) Codes(c *gin.Context) {
	t := models.SuspensionType(strings.ToUpper(c.Query("type")))
	if t != "" && !t.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "type must be TS or PS"))
		return
	}
	source := strings.ToUpper(c.Query("source"))
	if source == "" {
		source = sourceFromContext(c)
	}
	codes, err := h.codes.Codes(c.Request.Context(), t, source)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, codes, nil)
}

// StaffApply godoc
// @Summary Apply suspensions from the staff portal
// @Tags Suspensions
// @Accept json
// @Produce json
// @Param payload body dto.ApplySuspensionRequest true "Apply payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /staff/suspensions/apply [post]
func (h *SuspensionHandler) StaffApply(c *gin.Context) {
	h.apply(c, models.SourceStaff, false)
}

// PlusApply godoc
// @Summary Apply suspensions from PLUS
// @Description With checking=true only eligibility is evaluated and nothing is persisted.
// @Tags Suspensions
// @Accept json
// @Produce json
// @Param checking query bool false "Dry run"
// @Param payload body dto.ApplySuspensionRequest true "Apply payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /plus/suspensions/apply [post]
func (h *SuspensionHandler) PlusApply(c *gin.Context) {
	checking, _ := strconv.ParseBool(c.DefaultQuery("checking", "false"))
	h.apply(c, models.SourcePlus, checking)
}

// InternalApply godoc
// @Summary Apply suspensions from backend processes
// @Tags Suspensions
// @Accept json
// @Produce json
// @Param payload body dto.ApplySuspensionRequest true "Apply payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /internal/suspensions/apply [post]
func (h *SuspensionHandler) InternalApply(c *gin.Context) {
	h.apply(c, models.SourceBackend, false)
}

// Revive godoc
// @Summary Revive suspensions
// @Tags Suspensions
// @Accept json
// @Produce json
// @Param payload body dto.ReviveSuspensionRequest true "Revive payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /staff/suspensions/revive [post]
// @Router /plus/suspensions/revive [post]
func (h *SuspensionHandler) Revive(c *gin.Context) {
	var req dto.ReviveSuspensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrMissingField.Code, http.StatusBadRequest, "invalid revival payload"))
		return
	}
	if len(req.NoticeNo) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrMissingField, "Notice Number is missing"))
		return
	}
	response.JSON(c, http.StatusOK, h.reviver.ReviveBatch(c.Request.Context(), req), nil)
}

func (h *SuspensionHandler) apply(c *gin.Context, source string, checking bool) {
	var req dto.ApplySuspensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrMissingField.Code, http.StatusBadRequest, "invalid suspension payload"))
		return
	}
	if len(req.NoticeNo) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrMissingField, "Notice Number is missing"))
		return
	}

	var result dto.BatchResult
	if checking {
		result = h.applier.CheckBatch(c.Request.Context(), req, source)
	} else {
		result = h.applier.ApplyBatch(c.Request.Context(), req, source)
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{"source": source, "checking": checking})
}
