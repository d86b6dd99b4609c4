package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/notice-suspension-api/internal/dto"
	"github.com/noah-isme/notice-suspension-api/internal/models"
	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
	"github.com/noah-isme/notice-suspension-api/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

const exportPageSize = 500

type historyStore interface {
	List(ctx context.Context, filter models.SuspendedNoticeFilter) ([]models.SuspendedNotice, int, error)
}

type renderer interface {
	ContentType() string
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered history document.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// HistoryService lists and exports a notice's suspension events.
type HistoryService struct {
	events historyStore
	csv    renderer
	pdf    renderer
	logger *zap.Logger
}

// NewHistoryService constructs the service. Nil renderers use the pkg/export defaults.
func NewHistoryService(events historyStore, logger *zap.Logger, csv, pdf renderer) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &HistoryService{events: events, csv: csv, pdf: pdf, logger: logger}
}

// List returns one page of history, latest first.
func (s *HistoryService) List(ctx context.Context, noticeNo string, query dto.SuspensionHistoryQuery) ([]models.SuspendedNotice, *models.Pagination, error) {
	if strings.TrimSpace(noticeNo) == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "notice number is required")
	}
	if query.Type != "" && !query.Type.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "type must be TS or PS")
	}
	filter := models.SuspendedNoticeFilter{
		NoticeNo:   noticeNo,
		Type:       query.Type,
		ActiveOnly: query.ActiveOnly,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	events, total, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list suspension history")
	}
	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = len(events)
	}
	return events, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Export renders the complete history of a notice as CSV or PDF.
func (s *HistoryService) Export(ctx context.Context, noticeNo, format string) (*ExportResult, error) {
	var r renderer
	switch strings.ToLower(format) {
	case "", FormatCSV:
		format, r = FormatCSV, s.csv
	case FormatPDF:
		format, r = FormatPDF, s.pdf
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	var events []models.SuspendedNotice
	for page := 1; ; page++ {
		batch, pagination, err := s.List(ctx, noticeNo, dto.SuspensionHistoryQuery{Page: page, PageSize: exportPageSize})
		if err != nil {
			return nil, err
		}
		events = append(events, batch...)
		if len(batch) < exportPageSize || len(events) >= pagination.TotalCount {
			break
		}
	}

	title := fmt.Sprintf("Suspension History %s", noticeNo)
	body, err := r.Render(historyDataset(events), title)
	if err != nil {
		s.logger.Error("failed to render suspension history", zap.String("notice_no", noticeNo), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("suspensions_%s.%s", sanitizeFilename(noticeNo), format),
		ContentType: r.ContentType(),
		Body:        body,
	}, nil
}

func historyDataset(events []models.SuspendedNotice) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"SR No", "Type", "Code", "Suspended At", "Due Date", "Source", "Officer", "Revived At", "Revival Reason", "Revival Officer"},
	}
	for _, e := range events {
		dataset.Append(
			strconv.Itoa(e.SrNo),
			string(e.SuspensionType),
			e.ReasonOfSuspension,
			formatReportTime(&e.DateOfSuspension),
			formatReportTime(e.DueDateOfRevival),
			e.SuspensionSource,
			e.OfficerAuthorisingSuspension,
			formatReportTime(e.DateOfRevival),
			deref(e.RevivalReason),
			deref(e.OfficerAuthorisingRevival),
		)
	}
	return dataset
}

func sanitizeFilename(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func formatReportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
