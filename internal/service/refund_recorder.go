package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/pkg/logger"
)

// Refund triggers.
const (
	RefundTriggerApply   = "apply_on_paid"
	RefundTriggerRevival = "revival"
)

// RefundIdentification is handed to downstream refund processing. No refund
// is issued here.
type RefundIdentification struct {
	NoticeNo      string
	Type          models.SuspensionType
	Code          string
	Trigger       string
	AmountPaid    *float64
	AmountPayable *float64
	IdentifiedAt  time.Time
}

// RefundRecorder receives refund identifications.
type RefundRecorder interface {
	RecordRefund(ctx context.Context, refund RefundIdentification) error
}

// LogRefundRecorder writes refund identifications to the structured log.
type LogRefundRecorder struct {
	logger *zap.Logger
}

// NewLogRefundRecorder constructs the recorder.
func NewLogRefundRecorder(log *zap.Logger) *LogRefundRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogRefundRecorder{logger: log}
}

// RecordRefund implements RefundRecorder.
func (r *LogRefundRecorder) RecordRefund(ctx context.Context, refund RefundIdentification) error {
	fields := []zap.Field{
		zap.String("notice_no", refund.NoticeNo),
		zap.String("suspension_type", string(refund.Type)),
		zap.String("code", refund.Code),
		zap.String("trigger", refund.Trigger),
		zap.Time("identified_at", refund.IdentifiedAt),
	}
	if refund.AmountPaid != nil {
		fields = append(fields, zap.Float64("amount_paid", *refund.AmountPaid))
	}
	if refund.AmountPayable != nil {
		fields = append(fields, zap.Float64("amount_payable", *refund.AmountPayable))
	}
	logger.FromContext(ctx, r.logger).Info("refund identified", fields...)
	return nil
}
