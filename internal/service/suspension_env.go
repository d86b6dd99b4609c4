package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/notice-suspension-api/internal/models"
	"github.com/noah-isme/notice-suspension-api/internal/policy"
	"github.com/noah-isme/notice-suspension-api/pkg/lock"
	"github.com/noah-isme/notice-suspension-api/pkg/logger"
)

type noticeStore interface {
	Get(ctx context.Context, noticeNo string) (*models.Notice, error)
	Save(ctx context.Context, notice *models.Notice) error
}

type suspensionEventStore interface {
	NextSrNo(ctx context.Context) (int, error)
	Create(ctx context.Context, event *models.SuspendedNotice) error
	MarkRevived(ctx context.Context, id string, revival models.Revival) error
	GetByID(ctx context.Context, id string) (*models.SuspendedNotice, error)
	FindActive(ctx context.Context, noticeNo string, t models.SuspensionType) ([]models.SuspendedNotice, error)
}

type mirrorStore interface {
	Save(ctx context.Context, mirror models.NoticeMirror) error
}

type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// passthroughTx runs the unit of work without a transaction.
type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// suspensionEnv carries the collaborators shared by the applier and the
// revival engine.
type suspensionEnv struct {
	notices noticeStore
	events  suspensionEventStore
	policy  *policy.Policy
	logger  *zap.Logger

	tx      transactor
	mirror  mirrorStore
	locker  lock.Locker
	refunds RefundRecorder
	audit   auditLogger
	metrics *MetricsService
	now     func() time.Time
}

// SuspensionOption configures SuspensionService and RevivalService.
type SuspensionOption func(*suspensionEnv)

// WithTransactor runs primary writes inside a database transaction.
func WithTransactor(tx transactor) SuspensionOption {
	return func(e *suspensionEnv) {
		if tx != nil {
			e.tx = tx
		}
	}
}

// WithMirror enables best-effort public mirror sync.
func WithMirror(mirror mirrorStore) SuspensionOption {
	return func(e *suspensionEnv) {
		e.mirror = mirror
	}
}

// WithLocker overrides the per-notice lock.
func WithLocker(locker lock.Locker) SuspensionOption {
	return func(e *suspensionEnv) {
		if locker != nil {
			e.locker = locker
		}
	}
}

// WithRefundRecorder overrides where refund identifications go.
func WithRefundRecorder(recorder RefundRecorder) SuspensionOption {
	return func(e *suspensionEnv) {
		if recorder != nil {
			e.refunds = recorder
		}
	}
}

// WithAudit records successful transitions in the audit log.
func WithAudit(audit auditLogger) SuspensionOption {
	return func(e *suspensionEnv) {
		e.audit = audit
	}
}

// WithMetrics records outcomes.
func WithMetrics(metrics *MetricsService) SuspensionOption {
	return func(e *suspensionEnv) {
		e.metrics = metrics
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) SuspensionOption {
	return func(e *suspensionEnv) {
		if now != nil {
			e.now = now
		}
	}
}

func newSuspensionEnv(notices noticeStore, events suspensionEventStore, p *policy.Policy, log *zap.Logger, opts []SuspensionOption) suspensionEnv {
	if log == nil {
		log = zap.NewNop()
	}
	env := suspensionEnv{
		notices: notices,
		events:  events,
		policy:  p,
		logger:  log,
		tx:      passthroughTx{},
		locker:  lock.NewLocalLocker(),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&env)
		}
	}
	if env.refunds == nil {
		env.refunds = NewLogRefundRecorder(env.logger)
	}
	return env
}

// clock returns now truncated to the precision Postgres stores.
func (e *suspensionEnv) clock() time.Time {
	return e.now().Truncate(time.Microsecond)
}

func (e *suspensionEnv) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, e.logger)
}

// loadNotice maps a missing row to sql.ErrNoRows for callers to translate.
func (e *suspensionEnv) loadNotice(ctx context.Context, noticeNo string) (*models.Notice, error) {
	notice, err := e.notices.Get(ctx, noticeNo)
	if err != nil {
		return nil, err
	}
	if notice == nil {
		return nil, sql.ErrNoRows
	}
	return notice, nil
}

// syncMirror copies the snapshot to the public mirror. Failures are logged only.
func (e *suspensionEnv) syncMirror(ctx context.Context, notice *models.Notice) {
	if e.mirror == nil {
		return
	}
	if err := e.mirror.Save(ctx, models.MirrorOf(notice)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			e.log(ctx).Warn("mirror row not found, skipping sync", zap.String("notice_no", notice.NoticeNo))
			return
		}
		e.log(ctx).Error("mirror sync failed", zap.String("notice_no", notice.NoticeNo), zap.Error(err))
	}
}

func (e *suspensionEnv) recordAudit(ctx context.Context, action, officer, noticeNo string, payload interface{}) {
	if e.audit == nil {
		return
	}
	values, err := json.Marshal(payload)
	if err != nil {
		e.log(ctx).Warn("failed to encode audit payload", zap.Error(err))
		return
	}
	entry := &models.AuditLog{
		ID:         uuid.NewString(),
		UserID:     &officer,
		Action:     action,
		Resource:   "notice",
		ResourceID: &noticeNo,
		NewValues:  values,
		CreatedAt:  e.now().UTC(),
	}
	if err := e.audit.CreateAuditLog(ctx, entry); err != nil {
		e.log(ctx).Warn("failed to write audit log", zap.String("notice_no", noticeNo), zap.Error(err))
	}
}

func (e *suspensionEnv) identifyRefund(ctx context.Context, notice *models.Notice, t models.SuspensionType, code, trigger string) {
	refund := RefundIdentification{
		NoticeNo:      notice.NoticeNo,
		Type:          t,
		Code:          code,
		Trigger:       trigger,
		AmountPaid:    notice.AmountPaid,
		AmountPayable: notice.AmountPayable,
		IdentifiedAt:  e.now().UTC(),
	}
	if err := e.refunds.RecordRefund(ctx, refund); err != nil {
		e.log(ctx).Error("refund identification failed", zap.String("notice_no", notice.NoticeNo), zap.String("code", code), zap.Error(err))
	}
}
